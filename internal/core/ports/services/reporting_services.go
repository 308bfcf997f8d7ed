package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// ReportingService defines operations for generating statements and the dashboard
type ReportingService interface {
	// AccountStatement lists one account's posted movements in a period with running balances.
	AccountStatement(ctx context.Context, params dto.StatementParams) (*domain.AccountStatement, error)

	// ExportStatement renders AccountStatement as an xlsx workbook.
	ExportStatement(ctx context.Context, params dto.StatementParams) ([]byte, error)

	// Dashboard aggregates sales, positions and box balances for a period.
	Dashboard(ctx context.Context, params dto.DashboardParams) (*domain.Dashboard, error)
}

package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/shopspring/decimal"
)

// RelationReaderSvc defines read operations on clients and suppliers.
type RelationReaderSvc interface {
	GetRelation(ctx context.Context, relationID string) (*domain.Relation, error)
	ListRelations(ctx context.Context, params dto.ListRelationsParams) (*dto.ListRelationsResponse, error)
	// GetRelationBalance returns opening balance plus posted debits minus posted credits.
	// Positive means the relation owes the agency.
	GetRelationBalance(ctx context.Context, relationID string) (decimal.Decimal, error)
}

// RelationWriterSvc defines write operations on clients and suppliers.
type RelationWriterSvc interface {
	CreateRelation(ctx context.Context, req dto.CreateRelationRequest, userID string) (*domain.Relation, error)
	UpdateRelation(ctx context.Context, relationID string, req dto.UpdateRelationRequest, userID string) (*domain.Relation, error)
	DeactivateRelation(ctx context.Context, relationID string, userID string) error
	// DeleteRelation hard deletes a relation no voucher line references.
	DeleteRelation(ctx context.Context, relationID string, userID string) error
}

// RelationSpreadsheetSvc imports and exports relations.
type RelationSpreadsheetSvc interface {
	// ImportRelations reads an xlsx or csv file. Valid rows are inserted, invalid rows reported.
	ImportRelations(ctx context.Context, filename string, data []byte, userID string) (*dto.ImportResult, error)
	// ExportRelations renders every relation with its balance as an xlsx workbook.
	ExportRelations(ctx context.Context) ([]byte, error)
}

// RelationSvcFacade combines all relation-related service interfaces
type RelationSvcFacade interface {
	RelationReaderSvc
	RelationWriterSvc
	RelationSpreadsheetSvc
}

// BoxSvcFacade manages cash boxes.
type BoxSvcFacade interface {
	CreateBox(ctx context.Context, req dto.CreateBoxRequest, userID string) (*domain.Box, error)
	GetBox(ctx context.Context, boxID string) (*domain.Box, error)
	// ListBoxBalances lists boxes with their current balances.
	ListBoxBalances(ctx context.Context, includeInactive bool) ([]domain.AccountBalance, error)
	GetBoxBalance(ctx context.Context, boxID string) (decimal.Decimal, error)
	UpdateBox(ctx context.Context, boxID string, req dto.UpdateBoxRequest, userID string) (*domain.Box, error)
	DeleteBox(ctx context.Context, boxID string, userID string) error
}

// ChannelSvcFacade manages distribution channels.
type ChannelSvcFacade interface {
	CreateChannel(ctx context.Context, req dto.CreateChannelRequest, userID string) (*domain.DistributionChannel, error)
	GetChannel(ctx context.Context, channelID string) (*domain.DistributionChannel, error)
	ListChannelBalances(ctx context.Context, includeInactive bool) ([]domain.AccountBalance, error)
	GetChannelBalance(ctx context.Context, channelID string) (decimal.Decimal, error)
	UpdateChannel(ctx context.Context, channelID string, req dto.UpdateChannelRequest, userID string) (*domain.DistributionChannel, error)
	DeleteChannel(ctx context.Context, channelID string, userID string) error
}

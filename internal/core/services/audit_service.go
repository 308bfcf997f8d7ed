package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

type auditService struct {
	BaseService
	auditRepo portsrepo.AuditRepository
}

// NewAuditService creates a reader over the audit trail.
func NewAuditService(auditRepo portsrepo.AuditRepository) portssvc.AuditSvc {
	return &auditService{auditRepo: auditRepo}
}

var _ portssvc.AuditSvc = (*auditService)(nil)

func (s *auditService) ListAuditLogs(ctx context.Context, params dto.ListAuditLogsParams) ([]domain.AuditLog, error) {
	limit := pagination.NormalizeLimit(params.Limit, 50, 200)
	offset := params.Offset
	if offset < 0 {
		offset = 0
	}
	logs, err := s.auditRepo.ListAuditLogs(ctx, params.EntityType, params.EntityID, limit, offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list audit logs")
		return nil, err
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return logs, nil
}

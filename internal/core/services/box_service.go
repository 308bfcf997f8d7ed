package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils"
)

type boxService struct {
	BaseService
	boxRepo portsrepo.BoxRepository
	ledger  portsrepo.VoucherRepositoryFacade
}

// NewBoxService creates a new cash box service.
func NewBoxService(
	txManager portsrepo.TransactionManager,
	boxRepo portsrepo.BoxRepository,
	ledger portsrepo.VoucherRepositoryFacade,
	auditRepo portsrepo.AuditRepository,
) portssvc.BoxSvcFacade {
	return &boxService{
		BaseService: BaseService{TxManager: txManager, AuditRepo: auditRepo},
		boxRepo:     boxRepo,
		ledger:      ledger,
	}
}

var _ portssvc.BoxSvcFacade = (*boxService)(nil)

func (s *boxService) CreateBox(ctx context.Context, req dto.CreateBoxRequest, userID string) (*domain.Box, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	currency := strings.ToUpper(req.CurrencyCode)
	if !utils.IsValidCurrency(currency) {
		return nil, fmt.Errorf("%w: unknown currency %q", apperrors.ErrValidation, req.CurrencyCode)
	}
	box := domain.Box{
		BoxID:          uuid.NewString(),
		Name:           name,
		CurrencyCode:   currency,
		OpeningBalance: req.OpeningBalance.Round(2),
		IsActive:       true,
		AuditFields:    domain.NewAuditFields(userID, s.clock()),
	}
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.boxRepo.SaveBox(ctx, box); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityBox, box.BoxID, domain.AuditCreate, userID, box)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create box")
		return nil, err
	}
	s.LogInfo(ctx, "Box created", slog.String("box_id", box.BoxID))
	return &box, nil
}

func (s *boxService) GetBox(ctx context.Context, boxID string) (*domain.Box, error) {
	return s.boxRepo.FindBoxByID(ctx, boxID)
}

func (s *boxService) ListBoxBalances(ctx context.Context, includeInactive bool) ([]domain.AccountBalance, error) {
	boxes, err := s.boxRepo.ListBoxes(ctx, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list boxes")
		return nil, err
	}
	openings := make(map[string]decimal.Decimal, len(boxes))
	for _, b := range boxes {
		openings[b.BoxID] = b.OpeningBalance
	}
	balances, err := ledgerBalances(ctx, s.ledger, domain.AccountBox, openings)
	if err != nil {
		s.LogError(ctx, err, "Failed to compute box balances")
		return nil, err
	}
	out := make([]domain.AccountBalance, len(boxes))
	for i, b := range boxes {
		out[i] = domain.AccountBalance{
			AccountKind:  domain.AccountBox,
			AccountID:    b.BoxID,
			AccountName:  b.Name,
			CurrencyCode: b.CurrencyCode,
			Balance:      balances[b.BoxID],
		}
	}
	return out, nil
}

func (s *boxService) GetBoxBalance(ctx context.Context, boxID string) (decimal.Decimal, error) {
	box, err := s.boxRepo.FindBoxByID(ctx, boxID)
	if err != nil {
		return decimal.Zero, err
	}
	balances, err := ledgerBalances(ctx, s.ledger, domain.AccountBox, map[string]decimal.Decimal{box.BoxID: box.OpeningBalance})
	if err != nil {
		return decimal.Zero, err
	}
	return balances[box.BoxID], nil
}

func (s *boxService) UpdateBox(ctx context.Context, boxID string, req dto.UpdateBoxRequest, userID string) (*domain.Box, error) {
	box, err := s.boxRepo.FindBoxByID(ctx, boxID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
		}
		box.Name = name
	}
	if req.IsActive != nil {
		box.IsActive = *req.IsActive
	}
	box.Touch(userID, s.clock())
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.boxRepo.UpdateBox(ctx, *box); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityBox, box.BoxID, domain.AuditUpdate, userID, req)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update box", slog.String("box_id", boxID))
		return nil, err
	}
	return box, nil
}

// DeleteBox removes a box that no voucher references.
func (s *boxService) DeleteBox(ctx context.Context, boxID string, userID string) error {
	box, err := s.boxRepo.FindBoxByID(ctx, boxID)
	if err != nil {
		return err
	}
	return s.RunInTx(ctx, func(ctx context.Context) error {
		used, err := s.ledger.IsAccountReferenced(ctx, domain.AccountBox, boxID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: box %s has vouchers; deactivate it instead", apperrors.ErrConflict, box.Name)
		}
		if err := s.boxRepo.DeleteBox(ctx, boxID); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityBox, boxID, domain.AuditDelete, userID, box)
	})
}

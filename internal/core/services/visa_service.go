package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils/accounting"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

type visaService struct {
	BaseService
	visaRepo     portsrepo.VisaRepository
	relationRepo portsrepo.RelationRepository
	vouchers     portssvc.VoucherPosterSvc
	attachments  portssvc.AttachmentStore
}

// NewVisaService creates a new visa service.
func NewVisaService(
	txManager portsrepo.TransactionManager,
	visaRepo portsrepo.VisaRepository,
	relationRepo portsrepo.RelationRepository,
	auditRepo portsrepo.AuditRepository,
	vouchers portssvc.VoucherPosterSvc,
	opts ...SalesServiceOption,
) portssvc.VisaSvcFacade {
	s := &visaService{
		BaseService:  BaseService{TxManager: txManager, AuditRepo: auditRepo},
		visaRepo:     visaRepo,
		relationRepo: relationRepo,
		vouchers:     vouchers,
	}
	for _, opt := range opts {
		opt(&s.BaseService, &s.attachments)
	}
	return s
}

var _ portssvc.VisaSvcFacade = (*visaService)(nil)

func (s *visaService) CreateVisa(ctx context.Context, req dto.CreateVisaRequest, userID string) (*domain.VisaBooking, error) {
	if err := checkPrices(req.CostPrice, req.SalePrice); err != nil {
		return nil, err
	}
	now := s.clock()
	submitted := domain.DateOnly(now)
	if req.SubmittedAt != nil && !req.SubmittedAt.IsZero() {
		submitted = domain.DateOnly(*req.SubmittedAt)
	}
	currency := strings.ToUpper(req.CurrencyCode)
	visa := domain.VisaBooking{
		VisaID:         uuid.NewString(),
		ApplicantName:  req.ApplicantName,
		PassportNumber: req.PassportNumber,
		Country:        req.Country,
		VisaType:       req.VisaType,
		ClientID:       req.ClientID,
		SupplierID:     req.SupplierID,
		CurrencyCode:   currency,
		CostPrice:      accounting.Round2(req.CostPrice),
		SalePrice:      accounting.Round2(req.SalePrice),
		Status:         domain.SaleActive,
		SubmittedAt:    submitted,
		Notes:          req.Notes,
		AuditFields:    domain.NewAuditFields(userID, now),
	}

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		client, supplier, err := saleParties(ctx, s.relationRepo, req.ClientID, req.SupplierID, currency)
		if err != nil {
			return err
		}
		visa.ClientName = client.Name
		visa.SupplierName = supplier.Name

		v, err := s.vouchers.PostVoucher(ctx, domain.Voucher{
			Type:         domain.VoucherVisa,
			Date:         domain.DateOnly(now),
			Description:  fmt.Sprintf("Visa %s for %s", visa.Country, visa.ApplicantName),
			CurrencyCode: currency,
			RelationID:   &client.RelationID,
			RelationName: client.Name,
			SourceType:   domain.EntityVisa,
			SourceID:     visa.VisaID,
			Lines:        accounting.SaleLines(*client, *supplier, visa.CostPrice, visa.SalePrice, domain.LedgerVisaRevenue, domain.LedgerVisaLoss),
		}, userID)
		if err != nil {
			return err
		}
		visa.VoucherID = &v.VoucherID

		if err := s.visaRepo.SaveVisa(ctx, visa); err != nil {
			return fmt.Errorf("failed to save visa: %w", err)
		}
		return s.Audit(ctx, domain.EntityVisa, visa.VisaID, domain.AuditCreate, userID, visa)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to create visa")
		}
		return nil, err
	}
	s.LogInfo(ctx, "Visa created", slog.String("visa_id", visa.VisaID))
	return &visa, nil
}

func (s *visaService) GetVisa(ctx context.Context, visaID string) (*domain.VisaBooking, error) {
	return s.visaRepo.FindVisaByID(ctx, visaID)
}

func (s *visaService) ListVisas(ctx context.Context, params dto.ListVisasParams) ([]domain.VisaBooking, error) {
	filter := domain.VisaFilter{
		ClientID: params.ClientID,
		Country:  params.Country,
		From:     params.From,
		To:       params.To,
		Limit:    pagination.NormalizeLimit(params.Limit, 50, 200),
		Offset:   max(params.Offset, 0),
	}
	if params.Status != "" {
		st := domain.SaleStatus(params.Status)
		filter.Status = &st
	}
	visas, err := s.visaRepo.ListVisas(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list visas")
		return nil, err
	}
	if visas == nil {
		visas = []domain.VisaBooking{}
	}
	return visas, nil
}

func (s *visaService) UpdateVisa(ctx context.Context, visaID string, req dto.UpdateVisaRequest, userID string) (*domain.VisaBooking, error) {
	v, err := s.visaRepo.FindVisaByID(ctx, visaID)
	if err != nil {
		return nil, err
	}
	if v.Status == domain.SaleCancelled {
		return nil, fmt.Errorf("%w: visa is cancelled", apperrors.ErrConflict)
	}
	if req.ApplicantName != nil {
		v.ApplicantName = *req.ApplicantName
	}
	if req.PassportNumber != nil {
		v.PassportNumber = *req.PassportNumber
	}
	if req.Country != nil {
		v.Country = *req.Country
	}
	if req.VisaType != nil {
		v.VisaType = *req.VisaType
	}
	if req.SubmittedAt != nil {
		v.SubmittedAt = domain.DateOnly(*req.SubmittedAt)
	}
	if req.Notes != nil {
		v.Notes = *req.Notes
	}
	v.Touch(userID, s.clock())

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.visaRepo.UpdateVisa(ctx, *v); err != nil {
			return fmt.Errorf("failed to update visa: %w", err)
		}
		return s.Audit(ctx, domain.EntityVisa, v.VisaID, domain.AuditUpdate, userID, req)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update visa", slog.String("visa_id", visaID))
		return nil, err
	}
	return v, nil
}

func (s *visaService) CancelVisa(ctx context.Context, visaID, reason, userID string) (*domain.VisaBooking, error) {
	v, err := s.visaRepo.FindVisaByID(ctx, visaID)
	if err != nil {
		return nil, err
	}
	if v.Status == domain.SaleCancelled {
		return nil, fmt.Errorf("%w: visa is already cancelled", apperrors.ErrConflict)
	}
	if reason == "" {
		reason = "visa cancelled"
	}
	v.Status = domain.SaleCancelled
	v.Touch(userID, s.clock())

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if v.VoucherID != nil {
			if err := s.vouchers.VoidGeneratedVoucher(ctx, *v.VoucherID, reason, userID); err != nil {
				return err
			}
		}
		if err := s.visaRepo.UpdateVisa(ctx, *v); err != nil {
			return fmt.Errorf("failed to cancel visa: %w", err)
		}
		return s.Audit(ctx, domain.EntityVisa, v.VisaID, domain.AuditCancel, userID, map[string]string{"reason": reason})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel visa", slog.String("visa_id", visaID))
		return nil, err
	}
	s.LogInfo(ctx, "Visa cancelled", slog.String("visa_id", visaID))
	return v, nil
}

func (s *visaService) MarkVisaPaid(ctx context.Context, visaID, userID string) (*domain.VisaBooking, error) {
	v, err := s.visaRepo.FindVisaByID(ctx, visaID)
	if err != nil {
		return nil, err
	}
	switch v.Status {
	case domain.SaleCancelled:
		return nil, fmt.Errorf("%w: visa is cancelled", apperrors.ErrConflict)
	case domain.SalePaid:
		return v, nil
	}
	v.Status = domain.SalePaid
	v.Touch(userID, s.clock())
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.visaRepo.UpdateVisa(ctx, *v); err != nil {
			return fmt.Errorf("failed to update visa: %w", err)
		}
		return s.Audit(ctx, domain.EntityVisa, v.VisaID, domain.AuditPay, userID, nil)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to mark visa paid", slog.String("visa_id", visaID))
		return nil, err
	}
	return v, nil
}

func (s *visaService) AttachVisaDocument(ctx context.Context, visaID, dataURI, userID string) (*domain.VisaBooking, error) {
	v, err := s.visaRepo.FindVisaByID(ctx, visaID)
	if err != nil {
		return nil, err
	}
	key, err := storeAttachment(ctx, s.attachments, "visas", visaID, dataURI)
	if err != nil {
		return nil, err
	}
	v.AttachmentKey = key
	v.Touch(userID, s.clock())
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.visaRepo.UpdateVisa(ctx, *v); err != nil {
			return fmt.Errorf("failed to update visa: %w", err)
		}
		return s.Audit(ctx, domain.EntityVisa, v.VisaID, domain.AuditUpdate, userID, map[string]string{"attachmentKey": key})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to attach visa document", slog.String("visa_id", visaID))
		return nil, err
	}
	return v, nil
}

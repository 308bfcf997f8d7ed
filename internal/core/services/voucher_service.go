package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/platform/metrics"
	"github.com/SscSPs/travel_backoffice/internal/utils/accounting"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

const idempotencyTTL = 24 * time.Hour

// voucherService posts journal entries. Every write stores the voucher, its lines and an audit
// entry in one transaction.
type voucherService struct {
	BaseService
	voucherRepo  portsrepo.VoucherRepositoryFacade
	relationRepo portsrepo.RelationRepository
	boxRepo      portsrepo.BoxRepository
	channelRepo  portsrepo.ChannelRepository
	idempotency  portsrepo.IdempotencyStore
}

// VoucherServiceOption is a functional option for configuring the voucher service
type VoucherServiceOption func(*voucherService)

// WithIdempotencyStore enables Idempotency-Key replays.
func WithIdempotencyStore(store portsrepo.IdempotencyStore) VoucherServiceOption {
	return func(s *voucherService) {
		s.idempotency = store
	}
}

// WithVoucherClock overrides the clock, for tests.
func WithVoucherClock(now func() time.Time) VoucherServiceOption {
	return func(s *voucherService) {
		s.Now = now
	}
}

// NewVoucherService creates a new voucher service.
func NewVoucherService(
	txManager portsrepo.TransactionManager,
	voucherRepo portsrepo.VoucherRepositoryFacade,
	auditRepo portsrepo.AuditRepository,
	relationRepo portsrepo.RelationRepository,
	boxRepo portsrepo.BoxRepository,
	channelRepo portsrepo.ChannelRepository,
	opts ...VoucherServiceOption,
) portssvc.VoucherSvcFacade {
	s := &voucherService{
		BaseService:  BaseService{TxManager: txManager, AuditRepo: auditRepo},
		voucherRepo:  voucherRepo,
		relationRepo: relationRepo,
		boxRepo:      boxRepo,
		channelRepo:  channelRepo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var _ portssvc.VoucherSvcFacade = (*voucherService)(nil)

// CreateVoucher posts a manual journal voucher.
func (s *voucherService) CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error) {
	lines := make([]domain.VoucherLine, len(req.Lines))
	for i, l := range req.Lines {
		lines[i] = domain.VoucherLine{
			AccountKind: l.AccountKind,
			AccountID:   l.AccountID,
			Debit:       l.Debit,
			Credit:      l.Credit,
			Notes:       l.Notes,
		}
	}
	v := domain.Voucher{
		Type:         domain.VoucherJournal,
		CurrencyCode: strings.ToUpper(req.CurrencyCode),
		Description:  req.Description,
		Lines:        lines,
	}
	s.applyDate(&v, req.Date)
	return s.withIdempotency(ctx, req.IdempotencyKey, domain.VoucherJournal, userID, func(ctx context.Context) (*domain.Voucher, error) {
		return s.PostVoucher(ctx, v, userID)
	})
}

// CreateReceipt records money received from a relation into a box: Dr box / Cr relation.
func (s *voucherService) CreateReceipt(ctx context.Context, req dto.CreateReceiptRequest, userID string) (*domain.Voucher, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return s.withIdempotency(ctx, req.IdempotencyKey, domain.VoucherReceipt, userID, func(ctx context.Context) (*domain.Voucher, error) {
		box, err := s.boxRepo.FindBoxByID(ctx, req.BoxID)
		if err != nil {
			return nil, notFoundAsValidation(err, "box", req.BoxID)
		}
		v := domain.Voucher{
			Type:         domain.VoucherReceipt,
			CurrencyCode: box.CurrencyCode,
			Description:  req.Description,
			RelationID:   &req.RelationID,
			Lines: []domain.VoucherLine{
				{AccountKind: domain.AccountBox, AccountID: req.BoxID, Debit: req.Amount},
				{AccountKind: domain.AccountRelation, AccountID: req.RelationID, Credit: req.Amount},
			},
		}
		s.applyDate(&v, req.Date)
		return s.PostVoucher(ctx, v, userID)
	})
}

// CreatePayment records money paid from a box to a relation: Dr relation / Cr box.
func (s *voucherService) CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, userID string) (*domain.Voucher, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	return s.withIdempotency(ctx, req.IdempotencyKey, domain.VoucherPayment, userID, func(ctx context.Context) (*domain.Voucher, error) {
		box, err := s.boxRepo.FindBoxByID(ctx, req.BoxID)
		if err != nil {
			return nil, notFoundAsValidation(err, "box", req.BoxID)
		}
		v := domain.Voucher{
			Type:         domain.VoucherPayment,
			CurrencyCode: box.CurrencyCode,
			Description:  req.Description,
			RelationID:   &req.RelationID,
			Lines: []domain.VoucherLine{
				{AccountKind: domain.AccountRelation, AccountID: req.RelationID, Debit: req.Amount},
				{AccountKind: domain.AccountBox, AccountID: req.BoxID, Credit: req.Amount},
			},
		}
		s.applyDate(&v, req.Date)
		return s.PostVoucher(ctx, v, userID)
	})
}

// CreateTransfer moves money between two boxes of the same currency: Dr destination / Cr source.
func (s *voucherService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, userID string) (*domain.Voucher, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	if req.FromBoxID == req.ToBoxID {
		return nil, fmt.Errorf("%w: source and destination box must differ", apperrors.ErrValidation)
	}
	return s.withIdempotency(ctx, req.IdempotencyKey, domain.VoucherTransfer, userID, func(ctx context.Context) (*domain.Voucher, error) {
		from, err := s.boxRepo.FindBoxByID(ctx, req.FromBoxID)
		if err != nil {
			return nil, notFoundAsValidation(err, "box", req.FromBoxID)
		}
		v := domain.Voucher{
			Type:         domain.VoucherTransfer,
			CurrencyCode: from.CurrencyCode,
			Description:  req.Description,
			Lines: []domain.VoucherLine{
				{AccountKind: domain.AccountBox, AccountID: req.ToBoxID, Debit: req.Amount},
				{AccountKind: domain.AccountBox, AccountID: req.FromBoxID, Credit: req.Amount},
			},
		}
		s.applyDate(&v, req.Date)
		return s.PostVoucher(ctx, v, userID)
	})
}

// CreateDistributedVoucher records a receipt whose total is split between settling the payer's
// balance and the configured distribution channels.
func (s *voucherService) CreateDistributedVoucher(ctx context.Context, req dto.CreateDistributedVoucherRequest, userID string) (*domain.Voucher, error) {
	parts := make([]accounting.Distribution, len(req.Distributions))
	for i, d := range req.Distributions {
		parts[i] = accounting.Distribution{ChannelID: d.ChannelID, Amount: d.Amount}
	}
	settlement, err := accounting.ReconcileDistribution(req.TotalAmount, req.SettlementAmount, parts)
	if err != nil {
		return nil, err
	}

	return s.withIdempotency(ctx, req.IdempotencyKey, domain.VoucherDistributedReceipt, userID, func(ctx context.Context) (*domain.Voucher, error) {
		box, err := s.boxRepo.FindBoxByID(ctx, req.BoxID)
		if err != nil {
			return nil, notFoundAsValidation(err, "box", req.BoxID)
		}
		lines := []domain.VoucherLine{
			{AccountKind: domain.AccountBox, AccountID: req.BoxID, Debit: req.TotalAmount},
		}
		if settlement.IsPositive() {
			lines = append(lines, domain.VoucherLine{
				AccountKind: domain.AccountRelation, AccountID: req.RelationID, Credit: settlement,
			})
		}
		for _, p := range parts {
			if !p.Amount.IsPositive() {
				continue
			}
			lines = append(lines, domain.VoucherLine{
				AccountKind: domain.AccountChannel, AccountID: p.ChannelID, Credit: p.Amount,
			})
		}
		v := domain.Voucher{
			Type:         domain.VoucherDistributedReceipt,
			CurrencyCode: box.CurrencyCode,
			Description:  req.Description,
			RelationID:   &req.RelationID,
			Lines:        lines,
		}
		s.applyDate(&v, req.Date)
		if !settlement.IsPositive() {
			// the payer still has to exist even when nothing settles their balance
			if err := s.checkRelation(ctx, req.RelationID, box.CurrencyCode); err != nil {
				return nil, err
			}
		}
		return s.PostVoucher(ctx, v, userID)
	})
}

// PostVoucher validates, numbers and stores a voucher. It joins the caller's transaction.
func (s *voucherService) PostVoucher(ctx context.Context, v domain.Voucher, userID string) (*domain.Voucher, error) {
	if !v.Type.IsValid() {
		return nil, fmt.Errorf("%w: unknown voucher type %q", apperrors.ErrValidation, v.Type)
	}
	now := s.clock()
	v.VoucherID = uuid.NewString()
	v.Status = domain.VoucherPosted
	if v.Date.IsZero() {
		v.Date = domain.DateOnly(now)
	}
	v.AuditFields = domain.NewAuditFields(userID, now)
	for i := range v.Lines {
		v.Lines[i].LineID = uuid.NewString()
		v.Lines[i].VoucherID = v.VoucherID
		v.Lines[i].LineNo = i + 1
	}
	if err := v.Validate(); err != nil {
		return nil, err
	}
	v.Amount, _ = v.Totals()

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.resolveAccounts(ctx, &v); err != nil {
			return err
		}
		seq, err := s.voucherRepo.NextVoucherNumber(ctx, v.Type)
		if err != nil {
			return fmt.Errorf("failed to allocate voucher number: %w", err)
		}
		v.Number = domain.FormatVoucherNumber(v.Type, seq)
		if err := s.voucherRepo.SaveVoucher(ctx, v); err != nil {
			return fmt.Errorf("failed to save voucher: %w", err)
		}
		return s.Audit(ctx, domain.EntityVoucher, v.VoucherID, domain.AuditCreate, userID, v)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to post voucher", slog.String("voucher_type", string(v.Type)))
		}
		return nil, err
	}

	metrics.VoucherPosted(string(v.Type))
	s.LogInfo(ctx, "Voucher posted",
		slog.String("voucher_id", v.VoucherID),
		slog.String("number", v.Number),
		slog.String("amount", v.Amount.StringFixed(2)))
	return &v, nil
}

// resolveAccounts checks every line's account exists, is active and shares the voucher currency,
// and fills in display names.
func (s *voucherService) resolveAccounts(ctx context.Context, v *domain.Voucher) error {
	names := make(map[string]string)
	for i := range v.Lines {
		line := &v.Lines[i]
		key := string(line.AccountKind) + "/" + line.AccountID
		if name, ok := names[key]; ok {
			line.AccountName = name
			continue
		}

		switch line.AccountKind {
		case domain.AccountRelation:
			rel, err := s.relationRepo.FindRelationByID(ctx, line.AccountID)
			if err != nil {
				return notFoundAsValidation(err, "relation", line.AccountID)
			}
			if !rel.IsActive {
				return fmt.Errorf("%w: relation %s is inactive", apperrors.ErrValidation, rel.Name)
			}
			if rel.CurrencyCode != v.CurrencyCode {
				return fmt.Errorf("%w: relation %s uses %s, voucher is in %s", apperrors.ErrValidation, rel.Name, rel.CurrencyCode, v.CurrencyCode)
			}
			line.AccountName = rel.Name
		case domain.AccountBox:
			box, err := s.boxRepo.FindBoxByID(ctx, line.AccountID)
			if err != nil {
				return notFoundAsValidation(err, "box", line.AccountID)
			}
			if !box.IsActive {
				return fmt.Errorf("%w: box %s is inactive", apperrors.ErrValidation, box.Name)
			}
			if box.CurrencyCode != v.CurrencyCode {
				return fmt.Errorf("%w: box %s uses %s, voucher is in %s", apperrors.ErrValidation, box.Name, box.CurrencyCode, v.CurrencyCode)
			}
			line.AccountName = box.Name
		case domain.AccountChannel:
			ch, err := s.channelRepo.FindChannelByID(ctx, line.AccountID)
			if err != nil {
				return notFoundAsValidation(err, "distribution channel", line.AccountID)
			}
			if !ch.IsActive {
				return fmt.Errorf("%w: distribution channel %s is inactive", apperrors.ErrValidation, ch.Name)
			}
			line.AccountName = ch.Name
		default:
			if line.AccountName == "" {
				line.AccountName = line.AccountID
			}
		}
		names[key] = line.AccountName
	}

	if v.RelationID == nil {
		for _, l := range v.Lines {
			if l.AccountKind == domain.AccountRelation {
				id := l.AccountID
				v.RelationID = &id
				break
			}
		}
	}
	if v.RelationID != nil && v.RelationName == "" {
		v.RelationName = names[string(domain.AccountRelation)+"/"+*v.RelationID]
	}
	return nil
}

func (s *voucherService) checkRelation(ctx context.Context, relationID, currencyCode string) error {
	rel, err := s.relationRepo.FindRelationByID(ctx, relationID)
	if err != nil {
		return notFoundAsValidation(err, "relation", relationID)
	}
	if rel.CurrencyCode != currencyCode {
		return fmt.Errorf("%w: relation %s uses %s, voucher is in %s", apperrors.ErrValidation, rel.Name, rel.CurrencyCode, currencyCode)
	}
	return nil
}

// withIdempotency runs create once per (user, voucher type, key). A replay returns the voucher
// created by the first request.
func (s *voucherService) withIdempotency(ctx context.Context, key string, voucherType domain.VoucherType, userID string, create func(ctx context.Context) (*domain.Voucher, error)) (*domain.Voucher, error) {
	if key == "" || s.idempotency == nil {
		return create(ctx)
	}
	// a key reused on another voucher route must not replay a different kind of voucher
	scoped := userID + ":" + string(voucherType) + ":" + key
	voucherID, reserved, err := s.idempotency.Reserve(ctx, scoped, idempotencyTTL)
	if err != nil {
		if errors.Is(err, portsrepo.ErrIdempotencyInFlight) {
			return nil, fmt.Errorf("%w: %s", apperrors.ErrConflict, err.Error())
		}
		return nil, err
	}
	if !reserved {
		s.LogInfo(ctx, "Replaying idempotent voucher request", slog.String("voucher_id", voucherID))
		metrics.IdempotentReplay()
		return s.voucherRepo.FindVoucherByID(ctx, voucherID)
	}

	v, err := create(ctx)
	if err != nil {
		if relErr := s.idempotency.Release(ctx, scoped); relErr != nil {
			s.LogError(ctx, relErr, "Failed to release idempotency key")
		}
		return nil, err
	}
	if err := s.idempotency.Complete(ctx, scoped, v.VoucherID, idempotencyTTL); err != nil {
		s.LogError(ctx, err, "Failed to record idempotency result", slog.String("voucher_id", v.VoucherID))
	}
	return v, nil
}

func (s *voucherService) applyDate(v *domain.Voucher, date *time.Time) {
	if date != nil && !date.IsZero() {
		v.Date = domain.DateOnly(*date)
	}
}

// GetVoucher returns a voucher with its lines.
func (s *voucherService) GetVoucher(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	return s.voucherRepo.FindVoucherByID(ctx, voucherID)
}

// ListVouchers returns one page of vouchers, newest first.
func (s *voucherService) ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error) {
	filter := domain.VoucherFilter{
		RelationID: params.RelationID,
		BoxID:      params.BoxID,
		From:       params.From,
		To:         params.To,
		Limit:      pagination.NormalizeLimit(params.Limit, 20, 100),
		NextToken:  params.NextToken,
	}
	if params.Type != "" {
		t := domain.VoucherType(strings.ToUpper(params.Type))
		if !t.IsValid() {
			return nil, fmt.Errorf("%w: unknown voucher type %q", apperrors.ErrValidation, params.Type)
		}
		filter.Type = &t
	}
	if params.Status != "" {
		st := domain.VoucherStatus(params.Status)
		filter.Status = &st
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		if _, err := pagination.DecodeToken(*filter.NextToken); err != nil {
			return nil, fmt.Errorf("%w: invalid nextToken", apperrors.ErrValidation)
		}
	}

	vouchers, next, err := s.voucherRepo.ListVouchers(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list vouchers")
		return nil, err
	}
	if vouchers == nil {
		vouchers = []domain.Voucher{}
	}
	return &dto.ListVouchersResponse{Vouchers: vouchers, NextToken: next}, nil
}

// VoidVoucher voids a manually entered voucher.
func (s *voucherService) VoidVoucher(ctx context.Context, voucherID, reason, userID string) (*domain.Voucher, error) {
	v, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return nil, err
	}
	if v.IsGenerated() {
		return nil, fmt.Errorf("%w: voucher %s belongs to %s %s; cancel it there", apperrors.ErrConflict, v.Number, v.SourceType, v.SourceID)
	}
	if err := s.void(ctx, v, reason, userID); err != nil {
		return nil, err
	}
	return v, nil
}

// VoidGeneratedVoucher voids a voucher on behalf of the booking, visa or segment that owns it.
// Voiding an already voided voucher is a no-op.
func (s *voucherService) VoidGeneratedVoucher(ctx context.Context, voucherID, reason, userID string) error {
	v, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return err
	}
	if v.Status == domain.VoucherVoided {
		return nil
	}
	return s.void(ctx, v, reason, userID)
}

func (s *voucherService) void(ctx context.Context, v *domain.Voucher, reason, userID string) error {
	if v.Status == domain.VoucherVoided {
		return fmt.Errorf("%w: voucher %s is already voided", apperrors.ErrConflict, v.Number)
	}
	now := s.clock()
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.voucherRepo.UpdateVoucherStatus(ctx, v.VoucherID, domain.VoucherVoided, reason, userID, now); err != nil {
			return fmt.Errorf("failed to void voucher: %w", err)
		}
		return s.Audit(ctx, domain.EntityVoucher, v.VoucherID, domain.AuditVoid, userID, map[string]string{
			"number": v.Number,
			"reason": reason,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to void voucher", slog.String("voucher_id", v.VoucherID))
		return err
	}
	v.Status = domain.VoucherVoided
	v.VoidReason = reason
	v.Touch(userID, now)
	s.LogInfo(ctx, "Voucher voided", slog.String("voucher_id", v.VoucherID), slog.String("number", v.Number))
	return nil
}

// DeleteVoucher archives a manually entered voucher and removes it from the journal.
func (s *voucherService) DeleteVoucher(ctx context.Context, voucherID, reason, userID string) error {
	v, err := s.voucherRepo.FindVoucherByID(ctx, voucherID)
	if err != nil {
		return err
	}
	if v.IsGenerated() {
		return fmt.Errorf("%w: voucher %s was generated by %s %s and cannot be deleted", apperrors.ErrConflict, v.Number, v.SourceType, v.SourceID)
	}
	now := s.clock()
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		archived := domain.DeletedVoucher{Voucher: *v, Reason: reason, DeletedAt: now, DeletedBy: userID}
		if err := s.voucherRepo.ArchiveVoucher(ctx, archived); err != nil {
			return fmt.Errorf("failed to archive voucher: %w", err)
		}
		return s.Audit(ctx, domain.EntityVoucher, v.VoucherID, domain.AuditDelete, userID, map[string]string{
			"number": v.Number,
			"reason": reason,
		})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete voucher", slog.String("voucher_id", voucherID))
		return err
	}
	s.LogInfo(ctx, "Voucher deleted", slog.String("voucher_id", voucherID), slog.String("number", v.Number))
	return nil
}

// ledgerBalances computes opening + debits - credits for each account in openings.
func ledgerBalances(ctx context.Context, ledger portsrepo.LedgerReader, kind domain.AccountKind, openings map[string]decimal.Decimal) (map[string]decimal.Decimal, error) {
	ids := make([]string, 0, len(openings))
	for id := range openings {
		ids = append(ids, id)
	}
	out := make(map[string]decimal.Decimal, len(openings))
	if len(ids) == 0 {
		return out, nil
	}
	movements, err := ledger.SumMovements(ctx, kind, ids, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to sum movements: %w", err)
	}
	for id, opening := range openings {
		out[id] = opening.Add(movements[id].Net())
	}
	return out, nil
}

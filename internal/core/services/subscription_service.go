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
	"github.com/SscSPs/travel_backoffice/internal/utils/accounting"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

type subscriptionService struct {
	BaseService
	subRepo      portsrepo.SubscriptionRepository
	relationRepo portsrepo.RelationRepository
	vouchers     portssvc.VoucherPosterSvc
}

// NewSubscriptionService creates a new subscription service.
func NewSubscriptionService(
	txManager portsrepo.TransactionManager,
	subRepo portsrepo.SubscriptionRepository,
	relationRepo portsrepo.RelationRepository,
	auditRepo portsrepo.AuditRepository,
	vouchers portssvc.VoucherPosterSvc,
	now func() time.Time,
) portssvc.SubscriptionSvcFacade {
	return &subscriptionService{
		BaseService:  BaseService{TxManager: txManager, AuditRepo: auditRepo, Now: now},
		subRepo:      subRepo,
		relationRepo: relationRepo,
		vouchers:     vouchers,
	}
}

var _ portssvc.SubscriptionSvcFacade = (*subscriptionService)(nil)

// CreateSubscription schedules the installments and posts the sale.
func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest, userID string) (*domain.Subscription, error) {
	shares := dto.ToPartnerShares(req.Partners)
	if err := accounting.ValidateShares(shares); err != nil {
		return nil, err
	}
	total := accounting.Round2(req.TotalAmount)
	cost := accounting.Round2(req.CostAmount)
	if cost.IsNegative() {
		return nil, fmt.Errorf("%w: cost cannot be negative", apperrors.ErrValidation)
	}
	if cost.IsPositive() && (req.SupplierID == nil || *req.SupplierID == "") {
		return nil, fmt.Errorf("%w: a supplier is required when the subscription has a cost", apperrors.ErrValidation)
	}
	schedule, err := accounting.InstallmentSchedule(total, req.InstallmentCount, req.StartDate)
	if err != nil {
		return nil, err
	}

	now := s.clock()
	currency := strings.ToUpper(req.CurrencyCode)
	sub := domain.Subscription{
		SubscriptionID:   uuid.NewString(),
		ClientID:         req.ClientID,
		ServiceName:      req.ServiceName,
		CurrencyCode:     currency,
		TotalAmount:      total,
		CostAmount:       cost,
		InstallmentCount: req.InstallmentCount,
		StartDate:        domain.DateOnly(req.StartDate),
		Status:           domain.SubscriptionActive,
		Partners:         shares,
		AuditFields:      domain.NewAuditFields(userID, now),
	}
	sub.Installments = make([]domain.Installment, len(schedule))
	for i, sch := range schedule {
		sub.Installments[i] = domain.Installment{
			InstallmentID:  uuid.NewString(),
			SubscriptionID: sub.SubscriptionID,
			Sequence:       sch.Sequence,
			DueDate:        sch.DueDate,
			Amount:         sch.Amount,
			PaidAmount:     decimal.Zero,
			Status:         domain.InstallmentPending,
		}
	}

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		var client, supplier *domain.Relation
		var err error
		if req.SupplierID != nil && *req.SupplierID != "" {
			client, supplier, err = saleParties(ctx, s.relationRepo, req.ClientID, *req.SupplierID, currency)
			if err != nil {
				return err
			}
			sub.SupplierID = &supplier.RelationID
			sub.SupplierName = supplier.Name
		} else {
			client, err = s.relationRepo.FindRelationByID(ctx, req.ClientID)
			if err != nil {
				return notFoundAsValidation(err, "client", req.ClientID)
			}
			if !client.IsClient() {
				return fmt.Errorf("%w: relation %s is not a client", apperrors.ErrValidation, client.Name)
			}
			if client.CurrencyCode != currency {
				return fmt.Errorf("%w: client %s uses %s, not %s", apperrors.ErrValidation, client.Name, client.CurrencyCode, currency)
			}
			supplier = &domain.Relation{}
		}
		sub.ClientName = client.Name

		v, err := s.vouchers.PostVoucher(ctx, domain.Voucher{
			Type:         domain.VoucherSubscription,
			Date:         sub.StartDate,
			Description:  "Subscription " + sub.ServiceName,
			CurrencyCode: currency,
			RelationID:   &client.RelationID,
			RelationName: client.Name,
			SourceType:   domain.EntitySubscription,
			SourceID:     sub.SubscriptionID,
			Lines:        accounting.SaleLines(*client, *supplier, cost, total, domain.LedgerSubscriptionRevenue, domain.LedgerSubscriptionLoss),
		}, userID)
		if err != nil {
			return err
		}
		sub.VoucherID = &v.VoucherID

		if err := s.subRepo.SaveSubscription(ctx, sub); err != nil {
			return fmt.Errorf("failed to save subscription: %w", err)
		}
		return s.Audit(ctx, domain.EntitySubscription, sub.SubscriptionID, domain.AuditCreate, userID, sub)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to create subscription")
		}
		return nil, err
	}
	s.LogInfo(ctx, "Subscription created",
		slog.String("subscription_id", sub.SubscriptionID),
		slog.Int("installments", len(sub.Installments)))
	return &sub, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	return s.subRepo.FindSubscriptionByID(ctx, subscriptionID)
}

func (s *subscriptionService) ListSubscriptions(ctx context.Context, params dto.ListSubscriptionsParams) ([]domain.Subscription, error) {
	filter := domain.SubscriptionFilter{
		ClientID: params.ClientID,
		Limit:    pagination.NormalizeLimit(params.Limit, 50, 200),
		Offset:   max(params.Offset, 0),
	}
	if params.Status != "" {
		st := domain.SubscriptionStatus(params.Status)
		filter.Status = &st
	}
	subs, err := s.subRepo.ListSubscriptions(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list subscriptions")
		return nil, err
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	return subs, nil
}

// CancelSubscription cancels every open installment. The sale voucher is voided only when
// nothing has been paid yet; otherwise the client's remaining balance stays on their account.
func (s *subscriptionService) CancelSubscription(ctx context.Context, subscriptionID, userID string) (*domain.Subscription, error) {
	sub, err := s.subRepo.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	switch sub.Status {
	case domain.SubscriptionCancelled:
		return nil, fmt.Errorf("%w: subscription is already cancelled", apperrors.ErrConflict)
	case domain.SubscriptionPaid:
		return nil, fmt.Errorf("%w: subscription is fully paid", apperrors.ErrConflict)
	}
	now := s.clock()

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		status, err := s.subRepo.LockSubscription(ctx, sub.SubscriptionID)
		if err != nil {
			return err
		}
		if status != domain.SubscriptionActive {
			return fmt.Errorf("%w: subscription is %s", apperrors.ErrConflict, strings.ToLower(string(status)))
		}
		open, err := s.subRepo.CountOpenInstallments(ctx, sub.SubscriptionID)
		if err != nil {
			return err
		}
		anyPaid := open < sub.InstallmentCount
		if err := s.subRepo.CancelOpenInstallments(ctx, sub.SubscriptionID); err != nil {
			return fmt.Errorf("failed to cancel installments: %w", err)
		}
		if err := s.subRepo.UpdateSubscriptionStatus(ctx, sub.SubscriptionID, domain.SubscriptionCancelled, userID, now); err != nil {
			return fmt.Errorf("failed to cancel subscription: %w", err)
		}
		if !anyPaid && sub.VoucherID != nil {
			if err := s.vouchers.VoidGeneratedVoucher(ctx, *sub.VoucherID, "subscription cancelled", userID); err != nil {
				return err
			}
		}
		return s.Audit(ctx, domain.EntitySubscription, sub.SubscriptionID, domain.AuditCancel, userID, nil)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to cancel subscription", slog.String("subscription_id", subscriptionID))
		}
		return nil, err
	}

	sub.Status = domain.SubscriptionCancelled
	sub.Touch(userID, now)
	for i := range sub.Installments {
		if sub.Installments[i].Status.IsOpen() {
			sub.Installments[i].Status = domain.InstallmentCancelled
		}
	}
	s.LogInfo(ctx, "Subscription cancelled", slog.String("subscription_id", subscriptionID))
	return sub, nil
}

// PayInstallment posts Dr box / Cr client for the installment amount and marks it paid.
// The subscription becomes PAID with its last installment.
func (s *subscriptionService) PayInstallment(ctx context.Context, installmentID string, req dto.PayInstallmentRequest, userID string) (*dto.PayInstallmentResponse, error) {
	inst, err := s.subRepo.FindInstallmentByID(ctx, installmentID)
	if err != nil {
		return nil, err
	}
	if !inst.Status.IsOpen() {
		return nil, fmt.Errorf("%w: installment is %s", apperrors.ErrConflict, strings.ToLower(string(inst.Status)))
	}
	sub, err := s.subRepo.FindSubscriptionByID(ctx, inst.SubscriptionID)
	if err != nil {
		return nil, err
	}
	if sub.Status != domain.SubscriptionActive {
		return nil, fmt.Errorf("%w: subscription is %s", apperrors.ErrConflict, strings.ToLower(string(sub.Status)))
	}

	now := s.clock()
	date := domain.DateOnly(now)
	if req.Date != nil && !req.Date.IsZero() {
		date = domain.DateOnly(*req.Date)
	}

	var voucher *domain.Voucher
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		// serializes payments of the same subscription so the open count below is current
		status, err := s.subRepo.LockSubscription(ctx, sub.SubscriptionID)
		if err != nil {
			return err
		}
		if status != domain.SubscriptionActive {
			return fmt.Errorf("%w: subscription is %s", apperrors.ErrConflict, strings.ToLower(string(status)))
		}
		voucher, err = s.vouchers.PostVoucher(ctx, domain.Voucher{
			Type:         domain.VoucherInstallment,
			Date:         date,
			Description:  fmt.Sprintf("Installment %d/%d %s", inst.Sequence, sub.InstallmentCount, sub.ServiceName),
			CurrencyCode: sub.CurrencyCode,
			RelationID:   &sub.ClientID,
			RelationName: sub.ClientName,
			SourceType:   domain.EntityInstallment,
			SourceID:     inst.InstallmentID,
			Lines: []domain.VoucherLine{
				{AccountKind: domain.AccountBox, AccountID: req.BoxID, Debit: inst.Amount},
				{AccountKind: domain.AccountRelation, AccountID: sub.ClientID, Credit: inst.Amount},
			},
		}, userID)
		if err != nil {
			return err
		}

		inst.Status = domain.InstallmentPaid
		inst.PaidAmount = inst.Amount
		inst.PaidAt = &now
		inst.VoucherID = &voucher.VoucherID
		if err := s.subRepo.MarkInstallmentPaid(ctx, *inst); err != nil {
			return err
		}

		open, err := s.subRepo.CountOpenInstallments(ctx, sub.SubscriptionID)
		if err != nil {
			return err
		}
		if open == 0 {
			if err := s.subRepo.UpdateSubscriptionStatus(ctx, sub.SubscriptionID, domain.SubscriptionPaid, userID, now); err != nil {
				return fmt.Errorf("failed to update subscription: %w", err)
			}
		}
		return s.Audit(ctx, domain.EntityInstallment, inst.InstallmentID, domain.AuditPay, userID, map[string]string{
			"voucherID": voucher.VoucherID,
			"amount":    inst.Amount.StringFixed(2),
		})
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) && !errors.Is(err, apperrors.ErrConflict) {
			s.LogError(ctx, err, "Failed to pay installment", slog.String("installment_id", installmentID))
		}
		return nil, err
	}
	s.LogInfo(ctx, "Installment paid",
		slog.String("installment_id", installmentID),
		slog.String("voucher_id", voucher.VoucherID))
	return &dto.PayInstallmentResponse{Installment: *inst, Voucher: *voucher}, nil
}

// GetProfitDistribution splits total minus cost between the agency and the partners.
func (s *subscriptionService) GetProfitDistribution(ctx context.Context, subscriptionID string) (*domain.ProfitDistribution, error) {
	sub, err := s.subRepo.FindSubscriptionByID(ctx, subscriptionID)
	if err != nil {
		return nil, err
	}
	dist, err := accounting.SplitProfit(sub.Profit(), sub.Partners)
	if err != nil {
		return nil, err
	}
	return &dist, nil
}

func (s *subscriptionService) MarkOverdue(ctx context.Context, now time.Time) ([]domain.Installment, error) {
	overdue, err := s.subRepo.MarkOverdue(ctx, domain.DateOnly(now))
	if err != nil {
		s.LogError(ctx, err, "Failed to mark overdue installments")
		return nil, err
	}
	if len(overdue) > 0 {
		s.LogInfo(ctx, "Installments marked overdue", slog.Int("count", len(overdue)))
	}
	return overdue, nil
}

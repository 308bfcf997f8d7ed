package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

type channelService struct {
	BaseService
	channelRepo portsrepo.ChannelRepository
	ledger      portsrepo.VoucherRepositoryFacade
}

// NewChannelService creates a new distribution channel service.
func NewChannelService(
	txManager portsrepo.TransactionManager,
	channelRepo portsrepo.ChannelRepository,
	ledger portsrepo.VoucherRepositoryFacade,
	auditRepo portsrepo.AuditRepository,
) portssvc.ChannelSvcFacade {
	return &channelService{
		BaseService: BaseService{TxManager: txManager, AuditRepo: auditRepo},
		channelRepo: channelRepo,
		ledger:      ledger,
	}
}

var _ portssvc.ChannelSvcFacade = (*channelService)(nil)

func (s *channelService) CreateChannel(ctx context.Context, req dto.CreateChannelRequest, userID string) (*domain.DistributionChannel, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", apperrors.ErrValidation)
	}
	ch := domain.DistributionChannel{
		ChannelID:   uuid.NewString(),
		Name:        name,
		Description: req.Description,
		IsActive:    true,
		AuditFields: domain.NewAuditFields(userID, s.clock()),
	}
	err := s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.channelRepo.SaveChannel(ctx, ch); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityChannel, ch.ChannelID, domain.AuditCreate, userID, ch)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create distribution channel")
		return nil, err
	}
	return &ch, nil
}

func (s *channelService) GetChannel(ctx context.Context, channelID string) (*domain.DistributionChannel, error) {
	return s.channelRepo.FindChannelByID(ctx, channelID)
}

func (s *channelService) ListChannelBalances(ctx context.Context, includeInactive bool) ([]domain.AccountBalance, error) {
	channels, err := s.channelRepo.ListChannels(ctx, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list distribution channels")
		return nil, err
	}
	openings := make(map[string]decimal.Decimal, len(channels))
	for _, ch := range channels {
		openings[ch.ChannelID] = decimal.Zero
	}
	balances, err := ledgerBalances(ctx, s.ledger, domain.AccountChannel, openings)
	if err != nil {
		return nil, err
	}
	out := make([]domain.AccountBalance, len(channels))
	for i, ch := range channels {
		out[i] = domain.AccountBalance{
			AccountKind: domain.AccountChannel,
			AccountID:   ch.ChannelID,
			AccountName: ch.Name,
			Balance:     balances[ch.ChannelID],
		}
	}
	return out, nil
}

func (s *channelService) GetChannelBalance(ctx context.Context, channelID string) (decimal.Decimal, error) {
	if _, err := s.channelRepo.FindChannelByID(ctx, channelID); err != nil {
		return decimal.Zero, err
	}
	balances, err := ledgerBalances(ctx, s.ledger, domain.AccountChannel, map[string]decimal.Decimal{channelID: decimal.Zero})
	if err != nil {
		return decimal.Zero, err
	}
	return balances[channelID], nil
}

func (s *channelService) UpdateChannel(ctx context.Context, channelID string, req dto.UpdateChannelRequest, userID string) (*domain.DistributionChannel, error) {
	ch, err := s.channelRepo.FindChannelByID(ctx, channelID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name cannot be empty", apperrors.ErrValidation)
		}
		ch.Name = name
	}
	if req.Description != nil {
		ch.Description = *req.Description
	}
	if req.IsActive != nil {
		ch.IsActive = *req.IsActive
	}
	ch.Touch(userID, s.clock())
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.channelRepo.UpdateChannel(ctx, *ch); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityChannel, ch.ChannelID, domain.AuditUpdate, userID, req)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update distribution channel")
		return nil, err
	}
	return ch, nil
}

func (s *channelService) DeleteChannel(ctx context.Context, channelID string, userID string) error {
	ch, err := s.channelRepo.FindChannelByID(ctx, channelID)
	if err != nil {
		return err
	}
	return s.RunInTx(ctx, func(ctx context.Context) error {
		used, err := s.ledger.IsAccountReferenced(ctx, domain.AccountChannel, channelID)
		if err != nil {
			return err
		}
		if used {
			return fmt.Errorf("%w: channel %s has vouchers; deactivate it instead", apperrors.ErrConflict, ch.Name)
		}
		if err := s.channelRepo.DeleteChannel(ctx, channelID); err != nil {
			return err
		}
		return s.Audit(ctx, domain.EntityChannel, channelID, domain.AuditDelete, userID, ch)
	})
}

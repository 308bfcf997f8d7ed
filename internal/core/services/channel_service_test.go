package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

type ChannelServiceTestSuite struct {
	suite.Suite
	channelRepo *MockChannelRepository
	ledger      *MockVoucherRepository
	auditRepo   *MockAuditRepository
	service     portssvc.ChannelSvcFacade
	ctx         context.Context
}

func (s *ChannelServiceTestSuite) SetupTest() {
	s.channelRepo = new(MockChannelRepository)
	s.ledger = new(MockVoucherRepository)
	s.auditRepo = new(MockAuditRepository)
	s.service = services.NewChannelService(MockTxManager{}, s.channelRepo, s.ledger, s.auditRepo)
	s.ctx = context.Background()
	s.auditRepo.On("SaveAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestChannelServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ChannelServiceTestSuite))
}

func (s *ChannelServiceTestSuite) TestCreateChannel() {
	s.channelRepo.On("SaveChannel", mock.Anything, mock.MatchedBy(func(ch domain.DistributionChannel) bool {
		return ch.Name == "Hajj fund" && ch.IsActive && ch.CreatedBy == "user-1"
	})).Return(nil).Once()

	ch, err := s.service.CreateChannel(s.ctx, dto.CreateChannelRequest{Name: " Hajj fund ", Description: "pilgrimage savings"}, "user-1")

	s.Require().NoError(err)
	s.NotEmpty(ch.ChannelID)
	s.Equal("pilgrimage savings", ch.Description)
	s.channelRepo.AssertExpectations(s.T())
}

func (s *ChannelServiceTestSuite) TestCreateChannel_NameRequired() {
	_, err := s.service.CreateChannel(s.ctx, dto.CreateChannelRequest{Name: ""}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.channelRepo.AssertNotCalled(s.T(), "SaveChannel", mock.Anything, mock.Anything)
}

func (s *ChannelServiceTestSuite) TestListChannelBalances() {
	s.channelRepo.On("ListChannels", mock.Anything, false).Return([]domain.DistributionChannel{
		{ChannelID: "ch-1", Name: "Hajj fund"},
		{ChannelID: "ch-2", Name: "Umrah fund"},
	}, nil).Once()
	s.ledger.On("SumMovements", mock.Anything, domain.AccountChannel, mock.Anything, (*time.Time)(nil)).
		Return(map[string]domain.Movement{
			"ch-1": {AccountID: "ch-1", Debit: dec("0"), Credit: dec("400")},
			"ch-2": {AccountID: "ch-2", Debit: dec("50"), Credit: dec("10")},
		}, nil).Once()

	balances, err := s.service.ListChannelBalances(s.ctx, false)

	s.Require().NoError(err)
	s.Require().Len(balances, 2)
	s.Equal(domain.AccountChannel, balances[0].AccountKind)
	s.True(balances[0].Balance.Equal(dec("-400")), "got %s", balances[0].Balance)
	s.True(balances[1].Balance.Equal(dec("40")), "got %s", balances[1].Balance)
}

func (s *ChannelServiceTestSuite) TestGetChannelBalance_UnknownChannel() {
	s.channelRepo.On("FindChannelByID", mock.Anything, "ch-x").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.GetChannelBalance(s.ctx, "ch-x")

	s.ErrorIs(err, apperrors.ErrNotFound)
	s.ledger.AssertNotCalled(s.T(), "SumMovements", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *ChannelServiceTestSuite) TestGetChannelBalance() {
	s.channelRepo.On("FindChannelByID", mock.Anything, "ch-1").Return(&domain.DistributionChannel{ChannelID: "ch-1"}, nil).Once()
	s.ledger.On("SumMovements", mock.Anything, domain.AccountChannel, []string{"ch-1"}, (*time.Time)(nil)).
		Return(map[string]domain.Movement{}, nil).Once()

	balance, err := s.service.GetChannelBalance(s.ctx, "ch-1")

	s.Require().NoError(err)
	s.True(balance.IsZero())
}

func (s *ChannelServiceTestSuite) TestUpdateChannel() {
	s.channelRepo.On("FindChannelByID", mock.Anything, "ch-1").
		Return(&domain.DistributionChannel{ChannelID: "ch-1", Name: "Hajj fund", IsActive: true}, nil).Once()
	s.channelRepo.On("UpdateChannel", mock.Anything, mock.MatchedBy(func(ch domain.DistributionChannel) bool {
		return ch.Name == "Hajj 2026" && ch.Description == "season fund"
	})).Return(nil).Once()
	name, desc := "Hajj 2026", "season fund"

	ch, err := s.service.UpdateChannel(s.ctx, "ch-1", dto.UpdateChannelRequest{Name: &name, Description: &desc}, "user-1")

	s.Require().NoError(err)
	s.Equal("Hajj 2026", ch.Name)
	s.True(ch.IsActive)
}

func (s *ChannelServiceTestSuite) TestDeleteChannel_WithVouchersIsConflict() {
	s.channelRepo.On("FindChannelByID", mock.Anything, "ch-1").Return(&domain.DistributionChannel{ChannelID: "ch-1", Name: "Hajj fund"}, nil).Once()
	s.ledger.On("IsAccountReferenced", mock.Anything, domain.AccountChannel, "ch-1").Return(true, nil).Once()

	err := s.service.DeleteChannel(s.ctx, "ch-1", "user-1")

	s.ErrorIs(err, apperrors.ErrConflict)
	s.channelRepo.AssertNotCalled(s.T(), "DeleteChannel", mock.Anything, mock.Anything)
}

func (s *ChannelServiceTestSuite) TestDeleteChannel() {
	s.channelRepo.On("FindChannelByID", mock.Anything, "ch-1").Return(&domain.DistributionChannel{ChannelID: "ch-1"}, nil).Once()
	s.ledger.On("IsAccountReferenced", mock.Anything, domain.AccountChannel, "ch-1").Return(false, nil).Once()
	s.channelRepo.On("DeleteChannel", mock.Anything, "ch-1").Return(nil).Once()

	s.Require().NoError(s.service.DeleteChannel(s.ctx, "ch-1", "user-1"))
	s.channelRepo.AssertExpectations(s.T())
}

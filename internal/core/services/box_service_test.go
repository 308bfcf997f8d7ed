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

type BoxServiceTestSuite struct {
	suite.Suite
	boxRepo   *MockBoxRepository
	ledger    *MockVoucherRepository
	auditRepo *MockAuditRepository
	service   portssvc.BoxSvcFacade
	ctx       context.Context
}

func (s *BoxServiceTestSuite) SetupTest() {
	s.boxRepo = new(MockBoxRepository)
	s.ledger = new(MockVoucherRepository)
	s.auditRepo = new(MockAuditRepository)
	s.service = services.NewBoxService(MockTxManager{}, s.boxRepo, s.ledger, s.auditRepo)
	s.ctx = context.Background()
	s.auditRepo.On("SaveAuditLog", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func TestBoxServiceTestSuite(t *testing.T) {
	suite.Run(t, new(BoxServiceTestSuite))
}

func (s *BoxServiceTestSuite) TestCreateBox() {
	s.boxRepo.On("SaveBox", mock.Anything, mock.MatchedBy(func(b domain.Box) bool {
		return b.Name == "Front desk" && b.CurrencyCode == "USD" && b.IsActive
	})).Return(nil).Once()

	box, err := s.service.CreateBox(s.ctx, dto.CreateBoxRequest{Name: "  Front desk ", CurrencyCode: "usd", OpeningBalance: dec("250.505")}, "user-1")

	s.Require().NoError(err)
	s.NotEmpty(box.BoxID)
	s.True(box.OpeningBalance.Equal(dec("250.51")), "got %s", box.OpeningBalance)
	s.boxRepo.AssertExpectations(s.T())
}

func (s *BoxServiceTestSuite) TestCreateBox_Validation() {
	_, err := s.service.CreateBox(s.ctx, dto.CreateBoxRequest{Name: "   ", CurrencyCode: "USD"}, "user-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	_, err = s.service.CreateBox(s.ctx, dto.CreateBoxRequest{Name: "Safe", CurrencyCode: "DOLLARS"}, "user-1")
	s.ErrorIs(err, apperrors.ErrValidation)

	s.boxRepo.AssertNotCalled(s.T(), "SaveBox", mock.Anything, mock.Anything)
}

func (s *BoxServiceTestSuite) TestCreateBox_DuplicateName() {
	s.boxRepo.On("SaveBox", mock.Anything, mock.Anything).Return(apperrors.ErrDuplicate).Once()

	_, err := s.service.CreateBox(s.ctx, dto.CreateBoxRequest{Name: "Safe", CurrencyCode: "USD"}, "user-1")

	s.ErrorIs(err, apperrors.ErrDuplicate)
	s.auditRepo.AssertNotCalled(s.T(), "SaveAuditLog", mock.Anything, mock.Anything)
}

func (s *BoxServiceTestSuite) TestListBoxBalances_AddsMovementsToOpening() {
	s.boxRepo.On("ListBoxes", mock.Anything, false).Return([]domain.Box{
		{BoxID: "box-1", Name: "Front desk", CurrencyCode: "USD", OpeningBalance: dec("100")},
		{BoxID: "box-2", Name: "Bank", CurrencyCode: "EUR", OpeningBalance: dec("0")},
	}, nil).Once()
	s.ledger.On("SumMovements", mock.Anything, domain.AccountBox, mock.MatchedBy(func(ids []string) bool {
		return len(ids) == 2
	}), (*time.Time)(nil)).Return(map[string]domain.Movement{
		"box-1": {AccountID: "box-1", Debit: dec("300"), Credit: dec("120")},
	}, nil).Once()

	balances, err := s.service.ListBoxBalances(s.ctx, false)

	s.Require().NoError(err)
	s.Require().Len(balances, 2)
	s.Equal("Front desk", balances[0].AccountName)
	s.Equal(domain.AccountBox, balances[0].AccountKind)
	s.True(balances[0].Balance.Equal(dec("280")), "got %s", balances[0].Balance)
	s.Equal("EUR", balances[1].CurrencyCode)
	s.True(balances[1].Balance.IsZero())
}

func (s *BoxServiceTestSuite) TestListBoxBalances_NoBoxesSkipsLedger() {
	s.boxRepo.On("ListBoxes", mock.Anything, true).Return([]domain.Box{}, nil).Once()

	balances, err := s.service.ListBoxBalances(s.ctx, true)

	s.Require().NoError(err)
	s.Empty(balances)
	s.ledger.AssertNotCalled(s.T(), "SumMovements", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *BoxServiceTestSuite) TestGetBoxBalance() {
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").
		Return(&domain.Box{BoxID: "box-1", OpeningBalance: dec("50")}, nil).Once()
	s.ledger.On("SumMovements", mock.Anything, domain.AccountBox, []string{"box-1"}, (*time.Time)(nil)).
		Return(map[string]domain.Movement{"box-1": {AccountID: "box-1", Debit: dec("10"), Credit: dec("75")}}, nil).Once()

	balance, err := s.service.GetBoxBalance(s.ctx, "box-1")

	s.Require().NoError(err)
	s.True(balance.Equal(dec("-15")), "got %s", balance)
}

func (s *BoxServiceTestSuite) TestUpdateBox_Deactivates() {
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").
		Return(&domain.Box{BoxID: "box-1", Name: "Safe", IsActive: true}, nil).Once()
	s.boxRepo.On("UpdateBox", mock.Anything, mock.MatchedBy(func(b domain.Box) bool {
		return !b.IsActive && b.Name == "Safe"
	})).Return(nil).Once()
	inactive := false

	box, err := s.service.UpdateBox(s.ctx, "box-1", dto.UpdateBoxRequest{IsActive: &inactive}, "user-1")

	s.Require().NoError(err)
	s.False(box.IsActive)
	s.boxRepo.AssertExpectations(s.T())
}

func (s *BoxServiceTestSuite) TestUpdateBox_BlankName() {
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(&domain.Box{BoxID: "box-1", Name: "Safe"}, nil).Once()
	blank := " "

	_, err := s.service.UpdateBox(s.ctx, "box-1", dto.UpdateBoxRequest{Name: &blank}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.boxRepo.AssertNotCalled(s.T(), "UpdateBox", mock.Anything, mock.Anything)
}

func (s *BoxServiceTestSuite) TestDeleteBox_Unused() {
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(&domain.Box{BoxID: "box-1", Name: "Safe"}, nil).Once()
	s.ledger.On("IsAccountReferenced", mock.Anything, domain.AccountBox, "box-1").Return(false, nil).Once()
	s.boxRepo.On("DeleteBox", mock.Anything, "box-1").Return(nil).Once()

	s.Require().NoError(s.service.DeleteBox(s.ctx, "box-1", "user-1"))
	s.boxRepo.AssertExpectations(s.T())
}

func (s *BoxServiceTestSuite) TestDeleteBox_WithVouchersIsConflict() {
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(&domain.Box{BoxID: "box-1", Name: "Safe"}, nil).Once()
	s.ledger.On("IsAccountReferenced", mock.Anything, domain.AccountBox, "box-1").Return(true, nil).Once()

	err := s.service.DeleteBox(s.ctx, "box-1", "user-1")

	s.ErrorIs(err, apperrors.ErrConflict)
	s.Contains(err.Error(), "deactivate")
	s.boxRepo.AssertNotCalled(s.T(), "DeleteBox", mock.Anything, mock.Anything)
}

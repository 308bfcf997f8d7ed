package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/utils/spreadsheet"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	relationRepo  *MockRelationRepository
	boxRepo       *MockBoxRepository
	channelRepo   *MockChannelRepository
	ledger        *MockVoucherRepository
	reportingRepo *MockReportingRepository
	subRepo       *MockSubscriptionRepository
	service       portssvc.ReportingService
	ctx           context.Context
}

func (s *ReportingServiceTestSuite) SetupTest() {
	s.relationRepo = new(MockRelationRepository)
	s.boxRepo = new(MockBoxRepository)
	s.channelRepo = new(MockChannelRepository)
	s.ledger = new(MockVoucherRepository)
	s.reportingRepo = new(MockReportingRepository)
	s.subRepo = new(MockSubscriptionRepository)
	s.service = services.NewReportingService(services.ReportingDeps{
		RelationRepo:    s.relationRepo,
		BoxRepo:         s.boxRepo,
		ChannelRepo:     s.channelRepo,
		Ledger:          s.ledger,
		ReportingRepo:   s.reportingRepo,
		SubRepo:         s.subRepo,
		DefaultCurrency: "usd",
	})
	s.ctx = context.Background()
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}

var (
	marchFrom = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	marchTo   = time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
)

func (s *ReportingServiceTestSuite) expectRelationStatement() {
	s.relationRepo.On("FindRelationByID", mock.Anything, "rel-1").
		Return(&domain.Relation{RelationID: "rel-1", Name: "Acme", CurrencyCode: "USD", OpeningBalance: dec("50")}, nil).Once()
	s.ledger.On("SumMovements", mock.Anything, domain.AccountRelation, []string{"rel-1"}, mock.MatchedBy(func(before *time.Time) bool {
		return before != nil && before.Equal(marchFrom)
	})).Return(map[string]domain.Movement{"rel-1": {Debit: dec("300"), Credit: dec("100")}}, nil).Once()
	s.ledger.On("FindStatementLines", mock.Anything, domain.AccountRelation, "rel-1", marchFrom, marchTo).
		Return([]domain.StatementLine{
			{Date: marchFrom.AddDate(0, 0, 4), VoucherNumber: "BK-000003", VoucherType: domain.VoucherBooking, Debit: dec("500"), Credit: decimal.Zero},
			{Date: marchFrom.AddDate(0, 0, 9), VoucherNumber: "RV-000010", VoucherType: domain.VoucherReceipt, Debit: decimal.Zero, Credit: dec("650")},
		}, nil).Once()
}

func (s *ReportingServiceTestSuite) TestAccountStatement_RunningBalance() {
	s.expectRelationStatement()

	st, err := s.service.AccountStatement(s.ctx, dto.StatementParams{Kind: domain.AccountRelation, ID: "rel-1", From: marchFrom, To: marchTo})

	s.Require().NoError(err)
	s.Equal("Acme", st.AccountName)
	s.True(st.OpeningBalance.Equal(dec("250")), st.OpeningBalance.String())
	s.Require().Len(st.Lines, 2)
	s.True(st.Lines[0].RunningBalance.Equal(dec("750")))
	s.True(st.Lines[1].RunningBalance.Equal(dec("100")))
	s.True(st.TotalDebit.Equal(dec("500")))
	s.True(st.TotalCredit.Equal(dec("650")))
	s.True(st.ClosingBalance.Equal(st.OpeningBalance.Add(st.TotalDebit).Sub(st.TotalCredit)))
}

func (s *ReportingServiceTestSuite) TestAccountStatement_RejectsRevenueAccounts() {
	_, err := s.service.AccountStatement(s.ctx, dto.StatementParams{Kind: domain.AccountRevenue, ID: "booking-revenue", From: marchFrom, To: marchTo})

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReportingServiceTestSuite) TestAccountStatement_ReversedPeriod() {
	_, err := s.service.AccountStatement(s.ctx, dto.StatementParams{Kind: domain.AccountBox, ID: "box-1", From: marchTo, To: marchFrom})

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *ReportingServiceTestSuite) TestExportStatement_AddsOpeningAndClosingRows() {
	s.expectRelationStatement()

	data, err := s.service.ExportStatement(s.ctx, dto.StatementParams{Kind: domain.AccountRelation, ID: "rel-1", From: marchFrom, To: marchTo})

	s.Require().NoError(err)
	rows, err := spreadsheet.ReadRows("statement.xlsx", data)
	s.Require().NoError(err)
	s.Require().Len(rows, 5)
	idx := spreadsheet.HeaderIndex(rows[0])
	s.Equal("Opening balance", spreadsheet.Cell(rows[1], idx, "description"))
	s.Equal("250.00", spreadsheet.Cell(rows[1], idx, "balance"))
	s.Equal("BK-000003", spreadsheet.Cell(rows[2], idx, "voucher"))
	s.Equal("Closing balance", spreadsheet.Cell(rows[4], idx, "description"))
	s.Equal("100.00", spreadsheet.Cell(rows[4], idx, "balance"))
}

func (s *ReportingServiceTestSuite) TestDashboard_PositionsFollowRequestedCurrency() {
	s.reportingRepo.On("SalesTotals", mock.Anything, marchFrom, marchTo, "EUR").Return(domain.SalesTotals{}, nil).Once()
	s.reportingRepo.On("RelationPositions", mock.Anything, "EUR").Return(dec("40"), dec("0"), nil).Once()
	s.subRepo.On("CountInstallmentsByStatus", mock.Anything, domain.InstallmentOverdue).Return(0, nil).Once()
	s.boxRepo.On("ListBoxes", mock.Anything, false).Return([]domain.Box{}, nil).Once()

	d, err := s.service.Dashboard(s.ctx, dto.DashboardParams{From: marchFrom, To: marchTo, Currency: "eur"})

	s.Require().NoError(err)
	s.True(d.Receivables.Equal(dec("40")))
	s.reportingRepo.AssertNotCalled(s.T(), "RelationPositions", mock.Anything, "USD")
	s.reportingRepo.AssertExpectations(s.T())
}

func (s *ReportingServiceTestSuite) TestDashboard_DefaultsCurrency() {
	s.reportingRepo.On("SalesTotals", mock.Anything, marchFrom, marchTo, "USD").
		Return(domain.SalesTotals{BookingCount: 3, VisaCount: 1, Sales: dec("2000"), Cost: dec("1500")}, nil).Once()
	s.reportingRepo.On("RelationPositions", mock.Anything, "USD").Return(dec("800"), dec("300"), nil).Once()
	s.subRepo.On("CountInstallmentsByStatus", mock.Anything, domain.InstallmentOverdue).Return(2, nil).Once()
	s.boxRepo.On("ListBoxes", mock.Anything, false).
		Return([]domain.Box{{BoxID: "box-1", Name: "Cash", CurrencyCode: "USD", OpeningBalance: dec("100")}}, nil).Once()
	s.ledger.On("SumMovements", mock.Anything, domain.AccountBox, []string{"box-1"}, (*time.Time)(nil)).
		Return(map[string]domain.Movement{"box-1": {Debit: dec("900"), Credit: dec("200")}}, nil).Once()

	d, err := s.service.Dashboard(s.ctx, dto.DashboardParams{From: marchFrom, To: marchTo})

	s.Require().NoError(err)
	s.Equal(3, d.BookingCount)
	s.True(d.Profit.Equal(dec("500")))
	s.True(d.Receivables.Equal(dec("800")))
	s.Equal(2, d.OverdueInstallmentCount)
	s.Require().Len(d.Boxes, 1)
	s.True(d.Boxes[0].Balance.Equal(dec("800")))
}

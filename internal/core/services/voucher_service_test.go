package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/core/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

type VoucherServiceTestSuite struct {
	suite.Suite
	voucherRepo  *MockVoucherRepository
	auditRepo    *MockAuditRepository
	relationRepo *MockRelationRepository
	boxRepo      *MockBoxRepository
	channelRepo  *MockChannelRepository
	idem         *MockIdempotencyStore
	service      portssvc.VoucherSvcFacade
	ctx          context.Context
}

func (s *VoucherServiceTestSuite) SetupTest() {
	s.voucherRepo = new(MockVoucherRepository)
	s.auditRepo = new(MockAuditRepository)
	s.relationRepo = new(MockRelationRepository)
	s.boxRepo = new(MockBoxRepository)
	s.channelRepo = new(MockChannelRepository)
	s.idem = new(MockIdempotencyStore)
	s.service = services.NewVoucherService(
		MockTxManager{},
		s.voucherRepo,
		s.auditRepo,
		s.relationRepo,
		s.boxRepo,
		s.channelRepo,
		services.WithIdempotencyStore(s.idem),
		services.WithVoucherClock(func() time.Time { return fixedNow }),
	)
	s.ctx = context.Background()
}

func TestVoucherServiceTestSuite(t *testing.T) {
	suite.Run(t, new(VoucherServiceTestSuite))
}

func (s *VoucherServiceTestSuite) mainBox() *domain.Box {
	return &domain.Box{BoxID: "box-1", Name: "Main Cash", CurrencyCode: "USD", IsActive: true}
}

func (s *VoucherServiceTestSuite) client() *domain.Relation {
	return &domain.Relation{RelationID: "rel-1", Name: "Acme Travel", Kind: domain.RelationClient, CurrencyCode: "USD", IsActive: true}
}

func (s *VoucherServiceTestSuite) expectSaved() *domain.Voucher {
	saved := new(domain.Voucher)
	s.voucherRepo.On("SaveVoucher", mock.Anything, mock.AnythingOfType("domain.Voucher")).
		Run(func(args mock.Arguments) { *saved = args.Get(1).(domain.Voucher) }).
		Return(nil).Once()
	s.auditRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.EntityType == domain.EntityVoucher && e.Action == domain.AuditCreate
	})).Return(nil).Once()
	return saved
}

func (s *VoucherServiceTestSuite) TestCreateReceipt_Success() {
	req := dto.CreateReceiptRequest{RelationID: "rel-1", BoxID: "box-1", Amount: dec("150.00")}
	req.Description = "deposit"

	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(s.mainBox(), nil)
	s.relationRepo.On("FindRelationByID", mock.Anything, "rel-1").Return(s.client(), nil).Once()
	s.voucherRepo.On("NextVoucherNumber", mock.Anything, domain.VoucherReceipt).Return(int64(42), nil).Once()
	saved := s.expectSaved()

	v, err := s.service.CreateReceipt(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("RV-000042", v.Number)
	s.Equal(domain.VoucherPosted, v.Status)
	s.Equal("USD", v.CurrencyCode)
	s.True(v.Amount.Equal(dec("150")))
	s.Equal(domain.DateOnly(fixedNow), v.Date)
	s.Require().Len(v.Lines, 2)
	s.Equal(domain.AccountBox, v.Lines[0].AccountKind)
	s.True(v.Lines[0].Debit.Equal(dec("150")))
	s.Equal("Main Cash", v.Lines[0].AccountName)
	s.Equal(domain.AccountRelation, v.Lines[1].AccountKind)
	s.True(v.Lines[1].Credit.Equal(dec("150")))
	s.Equal("Acme Travel", v.RelationName)
	s.Equal(v.VoucherID, saved.VoucherID)
	s.Equal(2, saved.Lines[1].LineNo)
	s.voucherRepo.AssertExpectations(s.T())
	s.auditRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestCreateReceipt_NonPositiveAmount() {
	_, err := s.service.CreateReceipt(s.ctx, dto.CreateReceiptRequest{RelationID: "rel-1", BoxID: "box-1", Amount: dec("0")}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.boxRepo.AssertNotCalled(s.T(), "FindBoxByID", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreateReceipt_UnknownBox() {
	s.boxRepo.On("FindBoxByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()

	_, err := s.service.CreateReceipt(s.ctx, dto.CreateReceiptRequest{RelationID: "rel-1", BoxID: "missing", Amount: dec("10")}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.voucherRepo.AssertNotCalled(s.T(), "SaveVoucher", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreatePayment_CurrencyMismatch() {
	rel := s.client()
	rel.CurrencyCode = "EUR"
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(s.mainBox(), nil)
	s.relationRepo.On("FindRelationByID", mock.Anything, "rel-1").Return(rel, nil).Once()

	_, err := s.service.CreatePayment(s.ctx, dto.CreatePaymentRequest{RelationID: "rel-1", BoxID: "box-1", Amount: dec("10")}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "EUR")
	s.voucherRepo.AssertNotCalled(s.T(), "NextVoucherNumber", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreateTransfer_SameBox() {
	_, err := s.service.CreateTransfer(s.ctx, dto.CreateTransferRequest{FromBoxID: "box-1", ToBoxID: "box-1", Amount: dec("5")}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *VoucherServiceTestSuite) TestCreateTransfer_InactiveDestination() {
	dest := &domain.Box{BoxID: "box-2", Name: "Bank", CurrencyCode: "USD", IsActive: false}
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(s.mainBox(), nil)
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-2").Return(dest, nil)

	_, err := s.service.CreateTransfer(s.ctx, dto.CreateTransferRequest{FromBoxID: "box-1", ToBoxID: "box-2", Amount: dec("5")}, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.Contains(err.Error(), "inactive")
}

func (s *VoucherServiceTestSuite) TestCreateDistributedVoucher_SplitsLines() {
	req := dto.CreateDistributedVoucherRequest{
		RelationID:       "rel-1",
		BoxID:            "box-1",
		TotalAmount:      dec("1000"),
		SettlementAmount: dec("600"),
		Distributions: []dto.DistributionRequest{
			{ChannelID: "ch-1", Amount: dec("400")},
			{ChannelID: "ch-2", Amount: dec("0")},
		},
	}
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(s.mainBox(), nil)
	s.relationRepo.On("FindRelationByID", mock.Anything, "rel-1").Return(s.client(), nil)
	s.channelRepo.On("FindChannelByID", mock.Anything, "ch-1").
		Return(&domain.DistributionChannel{ChannelID: "ch-1", Name: "Online", IsActive: true}, nil).Once()
	s.voucherRepo.On("NextVoucherNumber", mock.Anything, domain.VoucherDistributedReceipt).Return(int64(1), nil).Once()
	s.expectSaved()

	v, err := s.service.CreateDistributedVoucher(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("DV-000001", v.Number)
	s.Require().Len(v.Lines, 3)
	s.True(v.Lines[0].Debit.Equal(dec("1000")))
	s.True(v.Lines[1].Credit.Equal(dec("600")))
	s.Equal(domain.AccountChannel, v.Lines[2].AccountKind)
	s.Equal("Online", v.Lines[2].AccountName)
	s.channelRepo.AssertNotCalled(s.T(), "FindChannelByID", mock.Anything, "ch-2")
}

func (s *VoucherServiceTestSuite) TestCreateDistributedVoucher_PartsMustMatchTotal() {
	req := dto.CreateDistributedVoucherRequest{
		RelationID:       "rel-1",
		BoxID:            "box-1",
		TotalAmount:      dec("1000"),
		SettlementAmount: dec("500"),
		Distributions:    []dto.DistributionRequest{{ChannelID: "ch-1", Amount: dec("100")}},
	}

	_, err := s.service.CreateDistributedVoucher(s.ctx, req, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.boxRepo.AssertNotCalled(s.T(), "FindBoxByID", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreateVoucher_Unbalanced() {
	req := dto.CreateVoucherRequest{
		CurrencyCode: "usd",
		Lines: []dto.VoucherLineRequest{
			{AccountKind: domain.AccountBox, AccountID: "box-1", Debit: dec("10")},
			{AccountKind: domain.AccountRevenue, AccountID: "misc", Credit: dec("9")},
		},
	}

	_, err := s.service.CreateVoucher(s.ctx, req, "user-1")

	s.ErrorIs(err, domain.ErrVoucherUnbalanced)
	s.voucherRepo.AssertNotCalled(s.T(), "SaveVoucher", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreateVoucher_SubCentLinesRejected() {
	req := dto.CreateVoucherRequest{
		CurrencyCode: "usd",
		Lines: []dto.VoucherLineRequest{
			{AccountKind: domain.AccountBox, AccountID: "box-1", Debit: dec("0.005")},
			{AccountKind: domain.AccountBox, AccountID: "box-2", Debit: dec("0.005")},
			{AccountKind: domain.AccountRevenue, AccountID: "misc", Credit: dec("0.01")},
		},
	}

	_, err := s.service.CreateVoucher(s.ctx, req, "user-1")

	s.ErrorIs(err, domain.ErrAmountPrecision)
	s.ErrorIs(err, apperrors.ErrValidation)
	s.voucherRepo.AssertNotCalled(s.T(), "NextVoucherNumber", mock.Anything, mock.Anything)
	s.voucherRepo.AssertNotCalled(s.T(), "SaveVoucher", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreateDistributedVoucher_SubCentPartsRejected() {
	req := dto.CreateDistributedVoucherRequest{
		RelationID:       "rel-1",
		BoxID:            "box-1",
		TotalAmount:      dec("100.005"),
		SettlementAmount: dec("33.335"),
		Distributions: []dto.DistributionRequest{
			{ChannelID: "ch-1", Amount: dec("33.335")},
			{ChannelID: "ch-2", Amount: dec("33.335")},
		},
	}

	_, err := s.service.CreateDistributedVoucher(s.ctx, req, "user-1")

	s.ErrorIs(err, domain.ErrAmountPrecision)
	s.boxRepo.AssertNotCalled(s.T(), "FindBoxByID", mock.Anything, mock.Anything)
	s.voucherRepo.AssertNotCalled(s.T(), "SaveVoucher", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestCreateVoucher_FreeLedgerNamedByID() {
	req := dto.CreateVoucherRequest{
		CurrencyCode: "usd",
		Lines: []dto.VoucherLineRequest{
			{AccountKind: domain.AccountBox, AccountID: "box-1", Debit: dec("10")},
			{AccountKind: domain.AccountRevenue, AccountID: "misc-income", Credit: dec("10")},
		},
	}
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(s.mainBox(), nil).Once()
	s.voucherRepo.On("NextVoucherNumber", mock.Anything, domain.VoucherJournal).Return(int64(7), nil).Once()
	s.expectSaved()

	v, err := s.service.CreateVoucher(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("JV-000007", v.Number)
	s.Equal("USD", v.CurrencyCode)
	s.Equal("misc-income", v.Lines[1].AccountName)
	s.Nil(v.RelationID)
}

func (s *VoucherServiceTestSuite) TestIdempotentReplayReturnsOriginal() {
	original := &domain.Voucher{VoucherID: "v-1", Number: "RV-000001"}
	req := dto.CreateReceiptRequest{RelationID: "rel-1", BoxID: "box-1", Amount: dec("10")}
	req.IdempotencyKey = "abc"
	s.idem.On("Reserve", mock.Anything, "user-1:RECEIPT:abc", 24*time.Hour).Return("v-1", false, nil).Once()
	s.voucherRepo.On("FindVoucherByID", mock.Anything, "v-1").Return(original, nil).Once()

	v, err := s.service.CreateReceipt(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Same(original, v)
	s.boxRepo.AssertNotCalled(s.T(), "FindBoxByID", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestIdempotencyInFlightIsConflict() {
	req := dto.CreateReceiptRequest{RelationID: "rel-1", BoxID: "box-1", Amount: dec("10")}
	req.IdempotencyKey = "abc"
	s.idem.On("Reserve", mock.Anything, "user-1:RECEIPT:abc", 24*time.Hour).Return("", false, portsrepo.ErrIdempotencyInFlight).Once()

	_, err := s.service.CreateReceipt(s.ctx, req, "user-1")

	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *VoucherServiceTestSuite) TestIdempotencyKeyReleasedOnFailure() {
	req := dto.CreateReceiptRequest{RelationID: "rel-1", BoxID: "missing", Amount: dec("10")}
	req.IdempotencyKey = "abc"
	s.idem.On("Reserve", mock.Anything, "user-1:RECEIPT:abc", 24*time.Hour).Return("", true, nil).Once()
	s.boxRepo.On("FindBoxByID", mock.Anything, "missing").Return(nil, apperrors.ErrNotFound).Once()
	s.idem.On("Release", mock.Anything, "user-1:RECEIPT:abc").Return(nil).Once()

	_, err := s.service.CreateReceipt(s.ctx, req, "user-1")

	s.ErrorIs(err, apperrors.ErrValidation)
	s.idem.AssertExpectations(s.T())
	s.idem.AssertNotCalled(s.T(), "Complete", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestIdempotencyKeyCompletedOnSuccess() {
	req := dto.CreateReceiptRequest{RelationID: "rel-1", BoxID: "box-1", Amount: dec("10")}
	req.IdempotencyKey = "abc"
	s.idem.On("Reserve", mock.Anything, "user-1:RECEIPT:abc", 24*time.Hour).Return("", true, nil).Once()
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(s.mainBox(), nil)
	s.relationRepo.On("FindRelationByID", mock.Anything, "rel-1").Return(s.client(), nil)
	s.voucherRepo.On("NextVoucherNumber", mock.Anything, domain.VoucherReceipt).Return(int64(3), nil).Once()
	s.expectSaved()
	s.idem.On("Complete", mock.Anything, "user-1:RECEIPT:abc", mock.AnythingOfType("string"), 24*time.Hour).Return(nil).Once()

	v, err := s.service.CreateReceipt(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.idem.AssertCalled(s.T(), "Complete", mock.Anything, "user-1:RECEIPT:abc", v.VoucherID, 24*time.Hour)
}

func (s *VoucherServiceTestSuite) TestIdempotencyKeyScopedByVoucherType() {
	req := dto.CreatePaymentRequest{RelationID: "rel-1", BoxID: "box-1", Amount: dec("10")}
	req.IdempotencyKey = "abc"
	// the same key was already used for a receipt; a payment must not replay it
	s.idem.On("Reserve", mock.Anything, "user-1:PAYMENT:abc", 24*time.Hour).Return("", true, nil).Once()
	s.boxRepo.On("FindBoxByID", mock.Anything, "box-1").Return(s.mainBox(), nil)
	s.relationRepo.On("FindRelationByID", mock.Anything, "rel-1").Return(s.client(), nil)
	s.voucherRepo.On("NextVoucherNumber", mock.Anything, domain.VoucherPayment).Return(int64(4), nil).Once()
	s.expectSaved()
	s.idem.On("Complete", mock.Anything, "user-1:PAYMENT:abc", mock.AnythingOfType("string"), 24*time.Hour).Return(nil).Once()

	v, err := s.service.CreatePayment(s.ctx, req, "user-1")

	s.Require().NoError(err)
	s.Equal("PV-000004", v.Number)
	s.idem.AssertNotCalled(s.T(), "Reserve", mock.Anything, "user-1:RECEIPT:abc", mock.Anything)
	s.voucherRepo.AssertNotCalled(s.T(), "FindVoucherByID", mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestVoidVoucher_Manual() {
	v := &domain.Voucher{VoucherID: "v-1", Number: "RV-000001", Status: domain.VoucherPosted}
	s.voucherRepo.On("FindVoucherByID", mock.Anything, "v-1").Return(v, nil).Once()
	s.voucherRepo.On("UpdateVoucherStatus", mock.Anything, "v-1", domain.VoucherVoided, "typo", "user-1", fixedNow).Return(nil).Once()
	s.auditRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.Action == domain.AuditVoid && e.EntityID == "v-1"
	})).Return(nil).Once()

	got, err := s.service.VoidVoucher(s.ctx, "v-1", "typo", "user-1")

	s.Require().NoError(err)
	s.Equal(domain.VoucherVoided, got.Status)
	s.Equal("typo", got.VoidReason)
	s.voucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestVoidVoucher_GeneratedRejected() {
	v := &domain.Voucher{VoucherID: "v-1", Number: "BK-000001", Status: domain.VoucherPosted, SourceType: domain.EntityBooking, SourceID: "b-1"}
	s.voucherRepo.On("FindVoucherByID", mock.Anything, "v-1").Return(v, nil).Once()

	_, err := s.service.VoidVoucher(s.ctx, "v-1", "typo", "user-1")

	s.ErrorIs(err, apperrors.ErrConflict)
	s.voucherRepo.AssertNotCalled(s.T(), "UpdateVoucherStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestVoidVoucher_AlreadyVoided() {
	v := &domain.Voucher{VoucherID: "v-1", Number: "RV-000001", Status: domain.VoucherVoided}
	s.voucherRepo.On("FindVoucherByID", mock.Anything, "v-1").Return(v, nil).Once()

	_, err := s.service.VoidVoucher(s.ctx, "v-1", "again", "user-1")

	s.ErrorIs(err, apperrors.ErrConflict)
}

func (s *VoucherServiceTestSuite) TestVoidGeneratedVoucher_Idempotent() {
	v := &domain.Voucher{VoucherID: "v-1", Status: domain.VoucherVoided, SourceType: domain.EntityBooking}
	s.voucherRepo.On("FindVoucherByID", mock.Anything, "v-1").Return(v, nil).Once()

	err := s.service.VoidGeneratedVoucher(s.ctx, "v-1", "cancelled", "user-1")

	s.NoError(err)
	s.voucherRepo.AssertNotCalled(s.T(), "UpdateVoucherStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *VoucherServiceTestSuite) TestDeleteVoucher_Archives() {
	v := &domain.Voucher{VoucherID: "v-1", Number: "PV-000009", Status: domain.VoucherPosted}
	s.voucherRepo.On("FindVoucherByID", mock.Anything, "v-1").Return(v, nil).Once()
	s.voucherRepo.On("ArchiveVoucher", mock.Anything, mock.MatchedBy(func(d domain.DeletedVoucher) bool {
		return d.Voucher.VoucherID == "v-1" && d.Reason == "duplicate" && d.DeletedBy == "user-1" && d.DeletedAt.Equal(fixedNow)
	})).Return(nil).Once()
	s.auditRepo.On("SaveAuditLog", mock.Anything, mock.MatchedBy(func(e domain.AuditLog) bool {
		return e.Action == domain.AuditDelete
	})).Return(nil).Once()

	err := s.service.DeleteVoucher(s.ctx, "v-1", "duplicate", "user-1")

	s.NoError(err)
	s.voucherRepo.AssertExpectations(s.T())
}

func (s *VoucherServiceTestSuite) TestListVouchers_RejectsUnknownType() {
	_, err := s.service.ListVouchers(s.ctx, dto.ListVouchersParams{Type: "bogus"})

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *VoucherServiceTestSuite) TestListVouchers_NormalizesFilter() {
	s.voucherRepo.On("ListVouchers", mock.Anything, mock.MatchedBy(func(f domain.VoucherFilter) bool {
		return f.Limit == 100 && f.Type != nil && *f.Type == domain.VoucherReceipt && f.RelationID == "rel-1"
	})).Return(nil, nil, nil).Once()

	resp, err := s.service.ListVouchers(s.ctx, dto.ListVouchersParams{Type: "receipt", RelationID: "rel-1", Limit: 5000})

	s.Require().NoError(err)
	s.NotNil(resp.Vouchers)
	s.Empty(resp.Vouchers)
	s.Nil(resp.NextToken)
}

func TestPostVoucher_RejectsUnknownType(t *testing.T) {
	svc := services.NewVoucherService(MockTxManager{}, new(MockVoucherRepository), nil, nil, nil, nil)

	_, err := svc.PostVoucher(context.Background(), domain.Voucher{Type: "NOPE"}, "user-1")

	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

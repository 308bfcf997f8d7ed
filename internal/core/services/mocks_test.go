package services_test

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"golang.org/x/oauth2"
	"google.golang.org/api/idtoken"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// --- Mock TransactionManager ---
type MockTxManager struct{}

func (MockTxManager) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// --- Mock AuditRepository ---
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) SaveAuditLog(ctx context.Context, entry domain.AuditLog) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) ListAuditLogs(ctx context.Context, entityType, entityID string, limit, offset int) ([]domain.AuditLog, error) {
	args := m.Called(ctx, entityType, entityID, limit, offset)
	var logs []domain.AuditLog
	if args.Get(0) != nil {
		logs = args.Get(0).([]domain.AuditLog)
	}
	return logs, args.Error(1)
}

// --- Mock VoucherRepository ---
type MockVoucherRepository struct {
	mock.Mock
}

func (m *MockVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucherID)
	var v *domain.Voucher
	if args.Get(0) != nil {
		v = args.Get(0).(*domain.Voucher)
	}
	return v, args.Error(1)
}

func (m *MockVoucherRepository) ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, *string, error) {
	args := m.Called(ctx, filter)
	var vs []domain.Voucher
	if args.Get(0) != nil {
		vs = args.Get(0).([]domain.Voucher)
	}
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	return vs, next, args.Error(2)
}

func (m *MockVoucherRepository) IsAccountReferenced(ctx context.Context, kind domain.AccountKind, accountID string) (bool, error) {
	args := m.Called(ctx, kind, accountID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVoucherRepository) SumMovements(ctx context.Context, kind domain.AccountKind, accountIDs []string, before *time.Time) (map[string]domain.Movement, error) {
	args := m.Called(ctx, kind, accountIDs, before)
	var out map[string]domain.Movement
	if args.Get(0) != nil {
		out = args.Get(0).(map[string]domain.Movement)
	}
	return out, args.Error(1)
}

func (m *MockVoucherRepository) FindStatementLines(ctx context.Context, kind domain.AccountKind, accountID string, from, to time.Time) ([]domain.StatementLine, error) {
	args := m.Called(ctx, kind, accountID, from, to)
	var out []domain.StatementLine
	if args.Get(0) != nil {
		out = args.Get(0).([]domain.StatementLine)
	}
	return out, args.Error(1)
}

func (m *MockVoucherRepository) NextVoucherNumber(ctx context.Context, voucherType domain.VoucherType) (int64, error) {
	args := m.Called(ctx, voucherType)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVoucherRepository) SaveVoucher(ctx context.Context, voucher domain.Voucher) error {
	args := m.Called(ctx, voucher)
	return args.Error(0)
}

func (m *MockVoucherRepository) UpdateVoucherStatus(ctx context.Context, voucherID string, status domain.VoucherStatus, reason string, userID string, at time.Time) error {
	args := m.Called(ctx, voucherID, status, reason, userID, at)
	return args.Error(0)
}

func (m *MockVoucherRepository) ArchiveVoucher(ctx context.Context, deleted domain.DeletedVoucher) error {
	args := m.Called(ctx, deleted)
	return args.Error(0)
}

// --- Mock RelationRepository ---
type MockRelationRepository struct {
	mock.Mock
}

func (m *MockRelationRepository) SaveRelation(ctx context.Context, relation domain.Relation) error {
	args := m.Called(ctx, relation)
	return args.Error(0)
}

func (m *MockRelationRepository) UpdateRelation(ctx context.Context, relation domain.Relation) error {
	args := m.Called(ctx, relation)
	return args.Error(0)
}

func (m *MockRelationRepository) FindRelationByID(ctx context.Context, relationID string) (*domain.Relation, error) {
	args := m.Called(ctx, relationID)
	var r *domain.Relation
	if args.Get(0) != nil {
		r = args.Get(0).(*domain.Relation)
	}
	return r, args.Error(1)
}

func (m *MockRelationRepository) ListRelations(ctx context.Context, filter domain.RelationFilter) ([]domain.Relation, int, error) {
	args := m.Called(ctx, filter)
	var rs []domain.Relation
	if args.Get(0) != nil {
		rs = args.Get(0).([]domain.Relation)
	}
	return rs, args.Int(1), args.Error(2)
}

func (m *MockRelationRepository) DeleteRelation(ctx context.Context, relationID string) error {
	args := m.Called(ctx, relationID)
	return args.Error(0)
}

// --- Mock BoxRepository ---
type MockBoxRepository struct {
	mock.Mock
}

func (m *MockBoxRepository) SaveBox(ctx context.Context, box domain.Box) error {
	args := m.Called(ctx, box)
	return args.Error(0)
}

func (m *MockBoxRepository) UpdateBox(ctx context.Context, box domain.Box) error {
	args := m.Called(ctx, box)
	return args.Error(0)
}

func (m *MockBoxRepository) FindBoxByID(ctx context.Context, boxID string) (*domain.Box, error) {
	args := m.Called(ctx, boxID)
	var b *domain.Box
	if args.Get(0) != nil {
		b = args.Get(0).(*domain.Box)
	}
	return b, args.Error(1)
}

func (m *MockBoxRepository) ListBoxes(ctx context.Context, includeInactive bool) ([]domain.Box, error) {
	args := m.Called(ctx, includeInactive)
	var bs []domain.Box
	if args.Get(0) != nil {
		bs = args.Get(0).([]domain.Box)
	}
	return bs, args.Error(1)
}

func (m *MockBoxRepository) DeleteBox(ctx context.Context, boxID string) error {
	args := m.Called(ctx, boxID)
	return args.Error(0)
}

// --- Mock ChannelRepository ---
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) SaveChannel(ctx context.Context, channel domain.DistributionChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelRepository) UpdateChannel(ctx context.Context, channel domain.DistributionChannel) error {
	args := m.Called(ctx, channel)
	return args.Error(0)
}

func (m *MockChannelRepository) FindChannelByID(ctx context.Context, channelID string) (*domain.DistributionChannel, error) {
	args := m.Called(ctx, channelID)
	var c *domain.DistributionChannel
	if args.Get(0) != nil {
		c = args.Get(0).(*domain.DistributionChannel)
	}
	return c, args.Error(1)
}

func (m *MockChannelRepository) ListChannels(ctx context.Context, includeInactive bool) ([]domain.DistributionChannel, error) {
	args := m.Called(ctx, includeInactive)
	var cs []domain.DistributionChannel
	if args.Get(0) != nil {
		cs = args.Get(0).([]domain.DistributionChannel)
	}
	return cs, args.Error(1)
}

func (m *MockChannelRepository) DeleteChannel(ctx context.Context, channelID string) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

// --- Mock IdempotencyStore ---
type MockIdempotencyStore struct {
	mock.Mock
}

func (m *MockIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Complete(ctx context.Context, key, result string, ttl time.Duration) error {
	args := m.Called(ctx, key, result, ttl)
	return args.Error(0)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// --- Mock VoucherPosterSvc ---
type MockVoucherPoster struct {
	mock.Mock
}

func (m *MockVoucherPoster) PostVoucher(ctx context.Context, voucher domain.Voucher, userID string) (*domain.Voucher, error) {
	args := m.Called(ctx, voucher, userID)
	var v *domain.Voucher
	if args.Get(0) != nil {
		v = args.Get(0).(*domain.Voucher)
	}
	return v, args.Error(1)
}

func (m *MockVoucherPoster) VoidGeneratedVoucher(ctx context.Context, voucherID, reason, userID string) error {
	args := m.Called(ctx, voucherID, reason, userID)
	return args.Error(0)
}

// --- Mock BookingRepository ---
type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) SaveBooking(ctx context.Context, booking domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) UpdateBooking(ctx context.Context, booking domain.Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockBookingRepository) FindBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	var b *domain.Booking
	if args.Get(0) != nil {
		b = args.Get(0).(*domain.Booking)
	}
	return b, args.Error(1)
}

func (m *MockBookingRepository) ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	args := m.Called(ctx, filter)
	var bs []domain.Booking
	if args.Get(0) != nil {
		bs = args.Get(0).([]domain.Booking)
	}
	return bs, args.Error(1)
}

func (m *MockBookingRepository) FindDepartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	args := m.Called(ctx, from, to)
	var bs []domain.Booking
	if args.Get(0) != nil {
		bs = args.Get(0).([]domain.Booking)
	}
	return bs, args.Error(1)
}

// --- Mock VisaRepository ---
type MockVisaRepository struct {
	mock.Mock
}

func (m *MockVisaRepository) SaveVisa(ctx context.Context, visa domain.VisaBooking) error {
	args := m.Called(ctx, visa)
	return args.Error(0)
}

func (m *MockVisaRepository) UpdateVisa(ctx context.Context, visa domain.VisaBooking) error {
	args := m.Called(ctx, visa)
	return args.Error(0)
}

func (m *MockVisaRepository) FindVisaByID(ctx context.Context, visaID string) (*domain.VisaBooking, error) {
	args := m.Called(ctx, visaID)
	var v *domain.VisaBooking
	if args.Get(0) != nil {
		v = args.Get(0).(*domain.VisaBooking)
	}
	return v, args.Error(1)
}

func (m *MockVisaRepository) ListVisas(ctx context.Context, filter domain.VisaFilter) ([]domain.VisaBooking, error) {
	args := m.Called(ctx, filter)
	var vs []domain.VisaBooking
	if args.Get(0) != nil {
		vs = args.Get(0).([]domain.VisaBooking)
	}
	return vs, args.Error(1)
}

// --- Mock SubscriptionRepository ---
type MockSubscriptionRepository struct {
	mock.Mock
}

func (m *MockSubscriptionRepository) SaveSubscription(ctx context.Context, sub domain.Subscription) error {
	args := m.Called(ctx, sub)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) UpdateSubscriptionStatus(ctx context.Context, subscriptionID string, status domain.SubscriptionStatus, userID string, at time.Time) error {
	args := m.Called(ctx, subscriptionID, status, userID, at)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	args := m.Called(ctx, subscriptionID)
	var s *domain.Subscription
	if args.Get(0) != nil {
		s = args.Get(0).(*domain.Subscription)
	}
	return s, args.Error(1)
}

func (m *MockSubscriptionRepository) ListSubscriptions(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error) {
	args := m.Called(ctx, filter)
	var ss []domain.Subscription
	if args.Get(0) != nil {
		ss = args.Get(0).([]domain.Subscription)
	}
	return ss, args.Error(1)
}

func (m *MockSubscriptionRepository) FindInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	args := m.Called(ctx, installmentID)
	var i *domain.Installment
	if args.Get(0) != nil {
		i = args.Get(0).(*domain.Installment)
	}
	return i, args.Error(1)
}

func (m *MockSubscriptionRepository) LockSubscription(ctx context.Context, subscriptionID string) (domain.SubscriptionStatus, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Get(0).(domain.SubscriptionStatus), args.Error(1)
}

func (m *MockSubscriptionRepository) MarkInstallmentPaid(ctx context.Context, installment domain.Installment) error {
	args := m.Called(ctx, installment)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) CountOpenInstallments(ctx context.Context, subscriptionID string) (int, error) {
	args := m.Called(ctx, subscriptionID)
	return args.Int(0), args.Error(1)
}

func (m *MockSubscriptionRepository) CancelOpenInstallments(ctx context.Context, subscriptionID string) error {
	args := m.Called(ctx, subscriptionID)
	return args.Error(0)
}

func (m *MockSubscriptionRepository) MarkOverdue(ctx context.Context, today time.Time) ([]domain.Installment, error) {
	args := m.Called(ctx, today)
	var is []domain.Installment
	if args.Get(0) != nil {
		is = args.Get(0).([]domain.Installment)
	}
	return is, args.Error(1)
}

func (m *MockSubscriptionRepository) CountInstallmentsByStatus(ctx context.Context, status domain.InstallmentStatus) (int, error) {
	args := m.Called(ctx, status)
	return args.Int(0), args.Error(1)
}

// --- Mock SegmentRepository ---
type MockSegmentRepository struct {
	mock.Mock
}

func (m *MockSegmentRepository) SaveSegment(ctx context.Context, segment domain.Segment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockSegmentRepository) UpdateSegment(ctx context.Context, segment domain.Segment) error {
	args := m.Called(ctx, segment)
	return args.Error(0)
}

func (m *MockSegmentRepository) FindSegmentByID(ctx context.Context, segmentID string) (*domain.Segment, error) {
	args := m.Called(ctx, segmentID)
	var s *domain.Segment
	if args.Get(0) != nil {
		s = args.Get(0).(*domain.Segment)
	}
	return s, args.Error(1)
}

func (m *MockSegmentRepository) ListSegments(ctx context.Context, limit, offset int) ([]domain.Segment, error) {
	args := m.Called(ctx, limit, offset)
	var ss []domain.Segment
	if args.Get(0) != nil {
		ss = args.Get(0).([]domain.Segment)
	}
	return ss, args.Error(1)
}

func (m *MockSegmentRepository) DeleteSegment(ctx context.Context, segmentID string) error {
	args := m.Called(ctx, segmentID)
	return args.Error(0)
}

// --- Mock NotificationRepository ---
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) CreateNotification(ctx context.Context, n domain.Notification) (bool, error) {
	args := m.Called(ctx, n)
	return args.Bool(0), args.Error(1)
}

func (m *MockNotificationRepository) ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error) {
	args := m.Called(ctx, userID, unreadOnly, limit)
	var ns []domain.Notification
	if args.Get(0) != nil {
		ns = args.Get(0).([]domain.Notification)
	}
	return ns, args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

func (m *MockReportingRepository) SalesTotals(ctx context.Context, from, to time.Time, currencyCode string) (domain.SalesTotals, error) {
	args := m.Called(ctx, from, to, currencyCode)
	return args.Get(0).(domain.SalesTotals), args.Error(1)
}

func (m *MockReportingRepository) RelationPositions(ctx context.Context, currencyCode string) (decimal.Decimal, decimal.Decimal, error) {
	args := m.Called(ctx, currencyCode)
	return args.Get(0).(decimal.Decimal), args.Get(1).(decimal.Decimal), args.Error(2)
}

// --- Mock UserRepository ---
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserRepository) FindUsers(ctx context.Context, limit int, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserRepository) CountUsers(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *MockUserRepository) SaveUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateUser(ctx context.Context, user domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, refreshTokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockUserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) MarkUserDeleted(ctx context.Context, userID string, deletedAt time.Time, deletedBy string) error {
	args := m.Called(ctx, userID, deletedAt, deletedBy)
	return args.Error(0)
}

// --- Mock APITokenRepository ---
type MockAPITokenRepository struct {
	mock.Mock
}

func (m *MockAPITokenRepository) Create(ctx context.Context, token domain.APIToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockAPITokenRepository) FindByID(ctx context.Context, id string) (*domain.APIToken, error) {
	args := m.Called(ctx, id)
	var t *domain.APIToken
	if args.Get(0) != nil {
		t = args.Get(0).(*domain.APIToken)
	}
	return t, args.Error(1)
}

func (m *MockAPITokenRepository) FindByUserID(ctx context.Context, userID string) ([]domain.APIToken, error) {
	args := m.Called(ctx, userID)
	var ts []domain.APIToken
	if args.Get(0) != nil {
		ts = args.Get(0).([]domain.APIToken)
	}
	return ts, args.Error(1)
}

func (m *MockAPITokenRepository) TouchLastUsed(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAPITokenRepository) Delete(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *MockAPITokenRepository) DeleteByUserID(ctx context.Context, userID string, at time.Time) error {
	args := m.Called(ctx, userID, at)
	return args.Error(0)
}

// --- Mock AttachmentStore ---
type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockAttachmentStore) Put(ctx context.Context, key, contentType string, data []byte) error {
	args := m.Called(ctx, key, contentType, data)
	return args.Error(0)
}

func (m *MockAttachmentStore) Get(ctx context.Context, key string) ([]byte, string, error) {
	args := m.Called(ctx, key)
	var data []byte
	if args.Get(0) != nil {
		data = args.Get(0).([]byte)
	}
	return data, args.String(1), args.Error(2)
}

// --- Mock DocumentExtractor ---
type MockExtractor struct {
	mock.Mock
}

func (m *MockExtractor) Extract(ctx context.Context, kind domain.DocumentKind, doc domain.Document) (*domain.ExtractedDocument, error) {
	args := m.Called(ctx, kind, doc)
	var out *domain.ExtractedDocument
	if args.Get(0) != nil {
		out = args.Get(0).(*domain.ExtractedDocument)
	}
	return out, args.Error(1)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func strPtr(s string) *string {
	return &s
}

// --- Mock UserSvcFacade ---
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	args := m.Called(ctx, userID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserService) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	args := m.Called(ctx, limit, offset)
	var users []domain.User
	if args.Get(0) != nil {
		users = args.Get(0).([]domain.User)
	}
	return users, args.Error(1)
}

func (m *MockUserService) RegisterUser(ctx context.Context, req dto.RegisterRequest, requestingUserID string) (*domain.User, error) {
	args := m.Called(ctx, req, requestingUserID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserService) FindOrCreateOAuthUser(ctx context.Context, email, name, provider string) (*domain.User, error) {
	args := m.Called(ctx, email, name, provider)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, requestingUserID string) (*domain.User, error) {
	args := m.Called(ctx, userID, req, requestingUserID)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

func (m *MockUserService) UpdateRefreshToken(ctx context.Context, userID string, refreshTokenHash string, expiresAt time.Time) error {
	return m.Called(ctx, userID, refreshTokenHash, expiresAt).Error(0)
}

func (m *MockUserService) ClearRefreshToken(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

func (m *MockUserService) DeleteUser(ctx context.Context, userID string, requestingUserID string) error {
	return m.Called(ctx, userID, requestingUserID).Error(0)
}

func (m *MockUserService) AuthenticateUser(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

// --- Mock TokenSvcFacade ---
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) GenerateAccessToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) GenerateRefreshToken(ctx context.Context, user *domain.User) (string, time.Time, error) {
	args := m.Called(ctx, user)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}

func (m *MockTokenService) ValidateAndParseRefreshToken(ctx context.Context, userID string, refreshTokenString string) (*domain.User, error) {
	args := m.Called(ctx, userID, refreshTokenString)
	var user *domain.User
	if args.Get(0) != nil {
		user = args.Get(0).(*domain.User)
	}
	return user, args.Error(1)
}

// --- Mock GoogleOAuthHandlerSvcFacade ---
type MockGoogleOAuth struct {
	mock.Mock
}

func (m *MockGoogleOAuth) GetGoogleLoginURL(ctx context.Context, state string) string {
	return m.Called(ctx, state).String(0)
}

func (m *MockGoogleOAuth) ExchangeCodeForToken(ctx context.Context, code string) (*oauth2.Token, error) {
	args := m.Called(ctx, code)
	var token *oauth2.Token
	if args.Get(0) != nil {
		token = args.Get(0).(*oauth2.Token)
	}
	return token, args.Error(1)
}

func (m *MockGoogleOAuth) ValidateGoogleIDToken(ctx context.Context, idTokenString string) (*idtoken.Payload, error) {
	args := m.Called(ctx, idTokenString)
	var payload *idtoken.Payload
	if args.Get(0) != nil {
		payload = args.Get(0).(*idtoken.Payload)
	}
	return payload, args.Error(1)
}

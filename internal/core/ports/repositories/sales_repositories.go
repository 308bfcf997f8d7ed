package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// BookingRepository persists ticket bookings.
type BookingRepository interface {
	SaveBooking(ctx context.Context, booking domain.Booking) error
	UpdateBooking(ctx context.Context, booking domain.Booking) error
	FindBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListBookings(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	// FindDepartingBetween lists active or paid bookings whose travel date is in [from, to].
	FindDepartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

// VisaRepository persists visa applications.
type VisaRepository interface {
	SaveVisa(ctx context.Context, visa domain.VisaBooking) error
	UpdateVisa(ctx context.Context, visa domain.VisaBooking) error
	FindVisaByID(ctx context.Context, visaID string) (*domain.VisaBooking, error)
	ListVisas(ctx context.Context, filter domain.VisaFilter) ([]domain.VisaBooking, error)
}

// SubscriptionRepository persists subscriptions and their installments.
type SubscriptionRepository interface {
	// SaveSubscription inserts a subscription together with its installments.
	SaveSubscription(ctx context.Context, sub domain.Subscription) error
	UpdateSubscriptionStatus(ctx context.Context, subscriptionID string, status domain.SubscriptionStatus, userID string, at time.Time) error
	// FindSubscriptionByID returns the subscription with its installments ordered by sequence.
	FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, filter domain.SubscriptionFilter) ([]domain.Subscription, error)

	// LockSubscription takes a row lock on the subscription for the rest of the transaction and
	// returns its current status.
	LockSubscription(ctx context.Context, subscriptionID string) (domain.SubscriptionStatus, error)

	FindInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error)
	// MarkInstallmentPaid records the payment of a PENDING or OVERDUE installment. It returns
	// ErrConflict when the installment is no longer open.
	MarkInstallmentPaid(ctx context.Context, installment domain.Installment) error
	CountOpenInstallments(ctx context.Context, subscriptionID string) (int, error)
	// CancelOpenInstallments cancels every pending or overdue installment of a subscription.
	CancelOpenInstallments(ctx context.Context, subscriptionID string) error
	// MarkOverdue flips PENDING installments due before today to OVERDUE and returns them.
	MarkOverdue(ctx context.Context, today time.Time) ([]domain.Installment, error)
	CountInstallmentsByStatus(ctx context.Context, status domain.InstallmentStatus) (int, error)
}

// SegmentRepository persists revenue-sharing segments.
type SegmentRepository interface {
	SaveSegment(ctx context.Context, segment domain.Segment) error
	UpdateSegment(ctx context.Context, segment domain.Segment) error
	FindSegmentByID(ctx context.Context, segmentID string) (*domain.Segment, error)
	ListSegments(ctx context.Context, limit, offset int) ([]domain.Segment, error)
	DeleteSegment(ctx context.Context, segmentID string) error
}

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	// CreateNotification inserts a notification unless one already exists for the same
	// kind and entity. It reports whether a row was written.
	CreateNotification(ctx context.Context, n domain.Notification) (bool, error)
	ListNotifications(ctx context.Context, userID string, unreadOnly bool, limit int) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

// ReportingRepository runs aggregate queries for the dashboard and segments.
type ReportingRepository interface {
	// SalesTotals sums non-cancelled bookings (by travel date) and visas (by submission date)
	// in [from, to] for one currency.
	SalesTotals(ctx context.Context, from, to time.Time, currencyCode string) (domain.SalesTotals, error)
	// RelationPositions returns, for relations kept in currencyCode, the sum of positive balances
	// (owed to us) and the sum of negative balances as a positive amount (owed by us).
	RelationPositions(ctx context.Context, currencyCode string) (receivables, payables decimal.Decimal, err error)
}

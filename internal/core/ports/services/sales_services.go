package services

import (
	"context"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// BookingSvcFacade manages ticket bookings and the vouchers they post.
type BookingSvcFacade interface {
	// CreateBooking stores the booking and posts its BOOKING voucher in one transaction.
	CreateBooking(ctx context.Context, req dto.CreateBookingRequest, userID string) (*domain.Booking, error)
	GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error)
	ListBookings(ctx context.Context, params dto.ListBookingsParams) ([]domain.Booking, error)
	// UpdateBooking changes non-financial fields only.
	UpdateBooking(ctx context.Context, bookingID string, req dto.UpdateBookingRequest, userID string) (*domain.Booking, error)
	// CancelBooking sets the booking CANCELLED and voids its voucher.
	CancelBooking(ctx context.Context, bookingID, reason, userID string) (*domain.Booking, error)
	MarkBookingPaid(ctx context.Context, bookingID, userID string) (*domain.Booking, error)
	// AttachBookingDocument stores a ticket file and records its key on the booking.
	AttachBookingDocument(ctx context.Context, bookingID, dataURI, userID string) (*domain.Booking, error)
	// UpcomingDepartures lists live bookings travelling between from and to inclusive.
	UpcomingDepartures(ctx context.Context, from, to time.Time) ([]domain.Booking, error)
}

// VisaSvcFacade manages visa applications.
type VisaSvcFacade interface {
	CreateVisa(ctx context.Context, req dto.CreateVisaRequest, userID string) (*domain.VisaBooking, error)
	GetVisa(ctx context.Context, visaID string) (*domain.VisaBooking, error)
	ListVisas(ctx context.Context, params dto.ListVisasParams) ([]domain.VisaBooking, error)
	UpdateVisa(ctx context.Context, visaID string, req dto.UpdateVisaRequest, userID string) (*domain.VisaBooking, error)
	CancelVisa(ctx context.Context, visaID, reason, userID string) (*domain.VisaBooking, error)
	MarkVisaPaid(ctx context.Context, visaID, userID string) (*domain.VisaBooking, error)
	AttachVisaDocument(ctx context.Context, visaID, dataURI, userID string) (*domain.VisaBooking, error)
}

// SubscriptionSvcFacade manages installment plans.
type SubscriptionSvcFacade interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest, userID string) (*domain.Subscription, error)
	GetSubscription(ctx context.Context, subscriptionID string) (*domain.Subscription, error)
	ListSubscriptions(ctx context.Context, params dto.ListSubscriptionsParams) ([]domain.Subscription, error)
	// CancelSubscription cancels the subscription and every open installment.
	CancelSubscription(ctx context.Context, subscriptionID, userID string) (*domain.Subscription, error)
	// PayInstallment posts an INSTALLMENT receipt and marks the installment PAID.
	PayInstallment(ctx context.Context, installmentID string, req dto.PayInstallmentRequest, userID string) (*dto.PayInstallmentResponse, error)
	// GetProfitDistribution splits the subscription's profit between the agency and its partners.
	GetProfitDistribution(ctx context.Context, subscriptionID string) (*domain.ProfitDistribution, error)
	// MarkOverdue flags pending installments due before now's date as OVERDUE.
	MarkOverdue(ctx context.Context, now time.Time) ([]domain.Installment, error)
}

// SegmentSvcFacade manages periodic revenue sharing with partner companies.
type SegmentSvcFacade interface {
	// ComputeSegment previews a segment without storing it.
	ComputeSegment(ctx context.Context, req dto.ComputeSegmentRequest) (*domain.Segment, error)
	CreateSegment(ctx context.Context, req dto.ComputeSegmentRequest, userID string) (*domain.Segment, error)
	GetSegment(ctx context.Context, segmentID string) (*domain.Segment, error)
	ListSegments(ctx context.Context, params dto.ListParams) ([]domain.Segment, error)
	// FinalizeSegment posts the partners' shares and locks the segment.
	FinalizeSegment(ctx context.Context, segmentID, userID string) (*domain.Segment, error)
	// DeleteSegment removes a DRAFT segment.
	DeleteSegment(ctx context.Context, segmentID, userID string) error
}

// NotificationSvc manages in-app notifications.
type NotificationSvc interface {
	// Notify stores a notification unless an identical one exists. It reports whether it was stored.
	Notify(ctx context.Context, n domain.Notification) (bool, error)
	ListNotifications(ctx context.Context, userID string, params dto.ListNotificationsParams) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
}

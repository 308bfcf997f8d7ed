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

var errStorageNotConfigured = fmt.Errorf("%w: attachment storage is not configured", apperrors.ErrValidation)

type bookingService struct {
	BaseService
	bookingRepo  portsrepo.BookingRepository
	relationRepo portsrepo.RelationRepository
	vouchers     portssvc.VoucherPosterSvc
	attachments  portssvc.AttachmentStore
}

// SalesServiceOption configures the booking and visa services.
type SalesServiceOption func(*BaseService, *portssvc.AttachmentStore)

// WithAttachmentStore enables document uploads.
func WithAttachmentStore(store portssvc.AttachmentStore) SalesServiceOption {
	return func(_ *BaseService, dst *portssvc.AttachmentStore) {
		*dst = store
	}
}

// WithSalesClock overrides the clock, for tests.
func WithSalesClock(now func() time.Time) SalesServiceOption {
	return func(b *BaseService, _ *portssvc.AttachmentStore) {
		b.Now = now
	}
}

// NewBookingService creates a new booking service.
func NewBookingService(
	txManager portsrepo.TransactionManager,
	bookingRepo portsrepo.BookingRepository,
	relationRepo portsrepo.RelationRepository,
	auditRepo portsrepo.AuditRepository,
	vouchers portssvc.VoucherPosterSvc,
	opts ...SalesServiceOption,
) portssvc.BookingSvcFacade {
	s := &bookingService{
		BaseService:  BaseService{TxManager: txManager, AuditRepo: auditRepo},
		bookingRepo:  bookingRepo,
		relationRepo: relationRepo,
		vouchers:     vouchers,
	}
	for _, opt := range opts {
		opt(&s.BaseService, &s.attachments)
	}
	return s
}

var _ portssvc.BookingSvcFacade = (*bookingService)(nil)

// saleParties loads and checks the client and supplier of a sale.
func saleParties(ctx context.Context, repo portsrepo.RelationRepository, clientID, supplierID, currencyCode string) (client, supplier *domain.Relation, err error) {
	client, err = repo.FindRelationByID(ctx, clientID)
	if err != nil {
		return nil, nil, notFoundAsValidation(err, "client", clientID)
	}
	if !client.IsClient() {
		return nil, nil, fmt.Errorf("%w: relation %s is not a client", apperrors.ErrValidation, client.Name)
	}
	if !client.IsActive {
		return nil, nil, fmt.Errorf("%w: client %s is inactive", apperrors.ErrValidation, client.Name)
	}
	if client.CurrencyCode != currencyCode {
		return nil, nil, fmt.Errorf("%w: client %s uses %s, not %s", apperrors.ErrValidation, client.Name, client.CurrencyCode, currencyCode)
	}

	supplier, err = repo.FindRelationByID(ctx, supplierID)
	if err != nil {
		return nil, nil, notFoundAsValidation(err, "supplier", supplierID)
	}
	if !supplier.IsSupplier() {
		return nil, nil, fmt.Errorf("%w: relation %s is not a supplier", apperrors.ErrValidation, supplier.Name)
	}
	if !supplier.IsActive {
		return nil, nil, fmt.Errorf("%w: supplier %s is inactive", apperrors.ErrValidation, supplier.Name)
	}
	if supplier.CurrencyCode != currencyCode {
		return nil, nil, fmt.Errorf("%w: supplier %s uses %s, not %s", apperrors.ErrValidation, supplier.Name, supplier.CurrencyCode, currencyCode)
	}
	return client, supplier, nil
}

func checkPrices(cost, sale decimal.Decimal) error {
	if cost.IsNegative() || sale.IsNegative() {
		return fmt.Errorf("%w: prices cannot be negative", apperrors.ErrValidation)
	}
	if cost.IsZero() && sale.IsZero() {
		return fmt.Errorf("%w: cost and sale price cannot both be zero", apperrors.ErrValidation)
	}
	return nil
}

// storeAttachment decodes dataURI and writes it under prefix/<entityID>/.
func storeAttachment(ctx context.Context, store portssvc.AttachmentStore, prefix, entityID, dataURI string) (string, error) {
	if store == nil {
		return "", errStorageNotConfigured
	}
	doc, err := domain.ParseDataURI(dataURI)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("%s/%s/%s.%s", prefix, entityID, uuid.NewString(), doc.Extension())
	if err := store.Put(ctx, key, doc.MimeType, doc.Data); err != nil {
		return "", fmt.Errorf("failed to store attachment: %w", err)
	}
	return key, nil
}

// CreateBooking stores a booking and posts its sale voucher in one transaction.
func (s *bookingService) CreateBooking(ctx context.Context, req dto.CreateBookingRequest, userID string) (*domain.Booking, error) {
	if err := checkPrices(req.CostPrice, req.SalePrice); err != nil {
		return nil, err
	}
	if len(req.Passengers) == 0 {
		return nil, fmt.Errorf("%w: at least one passenger is required", apperrors.ErrValidation)
	}
	travel := domain.DateOnly(req.TravelDate)
	var ret *time.Time
	if req.ReturnDate != nil {
		r := domain.DateOnly(*req.ReturnDate)
		if r.Before(travel) {
			return nil, fmt.Errorf("%w: return date is before travel date", apperrors.ErrValidation)
		}
		ret = &r
	}

	now := s.clock()
	currency := strings.ToUpper(req.CurrencyCode)
	booking := domain.Booking{
		BookingID:    uuid.NewString(),
		Reference:    strings.TrimSpace(req.Reference),
		ClientID:     req.ClientID,
		SupplierID:   req.SupplierID,
		Passengers:   dto.ToPassengers(req.Passengers),
		Route:        req.Route,
		Airline:      req.Airline,
		TravelDate:   travel,
		ReturnDate:   ret,
		CurrencyCode: currency,
		CostPrice:    accounting.Round2(req.CostPrice),
		SalePrice:    accounting.Round2(req.SalePrice),
		Status:       domain.SaleActive,
		Notes:        req.Notes,
		AuditFields:  domain.NewAuditFields(userID, now),
	}

	err := s.RunInTx(ctx, func(ctx context.Context) error {
		client, supplier, err := saleParties(ctx, s.relationRepo, req.ClientID, req.SupplierID, currency)
		if err != nil {
			return err
		}
		booking.ClientName = client.Name
		booking.SupplierName = supplier.Name

		desc := "Booking " + booking.Route
		if booking.Reference != "" {
			desc = fmt.Sprintf("Booking %s %s", booking.Reference, booking.Route)
		}
		v, err := s.vouchers.PostVoucher(ctx, domain.Voucher{
			Type:         domain.VoucherBooking,
			Date:         domain.DateOnly(now),
			Description:  strings.TrimSpace(desc),
			CurrencyCode: currency,
			RelationID:   &client.RelationID,
			RelationName: client.Name,
			SourceType:   domain.EntityBooking,
			SourceID:     booking.BookingID,
			Lines:        accounting.SaleLines(*client, *supplier, booking.CostPrice, booking.SalePrice, domain.LedgerBookingRevenue, domain.LedgerBookingLoss),
		}, userID)
		if err != nil {
			return err
		}
		booking.VoucherID = &v.VoucherID

		if err := s.bookingRepo.SaveBooking(ctx, booking); err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		return s.Audit(ctx, domain.EntityBooking, booking.BookingID, domain.AuditCreate, userID, booking)
	})
	if err != nil {
		if !errors.Is(err, apperrors.ErrValidation) {
			s.LogError(ctx, err, "Failed to create booking")
		}
		return nil, err
	}
	s.LogInfo(ctx, "Booking created", slog.String("booking_id", booking.BookingID))
	return &booking, nil
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID string) (*domain.Booking, error) {
	return s.bookingRepo.FindBookingByID(ctx, bookingID)
}

func (s *bookingService) ListBookings(ctx context.Context, params dto.ListBookingsParams) ([]domain.Booking, error) {
	filter := domain.BookingFilter{
		ClientID:   params.ClientID,
		SupplierID: params.SupplierID,
		From:       params.From,
		To:         params.To,
		Limit:      pagination.NormalizeLimit(params.Limit, 50, 200),
		Offset:     max(params.Offset, 0),
	}
	if params.Status != "" {
		st := domain.SaleStatus(params.Status)
		filter.Status = &st
	}
	bookings, err := s.bookingRepo.ListBookings(ctx, filter)
	if err != nil {
		s.LogError(ctx, err, "Failed to list bookings")
		return nil, err
	}
	if bookings == nil {
		bookings = []domain.Booking{}
	}
	return bookings, nil
}

// UpdateBooking changes descriptive fields. Prices and parties are fixed once posted.
func (s *bookingService) UpdateBooking(ctx context.Context, bookingID string, req dto.UpdateBookingRequest, userID string) (*domain.Booking, error) {
	b, err := s.bookingRepo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.SaleCancelled {
		return nil, fmt.Errorf("%w: booking is cancelled", apperrors.ErrConflict)
	}
	if req.Reference != nil {
		b.Reference = strings.TrimSpace(*req.Reference)
	}
	if len(req.Passengers) > 0 {
		b.Passengers = dto.ToPassengers(req.Passengers)
	}
	if req.Route != nil {
		b.Route = *req.Route
	}
	if req.Airline != nil {
		b.Airline = *req.Airline
	}
	if req.TravelDate != nil {
		b.TravelDate = domain.DateOnly(*req.TravelDate)
	}
	if req.ReturnDate != nil {
		r := domain.DateOnly(*req.ReturnDate)
		b.ReturnDate = &r
	}
	if b.ReturnDate != nil && b.ReturnDate.Before(b.TravelDate) {
		return nil, fmt.Errorf("%w: return date is before travel date", apperrors.ErrValidation)
	}
	if req.Notes != nil {
		b.Notes = *req.Notes
	}
	b.Touch(userID, s.clock())

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateBooking(ctx, *b); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		return s.Audit(ctx, domain.EntityBooking, b.BookingID, domain.AuditUpdate, userID, req)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update booking", slog.String("booking_id", bookingID))
		return nil, err
	}
	return b, nil
}

// CancelBooking cancels the booking and voids its voucher.
func (s *bookingService) CancelBooking(ctx context.Context, bookingID, reason, userID string) (*domain.Booking, error) {
	b, err := s.bookingRepo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == domain.SaleCancelled {
		return nil, fmt.Errorf("%w: booking is already cancelled", apperrors.ErrConflict)
	}
	if reason == "" {
		reason = "booking cancelled"
	}
	b.Status = domain.SaleCancelled
	b.Touch(userID, s.clock())

	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if b.VoucherID != nil {
			if err := s.vouchers.VoidGeneratedVoucher(ctx, *b.VoucherID, reason, userID); err != nil {
				return err
			}
		}
		if err := s.bookingRepo.UpdateBooking(ctx, *b); err != nil {
			return fmt.Errorf("failed to cancel booking: %w", err)
		}
		return s.Audit(ctx, domain.EntityBooking, b.BookingID, domain.AuditCancel, userID, map[string]string{"reason": reason})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel booking", slog.String("booking_id", bookingID))
		return nil, err
	}
	s.LogInfo(ctx, "Booking cancelled", slog.String("booking_id", bookingID))
	return b, nil
}

func (s *bookingService) MarkBookingPaid(ctx context.Context, bookingID, userID string) (*domain.Booking, error) {
	b, err := s.bookingRepo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	switch b.Status {
	case domain.SaleCancelled:
		return nil, fmt.Errorf("%w: booking is cancelled", apperrors.ErrConflict)
	case domain.SalePaid:
		return b, nil
	}
	b.Status = domain.SalePaid
	b.Touch(userID, s.clock())
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateBooking(ctx, *b); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		return s.Audit(ctx, domain.EntityBooking, b.BookingID, domain.AuditPay, userID, nil)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to mark booking paid", slog.String("booking_id", bookingID))
		return nil, err
	}
	return b, nil
}

func (s *bookingService) AttachBookingDocument(ctx context.Context, bookingID, dataURI, userID string) (*domain.Booking, error) {
	b, err := s.bookingRepo.FindBookingByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	key, err := storeAttachment(ctx, s.attachments, "bookings", bookingID, dataURI)
	if err != nil {
		return nil, err
	}
	b.AttachmentKey = key
	b.Touch(userID, s.clock())
	err = s.RunInTx(ctx, func(ctx context.Context) error {
		if err := s.bookingRepo.UpdateBooking(ctx, *b); err != nil {
			return fmt.Errorf("failed to update booking: %w", err)
		}
		return s.Audit(ctx, domain.EntityBooking, b.BookingID, domain.AuditUpdate, userID, map[string]string{"attachmentKey": key})
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to attach booking document", slog.String("booking_id", bookingID))
		return nil, err
	}
	return b, nil
}

func (s *bookingService) UpcomingDepartures(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	return s.bookingRepo.FindDepartingBetween(ctx, domain.DateOnly(from), domain.DateOnly(to))
}

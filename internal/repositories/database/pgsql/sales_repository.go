package pgsql

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
)

// PgxSalesRepository stores bookings, visa bookings, subscriptions and segments.
type PgxSalesRepository struct {
	BaseRepository
}

func newPgxSalesRepository(pool *pgxpool.Pool) *PgxSalesRepository {
	return &PgxSalesRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var (
	_ portsrepo.BookingRepository      = (*PgxSalesRepository)(nil)
	_ portsrepo.VisaRepository         = (*PgxSalesRepository)(nil)
	_ portsrepo.SubscriptionRepository = (*PgxSalesRepository)(nil)
	_ portsrepo.SegmentRepository      = (*PgxSalesRepository)(nil)
)

// whereBuilder collects numbered placeholders for optional filters.
type whereBuilder struct {
	clauses []string
	args    []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(clause string) {
	w.clauses = append(w.clauses, clause)
}

func (w *whereBuilder) String() string {
	if len(w.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.clauses, " AND ")
}

// --- bookings ---

const selectBookingFields = `
	booking_id, reference, client_id, client_name, supplier_id, supplier_name, passengers, route, airline,
	travel_date, return_date, currency_code, cost_price, sale_price, status, voucher_id, attachment_key, notes,
	created_at, created_by, last_updated_at, last_updated_by
`

func scanBooking(row pgx.Row) (*domain.Booking, error) {
	var b domain.Booking
	if err := row.Scan(
		&b.BookingID, &b.Reference, &b.ClientID, &b.ClientName, &b.SupplierID, &b.SupplierName, &b.Passengers,
		&b.Route, &b.Airline, &b.TravelDate, &b.ReturnDate, &b.CurrencyCode, &b.CostPrice, &b.SalePrice,
		&b.Status, &b.VoucherID, &b.AttachmentKey, &b.Notes,
		&b.CreatedAt, &b.CreatedBy, &b.LastUpdatedAt, &b.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	if b.Passengers == nil {
		b.Passengers = []domain.Passenger{}
	}
	return &b, nil
}

func (r *PgxSalesRepository) queryBookings(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to query bookings")
	}
	defer rows.Close()

	bookings := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan booking")
		}
		bookings = append(bookings, *b)
	}
	return bookings, mapError(rows.Err(), "error iterating bookings")
}

func (r *PgxSalesRepository) SaveBooking(ctx context.Context, b domain.Booking) error {
	query := `
		INSERT INTO bookings (` + selectBookingFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		b.BookingID, b.Reference, b.ClientID, b.ClientName, b.SupplierID, b.SupplierName, b.Passengers,
		b.Route, b.Airline, b.TravelDate, b.ReturnDate, b.CurrencyCode, b.CostPrice, b.SalePrice,
		b.Status, b.VoucherID, b.AttachmentKey, b.Notes,
		b.CreatedAt, b.CreatedBy, b.LastUpdatedAt, b.LastUpdatedBy,
	)
	return mapError(err, "failed to save booking")
}

func (r *PgxSalesRepository) UpdateBooking(ctx context.Context, b domain.Booking) error {
	query := `
		UPDATE bookings
		SET reference = $2, client_id = $3, client_name = $4, supplier_id = $5, supplier_name = $6,
			passengers = $7, route = $8, airline = $9, travel_date = $10, return_date = $11,
			currency_code = $12, cost_price = $13, sale_price = $14, status = $15, voucher_id = $16,
			attachment_key = $17, notes = $18, last_updated_at = $19, last_updated_by = $20
		WHERE booking_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		b.BookingID, b.Reference, b.ClientID, b.ClientName, b.SupplierID, b.SupplierName,
		b.Passengers, b.Route, b.Airline, b.TravelDate, b.ReturnDate,
		b.CurrencyCode, b.CostPrice, b.SalePrice, b.Status, b.VoucherID,
		b.AttachmentKey, b.Notes, b.LastUpdatedAt, b.LastUpdatedBy,
	)
	return expectOne(tag, err, "failed to update booking")
}

func (r *PgxSalesRepository) FindBookingByID(ctx context.Context, bookingID string) (*domain.Booking, error) {
	b, err := scanBooking(r.db(ctx).QueryRow(ctx, `SELECT `+selectBookingFields+` FROM bookings WHERE booking_id = $1;`, bookingID))
	if err != nil {
		return nil, mapError(err, "failed to find booking "+bookingID)
	}
	return b, nil
}

func (r *PgxSalesRepository) ListBookings(ctx context.Context, f domain.BookingFilter) ([]domain.Booking, error) {
	w := &whereBuilder{}
	if f.Status != nil {
		w.add("status = " + w.arg(*f.Status))
	}
	if f.ClientID != "" {
		w.add("client_id = " + w.arg(f.ClientID))
	}
	if f.SupplierID != "" {
		w.add("supplier_id = " + w.arg(f.SupplierID))
	}
	if f.From != nil {
		w.add("travel_date >= " + w.arg(domain.DateOnly(*f.From)))
	}
	if f.To != nil {
		w.add("travel_date <= " + w.arg(domain.DateOnly(*f.To)))
	}
	query := `SELECT ` + selectBookingFields + ` FROM bookings` + w.String() +
		` ORDER BY travel_date DESC, created_at DESC LIMIT ` + w.arg(f.Limit) + ` OFFSET ` + w.arg(f.Offset)
	return r.queryBookings(ctx, query, w.args...)
}

func (r *PgxSalesRepository) FindDepartingBetween(ctx context.Context, from, to time.Time) ([]domain.Booking, error) {
	query := `
		SELECT ` + selectBookingFields + `
		FROM bookings
		WHERE status IN ('ACTIVE', 'PAID') AND travel_date BETWEEN $1 AND $2
		ORDER BY travel_date;
	`
	return r.queryBookings(ctx, query, domain.DateOnly(from), domain.DateOnly(to))
}

// --- visas ---

const selectVisaFields = `
	visa_id, applicant_name, passport_number, country, visa_type, client_id, client_name, supplier_id,
	supplier_name, currency_code, cost_price, sale_price, status, submitted_at, voucher_id, attachment_key,
	notes, created_at, created_by, last_updated_at, last_updated_by
`

func scanVisa(row pgx.Row) (*domain.VisaBooking, error) {
	var v domain.VisaBooking
	if err := row.Scan(
		&v.VisaID, &v.ApplicantName, &v.PassportNumber, &v.Country, &v.VisaType, &v.ClientID, &v.ClientName,
		&v.SupplierID, &v.SupplierName, &v.CurrencyCode, &v.CostPrice, &v.SalePrice, &v.Status, &v.SubmittedAt,
		&v.VoucherID, &v.AttachmentKey, &v.Notes,
		&v.CreatedAt, &v.CreatedBy, &v.LastUpdatedAt, &v.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *PgxSalesRepository) SaveVisa(ctx context.Context, v domain.VisaBooking) error {
	query := `
		INSERT INTO visa_bookings (` + selectVisaFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21);
	`
	_, err := r.db(ctx).Exec(ctx, query,
		v.VisaID, v.ApplicantName, v.PassportNumber, v.Country, v.VisaType, v.ClientID, v.ClientName,
		v.SupplierID, v.SupplierName, v.CurrencyCode, v.CostPrice, v.SalePrice, v.Status, v.SubmittedAt,
		v.VoucherID, v.AttachmentKey, v.Notes,
		v.CreatedAt, v.CreatedBy, v.LastUpdatedAt, v.LastUpdatedBy,
	)
	return mapError(err, "failed to save visa booking")
}

func (r *PgxSalesRepository) UpdateVisa(ctx context.Context, v domain.VisaBooking) error {
	query := `
		UPDATE visa_bookings
		SET applicant_name = $2, passport_number = $3, country = $4, visa_type = $5, client_id = $6,
			client_name = $7, supplier_id = $8, supplier_name = $9, currency_code = $10, cost_price = $11,
			sale_price = $12, status = $13, submitted_at = $14, voucher_id = $15, attachment_key = $16,
			notes = $17, last_updated_at = $18, last_updated_by = $19
		WHERE visa_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query,
		v.VisaID, v.ApplicantName, v.PassportNumber, v.Country, v.VisaType, v.ClientID,
		v.ClientName, v.SupplierID, v.SupplierName, v.CurrencyCode, v.CostPrice,
		v.SalePrice, v.Status, v.SubmittedAt, v.VoucherID, v.AttachmentKey,
		v.Notes, v.LastUpdatedAt, v.LastUpdatedBy,
	)
	return expectOne(tag, err, "failed to update visa booking")
}

func (r *PgxSalesRepository) FindVisaByID(ctx context.Context, visaID string) (*domain.VisaBooking, error) {
	v, err := scanVisa(r.db(ctx).QueryRow(ctx, `SELECT `+selectVisaFields+` FROM visa_bookings WHERE visa_id = $1;`, visaID))
	if err != nil {
		return nil, mapError(err, "failed to find visa booking "+visaID)
	}
	return v, nil
}

func (r *PgxSalesRepository) ListVisas(ctx context.Context, f domain.VisaFilter) ([]domain.VisaBooking, error) {
	w := &whereBuilder{}
	if f.Status != nil {
		w.add("status = " + w.arg(*f.Status))
	}
	if f.ClientID != "" {
		w.add("client_id = " + w.arg(f.ClientID))
	}
	if f.Country != "" {
		w.add("lower(country) = lower(" + w.arg(f.Country) + ")")
	}
	if f.From != nil {
		w.add("submitted_at >= " + w.arg(domain.DateOnly(*f.From)))
	}
	if f.To != nil {
		w.add("submitted_at <= " + w.arg(domain.DateOnly(*f.To)))
	}
	query := `SELECT ` + selectVisaFields + ` FROM visa_bookings` + w.String() +
		` ORDER BY submitted_at DESC, created_at DESC LIMIT ` + w.arg(f.Limit) + ` OFFSET ` + w.arg(f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "failed to query visa bookings")
	}
	defer rows.Close()

	visas := []domain.VisaBooking{}
	for rows.Next() {
		v, err := scanVisa(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan visa booking")
		}
		visas = append(visas, *v)
	}
	return visas, mapError(rows.Err(), "error iterating visa bookings")
}

// --- subscriptions ---

const selectSubscriptionFields = `
	subscription_id, client_id, client_name, supplier_id, supplier_name, service_name, currency_code,
	total_amount, cost_amount, installment_count, start_date, status, partners, voucher_id,
	created_at, created_by, last_updated_at, last_updated_by
`

const selectInstallmentFields = `
	installment_id, subscription_id, sequence, due_date, amount, paid_amount, status, paid_at, voucher_id
`

func scanSubscription(row pgx.Row) (*domain.Subscription, error) {
	var s domain.Subscription
	if err := row.Scan(
		&s.SubscriptionID, &s.ClientID, &s.ClientName, &s.SupplierID, &s.SupplierName, &s.ServiceName,
		&s.CurrencyCode, &s.TotalAmount, &s.CostAmount, &s.InstallmentCount, &s.StartDate, &s.Status,
		&s.Partners, &s.VoucherID, &s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	if s.Partners == nil {
		s.Partners = []domain.PartnerShare{}
	}
	return &s, nil
}

func scanInstallment(row pgx.Row) (*domain.Installment, error) {
	var i domain.Installment
	if err := row.Scan(
		&i.InstallmentID, &i.SubscriptionID, &i.Sequence, &i.DueDate, &i.Amount, &i.PaidAmount,
		&i.Status, &i.PaidAt, &i.VoucherID,
	); err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *PgxSalesRepository) queryInstallments(ctx context.Context, query string, args ...any) ([]domain.Installment, error) {
	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, mapError(err, "failed to query installments")
	}
	defer rows.Close()

	installments := []domain.Installment{}
	for rows.Next() {
		i, err := scanInstallment(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan installment")
		}
		installments = append(installments, *i)
	}
	return installments, mapError(rows.Err(), "error iterating installments")
}

// SaveSubscription writes the subscription and its schedule in one batch.
func (r *PgxSalesRepository) SaveSubscription(ctx context.Context, s domain.Subscription) error {
	batch := &pgx.Batch{}
	batch.Queue(`
		INSERT INTO subscriptions (`+selectSubscriptionFields+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18);
	`,
		s.SubscriptionID, s.ClientID, s.ClientName, s.SupplierID, s.SupplierName, s.ServiceName,
		s.CurrencyCode, s.TotalAmount, s.CostAmount, s.InstallmentCount, s.StartDate, s.Status,
		s.Partners, s.VoucherID, s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy,
	)
	for _, i := range s.Installments {
		batch.Queue(`
			INSERT INTO installments (`+selectInstallmentFields+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
		`, i.InstallmentID, s.SubscriptionID, i.Sequence, i.DueDate, i.Amount, i.PaidAmount, i.Status, i.PaidAt, i.VoucherID)
	}
	if err := r.db(ctx).SendBatch(ctx, batch).Close(); err != nil {
		return mapError(err, "failed to save subscription")
	}
	return nil
}

func (r *PgxSalesRepository) UpdateSubscriptionStatus(ctx context.Context, subscriptionID string, status domain.SubscriptionStatus, userID string, at time.Time) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE subscriptions SET status = $2, last_updated_at = $3, last_updated_by = $4
		WHERE subscription_id = $1;
	`, subscriptionID, status, at, userID)
	return expectOne(tag, err, "failed to update subscription status")
}

func (r *PgxSalesRepository) FindSubscriptionByID(ctx context.Context, subscriptionID string) (*domain.Subscription, error) {
	s, err := scanSubscription(r.db(ctx).QueryRow(ctx,
		`SELECT `+selectSubscriptionFields+` FROM subscriptions WHERE subscription_id = $1;`, subscriptionID))
	if err != nil {
		return nil, mapError(err, "failed to find subscription "+subscriptionID)
	}
	s.Installments, err = r.queryInstallments(ctx,
		`SELECT `+selectInstallmentFields+` FROM installments WHERE subscription_id = $1 ORDER BY sequence;`, subscriptionID)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PgxSalesRepository) ListSubscriptions(ctx context.Context, f domain.SubscriptionFilter) ([]domain.Subscription, error) {
	w := &whereBuilder{}
	if f.Status != nil {
		w.add("status = " + w.arg(*f.Status))
	}
	if f.ClientID != "" {
		w.add("client_id = " + w.arg(f.ClientID))
	}
	query := `SELECT ` + selectSubscriptionFields + ` FROM subscriptions` + w.String() +
		` ORDER BY start_date DESC, created_at DESC LIMIT ` + w.arg(f.Limit) + ` OFFSET ` + w.arg(f.Offset)

	rows, err := r.db(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "failed to query subscriptions")
	}
	defer rows.Close()

	subs := []domain.Subscription{}
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan subscription")
		}
		subs = append(subs, *s)
	}
	return subs, mapError(rows.Err(), "error iterating subscriptions")
}

func (r *PgxSalesRepository) FindInstallmentByID(ctx context.Context, installmentID string) (*domain.Installment, error) {
	i, err := scanInstallment(r.db(ctx).QueryRow(ctx,
		`SELECT `+selectInstallmentFields+` FROM installments WHERE installment_id = $1;`, installmentID))
	if err != nil {
		return nil, mapError(err, "failed to find installment "+installmentID)
	}
	return i, nil
}

func (r *PgxSalesRepository) LockSubscription(ctx context.Context, subscriptionID string) (domain.SubscriptionStatus, error) {
	var status domain.SubscriptionStatus
	err := r.db(ctx).QueryRow(ctx,
		`SELECT status FROM subscriptions WHERE subscription_id = $1 FOR UPDATE;`, subscriptionID).Scan(&status)
	if err != nil {
		return "", mapError(err, "failed to lock subscription "+subscriptionID)
	}
	return status, nil
}

func (r *PgxSalesRepository) MarkInstallmentPaid(ctx context.Context, i domain.Installment) error {
	// the status guard keeps two payments of the same installment from both landing
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE installments SET paid_amount = $2, status = 'PAID', paid_at = $3, voucher_id = $4
		WHERE installment_id = $1 AND status IN ('PENDING', 'OVERDUE');
	`, i.InstallmentID, i.PaidAmount, i.PaidAt, i.VoucherID)
	if err != nil {
		return mapError(err, "failed to mark installment paid")
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: installment %s is no longer open", apperrors.ErrConflict, i.InstallmentID)
	}
	return nil
}

func (r *PgxSalesRepository) CountOpenInstallments(ctx context.Context, subscriptionID string) (int, error) {
	var n int
	err := r.db(ctx).QueryRow(ctx, `
		SELECT count(*) FROM installments
		WHERE subscription_id = $1 AND status IN ('PENDING', 'OVERDUE');
	`, subscriptionID).Scan(&n)
	if err != nil {
		return 0, mapError(err, "failed to count open installments")
	}
	return n, nil
}

func (r *PgxSalesRepository) CancelOpenInstallments(ctx context.Context, subscriptionID string) error {
	_, err := r.db(ctx).Exec(ctx, `
		UPDATE installments SET status = 'CANCELLED'
		WHERE subscription_id = $1 AND status IN ('PENDING', 'OVERDUE');
	`, subscriptionID)
	return mapError(err, "failed to cancel open installments")
}

func (r *PgxSalesRepository) MarkOverdue(ctx context.Context, today time.Time) ([]domain.Installment, error) {
	return r.queryInstallments(ctx, `
		UPDATE installments i SET status = 'OVERDUE'
		FROM subscriptions s
		WHERE s.subscription_id = i.subscription_id AND s.status = 'ACTIVE'
			AND i.status = 'PENDING' AND i.due_date < $1
		RETURNING i.installment_id, i.subscription_id, i.sequence, i.due_date, i.amount, i.paid_amount,
			i.status, i.paid_at, i.voucher_id;
	`, domain.DateOnly(today))
}

func (r *PgxSalesRepository) CountInstallmentsByStatus(ctx context.Context, status domain.InstallmentStatus) (int, error) {
	var n int
	if err := r.db(ctx).QueryRow(ctx, `SELECT count(*) FROM installments WHERE status = $1;`, status).Scan(&n); err != nil {
		return 0, mapError(err, "failed to count installments")
	}
	return n, nil
}

// --- segments ---

const selectSegmentFields = `
	segment_id, period_from, period_to, currency_code, total_sales, total_cost, total_profit,
	agency_share, partners, status, voucher_id, notes, created_at, created_by, last_updated_at, last_updated_by
`

func scanSegment(row pgx.Row) (*domain.Segment, error) {
	var s domain.Segment
	if err := row.Scan(
		&s.SegmentID, &s.PeriodFrom, &s.PeriodTo, &s.CurrencyCode, &s.TotalSales, &s.TotalCost, &s.TotalProfit,
		&s.AgencyShare, &s.Partners, &s.Status, &s.VoucherID, &s.Notes,
		&s.CreatedAt, &s.CreatedBy, &s.LastUpdatedAt, &s.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	if s.Partners == nil {
		s.Partners = []domain.SegmentPartner{}
	}
	return &s, nil
}

func (r *PgxSalesRepository) SaveSegment(ctx context.Context, s domain.Segment) error {
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO segments (`+selectSegmentFields+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`,
		s.SegmentID, s.PeriodFrom, s.PeriodTo, s.CurrencyCode, s.TotalSales, s.TotalCost, s.TotalProfit,
		s.AgencyShare, s.Partners, s.Status, s.VoucherID, s.Notes,
		s.CreatedAt, s.CreatedBy, s.LastUpdatedAt, s.LastUpdatedBy,
	)
	return mapError(err, "failed to save segment")
}

func (r *PgxSalesRepository) UpdateSegment(ctx context.Context, s domain.Segment) error {
	tag, err := r.db(ctx).Exec(ctx, `
		UPDATE segments
		SET period_from = $2, period_to = $3, currency_code = $4, total_sales = $5, total_cost = $6,
			total_profit = $7, agency_share = $8, partners = $9, status = $10, voucher_id = $11, notes = $12,
			last_updated_at = $13, last_updated_by = $14
		WHERE segment_id = $1;
	`,
		s.SegmentID, s.PeriodFrom, s.PeriodTo, s.CurrencyCode, s.TotalSales, s.TotalCost,
		s.TotalProfit, s.AgencyShare, s.Partners, s.Status, s.VoucherID, s.Notes,
		s.LastUpdatedAt, s.LastUpdatedBy,
	)
	return expectOne(tag, err, "failed to update segment")
}

func (r *PgxSalesRepository) FindSegmentByID(ctx context.Context, segmentID string) (*domain.Segment, error) {
	s, err := scanSegment(r.db(ctx).QueryRow(ctx, `SELECT `+selectSegmentFields+` FROM segments WHERE segment_id = $1;`, segmentID))
	if err != nil {
		return nil, mapError(err, "failed to find segment "+segmentID)
	}
	return s, nil
}

func (r *PgxSalesRepository) ListSegments(ctx context.Context, limit, offset int) ([]domain.Segment, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT `+selectSegmentFields+` FROM segments
		ORDER BY period_from DESC, created_at DESC
		LIMIT $1 OFFSET $2;
	`, limit, offset)
	if err != nil {
		return nil, mapError(err, "failed to query segments")
	}
	defer rows.Close()

	segments := []domain.Segment{}
	for rows.Next() {
		s, err := scanSegment(rows)
		if err != nil {
			return nil, mapError(err, "failed to scan segment")
		}
		segments = append(segments, *s)
	}
	return segments, mapError(rows.Err(), "error iterating segments")
}

func (r *PgxSalesRepository) DeleteSegment(ctx context.Context, segmentID string) error {
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM segments WHERE segment_id = $1;`, segmentID)
	return expectOne(tag, err, "failed to delete segment")
}

package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) portsrepo.ReportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

// SalesTotals aggregates non-cancelled bookings and visas of one currency.
func (r *reportingRepository) SalesTotals(ctx context.Context, from, to time.Time, currencyCode string) (domain.SalesTotals, error) {
	query := `
		WITH sales AS (
			SELECT 'booking' AS kind, sale_price, cost_price
			FROM bookings
			WHERE status <> 'CANCELLED' AND currency_code = $3
				AND travel_date BETWEEN $1 AND $2
			UNION ALL
			SELECT 'visa' AS kind, sale_price, cost_price
			FROM visa_bookings
			WHERE status <> 'CANCELLED' AND currency_code = $3
				AND submitted_at BETWEEN $1 AND $2
		)
		SELECT
			count(*) FILTER (WHERE kind = 'booking'),
			count(*) FILTER (WHERE kind = 'visa'),
			COALESCE(SUM(sale_price), 0),
			COALESCE(SUM(cost_price), 0)
		FROM sales
	`

	var totals domain.SalesTotals
	err := r.db(ctx).QueryRow(ctx, query, domain.DateOnly(from), domain.DateOnly(to), currencyCode).Scan(
		&totals.BookingCount,
		&totals.VisaCount,
		&totals.Sales,
		&totals.Cost,
	)
	if err != nil {
		return domain.SalesTotals{}, mapError(err, "error querying sales totals")
	}
	return totals, nil
}

// RelationPositions sums the balances of active relations kept in currencyCode into what is owed
// to and by the agency.
func (r *reportingRepository) RelationPositions(ctx context.Context, currencyCode string) (decimal.Decimal, decimal.Decimal, error) {
	query := `
		WITH balances AS (
			SELECT rel.relation_id,
				rel.opening_balance + COALESCE(SUM(l.debit - l.credit), 0) AS balance
			FROM relations rel
			LEFT JOIN voucher_lines l
				ON l.account_kind = 'RELATION' AND l.account_id = rel.relation_id
				AND EXISTS (SELECT 1 FROM vouchers v WHERE v.voucher_id = l.voucher_id AND v.status = 'POSTED')
			WHERE rel.is_active AND rel.currency_code = $1
			GROUP BY rel.relation_id, rel.opening_balance
		)
		SELECT
			COALESCE(SUM(balance) FILTER (WHERE balance > 0), 0),
			COALESCE(-SUM(balance) FILTER (WHERE balance < 0), 0)
		FROM balances
	`

	var receivables, payables decimal.Decimal
	if err := r.db(ctx).QueryRow(ctx, query, currencyCode).Scan(&receivables, &payables); err != nil {
		return decimal.Zero, decimal.Zero, mapError(err, "error querying relation positions")
	}
	return receivables, payables, nil
}

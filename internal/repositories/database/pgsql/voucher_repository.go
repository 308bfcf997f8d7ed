package pgsql

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portsrepo "github.com/SscSPs/travel_backoffice/internal/core/ports/repositories"
	"github.com/SscSPs/travel_backoffice/internal/utils/pagination"
)

// PgxVoucherRepository stores vouchers and their lines and answers ledger aggregates.
type PgxVoucherRepository struct {
	BaseRepository
}

func newPgxVoucherRepository(pool *pgxpool.Pool) *PgxVoucherRepository {
	return &PgxVoucherRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.VoucherRepositoryFacade = (*PgxVoucherRepository)(nil)

const selectVoucherFields = `
	v.voucher_id, v.number, v.voucher_type, v.voucher_date, v.description, v.currency_code, v.amount,
	v.status, v.relation_id, v.relation_name, v.source_type, v.source_id, v.void_reason,
	v.created_at, v.created_by, v.last_updated_at, v.last_updated_by
`

func scanVoucher(row pgx.Row) (*domain.Voucher, error) {
	var v domain.Voucher
	if err := row.Scan(
		&v.VoucherID,
		&v.Number,
		&v.Type,
		&v.Date,
		&v.Description,
		&v.CurrencyCode,
		&v.Amount,
		&v.Status,
		&v.RelationID,
		&v.RelationName,
		&v.SourceType,
		&v.SourceID,
		&v.VoidReason,
		&v.CreatedAt,
		&v.CreatedBy,
		&v.LastUpdatedAt,
		&v.LastUpdatedBy,
	); err != nil {
		return nil, err
	}
	return &v, nil
}

// NextVoucherNumber bumps the per-type counter. The row lock serialises concurrent posts of a type.
func (r *PgxVoucherRepository) NextVoucherNumber(ctx context.Context, voucherType domain.VoucherType) (int64, error) {
	query := `
		INSERT INTO voucher_sequences (voucher_type, last_value) VALUES ($1, 1)
		ON CONFLICT (voucher_type) DO UPDATE SET last_value = voucher_sequences.last_value + 1
		RETURNING last_value;
	`
	var seq int64
	if err := r.db(ctx).QueryRow(ctx, query, voucherType).Scan(&seq); err != nil {
		return 0, mapError(err, "failed to allocate voucher number")
	}
	return seq, nil
}

// SaveVoucher inserts the header and queues every line in one batch.
func (r *PgxVoucherRepository) SaveVoucher(ctx context.Context, v domain.Voucher) error {
	headerQuery := `
		INSERT INTO vouchers (
			voucher_id, number, voucher_type, voucher_date, description, currency_code, amount, status,
			relation_id, relation_name, source_type, source_id, void_reason,
			created_at, created_by, last_updated_at, last_updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	lineQuery := `
		INSERT INTO voucher_lines (line_id, voucher_id, line_no, account_kind, account_id, account_name, debit, credit, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`

	batch := &pgx.Batch{}
	batch.Queue(headerQuery,
		v.VoucherID, v.Number, v.Type, v.Date, v.Description, v.CurrencyCode, v.Amount, v.Status,
		v.RelationID, v.RelationName, v.SourceType, v.SourceID, v.VoidReason,
		v.CreatedAt, v.CreatedBy, v.LastUpdatedAt, v.LastUpdatedBy,
	)
	for _, l := range v.Lines {
		batch.Queue(lineQuery,
			l.LineID, v.VoucherID, l.LineNo, l.AccountKind, l.AccountID, l.AccountName, l.Debit, l.Credit, l.Notes,
		)
	}

	// Close reports the first failing statement of the batch.
	br := r.db(ctx).SendBatch(ctx, batch)
	if err := br.Close(); err != nil {
		return mapError(err, "failed to insert voucher "+v.VoucherID)
	}
	return nil
}

func (r *PgxVoucherRepository) FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error) {
	query := `SELECT ` + selectVoucherFields + ` FROM vouchers v WHERE v.voucher_id = $1;`
	v, err := scanVoucher(r.db(ctx).QueryRow(ctx, query, voucherID))
	if err != nil {
		return nil, mapError(err, "failed to find voucher "+voucherID)
	}

	rows, err := r.db(ctx).Query(ctx, `
		SELECT line_id, voucher_id, line_no, account_kind, account_id, account_name, debit, credit, notes
		FROM voucher_lines
		WHERE voucher_id = $1
		ORDER BY line_no;
	`, voucherID)
	if err != nil {
		return nil, mapError(err, "failed to query voucher lines")
	}
	defer rows.Close()

	v.Lines = []domain.VoucherLine{}
	for rows.Next() {
		var l domain.VoucherLine
		if err := rows.Scan(&l.LineID, &l.VoucherID, &l.LineNo, &l.AccountKind, &l.AccountID, &l.AccountName, &l.Debit, &l.Credit, &l.Notes); err != nil {
			return nil, mapError(err, "failed to scan voucher line")
		}
		v.Lines = append(v.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating voucher lines")
	}
	return v, nil
}

// ListVouchers pages newest first on (voucher_date, created_at, voucher_id), fetching one extra
// row to know whether another page exists.
func (r *PgxVoucherRepository) ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, *string, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}

	var where []string
	var args []any
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if filter.Type != nil {
		where = append(where, "v.voucher_type = "+arg(*filter.Type))
	}
	if filter.Status != nil {
		where = append(where, "v.status = "+arg(*filter.Status))
	}
	if filter.RelationID != "" {
		p := arg(filter.RelationID)
		where = append(where, "(v.relation_id = "+p+" OR EXISTS (SELECT 1 FROM voucher_lines l WHERE l.voucher_id = v.voucher_id AND l.account_kind = 'RELATION' AND l.account_id = "+p+"))")
	}
	if filter.BoxID != "" {
		where = append(where, "EXISTS (SELECT 1 FROM voucher_lines l WHERE l.voucher_id = v.voucher_id AND l.account_kind = 'BOX' AND l.account_id = "+arg(filter.BoxID)+")")
	}
	if filter.From != nil {
		where = append(where, "v.voucher_date >= "+arg(domain.DateOnly(*filter.From)))
	}
	if filter.To != nil {
		where = append(where, "v.voucher_date <= "+arg(domain.DateOnly(*filter.To)))
	}
	if filter.NextToken != nil && *filter.NextToken != "" {
		cursor, err := pagination.DecodeToken(*filter.NextToken)
		if err != nil {
			return nil, nil, apperrors.NewAppError(400, "invalid nextToken", err)
		}
		where = append(where, "(v.voucher_date, v.created_at, v.voucher_id) < ("+
			arg(cursor.Date)+", "+arg(cursor.CreatedAt)+", "+arg(cursor.ID)+")")
	}

	query := `SELECT ` + selectVoucherFields + ` FROM vouchers v`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY v.voucher_date DESC, v.created_at DESC, v.voucher_id DESC LIMIT " + arg(limit+1)

	rows, err := r.db(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, mapError(err, "failed to query vouchers")
	}
	defer rows.Close()

	vouchers := make([]domain.Voucher, 0, limit+1)
	for rows.Next() {
		v, err := scanVoucher(rows)
		if err != nil {
			return nil, nil, mapError(err, "failed to scan voucher")
		}
		vouchers = append(vouchers, *v)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, mapError(err, "error iterating vouchers")
	}

	var next *string
	if len(vouchers) > limit {
		last := vouchers[limit-1]
		token := pagination.EncodeToken(pagination.Cursor{Date: last.Date, CreatedAt: last.CreatedAt, ID: last.VoucherID})
		next = &token
		vouchers = vouchers[:limit]
	}
	return vouchers, next, nil
}

func (r *PgxVoucherRepository) IsAccountReferenced(ctx context.Context, kind domain.AccountKind, accountID string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM voucher_lines WHERE account_kind = $1 AND account_id = $2)
			OR (CAST($1 AS TEXT) = 'RELATION' AND EXISTS (SELECT 1 FROM vouchers WHERE relation_id = $2));
	`
	var referenced bool
	if err := r.db(ctx).QueryRow(ctx, query, kind, accountID).Scan(&referenced); err != nil {
		return false, mapError(err, "failed to check account references")
	}
	return referenced, nil
}

// SumMovements only counts POSTED vouchers.
func (r *PgxVoucherRepository) SumMovements(ctx context.Context, kind domain.AccountKind, accountIDs []string, before *time.Time) (map[string]domain.Movement, error) {
	result := make(map[string]domain.Movement, len(accountIDs))
	if len(accountIDs) == 0 {
		return result, nil
	}
	query := `
		SELECT l.account_id, COALESCE(SUM(l.debit), 0), COALESCE(SUM(l.credit), 0)
		FROM voucher_lines l
		JOIN vouchers v ON v.voucher_id = l.voucher_id
		WHERE l.account_kind = $1 AND l.account_id = ANY($2) AND v.status = 'POSTED'
			AND ($3::date IS NULL OR v.voucher_date < $3::date)
		GROUP BY l.account_id;
	`
	var beforeDate *time.Time
	if before != nil {
		d := domain.DateOnly(*before)
		beforeDate = &d
	}
	rows, err := r.db(ctx).Query(ctx, query, kind, accountIDs, beforeDate)
	if err != nil {
		return nil, mapError(err, "failed to sum movements")
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.Movement
		if err := rows.Scan(&m.AccountID, &m.Debit, &m.Credit); err != nil {
			return nil, mapError(err, "failed to scan movement")
		}
		result[m.AccountID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating movements")
	}
	for _, id := range accountIDs {
		if _, ok := result[id]; !ok {
			result[id] = domain.Movement{AccountID: id, Debit: decimal.Zero, Credit: decimal.Zero}
		}
	}
	return result, nil
}

func (r *PgxVoucherRepository) FindStatementLines(ctx context.Context, kind domain.AccountKind, accountID string, from, to time.Time) ([]domain.StatementLine, error) {
	query := `
		SELECT v.voucher_date, v.voucher_id, v.number, v.voucher_type,
			CASE WHEN l.notes <> '' THEN l.notes ELSE v.description END,
			l.debit, l.credit
		FROM voucher_lines l
		JOIN vouchers v ON v.voucher_id = l.voucher_id
		WHERE l.account_kind = $1 AND l.account_id = $2 AND v.status = 'POSTED'
			AND v.voucher_date BETWEEN $3 AND $4
		ORDER BY v.voucher_date, v.created_at, v.number, l.line_no;
	`
	rows, err := r.db(ctx).Query(ctx, query, kind, accountID, domain.DateOnly(from), domain.DateOnly(to))
	if err != nil {
		return nil, mapError(err, "failed to query statement lines")
	}
	defer rows.Close()

	lines := []domain.StatementLine{}
	for rows.Next() {
		var l domain.StatementLine
		if err := rows.Scan(&l.Date, &l.VoucherID, &l.VoucherNumber, &l.VoucherType, &l.Description, &l.Debit, &l.Credit); err != nil {
			return nil, mapError(err, "failed to scan statement line")
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "error iterating statement lines")
	}
	return lines, nil
}

func (r *PgxVoucherRepository) UpdateVoucherStatus(ctx context.Context, voucherID string, status domain.VoucherStatus, reason string, userID string, at time.Time) error {
	query := `
		UPDATE vouchers
		SET status = $2, void_reason = $3, last_updated_at = $4, last_updated_by = $5
		WHERE voucher_id = $1;
	`
	tag, err := r.db(ctx).Exec(ctx, query, voucherID, status, reason, at, userID)
	return expectOne(tag, err, "failed to update voucher status")
}

// ArchiveVoucher snapshots the voucher as JSON, then deletes it; its lines cascade.
func (r *PgxVoucherRepository) ArchiveVoucher(ctx context.Context, deleted domain.DeletedVoucher) error {
	snapshot, err := json.Marshal(deleted.Voucher)
	if err != nil {
		return mapError(err, "failed to encode voucher snapshot")
	}
	if _, err := r.db(ctx).Exec(ctx, `
		INSERT INTO deleted_vouchers (voucher_id, number, snapshot, reason, deleted_at, deleted_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`, deleted.Voucher.VoucherID, deleted.Voucher.Number, snapshot, deleted.Reason, deleted.DeletedAt, deleted.DeletedBy); err != nil {
		return mapError(err, "failed to archive voucher")
	}
	tag, err := r.db(ctx).Exec(ctx, `DELETE FROM vouchers WHERE voucher_id = $1;`, deleted.Voucher.VoucherID)
	return expectOne(tag, err, "failed to delete voucher")
}

// --- audit log ---

// PgxAuditRepository appends to and reads the audit trail.
type PgxAuditRepository struct {
	BaseRepository
}

func newPgxAuditRepository(pool *pgxpool.Pool) *PgxAuditRepository {
	return &PgxAuditRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AuditRepository = (*PgxAuditRepository)(nil)

func (r *PgxAuditRepository) SaveAuditLog(ctx context.Context, entry domain.AuditLog) error {
	var payload []byte
	if len(entry.Payload) > 0 {
		payload = entry.Payload
	}
	_, err := r.db(ctx).Exec(ctx, `
		INSERT INTO audit_logs (audit_id, entity_type, entity_id, action, user_id, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7);
	`, entry.AuditID, entry.EntityType, entry.EntityID, entry.Action, entry.UserID, payload, entry.CreatedAt)
	return mapError(err, "failed to save audit log")
}

// ListAuditLogs returns the newest entries first. Empty filters match everything.
func (r *PgxAuditRepository) ListAuditLogs(ctx context.Context, entityType, entityID string, limit, offset int) ([]domain.AuditLog, error) {
	rows, err := r.db(ctx).Query(ctx, `
		SELECT audit_id, entity_type, entity_id, action, user_id, payload, created_at
		FROM audit_logs
		WHERE ($1 = '' OR entity_type = $1) AND ($2 = '' OR entity_id = $2)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4;
	`, entityType, entityID, limit, offset)
	if err != nil {
		return nil, mapError(err, "failed to query audit logs")
	}
	defer rows.Close()

	logs := []domain.AuditLog{}
	for rows.Next() {
		var e domain.AuditLog
		var payload []byte
		if err := rows.Scan(&e.AuditID, &e.EntityType, &e.EntityID, &e.Action, &e.UserID, &payload, &e.CreatedAt); err != nil {
			return nil, mapError(err, "failed to scan audit log")
		}
		e.Payload = payload
		logs = append(logs, e)
	}
	return logs, mapError(rows.Err(), "error iterating audit logs")
}

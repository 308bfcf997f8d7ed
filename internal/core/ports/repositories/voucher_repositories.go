package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
)

// VoucherReader defines read operations on the journal.
type VoucherReader interface {
	// FindVoucherByID returns a voucher with its lines.
	FindVoucherByID(ctx context.Context, voucherID string) (*domain.Voucher, error)

	// ListVouchers returns a page of vouchers (without lines) newest first and the next page token.
	ListVouchers(ctx context.Context, filter domain.VoucherFilter) ([]domain.Voucher, *string, error)

	// IsAccountReferenced reports whether any voucher line points at the account.
	IsAccountReferenced(ctx context.Context, kind domain.AccountKind, accountID string) (bool, error)
}

// LedgerReader aggregates posted voucher lines.
type LedgerReader interface {
	// SumMovements sums posted lines per account. When before is set only vouchers dated
	// strictly before it are counted.
	SumMovements(ctx context.Context, kind domain.AccountKind, accountIDs []string, before *time.Time) (map[string]domain.Movement, error)

	// FindStatementLines returns the posted lines of one account dated in [from, to], oldest first.
	// RunningBalance is left zero.
	FindStatementLines(ctx context.Context, kind domain.AccountKind, accountID string, from, to time.Time) ([]domain.StatementLine, error)
}

// VoucherWriter defines write operations on the journal.
type VoucherWriter interface {
	// NextVoucherNumber reserves the next sequence value for a voucher type.
	NextVoucherNumber(ctx context.Context, voucherType domain.VoucherType) (int64, error)

	// SaveVoucher inserts a voucher header and its lines.
	SaveVoucher(ctx context.Context, voucher domain.Voucher) error

	// UpdateVoucherStatus changes a voucher's status, e.g. to VOIDED.
	UpdateVoucherStatus(ctx context.Context, voucherID string, status domain.VoucherStatus, reason string, userID string, at time.Time) error

	// ArchiveVoucher copies a voucher into deleted_vouchers and removes it from the journal.
	ArchiveVoucher(ctx context.Context, deleted domain.DeletedVoucher) error
}

// VoucherRepositoryFacade combines all voucher-related repository interfaces
type VoucherRepositoryFacade interface {
	VoucherReader
	LedgerReader
	VoucherWriter
}

// AuditRepository stores the audit trail.
type AuditRepository interface {
	SaveAuditLog(ctx context.Context, entry domain.AuditLog) error
	ListAuditLogs(ctx context.Context, entityType, entityID string, limit, offset int) ([]domain.AuditLog, error)
}

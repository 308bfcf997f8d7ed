package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// VoucherReaderSvc defines read operations on the journal.
type VoucherReaderSvc interface {
	GetVoucher(ctx context.Context, voucherID string) (*domain.Voucher, error)
	ListVouchers(ctx context.Context, params dto.ListVouchersParams) (*dto.ListVouchersResponse, error)
}

// VoucherWriterSvc posts, voids and deletes vouchers entered by users.
type VoucherWriterSvc interface {
	// CreateVoucher posts a manual JOURNAL voucher from free lines.
	CreateVoucher(ctx context.Context, req dto.CreateVoucherRequest, userID string) (*domain.Voucher, error)
	// CreateReceipt posts Dr box / Cr relation.
	CreateReceipt(ctx context.Context, req dto.CreateReceiptRequest, userID string) (*domain.Voucher, error)
	// CreatePayment posts Dr relation / Cr box.
	CreatePayment(ctx context.Context, req dto.CreatePaymentRequest, userID string) (*domain.Voucher, error)
	// CreateTransfer posts Dr destination box / Cr source box.
	CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, userID string) (*domain.Voucher, error)
	// CreateDistributedVoucher posts Dr box total / Cr relation settlement / Cr each channel.
	CreateDistributedVoucher(ctx context.Context, req dto.CreateDistributedVoucherRequest, userID string) (*domain.Voucher, error)
	// VoidVoucher marks a manual voucher VOIDED so it no longer counts towards balances.
	VoidVoucher(ctx context.Context, voucherID, reason, userID string) (*domain.Voucher, error)
	// DeleteVoucher archives a manual voucher into deleted_vouchers and removes it.
	DeleteVoucher(ctx context.Context, voucherID, reason, userID string) error
}

// VoucherPosterSvc is used by bookings, visas, installments and segments to post the vouchers
// they generate. Calls join the caller's transaction when there is one.
type VoucherPosterSvc interface {
	// PostVoucher validates, numbers and stores a voucher built by another service.
	PostVoucher(ctx context.Context, voucher domain.Voucher, userID string) (*domain.Voucher, error)
	// VoidGeneratedVoucher voids a voucher owned by a booking, visa, installment or segment.
	VoidGeneratedVoucher(ctx context.Context, voucherID, reason, userID string) error
}

// VoucherSvcFacade combines all voucher-related service interfaces
type VoucherSvcFacade interface {
	VoucherReaderSvc
	VoucherWriterSvc
	VoucherPosterSvc
}

// AuditSvc reads the audit trail.
type AuditSvc interface {
	ListAuditLogs(ctx context.Context, params dto.ListAuditLogsParams) ([]domain.AuditLog, error)
}

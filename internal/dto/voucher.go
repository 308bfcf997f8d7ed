package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

// VoucherLineRequest is one line of a manual journal voucher.
type VoucherLineRequest struct {
	AccountKind domain.AccountKind `json:"accountKind" binding:"required,oneof=RELATION BOX CHANNEL REVENUE EXPENSE PARTNER"`
	AccountID   string             `json:"accountID" binding:"required"`
	Debit       decimal.Decimal    `json:"debit" binding:"gte=0"`
	Credit      decimal.Decimal    `json:"credit" binding:"gte=0"`
	Notes       string             `json:"notes"`
}

// VoucherHeader holds the fields shared by every voucher request.
type VoucherHeader struct {
	Date        *time.Time `json:"date"`
	Description string     `json:"description" binding:"max=500"`
	// IdempotencyKey is read from the Idempotency-Key header, never from the body.
	IdempotencyKey string `json:"-"`
}

type CreateVoucherRequest struct {
	VoucherHeader
	CurrencyCode string               `json:"currencyCode" binding:"required,currency"`
	Lines        []VoucherLineRequest `json:"lines" binding:"required,min=2,dive"`
}

// CreateReceiptRequest records money received from a relation into a box.
type CreateReceiptRequest struct {
	VoucherHeader
	RelationID string          `json:"relationID" binding:"required"`
	BoxID      string          `json:"boxID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"gt=0"`
}

// CreatePaymentRequest records money paid from a box to a relation.
type CreatePaymentRequest struct {
	VoucherHeader
	RelationID string          `json:"relationID" binding:"required"`
	BoxID      string          `json:"boxID" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"gt=0"`
}

type CreateTransferRequest struct {
	VoucherHeader
	FromBoxID string          `json:"fromBoxID" binding:"required"`
	ToBoxID   string          `json:"toBoxID" binding:"required,nefield=FromBoxID"`
	Amount    decimal.Decimal `json:"amount" binding:"gt=0"`
}

type DistributionRequest struct {
	ChannelID string          `json:"channelID" binding:"required"`
	Amount    decimal.Decimal `json:"amount" binding:"gte=0"`
}

// CreateDistributedVoucherRequest records a receipt whose funds are partly used to settle the
// payer's balance and partly routed to distribution channels.
type CreateDistributedVoucherRequest struct {
	VoucherHeader
	RelationID       string                `json:"relationID" binding:"required"`
	BoxID            string                `json:"boxID" binding:"required"`
	TotalAmount      decimal.Decimal       `json:"totalAmount" binding:"gt=0"`
	SettlementAmount decimal.Decimal       `json:"settlementAmount" binding:"gte=0"`
	Distributions    []DistributionRequest `json:"distributions" binding:"dive"`
}

type VoidVoucherRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

type DeleteVoucherRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

type ListVouchersParams struct {
	Type       string     `form:"type"`
	Status     string     `form:"status" binding:"omitempty,oneof=POSTED VOIDED"`
	RelationID string     `form:"relationID"`
	BoxID      string     `form:"boxID"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Limit      int        `form:"limit,default=20"`
	NextToken  *string    `form:"nextToken"`
}

type ListVouchersResponse struct {
	Vouchers  []domain.Voucher `json:"vouchers"`
	NextToken *string          `json:"nextToken,omitempty"`
}

type ListAuditLogsParams struct {
	EntityType string `form:"entityType" binding:"required"`
	EntityID   string `form:"entityID" binding:"required"`
	Limit      int    `form:"limit,default=50"`
	Offset     int    `form:"offset,default=0"`
}

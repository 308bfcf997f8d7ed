package domain

import (
	"fmt"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/shopspring/decimal"
)

var (
	ErrVoucherMinLines   = fmt.Errorf("%w: voucher must have at least two lines", apperrors.ErrValidation)
	ErrVoucherUnbalanced = fmt.Errorf("%w: voucher debits and credits do not balance", apperrors.ErrValidation)
	ErrVoucherLineAmount = fmt.Errorf("%w: each voucher line needs exactly one positive side", apperrors.ErrValidation)
	ErrVoucherLineTarget = fmt.Errorf("%w: voucher line has an invalid account", apperrors.ErrValidation)
	ErrAmountPrecision   = fmt.Errorf("%w: amounts cannot have more than two decimal places", apperrors.ErrValidation)
)

// VoucherType classifies a journal entry.
type VoucherType string

const (
	VoucherReceipt            VoucherType = "RECEIPT"
	VoucherPayment            VoucherType = "PAYMENT"
	VoucherTransfer           VoucherType = "TRANSFER"
	VoucherJournal            VoucherType = "JOURNAL"
	VoucherDistributedReceipt VoucherType = "DISTRIBUTED_RECEIPT"
	VoucherBooking            VoucherType = "BOOKING"
	VoucherVisa               VoucherType = "VISA"
	VoucherInstallment        VoucherType = "INSTALLMENT"
	VoucherSegment            VoucherType = "SEGMENT"
	VoucherSubscription       VoucherType = "SUBSCRIPTION"
)

var voucherPrefixes = map[VoucherType]string{
	VoucherReceipt:            "RV",
	VoucherPayment:            "PV",
	VoucherTransfer:           "TV",
	VoucherJournal:            "JV",
	VoucherDistributedReceipt: "DV",
	VoucherBooking:            "BK",
	VoucherVisa:               "VS",
	VoucherInstallment:        "IN",
	VoucherSegment:            "SG",
	VoucherSubscription:       "SB",
}

// IsValid reports whether t is a known voucher type.
func (t VoucherType) IsValid() bool {
	_, ok := voucherPrefixes[t]
	return ok
}

// FormatVoucherNumber renders the human facing number of the seq-th voucher of type t.
func FormatVoucherNumber(t VoucherType, seq int64) string {
	prefix, ok := voucherPrefixes[t]
	if !ok {
		prefix = "XX"
	}
	return fmt.Sprintf("%s-%06d", prefix, seq)
}

// VoucherStatus indicates whether a voucher counts towards balances.
type VoucherStatus string

const (
	VoucherPosted VoucherStatus = "POSTED"
	VoucherVoided VoucherStatus = "VOIDED"
)

// AccountKind says which ledger a voucher line hits.
type AccountKind string

const (
	AccountRelation AccountKind = "RELATION"
	AccountBox      AccountKind = "BOX"
	AccountChannel  AccountKind = "CHANNEL"
	AccountRevenue  AccountKind = "REVENUE"
	AccountExpense  AccountKind = "EXPENSE"
	AccountPartner  AccountKind = "PARTNER"
)

// IsValid reports whether k is a known account kind.
func (k AccountKind) IsValid() bool {
	switch k {
	case AccountRelation, AccountBox, AccountChannel, AccountRevenue, AccountExpense, AccountPartner:
		return true
	}
	return false
}

// HasBalanceRecord reports whether lines of this kind must reference a stored record
// (relation, box or channel) rather than a free ledger name.
func (k AccountKind) HasBalanceRecord() bool {
	return k == AccountRelation || k == AccountBox || k == AccountChannel
}

// Revenue/expense ledgers used by generated vouchers.
const (
	LedgerBookingRevenue = "booking-revenue"
	LedgerVisaRevenue    = "visa-revenue"
	LedgerBookingLoss    = "booking-loss"
	LedgerVisaLoss       = "visa-loss"
	LedgerPartnerShares  = "partner-shares"

	LedgerSubscriptionRevenue = "subscription-revenue"
	LedgerSubscriptionLoss    = "subscription-loss"
)

// VoucherLine is one debit or credit inside a voucher.
type VoucherLine struct {
	LineID      string          `json:"lineID"`
	VoucherID   string          `json:"voucherID"`
	LineNo      int             `json:"lineNo"`
	AccountKind AccountKind     `json:"accountKind"`
	AccountID   string          `json:"accountID"`
	AccountName string          `json:"accountName"`
	Debit       decimal.Decimal `json:"debit"`
	Credit      decimal.Decimal `json:"credit"`
	Notes       string          `json:"notes"`
}

// Signed returns debit minus credit.
func (l VoucherLine) Signed() decimal.Decimal {
	return l.Debit.Sub(l.Credit)
}

// Voucher is an accounting journal entry representing a payment, receipt or internal transfer.
type Voucher struct {
	VoucherID    string          `json:"voucherID"`
	Number       string          `json:"number"`
	Type         VoucherType     `json:"type"`
	Date         time.Time       `json:"date"`
	Description  string          `json:"description"`
	CurrencyCode string          `json:"currencyCode"`
	Amount       decimal.Decimal `json:"amount"`
	Status       VoucherStatus   `json:"status"`
	RelationID   *string         `json:"relationID,omitempty"`
	RelationName string          `json:"relationName"`
	SourceType   string          `json:"sourceType,omitempty"`
	SourceID     string          `json:"sourceID,omitempty"`
	VoidReason   string          `json:"voidReason,omitempty"`
	Lines        []VoucherLine   `json:"lines,omitempty"`
	AuditFields
}

// Totals returns the summed debit and credit sides.
func (v *Voucher) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range v.Lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}

// IsWholeCents reports whether d has no precision below a cent.
func IsWholeCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}

// Validate checks the double-entry invariants of the voucher lines.
func (v *Voucher) Validate() error {
	if len(v.Lines) < 2 {
		return ErrVoucherMinLines
	}
	for i, l := range v.Lines {
		if !l.AccountKind.IsValid() || l.AccountID == "" {
			return fmt.Errorf("%w: line %d", ErrVoucherLineTarget, i+1)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() {
			return fmt.Errorf("%w: line %d has a negative amount", ErrVoucherLineAmount, i+1)
		}
		if l.Debit.IsPositive() == l.Credit.IsPositive() {
			return fmt.Errorf("%w: line %d", ErrVoucherLineAmount, i+1)
		}
		// Amounts are stored as NUMERIC(18,2); anything finer would be rounded after the balance check.
		if !IsWholeCents(l.Debit) || !IsWholeCents(l.Credit) {
			return fmt.Errorf("%w: line %d", ErrAmountPrecision, i+1)
		}
	}
	debit, credit := v.Totals()
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debits %s, credits %s", ErrVoucherUnbalanced, debit.StringFixed(2), credit.StringFixed(2))
	}
	return nil
}

// IsGenerated reports whether the voucher was posted by a booking, visa, installment or segment.
func (v *Voucher) IsGenerated() bool {
	return v.SourceType != ""
}

// VoucherFilter narrows voucher listings.
type VoucherFilter struct {
	Type       *VoucherType
	Status     *VoucherStatus
	RelationID string
	BoxID      string
	From       *time.Time
	To         *time.Time
	Limit      int
	NextToken  *string
}

// DeletedVoucher is the archived copy kept when a voucher is deleted.
type DeletedVoucher struct {
	Voucher   Voucher   `json:"voucher"`
	Reason    string    `json:"reason"`
	DeletedAt time.Time `json:"deletedAt"`
	DeletedBy string    `json:"deletedBy"`
}

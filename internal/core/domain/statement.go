package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementLine is one movement on an account statement.
type StatementLine struct {
	Date           time.Time       `json:"date"`
	VoucherID      string          `json:"voucherID"`
	VoucherNumber  string          `json:"voucherNumber"`
	VoucherType    VoucherType     `json:"voucherType"`
	Description    string          `json:"description"`
	Debit          decimal.Decimal `json:"debit"`
	Credit         decimal.Decimal `json:"credit"`
	RunningBalance decimal.Decimal `json:"runningBalance"`
}

// AccountStatement lists the movements of a relation, box or channel over a period.
type AccountStatement struct {
	AccountKind    AccountKind     `json:"accountKind"`
	AccountID      string          `json:"accountID"`
	AccountName    string          `json:"accountName"`
	CurrencyCode   string          `json:"currencyCode"`
	From           time.Time       `json:"from"`
	To             time.Time       `json:"to"`
	OpeningBalance decimal.Decimal `json:"openingBalance"`
	TotalDebit     decimal.Decimal `json:"totalDebit"`
	TotalCredit    decimal.Decimal `json:"totalCredit"`
	ClosingBalance decimal.Decimal `json:"closingBalance"`
	Lines          []StatementLine `json:"lines"`
}

// AccountBalance is the derived balance of a single account.
type AccountBalance struct {
	AccountKind  AccountKind     `json:"accountKind"`
	AccountID    string          `json:"accountID"`
	AccountName  string          `json:"accountName"`
	CurrencyCode string          `json:"currencyCode"`
	Balance      decimal.Decimal `json:"balance"`
}

// Movement is the sum of posted voucher lines on one account.
type Movement struct {
	AccountID string
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// Net returns debit minus credit.
func (m Movement) Net() decimal.Decimal {
	return m.Debit.Sub(m.Credit)
}

// Dashboard summarises activity over a period and current positions.
type Dashboard struct {
	From                    time.Time        `json:"from"`
	To                      time.Time        `json:"to"`
	BookingCount            int              `json:"bookingCount"`
	VisaCount               int              `json:"visaCount"`
	Sales                   decimal.Decimal  `json:"sales"`
	Cost                    decimal.Decimal  `json:"cost"`
	Profit                  decimal.Decimal  `json:"profit"`
	Receivables             decimal.Decimal  `json:"receivables"`
	Payables                decimal.Decimal  `json:"payables"`
	Boxes                   []AccountBalance `json:"boxes"`
	OverdueInstallmentCount int              `json:"overdueInstallmentCount"`
}

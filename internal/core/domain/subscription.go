package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SubscriptionStatus string

const (
	SubscriptionActive    SubscriptionStatus = "ACTIVE"
	SubscriptionPaid      SubscriptionStatus = "PAID"
	SubscriptionCancelled SubscriptionStatus = "CANCELLED"
)

type InstallmentStatus string

const (
	InstallmentPending   InstallmentStatus = "PENDING"
	InstallmentPaid      InstallmentStatus = "PAID"
	InstallmentOverdue   InstallmentStatus = "OVERDUE"
	InstallmentCancelled InstallmentStatus = "CANCELLED"
)

// IsOpen reports whether the installment can still be paid.
func (s InstallmentStatus) IsOpen() bool {
	return s == InstallmentPending || s == InstallmentOverdue
}

// PartnerShare is a partner's percentage of a profit.
type PartnerShare struct {
	PartnerName string          `json:"partnerName"`
	Percentage  decimal.Decimal `json:"percentage"`
}

// Subscription is a service sold to a client and paid back in installments.
type Subscription struct {
	SubscriptionID   string             `json:"subscriptionID"`
	ClientID         string             `json:"clientID"`
	ClientName       string             `json:"clientName"`
	SupplierID       *string            `json:"supplierID,omitempty"`
	SupplierName     string             `json:"supplierName"`
	ServiceName      string             `json:"serviceName"`
	CurrencyCode     string             `json:"currencyCode"`
	TotalAmount      decimal.Decimal    `json:"totalAmount"`
	CostAmount       decimal.Decimal    `json:"costAmount"`
	InstallmentCount int                `json:"installmentCount"`
	StartDate        time.Time          `json:"startDate"`
	Status           SubscriptionStatus `json:"status"`
	Partners         []PartnerShare     `json:"partners"`
	VoucherID        *string            `json:"voucherID,omitempty"`
	Installments     []Installment      `json:"installments,omitempty"`
	AuditFields
}

// Profit is the amount billed minus the cost.
func (s Subscription) Profit() decimal.Decimal {
	return s.TotalAmount.Sub(s.CostAmount)
}

// Installment is one scheduled payment of a subscription.
type Installment struct {
	InstallmentID  string            `json:"installmentID"`
	SubscriptionID string            `json:"subscriptionID"`
	Sequence       int               `json:"sequence"`
	DueDate        time.Time         `json:"dueDate"`
	Amount         decimal.Decimal   `json:"amount"`
	PaidAmount     decimal.Decimal   `json:"paidAmount"`
	Status         InstallmentStatus `json:"status"`
	PaidAt         *time.Time        `json:"paidAt,omitempty"`
	VoucherID      *string           `json:"voucherID,omitempty"`
}

// SubscriptionFilter narrows subscription listings.
type SubscriptionFilter struct {
	Status   *SubscriptionStatus
	ClientID string
	Limit    int
	Offset   int
}

// ProfitDistribution is the result of splitting a profit between the principal and partners.
type ProfitDistribution struct {
	Profit         decimal.Decimal  `json:"profit"`
	PrincipalShare decimal.Decimal  `json:"principalShare"`
	Partners       []SegmentPartner `json:"partners"`
}

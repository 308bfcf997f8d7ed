package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

type PartnerShareRequest struct {
	PartnerName string          `json:"partnerName" binding:"required,max=200"`
	Percentage  decimal.Decimal `json:"percentage" binding:"gt=0,lte=100"`
}

// ToPartnerShares converts partner requests to domain shares.
func ToPartnerShares(in []PartnerShareRequest) []domain.PartnerShare {
	out := make([]domain.PartnerShare, len(in))
	for i, p := range in {
		out[i] = domain.PartnerShare{PartnerName: p.PartnerName, Percentage: p.Percentage}
	}
	return out
}

type CreateSubscriptionRequest struct {
	ClientID         string                `json:"clientID" binding:"required"`
	SupplierID       *string               `json:"supplierID"`
	ServiceName      string                `json:"serviceName" binding:"required,max=200"`
	CurrencyCode     string                `json:"currencyCode" binding:"required,currency"`
	TotalAmount      decimal.Decimal       `json:"totalAmount" binding:"gt=0"`
	CostAmount       decimal.Decimal       `json:"costAmount" binding:"gte=0"`
	InstallmentCount int                   `json:"installmentCount" binding:"required,min=1,max=120"`
	StartDate        time.Time             `json:"startDate" binding:"required"`
	Partners         []PartnerShareRequest `json:"partners" binding:"dive"`
}

type PayInstallmentRequest struct {
	BoxID string     `json:"boxID" binding:"required"`
	Date  *time.Time `json:"date"`
}

type ListSubscriptionsParams struct {
	Status   string `form:"status" binding:"omitempty,oneof=ACTIVE PAID CANCELLED"`
	ClientID string `form:"clientID"`
	Limit    int    `form:"limit,default=50"`
	Offset   int    `form:"offset,default=0"`
}

// PayInstallmentResponse returns the updated installment and the receipt posted for it.
type PayInstallmentResponse struct {
	Installment domain.Installment `json:"installment"`
	Voucher     domain.Voucher     `json:"voucher"`
}

type ComputeSegmentRequest struct {
	PeriodFrom   time.Time             `json:"periodFrom" binding:"required"`
	PeriodTo     time.Time             `json:"periodTo" binding:"required,gtefield=PeriodFrom"`
	CurrencyCode string                `json:"currencyCode" binding:"required,currency"`
	Partners     []PartnerShareRequest `json:"partners" binding:"dive"`
	Notes        string                `json:"notes"`
}

type ListParams struct {
	Limit  int `form:"limit,default=50"`
	Offset int `form:"offset,default=0"`
}

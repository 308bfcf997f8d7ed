package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type SegmentStatus string

const (
	SegmentDraft     SegmentStatus = "DRAFT"
	SegmentFinalized SegmentStatus = "FINALIZED"
)

// SegmentPartner is a partner company's share of a segment's profit.
type SegmentPartner struct {
	PartnerName string          `json:"partnerName"`
	Percentage  decimal.Decimal `json:"percentage"`
	Amount      decimal.Decimal `json:"amount"`
}

// Segment is a periodic revenue-sharing record between the agency and partner companies.
type Segment struct {
	SegmentID    string           `json:"segmentID"`
	PeriodFrom   time.Time        `json:"periodFrom"`
	PeriodTo     time.Time        `json:"periodTo"`
	CurrencyCode string           `json:"currencyCode"`
	TotalSales   decimal.Decimal  `json:"totalSales"`
	TotalCost    decimal.Decimal  `json:"totalCost"`
	TotalProfit  decimal.Decimal  `json:"totalProfit"`
	AgencyShare  decimal.Decimal  `json:"agencyShare"`
	Partners     []SegmentPartner `json:"partners"`
	Status       SegmentStatus    `json:"status"`
	VoucherID    *string          `json:"voucherID,omitempty"`
	Notes        string           `json:"notes"`
	AuditFields
}

// PartnerTotal sums the partners' amounts.
func (s Segment) PartnerTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range s.Partners {
		total = total.Add(p.Amount)
	}
	return total
}

// SalesTotals aggregates sales and costs of bookings and visas over a period.
type SalesTotals struct {
	BookingCount int             `json:"bookingCount"`
	VisaCount    int             `json:"visaCount"`
	Sales        decimal.Decimal `json:"sales"`
	Cost         decimal.Decimal `json:"cost"`
}

// Profit is sales minus cost.
func (t SalesTotals) Profit() decimal.Decimal {
	return t.Sales.Sub(t.Cost)
}

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleStatus is shared by bookings and visa bookings.
type SaleStatus string

const (
	SaleActive    SaleStatus = "ACTIVE"
	SalePaid      SaleStatus = "PAID"
	SaleCancelled SaleStatus = "CANCELLED"
)

// Passenger travelling on a booking.
type Passenger struct {
	Name           string `json:"name"`
	PassportNumber string `json:"passportNumber,omitempty"`
	TicketNumber   string `json:"ticketNumber,omitempty"`
}

// Booking is a sold ticket (or ticket bundle) bought from a supplier on behalf of a client.
type Booking struct {
	BookingID     string          `json:"bookingID"`
	Reference     string          `json:"reference"`
	ClientID      string          `json:"clientID"`
	ClientName    string          `json:"clientName"`
	SupplierID    string          `json:"supplierID"`
	SupplierName  string          `json:"supplierName"`
	Passengers    []Passenger     `json:"passengers"`
	Route         string          `json:"route"`
	Airline       string          `json:"airline"`
	TravelDate    time.Time       `json:"travelDate"`
	ReturnDate    *time.Time      `json:"returnDate,omitempty"`
	CurrencyCode  string          `json:"currencyCode"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SalePrice     decimal.Decimal `json:"salePrice"`
	Status        SaleStatus      `json:"status"`
	VoucherID     *string         `json:"voucherID,omitempty"`
	AttachmentKey string          `json:"attachmentKey,omitempty"`
	Notes         string          `json:"notes"`
	AuditFields
}

// Profit is the sale price minus the cost price.
func (b Booking) Profit() decimal.Decimal {
	return b.SalePrice.Sub(b.CostPrice)
}

// BookingFilter narrows booking listings.
type BookingFilter struct {
	Status     *SaleStatus
	ClientID   string
	SupplierID string
	From       *time.Time
	To         *time.Time
	Limit      int
	Offset     int
}

// VisaBooking is a visa application handled for a client through a supplier.
type VisaBooking struct {
	VisaID         string          `json:"visaID"`
	ApplicantName  string          `json:"applicantName"`
	PassportNumber string          `json:"passportNumber"`
	Country        string          `json:"country"`
	VisaType       string          `json:"visaType"`
	ClientID       string          `json:"clientID"`
	ClientName     string          `json:"clientName"`
	SupplierID     string          `json:"supplierID"`
	SupplierName   string          `json:"supplierName"`
	CurrencyCode   string          `json:"currencyCode"`
	CostPrice      decimal.Decimal `json:"costPrice"`
	SalePrice      decimal.Decimal `json:"salePrice"`
	Status         SaleStatus      `json:"status"`
	SubmittedAt    time.Time       `json:"submittedAt"`
	VoucherID      *string         `json:"voucherID,omitempty"`
	AttachmentKey  string          `json:"attachmentKey,omitempty"`
	Notes          string          `json:"notes"`
	AuditFields
}

// Profit is the sale price minus the cost price.
func (v VisaBooking) Profit() decimal.Decimal {
	return v.SalePrice.Sub(v.CostPrice)
}

// VisaFilter narrows visa listings.
type VisaFilter struct {
	Status   *SaleStatus
	ClientID string
	Country  string
	From     *time.Time
	To       *time.Time
	Limit    int
	Offset   int
}

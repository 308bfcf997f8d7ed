package dto

import (
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/shopspring/decimal"
)

type PassengerRequest struct {
	Name           string `json:"name" binding:"required,max=200"`
	PassportNumber string `json:"passportNumber" binding:"max=50"`
	TicketNumber   string `json:"ticketNumber" binding:"max=50"`
}

// ToPassengers converts passenger requests to domain passengers.
func ToPassengers(in []PassengerRequest) []domain.Passenger {
	out := make([]domain.Passenger, len(in))
	for i, p := range in {
		out[i] = domain.Passenger{Name: p.Name, PassportNumber: p.PassportNumber, TicketNumber: p.TicketNumber}
	}
	return out
}

type CreateBookingRequest struct {
	Reference    string             `json:"reference" binding:"max=50"`
	ClientID     string             `json:"clientID" binding:"required"`
	SupplierID   string             `json:"supplierID" binding:"required"`
	Passengers   []PassengerRequest `json:"passengers" binding:"required,min=1,dive"`
	Route        string             `json:"route" binding:"max=200"`
	Airline      string             `json:"airline" binding:"max=100"`
	TravelDate   time.Time          `json:"travelDate" binding:"required"`
	ReturnDate   *time.Time         `json:"returnDate"`
	CurrencyCode string             `json:"currencyCode" binding:"required,currency"`
	CostPrice    decimal.Decimal    `json:"costPrice" binding:"gte=0"`
	SalePrice    decimal.Decimal    `json:"salePrice" binding:"gte=0"`
	Notes        string             `json:"notes"`
}

// UpdateBookingRequest only carries non-financial fields.
type UpdateBookingRequest struct {
	Reference  *string            `json:"reference" binding:"omitempty,max=50"`
	Passengers []PassengerRequest `json:"passengers" binding:"omitempty,min=1,dive"`
	Route      *string            `json:"route" binding:"omitempty,max=200"`
	Airline    *string            `json:"airline" binding:"omitempty,max=100"`
	TravelDate *time.Time         `json:"travelDate"`
	ReturnDate *time.Time         `json:"returnDate"`
	Notes      *string            `json:"notes"`
}

type ListBookingsParams struct {
	Status     string     `form:"status" binding:"omitempty,oneof=ACTIVE PAID CANCELLED"`
	ClientID   string     `form:"clientID"`
	SupplierID string     `form:"supplierID"`
	From       *time.Time `form:"from" time_format:"2006-01-02"`
	To         *time.Time `form:"to" time_format:"2006-01-02"`
	Limit      int        `form:"limit,default=50"`
	Offset     int        `form:"offset,default=0"`
}

type CancelRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// AttachDocumentRequest uploads a file for a booking or visa as a data URI.
type AttachDocumentRequest struct {
	DataURI string `json:"dataURI" binding:"required"`
}

type CreateVisaRequest struct {
	ApplicantName  string          `json:"applicantName" binding:"required,max=200"`
	PassportNumber string          `json:"passportNumber" binding:"max=50"`
	Country        string          `json:"country" binding:"required,max=100"`
	VisaType       string          `json:"visaType" binding:"max=100"`
	ClientID       string          `json:"clientID" binding:"required"`
	SupplierID     string          `json:"supplierID" binding:"required"`
	CurrencyCode   string          `json:"currencyCode" binding:"required,currency"`
	CostPrice      decimal.Decimal `json:"costPrice" binding:"gte=0"`
	SalePrice      decimal.Decimal `json:"salePrice" binding:"gte=0"`
	SubmittedAt    *time.Time      `json:"submittedAt"`
	Notes          string          `json:"notes"`
}

type UpdateVisaRequest struct {
	ApplicantName  *string    `json:"applicantName" binding:"omitempty,max=200"`
	PassportNumber *string    `json:"passportNumber" binding:"omitempty,max=50"`
	Country        *string    `json:"country" binding:"omitempty,max=100"`
	VisaType       *string    `json:"visaType" binding:"omitempty,max=100"`
	SubmittedAt    *time.Time `json:"submittedAt"`
	Notes          *string    `json:"notes"`
}

type ListVisasParams struct {
	Status   string     `form:"status" binding:"omitempty,oneof=ACTIVE PAID CANCELLED"`
	ClientID string     `form:"clientID"`
	Country  string     `form:"country"`
	From     *time.Time `form:"from" time_format:"2006-01-02"`
	To       *time.Time `form:"to" time_format:"2006-01-02"`
	Limit    int        `form:"limit,default=50"`
	Offset   int        `form:"offset,default=0"`
}

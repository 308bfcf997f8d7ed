package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
)

// MaxDocumentSize is the largest decoded document accepted for extraction.
const MaxDocumentSize = 10 << 20

// DocumentKind selects the extraction prompt.
type DocumentKind string

const (
	DocumentTicket DocumentKind = "TICKET"
	DocumentVisa   DocumentKind = "VISA"
)

var allowedDocumentTypes = map[string]string{
	"application/pdf": "pdf",
	"image/png":       "png",
	"image/jpeg":      "jpg",
	"image/webp":      "webp",
}

// Document is a decoded uploaded file.
type Document struct {
	MimeType string
	Data     []byte
}

// Extension returns the file extension matching the document's mime type.
func (d Document) Extension() string {
	return allowedDocumentTypes[d.MimeType]
}

// ParseDataURI decodes a data:<mime>;base64,<payload> URI into a Document.
func ParseDataURI(uri string) (*Document, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return nil, fmt.Errorf("%w: document must be a data URI", apperrors.ErrValidation)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return nil, fmt.Errorf("%w: malformed data URI", apperrors.ErrValidation)
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return nil, fmt.Errorf("%w: data URI must be base64 encoded", apperrors.ErrValidation)
	}
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if _, allowed := allowedDocumentTypes[mimeType]; !allowed {
		return nil, fmt.Errorf("%w: unsupported document type %q", apperrors.ErrValidation, mimeType)
	}
	if base64.StdEncoding.DecodedLen(len(payload)) > MaxDocumentSize+2 {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", apperrors.ErrValidation, MaxDocumentSize)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid base64 payload", apperrors.ErrValidation)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: document is empty", apperrors.ErrValidation)
	}
	if len(data) > MaxDocumentSize {
		return nil, fmt.Errorf("%w: document exceeds %d bytes", apperrors.ErrValidation, MaxDocumentSize)
	}
	// The declared type is client input; the bytes must agree with it.
	sniffed, _, _ := strings.Cut(http.DetectContentType(data), ";")
	if sniffed != mimeType {
		return nil, fmt.Errorf("%w: document content is %s, not %s", apperrors.ErrValidation, sniffed, mimeType)
	}
	return &Document{MimeType: mimeType, Data: data}, nil
}

// ExtractedDocument holds the fields read from a ticket or visa document.
// Dates are kept as the YYYY-MM-DD strings returned by the model.
type ExtractedDocument struct {
	Kind          DocumentKind `json:"kind"`
	Passengers    []Passenger  `json:"passengers"`
	Reference     string       `json:"reference,omitempty"`
	Airline       string       `json:"airline,omitempty"`
	Route         string       `json:"route,omitempty"`
	TravelDate    string       `json:"travelDate,omitempty"`
	ReturnDate    string       `json:"returnDate,omitempty"`
	Country       string       `json:"country,omitempty"`
	VisaType      string       `json:"visaType,omitempty"`
	TotalPrice    string       `json:"totalPrice,omitempty"`
	Currency      string       `json:"currency,omitempty"`
	AttachmentKey string       `json:"attachmentKey,omitempty"`
}

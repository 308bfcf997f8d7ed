// Package gemini reads ticket and visa documents with Google's generative language API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
	"google.golang.org/genai"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
)

// ErrUnreadableResponse is returned when the model answers with something other than a JSON object.
var ErrUnreadableResponse = errors.New("model returned an unreadable response")

const ticketPrompt = `You read airline tickets and itineraries for a travel agency.
Return only a JSON object with these keys:
"passengers": array of {"name", "passportNumber", "ticketNumber"},
"reference": booking reference or PNR,
"airline", "route" (e.g. "DXB-LHR-DXB"),
"travelDate" and "returnDate" as YYYY-MM-DD,
"totalPrice" as a plain number string, "currency" as an ISO 4217 code.
Use an empty string for anything that is not on the document.`

const visaPrompt = `You read visa documents and visa applications for a travel agency.
Return only a JSON object with these keys:
"passengers": array of {"name", "passportNumber"} for every applicant,
"country": the issuing country, "visaType",
"travelDate": intended entry date as YYYY-MM-DD,
"totalPrice" as a plain number string, "currency" as an ISO 4217 code.
Use an empty string for anything that is not on the document.`

// Extractor implements portssvc.DocumentExtractor on the GenerateContent endpoint.
type Extractor struct {
	client *genai.Client
	model  string
}

var _ portssvc.DocumentExtractor = (*Extractor)(nil)

// Option adjusts the client configuration before the client is built.
type Option func(*genai.ClientConfig)

// WithBaseURL points the client at another endpoint.
func WithBaseURL(url string) Option {
	return func(cfg *genai.ClientConfig) { cfg.HTTPOptions.BaseURL = url }
}

// WithHTTPClient sets the HTTP client used for every request.
func WithHTTPClient(c *http.Client) Option {
	return func(cfg *genai.ClientConfig) { cfg.HTTPClient = c }
}

// NewExtractor creates an extractor for model against the Gemini API.
func NewExtractor(ctx context.Context, apiKey, model string, opts ...Option) (*Extractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	cfg := &genai.ClientConfig{APIKey: apiKey, Backend: genai.BackendGeminiAPI}
	for _, opt := range opts {
		opt(cfg)
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Extractor{client: client, model: strings.TrimPrefix(model, "models/")}, nil
}

// Extract sends the document and the prompt for kind in one request.
func (e *Extractor) Extract(ctx context.Context, kind domain.DocumentKind, doc domain.Document) (*domain.ExtractedDocument, error) {
	prompt := ticketPrompt
	if kind == domain.DocumentVisa {
		prompt = visaPrompt
	}

	contents := []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: prompt},
			{InlineData: &genai.Blob{MIMEType: doc.MimeType, Data: doc.Data}},
		},
	}}
	config := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, contents, config)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusBadGateway, "document extraction failed", err)
	}
	text := responseText(resp)
	if text == "" {
		return nil, apperrors.NewAppError(http.StatusBadGateway, "document extraction failed", ErrUnreadableResponse)
	}
	out, err := parseExtraction(kind, text)
	if err != nil {
		return nil, apperrors.NewAppError(http.StatusBadGateway, "document extraction failed", err)
	}
	return out, nil
}

// responseText joins the text parts of the first candidate that has any. Thought parts are skipped.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, c := range resp.Candidates {
		if c == nil || c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			if p != nil && !p.Thought {
				sb.WriteString(p.Text)
			}
		}
		if sb.Len() > 0 {
			return sb.String()
		}
	}
	return ""
}

// parseExtraction reads the model's JSON. Code fences and numeric values are tolerated.
func parseExtraction(kind domain.DocumentKind, text string) (*domain.ExtractedDocument, error) {
	text = stripFence(text)
	if !gjson.Valid(text) {
		return nil, ErrUnreadableResponse
	}
	root := gjson.Parse(text)
	if root.IsArray() {
		root = root.Get("0")
	}
	if !root.IsObject() {
		return nil, ErrUnreadableResponse
	}

	out := &domain.ExtractedDocument{
		Kind:       kind,
		Passengers: []domain.Passenger{},
		Reference:  str(root, "reference"),
		Airline:    str(root, "airline"),
		Route:      str(root, "route"),
		TravelDate: str(root, "travelDate"),
		ReturnDate: str(root, "returnDate"),
		Country:    str(root, "country"),
		VisaType:   str(root, "visaType"),
		TotalPrice: str(root, "totalPrice"),
		Currency:   strings.ToUpper(str(root, "currency")),
	}
	root.Get("passengers").ForEach(func(_, p gjson.Result) bool {
		var pax domain.Passenger
		if p.Type == gjson.String {
			pax.Name = strings.TrimSpace(p.String())
		} else {
			pax = domain.Passenger{
				Name:           str(p, "name"),
				PassportNumber: str(p, "passportNumber"),
				TicketNumber:   str(p, "ticketNumber"),
			}
		}
		if pax.Name != "" {
			out.Passengers = append(out.Passengers, pax)
		}
		return true
	})
	return out, nil
}

func str(r gjson.Result, path string) string {
	v := r.Get(path)
	if !v.Exists() || v.Type == gjson.Null {
		return ""
	}
	return strings.TrimSpace(v.String())
}

func stripFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimPrefix(text, "json")
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(text), "```"))
}

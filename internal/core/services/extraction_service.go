package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SscSPs/travel_backoffice/internal/apperrors"
	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/platform/metrics"
)

var errExtractionNotConfigured = fmt.Errorf("%w: document extraction is not configured", apperrors.ErrValidation)

type extractionService struct {
	BaseService
	extractor   portssvc.DocumentExtractor
	attachments portssvc.AttachmentStore
}

// NewExtractionService creates the document extraction service. extractor and attachments may be
// nil when the corresponding integration is not configured.
func NewExtractionService(extractor portssvc.DocumentExtractor, attachments portssvc.AttachmentStore) portssvc.ExtractionSvc {
	return &extractionService{extractor: extractor, attachments: attachments}
}

var _ portssvc.ExtractionSvc = (*extractionService)(nil)

// ExtractDocument decodes the uploaded file, optionally stores it, and asks the model for its fields.
func (s *extractionService) ExtractDocument(ctx context.Context, req dto.ExtractDocumentRequest, userID string) (*domain.ExtractedDocument, error) {
	if s.extractor == nil {
		return nil, errExtractionNotConfigured
	}
	if req.Kind != domain.DocumentTicket && req.Kind != domain.DocumentVisa {
		return nil, fmt.Errorf("%w: kind must be TICKET or VISA", apperrors.ErrValidation)
	}
	doc, err := domain.ParseDataURI(req.DataURI)
	if err != nil {
		return nil, err
	}

	var key string
	if req.Store {
		if s.attachments == nil {
			return nil, errStorageNotConfigured
		}
		key = fmt.Sprintf("extractions/%s/%s.%s", s.clock().Format("2006/01/02"), uuid.NewString(), doc.Extension())
		if err := s.attachments.Put(ctx, key, doc.MimeType, doc.Data); err != nil {
			s.LogError(ctx, err, "Failed to store uploaded document")
			return nil, fmt.Errorf("failed to store document: %w", err)
		}
	}

	start := time.Now()
	out, err := s.extractor.Extract(ctx, req.Kind, *doc)
	metrics.ExtractionDone(string(req.Kind), err == nil)
	if err != nil {
		s.LogError(ctx, err, "Document extraction failed",
			slog.String("kind", string(req.Kind)),
			slog.String("mime_type", doc.MimeType))
		return nil, err
	}
	out.Kind = req.Kind
	out.AttachmentKey = key
	if out.Passengers == nil {
		out.Passengers = []domain.Passenger{}
	}
	s.LogInfo(ctx, "Document extracted",
		slog.String("kind", string(req.Kind)),
		slog.String("user_id", userID),
		slog.Int("passengers", len(out.Passengers)),
		slog.Duration("took", time.Since(start)))
	return out, nil
}

package services

import (
	"context"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	"github.com/SscSPs/travel_backoffice/internal/dto"
)

// ExtractionSvc turns uploaded ticket and visa files into structured fields.
type ExtractionSvc interface {
	ExtractDocument(ctx context.Context, req dto.ExtractDocumentRequest, userID string) (*domain.ExtractedDocument, error)
}

// DocumentExtractor is the outbound port to the generative model reading documents.
type DocumentExtractor interface {
	Extract(ctx context.Context, kind domain.DocumentKind, doc domain.Document) (*domain.ExtractedDocument, error)
}

// AttachmentStore is the outbound port to file storage.
type AttachmentStore interface {
	// Put stores data under key.
	Put(ctx context.Context, key, contentType string, data []byte) error
	// Get returns the stored bytes and their content type.
	Get(ctx context.Context, key string) ([]byte, string, error)
}

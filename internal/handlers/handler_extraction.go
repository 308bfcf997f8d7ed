package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/analytics"
	"github.com/gin-gonic/gin"
)

type extractionHandler struct {
	extractionService portssvc.ExtractionSvc
	analytics         *analytics.Client
}

func registerExtractionRoutes(rg *gin.RouterGroup, extractionService portssvc.ExtractionSvc, client *analytics.Client) {
	h := &extractionHandler{extractionService: extractionService, analytics: client}
	rg.POST("/extractions", h.extractDocument)
}

// extractDocument godoc
// @Summary Extract a ticket or visa document
// @Description Reads passengers and travel data out of an uploaded image or PDF. Nothing is booked; the result pre-fills a form.
// @Tags extractions
// @Accept json
// @Produce json
// @Param request body dto.ExtractDocumentRequest true "Document as a data URI"
// @Success 200 {object} domain.ExtractedDocument
// @Failure 400 {object} ErrorResponse "Malformed or unsupported document"
// @Failure 502 {object} ErrorResponse "Extraction provider failed"
// @Security BearerAuth
// @Router /extractions [post]
func (h *extractionHandler) extractDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.ExtractDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	doc, err := h.extractionService.ExtractDocument(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to extract document")
		return
	}
	logger.Info("Document extracted",
		slog.String("kind", string(doc.Kind)),
		slog.Int("passengers", len(doc.Passengers)))
	middleware.PosthogEvent(c, h.analytics, "document_extracted", map[string]any{
		"kind":       string(doc.Kind),
		"passengers": len(doc.Passengers),
	})
	c.JSON(http.StatusOK, doc)
}

package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

type segmentHandler struct {
	segmentService portssvc.SegmentSvcFacade
}

// registerSegmentRoutes registers the revenue sharing routes. They all need ACCOUNTANT.
func registerSegmentRoutes(rg *gin.RouterGroup, segmentService portssvc.SegmentSvcFacade) {
	h := &segmentHandler{segmentService: segmentService}

	segments := rg.Group("/segments", middleware.RequireRole(domain.RoleAccountant))
	{
		segments.POST("/compute", h.computeSegment)
		segments.POST("", h.createSegment)
		segments.GET("", h.listSegments)
		segments.GET("/:segmentID", h.getSegment)
		segments.POST("/:segmentID/finalize", h.finalizeSegment)
		segments.DELETE("/:segmentID", h.deleteSegment)
	}
}

// computeSegment godoc
// @Summary Preview a segment
// @Description Sums non-cancelled bookings and visas of the period and splits the profit. Nothing is stored.
// @Tags segments
// @Accept json
// @Produce json
// @Param segment body dto.ComputeSegmentRequest true "Period and partners"
// @Success 200 {object} domain.Segment
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /segments/compute [post]
func (h *segmentHandler) computeSegment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.ComputeSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	segment, err := h.segmentService.ComputeSegment(c.Request.Context(), req)
	if err != nil {
		respondError(c, logger, err, "Failed to compute segment")
		return
	}
	c.JSON(http.StatusOK, segment)
}

// createSegment godoc
// @Summary Save a segment as DRAFT
// @Tags segments
// @Accept json
// @Produce json
// @Param segment body dto.ComputeSegmentRequest true "Period and partners"
// @Success 201 {object} domain.Segment
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /segments [post]
func (h *segmentHandler) createSegment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.ComputeSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	segment, err := h.segmentService.CreateSegment(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create segment")
		return
	}
	logger.Info("Segment created", slog.String("segment_id", segment.SegmentID))
	c.JSON(http.StatusCreated, segment)
}

// listSegments godoc
// @Summary List segments
// @Tags segments
// @Produce json
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Segment
// @Security BearerAuth
// @Router /segments [get]
func (h *segmentHandler) listSegments(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	segments, err := h.segmentService.ListSegments(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list segments")
		return
	}
	c.JSON(http.StatusOK, segments)
}

// getSegment godoc
// @Summary Get a segment
// @Tags segments
// @Produce json
// @Param segmentID path string true "Segment ID"
// @Success 200 {object} domain.Segment
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /segments/{segmentID} [get]
func (h *segmentHandler) getSegment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	segment, err := h.segmentService.GetSegment(c.Request.Context(), c.Param("segmentID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get segment")
		return
	}
	c.JSON(http.StatusOK, segment)
}

// finalizeSegment godoc
// @Summary Finalize a segment
// @Description Posts the partners' shares (Dr revenue / Cr each partner) and locks the segment.
// @Tags segments
// @Produce json
// @Param segmentID path string true "Segment ID"
// @Success 200 {object} domain.Segment
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already finalized"
// @Security BearerAuth
// @Router /segments/{segmentID}/finalize [post]
func (h *segmentHandler) finalizeSegment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	segment, err := h.segmentService.FinalizeSegment(c.Request.Context(), c.Param("segmentID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to finalize segment")
		return
	}
	logger.Info("Segment finalized", slog.String("segment_id", segment.SegmentID))
	c.JSON(http.StatusOK, segment)
}

// deleteSegment godoc
// @Summary Delete a DRAFT segment
// @Tags segments
// @Param segmentID path string true "Segment ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Segment is finalized"
// @Security BearerAuth
// @Router /segments/{segmentID} [delete]
func (h *segmentHandler) deleteSegment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	if err := h.segmentService.DeleteSegment(c.Request.Context(), c.Param("segmentID"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete segment")
		return
	}
	c.Status(http.StatusNoContent)
}

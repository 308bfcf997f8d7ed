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

type visaHandler struct {
	visaService portssvc.VisaSvcFacade
	attachments portssvc.AttachmentStore
}

func registerVisaRoutes(rg *gin.RouterGroup, visaService portssvc.VisaSvcFacade, attachments portssvc.AttachmentStore) {
	h := &visaHandler{visaService: visaService, attachments: attachments}
	accountant := middleware.RequireRole(domain.RoleAccountant)

	visas := rg.Group("/visas")
	{
		visas.POST("", h.createVisa)
		visas.GET("", h.listVisas)
		visas.GET("/:visaID", h.getVisa)
		visas.PUT("/:visaID", h.updateVisa)
		visas.POST("/:visaID/cancel", accountant, h.cancelVisa)
		visas.POST("/:visaID/pay", accountant, h.markVisaPaid)
		visas.POST("/:visaID/document", h.attachDocument)
		visas.GET("/:visaID/document", h.downloadDocument)
	}
}

// createVisa godoc
// @Summary Create a visa application
// @Description Stores the application and posts its VISA voucher.
// @Tags visas
// @Accept json
// @Produce json
// @Param visa body dto.CreateVisaRequest true "Visa application"
// @Success 201 {object} domain.VisaBooking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /visas [post]
func (h *visaHandler) createVisa(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateVisaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	visa, err := h.visaService.CreateVisa(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create visa")
		return
	}
	logger.Info("Visa created", slog.String("visa_id", visa.VisaID))
	c.JSON(http.StatusCreated, visa)
}

// listVisas godoc
// @Summary List visa applications
// @Tags visas
// @Produce json
// @Param status query string false "ACTIVE, PAID or CANCELLED"
// @Param clientID query string false "Client"
// @Param country query string false "Destination country"
// @Param from query string false "Submitted from (YYYY-MM-DD)"
// @Param to query string false "Submitted to (YYYY-MM-DD)"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.VisaBooking
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /visas [get]
func (h *visaHandler) listVisas(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListVisasParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	visas, err := h.visaService.ListVisas(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list visas")
		return
	}
	c.JSON(http.StatusOK, visas)
}

// getVisa godoc
// @Summary Get a visa application
// @Tags visas
// @Produce json
// @Param visaID path string true "Visa ID"
// @Success 200 {object} domain.VisaBooking
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /visas/{visaID} [get]
func (h *visaHandler) getVisa(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	visa, err := h.visaService.GetVisa(c.Request.Context(), c.Param("visaID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get visa")
		return
	}
	c.JSON(http.StatusOK, visa)
}

// updateVisa godoc
// @Summary Update a visa application
// @Tags visas
// @Accept json
// @Produce json
// @Param visaID path string true "Visa ID"
// @Param visa body dto.UpdateVisaRequest true "Fields to update"
// @Success 200 {object} domain.VisaBooking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /visas/{visaID} [put]
func (h *visaHandler) updateVisa(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.UpdateVisaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	visa, err := h.visaService.UpdateVisa(c.Request.Context(), c.Param("visaID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update visa")
		return
	}
	c.JSON(http.StatusOK, visa)
}

// cancelVisa godoc
// @Summary Cancel a visa application
// @Tags visas
// @Accept json
// @Produce json
// @Param visaID path string true "Visa ID"
// @Param request body dto.CancelRequest false "Reason"
// @Success 200 {object} domain.VisaBooking
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /visas/{visaID}/cancel [post]
func (h *visaHandler) cancelVisa(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	reason, ok := bindCancelReason(c, logger)
	if !ok {
		return
	}
	visa, err := h.visaService.CancelVisa(c.Request.Context(), c.Param("visaID"), reason, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel visa")
		return
	}
	c.JSON(http.StatusOK, visa)
}

// markVisaPaid godoc
// @Summary Mark a visa application paid
// @Tags visas
// @Produce json
// @Param visaID path string true "Visa ID"
// @Success 200 {object} domain.VisaBooking
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /visas/{visaID}/pay [post]
func (h *visaHandler) markVisaPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	visa, err := h.visaService.MarkVisaPaid(c.Request.Context(), c.Param("visaID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to mark visa paid")
		return
	}
	c.JSON(http.StatusOK, visa)
}

// attachDocument godoc
// @Summary Attach a visa document
// @Tags visas
// @Accept json
// @Produce json
// @Param visaID path string true "Visa ID"
// @Param request body dto.AttachDocumentRequest true "Document"
// @Success 200 {object} domain.VisaBooking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /visas/{visaID}/document [post]
func (h *visaHandler) attachDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.AttachDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	visa, err := h.visaService.AttachVisaDocument(c.Request.Context(), c.Param("visaID"), req.DataURI, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to attach document")
		return
	}
	c.JSON(http.StatusOK, visa)
}

// downloadDocument godoc
// @Summary Download the visa document
// @Tags visas
// @Produce octet-stream
// @Param visaID path string true "Visa ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Storage not configured"
// @Security BearerAuth
// @Router /visas/{visaID}/document [get]
func (h *visaHandler) downloadDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	visa, err := h.visaService.GetVisa(c.Request.Context(), c.Param("visaID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get visa")
		return
	}
	sendAttachment(c, logger, h.attachments, visa.AttachmentKey)
}

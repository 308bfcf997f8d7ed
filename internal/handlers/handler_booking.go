package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/analytics"
	"github.com/gin-gonic/gin"
)

// bookingHandler handles HTTP requests for ticket bookings.
type bookingHandler struct {
	bookingService portssvc.BookingSvcFacade
	attachments    portssvc.AttachmentStore
	analytics      *analytics.Client
}

func newBookingHandler(bs portssvc.BookingSvcFacade, attachments portssvc.AttachmentStore, client *analytics.Client) *bookingHandler {
	return &bookingHandler{bookingService: bs, attachments: attachments, analytics: client}
}

// registerBookingRoutes registers the booking routes. Agents create and edit bookings; cancelling
// or settling one touches the journal and needs ACCOUNTANT.
func registerBookingRoutes(rg *gin.RouterGroup, bookingService portssvc.BookingSvcFacade, attachments portssvc.AttachmentStore, client *analytics.Client) {
	h := newBookingHandler(bookingService, attachments, client)
	accountant := middleware.RequireRole(domain.RoleAccountant)

	bookings := rg.Group("/bookings")
	{
		bookings.POST("", h.createBooking)
		bookings.GET("", h.listBookings)
		bookings.GET("/upcoming", h.upcomingDepartures)
		bookings.GET("/:bookingID", h.getBooking)
		bookings.PUT("/:bookingID", h.updateBooking)
		bookings.POST("/:bookingID/cancel", accountant, h.cancelBooking)
		bookings.POST("/:bookingID/pay", accountant, h.markBookingPaid)
		bookings.POST("/:bookingID/document", h.attachDocument)
		bookings.GET("/:bookingID/document", h.downloadDocument)
	}
}

// createBooking godoc
// @Summary Create a ticket booking
// @Description Stores the booking and posts its BOOKING voucher: Dr client sale / Cr supplier cost / Cr revenue (or Dr expense) for the difference.
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body dto.CreateBookingRequest true "Booking"
// @Success 201 {object} domain.Booking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "Client or supplier not found"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /bookings [post]
func (h *bookingHandler) createBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	booking, err := h.bookingService.CreateBooking(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create booking")
		return
	}
	logger.Info("Booking created", slog.String("booking_id", booking.BookingID))
	middleware.PosthogEvent(c, h.analytics, "booking_created", map[string]any{
		"currency":   booking.CurrencyCode,
		"passengers": len(booking.Passengers),
	})
	c.JSON(http.StatusCreated, booking)
}

// listBookings godoc
// @Summary List bookings
// @Tags bookings
// @Produce json
// @Param status query string false "ACTIVE, PAID or CANCELLED"
// @Param clientID query string false "Client"
// @Param supplierID query string false "Supplier"
// @Param from query string false "Travel date from (YYYY-MM-DD)"
// @Param to query string false "Travel date to (YYYY-MM-DD)"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Booking
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /bookings [get]
func (h *bookingHandler) listBookings(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListBookingsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	bookings, err := h.bookingService.ListBookings(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list bookings")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// upcomingDepartures godoc
// @Summary List upcoming departures
// @Tags bookings
// @Produce json
// @Param days query int false "Days ahead, 0 to 60" default(7)
// @Success 200 {array} domain.Booking
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /bookings/upcoming [get]
func (h *bookingHandler) upcomingDepartures(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	days, err := strconv.Atoi(c.DefaultQuery("days", "7"))
	if err != nil || days < 0 || days > 60 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "days must be between 0 and 60"})
		return
	}
	from := domain.DateOnly(time.Now())
	bookings, err := h.bookingService.UpcomingDepartures(c.Request.Context(), from, from.AddDate(0, 0, days))
	if err != nil {
		respondError(c, logger, err, "Failed to list departures")
		return
	}
	c.JSON(http.StatusOK, bookings)
}

// getBooking godoc
// @Summary Get a booking
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} domain.Booking
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /bookings/{bookingID} [get]
func (h *bookingHandler) getBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// updateBooking godoc
// @Summary Update a booking
// @Description Only non-financial fields. Changing prices needs cancel and recreate.
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Param booking body dto.UpdateBookingRequest true "Fields to update"
// @Success 200 {object} domain.Booking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Booking is cancelled"
// @Security BearerAuth
// @Router /bookings/{bookingID} [put]
func (h *bookingHandler) updateBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.UpdateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	booking, err := h.bookingService.UpdateBooking(c.Request.Context(), c.Param("bookingID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update booking")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// cancelBooking godoc
// @Summary Cancel a booking
// @Description Sets the booking CANCELLED and voids its voucher.
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Param request body dto.CancelRequest false "Reason"
// @Success 200 {object} domain.Booking
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /bookings/{bookingID}/cancel [post]
func (h *bookingHandler) cancelBooking(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	reason, ok := bindCancelReason(c, logger)
	if !ok {
		return
	}
	booking, err := h.bookingService.CancelBooking(c.Request.Context(), c.Param("bookingID"), reason, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel booking")
		return
	}
	logger.Info("Booking cancelled", slog.String("booking_id", booking.BookingID))
	c.JSON(http.StatusOK, booking)
}

// markBookingPaid godoc
// @Summary Mark a booking paid
// @Tags bookings
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Success 200 {object} domain.Booking
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /bookings/{bookingID}/pay [post]
func (h *bookingHandler) markBookingPaid(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	booking, err := h.bookingService.MarkBookingPaid(c.Request.Context(), c.Param("bookingID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to mark booking paid")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// attachDocument godoc
// @Summary Attach a ticket document
// @Description Uploads a pdf or image as a data URI to attachment storage.
// @Tags bookings
// @Accept json
// @Produce json
// @Param bookingID path string true "Booking ID"
// @Param request body dto.AttachDocumentRequest true "Document"
// @Success 200 {object} domain.Booking
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /bookings/{bookingID}/document [post]
func (h *bookingHandler) attachDocument(c *gin.Context) {
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
	booking, err := h.bookingService.AttachBookingDocument(c.Request.Context(), c.Param("bookingID"), req.DataURI, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to attach document")
		return
	}
	c.JSON(http.StatusOK, booking)
}

// downloadDocument godoc
// @Summary Download the ticket document
// @Tags bookings
// @Produce octet-stream
// @Param bookingID path string true "Booking ID"
// @Success 200 {file} file
// @Failure 404 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse "Storage not configured"
// @Security BearerAuth
// @Router /bookings/{bookingID}/document [get]
func (h *bookingHandler) downloadDocument(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	booking, err := h.bookingService.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get booking")
		return
	}
	sendAttachment(c, logger, h.attachments, booking.AttachmentKey)
}

// bindCancelReason reads an optional {"reason": "..."} body.
func bindCancelReason(c *gin.Context, logger *slog.Logger) (string, bool) {
	var req dto.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, logger, err)
			return "", false
		}
	}
	return req.Reason, true
}

// sendAttachment streams a stored document back to the client.
func sendAttachment(c *gin.Context, logger *slog.Logger, store portssvc.AttachmentStore, key string) {
	if store == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Attachment storage is not configured"})
		return
	}
	if key == "" {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "No document attached"})
		return
	}
	data, contentType, err := store.Get(c.Request.Context(), key)
	if err != nil {
		respondError(c, logger, err, "Failed to download document")
		return
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="%s"`, path.Base(key)))
	c.Data(http.StatusOK, contentType, data)
}

package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/SscSPs/travel_backoffice/internal/platform/analytics"
	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader lets clients retry voucher creation safely.
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 200

// voucherHandler handles HTTP requests for journal vouchers.
type voucherHandler struct {
	voucherService portssvc.VoucherSvcFacade
	analytics      *analytics.Client
}

func newVoucherHandler(vs portssvc.VoucherSvcFacade, client *analytics.Client) *voucherHandler {
	return &voucherHandler{voucherService: vs, analytics: client}
}

// registerVoucherRoutes registers the voucher routes. Every write needs ACCOUNTANT.
func registerVoucherRoutes(rg *gin.RouterGroup, voucherService portssvc.VoucherSvcFacade, client *analytics.Client) {
	h := newVoucherHandler(voucherService, client)
	accountant := middleware.RequireRole(domain.RoleAccountant)

	vouchers := rg.Group("/vouchers")
	{
		vouchers.GET("", h.listVouchers)
		vouchers.GET("/:voucherID", h.getVoucher)
		vouchers.POST("", accountant, h.createVoucher)
		vouchers.POST("/receipts", accountant, h.createReceipt)
		vouchers.POST("/payments", accountant, h.createPayment)
		vouchers.POST("/transfers", accountant, h.createTransfer)
		vouchers.POST("/distributed", accountant, h.createDistributedVoucher)
		vouchers.POST("/:voucherID/void", accountant, h.voidVoucher)
		vouchers.DELETE("/:voucherID", accountant, h.deleteVoucher)
	}
}

// bindVoucher binds the body and copies the Idempotency-Key header into the voucher header.
func bindVoucher(c *gin.Context, logger *slog.Logger, req any, header *dto.VoucherHeader) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		badRequest(c, logger, err)
		return false
	}
	key := c.GetHeader(IdempotencyKeyHeader)
	if len(key) > maxIdempotencyKeyLength {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Idempotency-Key is too long"})
		return false
	}
	header.IdempotencyKey = key
	return true
}

func (h *voucherHandler) respondCreated(c *gin.Context, logger *slog.Logger, voucher *domain.Voucher, err error) {
	if err != nil {
		respondError(c, logger, err, "Failed to create voucher")
		return
	}
	logger.Info("Voucher posted",
		slog.String("voucher_id", voucher.VoucherID),
		slog.String("number", voucher.Number),
		slog.String("type", string(voucher.Type)))
	middleware.PosthogEvent(c, h.analytics, "voucher_posted", map[string]any{
		"type":     string(voucher.Type),
		"currency": voucher.CurrencyCode,
	})
	c.JSON(http.StatusCreated, voucher)
}

// createVoucher godoc
// @Summary Post a journal voucher
// @Description Free-form lines. Each line carries exactly one of debit or credit and the totals must balance.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the first voucher"
// @Param voucher body dto.CreateVoucherRequest true "Voucher"
// @Success 201 {object} domain.Voucher
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Same Idempotency-Key still in flight"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers [post]
func (h *voucherHandler) createVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateVoucherRequest
	if !bindVoucher(c, logger, &req, &req.VoucherHeader) {
		return
	}
	voucher, err := h.voucherService.CreateVoucher(c.Request.Context(), req, userID)
	h.respondCreated(c, logger, voucher, err)
}

// createReceipt godoc
// @Summary Record a receipt
// @Description Dr box / Cr relation.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the first voucher"
// @Param receipt body dto.CreateReceiptRequest true "Receipt"
// @Success 201 {object} domain.Voucher
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/receipts [post]
func (h *voucherHandler) createReceipt(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateReceiptRequest
	if !bindVoucher(c, logger, &req, &req.VoucherHeader) {
		return
	}
	voucher, err := h.voucherService.CreateReceipt(c.Request.Context(), req, userID)
	h.respondCreated(c, logger, voucher, err)
}

// createPayment godoc
// @Summary Record a payment
// @Description Dr relation / Cr box.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the first voucher"
// @Param payment body dto.CreatePaymentRequest true "Payment"
// @Success 201 {object} domain.Voucher
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/payments [post]
func (h *voucherHandler) createPayment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreatePaymentRequest
	if !bindVoucher(c, logger, &req, &req.VoucherHeader) {
		return
	}
	voucher, err := h.voucherService.CreatePayment(c.Request.Context(), req, userID)
	h.respondCreated(c, logger, voucher, err)
}

// createTransfer godoc
// @Summary Move money between boxes
// @Description Dr destination box / Cr source box. Both boxes must share a currency.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the first voucher"
// @Param transfer body dto.CreateTransferRequest true "Transfer"
// @Success 201 {object} domain.Voucher
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/transfers [post]
func (h *voucherHandler) createTransfer(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateTransferRequest
	if !bindVoucher(c, logger, &req, &req.VoucherHeader) {
		return
	}
	voucher, err := h.voucherService.CreateTransfer(c.Request.Context(), req, userID)
	h.respondCreated(c, logger, voucher, err)
}

// createDistributedVoucher godoc
// @Summary Record a distributed receipt
// @Description Dr box total / Cr relation settlement / Cr each channel. Settlement plus distributions must equal the total within 0.01.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays return the first voucher"
// @Param voucher body dto.CreateDistributedVoucherRequest true "Distributed receipt"
// @Success 201 {object} domain.Voucher
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/distributed [post]
func (h *voucherHandler) createDistributedVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateDistributedVoucherRequest
	if !bindVoucher(c, logger, &req, &req.VoucherHeader) {
		return
	}
	voucher, err := h.voucherService.CreateDistributedVoucher(c.Request.Context(), req, userID)
	h.respondCreated(c, logger, voucher, err)
}

// listVouchers godoc
// @Summary List vouchers
// @Description Newest first. Pass nextToken from the previous page to continue.
// @Tags vouchers
// @Produce json
// @Param type query string false "Voucher type"
// @Param status query string false "POSTED or VOIDED"
// @Param relationID query string false "Relation on the header or any line"
// @Param boxID query string false "Box on any line"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param limit query int false "Limit" default(20)
// @Param nextToken query string false "Pagination token"
// @Success 200 {object} dto.ListVouchersResponse
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers [get]
func (h *voucherHandler) listVouchers(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListVouchersParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	resp, err := h.voucherService.ListVouchers(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list vouchers")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getVoucher godoc
// @Summary Get a voucher with its lines
// @Tags vouchers
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Success 200 {object} domain.Voucher
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/{voucherID} [get]
func (h *voucherHandler) getVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	voucher, err := h.voucherService.GetVoucher(c.Request.Context(), c.Param("voucherID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get voucher")
		return
	}
	c.JSON(http.StatusOK, voucher)
}

// voidVoucher godoc
// @Summary Void a voucher
// @Description The voucher stays on record but stops counting towards balances. Generated vouchers are voided through their booking, visa or subscription.
// @Tags vouchers
// @Accept json
// @Produce json
// @Param voucherID path string true "Voucher ID"
// @Param request body dto.VoidVoucherRequest true "Reason"
// @Success 200 {object} domain.Voucher
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/{voucherID}/void [post]
func (h *voucherHandler) voidVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.VoidVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	voucher, err := h.voucherService.VoidVoucher(c.Request.Context(), c.Param("voucherID"), req.Reason, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to void voucher")
		return
	}
	logger.Info("Voucher voided", slog.String("voucher_id", voucher.VoucherID))
	c.JSON(http.StatusOK, voucher)
}

// deleteVoucher godoc
// @Summary Delete a voucher
// @Description Copies the voucher to the deleted vouchers archive and removes it.
// @Tags vouchers
// @Accept json
// @Param voucherID path string true "Voucher ID"
// @Param request body dto.DeleteVoucherRequest false "Reason"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /vouchers/{voucherID} [delete]
func (h *voucherHandler) deleteVoucher(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.DeleteVoucherRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(c, logger, err)
		return
	}
	voucherID := c.Param("voucherID")
	if err := h.voucherService.DeleteVoucher(c.Request.Context(), voucherID, req.Reason, userID); err != nil {
		respondError(c, logger, err, "Failed to delete voucher")
		return
	}
	logger.Info("Voucher deleted", slog.String("voucher_id", voucherID))
	c.Status(http.StatusNoContent)
}

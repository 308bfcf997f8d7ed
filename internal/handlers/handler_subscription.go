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

// subscriptionHandler handles installment plans and their payments.
type subscriptionHandler struct {
	subscriptionService portssvc.SubscriptionSvcFacade
}

func newSubscriptionHandler(ss portssvc.SubscriptionSvcFacade) *subscriptionHandler {
	return &subscriptionHandler{subscriptionService: ss}
}

func registerSubscriptionRoutes(rg *gin.RouterGroup, subscriptionService portssvc.SubscriptionSvcFacade) {
	h := newSubscriptionHandler(subscriptionService)
	accountant := middleware.RequireRole(domain.RoleAccountant)

	subscriptions := rg.Group("/subscriptions")
	{
		subscriptions.POST("", h.createSubscription)
		subscriptions.GET("", h.listSubscriptions)
		subscriptions.GET("/:subscriptionID", h.getSubscription)
		subscriptions.GET("/:subscriptionID/profit-distribution", h.getProfitDistribution)
		subscriptions.POST("/:subscriptionID/cancel", accountant, h.cancelSubscription)
	}
	rg.POST("/installments/:installmentID/pay", accountant, h.payInstallment)
}

// createSubscription godoc
// @Summary Create a subscription
// @Description Splits the total into monthly installments; the last one absorbs rounding.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param subscription body dto.CreateSubscriptionRequest true "Subscription"
// @Success 201 {object} domain.Subscription
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /subscriptions [post]
func (h *subscriptionHandler) createSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	sub, err := h.subscriptionService.CreateSubscription(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create subscription")
		return
	}
	logger.Info("Subscription created",
		slog.String("subscription_id", sub.SubscriptionID),
		slog.Int("installments", sub.InstallmentCount))
	c.JSON(http.StatusCreated, sub)
}

// listSubscriptions godoc
// @Summary List subscriptions
// @Tags subscriptions
// @Produce json
// @Param status query string false "ACTIVE, PAID or CANCELLED"
// @Param clientID query string false "Client"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.Subscription
// @Failure 400 {object} ErrorResponse
// @Security BearerAuth
// @Router /subscriptions [get]
func (h *subscriptionHandler) listSubscriptions(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListSubscriptionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	subs, err := h.subscriptionService.ListSubscriptions(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list subscriptions")
		return
	}
	c.JSON(http.StatusOK, subs)
}

// getSubscription godoc
// @Summary Get a subscription with its installments
// @Tags subscriptions
// @Produce json
// @Param subscriptionID path string true "Subscription ID"
// @Success 200 {object} domain.Subscription
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/{subscriptionID} [get]
func (h *subscriptionHandler) getSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	sub, err := h.subscriptionService.GetSubscription(c.Request.Context(), c.Param("subscriptionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get subscription")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// getProfitDistribution godoc
// @Summary Split a subscription's profit
// @Description Profit is total minus cost, shared between the partners by percentage; the agency keeps the rest.
// @Tags subscriptions
// @Produce json
// @Param subscriptionID path string true "Subscription ID"
// @Success 200 {object} domain.ProfitDistribution
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/{subscriptionID}/profit-distribution [get]
func (h *subscriptionHandler) getProfitDistribution(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	dist, err := h.subscriptionService.GetProfitDistribution(c.Request.Context(), c.Param("subscriptionID"))
	if err != nil {
		respondError(c, logger, err, "Failed to compute profit distribution")
		return
	}
	c.JSON(http.StatusOK, dist)
}

// cancelSubscription godoc
// @Summary Cancel a subscription
// @Description Cancels every open installment.
// @Tags subscriptions
// @Produce json
// @Param subscriptionID path string true "Subscription ID"
// @Success 200 {object} domain.Subscription
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /subscriptions/{subscriptionID}/cancel [post]
func (h *subscriptionHandler) cancelSubscription(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	sub, err := h.subscriptionService.CancelSubscription(c.Request.Context(), c.Param("subscriptionID"), userID)
	if err != nil {
		respondError(c, logger, err, "Failed to cancel subscription")
		return
	}
	c.JSON(http.StatusOK, sub)
}

// payInstallment godoc
// @Summary Pay an installment
// @Description Posts an INSTALLMENT receipt (Dr box / Cr client) and marks the installment PAID.
// @Tags subscriptions
// @Accept json
// @Produce json
// @Param installmentID path string true "Installment ID"
// @Param payment body dto.PayInstallmentRequest true "Box and date"
// @Success 200 {object} dto.PayInstallmentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Already paid or cancelled"
// @Security BearerAuth
// @Router /installments/{installmentID}/pay [post]
func (h *subscriptionHandler) payInstallment(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.PayInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	installmentID := c.Param("installmentID")
	resp, err := h.subscriptionService.PayInstallment(c.Request.Context(), installmentID, req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to pay installment")
		return
	}
	logger.Info("Installment paid", slog.String("installment_id", installmentID), slog.String("voucher_id", resp.Voucher.VoucherID))
	c.JSON(http.StatusOK, resp)
}

package handlers

import (
	"net/http"
	"strconv"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

type channelHandler struct {
	channelService portssvc.ChannelSvcFacade
}

func registerChannelRoutes(rg *gin.RouterGroup, channelService portssvc.ChannelSvcFacade) {
	h := &channelHandler{channelService: channelService}
	accountant := middleware.RequireRole(domain.RoleAccountant)

	channels := rg.Group("/channels")
	{
		channels.POST("", accountant, h.createChannel)
		channels.GET("", h.listChannels)
		channels.GET("/:channelID", h.getChannel)
		channels.GET("/:channelID/balance", h.getChannelBalance)
		channels.PUT("/:channelID", accountant, h.updateChannel)
		channels.DELETE("/:channelID", accountant, h.deleteChannel)
	}
}

// createChannel godoc
// @Summary Create a distribution channel
// @Tags channels
// @Accept json
// @Produce json
// @Param channel body dto.CreateChannelRequest true "Channel details"
// @Success 201 {object} domain.DistributionChannel
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /channels [post]
func (h *channelHandler) createChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	channel, err := h.channelService.CreateChannel(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create channel")
		return
	}
	c.JSON(http.StatusCreated, channel)
}

// listChannels godoc
// @Summary List distribution channels with balances
// @Tags channels
// @Produce json
// @Param includeInactive query bool false "Include deactivated channels"
// @Success 200 {array} domain.AccountBalance
// @Security BearerAuth
// @Router /channels [get]
func (h *channelHandler) listChannels(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	balances, err := h.channelService.ListChannelBalances(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, logger, err, "Failed to list channels")
		return
	}
	c.JSON(http.StatusOK, balances)
}

// getChannel godoc
// @Summary Get a distribution channel
// @Tags channels
// @Produce json
// @Param channelID path string true "Channel ID"
// @Success 200 {object} domain.DistributionChannel
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /channels/{channelID} [get]
func (h *channelHandler) getChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	channel, err := h.channelService.GetChannel(c.Request.Context(), c.Param("channelID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get channel")
		return
	}
	c.JSON(http.StatusOK, channel)
}

// getChannelBalance godoc
// @Summary Get a distribution channel balance
// @Tags channels
// @Produce json
// @Param channelID path string true "Channel ID"
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /channels/{channelID}/balance [get]
func (h *channelHandler) getChannelBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	channelID := c.Param("channelID")
	balance, err := h.channelService.GetChannelBalance(c.Request.Context(), channelID)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate channel balance")
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{ID: channelID, Balance: balance})
}

// updateChannel godoc
// @Summary Update a distribution channel
// @Tags channels
// @Accept json
// @Produce json
// @Param channelID path string true "Channel ID"
// @Param channel body dto.UpdateChannelRequest true "Fields to update"
// @Success 200 {object} domain.DistributionChannel
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /channels/{channelID} [put]
func (h *channelHandler) updateChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.UpdateChannelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	channel, err := h.channelService.UpdateChannel(c.Request.Context(), c.Param("channelID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update channel")
		return
	}
	c.JSON(http.StatusOK, channel)
}

// deleteChannel godoc
// @Summary Delete a distribution channel
// @Tags channels
// @Param channelID path string true "Channel ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /channels/{channelID} [delete]
func (h *channelHandler) deleteChannel(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	if err := h.channelService.DeleteChannel(c.Request.Context(), c.Param("channelID"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete channel")
		return
	}
	c.Status(http.StatusNoContent)
}

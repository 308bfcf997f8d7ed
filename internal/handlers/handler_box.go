package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// boxHandler handles HTTP requests for cash boxes.
type boxHandler struct {
	boxService portssvc.BoxSvcFacade
}

func newBoxHandler(bs portssvc.BoxSvcFacade) *boxHandler {
	return &boxHandler{boxService: bs}
}

// registerBoxRoutes registers the cash box routes. Changes need ACCOUNTANT.
func registerBoxRoutes(rg *gin.RouterGroup, boxService portssvc.BoxSvcFacade) {
	h := newBoxHandler(boxService)
	accountant := middleware.RequireRole(domain.RoleAccountant)

	boxes := rg.Group("/boxes")
	{
		boxes.POST("", accountant, h.createBox)
		boxes.GET("", h.listBoxes)
		boxes.GET("/:boxID", h.getBox)
		boxes.GET("/:boxID/balance", h.getBoxBalance)
		boxes.PUT("/:boxID", accountant, h.updateBox)
		boxes.DELETE("/:boxID", accountant, h.deleteBox)
	}
}

// createBox godoc
// @Summary Create a cash box
// @Tags boxes
// @Accept json
// @Produce json
// @Param box body dto.CreateBoxRequest true "Box details"
// @Success 201 {object} domain.Box
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /boxes [post]
func (h *boxHandler) createBox(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	box, err := h.boxService.CreateBox(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create box")
		return
	}
	logger.Info("Box created", slog.String("box_id", box.BoxID))
	c.JSON(http.StatusCreated, box)
}

// listBoxes godoc
// @Summary List cash boxes with balances
// @Tags boxes
// @Produce json
// @Param includeInactive query bool false "Include deactivated boxes"
// @Success 200 {array} domain.AccountBalance
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /boxes [get]
func (h *boxHandler) listBoxes(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	includeInactive, _ := strconv.ParseBool(c.Query("includeInactive"))
	balances, err := h.boxService.ListBoxBalances(c.Request.Context(), includeInactive)
	if err != nil {
		respondError(c, logger, err, "Failed to list boxes")
		return
	}
	c.JSON(http.StatusOK, balances)
}

// getBox godoc
// @Summary Get a cash box
// @Tags boxes
// @Produce json
// @Param boxID path string true "Box ID"
// @Success 200 {object} domain.Box
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /boxes/{boxID} [get]
func (h *boxHandler) getBox(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	box, err := h.boxService.GetBox(c.Request.Context(), c.Param("boxID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get box")
		return
	}
	c.JSON(http.StatusOK, box)
}

// getBoxBalance godoc
// @Summary Get a cash box balance
// @Tags boxes
// @Produce json
// @Param boxID path string true "Box ID"
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /boxes/{boxID}/balance [get]
func (h *boxHandler) getBoxBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	boxID := c.Param("boxID")
	balance, err := h.boxService.GetBoxBalance(c.Request.Context(), boxID)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate box balance")
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{ID: boxID, Balance: balance})
}

// updateBox godoc
// @Summary Update a cash box
// @Tags boxes
// @Accept json
// @Produce json
// @Param boxID path string true "Box ID"
// @Param box body dto.UpdateBoxRequest true "Fields to update"
// @Success 200 {object} domain.Box
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /boxes/{boxID} [put]
func (h *boxHandler) updateBox(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.UpdateBoxRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}
	box, err := h.boxService.UpdateBox(c.Request.Context(), c.Param("boxID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update box")
		return
	}
	c.JSON(http.StatusOK, box)
}

// deleteBox godoc
// @Summary Delete a cash box
// @Description Refused with 409 while vouchers reference the box.
// @Tags boxes
// @Param boxID path string true "Box ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Security BearerAuth
// @Router /boxes/{boxID} [delete]
func (h *boxHandler) deleteBox(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	if err := h.boxService.DeleteBox(c.Request.Context(), c.Param("boxID"), userID); err != nil {
		respondError(c, logger, err, "Failed to delete box")
		return
	}
	c.Status(http.StatusNoContent)
}

package handlers

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	maxImportSize   = 5 << 20
)

// BalanceResponse is the derived balance of one relation, box or channel.
type BalanceResponse struct {
	ID      string          `json:"id"`
	Balance decimal.Decimal `json:"balance" swaggertype:"string" example:"1250.00"`
}

// relationHandler handles HTTP requests for clients and suppliers.
type relationHandler struct {
	relationService portssvc.RelationSvcFacade
}

func newRelationHandler(rs portssvc.RelationSvcFacade) *relationHandler {
	return &relationHandler{relationService: rs}
}

// registerRelationRoutes registers the relation routes.
func registerRelationRoutes(rg *gin.RouterGroup, relationService portssvc.RelationSvcFacade) {
	h := newRelationHandler(relationService)
	accountant := middleware.RequireRole(domain.RoleAccountant)

	relations := rg.Group("/relations")
	{
		relations.POST("", h.createRelation)
		relations.GET("", h.listRelations)
		relations.GET("/export", h.exportRelations)
		relations.POST("/import", accountant, h.importRelations)
		relations.GET("/:relationID", h.getRelation)
		relations.GET("/:relationID/balance", h.getRelationBalance)
		relations.PUT("/:relationID", h.updateRelation)
		relations.POST("/:relationID/deactivate", accountant, h.deactivateRelation)
		relations.DELETE("/:relationID", accountant, h.deleteRelation)
	}
}

// createRelation godoc
// @Summary Create a client or supplier
// @Tags relations
// @Accept json
// @Produce json
// @Param relation body dto.CreateRelationRequest true "Relation details"
// @Success 201 {object} domain.Relation
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Code already used"
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations [post]
func (h *relationHandler) createRelation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.CreateRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	relation, err := h.relationService.CreateRelation(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to create relation")
		return
	}
	logger.Info("Relation created", slog.String("relation_id", relation.RelationID))
	c.JSON(http.StatusCreated, relation)
}

// listRelations godoc
// @Summary List clients and suppliers
// @Tags relations
// @Produce json
// @Param kind query string false "CLIENT, SUPPLIER or BOTH"
// @Param search query string false "Matches name, code, phone or email"
// @Param includeInactive query bool false "Include deactivated relations"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {object} dto.ListRelationsResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations [get]
func (h *relationHandler) listRelations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListRelationsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}

	resp, err := h.relationService.ListRelations(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list relations")
		return
	}
	c.JSON(http.StatusOK, resp)
}

// getRelation godoc
// @Summary Get a relation
// @Tags relations
// @Produce json
// @Param relationID path string true "Relation ID"
// @Success 200 {object} domain.Relation
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations/{relationID} [get]
func (h *relationHandler) getRelation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	relation, err := h.relationService.GetRelation(c.Request.Context(), c.Param("relationID"))
	if err != nil {
		respondError(c, logger, err, "Failed to get relation")
		return
	}
	c.JSON(http.StatusOK, relation)
}

// getRelationBalance godoc
// @Summary Get a relation's balance
// @Description Opening balance plus posted debits minus posted credits. Positive means the relation owes the agency.
// @Tags relations
// @Produce json
// @Param relationID path string true "Relation ID"
// @Success 200 {object} BalanceResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations/{relationID}/balance [get]
func (h *relationHandler) getRelationBalance(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	relationID := c.Param("relationID")
	balance, err := h.relationService.GetRelationBalance(c.Request.Context(), relationID)
	if err != nil {
		respondError(c, logger, err, "Failed to calculate relation balance")
		return
	}
	c.JSON(http.StatusOK, BalanceResponse{ID: relationID, Balance: balance})
}

// updateRelation godoc
// @Summary Update a relation
// @Description The currency cannot change once vouchers exist.
// @Tags relations
// @Accept json
// @Produce json
// @Param relationID path string true "Relation ID"
// @Param relation body dto.UpdateRelationRequest true "Fields to update"
// @Success 200 {object} domain.Relation
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations/{relationID} [put]
func (h *relationHandler) updateRelation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	var req dto.UpdateRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, logger, err)
		return
	}

	relation, err := h.relationService.UpdateRelation(c.Request.Context(), c.Param("relationID"), req, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to update relation")
		return
	}
	c.JSON(http.StatusOK, relation)
}

// deactivateRelation godoc
// @Summary Deactivate a relation
// @Tags relations
// @Param relationID path string true "Relation ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations/{relationID}/deactivate [post]
func (h *relationHandler) deactivateRelation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	if err := h.relationService.DeactivateRelation(c.Request.Context(), c.Param("relationID"), userID); err != nil {
		respondError(c, logger, err, "Failed to deactivate relation")
		return
	}
	c.Status(http.StatusNoContent)
}

// deleteRelation godoc
// @Summary Delete a relation
// @Description Hard delete, refused with 409 while any voucher references the relation.
// @Tags relations
// @Param relationID path string true "Relation ID"
// @Success 204
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations/{relationID} [delete]
func (h *relationHandler) deleteRelation(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	relationID := c.Param("relationID")
	if err := h.relationService.DeleteRelation(c.Request.Context(), relationID, userID); err != nil {
		respondError(c, logger, err, "Failed to delete relation")
		return
	}
	logger.Info("Relation deleted", slog.String("relation_id", relationID))
	c.Status(http.StatusNoContent)
}

// importRelations godoc
// @Summary Import relations from a spreadsheet
// @Description Accepts xlsx or csv with the header name, kind, phone, email, currency, opening_balance. Valid rows are inserted and invalid rows reported.
// @Tags relations
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "xlsx or csv file"
// @Success 200 {object} dto.ImportResult
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations/import [post]
func (h *relationHandler) importRelations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	userID, ok := requireUserID(c, logger)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, logger, err)
		return
	}
	if fileHeader.Size > maxImportSize {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: fmt.Sprintf("File exceeds %d MiB", maxImportSize>>20)})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		badRequest(c, logger, err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxImportSize))
	if err != nil {
		badRequest(c, logger, err)
		return
	}

	result, err := h.relationService.ImportRelations(c.Request.Context(), fileHeader.Filename, data, userID)
	if err != nil {
		respondError(c, logger, err, "Failed to import relations")
		return
	}
	logger.Info("Relations imported",
		slog.String("file", fileHeader.Filename),
		slog.Int("imported", result.Imported),
		slog.Int("rejected", len(result.Errors)))
	c.JSON(http.StatusOK, result)
}

// exportRelations godoc
// @Summary Export relations with balances
// @Tags relations
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} file
// @Failure 500 {object} ErrorResponse
// @Security BearerAuth
// @Router /relations/export [get]
func (h *relationHandler) exportRelations(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	data, err := h.relationService.ExportRelations(c.Request.Context())
	if err != nil {
		respondError(c, logger, err, "Failed to export relations")
		return
	}
	sendSpreadsheet(c, fmt.Sprintf("relations-%s.xlsx", time.Now().UTC().Format("20060102")), data)
}

func sendSpreadsheet(c *gin.Context, filename string, data []byte) {
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, xlsxContentType, data)
}

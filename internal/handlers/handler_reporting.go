package handlers

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to statements and the dashboard
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	reportingGroup := rg.Group("/reports")
	{
		reportingGroup.GET("/statement", h.getStatement)
		reportingGroup.GET("/statement/export", h.exportStatement)
		reportingGroup.GET("/dashboard", middleware.RequireRole(domain.RoleAccountant), h.getDashboard)
	}
}

// getStatement godoc
// @Summary Account statement
// @Description Opening balance, every line touching the account in the range with a running balance, and the closing balance.
// @Tags reports
// @Produce json
// @Param kind query string true "RELATION, BOX or CHANNEL"
// @Param id query string true "Account ID"
// @Param from query string true "From (YYYY-MM-DD)"
// @Param to query string true "To (YYYY-MM-DD)"
// @Success 200 {object} domain.AccountStatement
// @Failure 400 {object} ErrorResponse "Invalid input"
// @Failure 404 {object} ErrorResponse "Account not found"
// @Failure 500 {object} ErrorResponse "Failed to generate report"
// @Security BearerAuth
// @Router /reports/statement [get]
func (h *reportingHandler) getStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid statement query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query: " + err.Error()})
		return
	}

	logger = logger.With(
		slog.String("kind", string(params.Kind)),
		slog.String("account_id", params.ID),
		slog.Time("from", params.From),
		slog.Time("to", params.To),
	)
	logger.Debug("Generating account statement")

	statement, err := h.reportingService.AccountStatement(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to generate statement")
		return
	}
	c.JSON(http.StatusOK, statement)
}

// exportStatement godoc
// @Summary Export an account statement
// @Description Same data as the statement, rendered as an xlsx workbook.
// @Tags reports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param kind query string true "RELATION, BOX or CHANNEL"
// @Param id query string true "Account ID"
// @Param from query string true "From (YYYY-MM-DD)"
// @Param to query string true "To (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/statement/export [get]
func (h *reportingHandler) exportStatement(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.StatementParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid statement query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query: " + err.Error()})
		return
	}
	data, err := h.reportingService.ExportStatement(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to export statement")
		return
	}
	filename := fmt.Sprintf("statement-%s-%s-%s.xlsx", params.ID, params.From.Format("20060102"), params.To.Format("20060102"))
	sendSpreadsheet(c, filename, data)
}

// getDashboard godoc
// @Summary Dashboard
// @Description Totals for the range: sales, costs, profit, cash on hand per box, receivables, payables and overdue installments.
// @Tags reports
// @Produce json
// @Param from query string true "From (YYYY-MM-DD)"
// @Param to query string true "To (YYYY-MM-DD)"
// @Param currency query string false "Only amounts in this currency"
// @Success 200 {object} domain.Dashboard
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /reports/dashboard [get]
func (h *reportingHandler) getDashboard(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.DashboardParams
	if err := c.ShouldBindQuery(&params); err != nil {
		logger.Warn("Invalid dashboard query", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid query: " + err.Error()})
		return
	}
	if params.To.Before(params.From) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "'to' must not be before 'from'"})
		return
	}
	dashboard, err := h.reportingService.Dashboard(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to build dashboard")
		return
	}
	c.JSON(http.StatusOK, dashboard)
}

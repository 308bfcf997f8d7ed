package handlers

import (
	"net/http"

	"github.com/SscSPs/travel_backoffice/internal/core/domain"
	portssvc "github.com/SscSPs/travel_backoffice/internal/core/ports/services"
	"github.com/SscSPs/travel_backoffice/internal/dto"
	"github.com/SscSPs/travel_backoffice/internal/middleware"
	"github.com/gin-gonic/gin"
)

func registerAuditRoutes(rg *gin.RouterGroup, auditService portssvc.AuditSvc) {
	rg.GET("/audit-logs", middleware.RequireRole(domain.RoleAccountant), func(c *gin.Context) {
		listAuditLogs(c, auditService)
	})
}

// listAuditLogs godoc
// @Summary List audit entries of an entity
// @Tags audit
// @Produce json
// @Param entityType query string true "voucher, booking, visa, subscription, segment, relation, ..."
// @Param entityID query string true "Entity ID"
// @Param limit query int false "Limit" default(50)
// @Param offset query int false "Offset" default(0)
// @Success 200 {array} domain.AuditLog
// @Failure 400 {object} ErrorResponse
// @Failure 403 {object} ErrorResponse
// @Security BearerAuth
// @Router /audit-logs [get]
func listAuditLogs(c *gin.Context, auditService portssvc.AuditSvc) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var params dto.ListAuditLogsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		badRequest(c, logger, err)
		return
	}
	logs, err := auditService.ListAuditLogs(c.Request.Context(), params)
	if err != nil {
		respondError(c, logger, err, "Failed to list audit logs")
		return
	}
	c.JSON(http.StatusOK, logs)
}

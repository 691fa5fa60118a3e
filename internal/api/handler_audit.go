package api

import (
	"strconv"

	"inkwell/cms/internal/api/response"
	"inkwell/cms/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AuditHandler exposes read-only views over the audit trail. All routes
// sit behind admin-only middleware; there is no write surface because
// entries are only produced internally.
type AuditHandler struct {
	app *App
}

// NewAuditHandler creates the audit handler.
func NewAuditHandler(app *App) *AuditHandler {
	return &AuditHandler{app: app}
}

func auditLimit(c *gin.Context) int {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}
	return limit
}

// Recent returns the newest entries across all actors.
func (h *AuditHandler) Recent(c *gin.Context) {
	entries, err := h.app.Audit.ListRecent(auditLimit(c))
	if err != nil {
		logger.Error("failed to list audit entries", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, entries)
}

// ForUser returns the newest entries recorded for one actor.
func (h *AuditHandler) ForUser(c *gin.Context) {
	entries, err := h.app.Audit.ListForUser(c.Param("id"))
	if err != nil {
		logger.Error("failed to list audit entries", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, entries)
}

// ForResource returns the newest entries touching one resource.
func (h *AuditHandler) ForResource(c *gin.Context) {
	entries, err := h.app.Audit.ListForResource(c.Param("type"), c.Param("id"))
	if err != nil {
		logger.Error("failed to list audit entries", zap.Error(err))
		response.InternalError(c, "Database error")
		return
	}
	response.Success(c, entries)
}

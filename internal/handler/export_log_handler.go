package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ricoeriii/pengelola-bansos/internal/service"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/response"
)

const maxExportLogLimit = 100

// ExportLogHandler exposes the export audit trail.
type ExportLogHandler struct {
	logs *service.ExportLogService
}

// NewExportLogHandler constructs the handler.
func NewExportLogHandler(logs *service.ExportLogService) *ExportLogHandler {
	return &ExportLogHandler{logs: logs}
}

// Recent godoc
// @Summary Recent exports
// @Tags Reports
// @Produce json
// @Param limit query int false "Maximum records (default 20, max 100)"
// @Success 200 {object} response.Envelope
// @Router /export-logs [get]
func (h *ExportLogHandler) Recent(c *gin.Context) {
	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "limit must be a positive integer"))
			return
		}
		limit = n
	}
	if limit > maxExportLogLimit {
		limit = maxExportLogLimit
	}

	logs, err := h.logs.Recent(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, logs, map[string]interface{}{"limit": limit})
}

package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ricoeriii/pengelola-bansos/internal/dto"
	"github.com/ricoeriii/pengelola-bansos/internal/models"
	"github.com/ricoeriii/pengelola-bansos/internal/service"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/middleware/session"
	"github.com/ricoeriii/pengelola-bansos/pkg/response"
)

// ReportTableHandler serves the report table screen: listing, export and delete.
type ReportTableHandler struct {
	tables        *service.TableRegistry
	exports       *service.ExportService
	notifications *service.NotificationService
	proofURL      func(string) string
	logger        *zap.Logger
}

// NewReportTableHandler constructs the handler.
func NewReportTableHandler(tables *service.TableRegistry, exports *service.ExportService, notifications *service.NotificationService, proofURL func(string) string, logger *zap.Logger) *ReportTableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportTableHandler{tables: tables, exports: exports, notifications: notifications, proofURL: proofURL, logger: logger}
}

// List godoc
// @Summary Mount the report table
// @Tags Reports
// @Produce json
// @Param search query string false "Case-insensitive search on program or region"
// @Param program query string false "Exact program name"
// @Param region query string false "Exact region"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /reports [get]
func (h *ReportTableHandler) List(c *gin.Context) {
	table := h.tables.Acquire(session.Value(c))
	if err := table.Mount(c.Request.Context()); err != nil {
		response.Error(c, err, notify(c, h.notifications, models.Failure(models.MsgListFailed)))
		return
	}
	table.SetFilter(filterFromQuery(c))
	response.JSON(c, http.StatusOK, h.view(table))
}

// Export godoc
// @Summary Export the filtered reports
// @Tags Reports
// @Produce octet-stream
// @Param format query string true "csv, xlsx or pdf"
// @Param search query string false "Search applied before export"
// @Param program query string false "Program applied before export"
// @Param region query string false "Region applied before export"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /reports/export [get]
func (h *ReportTableHandler) Export(c *gin.Context) {
	format, err := service.ParseExportFormat(c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}

	sid := session.Value(c)
	table := h.tables.Acquire(sid)
	if !table.Mounted() {
		if err := table.Mount(c.Request.Context()); err != nil {
			response.Error(c, err, notify(c, h.notifications, models.Failure(models.MsgListFailed)))
			return
		}
	}
	if hasFilterQuery(c) {
		table.SetFilter(filterFromQuery(c))
	}

	snapshot := table.Snapshot()
	artifact, err := h.exports.Export(c.Request.Context(), snapshot.Rows, format, service.ExportContext{Filter: snapshot.Filter, SessionID: sid})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Export-Rows", strconv.Itoa(artifact.Rows))
	response.Attachment(c, artifact.Filename, artifact.ContentType, artifact.Content)
}

// Delete godoc
// @Summary Delete a report
// @Tags Reports
// @Produce json
// @Param id path int true "Report ID"
// @Param confirm query bool false "Operator confirmation"
// @Success 200 {object} response.Envelope
// @Failure 428 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /reports/{id} [delete]
func (h *ReportTableHandler) Delete(c *gin.Context) {
	id, err := reportID(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	table := h.tables.Acquire(session.Value(c))
	result, err := table.Delete(c.Request.Context(), id, queryConfirmer(c))
	if err != nil {
		if errors.Is(err, appErrors.ErrConfirmationRequired) {
			response.Error(c, err, map[string]interface{}{"prompt": models.MsgConfirmDelete})
			return
		}
		response.Error(c, err, notify(c, h.notifications, result.Notification))
		return
	}

	meta := notify(c, h.notifications, result.Notification)
	response.JSON(c, http.StatusOK, gin.H{"result": result, "table": h.view(table)}, meta)
}

func (h *ReportTableHandler) view(table *service.ReportTable) dto.ReportTableView {
	snapshot := table.Snapshot()
	return dto.NewReportTableView(snapshot.Rows, snapshot.Options, snapshot.Filter, len(snapshot.Reports), h.proofURL)
}

// queryConfirmer answers from the confirm query parameter. A missing answer
// asks the client to prompt the operator and retry.
func queryConfirmer(c *gin.Context) service.Confirmer {
	return service.ConfirmFunc(func(context.Context, string) (bool, error) {
		raw, ok := c.GetQuery("confirm")
		if !ok || raw == "" {
			return false, appErrors.Clone(appErrors.ErrConfirmationRequired, models.MsgConfirmDelete)
		}
		answer, err := strconv.ParseBool(raw)
		if err != nil {
			return false, appErrors.Clone(appErrors.ErrValidation, "confirm must be true or false")
		}
		return answer, nil
	})
}

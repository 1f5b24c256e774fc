package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ricoeriii/pengelola-bansos/internal/service"
	"github.com/ricoeriii/pengelola-bansos/pkg/response"
)

// DashboardHandler serves the landing dashboard.
type DashboardHandler struct {
	dashboard     *service.DashboardService
	forms         *service.ReportFormService
	notifications *service.NotificationService
}

// NewDashboardHandler constructs the handler.
func NewDashboardHandler(dashboard *service.DashboardService, forms *service.ReportFormService, notifications *service.NotificationService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, forms: forms, notifications: notifications}
}

// Dashboard godoc
// @Summary Dashboard summary cards
// @Tags Dashboard
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	result := h.dashboard.View(c.Request.Context())
	var meta map[string]interface{}
	if result.Notification != nil {
		meta = notify(c, h.notifications, *result.Notification)
	}
	response.JSON(c, http.StatusOK, result.View, meta)
}

// Programs godoc
// @Summary Program options for the report form
// @Tags Reports
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *DashboardHandler) Programs(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.forms.Programs())
}

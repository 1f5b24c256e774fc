package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ricoeriii/pengelola-bansos/internal/service"
	"github.com/ricoeriii/pengelola-bansos/pkg/middleware/session"
	"github.com/ricoeriii/pengelola-bansos/pkg/response"
)

// NotificationHandler lets the console poll pending notifications.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler constructs the handler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// Drain godoc
// @Summary Pending notifications for the session
// @Tags Notifications
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /notifications [get]
func (h *NotificationHandler) Drain(c *gin.Context) {
	items, err := h.notifications.Drain(c.Request.Context(), session.Value(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items)
}

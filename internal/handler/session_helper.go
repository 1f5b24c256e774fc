package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ricoeriii/pengelola-bansos/internal/models"
	"github.com/ricoeriii/pengelola-bansos/internal/service"
	appErrors "github.com/ricoeriii/pengelola-bansos/pkg/errors"
	"github.com/ricoeriii/pengelola-bansos/pkg/middleware/session"
)

const metaNotification = "notification"

// notify publishes n for the request's session and returns response meta carrying it.
func notify(c *gin.Context, notifications *service.NotificationService, n models.Notification) map[string]interface{} {
	notifications.Publish(c.Request.Context(), session.Value(c), n)
	return map[string]interface{}{metaNotification: n}
}

func filterFromQuery(c *gin.Context) models.FilterState {
	f := models.FilterState{Search: c.Query("search")}
	if v := c.Query("program"); v != "" {
		f.Program = &v
	}
	if v := c.Query("region"); v != "" {
		f.Region = &v
	}
	return f
}

func hasFilterQuery(c *gin.Context) bool {
	q := c.Request.URL.Query()
	return q.Has("search") || q.Has("program") || q.Has("region")
}

func reportID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid report id")
	}
	return id, nil
}

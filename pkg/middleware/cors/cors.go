package cors

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ricoeriii/pengelola-bansos/pkg/middleware/requestid"
	"github.com/ricoeriii/pengelola-bansos/pkg/middleware/session"
)

var (
	allowHeaders  = strings.Join([]string{"Content-Type", "X-Requested-With", requestid.HeaderKey, session.HeaderKey}, ", ")
	exposeHeaders = strings.Join([]string{"Content-Disposition", "X-Export-Rows", requestid.HeaderKey, session.HeaderKey}, ", ")
	allowMethods  = strings.Join([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}, ", ")
)

// New returns a CORS middleware for the console front end. An empty list allows any
// origin but then withholds credentials, so the session cookie only travels to listed origins.
func New(allowedOrigins []string) gin.HandlerFunc {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if origin = strings.TrimRight(strings.TrimSpace(origin), "/"); origin != "" {
			origins[origin] = struct{}{}
		}
	}
	allowAll := len(origins) == 0

	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Add("Vary", "Origin")

		origin := strings.TrimRight(c.GetHeader("Origin"), "/")
		switch {
		case allowAll:
			h.Set("Access-Control-Allow-Origin", "*")
		case origin != "":
			if _, ok := origins[origin]; ok {
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Credentials", "true")
			}
		}
		h.Set("Access-Control-Allow-Headers", allowHeaders)
		h.Set("Access-Control-Allow-Methods", allowMethods)
		h.Set("Access-Control-Expose-Headers", exposeHeaders)
		h.Set("Access-Control-Max-Age", "600")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

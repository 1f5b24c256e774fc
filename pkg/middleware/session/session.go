package session

import (
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CookieName carries the console session between requests.
	CookieName = "laporan_session"
	// HeaderKey lets non-browser clients pass the session explicitly.
	HeaderKey = "X-Session-ID"

	contextKey = "session_id"
)

var validID = regexp.MustCompile(`^[A-Za-z0-9-]{8,64}$`)

// Middleware resolves the session id from the header or cookie, issuing a new
// one when neither carries a valid id.
func Middleware(ttl time.Duration, secure bool) gin.HandlerFunc {
	maxAge := int(ttl / time.Second)
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderKey)
		if !validID.MatchString(id) {
			id = ""
			if cookie, err := c.Cookie(CookieName); err == nil && validID.MatchString(cookie) {
				id = cookie
			}
		}
		if id == "" {
			id = uuid.NewString()
		}

		c.Set(contextKey, id)
		c.Writer.Header().Set(HeaderKey, id)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CookieName, id, maxAge, "/", "", secure, true)

		c.Next()
	}
}

// Value returns the session id stored in the Gin context.
func Value(c *gin.Context) string {
	if v, exists := c.Get(contextKey); exists {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

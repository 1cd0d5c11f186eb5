package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// CartSessionHeader carries the cart session for API clients.
	CartSessionHeader = "X-Cart-Session"
	// CartSessionCookie carries the cart session for browsers.
	CartSessionCookie = "cart_session"
	// CartSessionKey is the gin context key of the resolved session.
	CartSessionKey = "cart_session"
)

// SessionMiddleware resolves the cart session from the header or cookie and
// mints a new one when neither holds a valid uuid. The session is echoed in
// both so either kind of client can keep it.
func SessionMiddleware(maxAge int, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := c.GetHeader(CartSessionHeader)
		if session == "" {
			session, _ = c.Cookie(CartSessionCookie)
		}
		if _, err := uuid.Parse(session); err != nil {
			session = uuid.New().String()
		}

		c.Set(CartSessionKey, session)
		c.Header(CartSessionHeader, session)
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(CartSessionCookie, session, maxAge, "/", "", secure, true)
		c.Next()
	}
}

// GetCartSession returns the cart session of the request.
func GetCartSession(c *gin.Context) string {
	return c.GetString(CartSessionKey)
}

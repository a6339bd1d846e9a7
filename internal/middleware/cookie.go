package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCookie configures the HttpOnly cookie that carries the session token.
type SessionCookie struct {
	Name   string
	Secure bool
}

// Set stores token in the cookie for maxAge seconds.
func (s SessionCookie) Set(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, token, maxAge, "/", "", s.Secure, true)
}

// Clear expires the cookie.
func (s SessionCookie) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.Name, "", -1, "/", "", s.Secure, true)
}

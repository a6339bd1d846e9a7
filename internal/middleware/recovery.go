// Package middleware provides HTTP middleware functions.
package middleware

import (
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/apperr"
	"github.com/festy23/ctf_platform/internal/response"
)

// Recovery returns a middleware that recovers from panics and logs them.
// The client only sees the generic server error envelope.
func Recovery(logger *zap.SugaredLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Errorw("panic recovered",
					"error", err,
					"path", c.Request.URL.Path,
					"method", c.Request.Method,
					"client_ip", c.ClientIP(),
					"request_id", c.GetString(RequestIDKey),
					"stack", string(debug.Stack()),
				)

				c.AbortWithStatusJSON(apperr.ErrServer.Status, response.Envelope{
					Errno:  apperr.ErrServer.Errno,
					Errmsg: apperr.ErrServer.Message,
				})
			}
		}()

		c.Next()
	}
}

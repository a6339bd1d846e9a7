// Package response renders the JSON envelope returned by every endpoint.
package response

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	"github.com/festy23/ctf_platform/internal/apperr"
)

// Envelope is the body of every API response.
type Envelope struct {
	Errno  apperr.Errno `json:"errno"`
	Errmsg string       `json:"errmsg"`
	Data   interface{}  `json:"data,omitempty"`
}

// OK writes a successful response with optional data.
func OK(c *gin.Context, data interface{}) {
	OKMessage(c, "OK", data)
}

// OKMessage writes a successful response with a custom message.
func OKMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Errno: apperr.OK, Errmsg: message, Data: data})
}

// Error writes err as an envelope. Unclassified errors are logged and
// reported as a generic database error.
func Error(c *gin.Context, logger *zap.SugaredLogger, err error) {
	appErr, ok := apperr.As(err)
	if !ok {
		if logger != nil {
			logger.Errorw("unhandled error",
				"path", c.Request.URL.Path,
				"method", c.Request.Method,
				"error", err,
			)
		}
		appErr = apperr.ErrInternal
	} else if appErr.Kind == apperr.KindPersistence || appErr.Kind == apperr.KindExternal {
		if logger != nil {
			logger.Warnw("request failed", "path", c.Request.URL.Path, "errno", appErr.Errno, "error", err)
		}
	}

	c.AbortWithStatusJSON(appErr.Status, Envelope{Errno: appErr.Errno, Errmsg: appErr.Message})
}

// Param writes a parameter error with a specific message.
func Param(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, Envelope{Errno: apperr.ParamErr, Errmsg: message})
}

type actionRequest struct {
	Action string `json:"action" binding:"required"`
}

// BindAction reads the "action" selector of a JSON body and keeps the body
// available for a second ShouldBindBodyWith. It writes the parameter error
// itself and reports false when the selector is missing.
func BindAction(c *gin.Context) (string, bool) {
	var req actionRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		Param(c, "action is required")
		return "", false
	}
	return req.Action, true
}

// BindBody binds the JSON body after BindAction. It writes the parameter
// error itself and reports false on failure.
func BindBody(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindBodyWith(obj, binding.JSON); err != nil {
		Param(c, "invalid parameters")
		return false
	}
	return true
}

// ParamID parses a positive integer path parameter. It writes the parameter
// error itself and reports false when the value is not a valid id.
func ParamID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		Param(c, name+" must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

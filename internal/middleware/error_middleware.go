package middleware

import (
	"net/http"

	"memora/internal/services"
	"memora/internal/transport/httpdto"
	"memora/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrorHandler logs errors attached with c.Error and renders the envelope
// when the handler has not written a response itself.
func ErrorHandler(l *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		if l == nil {
			l = logger.GetGlobalLogger()
		}

		err := c.Errors.Last().Err
		status := services.HTTPStatus(err)
		fields := []zap.Field{zap.String("path", c.FullPath()), zap.Int("status", status), zap.Error(err)}
		if status >= http.StatusInternalServerError {
			l.ErrorCtx(c.Request.Context(), "request error", fields...)
		} else {
			l.InfoCtx(c.Request.Context(), "request rejected", fields...)
		}

		if !c.Writer.Written() {
			c.JSON(status, httpdto.NewErrorResponse(services.PublicMessage(err), services.ErrorCode(err)))
		}
	}
}

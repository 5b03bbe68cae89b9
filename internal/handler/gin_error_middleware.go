package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CustomErrorMiddleware logs errors collected in c.Errors and renders the 404
// page for unmatched routes.
func CustomErrorMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 {
			for _, ginErr := range c.Errors {
				logger.Error("Handler error",
					zap.Error(ginErr.Err),
					zap.Any("meta", ginErr.Meta),
					zap.Int("type", int(ginErr.Type)),
					zap.String("path", c.Request.URL.Path),
					zap.String("method", c.Request.Method),
				)
			}
			if !c.Writer.Written() {
				c.String(http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
			}
			return
		}

		status := c.Writer.Status()
		if status == http.StatusNotFound && !c.Writer.Written() {
			c.HTML(http.StatusNotFound, "404.html", gin.H{})
			return
		}

		if status >= http.StatusInternalServerError {
			logger.Warn("Request resulted in server error status",
				zap.Int("status", status),
				zap.String("path", c.Request.URL.Path),
				zap.String("method", c.Request.Method),
			)
		}
	}
}

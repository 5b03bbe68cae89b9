package handler

import (
	"net/http"
	"time"

	ratelimit "github.com/JGLTechnologies/gin-rate-limit"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewLoginRateLimiter limits login posts per client IP using store.
func NewLoginRateLimiter(store ratelimit.Store, logger *zap.Logger) gin.HandlerFunc {
	log := logger.Named("LoginRateLimiter")
	return ratelimit.RateLimiter(store, &ratelimit.Options{
		ErrorHandler: func(c *gin.Context, info ratelimit.Info) {
			log.Warn("Rate limit exceeded",
				zap.String("clientIP", c.ClientIP()),
				zap.Time("resetTime", info.ResetTime),
				zap.String("path", c.Request.URL.Path),
			)
			loginAttemptsTotal.WithLabelValues("rate_limited").Inc()
			c.String(http.StatusTooManyRequests, "Too many login attempts. Try again in "+time.Until(info.ResetTime).Round(time.Second).String())
		},
		KeyFunc: func(c *gin.Context) string {
			return c.ClientIP()
		},
	})
}

package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/pkg/logger"
	"go.uber.org/zap"
)

// LoggingMiddleware writes one access log line per request.
func LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()

		entry := logger.InfoWithContext(c.Request.Context(), "Request completed")
		switch {
		case status >= http.StatusInternalServerError:
			entry = logger.ErrorWithContext(c.Request.Context(), "Server error")
		case status >= http.StatusBadRequest:
			entry = logger.WarnWithContext(c.Request.Context(), "Client error")
		case latency > 2*time.Second:
			entry = logger.WarnWithContext(c.Request.Context(), "Slow request")
		}

		entry.
			Method(c.Request.Method).
			Path(route).
			StatusCode(status).
			String("query", c.Request.URL.RawQuery).
			Int("response_size", c.Writer.Size()).
			Duration(latency).
			Log()
	}
}

// RecoveryMiddleware turns a panic into a generic 500.
func RecoveryMiddleware() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		logger.LogPanic(recovered,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
		)
		c.AbortWithStatusJSON(http.StatusInternalServerError,
			constants.BuildErrorResponse(constants.MsgInternalError, nil))
	})
}

// SecurityLoggingMiddleware records denied requests and scanner traffic.
func SecurityLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userAgent := c.Request.UserAgent()
		if isSuspiciousUserAgent(userAgent) {
			logger.GetLogger().Warn("Suspicious user agent detected",
				zap.String("client_ip", c.ClientIP()),
				zap.String("user_agent", userAgent),
				zap.String("path", c.Request.URL.Path),
			)
		}

		c.Next()

		switch status := c.Writer.Status(); status {
		case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
			logger.GetLogger().Warn("Security event",
				zap.Int("status_code", status),
				zap.String("client_ip", c.ClientIP()),
				zap.String("method", c.Request.Method),
				zap.String("path", c.Request.URL.Path),
				zap.String("user_agent", userAgent),
			)
		}
	}
}

func isSuspiciousUserAgent(userAgent string) bool {
	ua := strings.ToLower(userAgent)
	for _, pattern := range []string{"sqlmap", "nikto", "nmap", "masscan", "burp"} {
		if strings.Contains(ua, pattern) {
			return true
		}
	}
	return false
}

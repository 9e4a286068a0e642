package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/promptmaster/api/internal/constants"
	ctxutil "github.com/promptmaster/api/pkg/context"
	"github.com/promptmaster/api/pkg/logger"
)

// RequestContextMiddleware seeds the request context with the values the
// context logger reads. An incoming X-Request-ID is kept.
func RequestContextMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(constants.HeaderXRequestID)
		if requestID == "" || len(requestID) > 128 {
			requestID = uuid.NewString()
		}

		ctx := c.Request.Context()
		ctx = ctxutil.WithValue(ctx, ctxutil.RequestIDKey, requestID)
		ctx = ctxutil.WithValue(ctx, ctxutil.ClientIPKey, c.ClientIP())
		ctx = ctxutil.WithValue(ctx, ctxutil.UserAgentKey, c.Request.UserAgent())
		ctx = ctxutil.WithValue(ctx, ctxutil.StartTimeKey, time.Now())

		c.Request = c.Request.WithContext(ctx)
		c.Header(constants.HeaderXRequestID, requestID)

		c.Next()
	}
}

// RequestTimeoutMiddleware bounds the request context. Handlers that pass
// the context down see the deadline in their store calls.
func RequestTimeoutMiddleware(timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if ctx.Err() == context.DeadlineExceeded && !c.Writer.Written() {
			logger.WarnWithContext(ctx, "Request timed out").
				Method(c.Request.Method).
				Path(c.Request.URL.Path).
				Log()
			c.AbortWithStatusJSON(http.StatusGatewayTimeout,
				constants.BuildErrorResponse(constants.MsgTimeout, timeout.String()))
		}
	}
}

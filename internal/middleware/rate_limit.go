package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/pkg/logger"
	"go.uber.org/zap"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter time.Duration
}

type window struct {
	count   int
	resetAt time.Time
}

// FixedWindowLimiter counts requests per key in non-overlapping windows.
// Counters live in process memory; expired windows are swept on each call.
type FixedWindowLimiter struct {
	name    string
	limit   int
	period  time.Duration
	now     func() time.Time
	mu      sync.Mutex
	windows map[string]*window
}

func NewFixedWindowLimiter(name string, limit int, period time.Duration, now func() time.Time) *FixedWindowLimiter {
	if now == nil {
		now = time.Now
	}
	return &FixedWindowLimiter{
		name:    name,
		limit:   limit,
		period:  period,
		now:     now,
		windows: make(map[string]*window),
	}
}

func (l *FixedWindowLimiter) Name() string { return l.name }

// Check counts one request for key.
func (l *FixedWindowLimiter) Check(key string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	w, ok := l.windows[key]
	if !ok {
		w = &window{resetAt: now.Add(l.period)}
		l.windows[key] = w
	}
	w.count++

	d := Decision{
		Allowed:   w.count <= l.limit,
		Limit:     l.limit,
		Remaining: l.limit - w.count,
		ResetAt:   w.resetAt,
	}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	if !d.Allowed {
		d.RetryAfter = w.resetAt.Sub(now)
	}
	return d
}

func (l *FixedWindowLimiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if !now.Before(w.resetAt) {
			delete(l.windows, key)
		}
	}
}

// Size reports how many keys currently hold a window.
func (l *FixedWindowLimiter) Size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.windows)
}

// retryAfterSeconds rounds up to whole seconds, never below one.
func retryAfterSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}

// RateLimit applies limiter per client IP and route.
func RateLimit(limiter *FixedWindowLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		key := c.ClientIP() + ":" + route

		d := limiter.Check(key)
		c.Header(constants.HeaderRateLimitLimit, strconv.Itoa(d.Limit))
		c.Header(constants.HeaderRateLimitRemaining, strconv.Itoa(d.Remaining))
		c.Header(constants.HeaderRateLimitReset, strconv.FormatInt(d.ResetAt.Unix(), 10))

		if !d.Allowed {
			retryAfter := retryAfterSeconds(d.RetryAfter)
			logger.GetLogger().Warn("Rate limit exceeded",
				zap.String("limiter", limiter.Name()),
				zap.String("client_ip", c.ClientIP()),
				zap.String("method", c.Request.Method),
				zap.String("path", route),
				zap.Int("max_requests", d.Limit),
				zap.Int("retry_after", retryAfter),
			)

			c.Header(constants.HeaderRetryAfter, strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				constants.ResponseFieldMessage: constants.MsgTooManyRequests,
				"retryAfter":                   retryAfter,
			})
			return
		}

		c.Next()
	}
}

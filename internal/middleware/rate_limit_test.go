package middleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/promptmaster/api/internal/constants"
	"github.com/promptmaster/api/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func TestFixedWindowLimiter_Check(t *testing.T) {
	clock := testutil.NewClock(testStart)
	limiter := NewFixedWindowLimiter("auth", 5, 15*time.Minute, clock.Now)

	for i := 1; i <= 5; i++ {
		d := limiter.Check("1.2.3.4:/api/auth/login")
		require.True(t, d.Allowed, "request %d", i)
		assert.Equal(t, 5-i, d.Remaining)
		assert.Equal(t, testStart.Add(15*time.Minute), d.ResetAt)
	}

	clock.Advance(10 * time.Minute)
	d := limiter.Check("1.2.3.4:/api/auth/login")
	assert.False(t, d.Allowed)
	assert.Zero(t, d.Remaining)
	assert.Equal(t, 5*time.Minute, d.RetryAfter)

	other := limiter.Check("5.6.7.8:/api/auth/login")
	assert.True(t, other.Allowed, "keys are counted separately")

	clock.Advance(5 * time.Minute)
	d = limiter.Check("1.2.3.4:/api/auth/login")
	assert.True(t, d.Allowed, "a new window starts at the reset time")
	assert.Equal(t, 4, d.Remaining)
}

func TestFixedWindowLimiter_SweepsExpiredWindows(t *testing.T) {
	clock := testutil.NewClock(testStart)
	limiter := NewFixedWindowLimiter("api", 100, time.Minute, clock.Now)

	limiter.Check("a")
	limiter.Check("b")
	assert.Equal(t, 2, limiter.Size())

	clock.Advance(2 * time.Minute)
	limiter.Check("c")
	assert.Equal(t, 1, limiter.Size())
}

func TestRetryAfterSeconds(t *testing.T) {
	assert.Equal(t, 1, retryAfterSeconds(0))
	assert.Equal(t, 1, retryAfterSeconds(200*time.Millisecond))
	assert.Equal(t, 2, retryAfterSeconds(1001*time.Millisecond))
	assert.Equal(t, 900, retryAfterSeconds(15*time.Minute))
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	clock := testutil.NewClock(testStart)
	limiter := NewFixedWindowLimiter("auth", 2, time.Minute, clock.Now)

	r := gin.New()
	r.POST("/api/auth/login", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/api/auth/register", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusCreated) })

	do := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		return w
	}

	first := do("/api/auth/login")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get(constants.HeaderRateLimitLimit))
	assert.Equal(t, "1", first.Header().Get(constants.HeaderRateLimitRemaining))
	assert.Equal(t, strconv.FormatInt(testStart.Add(time.Minute).Unix(), 10), first.Header().Get(constants.HeaderRateLimitReset))

	assert.Equal(t, http.StatusOK, do("/api/auth/login").Code)

	blocked := do("/api/auth/login")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get(constants.HeaderRetryAfter))
	assert.Equal(t, "0", blocked.Header().Get(constants.HeaderRateLimitRemaining))
	assert.JSONEq(t, `{"message":"Too many requests, please try again later","retryAfter":60}`, blocked.Body.String())

	assert.Equal(t, http.StatusCreated, do("/api/auth/register").Code, "routes are limited separately")

	clock.Advance(time.Minute)
	assert.Equal(t, http.StatusOK, do("/api/auth/login").Code)
}

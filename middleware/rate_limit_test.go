package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestNewRateLimiter(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Requests: 10,
		Window:   time.Minute,
	})
	defer rl.Stop()

	assert.NotNil(t, rl)
	assert.Equal(t, 10, rl.config.Requests)
	assert.Equal(t, time.Minute, rl.config.Window)
	assert.NotNil(t, rl.config.KeyFunc)
	assert.Equal(t, "Too many requests. Please try again later.", rl.config.Message)
}

func TestRateLimiterMiddleware(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	}

	t.Run("WithinLimit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimitConfig{Requests: 2, Window: time.Second})
		defer rl.Stop()
		handler := rl.Middleware()(ok)

		for i := 0; i < 2; i++ {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			assert.NoError(t, handler(c))
			assert.Equal(t, http.StatusOK, rec.Code)
		}
	})

	t.Run("ExceededLimit", func(t *testing.T) {
		rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Minute, Message: "slow down"})
		defer rl.Stop()
		handler := rl.Middleware()(ok)

		c := e.NewContext(httptest.NewRequest(http.MethodPost, "/api/calls/sync", nil), httptest.NewRecorder())
		assert.NoError(t, handler(c))

		rec := httptest.NewRecorder()
		c = e.NewContext(httptest.NewRequest(http.MethodPost, "/api/calls/sync", nil), rec)
		err := handler(c)

		require.Error(t, err)
		he, isHTTP := err.(*echo.HTTPError)
		require.True(t, isHTTP)
		assert.Equal(t, http.StatusTooManyRequests, he.Code)
		assert.Equal(t, "slow down", he.Message)
		assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	})

	t.Run("SeparateKeys", func(t *testing.T) {
		rl := NewRateLimiter(RateLimitConfig{
			Requests: 1,
			Window:   time.Minute,
			KeyFunc:  func(c echo.Context) string { return c.Request().Header.Get("X-Desk") },
		})
		defer rl.Stop()
		handler := rl.Middleware()(ok)

		for _, desk := range []string{"a", "b"} {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set("X-Desk", desk)
			assert.NoError(t, handler(e.NewContext(req, httptest.NewRecorder())))
		}
	})
}

func TestRateLimiterWindowResets(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{Requests: 1, Window: time.Second})
	defer rl.Stop()

	now := time.Now()
	allowed, _ := rl.allow("k", now)
	assert.True(t, allowed)
	allowed, wait := rl.allow("k", now.Add(100*time.Millisecond))
	assert.False(t, allowed)
	assert.Equal(t, 900*time.Millisecond, wait)

	allowed, _ = rl.allow("k", now.Add(2*time.Second))
	assert.True(t, allowed)
}

func TestLimitersStop(t *testing.T) {
	l := NewLimiters()
	assert.Equal(t, 2, l.Sync.config.Requests)
	l.Stop()
	l.Stop()
}

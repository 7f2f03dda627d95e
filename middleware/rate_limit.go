package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimitConfig defines the configuration for rate limiting
type RateLimitConfig struct {
	// Requests is the maximum number of requests allowed within the window
	Requests int
	// Window is the time window for rate limiting
	Window time.Duration
	// KeyFunc is a function that returns a unique key for rate limiting (defaults to IP)
	KeyFunc func(c echo.Context) string
	// Message is the error message returned when rate limit is exceeded
	Message string
}

// rateLimitEntry tracks request count and window expiration
type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

// RateLimiter is a fixed-window limiter for one group of endpoints
type RateLimiter struct {
	config RateLimitConfig
	store  map[string]*rateLimitEntry
	mu     sync.Mutex
	stop   chan struct{}
	once   sync.Once
}

// NewRateLimiter creates a rate limiter and starts its cleanup loop. Call Stop to end it.
func NewRateLimiter(config RateLimitConfig) *RateLimiter {
	if config.KeyFunc == nil {
		config.KeyFunc = func(c echo.Context) string {
			return c.RealIP()
		}
	}
	if config.Message == "" {
		config.Message = "Too many requests. Please try again later."
	}

	rl := &RateLimiter{
		config: config,
		store:  make(map[string]*rateLimitEntry),
		stop:   make(chan struct{}),
	}

	go rl.cleanup(time.Minute)

	return rl
}

// Middleware returns the rate limiting middleware
func (rl *RateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			allowed, retryAfter := rl.allow(rl.config.KeyFunc(c), time.Now())
			if !allowed {
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+0.5)))
				return echo.NewHTTPError(http.StatusTooManyRequests, rl.config.Message)
			}
			return next(c)
		}
	}
}

// allow counts a request for key and reports whether it fits in the current window
func (rl *RateLimiter) allow(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, exists := rl.store[key]
	if !exists || now.After(entry.expiresAt) {
		rl.store[key] = &rateLimitEntry{count: 1, expiresAt: now.Add(rl.config.Window)}
		return true, 0
	}
	if entry.count >= rl.config.Requests {
		return false, entry.expiresAt.Sub(now)
	}
	entry.count++
	return true, 0
}

// cleanup removes expired entries until Stop is called
func (rl *RateLimiter) cleanup(every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-rl.stop:
			return
		case now := <-ticker.C:
			rl.mu.Lock()
			for key, entry := range rl.store {
				if now.After(entry.expiresAt) {
					delete(rl.store, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the cleanup loop
func (rl *RateLimiter) Stop() {
	rl.once.Do(func() { close(rl.stop) })
}

// Limiters is the set used by the server routes
type Limiters struct {
	// Sync guards the carrier report sync, which calls the provider API
	Sync *RateLimiter
	// Import guards spreadsheet uploads
	Import *RateLimiter
	// Documents guards PDF rendering, which starts a headless browser
	Documents *RateLimiter
	// API guards everything else
	API *RateLimiter
}

// NewLimiters builds the server's rate limiters
func NewLimiters() *Limiters {
	return &Limiters{
		Sync: NewRateLimiter(RateLimitConfig{
			Requests: 2,
			Window:   1 * time.Minute,
			Message:  "A call sync was just requested. Please wait a minute before syncing again.",
		}),
		Import: NewRateLimiter(RateLimitConfig{
			Requests: 10,
			Window:   1 * time.Minute,
			Message:  "Too many uploads. Please wait before importing again.",
		}),
		Documents: NewRateLimiter(RateLimitConfig{
			Requests: 10,
			Window:   1 * time.Minute,
			Message:  "Too many documents requested. Please wait before generating more.",
		}),
		API: NewRateLimiter(RateLimitConfig{
			Requests: 300,
			Window:   1 * time.Minute,
			Message:  "Rate limit exceeded. Please slow down your requests.",
		}),
	}
}

// Stop ends every limiter's cleanup loop
func (l *Limiters) Stop() {
	for _, rl := range []*RateLimiter{l.Sync, l.Import, l.Documents, l.API} {
		rl.Stop()
	}
}

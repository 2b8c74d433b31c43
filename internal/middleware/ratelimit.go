package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"

	"github.com/bara-directory/seeder/internal/config"
)

// RateLimiter applies a token bucket per caller. Authenticated callers are
// keyed by operator, everyone else by client IP. Buckets idle for a whole
// interval are full again and get dropped.
func RateLimiter(cfg config.RateLimitConfig) echo.MiddlewareFunc {
	if cfg.Requests <= 0 || cfg.Interval <= 0 {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return next
		}
	}

	perRequest := cfg.Interval / time.Duration(cfg.Requests)
	if perRequest <= 0 {
		perRequest = time.Second
	}

	set := newLimiterSet(perRequest, cfg.Requests, cfg.Interval)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := Operator(c)
			if key == "" {
				key = c.RealIP()
			}
			if !set.allow(key, time.Now()) {
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}

type visitor struct {
	limiter *rate.Limiter
	seen    time.Time
}

type limiterSet struct {
	mu       sync.Mutex
	every    time.Duration
	burst    int
	idle     time.Duration
	visitors map[string]*visitor
	swept    time.Time
}

func newLimiterSet(every time.Duration, burst int, idle time.Duration) *limiterSet {
	return &limiterSet{every: every, burst: burst, idle: idle, visitors: make(map[string]*visitor)}
}

func (s *limiterSet) allow(key string, now time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if now.Sub(s.swept) >= s.idle {
		for k, v := range s.visitors {
			if now.Sub(v.seen) >= s.idle {
				delete(s.visitors, k)
			}
		}
		s.swept = now
	}

	v, ok := s.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(rate.Every(s.every), s.burst)}
		s.visitors[key] = v
	}
	v.seen = now
	return v.limiter.AllowN(now, 1)
}

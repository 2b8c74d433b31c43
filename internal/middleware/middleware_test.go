package middleware

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/bara-directory/seeder/internal/config"
)

func TestLoggingMiddleware(t *testing.T) {
	orig := log.Logger
	buf := &bytes.Buffer{}
	log.Logger = zerolog.New(buf)
	defer func() { log.Logger = orig }()

	e := echo.New()
	chain := func(h echo.HandlerFunc) echo.HandlerFunc { return RequestID()(Logging()(h)) }

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "rid-123")
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := chain(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if !strings.Contains(buf.String(), `"request_id":"rid-123"`) || !strings.Contains(buf.String(), `"status":200`) {
		t.Fatalf("expected log output to contain request id and status, got %s", buf.String())
	}

	// errors are propagated and logged at error level
	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "rid-456")
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	expected := errors.New("boom")
	err = chain(func(c echo.Context) error {
		return expected
	})(c)
	if !strings.Contains(buf.String(), "rid-456") || !strings.Contains(buf.String(), `"level":"error"`) {
		t.Fatalf("expected second log entry with new request id, got %s", buf.String())
	}
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
}

func TestRateLimiter(t *testing.T) {
	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}
	call := func(mw echo.MiddlewareFunc, operator string) int {
		req := httptest.NewRequest(http.MethodPost, "/admin/imports/businesses", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		if operator != "" {
			c.Set(ContextKeyOperator, operator)
		}
		_ = mw(next)(c)
		return rec.Code
	}

	mw := RateLimiter(config.RateLimitConfig{Requests: 1, Interval: time.Second})
	if code := call(mw, "ops@bara.rw"); code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", code)
	}
	if code := call(mw, "ops@bara.rw"); code != http.StatusTooManyRequests {
		t.Fatalf("expected second request rejected, got %d", code)
	}
	if code := call(mw, "other@bara.rw"); code != http.StatusOK {
		t.Fatalf("expected another operator to have its own bucket, got %d", code)
	}

	// zero config behaves as passthrough
	mw = RateLimiter(config.RateLimitConfig{})
	for i := 0; i < 3; i++ {
		if code := call(mw, ""); code != http.StatusOK {
			t.Fatalf("expected passthrough when limiter disabled, got %d", code)
		}
	}
	if nextCalls != 5 {
		t.Fatalf("expected next handler to be invoked 5 times, got %d", nextCalls)
	}
}

func TestLimiterSetDropsIdleBuckets(t *testing.T) {
	set := newLimiterSet(time.Second, 1, time.Minute)
	start := time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		set.allow(fmt.Sprintf("10.0.0.%d", i), start)
	}
	if !set.allow("ops@bara.rw", start) || set.allow("ops@bara.rw", start.Add(time.Millisecond)) {
		t.Fatalf("expected one request per second for a fresh bucket")
	}
	if len(set.visitors) != 101 {
		t.Fatalf("expected 101 buckets, got %d", len(set.visitors))
	}

	later := start.Add(30 * time.Second)
	set.allow("ops@bara.rw", later)
	if len(set.visitors) != 101 {
		t.Fatalf("expected no sweep within the interval, got %d buckets", len(set.visitors))
	}

	if !set.allow("10.0.0.7", start.Add(61*time.Second)) {
		t.Fatalf("expected a returning client to start with a full bucket")
	}
	if len(set.visitors) != 2 {
		t.Fatalf("expected idle buckets to be dropped, got %d", len(set.visitors))
	}
}

func TestRequireRole(t *testing.T) {
	e := echo.New()
	mw := RequireRole("admin")

	t.Run("missing role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("incorrect role", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyRole, "user")

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyRole, "admin")

		called := false
		if err := mw(func(c echo.Context) error {
			called = true
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !called {
			t.Fatalf("expected handler to run")
		}
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	e := echo.New()
	handler := RequestID()

	t.Run("reuse incoming header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", "incoming")
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			if RequestIDFromContext(c) != "incoming" {
				t.Fatalf("expected request id to be stored")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") != "incoming" {
			t.Fatalf("expected response header to propagate request id")
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		if err := handler(func(c echo.Context) error {
			rid := RequestIDFromContext(c)
			if rid == "" {
				t.Fatalf("expected generated request id")
			}
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if rec.Header().Get("X-Request-ID") == "" {
			t.Fatalf("expected response header set")
		}
	})
}

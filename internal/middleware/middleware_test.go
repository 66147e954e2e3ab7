package middleware

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/octobees/leads-generator/enricher/internal/config"
)

func TestLoggingMiddleware(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := logrus.New()
	logger.SetOutput(buf)
	logger.SetFormatter(&logrus.TextFormatter{DisableColors: true, DisableTimestamp: true})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-123")
	c.Set(ContextKeyClientID, "crm-sync")

	err := Logging(logger)(func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})(c)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	out := buf.String()
	if !strings.Contains(out, "request_id=rid-123") || !strings.Contains(out, "status=200") || !strings.Contains(out, "client_id=crm-sync") {
		t.Fatalf("expected structured fields in log output, got %s", out)
	}

	// ensure errors are propagated and logged
	rec = httptest.NewRecorder()
	c = e.NewContext(req, rec)
	c.Set(ContextKeyRequestID, "rid-456")
	expected := errors.New("boom")
	err = Logging(logger)(func(c echo.Context) error {
		return expected
	})(c)
	if !strings.Contains(buf.String(), "rid-456") || !strings.Contains(buf.String(), "level=warning") {
		t.Fatalf("expected second log entry with new request id, got %s", buf.String())
	}
	if !errors.Is(err, expected) {
		t.Fatalf("expected error to bubble up")
	}
}

func TestRateLimiter(t *testing.T) {
	cfg := config.RateLimitConfig{Requests: 1, Interval: time.Second}
	mw := RateLimiter(cfg, "/enrich", "/enrich/bulk")

	e := echo.New()
	nextCalls := 0
	next := func(c echo.Context) error {
		nextCalls++
		return c.NoContent(http.StatusOK)
	}

	call := func(mw echo.MiddlewareFunc, path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.SetPath(path)
		_ = mw(next)(c)
		return rec
	}

	if rec := call(mw, "/enrich"); rec.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", rec.Code)
	}
	rec := call(mw, "/enrich/bulk")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected second request to share the bucket and be rejected, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") != "1" {
		t.Fatalf("expected Retry-After header, got %q", rec.Header().Get("Retry-After"))
	}

	// Other paths bypass the limiter.
	if rec := call(mw, "/healthz"); rec.Code != http.StatusOK {
		t.Fatalf("expected unlimited path to pass")
	}

	// zero config should behave as passthrough
	if rec := call(RateLimiter(config.RateLimitConfig{}, "/enrich"), "/enrich"); rec.Code != http.StatusOK {
		t.Fatalf("expected passthrough when limiter disabled")
	}

	// no paths limits everything
	global := RateLimiter(cfg)
	call(global, "/a")
	if rec := call(global, "/b"); rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected global limiter to reject, got %d", rec.Code)
	}
	if nextCalls != 4 {
		t.Fatalf("expected 4 handler calls, got %d", nextCalls)
	}
}

func TestRequireScope(t *testing.T) {
	e := echo.New()
	mw := RequireScope("bulk")

	t.Run("missing scopes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("other scope", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyScopes, []string{"history"})

		_ = mw(func(c echo.Context) error { return nil })(c)
		if rec.Code != http.StatusForbidden {
			t.Fatalf("expected 403, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		c.Set(ContextKeyScopes, []string{"history", "bulk"})

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

	serve := func(incoming string) (string, string) {
		req := httptest.NewRequest(http.MethodPost, "/enrich", nil)
		if incoming != "" {
			req.Header.Set(HeaderRequestID, incoming)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		var stored string
		if err := handler(func(c echo.Context) error {
			stored = RequestIDFromContext(c)
			return c.NoContent(http.StatusOK)
		})(c); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return stored, rec.Header().Get(HeaderRequestID)
	}

	t.Run("reuse incoming header", func(t *testing.T) {
		stored, header := serve("crm-batch-42.7")
		if stored != "crm-batch-42.7" || header != stored {
			t.Fatalf("expected incoming id to be kept, got stored=%q header=%q", stored, header)
		}
	})

	t.Run("generate when missing", func(t *testing.T) {
		stored, header := serve("")
		if stored == "" || header != stored {
			t.Fatalf("expected generated id in context and header, got stored=%q header=%q", stored, header)
		}
	})

	t.Run("replace unsafe header", func(t *testing.T) {
		for _, incoming := range []string{"id with spaces", "line\nbreak", strings.Repeat("a", 65)} {
			stored, header := serve(incoming)
			if stored == incoming || header != stored {
				t.Fatalf("expected %q to be replaced, got stored=%q header=%q", incoming, stored, header)
			}
		}
	})
}

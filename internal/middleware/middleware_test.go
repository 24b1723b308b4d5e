package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/posts/internal/cache"
	"github.com/debemdeboas/posts/internal/config"
)

func TestChain(t *testing.T) {
	var calls []string

	m1 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "m1-before")
			next.ServeHTTP(w, r)
			calls = append(calls, "m1-after")
		})
	}
	m2 := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls = append(calls, "m2-before")
			next.ServeHTTP(w, r)
			calls = append(calls, "m2-after")
		})
	}
	final := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, "handler")
	})

	h := Chain(final, m1, m2)
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "http://example.com/", nil))

	expected := []string{"m1-before", "m2-before", "handler", "m2-after", "m1-after"}
	if len(calls) != len(expected) {
		t.Fatalf("expected %d calls, got %d", len(expected), len(calls))
	}
	for i := range expected {
		if calls[i] != expected[i] {
			t.Errorf("at %d: expected %q, got %q", i, expected[i], calls[i])
		}
	}
}

func TestSecureHeaders(t *testing.T) {
	h := SecureHeaders(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	t.Run("Pages get headers", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts/", nil))

		if rr.Header().Get("X-Frame-Options") != "deny" {
			t.Error("expected X-Frame-Options: deny")
		}
		if rr.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("expected X-Content-Type-Options: nosniff")
		}
	})

	t.Run("robots.txt is left alone", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/robots.txt", nil))

		if rr.Header().Get("X-Frame-Options") != "" {
			t.Error("expected no security headers on robots.txt")
		}
	})
}

func TestCacheControl(t *testing.T) {
	cache.SetStaticHash("/static/test.css", "abc123")

	var served int
	h := CacheControl(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		served++
		w.Write([]byte("body"))
	}))

	t.Run("Dynamic page", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts/", nil))

		if got := rr.Header().Get(config.HCacheControl); got != "no-cache" {
			t.Errorf("expected no-cache, got %q", got)
		}
		if rr.Header().Get(config.HETag) != "" {
			t.Error("expected no ETag on dynamic page")
		}
	})

	t.Run("Static file", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/test.css", nil))

		if got := rr.Header().Get(config.HETag); got != `"abc123"` {
			t.Errorf("expected quoted ETag, got %q", got)
		}
		if got := rr.Header().Get(config.HCacheControl); got != "public, max-age=3600" {
			t.Errorf("unexpected Cache-Control %q", got)
		}
	})

	t.Run("Matching If-None-Match", func(t *testing.T) {
		before := served
		req := httptest.NewRequest(http.MethodGet, "/static/test.css", nil)
		req.Header.Set("If-None-Match", `"abc123"`)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		if rr.Code != http.StatusNotModified {
			t.Errorf("expected 304, got %d", rr.Code)
		}
		if served != before {
			t.Error("expected handler not to run")
		}
	})
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /posts/{id}/edit", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	})

	h := Logging(log)(mux)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/posts/42/edit", nil))

	out := buf.String()
	if !strings.Contains(out, `"status":418`) {
		t.Errorf("expected status in log line, got %s", out)
	}
	if !strings.Contains(out, `"route":"GET /posts/{id}/edit"`) {
		t.Errorf("expected matched pattern in log line, got %s", out)
	}
	if !strings.Contains(out, `"bytes":15`) {
		t.Errorf("expected byte count in log line, got %s", out)
	}
}

func TestStatusRecorderDefaultsToOK(t *testing.T) {
	rec := &statusRecorder{ResponseWriter: httptest.NewRecorder()}
	rec.Write([]byte("x"))
	rec.WriteHeader(http.StatusInternalServerError)

	if rec.status != http.StatusOK {
		t.Errorf("expected first write to fix status at 200, got %d", rec.status)
	}
}

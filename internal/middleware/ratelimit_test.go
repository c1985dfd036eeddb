package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func hit(t *testing.T, handler http.Handler, addr string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat", http.NoBody)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterAllowsBurst(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	handler := rl.Handler(okHandler())

	for i := range 10 {
		if rec := hit(t, handler, "192.168.1.1:52000"); rec.Code != http.StatusOK {
			t.Errorf("request %d: expected 200, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimiterRejectsWhenExhausted(t *testing.T) {
	rl := NewRateLimiter(10, 5)
	handler := rl.Handler(okHandler())

	for range 5 {
		hit(t, handler, "192.168.1.1:52000")
	}

	rec := hit(t, handler, "192.168.1.1:52000")
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after burst spent, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
	if !strings.Contains(rec.Body.String(), "rate limit exceeded") {
		t.Errorf("unexpected 429 body %q", rec.Body.String())
	}
}

func TestRateLimiterSetsHeaders(t *testing.T) {
	rl := NewRateLimiter(10, 10)
	handler := rl.Handler(okHandler())

	rec := hit(t, handler, "192.168.1.1:52000")
	if rec.Header().Get("X-RateLimit-Remaining") == "" {
		t.Error("expected X-RateLimit-Remaining header")
	}
	if rec.Header().Get("X-RateLimit-Reset") == "" {
		t.Error("expected X-RateLimit-Reset header")
	}
}

func TestRateLimiterIsolatesClients(t *testing.T) {
	rl := NewRateLimiter(10, 2)
	handler := rl.Handler(okHandler())

	for range 2 {
		hit(t, handler, "10.0.0.1:40001")
	}

	if rec := hit(t, handler, "10.0.0.1:40001"); rec.Code != http.StatusTooManyRequests {
		t.Errorf("exhausted client: expected 429, got %d", rec.Code)
	}

	// A different source address has its own bucket.
	if rec := hit(t, handler, "10.0.0.2:40002"); rec.Code != http.StatusOK {
		t.Errorf("fresh client: expected 200, got %d", rec.Code)
	}
}

func TestRateLimiterEvictsIdleBuckets(t *testing.T) {
	rl := NewRateLimiter(10, 2)
	handler := rl.Handler(okHandler())

	hit(t, handler, "10.0.0.1:40001")
	hit(t, handler, "10.0.0.2:40002")
	if got := rl.Len(); got != 2 {
		t.Fatalf("expected 2 tracked clients, got %d", got)
	}

	time.Sleep(time.Millisecond)
	rl.evictIdle(time.Microsecond)
	if got := rl.Len(); got != 0 {
		t.Fatalf("expected all idle buckets evicted, got %d", got)
	}
}

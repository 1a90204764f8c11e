package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterAllowsBurstThenRejects(t *testing.T) {
	rl := NewRateLimiter(1, 3, nil)

	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Fatalf("expected request %d within burst to be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected request beyond burst to be rejected")
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(1, 1, nil)

	if !rl.Allow("10.0.0.1") {
		t.Fatalf("expected first client to be allowed")
	}
	if !rl.Allow("10.0.0.2") {
		t.Fatalf("expected second client to be allowed")
	}
	if rl.Allow("10.0.0.1") {
		t.Fatalf("expected exhausted client to be rejected")
	}
}

func TestRateLimitMiddlewareRejectsWith429(t *testing.T) {
	mw := RateLimit(1, 1, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/reports", nil)
	req.Header.Set("X-Real-Ip", "10.0.0.1")

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status %d, got %d", http.StatusTooManyRequests, rec.Code)
	}
}

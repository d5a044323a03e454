package middleware

import (
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
)

func TestRateLimit_ExhaustedBurstGets429(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	limited := RateLimit(2, 0)(next)

	do := func(ip string) int {
		r := httptest.NewRequest(http.MethodPost, "/login", nil)
		r.Header.Set("X-Forwarded-For", ip)
		w := httptest.NewRecorder()
		limited.ServeHTTP(w, r)
		return w.Code
	}

	if code := do("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("first request status = %d, want %d", code, http.StatusOK)
	}
	if code := do("10.0.0.1"); code != http.StatusOK {
		t.Fatalf("second request status = %d, want %d", code, http.StatusOK)
	}
	if code := do("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("burst exceeded status = %d, want %d", code, http.StatusTooManyRequests)
	}

	// Бакеты независимы по IP.
	if code := do("10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client status = %d, want %d", code, http.StatusOK)
	}
}

func TestRateLimit_NoBackgroundGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()

	for i := 0; i < 10; i++ {
		RateLimit(1, 1)
	}

	if after := runtime.NumGoroutine(); after > before {
		t.Fatalf("goroutines grew from %d to %d after constructing limiters", before, after)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := clientIP(r); ip != "203.0.113.7" {
		t.Fatalf("forwarded ip = %q, want 203.0.113.7", ip)
	}

	r = httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "192.0.2.5:4321"
	if ip := clientIP(r); ip != "192.0.2.5" {
		t.Fatalf("remote ip = %q, want 192.0.2.5", ip)
	}
}

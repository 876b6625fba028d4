package api

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestIPLimiterAllow(t *testing.T) {
	l := &ipLimiter{
		entries: make(map[string]*ipLimiterEntry),
		rps:     rate.Limit(1),
		burst:   2,
		ttl:     time.Minute,
	}

	if !l.allow("10.0.0.1") {
		t.Fatal("expected first request to pass")
	}
	if !l.allow("10.0.0.1") {
		t.Fatal("expected second request to pass within burst")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("expected third request to be limited")
	}
	if !l.allow("10.0.0.2") {
		t.Fatal("expected a different ip to have its own bucket")
	}
}

func TestIPLimiterEviction(t *testing.T) {
	l := &ipLimiter{
		entries: make(map[string]*ipLimiterEntry),
		rps:     rate.Limit(1),
		burst:   1,
		ttl:     time.Minute,
	}
	l.entries["stale"] = &ipLimiterEntry{
		limiter:  rate.NewLimiter(l.rps, l.burst),
		lastSeen: time.Now().Add(-2 * time.Minute),
	}
	l.lastCleanup = time.Now().Add(-2 * time.Minute)

	l.allow("fresh")

	l.mu.Lock()
	_, stale := l.entries["stale"]
	_, fresh := l.entries["fresh"]
	l.mu.Unlock()
	if stale {
		t.Fatal("expected the stale entry to be evicted")
	}
	if !fresh {
		t.Fatal("expected the fresh entry to be tracked")
	}
}

func TestRateLimitMiddlewareScopesToPublicWrites(t *testing.T) {
	handler := rateLimitMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(200)
	}))

	// Exhaust the bucket on the limited enrollment path.
	limited := 0
	for i := 0; i < 40; i++ {
		req := httptest.NewRequest("POST", "/api/workers/create", nil)
		req.Header.Set("X-Forwarded-For", "203.0.113.200")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if rec.Code == http.StatusTooManyRequests {
			limited++
			if rec.Header().Get("X-RateLimit-Limit") == "" {
				t.Fatal("expected X-RateLimit-Limit on limited responses")
			}
			resp := decodeBody(t, rec.Body.Bytes())
			if resp["error_code"] != float64(429) {
				t.Fatalf("expected error_code 429, got %v", resp["error_code"])
			}
		}
	}
	if limited == 0 {
		t.Fatal("expected the enrollment path to be limited after the burst")
	}

	// The worker protocol paths stay open for the same ip.
	req := httptest.NewRequest("POST", "/api/commit", nil)
	req.Header.Set("X-Forwarded-For", "203.0.113.200")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != 200 {
		t.Fatalf("expected unlimited path to pass, got %d", rec.Code)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		realIP     string
		want       string
	}{
		{"forwarded first", "10.0.0.1:1234", "198.51.100.9, 10.0.0.1", "", "198.51.100.9"},
		{"real ip fallback", "10.0.0.1:1234", "", "198.51.100.10", "198.51.100.10"},
		{"remote addr host", "198.51.100.11:4567", "", "", "198.51.100.11"},
		{"remote addr bare", "198.51.100.12", "", "", "198.51.100.12"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tc.remoteAddr
			if tc.xff != "" {
				req.Header.Set("X-Forwarded-For", tc.xff)
			}
			if tc.realIP != "" {
				req.Header.Set("X-Real-IP", tc.realIP)
			}
			if got := clientIP(req); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}

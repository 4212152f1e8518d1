package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

// newTestRateLimiter はバースト1の厳しい設定のRateLimiterを生成する。
func newTestRateLimiter(t *testing.T) *RateLimiter {
	t.Helper()
	rl := NewRateLimiter(RateLimiterConfig{
		GeneralRate:     rate.Limit(0.001),
		GeneralBurst:    1,
		ImportRate:      rate.Limit(0.001),
		ImportBurst:     1,
		CleanupInterval: time.Minute,
	})
	t.Cleanup(rl.Stop)
	return rl
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

// TestRateLimiter_GeneralMiddleware はバースト超過で429が返ることを検証する。
func TestRateLimiter_GeneralMiddleware(t *testing.T) {
	rl := newTestRateLimiter(t)
	handler := rl.GeneralMiddleware()(okHandler())

	send := func() int {
		req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
		req = req.WithContext(ContextWithOrgID(req.Context(), "org-1"))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send(); code != http.StatusOK {
		t.Fatalf("first request status = %d, want 200", code)
	}
	if code := send(); code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", code)
	}
}

// TestRateLimiter_PerOrganization は組織ごとに独立した制限であることを検証する。
func TestRateLimiter_PerOrganization(t *testing.T) {
	rl := newTestRateLimiter(t)
	handler := rl.GeneralMiddleware()(okHandler())

	send := func(orgID string) int {
		req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
		req = req.WithContext(ContextWithOrgID(req.Context(), orgID))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if code := send("org-1"); code != http.StatusOK {
		t.Fatalf("org-1 status = %d, want 200", code)
	}
	if code := send("org-2"); code != http.StatusOK {
		t.Fatalf("org-2 status = %d, want 200 (org-1の消費に影響されない)", code)
	}
}

// TestRateLimiter_MissingOrg は組織IDなしのリクエストに400が返ることを検証する。
func TestRateLimiter_MissingOrg(t *testing.T) {
	rl := newTestRateLimiter(t)
	handler := rl.ImportMiddleware()(okHandler())

	req := httptest.NewRequest(http.MethodPost, "/api/people/import", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

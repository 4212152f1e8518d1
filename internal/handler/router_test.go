package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tanjomail/internal/metrics"
	"github.com/hitoshi/tanjomail/internal/middleware"
	"github.com/hitoshi/tanjomail/internal/model"
	"github.com/hitoshi/tanjomail/internal/onboarding"
	"github.com/hitoshi/tanjomail/internal/scheduler"
)

// newTestRouter は全依存をモックで埋めたルーターを返す。
func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	rateLimiter := middleware.NewRateLimiter(middleware.DefaultRateLimiterConfig())
	t.Cleanup(rateLimiter.Stop)

	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	deps := &RouterDeps{
		HealthChecker: &mockHealthChecker{
			pingFunc: func(ctx context.Context) error { return nil },
		},
		CORSAllowedOrigin: "http://localhost:3000",
		RateLimiter:       rateLimiter,
		Metrics:           collector,
		MetricsGatherer:   registry,

		ImportService: &mockImportService{},
		PersonService: &mockPersonService{
			listFunc: func(ctx context.Context, orgID string) ([]*model.Person, error) {
				return []*model.Person{}, nil
			},
		},
		OnboardingService: &mockOnboardingService{
			computeStateFunc: func(ctx context.Context, orgID string) (*onboarding.State, error) {
				return sampleState(), nil
			},
		},
		SchedulerService: &mockSchedulerService{
			triggerDailyFunc: func(ctx context.Context, orgID string) (*scheduler.TriggerResult, error) {
				return &scheduler.TriggerResult{RunDate: "2026-08-31", Claimed: true}, nil
			},
		},
	}

	return NewRouter(deps)
}

func TestRouter_Health_OutsideOrgScope(t *testing.T) {
	router := newTestRouter(t)

	// 組織ヘッダーなしでもアクセスできる
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_Metrics_Exposed(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_OrgScopedRoute_RequiresHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/onboarding", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400（X-Organization-IDなし）", rec.Code)
	}
	var resp apiErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid JSON response: %v", err)
	}
	if resp.Code != "MISSING_ORGANIZATION" {
		t.Errorf("code = %q, want MISSING_ORGANIZATION", resp.Code)
	}
}

func TestRouter_OrgScopedRoute_WithHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/onboarding", nil)
	req.Header.Set(middleware.OrganizationHeader, "org-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: body=%s", rec.Code, rec.Body.String())
	}
}

func TestRouter_PeopleList_WithHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
	req.Header.Set(middleware.OrganizationHeader, "org-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestRouter_SchedulerTrigger_WithHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/api/scheduler/runs", nil)
	req.Header.Set(middleware.OrganizationHeader, "org-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
}

func TestRouter_ImportSample_WithHeader(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/people/import/sample", nil)
	req.Header.Set(middleware.OrganizationHeader, "org-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", rec.Header().Get("Content-Type"))
	}
}

func TestRouter_SecurityHeaders_Applied(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/people", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Errorf("Access-Control-Allow-Origin = %q, want http://localhost:3000", got)
	}
}

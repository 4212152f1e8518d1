package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

// TestOrganizationMiddleware はヘッダーからの組織ID注入と欠落時の400を検証する。
func TestOrganizationMiddleware(t *testing.T) {
	var gotOrgID string
	handler := NewOrganizationMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		orgID, err := OrgIDFromContext(r.Context())
		if err != nil {
			t.Errorf("OrgIDFromContext returned error: %v", err)
		}
		gotOrgID = orgID
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("ヘッダーあり", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
		req.Header.Set(OrganizationHeader, "org-1")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if gotOrgID != "org-1" {
			t.Errorf("orgID = %q, want org-1", gotOrgID)
		}
	})

	t.Run("ヘッダーなし", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/people", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", rec.Code)
		}
	})
}

// TestOrgIDFromContext_Missing はコンテキストに組織IDがない場合のエラーを検証する。
func TestOrgIDFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := OrgIDFromContext(req.Context()); err == nil {
		t.Error("expected error for missing organization ID")
	}
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tanjomail/internal/metrics"
	"github.com/hitoshi/tanjomail/internal/onboarding"
)

// OnboardingServiceInterface はオンボーディングハンドラーが必要とする
// サービスインターフェース。
type OnboardingServiceInterface interface {
	// ComputeState は組織の現在のチェックリスト状態を導出して返す。
	ComputeState(ctx context.Context, orgID string) (*onboarding.State, error)
	// MarkStep はステップの完了を記録し、最新状態を返す。
	MarkStep(ctx context.Context, orgID, stepID string) (*onboarding.State, error)
}

// OnboardingHandler はオンボーディングのHTTPハンドラー。
type OnboardingHandler struct {
	service OnboardingServiceInterface
	metrics metrics.MetricsCollector
}

// NewOnboardingHandler はOnboardingHandlerを生成する。
func NewOnboardingHandler(service OnboardingServiceInterface, collector metrics.MetricsCollector) *OnboardingHandler {
	return &OnboardingHandler{
		service: service,
		metrics: collector,
	}
}

// Get は組織のオンボーディング状態を取得する。
// GET /api/onboarding
func (h *OnboardingHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	state, err := h.service.ComputeState(r.Context(), orgID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

// MarkStep はステップの完了を記録する。
// 未知のステップIDもエラーにはせず、再計算した状態をそのまま返す
// （derivedステップは手動で完了にできない）。
// POST /api/onboarding/steps/{stepID}
func (h *OnboardingHandler) MarkStep(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	stepID := chi.URLParam(r, "stepID")

	state, err := h.service.MarkStep(r.Context(), orgID, stepID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.RecordStepMarked(stepID)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(state)
}

package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/hitoshi/tanjomail/internal/scheduler"
)

// SchedulerServiceInterface はトリガーハンドラーが必要とするサービスインターフェース。
type SchedulerServiceInterface interface {
	// TriggerDaily は組織の当日分の実行権を取得する。
	TriggerDaily(ctx context.Context, orgID string) (*scheduler.TriggerResult, error)
}

// SchedulerHandler は外部cronトリガーのHTTPハンドラー。
type SchedulerHandler struct {
	service SchedulerServiceInterface
}

// NewSchedulerHandler はSchedulerHandlerを生成する。
func NewSchedulerHandler(service SchedulerServiceInterface) *SchedulerHandler {
	return &SchedulerHandler{service: service}
}

// Trigger は当日分の実行権を払い出す。同日2回目以降のトリガーは
// claimed=falseを受け取り、下流の送信処理は起動されない。
// POST /api/scheduler/runs
func (h *SchedulerHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	result, err := h.service.TriggerDaily(r.Context(), orgID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	status := http.StatusOK
	if result.Claimed {
		status = http.StatusCreated
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(result)
}

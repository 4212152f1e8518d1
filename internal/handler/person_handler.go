package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/tanjomail/internal/model"
)

// PersonServiceInterface は名簿ハンドラーが必要とするサービスインターフェース。
type PersonServiceInterface interface {
	// List は組織の名簿一覧を返す。
	List(ctx context.Context, orgID string) ([]*model.Person, error)
	// OptOut はメンバーを送信対象から除外する。
	OptOut(ctx context.Context, orgID, personID string) error
}

// PersonHandler は名簿管理のHTTPハンドラー。
type PersonHandler struct {
	service PersonServiceInterface
}

// NewPersonHandler はPersonHandlerを生成する。
func NewPersonHandler(service PersonServiceInterface) *PersonHandler {
	return &PersonHandler{service: service}
}

// personResponse は名簿エントリのAPIレスポンス。
type personResponse struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	FirstName  string    `json:"first_name"`
	Email      string    `json:"email"`
	Phone      *string   `json:"phone,omitempty"`
	Birthday   string    `json:"birthday"`
	Department string    `json:"department,omitempty"`
	Role       string    `json:"role,omitempty"`
	OptedOut   bool      `json:"opted_out"`
	CreatedAt  time.Time `json:"created_at"`
}

// toPersonResponse はドメインモデルをレスポンスに変換する。
// 誕生日は日付のみを返す（時刻成分は持たない）。
func toPersonResponse(p *model.Person) personResponse {
	return personResponse{
		ID:         p.ID,
		FullName:   p.FullName,
		FirstName:  p.FirstName,
		Email:      p.Email,
		Phone:      p.Phone,
		Birthday:   p.Birthday.Format("2006-01-02"),
		Department: p.Department,
		Role:       p.Role,
		OptedOut:   p.OptedOut,
		CreatedAt:  p.CreatedAt,
	}
}

// List は組織の名簿一覧を取得する。
// GET /api/people
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	people, err := h.service.List(r.Context(), orgID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	responses := make([]personResponse, len(people))
	for i, p := range people {
		responses[i] = toPersonResponse(p)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// OptOut はメンバーを送信対象から除外する。
// POST /api/people/{id}/opt-out
func (h *PersonHandler) OptOut(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	personID := chi.URLParam(r, "id")

	if err := h.service.OptOut(r.Context(), orgID, personID); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

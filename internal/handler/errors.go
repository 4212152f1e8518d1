// Package handler はHTTPハンドラーを提供する。
// ハンドラーは薄く保ち、ビジネスロジックはサービス層に置く。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/tanjomail/internal/middleware"
	"github.com/hitoshi/tanjomail/internal/model"
)

// orgIDFromRequest はリクエストコンテキストから組織IDを取得する。
func orgIDFromRequest(r *http.Request) (string, error) {
	return middleware.OrgIDFromContext(r.Context())
}

// apiErrorResponse はAPIエラーレスポンスの統一フォーマット。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// writeAPIErrorResponse は統一エラーフォーマットでレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		writeAPIErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeOrganizationNotFound, model.ErrCodePersonNotFound:
		return http.StatusNotFound
	case model.ErrCodeMissingOrganization, model.ErrCodeEmptyCSV:
		return http.StatusBadRequest
	case model.ErrCodeCSVTooLarge:
		return http.StatusRequestEntityTooLarge
	default:
		return http.StatusInternalServerError
	}
}

// requireOrgID はリクエストコンテキストから組織IDを取得する。
// 取得できない場合はエラーレスポンスを書き込み、ok=falseを返す。
func requireOrgID(w http.ResponseWriter, r *http.Request) (string, bool) {
	orgID, err := orgIDFromRequest(r)
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewMissingOrganizationError())
		return "", false
	}
	return orgID, true
}

// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/hitoshi/tanjomail/internal/model"
)

// OrganizationHeader はテナント識別に使うHTTPヘッダー名。
// 認証は上流のゲートウェイの責務で、本サービスはこのヘッダーを信頼する。
const OrganizationHeader = "X-Organization-ID"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// orgIDContextKey はリクエストコンテキストに組織IDを格納するためのキー。
var orgIDContextKey = contextKey("organization_id")

// NewOrganizationMiddleware はX-Organization-IDヘッダーから組織IDを読み取り、
// リクエストコンテキストに注入するミドルウェアを返す。
// ヘッダーが欠落しているリクエストには400を返す。
func NewOrganizationMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID := r.Header.Get(OrganizationHeader)
			if orgID == "" {
				apiErr := model.NewMissingOrganizationError()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{
					"code":     apiErr.Code,
					"message":  apiErr.Message,
					"category": apiErr.Category,
					"action":   apiErr.Action,
				})
				return
			}

			ctx := context.WithValue(r.Context(), orgIDContextKey, orgID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OrgIDFromContext はリクエストコンテキストから組織IDを取得する。
// 組織ミドルウェアを通過したリクエストでのみ有効。
func OrgIDFromContext(ctx context.Context) (string, error) {
	orgID, ok := ctx.Value(orgIDContextKey).(string)
	if !ok || orgID == "" {
		return "", fmt.Errorf("organization ID not found in context")
	}
	return orgID, nil
}

// ContextWithOrgID はコンテキストに組織IDを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithOrgID(ctx context.Context, orgID string) context.Context {
	return context.WithValue(ctx, orgIDContextKey, orgID)
}

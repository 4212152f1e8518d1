package middleware

import "net/http"

// NewMetricsMiddleware はレスポンスのステータスコードを記録する
// ミドルウェアを返す。recordにはmetrics.Collector.RecordHTTPStatusを渡す。
// 収集器への直接依存を避けるため関数を受け取る。
func NewMetricsMiddleware(record func(statusCode int)) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}

			next.ServeHTTP(rec, r)

			record(rec.statusCode)
		})
	}
}

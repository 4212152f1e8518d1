package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/tanjomail/internal/metrics"
	"github.com/hitoshi/tanjomail/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// インフラ依存
	HealthChecker     HealthChecker
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Metrics           metrics.MetricsCollector
	MetricsGatherer   prometheus.Gatherer

	// サービス
	ImportService     ImportServiceInterface
	PersonService     PersonServiceInterface
	OnboardingService OnboardingServiceInterface
	SchedulerService  SchedulerServiceInterface

	// CSVアップロードのサイズ上限（バイト）
	ImportMaxBytes int64
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを
// 構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → Recovery → SecurityHeaders → Logging → Metrics →
//	Organization → RateLimit(General)
//
// /health と /metrics は組織スコープの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewLoggingMiddleware(slog.Default()))
	if deps.Metrics != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.Metrics.RecordHTTPStatus))
	}

	healthHandler := NewHealthHandler(deps.HealthChecker)
	importHandler := NewImportHandler(deps.ImportService, deps.Metrics, deps.ImportMaxBytes)
	personHandler := NewPersonHandler(deps.PersonService)
	onboardingHandler := NewOnboardingHandler(deps.OnboardingService, deps.Metrics)
	schedulerHandler := NewSchedulerHandler(deps.SchedulerService)

	// --- 組織スコープ外のルート ---

	r.Get("/health", healthHandler.Check)
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 組織スコープのルート ---
	// ミドルウェアスタック: Organization → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewOrganizationMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// 名簿管理
		r.Route("/api/people", func(r chi.Router) {
			r.Get("/", personHandler.List)
			r.Post("/{id}/opt-out", personHandler.OptOut)

			r.Route("/import", func(r chi.Router) {
				// 取り込み系はインポート専用レート制限を追加
				r.With(deps.RateLimiter.ImportMiddleware()).Post("/", importHandler.Import)
				r.With(deps.RateLimiter.ImportMiddleware()).Post("/validate", importHandler.Validate)
				r.Get("/sample", importHandler.Sample)
			})
		})

		// オンボーディング
		r.Route("/api/onboarding", func(r chi.Router) {
			r.Get("/", onboardingHandler.Get)
			r.Post("/steps/{stepID}", onboardingHandler.MarkStep)
		})

		// 外部cronトリガー
		r.Post("/api/scheduler/runs", schedulerHandler.Trigger)
	})

	return r
}

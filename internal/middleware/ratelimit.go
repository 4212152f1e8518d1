package middleware

import (
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiterConfig はレート制限の設定を保持する。
type RateLimiterConfig struct {
	GeneralRate     rate.Limit    // API全般のレート（req/sec）
	GeneralBurst    int           // API全般のバーストサイズ
	ImportRate      rate.Limit    // CSVインポートのレート（req/sec）
	ImportBurst     int           // CSVインポートのバーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultRateLimiterConfig はデフォルトのレート制限設定を返す。
// API全般 120 req/min/org、CSVインポート 10 req/min/org。
// インポートは1リクエストでファイル全体を処理するため厳しめに制限する。
func DefaultRateLimiterConfig() RateLimiterConfig {
	return RateLimiterConfig{
		GeneralRate:     rate.Limit(120.0 / 60.0),
		GeneralBurst:    120,
		ImportRate:      rate.Limit(10.0 / 60.0),
		ImportBurst:     10,
		CleanupInterval: 5 * time.Minute,
	}
}

// orgLimiter は組織ごとのレートリミッターとアクセス時刻を保持する。
type orgLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// RateLimiter は組織ごとのレート制限を管理する。
// API全般とCSVインポートの2種類の制限を提供する。
type RateLimiter struct {
	config RateLimiterConfig

	generalMu       sync.Mutex
	generalLimiters map[string]*orgLimiter

	importMu       sync.Mutex
	importLimiters map[string]*orgLimiter

	stopCh chan struct{}
}

// NewRateLimiter は新しいRateLimiterを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewRateLimiter(config RateLimiterConfig) *RateLimiter {
	rl := &RateLimiter{
		config:          config,
		generalLimiters: make(map[string]*orgLimiter),
		importLimiters:  make(map[string]*orgLimiter),
		stopCh:          make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (rl *RateLimiter) Stop() {
	close(rl.stopCh)
}

// GeneralMiddleware はAPI全般のレート制限ミドルウェアを返す。
// リクエストコンテキストに組織IDが含まれている必要がある
// （OrganizationMiddlewareの後に配置）。
func (rl *RateLimiter) GeneralMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.generalLimiters, &rl.generalMu, rl.config.GeneralRate, rl.config.GeneralBurst)
}

// ImportMiddleware はCSVインポート専用のレート制限ミドルウェアを返す。
func (rl *RateLimiter) ImportMiddleware() func(next http.Handler) http.Handler {
	return rl.middleware(rl.importLimiters, &rl.importMu, rl.config.ImportRate, rl.config.ImportBurst)
}

// middleware は指定されたリミッターマップに対する制限ミドルウェアを生成する。
func (rl *RateLimiter) middleware(limiters map[string]*orgLimiter, mu *sync.Mutex, limit rate.Limit, burst int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			orgID, err := OrgIDFromContext(r.Context())
			if err != nil {
				http.Error(w, "missing organization", http.StatusBadRequest)
				return
			}

			mu.Lock()
			ol, ok := limiters[orgID]
			if !ok {
				ol = &orgLimiter{limiter: rate.NewLimiter(limit, burst)}
				limiters[orgID] = ol
			}
			ol.lastAccess = time.Now()
			mu.Unlock()

			if !ol.limiter.Allow() {
				w.Header().Set("Retry-After", "60")
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// cleanupLoop は一定間隔で長時間アクセスのない組織のエントリを削除する。
func (rl *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rl.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stopCh:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rl.config.CleanupInterval * 2)
			rl.cleanup(rl.generalLimiters, &rl.generalMu, cutoff)
			rl.cleanup(rl.importLimiters, &rl.importMu, cutoff)
		}
	}
}

// cleanup はcutoffより前に最終アクセスされたエントリを削除する。
func (rl *RateLimiter) cleanup(limiters map[string]*orgLimiter, mu *sync.Mutex, cutoff time.Time) {
	mu.Lock()
	defer mu.Unlock()
	for orgID, ol := range limiters {
		if ol.lastAccess.Before(cutoff) {
			delete(limiters, orgID)
		}
	}
}

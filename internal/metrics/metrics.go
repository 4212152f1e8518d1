// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordImportRows(valid, rejected int)
	RecordImportDuration(duration time.Duration)
	RecordImportFatal()
	RecordStepMarked(stepID string)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	importValidRows    prometheus.Counter
	importRejectedRows prometheus.Counter
	importFatal        prometheus.Counter
	importDuration     prometheus.Histogram
	stepMarked         *prometheus.CounterVec
	httpStatus         *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		importValidRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanjomail_import_valid_rows_total",
			Help: "CSVインポートで受理された行の合計数",
		}),
		importRejectedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanjomail_import_rejected_rows_total",
			Help: "CSVインポートで棄却された行の合計数",
		}),
		importFatal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tanjomail_import_fatal_total",
			Help: "トークナイズ不能だったCSVファイルの合計数",
		}),
		importDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "tanjomail_import_duration_seconds",
			Help:    "CSVインポート処理の所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		stepMarked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanjomail_onboarding_step_marked_total",
			Help: "ステップ別のオンボーディング完了記録回数",
		}, []string{"step"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tanjomail_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.importValidRows,
		c.importRejectedRows,
		c.importFatal,
		c.importDuration,
		c.stepMarked,
		c.httpStatus,
	)

	return c
}

// RecordImportRows はインポートの受理・棄却行数を記録する。
func (c *Collector) RecordImportRows(valid, rejected int) {
	c.importValidRows.Add(float64(valid))
	c.importRejectedRows.Add(float64(rejected))
}

// RecordImportDuration はインポート処理の所要時間を記録する。
func (c *Collector) RecordImportDuration(duration time.Duration) {
	c.importDuration.Observe(duration.Seconds())
}

// RecordImportFatal はトークナイズ不能なCSVを記録する。
func (c *Collector) RecordImportFatal() {
	c.importFatal.Inc()
}

// RecordStepMarked はオンボーディングステップの完了記録を記録する。
func (c *Collector) RecordStepMarked(stepID string) {
	c.stepMarked.WithLabelValues(stepID).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

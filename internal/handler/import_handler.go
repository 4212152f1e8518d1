package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/hitoshi/tanjomail/internal/csvimport"
	"github.com/hitoshi/tanjomail/internal/metrics"
	"github.com/hitoshi/tanjomail/internal/model"
	"github.com/hitoshi/tanjomail/internal/person"
)

// ImportServiceInterface はインポートハンドラーが必要とするサービスインターフェース。
type ImportServiceInterface interface {
	// ValidateCSV はCSVを検証のみ行う（取り込みはしない）。
	ValidateCSV(data []byte) *csvimport.ValidationResult
	// ImportCSV はCSVを検証し、有効行を名簿へ取り込む。
	ImportCSV(ctx context.Context, orgID string, data []byte) (*person.ImportResult, error)
}

// ImportHandler はCSVインポートのHTTPハンドラー。
type ImportHandler struct {
	service  ImportServiceInterface
	metrics  metrics.MetricsCollector
	maxBytes int64
}

// NewImportHandler はImportHandlerを生成する。
// maxBytesが0以下の場合はデフォルトの2MiBを使用する。
func NewImportHandler(service ImportServiceInterface, collector metrics.MetricsCollector, maxBytes int64) *ImportHandler {
	if maxBytes <= 0 {
		maxBytes = 2 << 20
	}
	return &ImportHandler{
		service:  service,
		metrics:  collector,
		maxBytes: maxBytes,
	}
}

// readCSVBody はリクエストボディをサイズ上限付きで読み取る。
func (h *ImportHandler) readCSVBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	data, err := io.ReadAll(io.LimitReader(r.Body, h.maxBytes+1))
	if err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
			Code:     "INVALID_REQUEST",
			Message:  "リクエストボディの読み取りに失敗しました。",
			Category: "validation",
			Action:   "CSVファイルをリクエストボディとして送信してください。",
		})
		return nil, false
	}
	if int64(len(data)) > h.maxBytes {
		writeAPIErrorResponse(w, http.StatusRequestEntityTooLarge, model.NewCSVTooLargeError(h.maxBytes))
		return nil, false
	}
	if len(data) == 0 {
		writeAPIErrorResponse(w, http.StatusBadRequest, model.NewEmptyCSVError())
		return nil, false
	}
	return data, true
}

// recordValidation は検証結果をメトリクスに記録する。
func (h *ImportHandler) recordValidation(result *csvimport.ValidationResult, start time.Time) {
	if h.metrics == nil {
		return
	}
	h.metrics.RecordImportDuration(time.Since(start))
	h.metrics.RecordImportRows(result.Summary.ValidRows, result.Summary.ErrorRows)
	if result.Summary.TotalRows == 0 && result.Summary.ErrorRows == 1 {
		h.metrics.RecordImportFatal()
	}
}

// Validate はCSVを検証のみ行い、結果を返す（ドライラン）。
// POST /api/people/import/validate
func (h *ImportHandler) Validate(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireOrgID(w, r); !ok {
		return
	}

	data, ok := h.readCSVBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result := h.service.ValidateCSV(data)
	h.recordValidation(result, start)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Import はCSVを検証し、有効行を名簿へ取り込む。
// POST /api/people/import
func (h *ImportHandler) Import(w http.ResponseWriter, r *http.Request) {
	orgID, ok := requireOrgID(w, r)
	if !ok {
		return
	}

	data, ok := h.readCSVBody(w, r)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.service.ImportCSV(r.Context(), orgID, data)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	h.recordValidation(result.Validation, start)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(result)
}

// Sample はサンプルCSVをダウンロードとして返す。
// GET /api/people/import/sample
func (h *ImportHandler) Sample(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="tanjomail_sample.csv"`)
	io.WriteString(w, csvimport.SampleCSV())
}

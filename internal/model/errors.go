// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: validation, roster, onboarding, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeOrganizationNotFound = "ORGANIZATION_NOT_FOUND"
	ErrCodePersonNotFound       = "PERSON_NOT_FOUND"
	ErrCodeMissingOrganization  = "MISSING_ORGANIZATION"
	ErrCodeEmptyCSV             = "EMPTY_CSV"
	ErrCodeCSVTooLarge          = "CSV_TOO_LARGE"
)

// NewOrganizationNotFoundError は組織が見つからない場合のエラーを生成する。
func NewOrganizationNotFoundError(orgID string) *APIError {
	return &APIError{
		Code:     ErrCodeOrganizationNotFound,
		Message:  fmt.Sprintf("指定された組織が見つかりません: %s", orgID),
		Category: "roster",
		Action:   "組織IDを確認してください。",
	}
}

// NewPersonNotFoundError は名簿エントリが見つからない場合のエラーを生成する。
func NewPersonNotFoundError(personID string) *APIError {
	return &APIError{
		Code:     ErrCodePersonNotFound,
		Message:  fmt.Sprintf("指定されたメンバーが見つかりません: %s", personID),
		Category: "roster",
		Action:   "メンバーIDを確認してください。",
	}
}

// NewMissingOrganizationError は組織IDヘッダーが欠落している場合のエラーを生成する。
func NewMissingOrganizationError() *APIError {
	return &APIError{
		Code:     ErrCodeMissingOrganization,
		Message:  "組織IDが指定されていません。",
		Category: "validation",
		Action:   "X-Organization-IDヘッダーを付与してリクエストしてください。",
	}
}

// NewEmptyCSVError はCSV本文が空の場合のエラーを生成する。
func NewEmptyCSVError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyCSV,
		Message:  "CSVの内容が空です。",
		Category: "validation",
		Action:   "ヘッダー行とデータ行を含むCSVファイルをアップロードしてください。",
	}
}

// NewCSVTooLargeError はCSV本文がサイズ上限を超えた場合のエラーを生成する。
func NewCSVTooLargeError(maxBytes int64) *APIError {
	return &APIError{
		Code:     ErrCodeCSVTooLarge,
		Message:  fmt.Sprintf("CSVのサイズが上限（%dバイト）を超えています。", maxBytes),
		Category: "validation",
		Action:   "ファイルを分割してアップロードしてください。",
	}
}

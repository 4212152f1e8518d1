// Package model はドメインモデルを定義する。
package model

import "time"

// Organization はテナント（組織）を表す。
// 人、テンプレート、配信設定、配信履歴を所有する。
type Organization struct {
	ID                 string
	Name               string
	Timezone           string
	EmailFromAddress   *string // 未設定の場合はグローバルのフォールバックを使用する
	BirthdaySendHour   *int
	BirthdaySendMinute *int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

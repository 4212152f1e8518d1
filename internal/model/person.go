// Package model はドメインモデルを定義する。
package model

import "time"

// Person は誕生日メールの送信対象となる名簿エントリを表す。
// ちょうど1つの組織に属する。
type Person struct {
	ID             string
	OrganizationID string
	FullName       string
	FirstName      string
	Email          string // 小文字に正規化済み
	Phone          *string // E.164風の "+<digits>" 形式に正規化済み
	Birthday       time.Time // 日付のみ（UTC 00:00:00）
	Department     string
	Role           string
	OptedOut       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

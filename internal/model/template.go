// Package model はドメインモデルを定義する。
package model

import "time"

// Template は誕生日メールの文面テンプレートを表す。
// 文面のレンダリング自体は本システムの対象外で、メタデータのみを保持する。
type Template struct {
	ID             string
	OrganizationID string
	Name           string
	Subject        string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TemplateAssignment は組織と自動送信に使うテンプレートの紐付けを表す。
// is_default かつ is_active な紐付けが自動送信の対象となる。
type TemplateAssignment struct {
	ID             string
	OrganizationID string
	TemplateID     string
	IsDefault      bool
	IsActive       bool
	CreatedAt      time.Time
}

// Package model はドメインモデルを定義する。
package model

import "time"

// OnboardingProgress は組織ごとのオンボーディング進捗スナップショットを表す。
// 組織ごとに1行。初回読み取り時に遅延作成される。
//
// CompletedStepsは他のエンティティから導出される純関数のキャッシュであり、
// 完了判定の情報源ではない。ユーザー操作で実際に変更されるのは
// TestEmailSentAtとAutomationActivatedAtの2つのタイムスタンプのみで、
// どちらも一度設定されたら本コアからはクリアされない。
type OnboardingProgress struct {
	ID                    string
	OrganizationID        string
	CompletedSteps        []string
	TestEmailSentAt       *time.Time
	AutomationActivatedAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/tanjomail/internal/model"
)

// OrganizationRepository は組織データの永続化インターフェース。
type OrganizationRepository interface {
	// FindByID は指定IDの組織を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Organization, error)
}

// PersonRepository は名簿データの永続化インターフェース。
type PersonRepository interface {
	// FindByID は指定組織・指定IDのメンバーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, orgID, id string) (*model.Person, error)

	// CountActiveByOrganization はオプトアウトしていないメンバー数を返す。
	CountActiveByOrganization(ctx context.Context, orgID string) (int, error)

	// ListByOrganization は組織の名簿一覧をfull_name昇順で返す。
	ListByOrganization(ctx context.Context, orgID string) ([]*model.Person, error)

	// UpsertByEmail は(organization_id, email)をキーにメンバーを冪等に
	// UPSERTする。新規作成した場合はtrueを返す。
	UpsertByEmail(ctx context.Context, person *model.Person) (bool, error)

	// SetOptedOut はメンバーのオプトアウト状態を更新する。
	// 該当行がない場合はmodel.ErrCodePersonNotFoundのAPIErrorを返す。
	SetOptedOut(ctx context.Context, orgID, id string, optedOut bool) error
}

// TemplateAssignmentRepository はテンプレート紐付けの永続化インターフェース。
type TemplateAssignmentRepository interface {
	// FindDefaultActive は組織のアクティブなデフォルト紐付けを取得する。
	// 見つからない場合はnilを返す。
	FindDefaultActive(ctx context.Context, orgID string) (*model.TemplateAssignment, error)
}

// DeliveryLogRepository は配信履歴の永続化インターフェース。
type DeliveryLogRepository interface {
	// CountSucceededByOrganization は成功ステータス（SENT/DELIVERED）の
	// 配信数を返す。
	CountSucceededByOrganization(ctx context.Context, orgID string) (int, error)
}

// OnboardingProgressRepository はオンボーディング進捗スナップショットの
// 永続化インターフェース。組織ごとに1行。
type OnboardingProgressRepository interface {
	// FindByOrganization は組織の進捗行を取得する。見つからない場合はnilを返す。
	FindByOrganization(ctx context.Context, orgID string) (*model.OnboardingProgress, error)

	// Create は進捗行を作成する。
	Create(ctx context.Context, progress *model.OnboardingProgress) error

	// UpdateCompletedSteps は完了ステップのスナップショットを上書きする。
	UpdateCompletedSteps(ctx context.Context, orgID string, steps []string) error

	// SetTestEmailSentAt はテストメール送信日時を設定する。
	// 既に設定済みの行は変更しない（set-once）。
	SetTestEmailSentAt(ctx context.Context, orgID string, sentAt time.Time) error

	// SetAutomationActivatedAt は自動送信有効化日時を設定する。
	// 既に設定済みの行は変更しない（set-once）。
	SetAutomationActivatedAt(ctx context.Context, orgID string, activatedAt time.Time) error
}

// SchedulerRunRepository は外部cronトリガーの重複排除レコードの
// 永続化インターフェース。
type SchedulerRunRepository interface {
	// ClaimRun は(organization_id, run_date)の実行権を取得する。
	// 既に同日の実行が記録されている場合はfalseを返す。
	ClaimRun(ctx context.Context, orgID string, runDate time.Time) (bool, error)
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/tanjomail/internal/model"
)

// PostgresOnboardingProgressRepo はPostgreSQLを使用した進捗スナップショットリポジトリ。
type PostgresOnboardingProgressRepo struct {
	db *sql.DB
}

// NewPostgresOnboardingProgressRepo はPostgresOnboardingProgressRepoを生成する。
func NewPostgresOnboardingProgressRepo(db *sql.DB) *PostgresOnboardingProgressRepo {
	return &PostgresOnboardingProgressRepo{db: db}
}

// FindByOrganization は組織の進捗行を取得する。見つからない場合はnilを返す。
func (r *PostgresOnboardingProgressRepo) FindByOrganization(ctx context.Context, orgID string) (*model.OnboardingProgress, error) {
	p := &model.OnboardingProgress{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, completed_steps, test_email_sent_at, automation_activated_at, created_at, updated_at
		 FROM onboarding_progress WHERE organization_id = $1`,
		orgID,
	).Scan(&p.ID, &p.OrganizationID, pq.Array(&p.CompletedSteps),
		&p.TestEmailSentAt, &p.AutomationActivatedAt, &p.CreatedAt, &p.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("進捗の取得に失敗しました: %w", err)
	}

	return p, nil
}

// Create は進捗行を作成する。
// 並行作成の競合はユニーク制約で後勝ちを落とすのではなく無視する
// （ON CONFLICT DO NOTHING）。導出値のキャッシュなのでどちらの行でもよい。
func (r *PostgresOnboardingProgressRepo) Create(ctx context.Context, progress *model.OnboardingProgress) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO onboarding_progress (id, organization_id, completed_steps, created_at, updated_at)
		 VALUES ($1, $2, $3, NOW(), NOW())
		 ON CONFLICT (organization_id) DO NOTHING`,
		progress.ID, progress.OrganizationID, pq.Array(progress.CompletedSteps),
	)
	if err != nil {
		return fmt.Errorf("進捗の作成に失敗しました: %w", err)
	}
	return nil
}

// UpdateCompletedSteps は完了ステップのスナップショットを上書きする。
func (r *PostgresOnboardingProgressRepo) UpdateCompletedSteps(ctx context.Context, orgID string, steps []string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_progress SET completed_steps = $2, updated_at = NOW()
		 WHERE organization_id = $1`,
		orgID, pq.Array(steps),
	)
	if err != nil {
		return fmt.Errorf("進捗スナップショットの更新に失敗しました: %w", err)
	}
	return nil
}

// SetTestEmailSentAt はテストメール送信日時を設定する。
// WHERE句で未設定の行に限定することでset-onceを保証する。
func (r *PostgresOnboardingProgressRepo) SetTestEmailSentAt(ctx context.Context, orgID string, sentAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_progress SET test_email_sent_at = $2, updated_at = NOW()
		 WHERE organization_id = $1 AND test_email_sent_at IS NULL`,
		orgID, sentAt,
	)
	if err != nil {
		return fmt.Errorf("テストメール送信日時の記録に失敗しました: %w", err)
	}
	return nil
}

// SetAutomationActivatedAt は自動送信有効化日時を設定する。
// WHERE句で未設定の行に限定することでset-onceを保証する。
func (r *PostgresOnboardingProgressRepo) SetAutomationActivatedAt(ctx context.Context, orgID string, activatedAt time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE onboarding_progress SET automation_activated_at = $2, updated_at = NOW()
		 WHERE organization_id = $1 AND automation_activated_at IS NULL`,
		orgID, activatedAt,
	)
	if err != nil {
		return fmt.Errorf("自動送信有効化日時の記録に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ OnboardingProgressRepository = (*PostgresOnboardingProgressRepo)(nil)

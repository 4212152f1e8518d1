package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PostgresSchedulerRunRepo はPostgreSQLを使用した実行重複排除リポジトリ。
// 外部のcronトリガーが同日の二重実行を防ぐために使う。
type PostgresSchedulerRunRepo struct {
	db *sql.DB
}

// NewPostgresSchedulerRunRepo はPostgresSchedulerRunRepoを生成する。
func NewPostgresSchedulerRunRepo(db *sql.DB) *PostgresSchedulerRunRepo {
	return &PostgresSchedulerRunRepo{db: db}
}

// ClaimRun は(organization_id, run_date)の実行権を取得する。
// ユニーク制約に基づくINSERTの成否で判定するため、並行トリガー間でも
// ちょうど1つだけがtrueを受け取る。
func (r *PostgresSchedulerRunRepo) ClaimRun(ctx context.Context, orgID string, runDate time.Time) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO scheduler_runs (id, organization_id, run_date, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (organization_id, run_date) DO NOTHING`,
		uuid.NewString(), orgID, runDate.Format("2006-01-02"),
	)
	if err != nil {
		return false, fmt.Errorf("実行記録の作成に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("実行記録の結果取得に失敗しました: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ SchedulerRunRepository = (*PostgresSchedulerRunRepo)(nil)

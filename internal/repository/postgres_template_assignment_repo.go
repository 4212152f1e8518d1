package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tanjomail/internal/model"
)

// PostgresTemplateAssignmentRepo はPostgreSQLを使用したテンプレート紐付けリポジトリ。
type PostgresTemplateAssignmentRepo struct {
	db *sql.DB
}

// NewPostgresTemplateAssignmentRepo はPostgresTemplateAssignmentRepoを生成する。
func NewPostgresTemplateAssignmentRepo(db *sql.DB) *PostgresTemplateAssignmentRepo {
	return &PostgresTemplateAssignmentRepo{db: db}
}

// FindDefaultActive は組織のアクティブなデフォルト紐付けを取得する。
// 見つからない場合はnilを返す。
func (r *PostgresTemplateAssignmentRepo) FindDefaultActive(ctx context.Context, orgID string) (*model.TemplateAssignment, error) {
	a := &model.TemplateAssignment{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, organization_id, template_id, is_default, is_active, created_at
		 FROM template_assignments
		 WHERE organization_id = $1 AND is_default = true AND is_active = true
		 ORDER BY created_at DESC
		 LIMIT 1`,
		orgID,
	).Scan(&a.ID, &a.OrganizationID, &a.TemplateID, &a.IsDefault, &a.IsActive, &a.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("テンプレート紐付けの取得に失敗しました: %w", err)
	}

	return a, nil
}

// compile-time interface check
var _ TemplateAssignmentRepository = (*PostgresTemplateAssignmentRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"github.com/hitoshi/tanjomail/internal/model"
)

// PostgresDeliveryLogRepo はPostgreSQLを使用した配信履歴リポジトリ。
type PostgresDeliveryLogRepo struct {
	db *sql.DB
}

// NewPostgresDeliveryLogRepo はPostgresDeliveryLogRepoを生成する。
func NewPostgresDeliveryLogRepo(db *sql.DB) *PostgresDeliveryLogRepo {
	return &PostgresDeliveryLogRepo{db: db}
}

// successStatuses は「送信済み」とみなす配信ステータス。
var successStatuses = []string{
	string(model.DeliveryStatusSent),
	string(model.DeliveryStatusDelivered),
}

// CountSucceededByOrganization は成功ステータスの配信数を返す。
func (r *PostgresDeliveryLogRepo) CountSucceededByOrganization(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM delivery_logs
		 WHERE organization_id = $1 AND status = ANY($2)`,
		orgID, pq.Array(successStatuses),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("配信数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// compile-time interface check
var _ DeliveryLogRepository = (*PostgresDeliveryLogRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/tanjomail/internal/model"
)

// PostgresPersonRepo はPostgreSQLを使用した名簿リポジトリ。
type PostgresPersonRepo struct {
	db *sql.DB
}

// NewPostgresPersonRepo はPostgresPersonRepoを生成する。
func NewPostgresPersonRepo(db *sql.DB) *PostgresPersonRepo {
	return &PostgresPersonRepo{db: db}
}

const personColumns = `id, organization_id, full_name, first_name, email, phone, birthday, department, role, opted_out, created_at, updated_at`

// scanPerson は1行分のメンバーを読み取る。
func scanPerson(scan func(dest ...any) error) (*model.Person, error) {
	p := &model.Person{}
	err := scan(&p.ID, &p.OrganizationID, &p.FullName, &p.FirstName, &p.Email,
		&p.Phone, &p.Birthday, &p.Department, &p.Role, &p.OptedOut, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// FindByID は指定組織・指定IDのメンバーを取得する。見つからない場合はnilを返す。
func (r *PostgresPersonRepo) FindByID(ctx context.Context, orgID, id string) (*model.Person, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE organization_id = $1 AND id = $2`,
		orgID, id,
	)
	p, err := scanPerson(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("メンバーの取得に失敗しました: %w", err)
	}
	return p, nil
}

// CountActiveByOrganization はオプトアウトしていないメンバー数を返す。
func (r *PostgresPersonRepo) CountActiveByOrganization(ctx context.Context, orgID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM people WHERE organization_id = $1 AND opted_out = false`,
		orgID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("メンバー数の取得に失敗しました: %w", err)
	}
	return count, nil
}

// ListByOrganization は組織の名簿一覧をfull_name昇順で返す。
func (r *PostgresPersonRepo) ListByOrganization(ctx context.Context, orgID string) ([]*model.Person, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+personColumns+` FROM people WHERE organization_id = $1 ORDER BY full_name ASC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("名簿一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	var people []*model.Person
	for rows.Next() {
		p, err := scanPerson(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("名簿行の読み取りに失敗しました: %w", err)
		}
		people = append(people, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("名簿一覧の走査に失敗しました: %w", err)
	}
	return people, nil
}

// UpsertByEmail は(organization_id, email)をキーにメンバーを冪等にUPSERTする。
// 既存行がある場合は名前・電話・誕生日等を上書きし、opted_outは維持する。
// 新規作成した場合はtrueを返す。
func (r *PostgresPersonRepo) UpsertByEmail(ctx context.Context, p *model.Person) (bool, error) {
	var created bool
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO people (id, organization_id, full_name, first_name, email, phone, birthday, department, role, opted_out, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, false, NOW(), NOW())
		 ON CONFLICT (organization_id, email) DO UPDATE SET
		     full_name  = EXCLUDED.full_name,
		     first_name = EXCLUDED.first_name,
		     phone      = EXCLUDED.phone,
		     birthday   = EXCLUDED.birthday,
		     department = EXCLUDED.department,
		     role       = EXCLUDED.role,
		     updated_at = NOW()
		 RETURNING (created_at = updated_at)`,
		p.ID, p.OrganizationID, p.FullName, p.FirstName, p.Email,
		p.Phone, p.Birthday, p.Department, p.Role,
	).Scan(&created)
	if err != nil {
		return false, fmt.Errorf("メンバーのUPSERTに失敗しました: %w", err)
	}
	return created, nil
}

// SetOptedOut はメンバーのオプトアウト状態を更新する。
func (r *PostgresPersonRepo) SetOptedOut(ctx context.Context, orgID, id string, optedOut bool) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE people SET opted_out = $3, updated_at = NOW()
		 WHERE organization_id = $1 AND id = $2`,
		orgID, id, optedOut,
	)
	if err != nil {
		return fmt.Errorf("オプトアウト状態の更新に失敗しました: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("更新結果の取得に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return model.NewPersonNotFoundError(id)
	}
	return nil
}

// compile-time interface check
var _ PersonRepository = (*PostgresPersonRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/careertrack/internal/model"
)

const applicationColumns = `id, user_id, company, position, date_applied::text, status, salary, notes, created_at, updated_at`

// PostgresApplicationRepo はPostgreSQLを使用した応募リポジトリ。
type PostgresApplicationRepo struct {
	db *sql.DB
}

// NewPostgresApplicationRepo はPostgresApplicationRepoを生成する。
func NewPostgresApplicationRepo(db *sql.DB) *PostgresApplicationRepo {
	return &PostgresApplicationRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanApplication(row rowScanner) (model.Application, error) {
	var a model.Application
	var status string
	err := row.Scan(&a.ID, &a.UserID, &a.Company, &a.Position, &a.DateApplied, &status, &a.Salary, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	a.Status = model.ApplicationStatus(status)
	return a, err
}

// ListByUserID はユーザーの全応募を応募日の新しい順で返す。
func (r *PostgresApplicationRepo) ListByUserID(ctx context.Context, userID string) ([]model.Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+applicationColumns+`
		 FROM applications
		 WHERE user_id = $1
		 ORDER BY date_applied DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	apps := []model.Application{}
	for rows.Next() {
		a, err := scanApplication(rows)
		if err != nil {
			return nil, fmt.Errorf("応募のスキャンに失敗しました: %w", err)
		}
		apps = append(apps, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return apps, nil
}

// FindByID は応募を取得する。見つからない場合はnilを返す。
func (r *PostgresApplicationRepo) FindByID(ctx context.Context, userID, id string) (*model.Application, error) {
	a, err := scanApplication(r.db.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE user_id = $1 AND id = $2`,
		userID, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	return &a, nil
}

// Create は応募を作成する。IDとタイムスタンプはここで設定する。
func (r *PostgresApplicationRepo) Create(ctx context.Context, a *model.Application) error {
	now := time.Now().UTC()
	a.ID = uuid.New().String()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO applications (id, user_id, company, position, date_applied, status, salary, notes, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		a.ID, a.UserID, a.Company, a.Position, a.DateApplied, string(a.Status), a.Salary, a.Notes, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("応募の作成に失敗しました: %w", err)
	}
	return nil
}

// Update は応募を上書き更新する。
func (r *PostgresApplicationRepo) Update(ctx context.Context, a *model.Application) error {
	a.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE applications SET
		    company = $3, position = $4, date_applied = $5, status = $6, salary = $7, notes = $8, updated_at = $9
		 WHERE user_id = $1 AND id = $2`,
		a.UserID, a.ID, a.Company, a.Position, a.DateApplied, string(a.Status), a.Salary, a.Notes, a.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("応募の更新に失敗しました: %w", err)
	}
	return requireAffected(result)
}

// Delete は応募を削除する。
func (r *PostgresApplicationRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("応募の削除に失敗しました: %w", err)
	}
	return requireAffected(result)
}

// DeleteByUserID はユーザーの全応募を削除する。
func (r *PostgresApplicationRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM applications WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ユーザーの応募の削除に失敗しました: %w", err)
	}
	return nil
}

// compile-time interface check
var _ ApplicationRepository = (*PostgresApplicationRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/careertrack/internal/model"
)

const linkedinColumns = `id, user_id, recruiter_name, recruiter_phone, recruiter_email, recruiter_linkedin,
	post_url, status, applied_date::text, followed_up, created_at, updated_at`

// PostgresLinkedinRepo はPostgreSQLを使用したLinkedInエントリリポジトリ。
type PostgresLinkedinRepo struct {
	db *sql.DB
}

// NewPostgresLinkedinRepo はPostgresLinkedinRepoを生成する。
func NewPostgresLinkedinRepo(db *sql.DB) *PostgresLinkedinRepo {
	return &PostgresLinkedinRepo{db: db}
}

func scanLinkedinEntry(row rowScanner) (model.LinkedinEntry, error) {
	var e model.LinkedinEntry
	var status string
	err := row.Scan(
		&e.ID, &e.UserID,
		&e.Recruiter.Name, &e.Recruiter.Phone, &e.Recruiter.Email, &e.Recruiter.LinkedIn,
		&e.PostURL, &status, &e.AppliedDate, &e.FollowedUp,
		&e.CreatedAt, &e.UpdatedAt,
	)
	e.Status = model.LinkedinStatus(status)
	return e, err
}

// ListByUserID はユーザーの全エントリを応募日の新しい順で返す。
func (r *PostgresLinkedinRepo) ListByUserID(ctx context.Context, userID string) ([]model.LinkedinEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+linkedinColumns+`
		 FROM linkedin_entries
		 WHERE user_id = $1
		 ORDER BY applied_date DESC, created_at DESC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("LinkedInエントリ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	entries := []model.LinkedinEntry{}
	for rows.Next() {
		e, err := scanLinkedinEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("LinkedInエントリのスキャンに失敗しました: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("LinkedInエントリ一覧の取得に失敗しました: %w", err)
	}
	return entries, nil
}

// FindByID はエントリを取得する。見つからない場合はnilを返す。
func (r *PostgresLinkedinRepo) FindByID(ctx context.Context, userID, id string) (*model.LinkedinEntry, error) {
	e, err := scanLinkedinEntry(r.db.QueryRowContext(ctx,
		`SELECT `+linkedinColumns+` FROM linkedin_entries WHERE user_id = $1 AND id = $2`,
		userID, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("LinkedInエントリの取得に失敗しました: %w", err)
	}
	return &e, nil
}

// Create はエントリを作成する。
func (r *PostgresLinkedinRepo) Create(ctx context.Context, e *model.LinkedinEntry) error {
	now := time.Now().UTC()
	e.ID = uuid.New().String()
	e.CreatedAt = now
	e.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO linkedin_entries (id, user_id, recruiter_name, recruiter_phone, recruiter_email, recruiter_linkedin,
		     post_url, status, applied_date, followed_up, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		e.ID, e.UserID, e.Recruiter.Name, e.Recruiter.Phone, e.Recruiter.Email, e.Recruiter.LinkedIn,
		e.PostURL, string(e.Status), e.AppliedDate, e.FollowedUp, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("LinkedInエントリの作成に失敗しました: %w", err)
	}
	return nil
}

// Update はエントリを上書き更新する。
func (r *PostgresLinkedinRepo) Update(ctx context.Context, e *model.LinkedinEntry) error {
	e.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`UPDATE linkedin_entries SET
		    recruiter_name = $3, recruiter_phone = $4, recruiter_email = $5, recruiter_linkedin = $6,
		    post_url = $7, status = $8, applied_date = $9, followed_up = $10, updated_at = $11
		 WHERE user_id = $1 AND id = $2`,
		e.UserID, e.ID, e.Recruiter.Name, e.Recruiter.Phone, e.Recruiter.Email, e.Recruiter.LinkedIn,
		e.PostURL, string(e.Status), e.AppliedDate, e.FollowedUp, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("LinkedInエントリの更新に失敗しました: %w", err)
	}
	return requireAffected(result)
}

// Delete はエントリを削除する。
func (r *PostgresLinkedinRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM linkedin_entries WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("LinkedInエントリの削除に失敗しました: %w", err)
	}
	return requireAffected(result)
}

// DeleteByUserID はユーザーの全エントリを削除する。
func (r *PostgresLinkedinRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM linkedin_entries WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ユーザーのLinkedInエントリの削除に失敗しました: %w", err)
	}
	return nil
}

var _ LinkedinRepository = (*PostgresLinkedinRepo)(nil)

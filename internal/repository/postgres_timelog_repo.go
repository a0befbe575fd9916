package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/careertrack/internal/model"
)

// PostgresTimeLogRepo はPostgreSQLを使用した時間ログリポジトリ。
// activitiesはJSONBとして保存し、UPSERT時は || 演算子でカテゴリ単位にマージする。
type PostgresTimeLogRepo struct {
	db *sql.DB
}

// NewPostgresTimeLogRepo はPostgresTimeLogRepoを生成する。
func NewPostgresTimeLogRepo(db *sql.DB) *PostgresTimeLogRepo {
	return &PostgresTimeLogRepo{db: db}
}

func scanTimeLog(row rowScanner) (model.TimeLog, error) {
	var l model.TimeLog
	var raw []byte
	if err := row.Scan(&l.UserID, &l.Date, &raw, &l.CreatedAt, &l.UpdatedAt); err != nil {
		return l, err
	}
	l.Activities = map[string]int{}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &l.Activities); err != nil {
			return l, fmt.Errorf("activitiesの解析に失敗しました: %w", err)
		}
	}
	return l, nil
}

// FindByDate は指定日のログを取得する。見つからない場合はnilを返す。
func (r *PostgresTimeLogRepo) FindByDate(ctx context.Context, userID, date string) (*model.TimeLog, error) {
	l, err := scanTimeLog(r.db.QueryRowContext(ctx,
		`SELECT user_id, log_date::text, activities, created_at, updated_at
		 FROM time_logs WHERE user_id = $1 AND log_date = $2`,
		userID, date,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("時間ログの取得に失敗しました: %w", err)
	}
	return &l, nil
}

// ListByRange は両端を含む期間のログを日付の古い順に返す。
func (r *PostgresTimeLogRepo) ListByRange(ctx context.Context, userID, start, end string) ([]model.TimeLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, log_date::text, activities, created_at, updated_at
		 FROM time_logs
		 WHERE user_id = $1
		   AND ($2::date IS NULL OR log_date >= $2::date)
		   AND ($3::date IS NULL OR log_date <= $3::date)
		 ORDER BY log_date ASC`,
		userID, nullDate(start), nullDate(end),
	)
	if err != nil {
		return nil, fmt.Errorf("時間ログ一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	logs := []model.TimeLog{}
	for rows.Next() {
		l, err := scanTimeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("時間ログのスキャンに失敗しました: %w", err)
		}
		logs = append(logs, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("時間ログ一覧の取得に失敗しました: %w", err)
	}
	return logs, nil
}

// Upsert は指定日のログを作成するか、既存のactivitiesにマージする。
func (r *PostgresTimeLogRepo) Upsert(ctx context.Context, userID, date string, activities map[string]int) (*model.TimeLog, error) {
	if activities == nil {
		activities = map[string]int{}
	}
	payload, err := json.Marshal(activities)
	if err != nil {
		return nil, fmt.Errorf("activitiesのエンコードに失敗しました: %w", err)
	}

	l, err := scanTimeLog(r.db.QueryRowContext(ctx,
		`INSERT INTO time_logs (user_id, log_date, activities, created_at, updated_at)
		 VALUES ($1, $2, $3::jsonb, now(), now())
		 ON CONFLICT (user_id, log_date) DO UPDATE SET
		     activities = time_logs.activities || EXCLUDED.activities,
		     updated_at = now()
		 RETURNING user_id, log_date::text, activities, created_at, updated_at`,
		userID, date, string(payload),
	))
	if err != nil {
		return nil, fmt.Errorf("時間ログの保存に失敗しました: %w", err)
	}
	return &l, nil
}

// DeleteByUserID はユーザーの全時間ログを削除する。
func (r *PostgresTimeLogRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM time_logs WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ユーザーの時間ログの削除に失敗しました: %w", err)
	}
	return nil
}

var _ TimeLogRepository = (*PostgresTimeLogRepo)(nil)

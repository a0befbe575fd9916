package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/hitoshi/careertrack/internal/model"
)

// PostgresGoalRepo はPostgreSQLを使用した目標リポジトリ。
type PostgresGoalRepo struct {
	db *sql.DB
}

// NewPostgresGoalRepo はPostgresGoalRepoを生成する。
func NewPostgresGoalRepo(db *sql.DB) *PostgresGoalRepo {
	return &PostgresGoalRepo{db: db}
}

// FindByUserID は目標ドキュメントを取得する。未登録の場合はnilを返す。
func (r *PostgresGoalRepo) FindByUserID(ctx context.Context, userID string) (model.Goals, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, `SELECT goals FROM user_goals WHERE user_id = $1`, userID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("目標の取得に失敗しました: %w", err)
	}

	goals := model.Goals{}
	if err := json.Unmarshal(raw, &goals); err != nil {
		return nil, fmt.Errorf("目標の解析に失敗しました: %w", err)
	}
	return goals, nil
}

// Save は目標ドキュメントを丸ごと置き換える。
func (r *PostgresGoalRepo) Save(ctx context.Context, userID string, goals model.Goals) error {
	if goals == nil {
		goals = model.Goals{}
	}
	payload, err := json.Marshal(goals)
	if err != nil {
		return fmt.Errorf("目標のエンコードに失敗しました: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO user_goals (user_id, goals, updated_at)
		 VALUES ($1, $2::jsonb, now())
		 ON CONFLICT (user_id) DO UPDATE SET goals = EXCLUDED.goals, updated_at = now()`,
		userID, string(payload),
	)
	if err != nil {
		return fmt.Errorf("目標の保存に失敗しました: %w", err)
	}
	return nil
}

// DeleteByUserID はユーザーの目標を削除する。
func (r *PostgresGoalRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM user_goals WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ユーザーの目標の削除に失敗しました: %w", err)
	}
	return nil
}

var _ GoalRepository = (*PostgresGoalRepo)(nil)

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/careertrack/internal/database"
	"github.com/hitoshi/careertrack/internal/model"
)

// PostgresCourseRepo はPostgreSQLを使用した講座リポジトリ。
// 日次ログはcourse_daily_logsテーブルに日付ごとの行として保持する。
type PostgresCourseRepo struct {
	db *sql.DB
}

// NewPostgresCourseRepo はPostgresCourseRepoを生成する。
func NewPostgresCourseRepo(db *sql.DB) *PostgresCourseRepo {
	return &PostgresCourseRepo{db: db}
}

// ListByUserID はユーザーの全講座を作成順に日次ログ付きで返す。
func (r *PostgresCourseRepo) ListByUserID(ctx context.Context, userID string) ([]model.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, user_id, name, total_lessons, target_date::text, completed_lessons, created_at, updated_at
		 FROM courses
		 WHERE user_id = $1
		 ORDER BY created_at ASC`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("講座一覧の取得に失敗しました: %w", err)
	}
	defer rows.Close()

	courses := []model.Course{}
	index := make(map[string]int)
	for rows.Next() {
		var c model.Course
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.TotalLessons, &c.TargetDate, &c.CompletedLessons, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, fmt.Errorf("講座のスキャンに失敗しました: %w", err)
		}
		c.DailyLogs = map[string]int{}
		index[c.ID] = len(courses)
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("講座一覧の取得に失敗しました: %w", err)
	}
	if len(courses) == 0 {
		return courses, nil
	}

	logRows, err := r.db.QueryContext(ctx,
		`SELECT l.course_id, l.log_date::text, l.lessons
		 FROM course_daily_logs l
		 JOIN courses c ON c.id = l.course_id
		 WHERE c.user_id = $1`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("日次ログの取得に失敗しました: %w", err)
	}
	defer logRows.Close()
	for logRows.Next() {
		var courseID, date string
		var lessons int
		if err := logRows.Scan(&courseID, &date, &lessons); err != nil {
			return nil, fmt.Errorf("日次ログのスキャンに失敗しました: %w", err)
		}
		if i, ok := index[courseID]; ok {
			courses[i].DailyLogs[date] = lessons
		}
	}
	if err := logRows.Err(); err != nil {
		return nil, fmt.Errorf("日次ログの取得に失敗しました: %w", err)
	}
	return courses, nil
}

// FindByID は講座を日次ログ付きで取得する。見つからない場合はnilを返す。
func (r *PostgresCourseRepo) FindByID(ctx context.Context, userID, id string) (*model.Course, error) {
	return findCourse(ctx, r.db, userID, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func findCourse(ctx context.Context, q queryer, userID, id string) (*model.Course, error) {
	c := &model.Course{DailyLogs: map[string]int{}}
	err := q.QueryRowContext(ctx,
		`SELECT id, user_id, name, total_lessons, target_date::text, completed_lessons, created_at, updated_at
		 FROM courses WHERE user_id = $1 AND id = $2`,
		userID, id,
	).Scan(&c.ID, &c.UserID, &c.Name, &c.TotalLessons, &c.TargetDate, &c.CompletedLessons, &c.CreatedAt, &c.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("講座の取得に失敗しました: %w", err)
	}

	rows, err := q.QueryContext(ctx,
		`SELECT log_date::text, lessons FROM course_daily_logs WHERE course_id = $1`,
		c.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("日次ログの取得に失敗しました: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var date string
		var lessons int
		if err := rows.Scan(&date, &lessons); err != nil {
			return nil, fmt.Errorf("日次ログのスキャンに失敗しました: %w", err)
		}
		c.DailyLogs[date] = lessons
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("日次ログの取得に失敗しました: %w", err)
	}
	return c, nil
}

// Create は講座を作成する。completed_lessonsは0から始まる。
func (r *PostgresCourseRepo) Create(ctx context.Context, c *model.Course) error {
	now := time.Now().UTC()
	c.ID = uuid.New().String()
	c.CompletedLessons = 0
	c.DailyLogs = map[string]int{}
	c.CreatedAt = now
	c.UpdatedAt = now

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO courses (id, user_id, name, total_lessons, target_date, completed_lessons, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, 0, $6, $7)`,
		c.ID, c.UserID, c.Name, c.TotalLessons, c.TargetDate, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("講座の作成に失敗しました: %w", err)
	}
	return nil
}

// Delete は講座を削除する。
func (r *PostgresCourseRepo) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return fmt.Errorf("講座の削除に失敗しました: %w", err)
	}
	return requireAffected(result)
}

// AddProgress は日次ログとcompleted_lessonsを同一トランザクションで加算する。
// 同じ日に複数回記録した場合は合計される。
func (r *PostgresCourseRepo) AddProgress(ctx context.Context, userID, id, date string, lessons int) (*model.Course, error) {
	var c *model.Course
	err := database.WithTx(ctx, r.db, func(tx *sql.Tx) error {
		result, err := tx.ExecContext(ctx,
			`UPDATE courses SET completed_lessons = completed_lessons + $3, updated_at = now()
			 WHERE user_id = $1 AND id = $2`,
			userID, id, lessons,
		)
		if err != nil {
			return fmt.Errorf("講座の進捗更新に失敗しました: %w", err)
		}
		if err := requireAffected(result); err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO course_daily_logs (course_id, log_date, lessons)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (course_id, log_date) DO UPDATE SET lessons = course_daily_logs.lessons + EXCLUDED.lessons`,
			id, date, lessons,
		); err != nil {
			return fmt.Errorf("日次ログの更新に失敗しました: %w", err)
		}

		c, err = findCourse(ctx, tx, userID, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

// DeleteByUserID はユーザーの全講座を削除する。
func (r *PostgresCourseRepo) DeleteByUserID(ctx context.Context, userID string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("ユーザーの講座の削除に失敗しました: %w", err)
	}
	return nil
}

var _ CourseRepository = (*PostgresCourseRepo)(nil)

// Package course はオンライン講座の進捗管理を提供する。
package course

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/careertrack/internal/analytics"
	"github.com/hitoshi/careertrack/internal/metrics"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/repository"
	"github.com/hitoshi/careertrack/internal/security"
)

const (
	maxNameLength = 200
	// maxLessonsPerLog は1回の記録で加算できるレッスン数の上限。
	maxLessonsPerLog = 1000
)

// CacheInvalidator は記録の変更時にユーザーの集計キャッシュを無効化する。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// CreateInput は講座の作成内容。
type CreateInput struct {
	Name         string
	TotalLessons int
	TargetDate   string
}

// CourseView は講座と、基準日時点の進捗指標の組。
type CourseView struct {
	Course   model.Course
	Progress analytics.CourseProgress
}

// Service は講座のサービス層。
type Service struct {
	repo      repository.CourseRepository
	sanitizer security.TextSanitizer
	cache     CacheInvalidator
	metrics   metrics.MetricsCollector
	loc       *time.Location
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.CourseRepository,
	sanitizer security.TextSanitizer,
	cache CacheInvalidator,
	collector metrics.MetricsCollector,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		sanitizer: sanitizer,
		cache:     cache,
		metrics:   metrics.OrNop(collector),
		loc:       loc,
		now:       time.Now,
	}
}

func (s *Service) view(c model.Course) CourseView {
	return CourseView{Course: c, Progress: analytics.ComputeCourseProgress(c, s.now().In(s.loc))}
}

// List はユーザーの全講座を進捗指標付きで返す。
func (s *Service) List(ctx context.Context, userID string) ([]CourseView, error) {
	courses, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("講座一覧の取得に失敗しました: %w", err)
	}

	views := make([]CourseView, len(courses))
	for i, c := range courses {
		views[i] = s.view(c)
	}
	return views, nil
}

// Create は講座を作成する。完了レッスン数は0から始まる。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*CourseView, error) {
	name := s.sanitizer.SanitizeText(in.Name)
	switch {
	case name == "":
		return nil, model.NewValidationError("name", "必須です")
	case len([]rune(name)) > maxNameLength:
		return nil, model.NewValidationError("name", "長すぎます")
	case in.TotalLessons <= 0:
		return nil, model.NewValidationError("totalLessons", "1以上を指定してください")
	}
	targetDate := strings.TrimSpace(in.TargetDate)
	if _, ok := analytics.ParseDate(targetDate, s.loc); !ok {
		return nil, model.NewInvalidDateError(in.TargetDate)
	}

	c := &model.Course{
		UserID:       userID,
		Name:         name,
		TotalLessons: in.TotalLessons,
		TargetDate:   targetDate,
		DailyLogs:    map[string]int{},
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, fmt.Errorf("講座の作成に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "create")
	v := s.view(*c)
	return &v, nil
}

// AddProgress は指定日（空なら今日）の日次ログにレッスン数を加算する。
// 同じ日に複数回記録した場合は合算される。
func (s *Service) AddProgress(ctx context.Context, userID, id string, lessons int, date string) (*CourseView, error) {
	if lessons <= 0 {
		return nil, model.NewValidationError("lessons", "1以上を指定してください")
	}
	if lessons > maxLessonsPerLog {
		return nil, model.NewValidationError("lessons", "大きすぎます")
	}
	if date == "" {
		date = analytics.FormatDate(s.now().In(s.loc))
	} else if _, ok := analytics.ParseDate(date, s.loc); !ok {
		return nil, model.NewInvalidDateError(date)
	}

	c, err := s.repo.AddProgress(ctx, userID, id, date, lessons)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewCourseNotFoundError(id)
		}
		return nil, fmt.Errorf("進捗の記録に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "progress")
	v := s.view(*c)
	return &v, nil
}

// Delete は講座を日次ログごと削除する。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewCourseNotFoundError(id)
		}
		return fmt.Errorf("講座の削除に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "delete")
	return nil
}

func (s *Service) changed(ctx context.Context, userID, op string) {
	s.metrics.RecordMutation("course", op)
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

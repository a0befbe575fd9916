// Package application は求人応募記録のドメインロジックを提供する。
package application

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
	maxCompanyLength  = 200
	maxPositionLength = 200
	maxNotesLength    = 5000
)

// CacheInvalidator は記録の変更時にユーザーの集計キャッシュを無効化する。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// CreateInput は応募の作成内容。
// DateAppliedが空の場合は今日、Statusが空の場合はappliedになる。
type CreateInput struct {
	Company     string
	Position    string
	DateApplied string
	Status      model.ApplicationStatus
	Salary      string
	Notes       string
}

// ListQuery は一覧取得の絞り込み条件。Filterは all/week/month/custom。
type ListQuery struct {
	Search string
	Filter string
	Start  string
	End    string
	Date   string
}

// DateGroup は同じ応募日の応募をまとめたもの。
type DateGroup struct {
	Date         string
	Applications []model.Application
}

// Service は応募記録のサービス層。
type Service struct {
	repo      repository.ApplicationRepository
	sanitizer security.TextSanitizer
	cache     CacheInvalidator
	metrics   metrics.MetricsCollector
	loc       *time.Location
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.ApplicationRepository,
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

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

// List は条件に一致する応募を応募日の新しい順で返す。
func (s *Service) List(ctx context.Context, userID string, q ListQuery) ([]model.Application, error) {
	filter, err := s.buildFilter(q)
	if err != nil {
		return nil, err
	}

	apps, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
	}
	return analytics.FilterApplications(apps, filter), nil
}

// Grouped は絞り込んだ応募を応募日ごとにまとめ、新しい日付順で返す。
func (s *Service) Grouped(ctx context.Context, userID string, q ListQuery) ([]DateGroup, error) {
	apps, err := s.List(ctx, userID, q)
	if err != nil {
		return nil, err
	}

	groups := analytics.GroupByDate(apps, analytics.ApplicationDate)
	keys := analytics.SortedDateKeys(groups)
	result := make([]DateGroup, len(keys))
	for i, k := range keys {
		result[i] = DateGroup{Date: k, Applications: groups[k]}
	}
	return result, nil
}

func (s *Service) buildFilter(q ListQuery) (analytics.ApplicationFilter, error) {
	kind, err := analytics.ParseFilterKind(q.Filter)
	if err != nil {
		return analytics.ApplicationFilter{}, err
	}
	if q.Date != "" {
		if _, ok := analytics.ParseDate(q.Date, s.loc); !ok {
			return analytics.ApplicationFilter{}, model.NewInvalidDateError(q.Date)
		}
	}
	return analytics.ApplicationFilter{
		Search:       q.Search,
		Range:        analytics.ResolveRange(kind, q.Start, q.End, s.today()),
		SelectedDate: q.Date,
	}, nil
}

// Create は入力を検証して応募を作成する。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*model.Application, error) {
	app := &model.Application{
		UserID:      userID,
		Company:     in.Company,
		Position:    in.Position,
		DateApplied: in.DateApplied,
		Status:      in.Status,
		Salary:      in.Salary,
		Notes:       in.Notes,
	}
	if app.DateApplied == "" {
		app.DateApplied = analytics.FormatDate(s.today())
	}
	if app.Status == "" {
		app.Status = model.ApplicationStatusApplied
	}

	s.clean(app)
	if err := s.validate(app); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, app); err != nil {
		return nil, fmt.Errorf("応募の作成に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "create")
	return app, nil
}

// Update は応募を部分更新する。パッチに含まれないフィールドは維持される。
func (s *Service) Update(ctx context.Context, userID, id string, patch model.ApplicationPatch) (*model.Application, error) {
	app, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("応募の取得に失敗しました: %w", err)
	}
	if app == nil {
		return nil, model.NewApplicationNotFoundError(id)
	}

	patch.Apply(app)
	s.clean(app)
	if err := s.validate(app); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, app); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, model.NewApplicationNotFoundError(id)
		}
		return nil, fmt.Errorf("応募の更新に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "update")
	return app, nil
}

// Delete は応募を完全に削除する。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewApplicationNotFoundError(id)
		}
		return fmt.Errorf("応募の削除に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "delete")
	return nil
}

func (s *Service) clean(app *model.Application) {
	app.Company = s.sanitizer.SanitizeText(app.Company)
	app.Position = s.sanitizer.SanitizeText(app.Position)
	app.Salary = s.sanitizer.SanitizeText(app.Salary)
	app.Notes = s.sanitizer.SanitizeText(app.Notes)
	app.DateApplied = strings.TrimSpace(app.DateApplied)
}

func (s *Service) validate(app *model.Application) error {
	switch {
	case app.Company == "":
		return model.NewValidationError("company", "必須です")
	case len([]rune(app.Company)) > maxCompanyLength:
		return model.NewValidationError("company", "長すぎます")
	case app.Position == "":
		return model.NewValidationError("position", "必須です")
	case len([]rune(app.Position)) > maxPositionLength:
		return model.NewValidationError("position", "長すぎます")
	case len([]rune(app.Notes)) > maxNotesLength:
		return model.NewValidationError("notes", "長すぎます")
	case !app.Status.Valid():
		return model.NewValidationError("status", "未定義のステータスです")
	}
	if _, ok := analytics.ParseDate(app.DateApplied, s.loc); !ok {
		return model.NewInvalidDateError(app.DateApplied)
	}
	return nil
}

func (s *Service) changed(ctx context.Context, userID, op string) {
	s.metrics.RecordMutation("application", op)
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

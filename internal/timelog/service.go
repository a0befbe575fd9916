// Package timelog は日ごとの時間配分記録とカテゴリ目標を管理する。
package timelog

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hitoshi/careertrack/internal/analytics"
	"github.com/hitoshi/careertrack/internal/config"
	"github.com/hitoshi/careertrack/internal/metrics"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/repository"
)

const maxCategoryLength = 50

// CacheInvalidator は記録の変更時にユーザーの集計キャッシュを無効化する。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// DayView は1日分のログと、その日の配分状況・目標違反。
// Activitiesには既定カテゴリが0分で補完される。
type DayView struct {
	Log      model.TimeLog
	Summary  analytics.DaySummary
	Warnings []analytics.GoalWarning
}

// Service は時間ログと目標のサービス層。
type Service struct {
	logRepo  repository.TimeLogRepository
	goalRepo repository.GoalRepository
	defaults *config.TrackerDefaults
	cache    CacheInvalidator
	metrics  metrics.MetricsCollector
	loc      *time.Location
	now      func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	logRepo repository.TimeLogRepository,
	goalRepo repository.GoalRepository,
	defaults *config.TrackerDefaults,
	cache CacheInvalidator,
	collector metrics.MetricsCollector,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	if defaults == nil {
		defaults = &config.TrackerDefaults{}
	}
	return &Service{
		logRepo:  logRepo,
		goalRepo: goalRepo,
		defaults: defaults,
		cache:    cache,
		metrics:  metrics.OrNop(collector),
		loc:      loc,
		now:      time.Now,
	}
}

// Today は設定タイムゾーンでの今日の日付キーを返す。
func (s *Service) Today() string {
	return analytics.FormatDate(s.now().In(s.loc))
}

// Categories は既定カテゴリの一覧を返す。
func (s *Service) Categories() []string {
	return append([]string(nil), s.defaults.Categories...)
}

func (s *Service) checkDate(date string) error {
	if _, ok := analytics.ParseDate(date, s.loc); !ok {
		return model.NewInvalidDateError(date)
	}
	return nil
}

// Get は指定日（空なら今日）のログを返す。記録がなければ空のログを返す。
func (s *Service) Get(ctx context.Context, userID, date string) (*DayView, error) {
	if date == "" {
		date = s.Today()
	}
	if err := s.checkDate(date); err != nil {
		return nil, err
	}

	log, err := s.logRepo.FindByDate(ctx, userID, date)
	if err != nil {
		return nil, fmt.Errorf("時間ログの取得に失敗しました: %w", err)
	}
	if log == nil {
		log = &model.TimeLog{UserID: userID, Date: date}
	}

	goals, err := s.Goals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.dayView(*log, goals), nil
}

// List はstartからendまで（両端含む）のログを返す。空の境界は無制限。
func (s *Service) List(ctx context.Context, userID, start, end string) ([]model.TimeLog, error) {
	for _, d := range []string{start, end} {
		if d == "" {
			continue
		}
		if err := s.checkDate(d); err != nil {
			return nil, err
		}
	}

	logs, err := s.logRepo.ListByRange(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("時間ログ一覧の取得に失敗しました: %w", err)
	}
	return logs, nil
}

// Save は指定日のログにカテゴリ別の分数をマージする。
// 書き込みに含まれないカテゴリは保持される。合計が1440分を超えても拒否せず、Summaryで知らせる。
func (s *Service) Save(ctx context.Context, userID, date string, activities map[string]int) (*DayView, error) {
	if err := s.checkDate(date); err != nil {
		return nil, err
	}
	if len(activities) == 0 {
		return nil, model.NewValidationError("activities", "1件以上指定してください")
	}

	cleaned := make(map[string]int, len(activities))
	for category, minutes := range activities {
		name := strings.TrimSpace(category)
		switch {
		case name == "":
			return nil, model.NewValidationError("activities", "カテゴリ名が空です")
		case len([]rune(name)) > maxCategoryLength:
			return nil, model.NewValidationError("activities", "カテゴリ名が長すぎます")
		case minutes < 0:
			return nil, model.NewValidationError("activities", "分数は0以上を指定してください")
		}
		cleaned[name] += minutes
	}

	log, err := s.logRepo.Upsert(ctx, userID, date, cleaned)
	if err != nil {
		return nil, fmt.Errorf("時間ログの保存に失敗しました: %w", err)
	}
	s.changed(ctx, userID, "timelog", "upsert")

	goals, err := s.Goals(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.dayView(*log, goals), nil
}

// Goals はユーザーの目標を返す。未登録の場合は既定の目標を返す。
func (s *Service) Goals(ctx context.Context, userID string) (model.Goals, error) {
	goals, err := s.goalRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("目標の取得に失敗しました: %w", err)
	}
	if goals == nil {
		return s.defaults.Goals.Clone(), nil
	}
	return goals, nil
}

// SaveGoals は目標ドキュメントを置き換える。
func (s *Service) SaveGoals(ctx context.Context, userID string, goals model.Goals) (model.Goals, error) {
	cleaned := make(model.Goals, len(goals))
	for category, rule := range goals {
		name := strings.TrimSpace(category)
		if name == "" {
			return nil, model.NewValidationError("goals", "カテゴリ名が空です")
		}
		if len([]rune(name)) > maxCategoryLength {
			return nil, model.NewValidationError("goals", "カテゴリ名が長すぎます")
		}
		if (rule.Min != nil && *rule.Min < 0) || (rule.Max != nil && *rule.Max < 0) {
			return nil, model.NewValidationError("goals", "分数は0以上を指定してください")
		}
		if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
			return nil, model.NewValidationError("goals", name+" の min が max を超えています")
		}
		cleaned[name] = rule
	}

	if err := s.goalRepo.Save(ctx, userID, cleaned); err != nil {
		return nil, fmt.Errorf("目標の保存に失敗しました: %w", err)
	}
	s.changed(ctx, userID, "goals", "save")
	return cleaned, nil
}

func (s *Service) dayView(log model.TimeLog, goals model.Goals) *DayView {
	activities := make(map[string]int, len(s.defaults.Categories)+len(log.Activities))
	for _, c := range s.defaults.Categories {
		activities[c] = 0
	}
	for c, m := range log.Activities {
		activities[c] = m
	}
	log.Activities = activities

	return &DayView{
		Log:      log,
		Summary:  analytics.SummarizeDay(activities),
		Warnings: analytics.EvaluateGoals(goals, activities),
	}
}

func (s *Service) changed(ctx context.Context, userID, kind, op string) {
	s.metrics.RecordMutation(kind, op)
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

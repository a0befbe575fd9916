// Package dashboard は記録のスナップショットを並行に取得し、集計結果を組み立てる。
// 結果はユーザー・データ世代・条件・日付をキーとしてキャッシュされる。
package dashboard

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hitoshi/careertrack/internal/analytics"
	"github.com/hitoshi/careertrack/internal/metrics"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/repository"
)

// キャッシュのセクション名。メトリクスのラベルにも使う。
const (
	SectionApplications = "applications"
	SectionTime         = "time"
	SectionOverview     = "overview"
)

// recentActivityDays は応募レポートに含める直近の活動日数。
const recentActivityDays = 14

// SnapshotCache は集計結果のキャッシュ。cache.Snapshotsが満たす。
type SnapshotCache interface {
	Load(ctx context.Context, userID, section string, params []string, dst any) bool
	Save(ctx context.Context, userID, section string, params []string, v any)
}

// GoalSource はユーザーの目標（未登録なら既定値）を返す。timelog.Serviceが満たす。
type GoalSource interface {
	Goals(ctx context.Context, userID string) (model.Goals, error)
}

// ApplicationQuery は応募レポートの条件。
type ApplicationQuery struct {
	Search string
	Filter string
	Start  string
	End    string
}

// ApplicationReport は応募の集計レポート。
// Stats・Streak・Activity・Insightsは絞り込み後、Periodsは全応募から計算する。
type ApplicationReport struct {
	Filter   analytics.FilterKind       `json:"filter"`
	Start    string                     `json:"start,omitempty"`
	End      string                     `json:"end,omitempty"`
	Stats    analytics.ApplicationStats `json:"stats"`
	Periods  analytics.Periods          `json:"periods"`
	Streak   int                        `json:"streak"`
	Activity []analytics.DayActivity    `json:"activity"`
	Insights []string                   `json:"insights"`
}

// TimeReport は時間配分の集計レポート。Dateは当日扱いにする日付。
// Totals・Productivityは今週（月曜始まり）、Streak・Heatmapは全期間のログから計算する。
type TimeReport struct {
	Date         string                  `json:"date"`
	Day          analytics.DaySummary    `json:"day"`
	Warnings     []analytics.GoalWarning `json:"warnings"`
	WeekStart    string                  `json:"week_start"`
	WeekEnd      string                  `json:"week_end"`
	Totals       analytics.TimeTotals    `json:"totals"`
	Productivity analytics.Productivity  `json:"productivity"`
	Streak       int                     `json:"streak"`
	Heatmap      []analytics.HeatmapCell `json:"heatmap"`
}

// CourseSummary は講座の進捗概要。
type CourseSummary struct {
	ID       string                   `json:"id"`
	Name     string                   `json:"name"`
	Progress analytics.CourseProgress `json:"progress"`
}

// Overview はダッシュボード全体の集計。
type Overview struct {
	Applications ApplicationReport       `json:"applications"`
	Time         TimeReport              `json:"time"`
	Courses      []CourseSummary         `json:"courses"`
	Linkedin     analytics.LinkedinStats `json:"linkedin"`
}

// Service はダッシュボードの集計を提供する。
type Service struct {
	apps       repository.ApplicationRepository
	courses    repository.CourseRepository
	logs       repository.TimeLogRepository
	linkedin   repository.LinkedinRepository
	goals      GoalSource
	productive []string
	cache      SnapshotCache
	metrics    metrics.MetricsCollector
	loc        *time.Location
	now        func() time.Time
}

// Deps はServiceの依存関係。
type Deps struct {
	Applications repository.ApplicationRepository
	Courses      repository.CourseRepository
	TimeLogs     repository.TimeLogRepository
	Linkedin     repository.LinkedinRepository
	Goals        GoalSource
	// ProductiveCategories は生産性スコアの分子に数えるカテゴリ。
	ProductiveCategories []string
	Cache                SnapshotCache
	Metrics              metrics.MetricsCollector
	Location             *time.Location
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(deps Deps) *Service {
	loc := deps.Location
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		apps:       deps.Applications,
		courses:    deps.Courses,
		logs:       deps.TimeLogs,
		linkedin:   deps.Linkedin,
		goals:      deps.Goals,
		productive: deps.ProductiveCategories,
		cache:      deps.Cache,
		metrics:    metrics.OrNop(deps.Metrics),
		loc:        loc,
		now:        time.Now,
	}
}

// snapshot は集計の入力となる記録一式。
type snapshot struct {
	apps     []model.Application
	courses  []model.Course
	logs     []model.TimeLog
	linkedin []model.LinkedinEntry
	goals    model.Goals
}

// parts は取得対象の記録の種類。
type parts struct {
	apps, courses, logs, linkedin, goals bool
}

// fetch は必要な記録を並行に取得する。各goroutineは自分の変数にのみ書き込む。
func (s *Service) fetch(ctx context.Context, userID string, p parts) (*snapshot, error) {
	var snap snapshot
	g, ctx := errgroup.WithContext(ctx)

	if p.apps {
		g.Go(func() error {
			apps, err := s.apps.ListByUserID(ctx, userID)
			if err != nil {
				return fmt.Errorf("応募一覧の取得に失敗しました: %w", err)
			}
			snap.apps = apps
			return nil
		})
	}
	if p.courses {
		g.Go(func() error {
			courses, err := s.courses.ListByUserID(ctx, userID)
			if err != nil {
				return fmt.Errorf("講座一覧の取得に失敗しました: %w", err)
			}
			snap.courses = courses
			return nil
		})
	}
	if p.logs {
		g.Go(func() error {
			logs, err := s.logs.ListByRange(ctx, userID, "", "")
			if err != nil {
				return fmt.Errorf("時間ログの取得に失敗しました: %w", err)
			}
			snap.logs = logs
			return nil
		})
	}
	if p.linkedin {
		g.Go(func() error {
			entries, err := s.linkedin.ListByUserID(ctx, userID)
			if err != nil {
				return fmt.Errorf("LinkedInエントリの取得に失敗しました: %w", err)
			}
			snap.linkedin = entries
			return nil
		})
	}
	if p.goals {
		g.Go(func() error {
			goals, err := s.goals.Goals(ctx, userID)
			if err != nil {
				return err
			}
			snap.goals = goals
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// cached はキャッシュを参照し、ミスした場合はbuildで計算して保存する。
func (s *Service) cached(ctx context.Context, userID, section string, params []string, dst any, build func() error) error {
	if s.cache != nil && s.cache.Load(ctx, userID, section, params, dst) {
		s.metrics.RecordCacheResult(metrics.CacheHit)
		return nil
	}
	s.metrics.RecordCacheResult(metrics.CacheMiss)

	start := time.Now()
	if err := build(); err != nil {
		return err
	}
	s.metrics.ObserveAnalyticsBuild(section, time.Since(start))

	if s.cache != nil {
		s.cache.Save(ctx, userID, section, params, dst)
	}
	return nil
}

// Applications は条件に一致する応募の集計レポートを返す。
func (s *Service) Applications(ctx context.Context, userID string, q ApplicationQuery) (*ApplicationReport, error) {
	kind, err := analytics.ParseFilterKind(q.Filter)
	if err != nil {
		return nil, err
	}
	now := s.now().In(s.loc)
	params := []string{analytics.FormatDate(now), string(kind), q.Start, q.End, q.Search}

	var report ApplicationReport
	err = s.cached(ctx, userID, SectionApplications, params, &report, func() error {
		snap, err := s.fetch(ctx, userID, parts{apps: true})
		if err != nil {
			return err
		}
		report = buildApplicationReport(snap.apps, kind, q, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Time は時間配分の集計レポートを返す。dateが空の場合は今日を当日とする。
func (s *Service) Time(ctx context.Context, userID, date string) (*TimeReport, error) {
	now := s.now().In(s.loc)
	if date == "" {
		date = analytics.FormatDate(now)
	} else if _, ok := analytics.ParseDate(date, s.loc); !ok {
		return nil, model.NewInvalidDateError(date)
	}
	params := []string{analytics.FormatDate(now), date}

	var report TimeReport
	err := s.cached(ctx, userID, SectionTime, params, &report, func() error {
		snap, err := s.fetch(ctx, userID, parts{logs: true, goals: true})
		if err != nil {
			return err
		}
		report = s.buildTimeReport(snap.logs, snap.goals, date, now)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Overview はダッシュボード全体の集計を返す。応募は全期間、時間は今日が対象。
func (s *Service) Overview(ctx context.Context, userID string) (*Overview, error) {
	now := s.now().In(s.loc)
	today := analytics.FormatDate(now)

	var ov Overview
	err := s.cached(ctx, userID, SectionOverview, []string{today}, &ov, func() error {
		snap, err := s.fetch(ctx, userID, parts{apps: true, courses: true, logs: true, linkedin: true, goals: true})
		if err != nil {
			return err
		}

		ov.Applications = buildApplicationReport(snap.apps, analytics.FilterAll, ApplicationQuery{}, now)
		ov.Time = s.buildTimeReport(snap.logs, snap.goals, today, now)
		ov.Courses = make([]CourseSummary, len(snap.courses))
		for i, c := range snap.courses {
			ov.Courses[i] = CourseSummary{ID: c.ID, Name: c.Name, Progress: analytics.ComputeCourseProgress(c, now)}
		}
		ov.Linkedin = analytics.ComputeLinkedinStats(snap.linkedin)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ov, nil
}

func buildApplicationReport(apps []model.Application, kind analytics.FilterKind, q ApplicationQuery, now time.Time) ApplicationReport {
	r := analytics.ResolveRange(kind, q.Start, q.End, now)
	filtered := analytics.FilterApplications(apps, analytics.ApplicationFilter{Search: q.Search, Range: r})

	stats := analytics.ComputeApplicationStats(filtered)
	streak := analytics.ApplicationStreak(filtered, now)
	insights := analytics.GenerateInsights(stats, streak)
	if insights == nil {
		insights = []string{}
	}
	return ApplicationReport{
		Filter:   kind,
		Start:    r.StartKey(),
		End:      r.EndKey(),
		Stats:    stats,
		Periods:  analytics.PeriodCounts(apps, now),
		Streak:   streak,
		Activity: analytics.RecentActivity(filtered, recentActivityDays),
		Insights: insights,
	}
}

func (s *Service) buildTimeReport(logs []model.TimeLog, goals model.Goals, date string, now time.Time) TimeReport {
	var day map[string]int
	for _, l := range logs {
		if l.Date == date {
			day = l.Activities
			break
		}
	}

	warnings := analytics.EvaluateGoals(goals, day)
	if warnings == nil {
		warnings = []analytics.GoalWarning{}
	}

	week := analytics.ResolveRange(analytics.FilterWeek, "", "", now)
	var weekly []model.TimeLog
	for _, l := range logs {
		if week.Contains(l.Date) {
			weekly = append(weekly, l)
		}
	}

	return TimeReport{
		Date:         date,
		Day:          analytics.SummarizeDay(day),
		Warnings:     warnings,
		WeekStart:    week.StartKey(),
		WeekEnd:      week.EndKey(),
		Totals:       analytics.ComputeTimeTotals(weekly),
		Productivity: analytics.ProductivityScore(weekly, s.productive),
		Streak:       analytics.TimeLogStreak(logs, now),
		Heatmap:      analytics.Heatmap(logs, now),
	}
}

package analytics

import (
	"time"

	"github.com/hitoshi/careertrack/internal/model"
)

// ApplicationStats は応募の集計結果。
type ApplicationStats struct {
	Total         int                             `json:"total"`
	ByStatus      map[model.ApplicationStatus]int `json:"by_status"`
	InterviewRate int                             `json:"interview_rate"`
	OfferRate     int                             `json:"offer_rate"`
}

// Count はステータスごとの件数を返す。
func (s ApplicationStats) Count(status model.ApplicationStatus) int {
	return s.ByStatus[status]
}

// ComputeApplicationStats はステータス別件数と面接率・内定率を計算する。
// 全ステータスを0で初期化し、分母が0の率は0とする。率は[0,100]に収める。
// 定義外のステータスを持つ応募はTotalにのみ数える。
func ComputeApplicationStats(apps []model.Application) ApplicationStats {
	counts := make(map[model.ApplicationStatus]int, 5)
	for _, s := range model.ApplicationStatuses() {
		counts[s] = 0
	}
	for _, app := range apps {
		if app.Status.Valid() {
			counts[app.Status]++
		}
	}

	stats := ApplicationStats{Total: len(apps), ByStatus: counts}
	if applied := counts[model.ApplicationStatusApplied]; applied > 0 {
		stats.InterviewRate = clampPercent(roundHalfUp(float64(counts[model.ApplicationStatusInterview]) / float64(applied) * 100))
	}
	if interview := counts[model.ApplicationStatusInterview]; interview > 0 {
		stats.OfferRate = clampPercent(roundHalfUp(float64(counts[model.ApplicationStatusOffer]) / float64(interview) * 100))
	}
	return stats
}

// ActivityByDate は日付ごとの応募件数を返す。
func ActivityByDate(apps []model.Application) map[string]int {
	activity := make(map[string]int)
	for _, app := range apps {
		activity[app.DateApplied]++
	}
	return activity
}

// DayActivity は1日分の応募件数と、最多日に対する比率（棒グラフ用）。
type DayActivity struct {
	Date  string  `json:"date"`
	Count int     `json:"count"`
	Ratio float64 `json:"ratio"`
}

// RecentActivity は新しい順にn日分の活動日を返す。
// Ratioは全期間の最多件数（最低1）に対する比率。
func RecentActivity(apps []model.Application, n int) []DayActivity {
	activity := ActivityByDate(apps)
	peak := 1
	for _, c := range activity {
		if c > peak {
			peak = c
		}
	}

	keys := SortedDateKeys(GroupByDate(apps, ApplicationDate))
	if n >= 0 && len(keys) > n {
		keys = keys[:n]
	}
	out := make([]DayActivity, 0, len(keys))
	for _, k := range keys {
		c := activity[k]
		out = append(out, DayActivity{Date: k, Count: c, Ratio: float64(c) / float64(peak)})
	}
	return out
}

// Periods は今週・今月の応募件数。
type Periods struct {
	ThisWeek  int `json:"this_week"`
	ThisMonth int `json:"this_month"`
}

// PeriodCounts は絞り込み前の応募一覧から今週・今月の件数を数える。
func PeriodCounts(apps []model.Application, now time.Time) Periods {
	week := ResolveRange(FilterWeek, "", "", now)
	month := ResolveRange(FilterMonth, "", "", now)
	var p Periods
	for _, app := range apps {
		if week.Contains(app.DateApplied) {
			p.ThisWeek++
		}
		if month.Contains(app.DateApplied) {
			p.ThisMonth++
		}
	}
	return p
}

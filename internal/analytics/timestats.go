package analytics

import (
	"sort"

	"github.com/hitoshi/careertrack/internal/model"
)

// TimeTotals は複数日の時間ログの集計結果。
type TimeTotals struct {
	Days          int            `json:"days"`
	Totals        map[string]int `json:"totals"`
	Averages      map[string]int `json:"averages"`
	GrandTotal    int            `json:"grand_total"`
	MostUsed      string         `json:"most_used"`
	MostUsedTotal int            `json:"most_used_total"`
}

// ComputeTimeTotals はカテゴリ別合計と1日平均（分）を計算する。
// 平均の分母は記録のある日数（最低1）。最多カテゴリは合計の大きい順、同値は名前順で決める。
func ComputeTimeTotals(logs []model.TimeLog) TimeTotals {
	totals := make(map[string]int)
	grand := 0
	for _, l := range logs {
		for category, minutes := range l.Activities {
			totals[category] += minutes
			grand += minutes
		}
	}

	days := len(logs)
	if days < 1 {
		days = 1
	}
	averages := make(map[string]int, len(totals))
	for category, total := range totals {
		averages[category] = roundHalfUp(float64(total) / float64(days))
	}

	res := TimeTotals{Days: len(logs), Totals: totals, Averages: averages, GrandTotal: grand}
	for _, category := range sortedCategories(totals) {
		if res.MostUsed == "" || totals[category] > res.MostUsedTotal {
			res.MostUsed = category
			res.MostUsedTotal = totals[category]
		}
	}
	return res
}

// 生産性スコアのラベル
const (
	ProductivityOnTrack          = "On Track"
	ProductivityModerate         = "Moderate"
	ProductivityNeedsImprovement = "Needs Improvement"
)

// Productivity は生産的なカテゴリが占める割合。
type Productivity struct {
	ProductiveMinutes int    `json:"productive_minutes"`
	TotalMinutes      int    `json:"total_minutes"`
	Score             int    `json:"score"`
	Label             string `json:"label"`
}

// ProductivityScore は生産的カテゴリの分数が総分数に占める割合（%）を計算する。
// 総分数が0の場合のスコアは0。
func ProductivityScore(logs []model.TimeLog, productive []string) Productivity {
	isProductive := make(map[string]bool, len(productive))
	for _, c := range productive {
		isProductive[c] = true
	}

	var p Productivity
	for _, l := range logs {
		for category, minutes := range l.Activities {
			p.TotalMinutes += minutes
			if isProductive[category] {
				p.ProductiveMinutes += minutes
			}
		}
	}
	if p.TotalMinutes > 0 {
		p.Score = clampPercent(roundHalfUp(float64(p.ProductiveMinutes) / float64(p.TotalMinutes) * 100))
	}
	switch {
	case p.Score >= 70:
		p.Label = ProductivityOnTrack
	case p.Score >= 50:
		p.Label = ProductivityModerate
	default:
		p.Label = ProductivityNeedsImprovement
	}
	return p
}

// 1日の残り時間の状態
const (
	DayStatusOK   = "ok"
	DayStatusLow  = "low"
	DayStatusFull = "full"
)

// lowRemainingMinutes 以下の残り時間は "low"。
const lowRemainingMinutes = 120

// DaySummary は1日分の配分状況。
type DaySummary struct {
	TotalMinutes     int    `json:"total_minutes"`
	RemainingMinutes int    `json:"remaining_minutes"`
	Status           string `json:"status"`
	OverAllocated    bool   `json:"over_allocated"`
}

// SummarizeDay は1日の合計と残り時間を計算する。1440分超過は警告扱いでエラーにしない。
func SummarizeDay(activities map[string]int) DaySummary {
	total := 0
	for _, m := range activities {
		total += m
	}
	remaining := model.MaxMinutesPerDay - total

	s := DaySummary{TotalMinutes: total, OverAllocated: total > model.MaxMinutesPerDay}
	switch {
	case remaining <= 0:
		s.Status = DayStatusFull
	case remaining <= lowRemainingMinutes:
		s.Status = DayStatusLow
	default:
		s.Status = DayStatusOK
	}
	if remaining > 0 {
		s.RemainingMinutes = remaining
	}
	return s
}

func sortedCategories[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

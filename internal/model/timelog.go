package model

import "time"

// MaxMinutesPerDay は1日の分数。合計がこれを超えても保存は拒否しない（警告のみ）。
const MaxMinutesPerDay = 1440

// TimeLog は1日分の時間配分記録を表す。ユーザーごと・日付ごとに1件のみ存在する。
type TimeLog struct {
	UserID     string
	Date       string         // YYYY-MM-DD
	Activities map[string]int // カテゴリ名 → 分
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TotalMinutes は全カテゴリの合計分数を返す。Activitiesがnilの場合は0。
func (l TimeLog) TotalMinutes() int {
	total := 0
	for _, m := range l.Activities {
		total += m
	}
	return total
}

// GoalRule はカテゴリごとの最小・最大分数の目標を表す。
// nilの境界はその方向のチェックを行わないことを意味する。
type GoalRule struct {
	Min *int `json:"min,omitempty" yaml:"min,omitempty"`
	Max *int `json:"max,omitempty" yaml:"max,omitempty"`
}

// Goals はカテゴリ名から目標へのマッピング。ユーザーごとに1ドキュメントとして保存される。
type Goals map[string]GoalRule

// Clone はGoalsのディープコピーを返す。
func (g Goals) Clone() Goals {
	out := make(Goals, len(g))
	for category, rule := range g {
		var r GoalRule
		if rule.Min != nil {
			v := *rule.Min
			r.Min = &v
		}
		if rule.Max != nil {
			v := *rule.Max
			r.Max = &v
		}
		out[category] = r
	}
	return out
}

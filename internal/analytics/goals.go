package analytics

import (
	"fmt"

	"github.com/hitoshi/careertrack/internal/model"
)

// 目標違反の種類
const (
	GoalKindMin = "min"
	GoalKindMax = "max"
)

// GoalWarning は目標違反1件を表す。助言であり保存を妨げない。
type GoalWarning struct {
	Category string `json:"category"`
	Kind     string `json:"kind"`
	Spent    int    `json:"spent"`
	Limit    int    `json:"limit"`
	Message  string `json:"message"`
}

// EvaluateGoals は今日のカテゴリ別分数を目標と比較する。
// minは下回った場合、maxは上回った場合のみ警告し、境界値ちょうどは違反としない。
// 記録のないカテゴリは0分として扱う。結果はカテゴリ名順、同じカテゴリではminが先。
func EvaluateGoals(goals model.Goals, activities map[string]int) []GoalWarning {
	var warnings []GoalWarning
	for _, category := range sortedCategories(goals) {
		rule := goals[category]
		spent := activities[category]
		if rule.Min != nil && spent < *rule.Min {
			warnings = append(warnings, GoalWarning{
				Category: category,
				Kind:     GoalKindMin,
				Spent:    spent,
				Limit:    *rule.Min,
				Message:  fmt.Sprintf("⚠️ %s: %dh logged, goal is %dh", category, hours(spent), hours(*rule.Min)),
			})
		}
		if rule.Max != nil && spent > *rule.Max {
			warnings = append(warnings, GoalWarning{
				Category: category,
				Kind:     GoalKindMax,
				Spent:    spent,
				Limit:    *rule.Max,
				Message:  fmt.Sprintf("⚠️ %s: exceeded limit (%dh / %dh)", category, hours(spent), hours(*rule.Max)),
			})
		}
	}
	return warnings
}

// WarningMessages は警告のメッセージのみを取り出す。
func WarningMessages(warnings []GoalWarning) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, w.Message)
	}
	return out
}

func hours(minutes int) int {
	return roundHalfUp(float64(minutes) / 60)
}

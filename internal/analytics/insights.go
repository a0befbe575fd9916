package analytics

import (
	"fmt"

	"github.com/hitoshi/careertrack/internal/model"
)

// ストリークの閾値
const consistencyStreak = 5

// GenerateInsights は集計結果とストリークから助言メッセージを固定の順序で生成する。
// 応募が0件の場合は開始を促すメッセージのみを返す。
func GenerateInsights(stats ApplicationStats, streak int) []string {
	if stats.Total == 0 {
		return []string{"No applications yet. Start applying to see insights."}
	}

	var msgs []string
	switch {
	case stats.InterviewRate > 30:
		msgs = append(msgs, "Your interview rate is strong 👍")
	case stats.Count(model.ApplicationStatusApplied) > 5 && stats.Count(model.ApplicationStatusInterview) == 0:
		msgs = append(msgs, "You have applications but no interviews yet. Consider improving your resume.")
	}

	switch {
	case streak >= consistencyStreak:
		msgs = append(msgs, fmt.Sprintf("🔥 Great consistency! %d-day application streak.", streak))
	case streak == 0:
		msgs = append(msgs, "No recent activity. A small daily effort goes a long way.")
	}

	if stats.Count(model.ApplicationStatusOffer) > 0 {
		msgs = append(msgs, "🎉 You're converting interviews into offers!")
	}
	return msgs
}

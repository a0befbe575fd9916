package analytics

import (
	"time"

	"github.com/hitoshi/careertrack/internal/model"
)

// DaysElapsed は応募日からの経過日数を返す。未来日や解析できない日付は0。
func DaysElapsed(appliedDate string, now time.Time) int {
	applied, ok := ParseDate(appliedDate, now.Location())
	if !ok {
		return 0
	}
	days := calendarDaysBetween(applied, now)
	if days < 0 {
		return 0
	}
	return days
}

// LinkedinStats はLinkedInアウトリーチの集計。
type LinkedinStats struct {
	Total      int                          `json:"total"`
	ByStatus   map[model.LinkedinStatus]int `json:"by_status"`
	FollowedUp int                          `json:"followed_up"`
	Pending    int                          `json:"pending"`
}

// ComputeLinkedinStats はステータス別件数とフォローアップ状況を数える。
func ComputeLinkedinStats(entries []model.LinkedinEntry) LinkedinStats {
	stats := LinkedinStats{Total: len(entries), ByStatus: make(map[model.LinkedinStatus]int, 3)}
	for _, s := range model.LinkedinStatuses() {
		stats.ByStatus[s] = 0
	}
	for _, e := range entries {
		if e.Status.Valid() {
			stats.ByStatus[e.Status]++
		}
		if e.FollowedUp {
			stats.FollowedUp++
		} else {
			stats.Pending++
		}
	}
	return stats
}

package analytics

import (
	"time"

	"github.com/hitoshi/careertrack/internal/model"
)

// HeatmapDays はヒートマップの日数。
const HeatmapDays = 90

// HeatmapCell はヒートマップの1マス。
type HeatmapCell struct {
	Date    string `json:"date"`
	Minutes int    `json:"minutes"`
	Tier    int    `json:"tier"`
}

// HeatmapTier は1日の合計分数を0〜4の段階に変換する。
func HeatmapTier(minutes int) int {
	switch {
	case minutes <= 0:
		return 0
	case minutes < 180:
		return 1
	case minutes < 360:
		return 2
	case minutes < 600:
		return 3
	default:
		return 4
	}
}

// HeatmapWindow はヒートマップが対象とする期間を返す。
// 90日前から昨日までの完了した日だけを並べ、記録途中の今日は含めない。
func HeatmapWindow(now time.Time) DateRange {
	today := StartOfDay(now)
	return DateRange{Bounded: true, Start: addDays(today, -HeatmapDays), End: addDays(today, -1)}
}

// Heatmap は古い順に90マスを返す。記録のない日は0分・段階0になる。
func Heatmap(logs []model.TimeLog, now time.Time) []HeatmapCell {
	byDate := make(map[string]int, len(logs))
	for _, l := range logs {
		byDate[l.Date] += l.TotalMinutes()
	}

	window := HeatmapWindow(now)
	cells := make([]HeatmapCell, 0, HeatmapDays)
	for i := 0; i < HeatmapDays; i++ {
		key := FormatDate(addDays(window.Start, i))
		minutes := byDate[key]
		cells = append(cells, HeatmapCell{Date: key, Minutes: minutes, Tier: HeatmapTier(minutes)})
	}
	return cells
}

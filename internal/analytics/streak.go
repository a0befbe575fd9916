package analytics

import (
	"sort"
	"time"

	"github.com/hitoshi/careertrack/internal/model"
)

// Streak は今日または昨日から遡って連続して活動した日数を返す。
//
// 日付は重複を除いて新しい順に並べ、未来の日付と解析できない日付は無視する。
// 最新の日付が今日から2日以上前なら0。以降は前日ちょうどの日付が続く限り加算し、
// 最初の空白で打ち切る。
func Streak(dates []string, now time.Time) int {
	today := StartOfDay(now)
	seen := make(map[int64]bool, len(dates))
	days := make([]int64, 0, len(dates))
	for _, d := range dates {
		t, ok := ParseDate(d, now.Location())
		if !ok {
			continue
		}
		n := dayNumber(t)
		if n > dayNumber(today) || seen[n] {
			continue
		}
		seen[n] = true
		days = append(days, n)
	}
	if len(days) == 0 {
		return 0
	}
	sort.Slice(days, func(i, j int) bool { return days[i] > days[j] })

	if dayNumber(today)-days[0] > 1 {
		return 0
	}
	streak := 1
	for i := 1; i < len(days); i++ {
		if days[i-1]-days[i] != 1 {
			break
		}
		streak++
	}
	return streak
}

// ApplicationStreak は応募日の連続日数を返す。
func ApplicationStreak(apps []model.Application, now time.Time) int {
	dates := make([]string, 0, len(apps))
	for _, app := range apps {
		dates = append(dates, app.DateApplied)
	}
	return Streak(dates, now)
}

// TimeLogStreak は合計が1分以上の時間ログの連続日数を返す。
func TimeLogStreak(logs []model.TimeLog, now time.Time) int {
	dates := make([]string, 0, len(logs))
	for _, l := range logs {
		if l.TotalMinutes() > 0 {
			dates = append(dates, l.Date)
		}
	}
	return Streak(dates, now)
}

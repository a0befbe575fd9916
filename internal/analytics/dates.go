package analytics

import (
	"math"
	"time"
)

// DateLayout は記録の日付キーに使うISO形式。
const DateLayout = "2006-01-02"

// ParseDate はISO形式の日付をlocにおける0時として解析する。
// 空文字や不正な形式の場合はfalseを返す。
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}
	t, err := time.ParseInLocation(DateLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatDate は時刻を日付キーに変換する。
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// StartOfDay はtと同じ暦日の0時を返す。
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func addDays(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+n, 0, 0, 0, 0, t.Location())
}

// dayNumber は暦日の通し番号を返す。夏時間の切り替えに影響されない。
func dayNumber(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

// calendarDaysBetween はfromからtoまでの暦日差を返す（to が後なら正）。
func calendarDaysBetween(from, to time.Time) int {
	return int(dayNumber(to) - dayNumber(from))
}

// roundHalfUp は0.5を切り上げる四捨五入。
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func clampPercent(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

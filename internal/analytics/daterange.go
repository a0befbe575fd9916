// Package analytics はダッシュボードの集計ロジックを提供する。
// すべての関数は入力スナップショットと基準時刻nowのみに依存し、I/Oを行わない。
package analytics

import (
	"time"

	"github.com/hitoshi/careertrack/internal/model"
)

// FilterKind は期間フィルタの種類を表す。
type FilterKind string

const (
	FilterAll    FilterKind = "all"
	FilterWeek   FilterKind = "week"
	FilterMonth  FilterKind = "month"
	FilterCustom FilterKind = "custom"
)

// ParseFilterKind はクエリ文字列を期間フィルタに変換する。空文字はallとして扱う。
func ParseFilterKind(s string) (FilterKind, error) {
	switch FilterKind(s) {
	case "", FilterAll:
		return FilterAll, nil
	case FilterWeek, FilterMonth, FilterCustom:
		return FilterKind(s), nil
	}
	return "", model.NewInvalidFilterError(s)
}

// DateRange は両端を含む暦日の範囲を表す。Boundedがfalseの場合はすべての日付を含む。
type DateRange struct {
	Bounded bool
	Start   time.Time
	End     time.Time
}

// Unbounded は無制限の範囲を返す。
func Unbounded() DateRange {
	return DateRange{}
}

// ResolveRange は期間フィルタと基準時刻から範囲を解決する。
//
// week は now を含む月曜日から日曜日まで、month は now の月の初日から末日までとなる。
// custom は両端のどちらかが欠けているか解析できない場合、無制限にフォールバックする。
// 未知の種類も無制限として扱う。
func ResolveRange(kind FilterKind, customStart, customEnd string, now time.Time) DateRange {
	today := StartOfDay(now)
	switch kind {
	case FilterWeek:
		offset := (int(today.Weekday()) + 6) % 7
		start := addDays(today, -offset)
		return DateRange{Bounded: true, Start: start, End: addDays(start, 6)}
	case FilterMonth:
		y, m, _ := today.Date()
		start := time.Date(y, m, 1, 0, 0, 0, 0, today.Location())
		end := time.Date(y, m+1, 0, 0, 0, 0, 0, today.Location())
		return DateRange{Bounded: true, Start: start, End: end}
	case FilterCustom:
		start, ok := ParseDate(customStart, now.Location())
		if !ok {
			return Unbounded()
		}
		end, ok := ParseDate(customEnd, now.Location())
		if !ok {
			return Unbounded()
		}
		return DateRange{Bounded: true, Start: start, End: end}
	}
	return Unbounded()
}

// Contains は日付キーが範囲内にあるかを返す。
// 範囲が有界で日付が解析できない場合はfalse。開始日が終了日より後の範囲は何も含まない。
func (r DateRange) Contains(date string) bool {
	if !r.Bounded {
		return true
	}
	t, ok := ParseDate(date, r.Start.Location())
	if !ok {
		return false
	}
	n := dayNumber(t)
	return n >= dayNumber(r.Start) && n <= dayNumber(r.End)
}

// StartKey は開始日の日付キーを返す。無制限の場合は空文字。
func (r DateRange) StartKey() string {
	if !r.Bounded {
		return ""
	}
	return FormatDate(r.Start)
}

// EndKey は終了日の日付キーを返す。無制限の場合は空文字。
func (r DateRange) EndKey() string {
	if !r.Bounded {
		return ""
	}
	return FormatDate(r.End)
}

package model

import "time"

// Course はオンライン講座の進捗記録を表す。
// CompletedLessonsは常にDailyLogsの値の合計と一致する（日次ログ追加時に同時に加算する）。
type Course struct {
	ID               string
	UserID           string
	Name             string
	TotalLessons     int
	TargetDate       string
	CompletedLessons int
	DailyLogs        map[string]int // 日付(YYYY-MM-DD) → その日に消化したレッスン数
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// RemainingLessons は残りレッスン数を返す。超過している場合は0。
func (c Course) RemainingLessons() int {
	remaining := c.TotalLessons - c.CompletedLessons
	if remaining < 0 {
		return 0
	}
	return remaining
}

package analytics

import (
	"time"

	"github.com/hitoshi/careertrack/internal/model"
)

// DaysLeft は目標日までの残り日数を今日を含めて返す。最低1。
// 目標日が解析できない場合も1を返す。
func DaysLeft(targetDate string, now time.Time) int {
	target, ok := ParseDate(targetDate, now.Location())
	if !ok {
		return 1
	}
	days := calendarDaysBetween(now, target) + 1
	if days < 1 {
		return 1
	}
	return days
}

// CourseProgress は講座の進捗指標。
type CourseProgress struct {
	RemainingLessons int     `json:"remaining_lessons"`
	DaysLeft         int     `json:"days_left"`
	LessonsPerDay    float64 `json:"lessons_per_day"`
	Percent          int     `json:"percent"`
}

// CoursePace は目標日までに完了するための1日あたりのレッスン数を返す。
func CoursePace(c model.Course, now time.Time) float64 {
	return float64(c.RemainingLessons()) / float64(DaysLeft(c.TargetDate, now))
}

// ComputeCourseProgress は講座の残り・ペース・達成率をまとめて計算する。
func ComputeCourseProgress(c model.Course, now time.Time) CourseProgress {
	p := CourseProgress{
		RemainingLessons: c.RemainingLessons(),
		DaysLeft:         DaysLeft(c.TargetDate, now),
		LessonsPerDay:    CoursePace(c, now),
	}
	if c.TotalLessons > 0 {
		p.Percent = clampPercent(roundHalfUp(float64(c.CompletedLessons) / float64(c.TotalLessons) * 100))
	}
	return p
}

package analytics

import (
	"time"

	"github.com/hitoshi/careertrack/internal/model"
)

// 基準時刻: 2026-10-14（水曜日）15:30 UTC
var testNow = time.Date(2026, 10, 14, 15, 30, 0, 0, time.UTC)

func daysAgo(n int) string {
	return FormatDate(testNow.AddDate(0, 0, -n))
}

func intPtr(v int) *int { return &v }

func app(company, position, date string, status model.ApplicationStatus) model.Application {
	return model.Application{Company: company, Position: position, DateApplied: date, Status: status}
}

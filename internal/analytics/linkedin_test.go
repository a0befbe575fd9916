package analytics

import (
	"testing"

	"github.com/hitoshi/careertrack/internal/model"
)

func TestDaysElapsed(t *testing.T) {
	cases := map[string]int{
		daysAgo(0):  0,
		daysAgo(1):  1,
		daysAgo(14): 14,
		FormatDate(testNow.AddDate(0, 0, 3)): 0,
		"": 0,
	}
	for date, want := range cases {
		if got := DaysElapsed(date, testNow); got != want {
			t.Errorf("DaysElapsed(%q) = %d, want %d", date, got, want)
		}
	}
}

func TestComputeLinkedinStats(t *testing.T) {
	entries := []model.LinkedinEntry{
		{Status: model.LinkedinStatusApplied, FollowedUp: true},
		{Status: model.LinkedinStatusApplied},
		{Status: model.LinkedinStatusReachedOut},
	}
	s := ComputeLinkedinStats(entries)
	if s.Total != 3 || s.FollowedUp != 1 || s.Pending != 2 {
		t.Errorf("stats = %+v", s)
	}
	if s.ByStatus[model.LinkedinStatusApplied] != 2 || s.ByStatus[model.LinkedinStatusRejected] != 0 {
		t.Errorf("ByStatus = %v", s.ByStatus)
	}
}

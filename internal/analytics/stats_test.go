package analytics

import (
	"testing"

	"github.com/hitoshi/careertrack/internal/model"
)

func TestComputeApplicationStats_Scenario(t *testing.T) {
	apps := []model.Application{
		app("A", "x", "2026-10-01", model.ApplicationStatusApplied),
		app("B", "x", "2026-10-02", model.ApplicationStatusApplied),
		app("C", "x", "2026-10-03", model.ApplicationStatusInterview),
		app("D", "x", "2026-10-04", model.ApplicationStatusOffer),
	}
	stats := ComputeApplicationStats(apps)

	if stats.Total != 4 {
		t.Errorf("Total = %d, want 4", stats.Total)
	}
	want := map[model.ApplicationStatus]int{
		model.ApplicationStatusApplied:    2,
		model.ApplicationStatusInterview:  1,
		model.ApplicationStatusOffer:      1,
		model.ApplicationStatusRejected:   0,
		model.ApplicationStatusBookmarked: 0,
	}
	for status, n := range want {
		if stats.Count(status) != n {
			t.Errorf("count[%s] = %d, want %d", status, stats.Count(status), n)
		}
	}
	if stats.InterviewRate != 50 {
		t.Errorf("InterviewRate = %d, want 50", stats.InterviewRate)
	}
	if stats.OfferRate != 100 {
		t.Errorf("OfferRate = %d, want 100", stats.OfferRate)
	}
}

func TestComputeApplicationStats_ZeroDenominators(t *testing.T) {
	stats := ComputeApplicationStats(nil)
	if stats.Total != 0 || stats.InterviewRate != 0 || stats.OfferRate != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
	if len(stats.ByStatus) != 5 {
		t.Errorf("all statuses should be zero-initialised, got %v", stats.ByStatus)
	}

	stats = ComputeApplicationStats([]model.Application{
		app("A", "x", "2026-10-01", model.ApplicationStatusInterview),
		app("B", "x", "2026-10-01", model.ApplicationStatusOffer),
	})
	if stats.InterviewRate != 0 {
		t.Errorf("InterviewRate with no applied = %d, want 0", stats.InterviewRate)
	}
}

func TestComputeApplicationStats_RatesClamped(t *testing.T) {
	// 面接が応募済みを上回っても100を超えない
	stats := ComputeApplicationStats([]model.Application{
		app("A", "x", "2026-10-01", model.ApplicationStatusApplied),
		app("B", "x", "2026-10-01", model.ApplicationStatusInterview),
		app("C", "x", "2026-10-01", model.ApplicationStatusInterview),
		app("D", "x", "2026-10-01", model.ApplicationStatusInterview),
	})
	if stats.InterviewRate != 100 {
		t.Errorf("InterviewRate = %d, want 100", stats.InterviewRate)
	}
}

func TestComputeApplicationStats_CountsSumToTotal(t *testing.T) {
	var apps []model.Application
	for i, s := range model.ApplicationStatuses() {
		for j := 0; j <= i; j++ {
			apps = append(apps, app("c", "p", "2026-10-01", s))
		}
	}
	stats := ComputeApplicationStats(apps)
	sum := 0
	for _, n := range stats.ByStatus {
		sum += n
	}
	if sum != stats.Total {
		t.Errorf("sum of counts = %d, total = %d", sum, stats.Total)
	}
}

func TestRecentActivity(t *testing.T) {
	apps := []model.Application{
		app("A", "x", "2026-10-10", model.ApplicationStatusApplied),
		app("B", "x", "2026-10-10", model.ApplicationStatusApplied),
		app("C", "x", "2026-10-12", model.ApplicationStatusApplied),
		app("D", "x", "2026-10-01", model.ApplicationStatusApplied),
	}
	got := RecentActivity(apps, 2)
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].Date != "2026-10-12" || got[0].Count != 1 || got[0].Ratio != 0.5 {
		t.Errorf("got[0] = %+v", got[0])
	}
	if got[1].Date != "2026-10-10" || got[1].Ratio != 1 {
		t.Errorf("got[1] = %+v", got[1])
	}
}

func TestPeriodCounts(t *testing.T) {
	apps := []model.Application{
		app("A", "x", "2026-10-12", model.ApplicationStatusApplied), // 今週
		app("B", "x", "2026-10-14", model.ApplicationStatusApplied), // 今週
		app("C", "x", "2026-10-02", model.ApplicationStatusApplied), // 今月
		app("D", "x", "2026-09-30", model.ApplicationStatusApplied),
	}
	p := PeriodCounts(apps, testNow)
	if p.ThisWeek != 2 || p.ThisMonth != 3 {
		t.Errorf("PeriodCounts = %+v, want week=2 month=3", p)
	}
}

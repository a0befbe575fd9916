package analytics

import (
	"testing"

	"github.com/hitoshi/careertrack/internal/model"
)

func TestComputeTimeTotals(t *testing.T) {
	logs := []model.TimeLog{
		{Date: "2026-10-13", Activities: map[string]int{"Studying": 120, "Working": 300}},
		{Date: "2026-10-14", Activities: map[string]int{"Studying": 61, "Chores": 30}},
		{Date: "2026-10-12"},
	}
	got := ComputeTimeTotals(logs)

	if got.Days != 3 {
		t.Errorf("Days = %d, want 3", got.Days)
	}
	if got.Totals["Studying"] != 181 || got.GrandTotal != 511 {
		t.Errorf("totals = %v grand = %d", got.Totals, got.GrandTotal)
	}
	// 181/3 = 60.33 → 60
	if got.Averages["Studying"] != 60 {
		t.Errorf("Studying average = %d, want 60", got.Averages["Studying"])
	}
	if got.MostUsed != "Working" || got.MostUsedTotal != 300 {
		t.Errorf("MostUsed = %s (%d)", got.MostUsed, got.MostUsedTotal)
	}
}

func TestComputeTimeTotals_TieBreakByName(t *testing.T) {
	got := ComputeTimeTotals([]model.TimeLog{
		{Date: "2026-10-14", Activities: map[string]int{"Working": 60, "Chores": 60}},
	})
	if got.MostUsed != "Chores" {
		t.Errorf("MostUsed = %s, want Chores", got.MostUsed)
	}
}

func TestComputeTimeTotals_Empty(t *testing.T) {
	got := ComputeTimeTotals(nil)
	if got.GrandTotal != 0 || got.MostUsed != "" || len(got.Averages) != 0 {
		t.Errorf("empty totals = %+v", got)
	}
}

func TestProductivityScore(t *testing.T) {
	productive := []string{"Studying", "Working"}
	tests := []struct {
		name       string
		activities map[string]int
		wantScore  int
		wantLabel  string
	}{
		{"記録なし", nil, 0, ProductivityNeedsImprovement},
		{"On Track", map[string]int{"Studying": 70, "Texting": 30}, 70, ProductivityOnTrack},
		{"Moderate", map[string]int{"Working": 50, "Chores": 50}, 50, ProductivityModerate},
		{"Needs Improvement", map[string]int{"Working": 49, "Chores": 51}, 49, ProductivityNeedsImprovement},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ProductivityScore([]model.TimeLog{{Activities: tt.activities}}, productive)
			if p.Score != tt.wantScore || p.Label != tt.wantLabel {
				t.Errorf("got %d %q, want %d %q", p.Score, p.Label, tt.wantScore, tt.wantLabel)
			}
		})
	}
}

func TestSummarizeDay(t *testing.T) {
	tests := []struct {
		total      int
		wantStatus string
		wantRemain int
		wantOver   bool
	}{
		{0, DayStatusOK, 1440, false},
		{1319, DayStatusOK, 121, false},
		{1320, DayStatusLow, 120, false},
		{1440, DayStatusFull, 0, false},
		{1500, DayStatusFull, 0, true},
	}
	for _, tt := range tests {
		s := SummarizeDay(map[string]int{"Working": tt.total})
		if s.Status != tt.wantStatus || s.RemainingMinutes != tt.wantRemain || s.OverAllocated != tt.wantOver {
			t.Errorf("SummarizeDay(%d) = %+v", tt.total, s)
		}
	}
}

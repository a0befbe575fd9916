package course

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/careertrack/internal/metrics"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/repository"
	"github.com/hitoshi/careertrack/internal/security"
)

// --- モック ---

type mockCourseRepo struct {
	listFn        func(ctx context.Context, userID string) ([]model.Course, error)
	createFn      func(ctx context.Context, c *model.Course) error
	deleteFn      func(ctx context.Context, userID, id string) error
	addProgressFn func(ctx context.Context, userID, id, date string, lessons int) (*model.Course, error)
}

func (m *mockCourseRepo) ListByUserID(ctx context.Context, userID string) ([]model.Course, error) {
	return m.listFn(ctx, userID)
}
func (m *mockCourseRepo) FindByID(ctx context.Context, userID, id string) (*model.Course, error) {
	return nil, nil
}
func (m *mockCourseRepo) Create(ctx context.Context, c *model.Course) error {
	if m.createFn != nil {
		return m.createFn(ctx, c)
	}
	c.ID = "course-new"
	return nil
}
func (m *mockCourseRepo) Delete(ctx context.Context, userID, id string) error {
	return m.deleteFn(ctx, userID, id)
}
func (m *mockCourseRepo) AddProgress(ctx context.Context, userID, id, date string, lessons int) (*model.Course, error) {
	return m.addProgressFn(ctx, userID, id, date, lessons)
}
func (m *mockCourseRepo) DeleteByUserID(ctx context.Context, userID string) error {
	return nil
}

type countingInvalidator struct{ n int }

func (c *countingInvalidator) Invalidate(ctx context.Context, userID string) { c.n++ }

// 2026-10-14 23:30 UTC は東京では 2026-10-15
var fixedNow = time.Date(2026, 10, 14, 23, 30, 0, 0, time.UTC)

func newTestService(repo *mockCourseRepo, loc *time.Location) (*Service, *countingInvalidator) {
	inv := &countingInvalidator{}
	svc := NewService(repo, security.NewTextSanitizer(), inv, metrics.Nop{}, loc)
	svc.now = func() time.Time { return fixedNow }
	return svc, inv
}

// --- テスト ---

// TestService_List_Progress は講座一覧に残り日数とペースが付与されることを検証する。
func TestService_List_Progress(t *testing.T) {
	repo := &mockCourseRepo{
		listFn: func(ctx context.Context, userID string) ([]model.Course, error) {
			return []model.Course{
				{ID: "c1", Name: "Go", TotalLessons: 50, CompletedLessons: 20, TargetDate: "2026-10-23"},
			}, nil
		},
	}
	svc, _ := newTestService(repo, time.UTC)

	views, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("got %d views, want 1", len(views))
	}
	p := views[0].Progress
	if p.RemainingLessons != 30 || p.DaysLeft != 10 || p.LessonsPerDay != 3 || p.Percent != 40 {
		t.Errorf("unexpected progress: %+v", p)
	}
}

func TestService_Create(t *testing.T) {
	svc, inv := newTestService(&mockCourseRepo{}, time.UTC)

	v, err := svc.Create(context.Background(), "user-1", CreateInput{Name: " Kubernetes ", TotalLessons: 12, TargetDate: "2026-11-01"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Course.ID != "course-new" || v.Course.Name != "Kubernetes" || v.Course.CompletedLessons != 0 {
		t.Errorf("unexpected course: %+v", v.Course)
	}
	if v.Progress.RemainingLessons != 12 {
		t.Errorf("RemainingLessons = %d, want 12", v.Progress.RemainingLessons)
	}
	if inv.n != 1 {
		t.Errorf("invalidate count = %d, want 1", inv.n)
	}
}

func TestService_Create_Validation(t *testing.T) {
	tests := []struct {
		name     string
		input    CreateInput
		wantCode string
	}{
		{"名前なし", CreateInput{TotalLessons: 10, TargetDate: "2026-11-01"}, model.ErrCodeValidationFailed},
		{"レッスン数0", CreateInput{Name: "Go", TotalLessons: 0, TargetDate: "2026-11-01"}, model.ErrCodeValidationFailed},
		{"レッスン数が負", CreateInput{Name: "Go", TotalLessons: -3, TargetDate: "2026-11-01"}, model.ErrCodeValidationFailed},
		{"目標日なし", CreateInput{Name: "Go", TotalLessons: 10}, model.ErrCodeInvalidDate},
		{"目標日が不正", CreateInput{Name: "Go", TotalLessons: 10, TargetDate: "next month"}, model.ErrCodeInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockCourseRepo{
				createFn: func(ctx context.Context, c *model.Course) error {
					t.Fatal("Create should not be called")
					return nil
				},
			}
			svc, _ := newTestService(repo, time.UTC)

			_, err := svc.Create(context.Background(), "user-1", tt.input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
}

// TestService_AddProgress_DefaultsToLocalToday は日付未指定時に設定タイムゾーンの今日が使われることを検証する。
func TestService_AddProgress_DefaultsToLocalToday(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skipf("tzdata not available: %v", err)
	}

	var gotDate string
	var gotLessons int
	repo := &mockCourseRepo{
		addProgressFn: func(ctx context.Context, userID, id, date string, lessons int) (*model.Course, error) {
			gotDate, gotLessons = date, lessons
			return &model.Course{ID: id, TotalLessons: 10, CompletedLessons: 3, TargetDate: "2026-10-20",
				DailyLogs: map[string]int{date: 3}}, nil
		},
	}
	svc, inv := newTestService(repo, tokyo)

	v, err := svc.AddProgress(context.Background(), "user-1", "c1", 3, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotDate != "2026-10-15" {
		t.Errorf("date = %s, want 2026-10-15", gotDate)
	}
	if gotLessons != 3 {
		t.Errorf("lessons = %d, want 3", gotLessons)
	}
	if v.Progress.RemainingLessons != 7 {
		t.Errorf("RemainingLessons = %d, want 7", v.Progress.RemainingLessons)
	}
	if inv.n != 1 {
		t.Errorf("invalidate count = %d, want 1", inv.n)
	}
}

func TestService_AddProgress_Errors(t *testing.T) {
	notFound := &mockCourseRepo{
		addProgressFn: func(ctx context.Context, userID, id, date string, lessons int) (*model.Course, error) {
			return nil, repository.ErrNotFound
		},
	}
	svc, inv := newTestService(notFound, time.UTC)

	tests := []struct {
		name     string
		lessons  int
		date     string
		wantCode string
	}{
		{"0レッスン", 0, "", model.ErrCodeValidationFailed},
		{"負のレッスン", -1, "", model.ErrCodeValidationFailed},
		{"不正な日付", 1, "2026/10/14", model.ErrCodeInvalidDate},
		{"存在しない講座", 1, "", model.ErrCodeCourseNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.AddProgress(context.Background(), "user-1", "c1", tt.lessons, tt.date)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) || apiErr.Code != tt.wantCode {
				t.Errorf("expected %s, got %v", tt.wantCode, err)
			}
		})
	}
	if inv.n != 0 {
		t.Errorf("cache should not be invalidated on failure, got %d", inv.n)
	}
}

func TestService_Delete(t *testing.T) {
	repo := &mockCourseRepo{
		deleteFn: func(ctx context.Context, userID, id string) error {
			if id == "missing" {
				return repository.ErrNotFound
			}
			return nil
		},
	}
	svc, inv := newTestService(repo, time.UTC)

	if err := svc.Delete(context.Background(), "user-1", "c1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := svc.Delete(context.Background(), "user-1", "missing")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeCourseNotFound {
		t.Errorf("expected COURSE_NOT_FOUND, got %v", err)
	}
	if inv.n != 1 {
		t.Errorf("invalidate count = %d, want 1", inv.n)
	}
}

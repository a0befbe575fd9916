package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/careertrack/internal/application"
	"github.com/hitoshi/careertrack/internal/course"
	"github.com/hitoshi/careertrack/internal/dashboard"
	"github.com/hitoshi/careertrack/internal/linkedin"
	"github.com/hitoshi/careertrack/internal/middleware"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/timelog"
)

// --- 認証 ---

type mockAuthService struct {
	getLoginURLFn    func(state string) string
	handleCallbackFn func(ctx context.Context, code string) (*model.Session, error)
	logoutFn         func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockAuthService) HandleCallback(ctx context.Context, code string) (*model.Session, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, code)
	}
	return nil, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, model.NewUserNotFoundError()
}

// --- 応募 ---

type mockApplicationService struct {
	listFn    func(ctx context.Context, userID string, q application.ListQuery) ([]model.Application, error)
	groupedFn func(ctx context.Context, userID string, q application.ListQuery) ([]application.DateGroup, error)
	createFn  func(ctx context.Context, userID string, in application.CreateInput) (*model.Application, error)
	updateFn  func(ctx context.Context, userID, id string, patch model.ApplicationPatch) (*model.Application, error)
	deleteFn  func(ctx context.Context, userID, id string) error
}

func (m *mockApplicationService) List(ctx context.Context, userID string, q application.ListQuery) ([]model.Application, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, q)
	}
	return nil, nil
}

func (m *mockApplicationService) Grouped(ctx context.Context, userID string, q application.ListQuery) ([]application.DateGroup, error) {
	if m.groupedFn != nil {
		return m.groupedFn(ctx, userID, q)
	}
	return nil, nil
}

func (m *mockApplicationService) Create(ctx context.Context, userID string, in application.CreateInput) (*model.Application, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &model.Application{ID: "app-1", UserID: userID}, nil
}

func (m *mockApplicationService) Update(ctx context.Context, userID, id string, patch model.ApplicationPatch) (*model.Application, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, patch)
	}
	return &model.Application{ID: id, UserID: userID}, nil
}

func (m *mockApplicationService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

// --- 講座 ---

type mockCourseService struct {
	listFn        func(ctx context.Context, userID string) ([]course.CourseView, error)
	createFn      func(ctx context.Context, userID string, in course.CreateInput) (*course.CourseView, error)
	addProgressFn func(ctx context.Context, userID, id string, lessons int, date string) (*course.CourseView, error)
	deleteFn      func(ctx context.Context, userID, id string) error
}

func (m *mockCourseService) List(ctx context.Context, userID string) ([]course.CourseView, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockCourseService) Create(ctx context.Context, userID string, in course.CreateInput) (*course.CourseView, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &course.CourseView{Course: model.Course{ID: "course-1", UserID: userID}}, nil
}

func (m *mockCourseService) AddProgress(ctx context.Context, userID, id string, lessons int, date string) (*course.CourseView, error) {
	if m.addProgressFn != nil {
		return m.addProgressFn(ctx, userID, id, lessons, date)
	}
	return &course.CourseView{Course: model.Course{ID: id, UserID: userID}}, nil
}

func (m *mockCourseService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

// --- 時間ログ・目標 ---

type mockTimeLogService struct {
	getFn       func(ctx context.Context, userID, date string) (*timelog.DayView, error)
	listFn      func(ctx context.Context, userID, start, end string) ([]model.TimeLog, error)
	saveFn      func(ctx context.Context, userID, date string, activities map[string]int) (*timelog.DayView, error)
	goalsFn     func(ctx context.Context, userID string) (model.Goals, error)
	saveGoalsFn func(ctx context.Context, userID string, goals model.Goals) (model.Goals, error)
}

func (m *mockTimeLogService) Categories() []string {
	return []string{"Work", "Learning", "Rest"}
}

func (m *mockTimeLogService) Get(ctx context.Context, userID, date string) (*timelog.DayView, error) {
	if m.getFn != nil {
		return m.getFn(ctx, userID, date)
	}
	return &timelog.DayView{Log: model.TimeLog{UserID: userID, Date: date}}, nil
}

func (m *mockTimeLogService) List(ctx context.Context, userID, start, end string) ([]model.TimeLog, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, start, end)
	}
	return nil, nil
}

func (m *mockTimeLogService) Save(ctx context.Context, userID, date string, activities map[string]int) (*timelog.DayView, error) {
	if m.saveFn != nil {
		return m.saveFn(ctx, userID, date, activities)
	}
	return &timelog.DayView{Log: model.TimeLog{UserID: userID, Date: date, Activities: activities}}, nil
}

func (m *mockTimeLogService) Goals(ctx context.Context, userID string) (model.Goals, error) {
	if m.goalsFn != nil {
		return m.goalsFn(ctx, userID)
	}
	return model.Goals{}, nil
}

func (m *mockTimeLogService) SaveGoals(ctx context.Context, userID string, goals model.Goals) (model.Goals, error) {
	if m.saveGoalsFn != nil {
		return m.saveGoalsFn(ctx, userID, goals)
	}
	return goals, nil
}

// --- LinkedIn ---

type mockLinkedinService struct {
	listFn      func(ctx context.Context, userID, search string) ([]linkedin.EntryView, error)
	createFn    func(ctx context.Context, userID string, in linkedin.CreateInput) (*linkedin.EntryView, error)
	updateFn    func(ctx context.Context, userID, id string, patch model.LinkedinPatch) (*linkedin.EntryView, error)
	toggleFn    func(ctx context.Context, userID, id string) (*linkedin.EntryView, error)
	deleteFn    func(ctx context.Context, userID, id string) error
	checkLinkFn func(ctx context.Context, userID, id string) (linkedin.LinkStatus, error)
}

func (m *mockLinkedinService) List(ctx context.Context, userID, search string) ([]linkedin.EntryView, error) {
	if m.listFn != nil {
		return m.listFn(ctx, userID, search)
	}
	return nil, nil
}

func (m *mockLinkedinService) Create(ctx context.Context, userID string, in linkedin.CreateInput) (*linkedin.EntryView, error) {
	if m.createFn != nil {
		return m.createFn(ctx, userID, in)
	}
	return &linkedin.EntryView{Entry: model.LinkedinEntry{ID: "entry-1", UserID: userID}}, nil
}

func (m *mockLinkedinService) Update(ctx context.Context, userID, id string, patch model.LinkedinPatch) (*linkedin.EntryView, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, userID, id, patch)
	}
	return &linkedin.EntryView{Entry: model.LinkedinEntry{ID: id, UserID: userID}}, nil
}

func (m *mockLinkedinService) ToggleFollowUp(ctx context.Context, userID, id string) (*linkedin.EntryView, error) {
	if m.toggleFn != nil {
		return m.toggleFn(ctx, userID, id)
	}
	return &linkedin.EntryView{Entry: model.LinkedinEntry{ID: id, UserID: userID, FollowedUp: true}}, nil
}

func (m *mockLinkedinService) Delete(ctx context.Context, userID, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, userID, id)
	}
	return nil
}

func (m *mockLinkedinService) CheckLink(ctx context.Context, userID, id string) (linkedin.LinkStatus, error) {
	if m.checkLinkFn != nil {
		return m.checkLinkFn(ctx, userID, id)
	}
	return linkedin.LinkStatus{Reachable: true, StatusCode: http.StatusOK}, nil
}

// --- 集計 ---

type mockDashboardService struct {
	applicationsFn func(ctx context.Context, userID string, q dashboard.ApplicationQuery) (*dashboard.ApplicationReport, error)
	timeFn         func(ctx context.Context, userID, date string) (*dashboard.TimeReport, error)
	overviewFn     func(ctx context.Context, userID string) (*dashboard.Overview, error)
}

func (m *mockDashboardService) Applications(ctx context.Context, userID string, q dashboard.ApplicationQuery) (*dashboard.ApplicationReport, error) {
	if m.applicationsFn != nil {
		return m.applicationsFn(ctx, userID, q)
	}
	return &dashboard.ApplicationReport{}, nil
}

func (m *mockDashboardService) Time(ctx context.Context, userID, date string) (*dashboard.TimeReport, error) {
	if m.timeFn != nil {
		return m.timeFn(ctx, userID, date)
	}
	return &dashboard.TimeReport{Date: date}, nil
}

func (m *mockDashboardService) Overview(ctx context.Context, userID string) (*dashboard.Overview, error) {
	if m.overviewFn != nil {
		return m.overviewFn(ctx, userID)
	}
	return &dashboard.Overview{}, nil
}

// --- ユーザー ---

type mockUserService struct {
	withdrawFn func(ctx context.Context, userID string) error
}

func (m *mockUserService) Withdraw(ctx context.Context, userID string) error {
	if m.withdrawFn != nil {
		return m.withdrawFn(ctx, userID)
	}
	return nil
}

// --- ヘルパー ---

// withUserID はセッションミドルウェア通過後と同じコンテキストを持つリクエストを返す。
func withUserID(r *http.Request, userID string) *http.Request {
	return r.WithContext(middleware.ContextWithUserID(r.Context(), userID))
}

// withURLParam はchiのルーティングを経由したときと同じURLパラメータを設定する。
func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.RouteContext(r.Context())
	if rctx == nil {
		rctx = chi.NewRouteContext()
		r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}
	rctx.URLParams.Add(key, value)
	return r
}

// newJSONRequest はJSONボディ付きの認証済みリクエストを生成する。
func newJSONRequest(method, target, body string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	return withUserID(req, "user-1")
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v\nbody: %s", err, w.Body.String())
	}
	return v
}

func assertErrorCode(t *testing.T, w *httptest.ResponseRecorder, wantStatus int, wantCode string) {
	t.Helper()
	if w.Code != wantStatus {
		t.Fatalf("status = %d, want %d (body: %s)", w.Code, wantStatus, w.Body.String())
	}
	body := decodeBody[middleware.ErrorResponseBody](t, w)
	if body.Code != wantCode {
		t.Errorf("code = %q, want %q", body.Code, wantCode)
	}
}

var (
	_ AuthServiceInterface        = (*mockAuthService)(nil)
	_ ApplicationServiceInterface = (*mockApplicationService)(nil)
	_ CourseServiceInterface      = (*mockCourseService)(nil)
	_ TimeLogServiceInterface     = (*mockTimeLogService)(nil)
	_ LinkedinServiceInterface    = (*mockLinkedinService)(nil)
	_ DashboardServiceInterface   = (*mockDashboardService)(nil)
	_ UserServiceInterface        = (*mockUserService)(nil)
)

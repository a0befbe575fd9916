package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/careertrack/internal/analytics"
	"github.com/hitoshi/careertrack/internal/course"
)

// CourseServiceInterface は講座ハンドラーが必要とするサービスインターフェース。
type CourseServiceInterface interface {
	List(ctx context.Context, userID string) ([]course.CourseView, error)
	Create(ctx context.Context, userID string, in course.CreateInput) (*course.CourseView, error)
	AddProgress(ctx context.Context, userID, id string, lessons int, date string) (*course.CourseView, error)
	Delete(ctx context.Context, userID, id string) error
}

// CourseHandler は講座のHTTPハンドラー。
type CourseHandler struct {
	service CourseServiceInterface
}

// NewCourseHandler はCourseHandlerを生成する。
func NewCourseHandler(service CourseServiceInterface) *CourseHandler {
	return &CourseHandler{service: service}
}

type courseResponse struct {
	ID               string                   `json:"id"`
	Name             string                   `json:"name"`
	TotalLessons     int                      `json:"total_lessons"`
	CompletedLessons int                      `json:"completed_lessons"`
	TargetDate       string                   `json:"target_date"`
	DailyLogs        map[string]int           `json:"daily_logs"`
	Progress         analytics.CourseProgress `json:"progress"`
}

type createCourseRequest struct {
	Name         string `json:"name"`
	TotalLessons int    `json:"total_lessons"`
	TargetDate   string `json:"target_date"`
}

// addProgressRequest の Date は省略時に今日になる。
type addProgressRequest struct {
	Lessons int    `json:"lessons"`
	Date    string `json:"date"`
}

// List は講座一覧をペース・残り日数付きで返す。
// GET /api/courses
func (h *CourseHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	views, err := h.service.List(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]courseResponse, len(views))
	for i, v := range views {
		resp[i] = toCourseResponse(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create は講座を登録する。
// POST /api/courses
func (h *CourseHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createCourseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	view, err := h.service.Create(r.Context(), userID, course.CreateInput{
		Name:         req.Name,
		TotalLessons: req.TotalLessons,
		TargetDate:   req.TargetDate,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCourseResponse(*view))
}

// AddProgress はその日の消化レッスン数を加算する。
// POST /api/courses/{id}/progress
func (h *CourseHandler) AddProgress(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req addProgressRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	view, err := h.service.AddProgress(r.Context(), userID, chi.URLParam(r, "id"), req.Lessons, req.Date)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toCourseResponse(*view))
}

// Delete は講座を削除する。
// DELETE /api/courses/{id}
func (h *CourseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toCourseResponse(v course.CourseView) courseResponse {
	logs := v.Course.DailyLogs
	if logs == nil {
		logs = map[string]int{}
	}
	return courseResponse{
		ID:               v.Course.ID,
		Name:             v.Course.Name,
		TotalLessons:     v.Course.TotalLessons,
		CompletedLessons: v.Course.CompletedLessons,
		TargetDate:       v.Course.TargetDate,
		DailyLogs:        logs,
		Progress:         v.Progress,
	}
}

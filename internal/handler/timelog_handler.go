package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/careertrack/internal/analytics"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/timelog"
)

// TimeLogServiceInterface は時間ログ・目標ハンドラーが必要とするサービスインターフェース。
type TimeLogServiceInterface interface {
	Categories() []string
	Get(ctx context.Context, userID, date string) (*timelog.DayView, error)
	List(ctx context.Context, userID, start, end string) ([]model.TimeLog, error)
	Save(ctx context.Context, userID, date string, activities map[string]int) (*timelog.DayView, error)
	Goals(ctx context.Context, userID string) (model.Goals, error)
	SaveGoals(ctx context.Context, userID string, goals model.Goals) (model.Goals, error)
}

// TimeLogHandler は時間ログと目標のHTTPハンドラー。
type TimeLogHandler struct {
	service TimeLogServiceInterface
}

// NewTimeLogHandler はTimeLogHandlerを生成する。
func NewTimeLogHandler(service TimeLogServiceInterface) *TimeLogHandler {
	return &TimeLogHandler{service: service}
}

type timeLogResponse struct {
	Date         string         `json:"date"`
	Activities   map[string]int `json:"activities"`
	TotalMinutes int            `json:"total_minutes"`
}

type dayViewResponse struct {
	timeLogResponse
	Summary    analytics.DaySummary    `json:"summary"`
	Warnings   []analytics.GoalWarning `json:"warnings"`
	Categories []string                `json:"categories"`
}

type saveTimeLogRequest struct {
	Activities map[string]int `json:"activities"`
}

// List は期間内のログを日付順で返す。
// GET /api/timelogs?start=&end=
func (h *TimeLogHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	logs, err := h.service.List(r.Context(), userID, q.Get("start"), q.Get("end"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]timeLogResponse, len(logs))
	for i, l := range logs {
		resp[i] = toTimeLogResponse(l)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Get は1日分のログと目標違反を返す。
// GET /api/timelogs/{date}
func (h *TimeLogHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	view, err := h.service.Get(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toDayViewResponse(view))
}

// Save は1日分のログにカテゴリ別の分数をマージする。
// PUT /api/timelogs/{date}
func (h *TimeLogHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req saveTimeLogRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	view, err := h.service.Save(r.Context(), userID, chi.URLParam(r, "date"), req.Activities)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, h.toDayViewResponse(view))
}

// GetGoals はユーザーの目標（未登録なら既定値）を返す。
// GET /api/goals
func (h *TimeLogHandler) GetGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	goals, err := h.service.Goals(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, goals)
}

// SaveGoals は目標を置き換える。
// PUT /api/goals
func (h *TimeLogHandler) SaveGoals(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var goals model.Goals
	if err := decodeJSON(w, r, &goals); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	saved, err := h.service.SaveGoals(r.Context(), userID, goals)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, saved)
}

func toTimeLogResponse(l model.TimeLog) timeLogResponse {
	activities := l.Activities
	if activities == nil {
		activities = map[string]int{}
	}
	return timeLogResponse{
		Date:         l.Date,
		Activities:   activities,
		TotalMinutes: l.TotalMinutes(),
	}
}

func (h *TimeLogHandler) toDayViewResponse(v *timelog.DayView) dayViewResponse {
	warnings := v.Warnings
	if warnings == nil {
		warnings = []analytics.GoalWarning{}
	}
	return dayViewResponse{
		timeLogResponse: toTimeLogResponse(v.Log),
		Summary:         v.Summary,
		Warnings:        warnings,
		Categories:      h.service.Categories(),
	}
}

package handler

import (
	"context"
	"net/http"

	"github.com/hitoshi/careertrack/internal/dashboard"
)

// DashboardServiceInterface は集計ハンドラーが必要とするサービスインターフェース。
type DashboardServiceInterface interface {
	Applications(ctx context.Context, userID string, q dashboard.ApplicationQuery) (*dashboard.ApplicationReport, error)
	Time(ctx context.Context, userID, date string) (*dashboard.TimeReport, error)
	Overview(ctx context.Context, userID string) (*dashboard.Overview, error)
}

// AnalyticsHandler は集計レポートのHTTPハンドラー。
type AnalyticsHandler struct {
	service DashboardServiceInterface
}

// NewAnalyticsHandler はAnalyticsHandlerを生成する。
func NewAnalyticsHandler(service DashboardServiceInterface) *AnalyticsHandler {
	return &AnalyticsHandler{service: service}
}

// Applications は応募の統計・期間別件数・連続日数・インサイトを返す。
// GET /api/analytics/applications?filter=&start=&end=&q=
func (h *AnalyticsHandler) Applications(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	report, err := h.service.Applications(r.Context(), userID, dashboard.ApplicationQuery{
		Search: q.Get("q"),
		Filter: q.Get("filter"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Time は時間配分の集計（当日サマリ・目標違反・合計・ヒートマップ）を返す。
// GET /api/analytics/time?date=
func (h *AnalyticsHandler) Time(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	report, err := h.service.Time(r.Context(), userID, r.URL.Query().Get("date"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, report)
}

// Dashboard は全トラッカーの概要をまとめて返す。
// GET /api/dashboard
func (h *AnalyticsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	overview, err := h.service.Overview(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, overview)
}

package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/careertrack/internal/application"
	"github.com/hitoshi/careertrack/internal/model"
)

// ApplicationServiceInterface は応募ハンドラーが必要とするサービスインターフェース。
type ApplicationServiceInterface interface {
	List(ctx context.Context, userID string, q application.ListQuery) ([]model.Application, error)
	Grouped(ctx context.Context, userID string, q application.ListQuery) ([]application.DateGroup, error)
	Create(ctx context.Context, userID string, in application.CreateInput) (*model.Application, error)
	Update(ctx context.Context, userID, id string, patch model.ApplicationPatch) (*model.Application, error)
	Delete(ctx context.Context, userID, id string) error
}

// ApplicationHandler は応募記録のHTTPハンドラー。
type ApplicationHandler struct {
	service ApplicationServiceInterface
}

// NewApplicationHandler はApplicationHandlerを生成する。
func NewApplicationHandler(service ApplicationServiceInterface) *ApplicationHandler {
	return &ApplicationHandler{service: service}
}

type applicationResponse struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Position    string    `json:"position"`
	DateApplied string    `json:"date_applied"`
	Status      string    `json:"status"`
	Salary      string    `json:"salary"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type applicationGroupResponse struct {
	Date         string                `json:"date"`
	Applications []applicationResponse `json:"applications"`
}

type createApplicationRequest struct {
	Company     string `json:"company"`
	Position    string `json:"position"`
	DateApplied string `json:"date_applied"`
	Status      string `json:"status"`
	Salary      string `json:"salary"`
	Notes       string `json:"notes"`
}

// updateApplicationRequest は部分更新リクエスト。省略したフィールドは変更しない。
type updateApplicationRequest struct {
	Company     *string `json:"company"`
	Position    *string `json:"position"`
	DateApplied *string `json:"date_applied"`
	Status      *string `json:"status"`
	Salary      *string `json:"salary"`
	Notes       *string `json:"notes"`
}

func (req updateApplicationRequest) toPatch() model.ApplicationPatch {
	patch := model.ApplicationPatch{
		Company:     req.Company,
		Position:    req.Position,
		DateApplied: req.DateApplied,
		Salary:      req.Salary,
		Notes:       req.Notes,
	}
	if req.Status != nil {
		s := model.ApplicationStatus(*req.Status)
		patch.Status = &s
	}
	return patch
}

// applicationListQuery はクエリ文字列 q, filter, start, end, date を読み取る。
func applicationListQuery(r *http.Request) application.ListQuery {
	q := r.URL.Query()
	return application.ListQuery{
		Search: q.Get("q"),
		Filter: q.Get("filter"),
		Start:  q.Get("start"),
		End:    q.Get("end"),
		Date:   q.Get("date"),
	}
}

// List は絞り込み済みの応募一覧を返す。
// GET /api/applications?q=&filter=&start=&end=&date=
func (h *ApplicationHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	apps, err := h.service.List(r.Context(), userID, applicationListQuery(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponses(apps))
}

// Grouped は応募日ごとにまとめた一覧を新しい日付順で返す。
// GET /api/applications/grouped
func (h *ApplicationHandler) Grouped(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	groups, err := h.service.Grouped(r.Context(), userID, applicationListQuery(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]applicationGroupResponse, len(groups))
	for i, g := range groups {
		resp[i] = applicationGroupResponse{
			Date:         g.Date,
			Applications: toApplicationResponses(g.Applications),
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create は応募を登録する。
// POST /api/applications
func (h *ApplicationHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	app, err := h.service.Create(r.Context(), userID, application.CreateInput{
		Company:     req.Company,
		Position:    req.Position,
		DateApplied: req.DateApplied,
		Status:      model.ApplicationStatus(req.Status),
		Salary:      req.Salary,
		Notes:       req.Notes,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toApplicationResponse(*app))
}

// Update は応募を部分更新する。
// PATCH /api/applications/{id}
func (h *ApplicationHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateApplicationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	app, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toApplicationResponse(*app))
}

// Delete は応募を削除する。
// DELETE /api/applications/{id}
func (h *ApplicationHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func toApplicationResponse(app model.Application) applicationResponse {
	return applicationResponse{
		ID:          app.ID,
		Company:     app.Company,
		Position:    app.Position,
		DateApplied: app.DateApplied,
		Status:      string(app.Status),
		Salary:      app.Salary,
		Notes:       app.Notes,
		CreatedAt:   app.CreatedAt,
		UpdatedAt:   app.UpdatedAt,
	}
}

// toApplicationResponses はnilスライスでも空配列としてエンコードされるよう変換する。
func toApplicationResponses(apps []model.Application) []applicationResponse {
	resp := make([]applicationResponse, len(apps))
	for i, app := range apps {
		resp[i] = toApplicationResponse(app)
	}
	return resp
}

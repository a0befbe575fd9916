package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hitoshi/careertrack/internal/linkedin"
	"github.com/hitoshi/careertrack/internal/model"
)

// LinkedinServiceInterface はLinkedInハンドラーが必要とするサービスインターフェース。
type LinkedinServiceInterface interface {
	List(ctx context.Context, userID, search string) ([]linkedin.EntryView, error)
	Create(ctx context.Context, userID string, in linkedin.CreateInput) (*linkedin.EntryView, error)
	Update(ctx context.Context, userID, id string, patch model.LinkedinPatch) (*linkedin.EntryView, error)
	ToggleFollowUp(ctx context.Context, userID, id string) (*linkedin.EntryView, error)
	Delete(ctx context.Context, userID, id string) error
	CheckLink(ctx context.Context, userID, id string) (linkedin.LinkStatus, error)
}

// LinkedinHandler はLinkedInアウトリーチ記録のHTTPハンドラー。
type LinkedinHandler struct {
	service LinkedinServiceInterface
}

// NewLinkedinHandler はLinkedinHandlerを生成する。
func NewLinkedinHandler(service LinkedinServiceInterface) *LinkedinHandler {
	return &LinkedinHandler{service: service}
}

type recruiterJSON struct {
	Name     string `json:"name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	LinkedIn string `json:"linkedin"`
}

func (r recruiterJSON) toModel() model.Recruiter {
	return model.Recruiter{Name: r.Name, Phone: r.Phone, Email: r.Email, LinkedIn: r.LinkedIn}
}

type linkedinResponse struct {
	ID          string        `json:"id"`
	Recruiter   recruiterJSON `json:"recruiter"`
	PostURL     string        `json:"post_url"`
	Status      string        `json:"status"`
	AppliedDate string        `json:"applied_date"`
	FollowedUp  bool          `json:"followed_up"`
	DaysElapsed int           `json:"days_elapsed"`
}

type createLinkedinRequest struct {
	Recruiter   recruiterJSON `json:"recruiter"`
	PostURL     string        `json:"post_url"`
	Status      string        `json:"status"`
	AppliedDate string        `json:"applied_date"`
	FollowedUp  bool          `json:"followed_up"`
}

// updateLinkedinRequest のrecruiterは指定時にまるごと置き換える。
type updateLinkedinRequest struct {
	Recruiter   *recruiterJSON `json:"recruiter"`
	PostURL     *string        `json:"post_url"`
	Status      *string        `json:"status"`
	AppliedDate *string        `json:"applied_date"`
	FollowedUp  *bool          `json:"followed_up"`
}

func (req updateLinkedinRequest) toPatch() model.LinkedinPatch {
	patch := model.LinkedinPatch{
		PostURL:     req.PostURL,
		AppliedDate: req.AppliedDate,
		FollowedUp:  req.FollowedUp,
	}
	if req.Recruiter != nil {
		rec := req.Recruiter.toModel()
		patch.Recruiter = &rec
	}
	if req.Status != nil {
		s := model.LinkedinStatus(*req.Status)
		patch.Status = &s
	}
	return patch
}

// List はエントリ一覧を返す。
// GET /api/linkedin?q=
func (h *LinkedinHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	views, err := h.service.List(r.Context(), userID, r.URL.Query().Get("q"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	resp := make([]linkedinResponse, len(views))
	for i, v := range views {
		resp[i] = toLinkedinResponse(v)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Create はエントリを登録する。
// POST /api/linkedin
func (h *LinkedinHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req createLinkedinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	view, err := h.service.Create(r.Context(), userID, linkedin.CreateInput{
		Recruiter:   req.Recruiter.toModel(),
		PostURL:     req.PostURL,
		Status:      model.LinkedinStatus(req.Status),
		AppliedDate: req.AppliedDate,
		FollowedUp:  req.FollowedUp,
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, toLinkedinResponse(*view))
}

// Update はエントリを部分更新する。
// PATCH /api/linkedin/{id}
func (h *LinkedinHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	var req updateLinkedinRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeAPIErrorResponse(w, http.StatusBadRequest, newInvalidRequestError())
		return
	}

	view, err := h.service.Update(r.Context(), userID, chi.URLParam(r, "id"), req.toPatch())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLinkedinResponse(*view))
}

// ToggleFollowUp はフォローアップ済みフラグを反転する。
// POST /api/linkedin/{id}/follow-up
func (h *LinkedinHandler) ToggleFollowUp(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	view, err := h.service.ToggleFollowUp(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toLinkedinResponse(*view))
}

// Delete はエントリを削除する。
// DELETE /api/linkedin/{id}
func (h *LinkedinHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// CheckLink は投稿URLの到達性を確認する。到達できない場合も200で結果を返す。
// POST /api/linkedin/{id}/check-link
func (h *LinkedinHandler) CheckLink(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUserID(w, r)
	if !ok {
		return
	}

	status, err := h.service.CheckLink(r.Context(), userID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, status)
}

func toLinkedinResponse(v linkedin.EntryView) linkedinResponse {
	e := v.Entry
	return linkedinResponse{
		ID: e.ID,
		Recruiter: recruiterJSON{
			Name:     e.Recruiter.Name,
			Phone:    e.Recruiter.Phone,
			Email:    e.Recruiter.Email,
			LinkedIn: e.Recruiter.LinkedIn,
		},
		PostURL:     e.PostURL,
		Status:      string(e.Status),
		AppliedDate: e.AppliedDate,
		FollowedUp:  e.FollowedUp,
		DaysElapsed: v.DaysElapsed,
	}
}

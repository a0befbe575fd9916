// Package linkedin はLinkedIn求人投稿経由のアウトリーチ記録を管理する。
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/hitoshi/careertrack/internal/analytics"
	"github.com/hitoshi/careertrack/internal/metrics"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/repository"
	"github.com/hitoshi/careertrack/internal/security"
)

const (
	maxNameLength  = 200
	maxPhoneLength = 50
)

// リンク確認結果のメトリクスラベル
const (
	linkResultReachable   = "reachable"
	linkResultUnreachable = "unreachable"
	linkResultError       = "error"
)

// CacheInvalidator は記録の変更時にユーザーの集計キャッシュを無効化する。
type CacheInvalidator interface {
	Invalidate(ctx context.Context, userID string)
}

// URLValidator はURLの静的な安全性検証を行う。
type URLValidator interface {
	ValidateURL(rawURL string) error
}

// LinkPinger は登録済みURLの到達性を確認する。
type LinkPinger interface {
	Check(ctx context.Context, rawURL string) (LinkStatus, error)
}

// CreateInput はエントリの作成内容。StatusとAppliedDateは省略可能。
type CreateInput struct {
	Recruiter   model.Recruiter
	PostURL     string
	Status      model.LinkedinStatus
	AppliedDate string
	FollowedUp  bool
}

// EntryView はエントリと応募からの経過日数。
type EntryView struct {
	Entry       model.LinkedinEntry
	DaysElapsed int
}

// Service はLinkedInエントリのサービス層。
type Service struct {
	repo      repository.LinkedinRepository
	guard     URLValidator
	checker   LinkPinger
	sanitizer security.TextSanitizer
	cache     CacheInvalidator
	metrics   metrics.MetricsCollector
	loc       *time.Location
	now       func() time.Time
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	repo repository.LinkedinRepository,
	guard URLValidator,
	checker LinkPinger,
	sanitizer security.TextSanitizer,
	cache CacheInvalidator,
	collector metrics.MetricsCollector,
	loc *time.Location,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:      repo,
		guard:     guard,
		checker:   checker,
		sanitizer: sanitizer,
		cache:     cache,
		metrics:   metrics.OrNop(collector),
		loc:       loc,
		now:       time.Now,
	}
}

func (s *Service) today() time.Time {
	return s.now().In(s.loc)
}

func (s *Service) view(e model.LinkedinEntry) EntryView {
	return EntryView{Entry: e, DaysElapsed: analytics.DaysElapsed(e.AppliedDate, s.today())}
}

// List は検索語（リクルーター名・メール・投稿URL）に一致するエントリを返す。
func (s *Service) List(ctx context.Context, userID, search string) ([]EntryView, error) {
	entries, err := s.repo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("LinkedInエントリ一覧の取得に失敗しました: %w", err)
	}

	filtered := analytics.FilterLinkedin(entries, search)
	views := make([]EntryView, len(filtered))
	for i, e := range filtered {
		views[i] = s.view(e)
	}
	return views, nil
}

// Create はエントリを作成する。ステータスの既定はApplied、フォローアップの既定はfalse。
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*EntryView, error) {
	e := &model.LinkedinEntry{
		UserID:      userID,
		Recruiter:   in.Recruiter,
		PostURL:     in.PostURL,
		Status:      in.Status,
		AppliedDate: in.AppliedDate,
		FollowedUp:  in.FollowedUp,
	}
	if e.Status == "" {
		e.Status = model.LinkedinStatusApplied
	}
	if e.AppliedDate == "" {
		e.AppliedDate = analytics.FormatDate(s.today())
	}

	if err := s.normalize(e); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return nil, fmt.Errorf("LinkedInエントリの作成に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "create")
	v := s.view(*e)
	return &v, nil
}

// Update はエントリを部分更新する。
func (s *Service) Update(ctx context.Context, userID, id string, patch model.LinkedinPatch) (*EntryView, error) {
	e, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	patch.Apply(e)
	if err := s.normalize(e); err != nil {
		return nil, err
	}
	if err := s.save(ctx, e); err != nil {
		return nil, err
	}

	s.changed(ctx, userID, "update")
	v := s.view(*e)
	return &v, nil
}

// ToggleFollowUp はフォローアップ済みフラグを反転する。
func (s *Service) ToggleFollowUp(ctx context.Context, userID, id string) (*EntryView, error) {
	e, err := s.find(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	e.FollowedUp = !e.FollowedUp
	if err := s.save(ctx, e); err != nil {
		return nil, err
	}

	s.changed(ctx, userID, "follow_up")
	v := s.view(*e)
	return &v, nil
}

// Delete はエントリを削除する。
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewLinkedinEntryNotFoundError(id)
		}
		return fmt.Errorf("LinkedInエントリの削除に失敗しました: %w", err)
	}

	s.changed(ctx, userID, "delete")
	return nil
}

// CheckLink はエントリの投稿URLが現在も閲覧できるかを確認する。
// 到達できないことは結果として返し、エラーにはしない。
func (s *Service) CheckLink(ctx context.Context, userID, id string) (LinkStatus, error) {
	e, err := s.find(ctx, userID, id)
	if err != nil {
		return LinkStatus{}, err
	}
	if err := s.guard.ValidateURL(e.PostURL); err != nil {
		s.metrics.RecordLinkCheck(linkResultError)
		return LinkStatus{}, model.NewUnsafeURLError(err.Error())
	}

	status, err := s.checker.Check(ctx, e.PostURL)
	if err != nil {
		s.metrics.RecordLinkCheck(linkResultError)
		return LinkStatus{}, fmt.Errorf("リンクの確認に失敗しました: %w", err)
	}

	if status.Reachable {
		s.metrics.RecordLinkCheck(linkResultReachable)
	} else {
		s.metrics.RecordLinkCheck(linkResultUnreachable)
	}
	return status, nil
}

func (s *Service) find(ctx context.Context, userID, id string) (*model.LinkedinEntry, error) {
	e, err := s.repo.FindByID(ctx, userID, id)
	if err != nil {
		return nil, fmt.Errorf("LinkedInエントリの取得に失敗しました: %w", err)
	}
	if e == nil {
		return nil, model.NewLinkedinEntryNotFoundError(id)
	}
	return e, nil
}

func (s *Service) save(ctx context.Context, e *model.LinkedinEntry) error {
	if err := s.repo.Update(ctx, e); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.NewLinkedinEntryNotFoundError(e.ID)
		}
		return fmt.Errorf("LinkedInエントリの更新に失敗しました: %w", err)
	}
	return nil
}

// normalize は入力を整形し、必須項目・URL・ステータスを検証する。
func (s *Service) normalize(e *model.LinkedinEntry) error {
	r := &e.Recruiter
	r.Name = s.sanitizer.SanitizeText(r.Name)
	r.Phone = s.sanitizer.SanitizeText(r.Phone)
	r.Email = strings.TrimSpace(r.Email)
	r.LinkedIn = strings.TrimSpace(r.LinkedIn)
	e.PostURL = strings.TrimSpace(e.PostURL)
	e.AppliedDate = strings.TrimSpace(e.AppliedDate)

	switch {
	case r.Name == "":
		return model.NewValidationError("recruiter.name", "必須です")
	case len([]rune(r.Name)) > maxNameLength:
		return model.NewValidationError("recruiter.name", "長すぎます")
	case len([]rune(r.Phone)) > maxPhoneLength:
		return model.NewValidationError("recruiter.phone", "長すぎます")
	case e.PostURL == "":
		return model.NewValidationError("postUrl", "必須です")
	case !e.Status.Valid():
		return model.NewValidationError("status", "未定義のステータスです")
	}

	if r.Email != "" {
		if _, err := mail.ParseAddress(r.Email); err != nil {
			return model.NewValidationError("recruiter.email", "メールアドレスの形式が不正です")
		}
	}
	if err := s.guard.ValidateURL(e.PostURL); err != nil {
		return model.NewUnsafeURLError(err.Error())
	}
	if r.LinkedIn != "" {
		if err := s.guard.ValidateURL(r.LinkedIn); err != nil {
			return model.NewUnsafeURLError(err.Error())
		}
	}
	if _, ok := analytics.ParseDate(e.AppliedDate, s.loc); !ok {
		return model.NewInvalidDateError(e.AppliedDate)
	}
	return nil
}

func (s *Service) changed(ctx context.Context, userID, op string) {
	s.metrics.RecordMutation("linkedin", op)
	if s.cache != nil {
		s.cache.Invalidate(ctx, userID)
	}
}

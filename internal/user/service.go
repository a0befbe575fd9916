// Package user はユーザー管理のドメインロジックを提供する。
package user

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/careertrack/internal/model"
	"github.com/hitoshi/careertrack/internal/repository"
)

// RecordDeleter はユーザーが所有する記録の一括削除インターフェース。
// 各記録のリポジトリが満たす。
type RecordDeleter interface {
	DeleteByUserID(ctx context.Context, userID string) error
}

// NamedDeleter は削除対象の種類名とRecordDeleterの組。名前はログとエラーに使う。
type NamedDeleter struct {
	Kind    string
	Deleter RecordDeleter
}

// CacheForgetter は退会したユーザーのキャッシュ世代を破棄する。
type CacheForgetter interface {
	Forget(ctx context.Context, userID string)
}

// Service はユーザー管理のサービス層。
// 退会処理のビジネスロジックを提供する。
type Service struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	deleters    []NamedDeleter
	cache       CacheForgetter
}

// NewService はServiceの新しいインスタンスを生成する。
// deletersは指定順に実行される。
func NewService(
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	cache CacheForgetter,
	deleters ...NamedDeleter,
) *Service {
	return &Service{
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		deleters:    deleters,
		cache:       cache,
	}
}

// Withdraw はユーザーの退会処理を実行する。
// 削除順序: 各記録 → sessions → user（identitiesはCASCADE）→ キャッシュ世代。
// 途中で失敗した場合は以降を実行せずにエラーを返す。再実行しても安全。
func (s *Service) Withdraw(ctx context.Context, userID string) error {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("ユーザーの取得に失敗しました: %w", err)
	}
	if user == nil {
		return model.NewUserNotFoundError()
	}

	slog.Info("退会処理を開始します",
		slog.String("user_id", userID),
	)

	for _, d := range s.deleters {
		if err := d.Deleter.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("%sの削除に失敗しました: %w", d.Kind, err)
		}
		slog.Debug("記録を削除しました",
			slog.String("user_id", userID),
			slog.String("kind", d.Kind),
		)
	}

	if s.sessionRepo != nil {
		if err := s.sessionRepo.DeleteByUserID(ctx, userID); err != nil {
			return fmt.Errorf("セッションの削除に失敗しました: %w", err)
		}
	}

	if err := s.userRepo.DeleteByID(ctx, userID); err != nil {
		return fmt.Errorf("ユーザーの削除に失敗しました: %w", err)
	}

	if s.cache != nil {
		s.cache.Forget(ctx, userID)
	}

	slog.Info("退会処理が完了しました",
		slog.String("user_id", userID),
		slog.Int("record_kinds", len(s.deleters)),
	)
	return nil
}

// Package repository はデータ永続化のインターフェースを定義する。
// すべての記録の操作はuser_idでスコープされ、他ユーザーの記録には触れない。
package repository

import (
	"context"
	"errors"

	"github.com/hitoshi/careertrack/internal/model"
)

// ErrNotFound は更新・削除対象の記録が存在しない（または他ユーザーの所有である）ことを表す。
var ErrNotFound = errors.New("record not found")

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// DeleteByID は指定IDのユーザーを削除する。
	// 関連するidentities、sessions、全記録はCASCADE削除される。
	DeleteByID(ctx context.Context, id string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	DeleteByID(ctx context.Context, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
	// DeleteExpired は期限切れのセッションを削除し、削除件数を返す。
	DeleteExpired(ctx context.Context) (int64, error)
}

// ApplicationRepository は応募記録の永続化インターフェース。
type ApplicationRepository interface {
	// ListByUserID はユーザーの全応募を応募日の新しい順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.Application, error)
	// FindByID は応募を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID, id string) (*model.Application, error)
	// Create はIDを採番して応募を作成する。
	Create(ctx context.Context, app *model.Application) error
	// Update は応募の全フィールドを上書きする。対象がなければErrNotFound。
	Update(ctx context.Context, app *model.Application) error
	// Delete は応募を削除する。対象がなければErrNotFound。
	Delete(ctx context.Context, userID, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// CourseRepository は講座記録の永続化インターフェース。
type CourseRepository interface {
	// ListByUserID はユーザーの全講座を日次ログ付きで返す。
	ListByUserID(ctx context.Context, userID string) ([]model.Course, error)
	// FindByID は講座を日次ログ付きで取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, userID, id string) (*model.Course, error)
	Create(ctx context.Context, course *model.Course) error
	// Delete は講座を削除する。日次ログはCASCADE削除される。対象がなければErrNotFound。
	Delete(ctx context.Context, userID, id string) error
	// AddProgress はdateの日次ログにlessonsを加算し、completed_lessonsも同じトランザクションで加算する。
	// 対象がなければErrNotFound。
	AddProgress(ctx context.Context, userID, id, date string, lessons int) (*model.Course, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// TimeLogRepository は日ごとの時間ログの永続化インターフェース。
type TimeLogRepository interface {
	// FindByDate は指定日のログを取得する。見つからない場合はnilを返す。
	FindByDate(ctx context.Context, userID, date string) (*model.TimeLog, error)
	// ListByRange はstartからendまで（両端含む）のログを日付の古い順に返す。空文字の境界は無制限。
	ListByRange(ctx context.Context, userID, start, end string) ([]model.TimeLog, error)
	// Upsert は指定日のログにカテゴリをマージする。書き込みに含まれないカテゴリは保持される。
	Upsert(ctx context.Context, userID, date string, activities map[string]int) (*model.TimeLog, error)
	DeleteByUserID(ctx context.Context, userID string) error
}

// GoalRepository はユーザーごとの目標ドキュメントの永続化インターフェース。
type GoalRepository interface {
	// FindByUserID は目標を取得する。未登録の場合はnilを返す。
	FindByUserID(ctx context.Context, userID string) (model.Goals, error)
	// Save は目標ドキュメントを置き換える。
	Save(ctx context.Context, userID string, goals model.Goals) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// LinkedinRepository はLinkedInエントリの永続化インターフェース。
type LinkedinRepository interface {
	// ListByUserID はユーザーの全エントリを応募日の新しい順で返す。
	ListByUserID(ctx context.Context, userID string) ([]model.LinkedinEntry, error)
	FindByID(ctx context.Context, userID, id string) (*model.LinkedinEntry, error)
	Create(ctx context.Context, entry *model.LinkedinEntry) error
	// Update はエントリの全フィールドを上書きする。対象がなければErrNotFound。
	Update(ctx context.Context, entry *model.LinkedinEntry) error
	Delete(ctx context.Context, userID, id string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, record, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeApplicationNotFound   = "APPLICATION_NOT_FOUND"
	ErrCodeCourseNotFound        = "COURSE_NOT_FOUND"
	ErrCodeLinkedinEntryNotFound = "LINKEDIN_ENTRY_NOT_FOUND"
	ErrCodeInvalidFilter         = "INVALID_FILTER"
	ErrCodeInvalidDate           = "INVALID_DATE"
	ErrCodeUnsafeURL             = "UNSAFE_URL"
	ErrCodeUserNotFound          = "USER_NOT_FOUND"
	ErrCodeUnauthorized          = "UNAUTHORIZED"
	ErrCodeCSRFFailed            = "CSRF_VALIDATION_FAILED"
	ErrCodeRateLimitExceeded     = "RATE_LIMIT_EXCEEDED"
)

// NewValidationError は入力検証エラーを生成する。
func NewValidationError(field, reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容が不正です: %s (%s)", field, reason),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewApplicationNotFoundError は応募が見つからない場合のエラーを生成する。
func NewApplicationNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeApplicationNotFound,
		Message:  fmt.Sprintf("指定された応募が見つかりません: %s", id),
		Category: "record",
		Action:   "応募一覧を再読み込みしてください。",
	}
}

// NewCourseNotFoundError は講座が見つからない場合のエラーを生成する。
func NewCourseNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeCourseNotFound,
		Message:  fmt.Sprintf("指定された講座が見つかりません: %s", id),
		Category: "record",
		Action:   "講座一覧を再読み込みしてください。",
	}
}

// NewLinkedinEntryNotFoundError はLinkedInエントリが見つからない場合のエラーを生成する。
func NewLinkedinEntryNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeLinkedinEntryNotFound,
		Message:  fmt.Sprintf("指定されたLinkedInエントリが見つかりません: %s", id),
		Category: "record",
		Action:   "一覧を再読み込みしてください。",
	}
}

// NewInvalidFilterError は無効な期間フィルタエラーを生成する。
func NewInvalidFilterError(filter string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidFilter,
		Message:  fmt.Sprintf("無効なフィルタです: %s", filter),
		Category: "validation",
		Action:   "フィルタには all、week、month、custom のいずれかを指定してください。",
	}
}

// NewInvalidDateError は日付形式エラーを生成する。
func NewInvalidDateError(value string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidDate,
		Message:  fmt.Sprintf("無効な日付です: %s", value),
		Category: "validation",
		Action:   "日付は YYYY-MM-DD 形式で指定してください。",
	}
}

// NewUnsafeURLError は安全でないURLが指定された場合のエラーを生成する。
func NewUnsafeURLError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeUnsafeURL,
		Message:  fmt.Sprintf("このURLは登録できません: %s", reason),
		Category: "validation",
		Action:   "http:// または https:// で始まる公開URLを入力してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewUnauthorizedError は未認証リクエストのエラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "ログインが必要です。",
		Category: "auth",
		Action:   "ログインしてから再度お試しください。",
	}
}

// NewCSRFFailedError はCSRFトークン検証に失敗した場合のエラーを生成する。
func NewCSRFFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRFFailed,
		Message:  "リクエストの検証に失敗しました。",
		Category: "auth",
		Action:   "ページを再読み込みしてから再度お試しください。",
	}
}

// NewRateLimitExceededError はレート制限超過のエラーを生成する。
func NewRateLimitExceededError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimitExceeded,
		Message:  "リクエストが多すぎます。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

package model

import "time"

// User はダッシュボードを利用するアカウントを表す。
// すべての記録（応募・講座・時間ログ・目標・LinkedIn）はただ1人のユーザーに所有される。
type User struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Identity は外部IdPのアカウントとUserの紐付けを表す。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はログインセッションを表す。ExpiresAtを過ぎたセッションは無効。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

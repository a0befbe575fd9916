package model

import "time"

// LinkedinStatus はLinkedIn経由の応募の状況を表す。
type LinkedinStatus string

const (
	// LinkedinStatusApplied は応募済み。
	LinkedinStatusApplied LinkedinStatus = "Applied"
	// LinkedinStatusReachedOut はリクルーターに連絡済み。
	LinkedinStatusReachedOut LinkedinStatus = "Reached Out"
	// LinkedinStatusRejected は不採用。
	LinkedinStatusRejected LinkedinStatus = "Rejected"
)

// LinkedinStatuses は全ステータスを表示順で返す。
func LinkedinStatuses() []LinkedinStatus {
	return []LinkedinStatus{LinkedinStatusApplied, LinkedinStatusReachedOut, LinkedinStatusRejected}
}

// Valid はステータスが定義済みの値かを返す。
func (s LinkedinStatus) Valid() bool {
	switch s {
	case LinkedinStatusApplied, LinkedinStatusReachedOut, LinkedinStatusRejected:
		return true
	}
	return false
}

// Recruiter はリクルーターの連絡先。Name以外は任意。
type Recruiter struct {
	Name     string
	Phone    string
	Email    string
	LinkedIn string
}

// LinkedinEntry はLinkedInの求人投稿経由のアウトリーチ記録を表す。
type LinkedinEntry struct {
	ID          string
	UserID      string
	Recruiter   Recruiter
	PostURL     string
	Status      LinkedinStatus
	AppliedDate string
	FollowedUp  bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// LinkedinPatch はLinkedInエントリの部分更新内容を表す。
type LinkedinPatch struct {
	Recruiter   *Recruiter
	PostURL     *string
	Status      *LinkedinStatus
	AppliedDate *string
	FollowedUp  *bool
}

// Apply はパッチの非nilフィールドをエントリに反映する。
func (p LinkedinPatch) Apply(e *LinkedinEntry) {
	if p.Recruiter != nil {
		e.Recruiter = *p.Recruiter
	}
	if p.PostURL != nil {
		e.PostURL = *p.PostURL
	}
	if p.Status != nil {
		e.Status = *p.Status
	}
	if p.AppliedDate != nil {
		e.AppliedDate = *p.AppliedDate
	}
	if p.FollowedUp != nil {
		e.FollowedUp = *p.FollowedUp
	}
}

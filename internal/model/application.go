// Package model はドメインモデルを定義する。
package model

import "time"

// ApplicationStatus は応募の選考状況を表す。
type ApplicationStatus string

const (
	// ApplicationStatusApplied は応募済み。
	ApplicationStatusApplied ApplicationStatus = "applied"
	// ApplicationStatusInterview は面接中。
	ApplicationStatusInterview ApplicationStatus = "interview"
	// ApplicationStatusOffer は内定。
	ApplicationStatusOffer ApplicationStatus = "offer"
	// ApplicationStatusRejected は不採用。
	ApplicationStatusRejected ApplicationStatus = "rejected"
	// ApplicationStatusBookmarked は応募予定（ブックマーク）。
	ApplicationStatusBookmarked ApplicationStatus = "bookmarked"
)

// ApplicationStatuses は全ステータスを表示順で返す。
func ApplicationStatuses() []ApplicationStatus {
	return []ApplicationStatus{
		ApplicationStatusApplied,
		ApplicationStatusInterview,
		ApplicationStatusOffer,
		ApplicationStatusRejected,
		ApplicationStatusBookmarked,
	}
}

// Valid はステータスが定義済みの5値のいずれかであるかを返す。
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationStatusApplied, ApplicationStatusInterview, ApplicationStatusOffer,
		ApplicationStatusRejected, ApplicationStatusBookmarked:
		return true
	}
	return false
}

// Application は求人への応募記録を表す。
// DateAppliedはISO形式（YYYY-MM-DD）の暦日。
type Application struct {
	ID          string
	UserID      string
	Company     string
	Position    string
	DateApplied string
	Status      ApplicationStatus
	Salary      string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ApplicationPatch は応募の部分更新内容を表す。
// nilのフィールドは変更せず、既存の値を維持する。
type ApplicationPatch struct {
	Company     *string
	Position    *string
	DateApplied *string
	Status      *ApplicationStatus
	Salary      *string
	Notes       *string
}

// Apply はパッチの非nilフィールドをアプリケーションに反映する。
func (p ApplicationPatch) Apply(app *Application) {
	if p.Company != nil {
		app.Company = *p.Company
	}
	if p.Position != nil {
		app.Position = *p.Position
	}
	if p.DateApplied != nil {
		app.DateApplied = *p.DateApplied
	}
	if p.Status != nil {
		app.Status = *p.Status
	}
	if p.Salary != nil {
		app.Salary = *p.Salary
	}
	if p.Notes != nil {
		app.Notes = *p.Notes
	}
}

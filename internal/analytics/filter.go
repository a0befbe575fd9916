package analytics

import (
	"sort"
	"strings"

	"github.com/hitoshi/careertrack/internal/model"
)

// MatchesText は検索語がいずれかのフィールドに大文字小文字を区別せず含まれるかを返す。
// 空の検索語はすべてに一致する。
func MatchesText(term string, fields ...string) bool {
	term = strings.TrimSpace(term)
	if term == "" {
		return true
	}
	needle := strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

// ApplicationFilter は応募一覧の絞り込み条件。
// SelectedDateが指定された場合（日付グループ表示）はその日付と完全一致する応募のみ残す。
type ApplicationFilter struct {
	Search       string
	Range        DateRange
	SelectedDate string
}

// FilterApplications は条件に一致する応募を元の順序のまま返す。入力は変更しない。
func FilterApplications(apps []model.Application, f ApplicationFilter) []model.Application {
	out := make([]model.Application, 0, len(apps))
	for _, app := range apps {
		if !MatchesText(f.Search, app.Company, app.Position) {
			continue
		}
		if !f.Range.Contains(app.DateApplied) {
			continue
		}
		if f.SelectedDate != "" && app.DateApplied != f.SelectedDate {
			continue
		}
		out = append(out, app)
	}
	return out
}

// FilterLinkedin はリクルーター名・メール・投稿URLで絞り込む。
func FilterLinkedin(entries []model.LinkedinEntry, search string) []model.LinkedinEntry {
	out := make([]model.LinkedinEntry, 0, len(entries))
	for _, e := range entries {
		if MatchesText(search, e.Recruiter.Name, e.Recruiter.Email, e.PostURL) {
			out = append(out, e)
		}
	}
	return out
}

// GroupByDate はレコードを日付キーごとに分割する。各グループ内は入力順を保つ。
func GroupByDate[T any](records []T, key func(T) string) map[string][]T {
	groups := make(map[string][]T)
	for _, r := range records {
		k := key(r)
		groups[k] = append(groups[k], r)
	}
	return groups
}

// SortedDateKeys はグループのキーを新しい日付順に返す。
func SortedDateKeys[T any](groups map[string][]T) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys
}

// ApplicationDate は応募の日付キー。GroupByDateに渡す。
func ApplicationDate(app model.Application) string {
	return app.DateApplied
}

package security

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// TextSanitizer はメモ・給与・社名などの自由入力テキストからマークアップを除去する。
type TextSanitizer interface {
	// SanitizeText はタグをすべて取り除いたプレーンテキストを返す。
	// 文字参照は元の文字に戻し、前後の空白を削る。
	SanitizeText(raw string) string
}

// maxSanitizePasses は文字参照で多重にエスケープされた入力を展開する回数の上限。
const maxSanitizePasses = 8

type textSanitizer struct {
	policy *bluemonday.Policy
}

// NewTextSanitizer はStrictPolicyを使うTextSanitizerを生成する。
func NewTextSanitizer() *textSanitizer {
	return &textSanitizer{policy: bluemonday.StrictPolicy()}
}

// SanitizeText はタグを除去したテキストを返す。
// 文字参照を戻すとタグが現れる場合があるため、結果が変わらなくなるまで除去と展開を繰り返す。
// 上限回数で収束しない場合はエスケープしたまま返す。
// bluemondayはスレッドセーフなので同じポリシーを共有する。
func (s *textSanitizer) SanitizeText(raw string) string {
	if raw == "" {
		return ""
	}
	text := raw
	for i := 0; i < maxSanitizePasses; i++ {
		next := strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(text)))
		if next == text {
			return next
		}
		text = next
	}
	return strings.TrimSpace(s.policy.Sanitize(text))
}

var _ TextSanitizer = (*textSanitizer)(nil)

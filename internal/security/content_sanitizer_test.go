package security

import (
	"strings"
	"testing"
)

func TestSanitizeText(t *testing.T) {
	s := NewTextSanitizer()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"空文字列", "", ""},
		{"プレーンテキストはそのまま", "Follow up next Tuesday", "Follow up next Tuesday"},
		{"前後の空白を削る", "  remote only \n", "remote only"},
		{"scriptタグを除去", `<script>alert("x")</script>Call HR`, "Call HR"},
		{"装飾タグを除去", "<b>Great</b> team, <i>fast</i> process", "Great team, fast process"},
		{"イベント属性ごと除去", `<img src=x onerror=alert(1)>salary TBD`, "salary TBD"},
		{"アンパサンドを保持", "AT&T", "AT&T"},
		{"日本語", "<p>面接は来週</p>", "面接は来週"},
		{"エスケープされたタグも除去", "&lt;img src=x onerror=alert(1)&gt;Call HR", "Call HR"},
		{"二重エスケープされたタグも除去", "&amp;lt;script&amp;gt;alert(1)&amp;lt;/script&amp;gt;Call HR", "Call HR"},
		{"文字参照の記号は戻す", "R&amp;D &quot;team&quot;", `R&D "team"`},
		{"不等号を含む文", "salary 5 < 6", "salary 5 < 6"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := s.SanitizeText(tt.input); got != tt.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

// TestSanitizeText_Idempotent は同じ入力を二度通しても結果が変わらないことを検証する。
func TestSanitizeText_Idempotent(t *testing.T) {
	s := NewTextSanitizer()
	inputs := []string{
		"<p>hello</p>",
		"a & b",
		"plain",
		"&lt;img src=x onerror=alert(1)&gt;Call HR",
		"&amp;lt;b&amp;gt;bold&amp;lt;/b&amp;gt;",
	}
	for _, in := range inputs {
		once := s.SanitizeText(in)
		if twice := s.SanitizeText(once); twice != once {
			t.Errorf("not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

// TestSanitizeText_NoMarkupSurvives はエスケープされた入力から実際のタグが復元されないことを検証する。
func TestSanitizeText_NoMarkupSurvives(t *testing.T) {
	s := NewTextSanitizer()
	for _, in := range []string{
		"&lt;script&gt;alert(1)&lt;/script&gt;",
		"&#60;img src=x onerror=alert(1)&#62;",
		"&amp;lt;iframe src=//evil&amp;gt;",
	} {
		got := s.SanitizeText(in)
		if strings.Contains(got, "<script") || strings.Contains(got, "<img") || strings.Contains(got, "<iframe") {
			t.Errorf("SanitizeText(%q) = %q, markup survived", in, got)
		}
	}
}

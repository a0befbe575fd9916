// Package logger はcareertrackのJSON構造化ログを構成する。
// すべてのログにservice属性を付け、セッションIDやOAuthの認可コードなどの値は出力しない。
package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// ServiceName はすべてのログに付与するservice属性の値。
const ServiceName = "careertrack"

const redactedValue = "[REDACTED]"

// redactedKeys は値を伏せる属性キー。
var redactedKeys = map[string]bool{
	"session_id":    true,
	"csrf_token":    true,
	"code":          true,
	"state":         true,
	"access_token":  true,
	"client_secret": true,
}

// ParseLevel はLOG_LEVELの値（debug, info, warn, error）をslog.Levelに変換する。
// 空文字はinfoとして扱う。
func ParseLevel(s string) (slog.Level, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Setup はJSON構造化ログ出力のslog.Loggerを生成して返す。
// levelにslog.LevelVarを渡すと、設定読み込み後にレベルを切り替えられる。
func Setup(w io.Writer, level slog.Leveler) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	if level == nil {
		level = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: redact,
	})
	return slog.New(handler).With(slog.String("service", ServiceName))
}

// SetupDefault はSetupのロガーをグローバルロガーとして設定し、それを返す。
// 本番ではos.Stdoutを渡す。
func SetupDefault(w io.Writer, level slog.Leveler) *slog.Logger {
	l := Setup(w, level)
	slog.SetDefault(l)
	return l
}

func redact(groups []string, a slog.Attr) slog.Attr {
	if redactedKeys[a.Key] {
		return slog.String(a.Key, redactedValue)
	}
	return a
}

package app

import (
	"fmt"
	"strings"
)

// Command はcareertrackの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーを起動する。引数なしの場合の既定。
	CommandServe Command = "serve"
	// CommandWorker は期限切れセッションの定期削除を実行する。
	CommandWorker Command = "worker"
	// CommandMigrate はスキーマを最新版まで移行する。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck は起動中のサーバーの/healthを確認する。
	// distroless環境でのDockerヘルスチェック用で、設定の読み込みを行わない。
	CommandHealthcheck Command = "healthcheck"
	// CommandHelp はサブコマンドの一覧を表示する。
	CommandHelp Command = "help"
)

// commands はサブコマンドと説明の一覧。Usageの表示順。
var commands = []struct {
	cmd     Command
	summary string
}{
	{CommandServe, "start the API server (default)"},
	{CommandWorker, "run the expired-session cleanup worker"},
	{CommandMigrate, "apply database migrations up to the latest schema"},
	{CommandHealthcheck, "check /health on SERVER_PORT and exit non-zero when unhealthy"},
	{CommandHelp, "show this help"},
}

// ParseCommand はコマンドライン引数の先頭からサブコマンドを解析する。
// 引数が空の場合はCommandServe、未知のコマンドはエラーを返す。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 || args[0] == "" {
		return CommandServe, nil
	}
	switch args[0] {
	case "-h", "--help":
		return CommandHelp, nil
	}
	for _, c := range commands {
		if string(c.cmd) == args[0] {
			return c.cmd, nil
		}
	}
	return "", fmt.Errorf("unknown command %q (run 'careertrack help' for the list)", args[0])
}

// NeedsConfig は環境変数の設定を読み込んでから実行するコマンドかを返す。
func (c Command) NeedsConfig() bool {
	return c != CommandHealthcheck && c != CommandHelp
}

// Usage はサブコマンドの一覧を返す。
func Usage() string {
	var b strings.Builder
	b.WriteString("usage: careertrack [command]\n\ncommands:\n")
	for _, c := range commands {
		fmt.Fprintf(&b, "  %-12s %s\n", c.cmd, c.summary)
	}
	return b.String()
}

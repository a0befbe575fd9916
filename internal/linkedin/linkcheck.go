package linkedin

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/net/html"
)

// maxPageSize はリンク確認時に読み込む本文の上限（1MiB）。
const maxPageSize = 1 << 20

// maxTitleLength はタイトルとして返す最大文字数。
const maxTitleLength = 300

// LinkStatus はリンク確認の結果。到達できなかった場合もエラーではなく結果として返す。
type LinkStatus struct {
	Reachable  bool   `json:"reachable"`
	StatusCode int    `json:"status_code"`
	Title      string `json:"title,omitempty"`
}

// ClientFactory は接続先検証付きのHTTPクライアントを生成する。
// security.URLGuardが満たす。
type ClientFactory interface {
	NewSafeClient(timeout time.Duration) *http.Client
}

// LinkChecker は投稿URLにGETリクエストを送り、到達性とページタイトルを調べる。
type LinkChecker struct {
	client    *http.Client
	userAgent string
}

// NewLinkChecker はLinkCheckerを生成する。
func NewLinkChecker(factory ClientFactory, timeout time.Duration) *LinkChecker {
	return &LinkChecker{
		client:    factory.NewSafeClient(timeout),
		userAgent: "careertrack-linkcheck/1.0",
	}
}

// Check はURLを取得する。2xx/3xxの最終応答を到達可能とみなす。
func (c *LinkChecker) Check(ctx context.Context, rawURL string) (LinkStatus, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return LinkStatus{}, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return LinkStatus{}, ctxErr
		}
		return LinkStatus{Reachable: false}, nil
	}
	defer resp.Body.Close()

	status := LinkStatus{
		Reachable:  resp.StatusCode >= 200 && resp.StatusCode < 400,
		StatusCode: resp.StatusCode,
	}
	if status.Reachable && isHTML(resp.Header.Get("Content-Type")) {
		status.Title = extractTitle(io.LimitReader(resp.Body, maxPageSize))
	}
	return status, nil
}

func isHTML(contentType string) bool {
	ct := strings.ToLower(contentType)
	return ct == "" || strings.Contains(ct, "text/html") || strings.Contains(ct, "application/xhtml")
}

// extractTitle は最初の<title>要素のテキストを返す。bodyに入るか見つからなければ空文字。
func extractTitle(r io.Reader) string {
	tokenizer := html.NewTokenizer(r)
	inTitle := false
	var b strings.Builder

	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			if errors.Is(tokenizer.Err(), io.EOF) && inTitle {
				return normalizeTitle(b.String())
			}
			return ""

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "title":
				inTitle = true
			case "body":
				return ""
			}

		case html.TextToken:
			if inTitle {
				b.Write(tokenizer.Text())
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			if inTitle && string(name) == "title" {
				return normalizeTitle(b.String())
			}
		}
	}
}

func normalizeTitle(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxTitleLength {
		s = string(r[:maxTitleLength])
	}
	return s
}

package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/careertrack/internal/model"
)

func findCookie(resp *http.Response, name string) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// 安全なメソッドはトークンなしで通る
func TestCSRFMiddleware_SafeMethods_PassThrough(t *testing.T) {
	for _, method := range []string{http.MethodGet, http.MethodHead, http.MethodOptions} {
		t.Run(method, func(t *testing.T) {
			called := false
			handler := NewCSRFMiddleware(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
			}))

			w := serve(handler, httptest.NewRequest(method, "/api/applications", nil))

			if w.Code != http.StatusOK {
				t.Errorf("status = %d, want 200", w.Code)
			}
			if !called {
				t.Error("next handler should be called")
			}
		})
	}
}

func TestCSRFMiddleware_StateChangingRequests(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		cookieToken string
		headerToken string
		wantStatus  int
	}{
		{"POST Cookieなし", http.MethodPost, "", "token", http.StatusForbidden},
		{"POST ヘッダーなし", http.MethodPost, "token", "", http.StatusForbidden},
		{"POST 不一致", http.MethodPost, "token-a", "token-b", http.StatusForbidden},
		{"POST 一致", http.MethodPost, "token", "token", http.StatusOK},
		{"PUT 一致", http.MethodPut, "token", "token", http.StatusOK},
		{"PATCH トークンなし", http.MethodPatch, "", "", http.StatusForbidden},
		{"DELETE トークンなし", http.MethodDelete, "", "", http.StatusForbidden},
		{"DELETE 一致", http.MethodDelete, "token", "token", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			handler := NewCSRFMiddleware(CSRFConfig{})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(tt.method, "/api/applications", nil)
			if tt.cookieToken != "" {
				req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: tt.cookieToken})
			}
			if tt.headerToken != "" {
				req.Header.Set(csrfHeaderName, tt.headerToken)
			}

			w := serve(handler, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if called != (tt.wantStatus == http.StatusOK) {
				t.Errorf("handler called = %v", called)
			}
			if tt.wantStatus == http.StatusForbidden {
				var body ErrorResponseBody
				if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode: %v", err)
				}
				if body.Code != model.ErrCodeCSRFFailed {
					t.Errorf("code = %q, want %q", body.Code, model.ErrCodeCSRFFailed)
				}
			}
		})
	}
}

func TestCSRFMiddleware_GETRequest_SetsCSRFCookie(t *testing.T) {
	handler := NewCSRFMiddleware(CSRFConfig{CookieSecure: true, CookieDomain: "example.com"})(okHandler())

	w := serve(handler, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	cookie := findCookie(w.Result(), csrfCookieName)
	if cookie == nil {
		t.Fatal("expected CSRF cookie to be set")
	}
	if len(cookie.Value) != 64 {
		t.Errorf("token length = %d, want 64 hex chars", len(cookie.Value))
	}
	if cookie.HttpOnly {
		t.Error("CSRF cookie must be readable from JavaScript")
	}
	if !cookie.Secure {
		t.Error("CSRF cookie should be Secure when configured")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("SameSite = %v, want Lax", cookie.SameSite)
	}
}

func TestCSRFMiddleware_GETRequest_ExistingCookie_DoesNotReplace(t *testing.T) {
	handler := NewCSRFMiddleware(CSRFConfig{})(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing"})
	w := serve(handler, req)

	if c := findCookie(w.Result(), csrfCookieName); c != nil {
		t.Errorf("cookie should not be replaced, got %q", c.Value)
	}
}

func TestCSRFTokenHandler_IssuesOrReturnsToken(t *testing.T) {
	handler := NewCSRFTokenHandler(CSRFConfig{})

	t.Run("新規発行", func(t *testing.T) {
		w := serve(handler, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		cookie := findCookie(w.Result(), csrfCookieName)
		if cookie == nil {
			t.Fatal("expected CSRF cookie")
		}
		if body["token"] != cookie.Value {
			t.Errorf("token = %q, cookie = %q; want equal", body["token"], cookie.Value)
		}
	})

	t.Run("既存Cookieを返す", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil)
		req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "existing-token"})
		w := serve(handler, req)

		var body map[string]string
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode: %v", err)
		}
		if body["token"] != "existing-token" {
			t.Errorf("token = %q, want existing-token", body["token"])
		}
		if findCookie(w.Result(), csrfCookieName) != nil {
			t.Error("cookie should not be reissued")
		}
	})
}

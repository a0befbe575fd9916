package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// newTestRouter は本番と同じ順序でミドルウェアを組み立てたルーターを返す。
func newTestRouter(t *testing.T, logs io.Writer) *chi.Mux {
	t.Helper()

	csrfConfig := CSRFConfig{CookieSecure: false}
	rl := NewRateLimiter(testRateLimiterConfig(3, 1))
	t.Cleanup(rl.Stop)

	r := chi.NewRouter()
	r.Use(NewRecoveryMiddleware())
	r.Use(chimw.RequestID)
	r.Use(NewLoggingMiddleware(slog.New(slog.NewJSONHandler(logs, nil))))
	r.Use(NewSecurityHeadersMiddleware())
	r.Use(NewCORSMiddleware("http://localhost:3000"))

	r.Get("/api/csrf-token", NewCSRFTokenHandler(csrfConfig).ServeHTTP)
	r.Get("/panic", func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	r.Group(func(r chi.Router) {
		r.Use(NewSessionMiddleware(validSessionRepo("user-chain")))
		r.Use(NewCSRFMiddleware(csrfConfig))
		r.Use(rl.GeneralMiddleware())

		r.Get("/api/dashboard", func(w http.ResponseWriter, r *http.Request) {
			userID, _ := UserIDFromContext(r.Context())
			json.NewEncoder(w).Encode(map[string]string{"user_id": userID})
		})
		r.With(rl.LinkCheckMiddleware()).Post("/api/linkedin/{id}/check-link", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})
	})
	return r
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "valid-session-id"})
	return req
}

func withCSRF(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: token})
	req.Header.Set(csrfHeaderName, token)
	return req
}

func TestMiddlewareChain(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	t.Run("CSRFトークン取得は認証不要", func(t *testing.T) {
		w := serve(r, httptest.NewRequest(http.MethodGet, "/api/csrf-token", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var body struct {
			Token string `json:"token"`
		}
		if err := json.NewDecoder(w.Body).Decode(&body); err != nil || body.Token == "" {
			t.Errorf("expected token, err=%v body=%+v", err, body)
		}
	})

	t.Run("GETはセッションのみで通る", func(t *testing.T) {
		w := serve(r, withSession(httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if w.Header().Get("X-Content-Type-Options") != "nosniff" {
			t.Error("security headers should be set")
		}
	})

	t.Run("セッションなしは401", func(t *testing.T) {
		w := serve(r, withCSRF(httptest.NewRequest(http.MethodPost, "/api/linkedin/e-1/check-link", nil), "tok"))
		if w.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", w.Code)
		}
	})

	t.Run("CSRFトークンなしのPOSTは403", func(t *testing.T) {
		w := serve(r, withSession(httptest.NewRequest(http.MethodPost, "/api/linkedin/e-1/check-link", nil)))
		if w.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", w.Code)
		}
	})

	t.Run("リンク確認は専用の上限で429", func(t *testing.T) {
		newReq := func() *http.Request {
			return withCSRF(withSession(httptest.NewRequest(http.MethodPost, "/api/linkedin/e-1/check-link", nil)), "tok")
		}
		if w := serve(r, newReq()); w.Code != http.StatusOK {
			t.Fatalf("first check: status = %d, want 200", w.Code)
		}
		if w := serve(r, newReq()); w.Code != http.StatusTooManyRequests {
			t.Errorf("second check: status = %d, want 429", w.Code)
		}
	})
}

func TestMiddlewareChain_RecoversPanic(t *testing.T) {
	var logs bytes.Buffer
	r := newTestRouter(t, &logs)

	w := serve(r, httptest.NewRequest(http.MethodGet, "/panic", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode: %v", err)
	}
	if body.Code != "INTERNAL_ERROR" {
		t.Errorf("code = %q, want INTERNAL_ERROR", body.Code)
	}
	if !bytes.Contains(logs.Bytes(), []byte(`"status":500`)) {
		t.Errorf("request log should record 500, got %s", logs.String())
	}
}

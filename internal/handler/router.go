package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/hitoshi/careertrack/internal/metrics"
	"github.com/hitoshi/careertrack/internal/middleware"
	"github.com/hitoshi/careertrack/internal/model"
	"github.com/prometheus/client_golang/prometheus"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	SessionFinder     middleware.SessionFinder
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 運用
	HealthChecks    map[string]HealthCheck
	Metrics         metrics.MetricsCollector
	MetricsGatherer prometheus.Gatherer

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 記録
	ApplicationService ApplicationServiceInterface
	CourseService      CourseServiceInterface
	TimeLogService     TimeLogServiceInterface
	LinkedinService    LinkedinServiceInterface

	// 集計
	DashboardService DashboardServiceInterface

	// ユーザー
	UserService UserServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RequestID → Logging → Metrics → SecurityHeaders → CORS
//	  /api/* (保護): Session → CSRF → RateLimit(General)
//	  check-link:    さらに RateLimit(LinkCheck)
//
// /health、/metrics、/auth/*、/api/csrf-token は認証不要。
func NewRouter(deps *RouterDeps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RequestID)
	r.Use(middleware.NewLoggingMiddleware(logger))
	r.Use(metrics.Middleware(metrics.OrNop(deps.Metrics)))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeAPIErrorResponse(w, http.StatusNotFound, newRouteNotFoundError())
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	appHandler := NewApplicationHandler(deps.ApplicationService)
	courseHandler := NewCourseHandler(deps.CourseService)
	timeLogHandler := NewTimeLogHandler(deps.TimeLogService)
	linkedinHandler := NewLinkedinHandler(deps.LinkedinService)
	analyticsHandler := NewAnalyticsHandler(deps.DashboardService)
	userHandler := NewUserHandler(deps.UserService, deps.AuthConfig)

	// --- 認証不要のルート ---

	r.Get("/health", NewHealthHandler(deps.HealthChecks))
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.With(middleware.NewCSRFMiddleware(deps.CSRFConfig)).Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig).ServeHTTP)

	// --- 認証が必要なルート ---
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Route("/api/applications", func(r chi.Router) {
			r.Get("/", appHandler.List)
			r.Get("/grouped", appHandler.Grouped)
			r.Post("/", appHandler.Create)
			r.Patch("/{id}", appHandler.Update)
			r.Delete("/{id}", appHandler.Delete)
		})

		r.Route("/api/courses", func(r chi.Router) {
			r.Get("/", courseHandler.List)
			r.Post("/", courseHandler.Create)
			r.Delete("/{id}", courseHandler.Delete)
			r.Post("/{id}/progress", courseHandler.AddProgress)
		})

		r.Route("/api/timelogs", func(r chi.Router) {
			r.Get("/", timeLogHandler.List)
			r.Get("/{date}", timeLogHandler.Get)
			r.Put("/{date}", timeLogHandler.Save)
		})

		r.Route("/api/goals", func(r chi.Router) {
			r.Get("/", timeLogHandler.GetGoals)
			r.Put("/", timeLogHandler.SaveGoals)
		})

		r.Route("/api/linkedin", func(r chi.Router) {
			r.Get("/", linkedinHandler.List)
			r.Post("/", linkedinHandler.Create)

			r.Route("/{id}", func(r chi.Router) {
				r.Patch("/", linkedinHandler.Update)
				r.Delete("/", linkedinHandler.Delete)
				r.Post("/follow-up", linkedinHandler.ToggleFollowUp)
				// 外部サイトへアクセスするため専用のレート制限を追加
				r.With(deps.RateLimiter.LinkCheckMiddleware()).Post("/check-link", linkedinHandler.CheckLink)
			})
		})

		r.Route("/api/analytics", func(r chi.Router) {
			r.Get("/applications", analyticsHandler.Applications)
			r.Get("/time", analyticsHandler.Time)
		})
		r.Get("/api/dashboard", analyticsHandler.Dashboard)

		r.Delete("/api/users/me", userHandler.Withdraw)
	})

	return r
}

func newRouteNotFoundError() *model.APIError {
	return &model.APIError{
		Code:     "NOT_FOUND",
		Message:  "指定されたエンドポイントは存在しません。",
		Category: "system",
		Action:   "URLを確認してください。",
	}
}

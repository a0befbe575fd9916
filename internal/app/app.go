package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/hitoshi/careertrack/internal/application"
	"github.com/hitoshi/careertrack/internal/auth"
	"github.com/hitoshi/careertrack/internal/cache"
	"github.com/hitoshi/careertrack/internal/config"
	"github.com/hitoshi/careertrack/internal/course"
	"github.com/hitoshi/careertrack/internal/dashboard"
	"github.com/hitoshi/careertrack/internal/database"
	"github.com/hitoshi/careertrack/internal/handler"
	"github.com/hitoshi/careertrack/internal/linkedin"
	"github.com/hitoshi/careertrack/internal/logger"
	"github.com/hitoshi/careertrack/internal/metrics"
	"github.com/hitoshi/careertrack/internal/middleware"
	"github.com/hitoshi/careertrack/internal/repository"
	"github.com/hitoshi/careertrack/internal/security"
	"github.com/hitoshi/careertrack/internal/timelog"
	"github.com/hitoshi/careertrack/internal/user"
	"github.com/hitoshi/careertrack/internal/worker/cleanup"
)

const (
	dbPingTimeout   = 5 * time.Second
	shutdownTimeout = 30 * time.Second
)

// Init はアプリケーションの初期化を行う。
// JSON構造化ログをセットアップしてから環境変数のConfigを読み込み、
// ログレベルをLOG_LEVELに合わせる。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	level := new(slog.LevelVar)
	logger.SetupDefault(w, level)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	level.Set(cfg.LogLevel)

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd, err := ParseCommand(args)
	if err != nil {
		return err
	}

	// help と healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if !cmd.NeedsConfig() {
		if cmd == CommandHelp {
			_, err := io.WriteString(w, Usage())
			return err
		}
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}
	slog.SetDefault(slog.Default().With(slog.String("command", string(cmd))))

	slog.Info("starting application",
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
		slog.String("timezone", cfg.Location.String()),
		slog.Bool("cache_enabled", cfg.CacheEnabled()),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openDatabase はDB接続を開き、疎通を確認する。
func openDatabase(cfg *config.Config) (*sql.DB, error) {
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	if err := database.Ping(context.Background(), db, dbPingTimeout); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// newRegistry はアプリケーションのメトリクスとGo・プロセスのメトリクスを登録したレジストリを返す。
func newRegistry() (*prometheus.Registry, *metrics.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg, metrics.NewCollector(reg)
}

// newRouterDeps は全サービスを組み立て、ルーターの依存関係を返す。
// storeがnilの場合、集計キャッシュは無効になる。
func newRouterDeps(
	cfg *config.Config,
	db *sql.DB,
	store *cache.RedisStore,
	reg *prometheus.Registry,
	collector metrics.MetricsCollector,
	rateLimiter *middleware.RateLimiter,
) *handler.RouterDeps {
	var snapshots *cache.Snapshots
	if store != nil {
		snapshots = cache.NewSnapshots(store, cfg.CacheTTL, slog.Default())
	}

	// 1. リポジトリ
	userRepo := repository.NewPostgresUserRepo(db)
	identRepo := repository.NewPostgresIdentityRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	appRepo := repository.NewPostgresApplicationRepo(db)
	courseRepo := repository.NewPostgresCourseRepo(db)
	timeLogRepo := repository.NewPostgresTimeLogRepo(db)
	goalRepo := repository.NewPostgresGoalRepo(db)
	linkedinRepo := repository.NewPostgresLinkedinRepo(db)

	// 2. セキュリティ
	urlGuard := security.NewURLGuard()
	sanitizer := security.NewTextSanitizer()
	linkChecker := linkedin.NewLinkChecker(urlGuard, cfg.LinkCheckTimeout)

	// 3. ドメインサービス
	oauthProvider := auth.NewGoogleOAuthProvider(auth.GoogleOAuthConfig{
		ClientID:     cfg.GoogleClientID,
		ClientSecret: cfg.GoogleClientSecret,
		RedirectURL:  cfg.GoogleRedirectURL,
	})
	authService := auth.NewService(
		oauthProvider, userRepo, identRepo, sessionRepo, goalRepo,
		auth.ServiceConfig{
			SessionMaxAge: cfg.SessionMaxAge,
			DefaultGoals:  cfg.Tracker.Goals,
		},
	)

	appService := application.NewService(appRepo, sanitizer, snapshots, collector, cfg.Location)
	courseService := course.NewService(courseRepo, sanitizer, snapshots, collector, cfg.Location)
	timeLogService := timelog.NewService(timeLogRepo, goalRepo, cfg.Tracker, snapshots, collector, cfg.Location)
	linkedinService := linkedin.NewService(linkedinRepo, urlGuard, linkChecker, sanitizer, snapshots, collector, cfg.Location)

	dashboardService := dashboard.NewService(dashboard.Deps{
		Applications:         appRepo,
		Courses:              courseRepo,
		TimeLogs:             timeLogRepo,
		Linkedin:             linkedinRepo,
		Goals:                timeLogService,
		ProductiveCategories: cfg.Tracker.ProductiveCategories,
		Cache:                snapshots,
		Metrics:              collector,
		Location:             cfg.Location,
	})

	// 退会時は記録 → セッション → ユーザーの順に削除する
	userService := user.NewService(userRepo, sessionRepo, snapshots,
		user.NamedDeleter{Kind: "applications", Deleter: appRepo},
		user.NamedDeleter{Kind: "courses", Deleter: courseRepo},
		user.NamedDeleter{Kind: "time_logs", Deleter: timeLogRepo},
		user.NamedDeleter{Kind: "goals", Deleter: goalRepo},
		user.NamedDeleter{Kind: "linkedin_entries", Deleter: linkedinRepo},
	)

	// 4. 運用系
	healthChecks := map[string]handler.HealthCheck{
		"database": db.PingContext,
		"schema": func(ctx context.Context) error {
			return database.CheckSchema(ctx, db)
		},
	}
	if store != nil {
		healthChecks["cache"] = store.Ping
	}

	return &handler.RouterDeps{
		Logger:            slog.Default(),
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		RateLimiter: rateLimiter,

		HealthChecks:    healthChecks,
		Metrics:         collector,
		MetricsGatherer: reg,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			BaseURL:       cfg.BaseURL,
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ApplicationService: appService,
		CourseService:      courseService,
		TimeLogService:     timeLogService,
		LinkedinService:    linkedinService,
		DashboardService:   dashboardService,
		UserService:        userService,
	}
}

// openCacheStore はREDIS_URLが設定されている場合にRedisへ接続する。
// 未設定の場合はnil（キャッシュ無効）を返す。
func openCacheStore(ctx context.Context, cfg *config.Config) (*cache.RedisStore, error) {
	if !cfg.CacheEnabled() {
		return nil, nil
	}
	store, err := cache.NewRedisStore(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	slog.Info("analytics cache enabled", slog.Duration("ttl", cfg.CacheTTL))
	return store, nil
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established")

	store, err := openCacheStore(context.Background(), cfg)
	if err != nil {
		return err
	}
	if store != nil {
		defer store.Close()
	}

	reg, collector := newRegistry()

	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitLinkCheck),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(newRouterDeps(cfg, db, store, reg, collector, rateLimiter))

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return serveUntilSignal(server, "API server")
}

// serveUntilSignal はサーバーを起動し、SIGINT/SIGTERMでグレースフルシャットダウンする。
// 起動に失敗した場合はそのエラーを返す。
func serveUntilSignal(server *http.Server, name string) error {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	errCh := make(chan error, 1)
	go func() {
		slog.Info(name+" starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("%s listen error: %w", name, err)
		}
		return nil
	case <-stop:
	}

	slog.Info("shutting down " + name + "...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("%s shutdown failed: %w", name, err)
	}

	slog.Info(name + " stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションのクリーンアップを定期実行し、
// 同じポートで/healthと/metricsを公開する。
func runWorker(cfg *config.Config) error {
	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	slog.Info("database connection established (worker)")

	reg, collector := newRegistry()
	job := cleanup.NewCleanupJob(repository.NewPostgresSessionRepo(db), slog.Default(), collector)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		job.Start(ctx, cfg.SessionCleanupInterval)
	}()

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           newWorkerRouter(db, reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	err = serveUntilSignal(server, "worker")
	cancel()
	<-done
	return err
}

// newWorkerRouter はワーカーの運用エンドポイントを返す。
func newWorkerRouter(db *sql.DB, gatherer prometheus.Gatherer) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.NewRecoveryMiddleware())
	r.Get("/health", handler.NewHealthHandler(map[string]handler.HealthCheck{
		"database": db.PingContext,
	}))
	r.Method(http.MethodGet, "/metrics", metrics.Handler(gatherer))
	return r
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	res, err := database.Migrate(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully",
		slog.Uint64("from_version", uint64(res.From)),
		slog.Uint64("to_version", uint64(res.To)),
		slog.Bool("applied", res.Applied()),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}

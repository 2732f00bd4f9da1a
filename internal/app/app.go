// Package app はコマンドの解析と依存関係のワイヤリングを行い、アプリケーションを起動する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"

	"github.com/hitoshi/catalogapi/internal/auth"
	"github.com/hitoshi/catalogapi/internal/cache"
	"github.com/hitoshi/catalogapi/internal/catalog"
	"github.com/hitoshi/catalogapi/internal/category"
	"github.com/hitoshi/catalogapi/internal/clock"
	"github.com/hitoshi/catalogapi/internal/config"
	"github.com/hitoshi/catalogapi/internal/database"
	"github.com/hitoshi/catalogapi/internal/handler"
	"github.com/hitoshi/catalogapi/internal/identity"
	"github.com/hitoshi/catalogapi/internal/logger"
	"github.com/hitoshi/catalogapi/internal/metrics"
	"github.com/hitoshi/catalogapi/internal/middleware"
	"github.com/hitoshi/catalogapi/internal/repository"
	"github.com/hitoshi/catalogapi/internal/secrets"
	"github.com/hitoshi/catalogapi/internal/token"
)

// identityProviderTimeout はIdPへのREST呼び出しのタイムアウト。
const identityProviderTimeout = 10 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w, slog.LevelInfo)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 3. 設定されたログレベルで再初期化する
	logger.SetupDefault(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("version", cfg.AppVersion),
	)

	switch cmd {
	case CommandMigrate:
		direction, err := database.ParseDirection(commandArg(args, 0))
		if err != nil {
			return err
		}
		return runMigrate(cfg, direction)
	default:
		return runServe(cfg)
	}
}

// application はserveモードで共有するプロセス全体のリソースを保持する。
type application struct {
	db          *sqlx.DB
	redis       *redis.Client
	rateLimiter *middleware.RateLimiter
	handler     http.Handler
}

// Close は保持しているリソースを解放する。
func (a *application) Close() {
	a.rateLimiter.Stop()
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}
	if err := a.db.Close(); err != nil {
		slog.Warn("failed to close database", slog.String("error", err.Error()))
	}
}

// newApplication はDB・キャッシュ・シークレット・IdPのクライアントを1度だけ生成し、
// 全依存関係をワイヤリングしたHTTPハンドラーを構築する。
func newApplication(ctx context.Context, cfg *config.Config) (*application, error) {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established")

	// 2. シークレットプロバイダー（KEY_VAULT_URLがあればKey Vault、なければ環境変数）
	secretProvider, err := secrets.NewProvider(cfg.KeyVaultURL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create secret provider: %w", err)
	}

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// 4. キャッシュ（接続できない場合はnilとなり、キャッシュ無効で動作する）
	redisClient := cache.Connect(ctx, cfg.RedisURL, cfg.RedisConnectTimeout)
	store := cache.NewRedisStore(redisClient, collector)

	// 5. リポジトリの初期化
	productRepo := repository.NewPostgresProductRepo(db)
	categoryRepo := repository.NewPostgresCategoryRepo(db)
	userRepo := repository.NewPostgresUserRepo(db)

	// 6. ドメインサービスの初期化
	categoryService := category.NewService(categoryRepo)
	catalogService := catalog.NewService(productRepo, categoryService, store, cfg.CacheTTL, cfg.ProductListLimit)
	tokenService := token.NewService(secretProvider, clock.NewRealClock(), cfg.TokenTTL, collector)
	idp := identity.NewFirebaseProvider(
		secretProvider,
		&http.Client{Timeout: identityProviderTimeout},
		cfg.FirebaseSignInURL,
	)
	authService := auth.NewService(idp, userRepo, tokenService)

	// 7. ルーターの構築（設定はreq/min単位）
	rateLimiter := middleware.NewRateLimiter(
		middleware.NewRateLimiterConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth),
	)

	router := handler.NewRouter(&handler.RouterDeps{
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		TokenValidator:    tokenService,
		Logger:            slog.Default(),
		MetricsRecorder:   collector,
		MetricsHandler:    metrics.Handler(registry),
		AppVersion:        cfg.AppVersion,
		AuthService:       authService,
		CatalogService:    catalogService,
		CategoryService:   categoryService,
	})

	return &application{
		db:          db,
		redis:       redisClient,
		rateLimiter: rateLimiter,
		handler:     router,
	}, nil
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := newApplication(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      a.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを指定方向に実行する。
func runMigrate(cfg *config.Config, direction database.Direction) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.String("direction", string(direction)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL, direction); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	return checkHealth(fmt.Sprintf("http://localhost:%s/health", port))
}

func checkHealth(healthURL string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(healthURL)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

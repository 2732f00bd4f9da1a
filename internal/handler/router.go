package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/catalogapi/internal/middleware"
	"github.com/hitoshi/catalogapi/internal/token"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	TokenValidator    middleware.TokenValidator
	Logger            *slog.Logger

	// メトリクス（nilの場合は計測・公開しない）
	MetricsRecorder middleware.HTTPRecorder
	MetricsHandler  http.Handler

	// アプリケーション情報
	AppVersion string

	// サービス
	AuthService     AuthServiceInterface
	CatalogService  CatalogServiceInterface
	CategoryService CategoryServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	RealIP → RequestID → Logging → Metrics → Recovery → SecurityHeaders → CORS → RateLimit(General)
//
// 認可はルートごとにNewAuthorizationMiddlewareで要求レベルを指定する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewRequestIDMiddleware())
	r.Use(middleware.NewLoggingMiddleware(logger))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	healthHandler := NewHealthHandler(deps.AppVersion)
	authHandler := NewAuthHandler(deps.AuthService)
	catalogHandler := NewCatalogHandler(deps.CatalogService)
	categoryHandler := NewCategoryHandler(deps.CategoryService)

	requireAdmin := middleware.NewAuthorizationMiddleware(deps.TokenValidator, token.RequireAdmin)

	// ヘルスチェックとメトリクスはレート制限の対象外
	r.Get("/health", healthHandler.Health)
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		if deps.RateLimiter != nil {
			r.Use(deps.RateLimiter.GeneralMiddleware())
		}

		r.Get("/", healthHandler.Root)

		// --- 認証不要のルート（認証系は専用のレート制限を追加適用） ---
		r.Group(func(r chi.Router) {
			if deps.RateLimiter != nil {
				r.Use(deps.RateLimiter.AuthMiddleware())
			}
			r.Post("/signup", authHandler.Signup)
			r.Post("/login", authHandler.Login)
		})

		// 商品
		r.Get("/products", catalogHandler.ListProducts)
		r.Get("/products/", catalogHandler.ListProductsByCategory)
		r.With(requireAdmin).Post("/products", catalogHandler.CreateProduct)

		// カテゴリ（管理者のみ）
		r.Route("/category", func(r chi.Router) {
			r.Use(requireAdmin)
			r.Get("/name/", categoryHandler.Name)
			r.Get("/count", categoryHandler.Count)
		})
	})

	return r
}

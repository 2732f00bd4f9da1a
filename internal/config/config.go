package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Database
	DatabaseURL string

	// Cache
	RedisURL            string
	RedisConnectTimeout time.Duration
	CacheTTL            time.Duration

	// Catalog
	ProductListLimit int

	// Secrets
	KeyVaultURL string

	// Token
	TokenTTL time.Duration

	// Identity Provider
	FirebaseSignInURL string

	// Rate Limit（req/min）
	RateLimitGeneral int
	RateLimitAuth    int

	// Logging
	LogLevel string

	// Server
	ServerPort string
	AppVersion string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}

	// Required fields
	var missing []string

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("required environment variables are not set: %v", missing)
	}

	// Optional fields with defaults
	// REDIS_URLが空の場合はキャッシュ無効で動作する
	cfg.RedisURL = getEnvString("REDIS_URL", "")
	cfg.RedisConnectTimeout = getEnvDuration("REDIS_CONNECT_TIMEOUT", 3*time.Second)
	cfg.CacheTTL = getEnvDuration("CACHE_TTL", 1800*time.Second)
	cfg.ProductListLimit = getEnvInt("PRODUCT_LIST_LIMIT", 20000)
	// KEY_VAULT_URLが空の場合はシークレットを環境変数から読む
	cfg.KeyVaultURL = getEnvString("KEY_VAULT_URL", "")
	cfg.TokenTTL = getEnvDuration("TOKEN_TTL", time.Hour)
	cfg.FirebaseSignInURL = getEnvString("FIREBASE_SIGNIN_URL", "")
	cfg.RateLimitGeneral = getEnvInt("RATE_LIMIT_GENERAL", 120)
	cfg.RateLimitAuth = getEnvInt("RATE_LIMIT_AUTH", 10)
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")
	cfg.ServerPort = getEnvString("SERVER_PORT", "8000")
	cfg.AppVersion = getEnvString("APP_VERSION", "0.0.1")
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000")

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

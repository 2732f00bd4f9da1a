package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultConnectTimeout = 3 * time.Second

// Connect はRedisクライアントを生成し、PINGで疎通を確認する。
// URLが空、URLが不正、またはPINGに失敗した場合はnilを返し、キャッシュ無効で動作させる。
func Connect(ctx context.Context, redisURL string, timeout time.Duration) *redis.Client {
	if redisURL == "" {
		slog.Info("REDIS_URL is not set, running without cache")
		return nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		slog.Error("invalid redis url, running without cache", slog.String("error", err.Error()))
		return nil
	}
	if timeout <= 0 {
		timeout = defaultConnectTimeout
	}
	opts.DialTimeout = timeout

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		slog.Error("failed to connect to redis, running without cache", slog.String("error", err.Error()))
		client.Close()
		return nil
	}

	slog.Info("connected to redis")
	return client
}

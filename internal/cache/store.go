// Package cache はRedisをバックエンドとする読み取りキャッシュを提供する。
// バックエンドが利用できない場合、すべての操作は失敗を返さず「キャッシュなし」として振る舞う。
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store はJSONで値を保存するキー・バリューキャッシュのインターフェース。
// 実装はエラーを呼び出し元に返さない。
type Store interface {
	// Get はキーの値をdestにデコードする。値が存在し正しくデコードできた場合のみtrueを返す。
	Get(ctx context.Context, key string, dest any) bool
	// Set は値をTTL付きで保存する。失敗はログに記録するだけで返さない。
	Set(ctx context.Context, key string, value any, ttl time.Duration)
	// Delete はキーを削除し、実際に削除されたかを返す。
	Delete(ctx context.Context, key string) bool
}

// Recorder はキャッシュのヒット・ミス・エラーを記録するインターフェース。
// metrics.Collectorが実装する。
type Recorder interface {
	RecordCacheHit(key string)
	RecordCacheMiss(key string)
	RecordCacheError(op string)
}

type nopRecorder struct{}

func (nopRecorder) RecordCacheHit(string)   {}
func (nopRecorder) RecordCacheMiss(string)  {}
func (nopRecorder) RecordCacheError(string) {}

// RedisStore はgo-redisクライアントを使うStore実装。
// clientがnilの場合はキャッシュ無効として動作する。
type RedisStore struct {
	client   *redis.Client
	recorder Recorder
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore は新しいRedisStoreを生成する。recorderがnilの場合は記録しない。
func NewRedisStore(client *redis.Client, recorder Recorder) *RedisStore {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &RedisStore{client: client, recorder: recorder}
}

// Enabled はバックエンドが設定されているかを返す。
func (s *RedisStore) Enabled() bool {
	return s.client != nil
}

// Get はキーの値をJSONとしてdestにデコードする。
// デコードに失敗した値は壊れたエントリとみなして削除し、ミスとして扱う。
func (s *RedisStore) Get(ctx context.Context, key string, dest any) bool {
	if s.client == nil {
		return false
	}

	raw, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			s.recorder.RecordCacheMiss(key)
			return false
		}
		slog.Warn("cache get failed", slog.String("key", key), slog.String("error", err.Error()))
		s.recorder.RecordCacheError("get")
		return false
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		slog.Warn("corrupted cache entry, clearing",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		s.recorder.RecordCacheError("decode")
		s.Delete(ctx, key)
		return false
	}

	slog.Info("cache hit", slog.String("key", key))
	s.recorder.RecordCacheHit(key)
	return true
}

// Set は値をJSONにエンコードし、1回のSETで丸ごと保存する。
func (s *RedisStore) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if s.client == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		s.recorder.RecordCacheError("encode")
		return
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		slog.Warn("cache set failed", slog.String("key", key), slog.String("error", err.Error()))
		s.recorder.RecordCacheError("set")
		return
	}

	slog.Info("cache populated", slog.String("key", key), slog.Duration("ttl", ttl))
}

// Delete はキーを削除する。キーが存在しなかった場合やバックエンドのエラー時はfalseを返す。
func (s *RedisStore) Delete(ctx context.Context, key string) bool {
	if s.client == nil {
		return false
	}

	n, err := s.client.Del(ctx, key).Result()
	if err != nil {
		slog.Warn("cache delete failed", slog.String("key", key), slog.String("error", err.Error()))
		s.recorder.RecordCacheError("delete")
		return false
	}
	if n == 0 {
		slog.Info("cache key did not exist", slog.String("key", key))
		return false
	}

	slog.Info("cache key deleted", slog.String("key", key))
	return true
}

package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type item struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// mockRecorder は呼び出し回数を記録するRecorderのモック。
type mockRecorder struct {
	mu     sync.Mutex
	hits   int
	misses int
	errors map[string]int
}

func newMockRecorder() *mockRecorder {
	return &mockRecorder{errors: map[string]int{}}
}

func (m *mockRecorder) RecordCacheHit(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hits++
}

func (m *mockRecorder) RecordCacheMiss(string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.misses++
}

func (m *mockRecorder) RecordCacheError(op string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[op]++
}

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis, *mockRecorder) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	rec := newMockRecorder()
	return NewRedisStore(client, rec), mr, rec
}

func TestRedisStore_SetThenGet(t *testing.T) {
	store, mr, rec := newTestStore(t)
	ctx := context.Background()

	want := []item{{ID: "1", Name: "one"}, {ID: "2", Name: "two"}}
	store.Set(ctx, "products:catalog:all", want, 30*time.Minute)

	if ttl := mr.TTL("products:catalog:all"); ttl != 30*time.Minute {
		t.Errorf("TTL = %v, want %v", ttl, 30*time.Minute)
	}

	var got []item
	if !store.Get(ctx, "products:catalog:all", &got) {
		t.Fatal("expected cache hit")
	}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if rec.hits != 1 {
		t.Errorf("hits = %d, want 1", rec.hits)
	}
}

func TestRedisStore_Get_MissingKey(t *testing.T) {
	store, _, rec := newTestStore(t)

	var got []item
	if store.Get(context.Background(), "absent", &got) {
		t.Fatal("expected miss for absent key")
	}
	if rec.misses != 1 {
		t.Errorf("misses = %d, want 1", rec.misses)
	}
}

func TestRedisStore_Get_CorruptedValueIsDeleted(t *testing.T) {
	store, mr, rec := newTestStore(t)
	if err := mr.Set("products:catalog:Books", "{not json"); err != nil {
		t.Fatalf("failed to seed miniredis: %v", err)
	}

	var got []item
	if store.Get(context.Background(), "products:catalog:Books", &got) {
		t.Fatal("expected corrupted entry to be treated as absent")
	}
	if mr.Exists("products:catalog:Books") {
		t.Error("corrupted key should have been deleted")
	}
	if rec.errors["decode"] != 1 {
		t.Errorf("decode errors = %d, want 1", rec.errors["decode"])
	}
}

func TestRedisStore_Expiry(t *testing.T) {
	store, mr, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "k", []item{{ID: "1"}}, time.Minute)
	mr.FastForward(2 * time.Minute)

	var got []item
	if store.Get(ctx, "k", &got) {
		t.Error("expected expired key to be absent")
	}
}

func TestRedisStore_Delete(t *testing.T) {
	store, mr, _ := newTestStore(t)
	ctx := context.Background()

	store.Set(ctx, "k", []item{{ID: "1"}}, time.Minute)

	if !store.Delete(ctx, "k") {
		t.Error("Delete of existing key = false, want true")
	}
	if mr.Exists("k") {
		t.Error("key still exists after Delete")
	}
	if store.Delete(ctx, "k") {
		t.Error("Delete of absent key = true, want false")
	}
}

func TestRedisStore_BackendDown_DegradesToNoop(t *testing.T) {
	store, mr, rec := newTestStore(t)
	ctx := context.Background()
	mr.Close()

	store.Set(ctx, "k", []item{{ID: "1"}}, time.Minute)

	var got []item
	if store.Get(ctx, "k", &got) {
		t.Error("expected miss when backend is down")
	}
	if store.Delete(ctx, "k") {
		t.Error("expected Delete to report false when backend is down")
	}
	for _, op := range []string{"set", "get", "delete"} {
		if rec.errors[op] != 1 {
			t.Errorf("errors[%s] = %d, want 1", op, rec.errors[op])
		}
	}
}

func TestRedisStore_NilClient(t *testing.T) {
	store := NewRedisStore(nil, nil)
	ctx := context.Background()

	if store.Enabled() {
		t.Error("Enabled() = true, want false for nil client")
	}
	store.Set(ctx, "k", "v", time.Minute)

	var got string
	if store.Get(ctx, "k", &got) {
		t.Error("Get with nil client = true, want false")
	}
	if store.Delete(ctx, "k") {
		t.Error("Delete with nil client = true, want false")
	}
}

func TestConnect(t *testing.T) {
	t.Run("empty url disables cache", func(t *testing.T) {
		if c := Connect(context.Background(), "", time.Second); c != nil {
			t.Error("expected nil client for empty url")
		}
	})

	t.Run("invalid url disables cache", func(t *testing.T) {
		if c := Connect(context.Background(), "not-a-url://", time.Second); c != nil {
			t.Error("expected nil client for invalid url")
		}
	})

	t.Run("unreachable server disables cache", func(t *testing.T) {
		mr := miniredis.RunT(t)
		addr := mr.Addr()
		mr.Close()
		if c := Connect(context.Background(), "redis://"+addr, 200*time.Millisecond); c != nil {
			c.Close()
			t.Error("expected nil client for unreachable server")
		}
	})

	t.Run("reachable server", func(t *testing.T) {
		mr := miniredis.RunT(t)
		c := Connect(context.Background(), "redis://"+mr.Addr(), time.Second)
		if c == nil {
			t.Fatal("expected client for reachable server")
		}
		c.Close()
	})
}

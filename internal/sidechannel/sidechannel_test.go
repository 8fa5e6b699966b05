package sidechannel

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisStore(t *testing.T, ttl time.Duration) (*Redis, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis start: %v", err)
	}
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = rdb.Close()
		mr.Close()
	})
	return NewRedis(rdb, ttl), mr
}

func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	keys := DefaultKeys("p:")

	if _, err := store.Get(ctx, keys.Token); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := store.Write(ctx, map[string]string{keys.Token: "tok", keys.User: "{}", keys.RememberMe: "true"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if val, err := store.Get(ctx, keys.User); err != nil || val != "{}" {
		t.Fatalf("get user: %q %v", val, err)
	}

	if err := store.Write(ctx, map[string]string{keys.Token: "tok2"}, keys.RememberMe); err != nil {
		t.Fatalf("write with remove: %v", err)
	}
	if val, _ := store.Get(ctx, keys.Token); val != "tok2" {
		t.Fatalf("expected overwritten token, got %q", val)
	}
	if _, err := store.Get(ctx, keys.RememberMe); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected remember-me removed, got %v", err)
	}

	if err := store.Remove(ctx, keys.All()...); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := store.Remove(ctx, keys.All()...); err != nil {
		t.Fatalf("second remove: %v", err)
	}
	for _, k := range keys.All() {
		if _, err := store.Get(ctx, k); !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected %s removed, got %v", k, err)
		}
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestRedis(t *testing.T) {
	store, _ := newRedisStore(t, 0)
	exerciseStore(t, store)
}

func TestRedis_AppliesTTL(t *testing.T) {
	store, mr := newRedisStore(t, time.Minute)
	if err := store.Write(context.Background(), map[string]string{"k": "v"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if ttl := mr.TTL("k"); ttl != time.Minute {
		t.Fatalf("expected 1m ttl, got %v", ttl)
	}
	mr.FastForward(2 * time.Minute)
	if _, err := store.Get(context.Background(), "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestRedis_SurfacesConnectionErrors(t *testing.T) {
	store, mr := newRedisStore(t, 0)
	mr.Close()
	if _, err := store.Get(context.Background(), "k"); err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("expected connection error, got %v", err)
	}
}

func TestDefaultKeys(t *testing.T) {
	keys := DefaultKeys("x:")
	if keys.Token != "x:session_token" || keys.User != "x:session_user" || keys.RememberMe != "x:remember_me" {
		t.Fatalf("unexpected keys %+v", keys)
	}
	if len(keys.All()) != 3 {
		t.Fatalf("expected three keys")
	}
}

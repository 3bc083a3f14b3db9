package transcript

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

// newRedisTestStore creates a RedisStore backed by miniredis.
func newRedisTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	t.Cleanup(mini.Close)

	rdb := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	store := NewRedisStore(rdb, "live", 0)
	t.Cleanup(func() { store.Close() })
	return store, mini
}

// backends runs fn against every Store implementation.
func backends(t *testing.T, fn func(t *testing.T, s Store)) {
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStore())
	})
	t.Run("redis", func(t *testing.T) {
		s, _ := newRedisTestStore(t)
		fn(t, s)
	})
}

func TestStore_AppendJoinsInArrivalOrder(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		fragments := []string{"hi", "there", "alice: how are you", "bob: fine"}

		for i, f := range fragments {
			res, err := s.Append(ctx, "b1", f)
			if err != nil {
				t.Fatalf("append %d: %v", i, err)
			}
			if !res.Appended {
				t.Fatalf("append %d: expected fragment to be appended", i)
			}
			if res.Lines != i+1 {
				t.Errorf("append %d: expected %d lines, got %d", i, i+1, res.Lines)
			}
			if res.Created != (i == 0) {
				t.Errorf("append %d: unexpected Created=%v", i, res.Created)
			}
		}

		entry, ok, err := s.Get(ctx, "b1")
		if err != nil || !ok {
			t.Fatalf("expected entry, ok=%v err=%v", ok, err)
		}
		want := strings.Join(fragments, "\n")
		if entry.Text != want {
			t.Errorf("expected text %q, got %q", want, entry.Text)
		}
		if len(entry.Lines) != len(fragments) {
			t.Errorf("expected %d lines, got %d", len(fragments), len(entry.Lines))
		}
		if !entry.HasData() {
			t.Error("expected HasData to be true")
		}
		if entry.UpdatedAt.IsZero() {
			t.Error("expected UpdatedAt to be set")
		}
	})
}

func TestStore_BlankFragmentIsNoop(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()

		for _, blank := range []string{"", "   ", "\n\t"} {
			res, err := s.Append(ctx, "b1", blank)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if res.Appended {
				t.Errorf("blank fragment %q should not be appended", blank)
			}
		}
		if _, ok, _ := s.Get(ctx, "b1"); ok {
			t.Fatal("blank fragments must not create an entry")
		}

		if _, err := s.Append(ctx, "b1", "hello"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		before, _, _ := s.Get(ctx, "b1")

		if _, err := s.Append(ctx, "b1", "  "); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		after, _, _ := s.Get(ctx, "b1")

		if after.Text != before.Text || len(after.Lines) != len(before.Lines) {
			t.Errorf("blank append changed entry: before=%q after=%q", before.Text, after.Text)
		}
		if !after.UpdatedAt.Equal(before.UpdatedAt) {
			t.Errorf("blank append changed UpdatedAt: %v -> %v", before.UpdatedAt, after.UpdatedAt)
		}
	})
}

func TestStore_GetUnknownIsAbsent(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		entry, ok, err := s.Get(context.Background(), "unknown")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if ok {
			t.Error("expected unknown call to be absent")
		}
		if entry.Text != "" || entry.HasData() || entry.UpdatedMillis() != 0 {
			t.Errorf("expected zero entry, got %+v", entry)
		}
	})
}

func TestStore_FragmentsAreTrimmed(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		s.Append(ctx, "b1", "  hello world \n")

		entry, _, _ := s.Get(ctx, "b1")
		if entry.Text != "hello world" {
			t.Errorf("expected trimmed line, got %q", entry.Text)
		}
	})
}

func TestStore_RepeatedFragmentsAreKept(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		s.Append(ctx, "b1", "same")
		s.Append(ctx, "b1", "same")

		entry, _, _ := s.Get(ctx, "b1")
		if entry.Text != "same\nsame" {
			t.Errorf("expected redelivered fragment twice, got %q", entry.Text)
		}
	})
}

func TestStore_CallsAreIndependent(t *testing.T) {
	backends(t, func(t *testing.T, s Store) {
		ctx := context.Background()
		s.Append(ctx, "b1", "one")
		s.Append(ctx, "b2", "two")

		e1, _, _ := s.Get(ctx, "b1")
		e2, _, _ := s.Get(ctx, "b2")
		if e1.Text != "one" || e2.Text != "two" {
			t.Errorf("calls leaked into each other: b1=%q b2=%q", e1.Text, e2.Text)
		}
	})
}

func TestMemoryStore_GetReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	s.Append(ctx, "b1", "first")

	entry, _, _ := s.Get(ctx, "b1")
	entry.Lines[0] = "mutated"

	again, _, _ := s.Get(ctx, "b1")
	if again.Lines[0] != "first" {
		t.Errorf("caller mutation leaked into the store: %q", again.Lines[0])
	}
}

func TestMemoryStore_UpdatedAtUsesClock(t *testing.T) {
	s := NewMemoryStore()
	fixed := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	s.Append(context.Background(), "b1", "hello")

	entry, _, _ := s.Get(context.Background(), "b1")
	if !entry.UpdatedAt.Equal(fixed) {
		t.Errorf("expected UpdatedAt %v, got %v", fixed, entry.UpdatedAt)
	}
	if entry.UpdatedMillis() != fixed.UnixMilli() {
		t.Errorf("expected %d millis, got %d", fixed.UnixMilli(), entry.UpdatedMillis())
	}
}

func TestMemoryStore_ConcurrentAppends(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	numGoroutines := 50
	perGoroutine := 20

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				s.Append(ctx, "b1", "line")
				s.Get(ctx, "b1")
			}
		}()
	}
	wg.Wait()

	entry, _, _ := s.Get(ctx, "b1")
	if len(entry.Lines) != numGoroutines*perGoroutine {
		t.Errorf("expected %d lines, got %d", numGoroutines*perGoroutine, len(entry.Lines))
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 tracked call, got %d", s.Len())
	}
}

func TestRedisStore_KeysAndTTL(t *testing.T) {
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("failed to start miniredis: %v", err)
	}
	defer mini.Close()

	rdb := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	s := NewRedisStore(rdb, "live", time.Hour)
	defer s.Close()

	if _, err := s.Append(context.Background(), "b1", "hello"); err != nil {
		t.Fatalf("append: %v", err)
	}

	if !mini.Exists("live:b1:lines") {
		t.Error("expected lines key to exist")
	}
	if !mini.Exists("live:b1:updated") {
		t.Error("expected updated key to exist")
	}
	if ttl := mini.TTL("live:b1:lines"); ttl != time.Hour {
		t.Errorf("expected lines TTL 1h, got %v", ttl)
	}

	mini.FastForward(2 * time.Hour)
	if _, ok, _ := s.Get(context.Background(), "b1"); ok {
		t.Error("expected entry to expire after TTL")
	}
}

func TestRedisStore_Ping(t *testing.T) {
	s, mini := newRedisTestStore(t)

	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("expected ping to succeed: %v", err)
	}

	mini.Close()
	if err := s.Ping(context.Background()); err == nil {
		t.Error("expected ping to fail after server shutdown")
	}
}

package cache

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestCache(t *testing.T, opts ...Option) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "results.db"), opts...)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func TestPutGetRoundTrip(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "key-1", []byte("payload one"))
	got, ok := c.Get(ctx, "key-1")
	if !ok {
		t.Fatal("miss after put")
	}
	if !bytes.Equal(got, []byte("payload one")) {
		t.Errorf("payload = %q", got)
	}
}

func TestGetMiss(t *testing.T) {
	c := openTestCache(t)
	if _, ok := c.Get(context.Background(), "absent"); ok {
		t.Error("hit for a key never stored")
	}
}

func TestPutReplacesExistingEntry(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "key", []byte("old"))
	c.Put(ctx, "key", []byte("new"))
	got, ok := c.Get(ctx, "key")
	if !ok || string(got) != "new" {
		t.Errorf("got %q, %v", got, ok)
	}
}

func TestMaxAgeExpiresEntries(t *testing.T) {
	c := openTestCache(t, WithMaxAge(time.Nanosecond))
	ctx := context.Background()

	c.Put(ctx, "key", []byte("stale"))
	time.Sleep(10 * time.Millisecond)
	if _, ok := c.Get(ctx, "key"); ok {
		t.Error("expired entry returned")
	}
}

func TestZeroMaxAgeNeverExpires(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "key", []byte("durable"))
	if _, ok := c.Get(ctx, "key"); !ok {
		t.Error("entry expired with expiry disabled")
	}
}

func TestClear(t *testing.T) {
	c := openTestCache(t)
	ctx := context.Background()

	c.Put(ctx, "a", []byte("1"))
	c.Put(ctx, "b", []byte("2"))
	if err := c.Clear(ctx); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"a", "b"} {
		if _, ok := c.Get(ctx, key); ok {
			t.Errorf("key %q survived clear", key)
		}
	}
}

func TestReopenSeesPersistedEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "results.db")
	ctx := context.Background()

	first, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	first.Put(ctx, "key", []byte("persisted"))
	if err := first.Close(); err != nil {
		t.Fatal(err)
	}

	second, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer second.Close()
	got, ok := second.Get(ctx, "key")
	if !ok || string(got) != "persisted" {
		t.Errorf("got %q, %v after reopen", got, ok)
	}
}

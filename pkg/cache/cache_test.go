package cache

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFileCacheRoundTrip(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, found, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		t.Fatal("expected cache hit")
	}
	if string(data) != "payload" {
		t.Errorf("Get = %q, want payload", data)
	}
}

func TestFileCacheBinaryPayload(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	// PNG-like payloads with null and high bytes must round-trip verbatim.
	payload := []byte{0x89, 'P', 'N', 'G', 0x00, 0xFF, 0x0d, 0x0a}
	if err := c.Set(ctx, "img", payload, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, found, err := c.Get(ctx, "img")
	if err != nil || !found {
		t.Fatalf("Get: found=%v err=%v", found, err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("Get = %x, want %x", data, payload)
	}
}

func TestFileCacheTruncatedEntry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	// A file shorter than the expiry header cannot be an entry.
	path := c.(*FileCache).path("key")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte{1, 2, 3}, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}

	_, found, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("truncated entry should be a miss")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("truncated entry should be removed")
	}
}

func TestFileCacheMiss(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()

	_, found, err := c.Get(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("missing key should be a miss")
	}
}

func TestFileCacheExpiry(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("payload"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(time.Millisecond)

	_, found, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if found {
		t.Error("expired entry should be a miss")
	}
}

func TestFileCacheDelete(t *testing.T) {
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, found, _ := c.Get(ctx, "key"); found {
		t.Error("deleted key should be a miss")
	}
	// Deleting again is not an error.
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete missing key: %v", err)
	}
}

func TestNullCache(t *testing.T) {
	c := NewNullCache()
	ctx := context.Background()

	if err := c.Set(ctx, "key", []byte("payload"), 0); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, found, _ := c.Get(ctx, "key"); found {
		t.Error("null cache should never hit")
	}
}

func TestImageKey(t *testing.T) {
	opts := ImageKeyOpts{Layout: "center", MaxImageDim: 4096}

	a := ImageKey("# Root\n- A", opts)
	b := ImageKey("# Root\n- A", opts)
	if a != b {
		t.Error("identical inputs should produce identical keys")
	}

	if ImageKey("# Root\n- B", opts) == a {
		t.Error("different markdown should change the key")
	}
	if ImageKey("# Root\n- A", ImageKeyOpts{Layout: "horizontal", MaxImageDim: 4096}) == a {
		t.Error("different layout should change the key")
	}
	if ImageKey("# Root\n- A", ImageKeyOpts{Layout: "center", MaxImageDim: 2048}) == a {
		t.Error("different tuning should change the key")
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("data"))
	if len(h) != 64 {
		t.Errorf("Hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("data")) {
		t.Error("Hash should be deterministic")
	}
}

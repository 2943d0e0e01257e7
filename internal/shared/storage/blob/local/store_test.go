package local

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"jdgap-backend/internal/shared/storage/blob"
)

func TestPutGetRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	n, err := store.Put(ctx, "sessions/abc/meta.json", "application/json", strings.NewReader(`{"a":1}`))
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if n != 7 {
		t.Fatalf("expected 7 bytes written, got %d", n)
	}

	rc, err := store.Get(ctx, "sessions/abc/meta.json")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != `{"a":1}` {
		t.Fatalf("unexpected content: %s", data)
	}
}

func TestPutReplacesWholeObject(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Put(ctx, "k", "text/plain", strings.NewReader("first version, long")); err != nil {
		t.Fatalf("put: %v", err)
	}
	if _, err := store.Put(ctx, "k", "text/plain", strings.NewReader("second")); err != nil {
		t.Fatalf("overwrite: %v", err)
	}

	rc, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "second" {
		t.Fatalf("expected full replacement, got %q", data)
	}
}

func TestGetMissingKey(t *testing.T) {
	store := New(t.TempDir())

	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDeleteAndList(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	keys := []string{"sessions/a/meta.json", "sessions/a/resume.txt", "sessions/b/meta.json"}
	for _, key := range keys {
		if _, err := store.Put(ctx, key, "text/plain", strings.NewReader("x")); err != nil {
			t.Fatalf("put %s: %v", key, err)
		}
	}

	listed, err := store.List(ctx, "sessions/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 3 {
		t.Fatalf("expected 3 keys, got %v", listed)
	}

	if err := store.Delete(ctx, "sessions/a/meta.json", "sessions/a/resume.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	listed, err = store.List(ctx, "sessions/")
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(listed) != 1 || listed[0] != "sessions/b/meta.json" {
		t.Fatalf("expected only sessions/b/meta.json, got %v", listed)
	}

	// Deleting missing keys is not an error.
	if err := store.Delete(ctx, "sessions/a/meta.json"); err != nil {
		t.Fatalf("delete missing: %v", err)
	}
}

func TestListEmptyPrefix(t *testing.T) {
	store := New(t.TempDir())

	listed, err := store.List(context.Background(), "sessions/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected no keys, got %v", listed)
	}
}

func TestInvalidKeysRejected(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../outside", "/abs/path"} {
		if _, err := store.Put(ctx, key, "text/plain", strings.NewReader("x")); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
		if _, err := store.Get(ctx, key); err == nil {
			t.Fatalf("expected error for key %q", key)
		}
	}
}

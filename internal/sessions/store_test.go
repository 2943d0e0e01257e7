package sessions

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	localstore "jdgap-backend/internal/shared/storage/blob/local"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(localstore.New(t.TempDir()), time.Hour)
}

func TestCreateThenGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected a session id")
	}
	if created.HasResume {
		t.Fatal("expected has_resume=false on a fresh session")
	}
	if !created.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected expiry in the future, got %v", created.ExpiresAt)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ID != created.ID || got.HasResume {
		t.Fatalf("unexpected session: %+v", got)
	}
}

func TestGetUnknownSession(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Get(context.Background(), "does-not-exist")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExpiredSessionIsReclaimedOnGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.SaveResumeText(ctx, created.ID, "some text"); err != nil {
		t.Fatalf("save text: %v", err)
	}

	store.now = func() time.Time { return time.Now().Add(2 * time.Hour) }

	if _, err := store.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for expired session, got %v", err)
	}

	// Artifacts were reclaimed along with the metadata.
	store.now = time.Now
	if _, err := store.LoadResumeText(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected resume text gone, got %v", err)
	}
}

func TestCleanupExpired(t *testing.T) {
	blobs := localstore.New(t.TempDir())
	store := NewStore(blobs, time.Hour)
	ctx := context.Background()

	live, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create live: %v", err)
	}

	expired, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create expired: %v", err)
	}
	m, err := store.loadMeta(ctx, expired.ID)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	m.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := store.saveMeta(ctx, m); err != nil {
		t.Fatalf("save meta: %v", err)
	}

	// A namespace with corrupt metadata counts as expired, not a crash.
	if _, err := blobs.Put(ctx, "sessions/corrupt/meta.json", "application/json", strings.NewReader("{not json")); err != nil {
		t.Fatalf("write corrupt meta: %v", err)
	}
	// A namespace with no metadata at all is also reclaimed.
	if _, err := blobs.Put(ctx, "sessions/orphan/resume.txt", "text/plain", strings.NewReader("zzz")); err != nil {
		t.Fatalf("write orphan: %v", err)
	}

	count, err := store.CleanupExpired(ctx)
	if err != nil {
		t.Fatalf("cleanup: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 removals, got %d", count)
	}

	if _, err := store.Get(ctx, live.ID); err != nil {
		t.Fatalf("live session should survive cleanup: %v", err)
	}
	keys, err := blobs.List(ctx, "sessions/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, key := range keys {
		if strings.Contains(key, expired.ID) || strings.Contains(key, "corrupt") || strings.Contains(key, "orphan") {
			t.Fatalf("expected key reclaimed: %s", key)
		}
	}
}

func TestResumeTextRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	const text = "5 years Python backend experience\n简历内容"
	if err := store.SaveResumeText(ctx, created.ID, text); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.LoadResumeText(ctx, created.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != text {
		t.Fatalf("round trip mismatch: %q", got)
	}
}

func TestLoadResumeTextAbsent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.LoadResumeText(ctx, created.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateSetsMetadata(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Update(ctx, created.ID, true, "resume.pdf", "pdf"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := store.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.HasResume || got.FileName != "resume.pdf" || got.FileType != "pdf" {
		t.Fatalf("unexpected session after update: %+v", got)
	}
}

func TestUpdateMissingSessionIsNoop(t *testing.T) {
	store := newTestStore(t)

	if err := store.Update(context.Background(), "ghost", true, "a.txt", "txt"); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}

func TestSaveOriginalFilePreservesExtension(t *testing.T) {
	blobs := localstore.New(t.TempDir())
	store := NewStore(blobs, time.Hour)
	ctx := context.Background()

	created, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	tests := []struct {
		name     string
		fileName string
		wantKey  string
	}{
		{name: "pdf extension", fileName: "My Resume.PDF", wantKey: "resume.pdf"},
		{name: "no extension", fileName: "resume", wantKey: "resume.bin"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if err := store.SaveOriginalFile(ctx, created.ID, tt.fileName, []byte("data")); err != nil {
				t.Fatalf("save: %v", err)
			}
			rc, err := blobs.Get(ctx, "sessions/"+created.ID+"/"+tt.wantKey)
			if err != nil {
				t.Fatalf("expected artifact at %s: %v", tt.wantKey, err)
			}
			rc.Close()
		})
	}
}

func TestCreateRunsAmortizedCleanup(t *testing.T) {
	blobs := localstore.New(t.TempDir())
	store := NewStore(blobs, time.Hour)
	ctx := context.Background()

	stale, err := store.Create(ctx)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	m, err := store.loadMeta(ctx, stale.ID)
	if err != nil {
		t.Fatalf("load meta: %v", err)
	}
	m.ExpiresAt = time.Now().UTC().Add(-time.Minute)
	if err := store.saveMeta(ctx, m); err != nil {
		t.Fatalf("save meta: %v", err)
	}

	if _, err := store.Create(ctx); err != nil {
		t.Fatalf("second create: %v", err)
	}

	keys, err := blobs.List(ctx, "sessions/")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var buf bytes.Buffer
	for _, key := range keys {
		buf.WriteString(key)
	}
	if strings.Contains(buf.String(), stale.ID) {
		t.Fatalf("expected stale session reclaimed by create, keys: %v", keys)
	}
}

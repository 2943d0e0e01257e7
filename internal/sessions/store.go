package sessions

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"

	"jdgap-backend/internal/shared/storage/blob"
	"jdgap-backend/internal/shared/telemetry"
	"jdgap-backend/internal/shared/util"
)

const (
	sessionsPrefix = "sessions"
	metaFile       = "meta.json"
	resumeTextFile = "resume.txt"

	// DefaultTTL applies when no TTL is configured.
	DefaultTTL = 24 * time.Hour
)

// Store manages anonymous sessions and their artifacts on a blob store.
// Each session owns one namespace: a metadata record, the original uploaded
// file, and the extracted plain text.
type Store struct {
	blobs blob.Store
	ttl   time.Duration

	// now is replaceable in tests.
	now func() time.Time
}

// NewStore constructs a session store with the given TTL.
func NewStore(blobs blob.Store, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		blobs: blobs,
		ttl:   ttl,
		now:   time.Now,
	}
}

// Create reclaims expired sessions, then persists and returns a fresh one.
func (s *Store) Create(ctx context.Context) (Session, error) {
	if _, err := s.CleanupExpired(ctx); err != nil {
		telemetry.Warn("sessions.cleanup.failed", map[string]any{"err": err.Error()})
	}

	now := s.now().UTC()
	m := meta{
		SessionID: uuid.NewString(),
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
		HasResume: false,
	}
	if err := s.saveMeta(ctx, m); err != nil {
		return Session{}, fmt.Errorf("create session: %w", err)
	}
	return m.toSession(), nil
}

// Get returns the session or ErrNotFound. An expired session is deleted as a
// side effect of the lookup and reported as not found.
func (s *Store) Get(ctx context.Context, id string) (Session, error) {
	m, err := s.loadMeta(ctx, id)
	if err != nil {
		return Session{}, err
	}

	if s.now().UTC().After(m.ExpiresAt) {
		if err := s.delete(ctx, id); err != nil {
			telemetry.Error("sessions.reclaim.failed", map[string]any{"session_id": id, "err": err.Error()})
		}
		return Session{}, ErrNotFound
	}
	return m.toSession(), nil
}

// Update mutates persisted metadata. A missing session is a no-op, not an
// error.
func (s *Store) Update(ctx context.Context, id string, hasResume bool, fileName, fileType string) error {
	m, err := s.loadMeta(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return err
	}

	m.HasResume = hasResume
	if fileName != "" {
		m.FileName = fileName
	}
	if fileType != "" {
		m.FileType = fileType
	}
	return s.saveMeta(ctx, m)
}

// SaveOriginalFile persists the raw upload, preserving the file extension.
func (s *Store) SaveOriginalFile(ctx context.Context, id, fileName string, data []byte) error {
	sanitized, err := util.SanitizeFileName(fileName)
	if err != nil {
		return fmt.Errorf("save original file: %w", err)
	}

	ext := "bin"
	if idx := strings.LastIndex(sanitized, "."); idx >= 0 && idx < len(sanitized)-1 {
		ext = strings.ToLower(sanitized[idx+1:])
	}

	key := s.key(id, "resume."+ext)
	if _, err := s.blobs.Put(ctx, key, "application/octet-stream", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("save original file: %w", err)
	}
	return nil
}

// SaveResumeText persists the extracted plain text for a session.
func (s *Store) SaveResumeText(ctx context.Context, id, text string) error {
	key := s.key(id, resumeTextFile)
	if _, err := s.blobs.Put(ctx, key, "text/plain; charset=utf-8", strings.NewReader(text)); err != nil {
		return fmt.Errorf("save resume text: %w", err)
	}
	return nil
}

// LoadResumeText retrieves the extracted text, or ErrNotFound when absent.
func (s *Store) LoadResumeText(ctx context.Context, id string) (string, error) {
	rc, err := s.blobs.Get(ctx, s.key(id, resumeTextFile))
	if err != nil {
		if errors.Is(err, blob.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("load resume text: %w", err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("load resume text: %w", err)
	}
	return string(raw), nil
}

// CleanupExpired scans all session namespaces and removes any whose metadata
// is missing, corrupt, or expired. It returns the number of sessions removed.
func (s *Store) CleanupExpired(ctx context.Context) (int, error) {
	keys, err := s.blobs.List(ctx, sessionsPrefix+"/")
	if err != nil {
		return 0, fmt.Errorf("cleanup expired: %w", err)
	}

	now := s.now().UTC()
	count := 0
	for _, id := range sessionIDs(keys) {
		m, err := s.loadMeta(ctx, id)
		if err != nil || now.After(m.ExpiresAt) {
			if err := s.delete(ctx, id); err != nil {
				telemetry.Error("sessions.reclaim.failed", map[string]any{"session_id": id, "err": err.Error()})
				continue
			}
			count++
		}
	}
	return count, nil
}

// loadMeta reads and parses the metadata record. Missing, unreadable, or
// corrupt records all collapse to ErrNotFound so stale state is never served.
func (s *Store) loadMeta(ctx context.Context, id string) (meta, error) {
	rc, err := s.blobs.Get(ctx, s.key(id, metaFile))
	if err != nil {
		return meta{}, ErrNotFound
	}
	defer rc.Close()

	var m meta
	if err := json.NewDecoder(rc).Decode(&m); err != nil {
		return meta{}, ErrNotFound
	}
	if m.SessionID == "" || m.ExpiresAt.IsZero() {
		return meta{}, ErrNotFound
	}
	return m, nil
}

func (s *Store) saveMeta(ctx context.Context, m meta) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	_, err = s.blobs.Put(ctx, s.key(m.SessionID, metaFile), "application/json", bytes.NewReader(payload))
	return err
}

func (s *Store) delete(ctx context.Context, id string) error {
	keys, err := s.blobs.List(ctx, s.key(id, "")+"/")
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return s.blobs.Delete(ctx, keys...)
}

func (s *Store) key(id string, name string) string {
	return path.Join(sessionsPrefix, id, name)
}

// sessionIDs derives the distinct session identifiers present in a key
// listing of the sessions namespace.
func sessionIDs(keys []string) []string {
	seen := make(map[string]struct{})
	var ids []string
	for _, key := range keys {
		rest := strings.TrimPrefix(key, sessionsPrefix+"/")
		if rest == key {
			continue
		}
		id, _, ok := strings.Cut(rest, "/")
		if !ok || id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}

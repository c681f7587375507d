package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// FileStore keeps one JSON document per key under a directory. It is the
// default backend of the CLI.
type FileStore struct {
	dir string
}

// NewFileStore creates dir if needed and returns a store rooted there.
func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, lerrors.Wrap(lerrors.ErrCodeStore, err, "create store dir %s", dir)
	}
	return &FileStore{dir: dir}, nil
}

// fileEntry is the on-disk document. Key is kept so a hash collision reads
// as a miss instead of another key's data.
type fileEntry struct {
	Key       string    `json:"key"`
	Data      []byte    `json:"data"`
	SavedAt   time.Time `json:"saved_at"`
	ExpiresAt time.Time `json:"expires_at,omitzero"`
}

func (e fileEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && now.After(e.ExpiresAt)
}

// Get returns the value stored under key. Unreadable, foreign and expired
// documents are misses and get removed.
func (s *FileStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path := s.path(key)
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, lerrors.Wrap(lerrors.ErrCodeStore, err, "read %s", key)
	}

	var e fileEntry
	if err := json.Unmarshal(raw, &e); err != nil || e.Key != key || e.expired(time.Now()) {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return e.Data, true, nil
}

// Set writes the value through a temp file and a rename, so readers never
// see a half-written preset.
func (s *FileStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	now := time.Now()
	e := fileEntry{Key: key, Data: data, SavedAt: now.UTC()}
	if ttl > 0 {
		e.ExpiresAt = now.Add(ttl).UTC()
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return lerrors.Wrap(lerrors.ErrCodeInternal, err, "encode %s", key)
	}

	path := s.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "write %s", key)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "write %s", key)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "write %s", key)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "write %s", key)
	}
	return nil
}

// Delete removes key. Missing keys are not an error.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.Remove(s.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "delete %s", key)
	}
	return nil
}

func (s *FileStore) Close() error { return nil }

// Dir returns the store directory.
func (s *FileStore) Dir() string { return s.dir }

// Clear removes every shard directory and leaves dir itself in place.
func (s *FileStore) Clear() error {
	shards, err := os.ReadDir(s.dir)
	if err != nil {
		return err
	}
	var errs []error
	for _, d := range shards {
		errs = append(errs, os.RemoveAll(filepath.Join(s.dir, d.Name())))
	}
	return errors.Join(errs...)
}

// path maps a key to <dir>/<2 hex>/<62 hex>.json, sharded by the SHA-256
// of the key.
func (s *FileStore) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	name := hex.EncodeToString(sum[:])
	return filepath.Join(s.dir, name[:2], name[2:]+".json")
}

var _ Store = (*FileStore)(nil)

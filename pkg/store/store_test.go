package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
	"github.com/matzehuels/lightlayer/pkg/observability"
)

func TestNullStore(t *testing.T) {
	ctx := context.Background()
	s := NewNullStore()
	defer s.Close()

	data, hit, err := s.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if hit || data != nil {
		t.Error("NullStore.Get should always return a nil miss")
	}

	if err := s.Set(ctx, "key", []byte("value"), time.Hour); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ = s.Get(ctx, "key"); hit {
		t.Error("NullStore should not store data")
	}
	if err := s.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete error: %v", err)
	}
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewFileStore(filepath.Join(t.TempDir(), "presets"))
	if err != nil {
		t.Fatal(err)
	}

	if _, hit, err := s.Get(ctx, "preset:a"); hit || err != nil {
		t.Fatalf("empty store Get = %v, %v", hit, err)
	}
	if err := s.Set(ctx, "preset:a", []byte(`{"nodes":[]}`), 0); err != nil {
		t.Fatal(err)
	}
	data, hit, err := s.Get(ctx, "preset:a")
	if err != nil || !hit || string(data) != `{"nodes":[]}` {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := s.Delete(ctx, "preset:a"); err != nil {
		t.Fatal(err)
	}
	if err := s.Delete(ctx, "preset:a"); err != nil {
		t.Errorf("deleting a missing key: %v", err)
	}
	if _, hit, _ := s.Get(ctx, "preset:a"); hit {
		t.Error("entry survived Delete")
	}
}

func TestFileStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())

	s.Set(ctx, "k", []byte("v"), time.Nanosecond)
	time.Sleep(time.Millisecond)
	if _, hit, _ := s.Get(ctx, "k"); hit {
		t.Error("expired entry returned")
	}
	if _, err := os.Stat(s.path("k")); !os.IsNotExist(err) {
		t.Error("expired entry file not removed")
	}
}

func TestFileStoreUnusableEntryIsMiss(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"corrupt", "{not json"},
		{"foreign key", `{"key":"other","data":"dg=="}`},
		{"expired", `{"key":"k","data":"dg==","expires_at":"2001-01-01T00:00:00Z"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s, _ := NewFileStore(t.TempDir())
			s.Set(ctx, "k", []byte("v"), 0)
			os.WriteFile(s.path("k"), []byte(tt.raw), 0o644)

			if _, hit, err := s.Get(ctx, "k"); hit || err != nil {
				t.Errorf("Get = %v, %v, want miss", hit, err)
			}
			if _, err := os.Stat(s.path("k")); !os.IsNotExist(err) {
				t.Error("unusable entry not removed")
			}
		})
	}
}

func TestFileStoreCanceled(t *testing.T) {
	s, _ := NewFileStore(t.TempDir())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Set(ctx, "k", []byte("v"), 0); !errors.Is(err, context.Canceled) {
		t.Errorf("Set = %v, want context.Canceled", err)
	}
	if _, _, err := s.Get(ctx, "k"); !errors.Is(err, context.Canceled) {
		t.Errorf("Get = %v, want context.Canceled", err)
	}
}

func TestFileStoreClear(t *testing.T) {
	ctx := context.Background()
	s, _ := NewFileStore(t.TempDir())
	s.Set(ctx, "a", []byte("1"), 0)
	s.Set(ctx, "b", []byte("2"), 0)

	if err := s.Clear(); err != nil {
		t.Fatal(err)
	}
	entries, _ := os.ReadDir(s.Dir())
	if len(entries) != 0 {
		t.Errorf("%d entries left after Clear", len(entries))
	}
}

func TestFileStorePath(t *testing.T) {
	s := &FileStore{dir: "/presets"}
	a := s.path("preset:stage")
	if a != s.path("preset:stage") {
		t.Error("path should be deterministic")
	}
	if a == s.path("preset:club") {
		t.Error("different keys share a path")
	}
	rel, _ := filepath.Rel("/presets", a)
	if dir, file := filepath.Split(rel); len(dir) != 3 || len(file) != 62+len(".json") {
		t.Errorf("path = %s, want 2-char shard dir and 62-char file", rel)
	}
}

func TestKeyers(t *testing.T) {
	if got := NewDefaultKeyer().PresetKey("stage"); got != "preset:stage" {
		t.Errorf("PresetKey = %s", got)
	}
	for _, scope := range []string{"left", "left:"} {
		if got := NewScopedKeyer(nil, scope).PresetKey("stage"); got != "left:preset:stage" {
			t.Errorf("NewScopedKeyer(%q).PresetKey = %s", scope, got)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		opts    Options
		want    string
		wantErr lerrors.Code
	}{
		{"default", Options{}, "store.NullStore", ""},
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, "*store.FileStore", ""},
		{"unknown", Options{Backend: "etcd"}, "", lerrors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Open(ctx, tt.opts)
			if tt.wantErr != "" {
				if !lerrors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %s", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			defer s.Close()
			inner := s.(*Instrumented).Unwrap()
			if got := typeName(inner); got != tt.want {
				t.Errorf("backend = %s, want %s", got, tt.want)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopStoreHooks
	events []string
}

func (h *recordingHooks) OnStoreHit(_ context.Context, backend, key string) {
	h.events = append(h.events, "hit "+backend+" "+key)
}

func (h *recordingHooks) OnStoreMiss(_ context.Context, backend, key string) {
	h.events = append(h.events, "miss "+backend+" "+key)
}

func (h *recordingHooks) OnStoreSet(_ context.Context, backend, key string, _ int) {
	h.events = append(h.events, "set "+backend+" "+key)
}

func TestInstrumented(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetStoreHooks(hooks)
	defer observability.Reset()

	ctx := context.Background()
	fs, _ := NewFileStore(t.TempDir())
	s := Instrument(fs, "file")
	s.Get(ctx, "k")
	s.Set(ctx, "k", []byte("v"), 0)
	s.Get(ctx, "k")

	want := []string{"miss file k", "set file k", "hit file k"}
	if len(hooks.events) != len(want) {
		t.Fatalf("events = %v, want %v", hooks.events, want)
	}
	for i := range want {
		if hooks.events[i] != want[i] {
			t.Errorf("event %d = %q, want %q", i, hooks.events[i], want[i])
		}
	}
}

func TestBackoff(t *testing.T) {
	b := Backoff{Attempts: 3, Delay: time.Millisecond}
	ctx := context.Background()
	errBoom := errors.New("boom")

	tests := []struct {
		name      string
		failUntil int // calls that fail before success; -1 fails forever
		err       error
		wantCalls int
		wantErr   error
	}{
		{"success", 0, nil, 1, nil},
		{"not retryable", -1, errBoom, 1, errBoom},
		{"recovers", 1, Retryable(ErrNetwork), 2, nil},
		{"exhausted", -1, Retryable(ErrNetwork), 3, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := b.Do(ctx, func() error {
				calls++
				if tt.failUntil < 0 || calls <= tt.failUntil {
					return tt.err
				}
				return nil
			})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestBackoffContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := DefaultBackoff.Do(ctx, func() error {
		return Retryable(ErrNetwork)
	})
	if err != context.Canceled {
		t.Errorf("Do() = %v, want context.Canceled", err)
	}
}

func TestBackoffOr(t *testing.T) {
	if got := backoffOr(Backoff{}); got != DefaultBackoff {
		t.Errorf("backoffOr(zero) = %+v", got)
	}
	custom := Backoff{Attempts: 5, Delay: time.Second}
	if got := backoffOr(custom); got != custom {
		t.Errorf("backoffOr(custom) = %+v", got)
	}
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) || err.Error() != ErrNetwork.Error() {
		t.Errorf("Retryable(ErrNetwork) = %v", err)
	}
	if IsRetryable(ErrNetwork) {
		t.Error("unwrapped error reported retryable")
	}
}

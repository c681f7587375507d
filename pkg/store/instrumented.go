package store

import (
	"context"
	"time"

	"github.com/matzehuels/lightlayer/pkg/observability"
)

// Instrumented reports every operation of a Store to the registered
// observability store hooks.
type Instrumented struct {
	Store
	backend string
}

// Instrument wraps s. Backend names the store in hook events.
func Instrument(s Store, backend string) *Instrumented {
	return &Instrumented{Store: s, backend: backend}
}

// Get reports a hit or a miss.
func (s *Instrumented) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, ok, err := s.Store.Get(ctx, key)
	if err == nil {
		if ok {
			observability.Store().OnStoreHit(ctx, s.backend, key)
		} else {
			observability.Store().OnStoreMiss(ctx, s.backend, key)
		}
	}
	return data, ok, err
}

// Set reports the write.
func (s *Instrumented) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	if err := s.Store.Set(ctx, key, data, ttl); err != nil {
		return err
	}
	observability.Store().OnStoreSet(ctx, s.backend, key, len(data))
	return nil
}

// Unwrap returns the wrapped store.
func (s *Instrumented) Unwrap() Store { return s.Store }

package store

import (
	"context"
	"time"
)

// NullStore forgets everything. Engines without a configured backend use it,
// so SavePreset succeeds and every later Preset call is NOT_FOUND.
type NullStore struct{}

// NewNullStore returns a NullStore.
func NewNullStore() Store { return NullStore{} }

func (NullStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (NullStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NullStore) Delete(context.Context, string) error                     { return nil }
func (NullStore) Close() error                                             { return nil }

var _ Store = NullStore{}

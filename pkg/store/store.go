// Package store persists presets: the node slot configuration of a layer,
// keyed by preset name.
//
// Four backends implement [Store]:
//   - NullStore keeps nothing (dry runs and tests)
//   - FileStore writes JSON entry files under a directory (CLI default)
//   - RedisStore keeps entries in Redis with native expiry
//   - MongoStore keeps entries in a MongoDB collection
//
// Use [Open] to create the backend named in the configuration and [Keyer]
// to build keys, so that every backend sees the same key layout.
package store

import (
	"context"
	"time"

	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// Store is a key/value store with optional expiry.
type Store interface {
	// Get returns the value under key. A missing or expired key is a miss,
	// not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores data under key. A zero ttl never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	Close() error
}

// Backend names accepted by Open.
const (
	BackendNull  = "null"
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendMongo = "mongo"
)

// Options selects and configures a backend.
type Options struct {
	Backend string

	// Dir is the FileStore directory.
	Dir string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

// Open creates the backend named by opts.Backend, instrumented with the
// observability store hooks. An empty name opens a NullStore. Network
// backends are pinged before Open returns.
func Open(ctx context.Context, opts Options) (Store, error) {
	var (
		s   Store
		err error
	)
	switch opts.Backend {
	case "", BackendNull:
		opts.Backend = BackendNull
		s = NewNullStore()
	case BackendFile:
		var fs *FileStore
		if fs, err = NewFileStore(opts.Dir); err != nil {
			return nil, lerrors.Wrap(lerrors.ErrCodeStore, err, "open file store %s", opts.Dir)
		}
		s = fs
	case BackendRedis:
		var rs *RedisStore
		rs, err = NewRedisStore(ctx, RedisOptions{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		s = rs
	case BackendMongo:
		var ms *MongoStore
		ms, err = NewMongoStore(ctx, MongoOptions{
			URI:        opts.MongoURI,
			Database:   opts.MongoDatabase,
			Collection: opts.MongoCollection,
		})
		if err != nil {
			return nil, err
		}
		s = ms
	default:
		return nil, lerrors.New(lerrors.ErrCodeInvalidConfig, "unknown store backend %q", opts.Backend)
	}
	return Instrument(s, opts.Backend), nil
}

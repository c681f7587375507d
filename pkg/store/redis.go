package store

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	lerrors "github.com/matzehuels/lightlayer/pkg/errors"
)

// RedisOptions configures a RedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int

	// Backoff retries connection failures. Zero means DefaultBackoff.
	Backoff Backoff
}

// RedisStore keeps entries in Redis. Expiry is handled by Redis itself.
type RedisStore struct {
	client *redis.Client
	retry  Backoff
}

// NewRedisStore connects to Redis and pings it.
func NewRedisStore(ctx context.Context, opts RedisOptions) (*RedisStore, error) {
	if opts.Addr == "" {
		opts.Addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, lerrors.Wrap(lerrors.ErrCodeStore, err, "connect to redis at %s", opts.Addr)
	}
	return &RedisStore{client: client, retry: backoffOr(opts.Backoff)}, nil
}

// Get retrieves a value.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := s.retry.Do(ctx, func() error {
		b, err := s.client.Get(ctx, key).Bytes()
		if err != nil {
			return classify(err)
		}
		data = b
		return nil
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, lerrors.Wrap(lerrors.ErrCodeStore, err, "redis get %s", key)
	}
	return data, true, nil
}

// Set stores a value. A zero ttl keeps it forever.
func (s *RedisStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	err := s.retry.Do(ctx, func() error {
		return classify(s.client.Set(ctx, key, data, ttl).Err())
	})
	if err != nil {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "redis set %s", key)
	}
	return nil
}

// Delete removes a value.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	err := s.retry.Do(ctx, func() error {
		return classify(s.client.Del(ctx, key).Err())
	})
	if err != nil {
		return lerrors.Wrap(lerrors.ErrCodeStore, err, "redis del %s", key)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// classify marks connection-level failures as retryable. redis.Nil and
// server replies are returned as is.
func classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return err
	}
	return Retryable(errors.Join(ErrNetwork, err))
}

// Ensure RedisStore implements Store.
var _ Store = (*RedisStore)(nil)

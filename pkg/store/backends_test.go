package store

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"
)

func typeName(v any) string { return fmt.Sprintf("%T", v) }

// testBackend exercises a live backend. It is shared by the Redis and MongoDB
// tests, which only run when their server address is set in the environment.
func testBackend(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()
	key := fmt.Sprintf("test:%d", time.Now().UnixNano())
	defer s.Delete(ctx, key)

	if _, hit, err := s.Get(ctx, key); hit || err != nil {
		t.Fatalf("Get(new key) = %v, %v", hit, err)
	}
	if err := s.Set(ctx, key, []byte("v1"), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := s.Set(ctx, key, []byte("v2"), time.Minute); err != nil {
		t.Fatal(err)
	}
	data, hit, err := s.Get(ctx, key)
	if err != nil || !hit || string(data) != "v2" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}
	if err := s.Delete(ctx, key); err != nil {
		t.Fatal(err)
	}
	if _, hit, _ := s.Get(ctx, key); hit {
		t.Error("key survived Delete")
	}
}

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("LIGHTLAYER_TEST_REDIS")
	if addr == "" {
		t.Skip("LIGHTLAYER_TEST_REDIS not set")
	}
	s, err := NewRedisStore(context.Background(), RedisOptions{Addr: addr})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testBackend(t, s)
}

func TestMongoStore(t *testing.T) {
	uri := os.Getenv("LIGHTLAYER_TEST_MONGO")
	if uri == "" {
		t.Skip("LIGHTLAYER_TEST_MONGO not set")
	}
	s, err := NewMongoStore(context.Background(), MongoOptions{URI: uri, Database: "lightlayer_test"})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	testBackend(t, s)
}

func TestRedisStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	// Port 1 is reserved and never listens.
	if _, err := NewRedisStore(ctx, RedisOptions{Addr: "127.0.0.1:1"}); err == nil {
		t.Error("NewRedisStore succeeded against a closed port")
	}
}

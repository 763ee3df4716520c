package cache

import (
	"errors"
	"testing"

	goredis "github.com/redis/go-redis/v9"
)

func TestNewRedis_RequiresClient(t *testing.T) {
	if _, err := NewRedis(RedisConfig{}); !errors.Is(err, ErrNilClient) {
		t.Fatalf("got %v, want ErrNilClient", err)
	}
}

func TestRedis_CloseOwnership(t *testing.T) {
	client := goredis.NewClient(&goredis.Options{Addr: "localhost:0"})

	// Borrowed client: Close must leave it open.
	borrowed, err := NewRedis(RedisConfig{Client: client})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	if err := borrowed.Close(); err != nil {
		t.Fatalf("Close (borrowed): %v", err)
	}

	// Owned client: Close shuts it down, and repeat calls stay clean.
	owned, err := NewRedis(RedisConfig{Client: client, CloseClient: true})
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	if err := owned.Close(); err != nil {
		t.Fatalf("Close (owned): %v", err)
	}
	if err := owned.Close(); err != nil {
		t.Fatalf("repeated Close must be a no-op: %v", err)
	}
}

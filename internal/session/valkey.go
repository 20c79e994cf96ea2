package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// keyPrefix namespaces session keys in Valkey to avoid collisions.
const keyPrefix = "session:"

// ValkeyBackend stores sessions as Valkey keys with a TTL.
type ValkeyBackend struct {
	client *redis.Client
}

// NewValkeyBackend creates a backend over a connected client.
func NewValkeyBackend(client *redis.Client) *ValkeyBackend {
	return &ValkeyBackend{client: client}
}

func (b *ValkeyBackend) Save(ctx context.Context, id string, payload []byte, ttl time.Duration) error {
	if err := b.client.Set(ctx, keyPrefix+id, payload, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (b *ValkeyBackend) Load(ctx context.Context, id string) ([]byte, error) {
	payload, err := b.client.Get(ctx, keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return payload, nil
}

func (b *ValkeyBackend) Delete(ctx context.Context, id string) error {
	if err := b.client.Del(ctx, keyPrefix+id).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

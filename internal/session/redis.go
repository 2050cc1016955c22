package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisBackend stores one session as JSON under a namespaced key. The key
// expires with the token when the session carries an expiry.
type RedisBackend struct {
	rdb *redis.Client
	key string
}

// NewRedisBackend stores the session at "gym:{namespace}:session:{id}".
func NewRedisBackend(rdb *redis.Client, namespace, id string) *RedisBackend {
	return &RedisBackend{rdb: rdb, key: fmt.Sprintf("gym:%s:session:%s", namespace, id)}
}

func (b *RedisBackend) Load(ctx context.Context) (*Session, error) {
	data, err := b.rdb.Get(ctx, b.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read session from Redis: %w", err)
	}
	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to decode session: %w", err)
	}
	return &s, nil
}

func (b *RedisBackend) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	var ttl time.Duration
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return b.Delete(ctx)
		}
	}
	if err := b.rdb.Set(ctx, b.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write session to Redis: %w", err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context) error {
	if err := b.rdb.Del(ctx, b.key).Err(); err != nil {
		return fmt.Errorf("failed to delete session from Redis: %w", err)
	}
	return nil
}

// Revocations is the server-side list of JWT IDs that were signed out
// before they expired. Entries drop out of Redis when the token would have
// expired anyway.
type Revocations struct {
	rdb       *redis.Client
	namespace string
}

func NewRevocations(rdb *redis.Client, namespace string) *Revocations {
	return &Revocations{rdb: rdb, namespace: namespace}
}

func (r *Revocations) key(tokenID string) string {
	return fmt.Sprintf("gym:%s:revoked:%s", r.namespace, tokenID)
}

// Revoke marks tokenID as signed out until expiresAt.
func (r *Revocations) Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error {
	if tokenID == "" {
		return errors.New("token ID cannot be empty")
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}
	if err := r.rdb.Set(ctx, r.key(tokenID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID has been signed out.
func (r *Revocations) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := r.rdb.Exists(ctx, r.key(tokenID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}

// Ping verifies Redis connectivity.
func (r *Revocations) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

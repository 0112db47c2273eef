// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/redis/go-redis/v9"
)

// Store persists the getUpdates offset and counts generated articles.
type Store interface {
	Offset(ctx context.Context) (int64, error)
	SetOffset(ctx context.Context, offset int64) error
	IncrGenerated(ctx context.Context) (int64, error)
}

// MemoryStore keeps state for the life of the process.
type MemoryStore struct {
	mu        sync.Mutex
	offset    int64
	generated int64
}

// Offset implements Store.
func (m *MemoryStore) Offset(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.offset, nil
}

// SetOffset implements Store.
func (m *MemoryStore) SetOffset(_ context.Context, offset int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.offset = offset
	return nil
}

// IncrGenerated implements Store.
func (m *MemoryStore) IncrGenerated(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.generated++
	return m.generated, nil
}

// DefaultKeyPrefix namespaces the bot's Redis keys.
const DefaultKeyPrefix = "content-engine:telegram:"

// RedisStore keeps state in Redis so a restarted bot resumes where it stopped.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore connects to addr. An empty prefix uses DefaultKeyPrefix.
func NewRedisStore(addr, password string, db int, prefix string) *RedisStore {
	return newRedisStore(redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	}), prefix)
}

func newRedisStore(client *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

// Ping checks the connection.
func (r *RedisStore) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failure: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (r *RedisStore) Close() error { return r.client.Close() }

// Offset implements Store. A missing key is offset 0.
func (r *RedisStore) Offset(ctx context.Context) (int64, error) {
	val, err := r.client.Get(ctx, r.prefix+"offset").Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get failure: %w", err)
	}
	offset, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing stored offset %q: %w", val, err)
	}
	return offset, nil
}

// SetOffset implements Store.
func (r *RedisStore) SetOffset(ctx context.Context, offset int64) error {
	if err := r.client.Set(ctx, r.prefix+"offset", offset, 0).Err(); err != nil {
		return fmt.Errorf("redis set failure: %w", err)
	}
	return nil
}

// IncrGenerated implements Store.
func (r *RedisStore) IncrGenerated(ctx context.Context) (int64, error) {
	n, err := r.client.Incr(ctx, r.prefix+"generated").Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr failure: %w", err)
	}
	return n, nil
}

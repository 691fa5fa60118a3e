package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	dbinit "inkwell/cms/db/init"

	"github.com/redis/go-redis/v9"
)

// RedisCache is the optional session cache. The server runs without it;
// the auth middleware just falls back to parsing tokens every request.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

// NewRedisCache connects to Redis and verifies the connection.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 5,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisCache{client: client, ctx: ctx}, nil
}

// Close closes the Redis connection.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func sessionKey(token string) string {
	return fmt.Sprintf("session:%s", token)
}

// SetSession caches a session under its token for ttl.
func (r *RedisCache) SetSession(token string, session *dbinit.Session, ttl time.Duration) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return r.client.Set(r.ctx, sessionKey(token), data, ttl).Err()
}

// GetSession returns the cached session for token, (nil, nil) on miss.
func (r *RedisCache) GetSession(token string) (*dbinit.Session, error) {
	data, err := r.client.Get(r.ctx, sessionKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session := &dbinit.Session{}
	if err := json.Unmarshal(data, session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return session, nil
}

// DeleteSession drops the cached session, used on logout.
func (r *RedisCache) DeleteSession(token string) error {
	return r.client.Del(r.ctx, sessionKey(token)).Err()
}

// Set stores a JSON-encoded value with a ttl.
func (r *RedisCache) Set(key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(r.ctx, key, data, ttl).Err()
}

// Get loads a JSON-encoded value into dest. Misses return an error.
func (r *RedisCache) Get(key string, dest interface{}) error {
	data, err := r.client.Get(r.ctx, key).Bytes()
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes a key.
func (r *RedisCache) Delete(key string) error {
	return r.client.Del(r.ctx, key).Err()
}

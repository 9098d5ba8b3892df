package cache

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig captures the connection parameters for the Redis-backed store.
type RedisConfig struct {
	Address  string
	Username string
	Password string
	DB       int
	TLS      bool
	Timeout  time.Duration
}

const defaultRedisTimeout = 5 * time.Second
const redisKeyPrefix = "backlot:"

// RedisStore implements Store on top of go-redis. All keys are namespaced
// under the backlot prefix so a shared Redis instance stays tidy.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a Redis-backed store. It pings the server eagerly so
// that misconfiguration is surfaced during application startup.
func NewRedisStore(cfg RedisConfig) (*RedisStore, error) {
	cfg.Address = strings.TrimSpace(cfg.Address)
	if cfg.Address == "" {
		return nil, errors.New("redis: address is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultRedisTimeout
	}

	opts := &redis.Options{
		Addr:         cfg.Address,
		Username:     cfg.Username,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.Timeout,
		ReadTimeout:  cfg.Timeout,
		WriteTimeout: cfg.Timeout,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}

	return &RedisStore{client: client}, nil
}

// Close releases the underlying connection pool.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Ping verifies the connection is still healthy. Readiness probes call this.
func (s *RedisStore) Ping(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	return s.client.Ping(ctx).Err()
}

// IncrementWithTTL increments the counter at key and stamps the window TTL on
// first use. It returns the current count and the remaining time-to-live.
func (s *RedisStore) IncrementWithTTL(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	prefixedKey := s.prefixed(key)

	count, err := s.client.Incr(ctx, prefixedKey).Result()
	if err != nil {
		return 0, 0, err
	}

	if count == 1 {
		if err := s.client.PExpire(ctx, prefixedKey, window).Err(); err != nil {
			return 0, 0, err
		}
	}

	ttl, err := s.client.PTTL(ctx, prefixedKey).Result()
	if err != nil || ttl < 0 {
		return count, window, nil
	}
	return count, ttl, nil
}

// Set stores a value with expiry. A non-positive ttl keeps the key until it
// is deleted.
func (s *RedisStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.client.Set(ctx, s.prefixed(key), value, ttl).Err()
}

// Get retrieves the value associated with a key.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	value, err := s.client.Get(ctx, s.prefixed(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

// Delete removes one or more keys, ignoring missing ones.
func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	prefixed := make([]string, 0, len(keys))
	for _, key := range keys {
		prefixed = append(prefixed, s.prefixed(key))
	}
	return s.client.Del(ctx, prefixed...).Err()
}

func (s *RedisStore) prefixed(key string) string {
	if strings.HasPrefix(key, redisKeyPrefix) {
		return key
	}
	return redisKeyPrefix + key
}

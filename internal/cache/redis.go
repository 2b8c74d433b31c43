package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another process holds the run lock.
var ErrLockHeld = errors.New("run lock held by another process")

// releaseScript deletes the lock only if it still belongs to the caller.
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then return redis.call("DEL", KEYS[1]) else return 0 end`

type commander interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
	SetNX(ctx context.Context, key string, value any, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...any) *redis.Cmd
	Close() error
}

// RedisClient is the shared lookup cache and cross-process run lock.
type RedisClient struct {
	client commander
	prefix string
	ttl    time.Duration
}

// NewClient connects to the Redis server at url (redis://...). Keys are
// namespaced with prefix; cached lookups expire after ttl (0 keeps them).
func NewClient(ctx context.Context, url, prefix string, ttl time.Duration) (*RedisClient, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client, prefix: prefix, ttl: ttl}, nil
}

// Close closes the Redis client connection
func (c *RedisClient) Close() error {
	return c.client.Close()
}

// Get returns the cached value for key, reporting a miss as false.
func (c *RedisClient) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, c.key("lookup", key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return val, true, nil
}

// Set stores value under key with the configured expiration.
func (c *RedisClient) Set(ctx context.Context, key, value string) error {
	if err := c.client.Set(ctx, c.key("lookup", key), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// AcquireLock takes the named lock for owner until ttl elapses or the
// returned release func runs.
func (c *RedisClient) AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (func(context.Context) error, error) {
	key := c.key("lock", name)
	ok, err := c.client.SetNX(ctx, key, owner, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", name, err)
	}
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrLockHeld)
	}
	return func(ctx context.Context) error {
		if err := c.client.Eval(ctx, releaseScript, []string{key}, owner).Err(); err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("release lock %s: %w", name, err)
		}
		return nil
	}, nil
}

func (c *RedisClient) key(kind, name string) string {
	if c.prefix == "" {
		return kind + ":" + name
	}
	return c.prefix + ":" + kind + ":" + name
}

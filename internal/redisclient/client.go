package redisclient

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// SetAvailableStock caches the total remaining quantity for an item.
// The database stays the source of truth; the cache only serves reads.
func (c *Client) SetAvailableStock(ctx context.Context, itemID int64, available int) error {
	key := fmt.Sprintf("stock:%d", itemID)
	return c.rdb.Set(ctx, key, available, 0).Err()
}

// GetAvailableStock returns the cached total for an item; found is false
// on a cache miss
func (c *Client) GetAvailableStock(ctx context.Context, itemID int64) (available int, found bool, err error) {
	key := fmt.Sprintf("stock:%d", itemID)

	val, err := c.rdb.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}

	available, err = strconv.Atoi(val)
	if err != nil {
		return 0, false, fmt.Errorf("corrupt stock cache for item %d: %w", itemID, err)
	}
	return available, true, nil
}

// InvalidateStock drops the cached total for an item
func (c *Client) InvalidateStock(ctx context.Context, itemID int64) error {
	return c.rdb.Del(ctx, fmt.Sprintf("stock:%d", itemID)).Err()
}

// AcquireLock acquires a short-lived lock, used to serialize concurrent
// warranty claim registrations for the same job
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}

package rdx

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

func Connect(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Cache stores short-lived string values under a key prefix.
type Cache struct {
	c      redis.Cmdable
	prefix string
}

func NewCache(c redis.Cmdable, prefix string) *Cache {
	return &Cache{c: c, prefix: prefix}
}

func (c *Cache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.c.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *Cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.c.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *Cache) Del(ctx context.Context, key string) error {
	return c.c.Del(ctx, c.prefix+key).Err()
}

// PushCapped prepends value to a list and trims it to max entries.
func PushCapped(ctx context.Context, c redis.Cmdable, key string, value []byte, max int64) error {
	_, err := c.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.LPush(ctx, key, value)
		p.LTrim(ctx, key, 0, max-1)
		return nil
	})
	return err
}

// Newest returns up to n entries from the head of a list.
func Newest(ctx context.Context, c redis.Cmdable, key string, n int64) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	return c.LRange(ctx, key, 0, n-1).Result()
}

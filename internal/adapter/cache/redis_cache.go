package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/currexhq/ledger/internal/port"
)

var _ port.PriceCache = (*RedisCache)(nil)

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func key(symbol string) string { return "px:" + symbol }

func (c *RedisCache) SetPrice(ctx context.Context, symbol string, price int64) error {
	return c.client.Set(ctx, key(symbol), strconv.FormatInt(price, 10), c.ttl).Err()
}

func (c *RedisCache) GetPrice(ctx context.Context, symbol string) (int64, bool, error) {
	s, err := c.client.Get(ctx, key(symbol)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	price, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return price, true, nil
}

func (c *RedisCache) Invalidate(ctx context.Context, symbol string) error {
	return c.client.Del(ctx, key(symbol)).Err()
}

package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/estate-manager/property-service/internal/app/config"
	"github.com/estate-manager/property-service/internal/property/domain"
	"github.com/redis/go-redis/v9"
)

// PropertyCache fronts FindByID reads with Redis. Misses return (nil, nil).
type PropertyCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return client, nil
}

func NewPropertyCache(client *redis.Client, ttl time.Duration) *PropertyCache {
	return &PropertyCache{client: client, ttl: ttl}
}

func cacheKey(id string) string {
	return "property:" + id
}

func (c *PropertyCache) Get(ctx context.Context, id string) (*domain.Property, error) {
	data, err := c.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var p domain.Property
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *PropertyCache) Set(ctx context.Context, p *domain.Property) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, cacheKey(p.ID), data, c.ttl).Err()
}

func (c *PropertyCache) Delete(ctx context.Context, id string) error {
	return c.client.Del(ctx, cacheKey(id)).Err()
}

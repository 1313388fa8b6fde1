// Package cache stores rendered public plan views so anonymous traffic on share links does not
// hit the database on every request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const publicPlanPrefix = "public_plan:" // String: public_plan:{token} -> JSON view

// PlanCache holds serialized public plan views keyed by share token.
type PlanCache interface {
	// Get returns the cached view and whether it was present.
	Get(ctx context.Context, token string) ([]byte, bool, error)
	Set(ctx context.Context, token string, view []byte) error
	Delete(ctx context.Context, token string) error
}

// NewRedisClient connects to redis and verifies the connection.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return client, nil
}

type redisPlanCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisPlanCache caches views in redis for ttl.
func NewRedisPlanCache(client *redis.Client, ttl time.Duration) PlanCache {
	return &redisPlanCache{client: client, ttl: ttl}
}

func publicPlanKey(token string) string {
	return publicPlanPrefix + token
}

func (c *redisPlanCache) Get(ctx context.Context, token string) ([]byte, bool, error) {
	data, err := c.client.Get(ctx, publicPlanKey(token)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read public plan from redis: %w", err)
	}
	return data, true, nil
}

func (c *redisPlanCache) Set(ctx context.Context, token string, view []byte) error {
	if err := c.client.Set(ctx, publicPlanKey(token), view, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write public plan to redis: %w", err)
	}
	return nil
}

func (c *redisPlanCache) Delete(ctx context.Context, token string) error {
	if err := c.client.Del(ctx, publicPlanKey(token)).Err(); err != nil {
		return fmt.Errorf("failed to evict public plan from redis: %w", err)
	}
	return nil
}

type noopPlanCache struct{}

// NewNoopPlanCache is used when no redis address is configured. Every lookup misses.
func NewNoopPlanCache() PlanCache {
	return noopPlanCache{}
}

func (noopPlanCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (noopPlanCache) Set(context.Context, string, []byte) error         { return nil }
func (noopPlanCache) Delete(context.Context, string) error              { return nil }

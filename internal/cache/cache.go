// Package cache keeps rendered planet states keyed by user and day.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"stellar/internal/planet"
)

type PlanetCache interface {
	Get(ctx context.Context, userID string, day planet.Date) (planet.State, bool, error)
	Set(ctx context.Context, userID string, state planet.State) error
	Invalidate(ctx context.Context, userID string, day planet.Date) error
}

func key(userID string, day planet.Date) string {
	return fmt.Sprintf("stellar:planet:%s:%s", userID, day)
}

type Nop struct{}

func (Nop) Get(context.Context, string, planet.Date) (planet.State, bool, error) {
	return planet.State{}, false, nil
}
func (Nop) Set(context.Context, string, planet.State) error       { return nil }
func (Nop) Invalidate(context.Context, string, planet.Date) error { return nil }

type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedis parses a redis:// URL and pings the server.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb, ttl: ttl}, nil
}

func (c *Redis) Get(ctx context.Context, userID string, day planet.Date) (planet.State, bool, error) {
	raw, err := c.rdb.Get(ctx, key(userID, day)).Bytes()
	if errors.Is(err, redis.Nil) {
		return planet.State{}, false, nil
	}
	if err != nil {
		return planet.State{}, false, err
	}
	var st planet.State
	if err := json.Unmarshal(raw, &st); err != nil {
		return planet.State{}, false, fmt.Errorf("decode cached planet: %w", err)
	}
	return st, true, nil
}

func (c *Redis) Set(ctx context.Context, userID string, state planet.State) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, key(userID, state.Date), raw, c.ttl).Err()
}

func (c *Redis) Invalidate(ctx context.Context, userID string, day planet.Date) error {
	return c.rdb.Del(ctx, key(userID, day)).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

package sink

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"evdash/backend/services/dashboard-service/internal/models"
)

const (
	DefaultLatestKey = "dashboard:tick:latest"
	DefaultChannel   = "dashboard:ticks"
)

// redisCommander is the subset of *redis.Client the sink needs.
type redisCommander interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// RedisSink keeps the latest tick under a key with a TTL and announces every
// tick on a pub/sub channel for other consumers of the live feed.
type RedisSink struct {
	client    redisCommander
	latestKey string
	channel   string
	ttl       time.Duration
}

// NewRedisSink returns redis-backed sink. Empty names select the defaults.
func NewRedisSink(client *redis.Client, latestKey, channel string, ttl time.Duration) *RedisSink {
	return newRedisSink(client, latestKey, channel, ttl)
}

func newRedisSink(client redisCommander, latestKey, channel string, ttl time.Duration) *RedisSink {
	if latestKey == "" {
		latestKey = DefaultLatestKey
	}
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisSink{client: client, latestKey: latestKey, channel: channel, ttl: ttl}
}

// Name identifies the sink in logs and metrics.
func (s *RedisSink) Name() string { return "redis" }

// Publish stores and broadcasts the tick.
func (s *RedisSink) Publish(ctx context.Context, tick *models.Tick) error {
	data, err := json.Marshal(tick)
	if err != nil {
		return fmt.Errorf("redis sink: encode tick: %w", err)
	}
	if err := s.client.Set(ctx, s.latestKey, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis sink: set %s: %w", s.latestKey, err)
	}
	if err := s.client.Publish(ctx, s.channel, data).Err(); err != nil {
		return fmt.Errorf("redis sink: publish %s: %w", s.channel, err)
	}
	return nil
}

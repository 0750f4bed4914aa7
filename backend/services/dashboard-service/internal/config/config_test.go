package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evdash/backend/services/dashboard-service/internal/feed"
)

func isolate(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("ENV_FILE", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTPAddress())
	assert.Equal(t, 10*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, 10*time.Second, cfg.RefreshInterval())
	assert.Equal(t, feed.Settings{Interval: 10 * time.Second, AutoRefresh: true}, cfg.FeedSettings())
	assert.Equal(t, 30*time.Second, cfg.RedisTTL())
	assert.Equal(t, "dashboard.ticks", cfg.Kafka.Topic)
	assert.Empty(t, cfg.Kafka.Brokers)
	assert.Empty(t, cfg.Redis.Addr)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DASHBOARD_HTTP_PORT", ":9090")
	t.Setenv("DASHBOARD_REFRESH_INTERVAL", "30")
	t.Setenv("DASHBOARD_AUTO_REFRESH", "false")
	t.Setenv("DASHBOARD_REDIS_ADDR", "localhost:6379")
	t.Setenv("DASHBOARD_REDIS_TTL", "2m")
	t.Setenv("DASHBOARD_KAFKA_BROKERS", "k1:9092,k2:9092")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTPAddress())
	assert.Equal(t, feed.Settings{Interval: 30 * time.Second, AutoRefresh: false}, cfg.FeedSettings())
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
	assert.Equal(t, 2*time.Minute, cfg.RedisTTL())
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsIntervalOutsideRange(t *testing.T) {
	for _, v := range []string{"4", "61", "0", "36028797018963978"} {
		t.Run(v, func(t *testing.T) {
			isolate(t)
			t.Setenv("DASHBOARD_REFRESH_INTERVAL", v)

			_, err := Load()
			require.ErrorIs(t, err, feed.ErrIntervalOutOfRange)
		})
	}
}

func TestLoadRejectsPingSlowerThanPongDeadline(t *testing.T) {
	isolate(t)
	t.Setenv("DASHBOARD_WS_PING_INTERVAL", "90s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping interval")

	t.Setenv("DASHBOARD_WS_PING_INTERVAL", "45s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 45*time.Second, cfg.WebSocket.PingInterval)
}

func TestValidateRequiresKafkaTopic(t *testing.T) {
	cfg := &Config{Refresh: RefreshConfig{IntervalSeconds: 5}}
	cfg.Kafka.Brokers = []string{"k1:9092"}

	require.Error(t, cfg.Validate())

	cfg.Kafka.Topic = "ticks"
	require.NoError(t, cfg.Validate())
}

func TestHTTPAddressFallsBackToDefault(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, ":8080", cfg.HTTPAddress())

	cfg.HTTP.Port = "7000"
	assert.Equal(t, ":7000", cfg.HTTPAddress())
}

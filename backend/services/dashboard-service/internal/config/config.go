package config

import (
	"fmt"
	"strings"
	"time"

	libconfig "evdash/backend/libs/config"
	"evdash/backend/services/dashboard-service/internal/feed"
	"evdash/backend/services/dashboard-service/internal/ws"
)

const defaultPort = "8080"

// HTTPConfig holds the listener settings.
type HTTPConfig struct {
	Port            string        `yaml:"port" env:"DASHBOARD_HTTP_PORT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"DASHBOARD_HTTP_SHUTDOWN_TIMEOUT"`
}

// RefreshConfig is the initial refresh policy of the feed.
type RefreshConfig struct {
	IntervalSeconds int  `yaml:"intervalSeconds" env:"DASHBOARD_REFRESH_INTERVAL"`
	AutoRefresh     bool `yaml:"autoRefresh" env:"DASHBOARD_AUTO_REFRESH"`
}

// WebSocketConfig tunes the live push channel.
type WebSocketConfig struct {
	PingInterval time.Duration `yaml:"pingInterval" env:"DASHBOARD_WS_PING_INTERVAL"`
	WriteTimeout time.Duration `yaml:"writeTimeout" env:"DASHBOARD_WS_WRITE_TIMEOUT"`
}

// RedisConfig enables the Redis sink when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr" env:"DASHBOARD_REDIS_ADDR"`
	Password string        `yaml:"password" env:"DASHBOARD_REDIS_PASSWORD"`
	DB       int           `yaml:"db" env:"DASHBOARD_REDIS_DB"`
	Key      string        `yaml:"key" env:"DASHBOARD_REDIS_KEY"`
	Channel  string        `yaml:"channel" env:"DASHBOARD_REDIS_CHANNEL"`
	TTL      time.Duration `yaml:"ttl" env:"DASHBOARD_REDIS_TTL"`
}

// KafkaConfig enables the Kafka sink when brokers are listed.
type KafkaConfig struct {
	Brokers []string `yaml:"brokers" env:"DASHBOARD_KAFKA_BROKERS"`
	Topic   string   `yaml:"topic" env:"DASHBOARD_KAFKA_TOPIC"`
}

// Config defines dashboard service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Refresh   RefreshConfig   `yaml:"refresh"`
	WebSocket WebSocketConfig `yaml:"websocket"`
	Redis     RedisConfig     `yaml:"redis"`
	Kafka     KafkaConfig     `yaml:"kafka"`
	Database  struct {
		DSN string `yaml:"dsn" env:"DASHBOARD_POSTGRES_DSN"`
	} `yaml:"database"`
	Metrics struct {
		Enabled bool `yaml:"enabled" env:"DASHBOARD_METRICS_ENABLED"`
	} `yaml:"metrics"`
}

// Load configuration using shared helper.
func Load() (*Config, error) {
	cfg := &Config{
		HTTP: HTTPConfig{Port: defaultPort, ShutdownTimeout: 10 * time.Second},
		Refresh: RefreshConfig{
			IntervalSeconds: int(feed.DefaultInterval / time.Second),
			AutoRefresh:     true,
		},
		WebSocket: WebSocketConfig{
			PingInterval: 30 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		Kafka: KafkaConfig{Topic: "dashboard.ticks"},
	}
	cfg.Metrics.Enabled = true

	if err := libconfig.LoadConfig(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values the service cannot start with.
func (c *Config) Validate() error {
	if _, err := feed.IntervalFromSeconds(c.Refresh.IntervalSeconds); err != nil {
		return fmt.Errorf("config: refresh: %w", err)
	}
	if c.WebSocket.PingInterval >= ws.PongDeadline {
		return fmt.Errorf("config: websocket ping interval %s must be below %s", c.WebSocket.PingInterval, ws.PongDeadline)
	}
	if len(c.Kafka.Brokers) > 0 && strings.TrimSpace(c.Kafka.Topic) == "" {
		return fmt.Errorf("config: kafka topic required when brokers are set")
	}
	return nil
}

// HTTPAddress returns :port style.
func (c *Config) HTTPAddress() string {
	port := strings.TrimSpace(c.HTTP.Port)
	if port == "" {
		port = defaultPort
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return fmt.Sprintf(":%s", port)
}

// RefreshInterval returns the configured tick interval, or the default when
// the configured value is out of range.
func (c *Config) RefreshInterval() time.Duration {
	d, err := feed.IntervalFromSeconds(c.Refresh.IntervalSeconds)
	if err != nil {
		return feed.DefaultInterval
	}
	return d
}

// FeedSettings converts the refresh block into the feed policy.
func (c *Config) FeedSettings() feed.Settings {
	return feed.Settings{Interval: c.RefreshInterval(), AutoRefresh: c.Refresh.AutoRefresh}
}

// RedisTTL is the expiry of the latest tick key. Unset means three intervals.
func (c *Config) RedisTTL() time.Duration {
	if c.Redis.TTL > 0 {
		return c.Redis.TTL
	}
	return 3 * c.RefreshInterval()
}

package app

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"evdash/backend/libs/db"
	"evdash/backend/libs/redis"
	"evdash/backend/services/dashboard-service/internal/catalog"
	"evdash/backend/services/dashboard-service/internal/config"
	"evdash/backend/services/dashboard-service/internal/feed"
	httpserver "evdash/backend/services/dashboard-service/internal/http"
	"evdash/backend/services/dashboard-service/internal/http/handlers"
	"evdash/backend/services/dashboard-service/internal/http/middleware"
	"evdash/backend/services/dashboard-service/internal/metrics"
	"evdash/backend/services/dashboard-service/internal/repository"
	"evdash/backend/services/dashboard-service/internal/sink"
	"evdash/backend/services/dashboard-service/internal/telemetry"
	"evdash/backend/services/dashboard-service/internal/ws"
)

const startupTimeout = 15 * time.Second

// App wires dashboard dependencies.
type App struct {
	feed   *feed.Feed
	hub    *ws.Hub
	server *httpserver.Server
	logger *zap.Logger

	redisClient *goredis.Client
	kafkaSink   *sink.KafkaSink
}

// New constructs application graph. Optional backends (Redis, Kafka,
// Postgres) are only touched when configured.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (_ *App, err error) {
	a := &App{logger: logger}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	locations := catalog.New()
	if cfg.Database.DSN != "" {
		if err := exportCatalog(startCtx, cfg.Database.DSN, locations, logger); err != nil {
			return nil, err
		}
	}

	var recorder *metrics.Recorder
	var observer feed.Observer
	var onClients func(int)
	if cfg.Metrics.Enabled {
		recorder = metrics.NewRecorder()
		observer = recorder
		onClients = recorder.SetClients
	}

	a.hub = ws.NewHub(cfg.WebSocket.PingInterval, logger, onClients)
	publishers := []feed.Publisher{a.hub}
	if recorder != nil {
		publishers = append(publishers, recorder)
	}

	if cfg.Redis.Addr != "" {
		a.redisClient, err = redis.NewRedisClient(startCtx, redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		publishers = append(publishers, sink.NewRedisSink(a.redisClient, cfg.Redis.Key, cfg.Redis.Channel, cfg.RedisTTL()))
		logger.Info("redis sink enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		a.kafkaSink, err = sink.NewKafkaSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return nil, err
		}
		publishers = append(publishers, a.kafkaSink)
		logger.Info("kafka sink enabled", zap.Strings("brokers", cfg.Kafka.Brokers), zap.String("topic", cfg.Kafka.Topic))
	}

	generator := telemetry.NewGenerator(telemetry.NewTimeSeededSource(time.Now()), telemetry.DefaultRoster)
	a.feed, err = feed.New(generator, feed.Options{
		Settings: cfg.FeedSettings(),
		Observer: observer,
	}, logger, publishers...)
	if err != nil {
		return nil, err
	}

	wsServer := ws.NewServer(a.hub, a.feed.Latest, cfg.WebSocket.WriteTimeout, logger)

	deps := httpserver.RouterDeps{
		HealthHandler:    handlers.NewHealthHandler(),
		DashboardHandler: handlers.NewDashboardHandler(locations, a.feed, logger),
		LiveHandlers:     handlers.NewLiveHandlers(a.feed, logger),
		LocationHandlers: handlers.NewLocationHandlers(locations),
		SettingsHandlers: handlers.NewSettingsHandlers(a.feed, logger),
		WSHandler:        wsServer.HandleWS,
	}
	if recorder != nil {
		deps.MetricsHandler = recorder.Handler()
	}

	a.server = httpserver.NewServer(
		cfg.HTTPAddress(),
		httpserver.NewRouter(deps),
		cfg.HTTP.ShutdownTimeout,
		logger,
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
	)

	return a, nil
}

func exportCatalog(ctx context.Context, dsn string, c *catalog.Catalog, logger *zap.Logger) error {
	conn, err := db.NewPostgresDB(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer conn.Close()

	repo := repository.NewLocationRepository(conn)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	if err := repo.UpsertAll(ctx, c.Load()); err != nil {
		return err
	}
	logger.Info("proposed locations exported", zap.Int("count", c.Len()))
	return nil
}

// Run serves HTTP, drives the feed and pings WebSocket clients until ctx is
// done or one of them fails.
func (a *App) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return a.server.Run(ctx) })
	g.Go(func() error { return a.feed.Run(ctx) })
	g.Go(func() error {
		a.hub.Start(ctx)
		return nil
	})
	return g.Wait()
}

// Close releases external connections.
func (a *App) Close() {
	if a.kafkaSink != nil {
		if err := a.kafkaSink.Close(); err != nil {
			a.logger.Warn("close kafka writer", zap.Error(err))
		}
	}
	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warn("close redis client", zap.Error(err))
		}
	}
}

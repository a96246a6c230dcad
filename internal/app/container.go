// Package app wires configuration into the ranking use cases.
package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/felixgeelhaar/taskrank/internal/ranking/application/commands"
	"github.com/felixgeelhaar/taskrank/internal/ranking/application/queries"
	"github.com/felixgeelhaar/taskrank/internal/ranking/application/services"
	"github.com/felixgeelhaar/taskrank/internal/ranking/domain"
	"github.com/felixgeelhaar/taskrank/internal/ranking/infrastructure/cache"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/convert"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/taskrank/internal/shared/infrastructure/resilience"
	"github.com/felixgeelhaar/taskrank/pkg/client"
	"github.com/felixgeelhaar/taskrank/pkg/config"
	"github.com/felixgeelhaar/taskrank/pkg/observability"
)

// Container holds every long-lived dependency.
type Container struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *observability.InMemoryMetrics
	Health  *observability.HealthRegistry

	Ranker         *services.Ranker
	ResultCache    cache.ResultCache
	EventPublisher eventbus.Publisher
	// Events is the in-process bus used as publisher in development when
	// no broker is reachable. Nil otherwise.
	Events *eventbus.InProcessEventBus

	AnalyzeTasksHandler *commands.AnalyzeTasksHandler
	SuggestTasksHandler *queries.SuggestTasksHandler

	closers []func() error
}

// BreakerConfig derives circuit breaker settings from cfg.
func BreakerConfig(cfg *config.Config) resilience.BreakerConfig {
	b := resilience.DefaultBreakerConfig()
	b.FailureThreshold = convert.IntToUint32Clamped(cfg.BreakerFailures)
	b.Timeout = cfg.BreakerTimeout
	return b
}

// NewContainer connects optional infrastructure and builds the handlers.
// In development unreachable Redis or RabbitMQ degrade to in-process
// stand-ins; elsewhere they are fatal.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Container{
		Config:  cfg,
		Logger:  logger,
		Metrics: observability.NewInMemoryMetrics(),
		Health:  observability.NewHealthRegistry(),
		Ranker:  services.NewRanker(),
	}

	if err := c.initCache(ctx); err != nil {
		c.Close()
		return nil, err
	}
	if err := c.initPublisher(); err != nil {
		c.Close()
		return nil, err
	}

	c.AnalyzeTasksHandler = commands.NewAnalyzeTasksHandler(c.Ranker,
		commands.AnalyzeTasksConfig{StrictStrategy: cfg.StrictStrategy},
		commands.WithCache(c.ResultCache),
		commands.WithPublisher(c.EventPublisher),
		commands.WithMetrics(c.Metrics),
		commands.WithLogger(logger),
	)
	c.SuggestTasksHandler = queries.NewSuggestTasksHandler(c.AnalyzeTasksHandler, cfg.SuggestLimit)

	return c, nil
}

func (c *Container) initCache(ctx context.Context) error {
	cfg := c.Config
	if !cfg.CacheEnabled() {
		c.ResultCache = cache.NoopCache{}
		return nil
	}

	client, err := cache.NewRedisClient(cfg.RedisURL)
	if err == nil {
		err = client.Ping(ctx).Err()
		if err != nil {
			_ = client.Close()
		}
	}
	if err != nil {
		if !cfg.IsDevelopment() {
			return fmt.Errorf("failed to connect to Redis: %w", err)
		}
		c.Logger.Warn("Redis not available, using in-memory result cache", "error", err)
		c.ResultCache = cache.NewMemoryCache(cfg.CacheTTL)
		return nil
	}

	redisCache := cache.NewRedisResultCache(client, cfg.CacheTTL, BreakerConfig(cfg), c.Logger)
	c.ResultCache = redisCache
	c.Health.Register("redis", observability.PingChecker("redis", redisCache.Ping))
	c.closers = append(c.closers, redisCache.Close)
	c.Logger.Info("connected to Redis")
	return nil
}

func (c *Container) initPublisher() error {
	cfg := c.Config
	if !cfg.EventsEnabled() {
		if cfg.IsDevelopment() {
			c.useLocalEvents()
			return nil
		}
		c.EventPublisher = eventbus.NewNoopPublisher(c.Logger)
		return nil
	}

	publisher, err := eventbus.NewRabbitMQPublisher(cfg.RabbitMQURL, c.Logger)
	if err != nil {
		if !cfg.IsDevelopment() {
			return err
		}
		c.Logger.Warn("RabbitMQ not available, using in-process events", "error", err)
		c.useLocalEvents()
		return nil
	}

	c.EventPublisher = publisher
	c.Health.Register("rabbitmq", observability.PingChecker("rabbitmq", publisher.Ping))
	c.closers = append(c.closers, publisher.Close)
	return nil
}

// useLocalEvents publishes to an in-process bus that logs each completed
// analysis at debug level.
func (c *Container) useLocalEvents() {
	bus := eventbus.NewInProcessEventBus(c.Logger)
	bus.Subscribe(domain.RoutingKeyAnalysisCompleted, func(ctx context.Context, msg eventbus.Message) error {
		var evt domain.AnalysisCompleted
		if err := json.Unmarshal(msg.Payload, &evt); err != nil {
			return fmt.Errorf("failed to decode %s: %w", msg.RoutingKey, err)
		}
		c.Logger.DebugContext(ctx, "analysis completed",
			"event_id", evt.EventID,
			"strategy", evt.Strategy,
			"task_count", evt.TaskCount,
			"cycle_count", evt.CycleCount,
			"cache_hit", evt.CacheHit,
		)
		return nil
	})
	c.Events = bus
	c.EventPublisher = bus
	c.closers = append(c.closers, bus.Close)
}

// RemoteClient returns a client for cfg.RemoteURL that ranks locally when
// the remote fails. baseURL overrides the configured URL when set.
func (c *Container) RemoteClient(baseURL string) *client.Client {
	if baseURL == "" {
		baseURL = c.Config.RemoteURL
	}
	return client.New(client.Config{
		BaseURL: baseURL,
		Timeout: c.Config.RemoteTimeout,
		Breaker: BreakerConfig(c.Config),
	},
		client.WithFallback(c.Ranker),
		client.WithMetrics(c.Metrics),
		client.WithLogger(c.Logger),
	)
}

// Close releases connections in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			c.Logger.Warn("error closing dependency", "error", err)
		}
	}
	c.closers = nil
}

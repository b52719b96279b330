// Package app holds the fx wiring shared by the API server and the ingest
// worker.
package app

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/septivank/earthquake-catalog/internal/config"
	"github.com/septivank/earthquake-catalog/internal/db"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/logging"
	"github.com/septivank/earthquake-catalog/internal/mq"
	"github.com/septivank/earthquake-catalog/internal/querycache"
	"github.com/septivank/earthquake-catalog/internal/repository"
	"github.com/septivank/earthquake-catalog/internal/service"
	"github.com/septivank/earthquake-catalog/internal/validator"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Catalog provides everything from the logger up to the EarthquakeService.
// The caller supplies *config.Config.
var Catalog = fx.Module("catalog",
	fx.Provide(
		NewLogger,
		ProvideStore,
		ProvideValidator,
		ProvideQueryResolver,
		ProvideMutationResolver,
		ProvideResultCache,
		ProvideMQConnection,
		ProvideEventPublisher,
		ProvideEarthquakeService,
	),
)

// NewLogger builds the service logger from config
func NewLogger(cfg *config.Config) (*zap.Logger, error) {
	return logging.NewLogger(cfg.ServiceName, cfg.LogLevel)
}

// ProvideStore selects the postgres repository or the in-memory store
func ProvideStore(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (earthquake.Store, error) {
	if cfg.Store.Driver == config.StoreDriverMemory {
		logger.Warn("using in-memory store, records are lost on restart")
		return earthquake.NewMemoryStore(), nil
	}

	pool, err := db.NewPool(lc, logger, cfg.Store.DatabaseURL)
	if err != nil {
		return nil, err
	}
	return repository.NewRepository(pool), nil
}

// ProvideValidator creates a new validator instance
func ProvideValidator() *validator.Validator {
	return validator.NewValidator()
}

// ProvideQueryResolver creates a new query resolver instance
func ProvideQueryResolver(store earthquake.Store) *earthquake.QueryResolver {
	return earthquake.NewQueryResolver(store)
}

// ProvideMutationResolver creates a new mutation resolver instance
func ProvideMutationResolver(store earthquake.Store, v *validator.Validator) *earthquake.MutationResolver {
	return earthquake.NewMutationResolver(store, v)
}

// ProvideResultCache connects the shared query cache, or returns nil when
// REDIS_ADDR is unset.
func ProvideResultCache(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) service.ResultCache {
	if !cfg.Redis.Enabled() {
		logger.Info("query cache disabled")
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			// An unreachable cache only costs hit rate.
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Warn("redis ping failed, queries will bypass the cache", zap.Error(err))
				return nil
			}
			logger.Info("query cache connected", zap.String("addr", cfg.Redis.Addr))
			return nil
		},
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})

	return querycache.New(querycache.NewRedisKV(client), cfg.Redis.KeyPrefix, cfg.Redis.TTL, logger)
}

// ProvideMQConnection dials RabbitMQ, or returns nil when RABBITMQ_URL is unset.
func ProvideMQConnection(lc fx.Lifecycle, logger *zap.Logger, cfg *config.Config) (*mq.Connection, error) {
	if !cfg.RabbitMQ.Enabled() {
		logger.Info("rabbitmq disabled, mutation events will not be published")
		return nil, nil
	}
	return mq.NewConnection(lc, logger, cfg.RabbitMQ.URL)
}

// ProvideEventPublisher creates the mutation event publisher when RabbitMQ
// is configured.
func ProvideEventPublisher(lc fx.Lifecycle, conn *mq.Connection, cfg *config.Config, logger *zap.Logger) (service.EventPublisher, error) {
	if conn == nil {
		return nil, nil
	}

	publisher, err := mq.NewPublisher(conn, cfg.RabbitMQ.EventsExchange, logger)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return publisher.Close()
		},
	})
	return publisher, nil
}

// ProvideEarthquakeService creates a new earthquake service instance
func ProvideEarthquakeService(
	queries *earthquake.QueryResolver,
	mutations *earthquake.MutationResolver,
	cache service.ResultCache,
	events service.EventPublisher,
	logger *zap.Logger,
) *service.EarthquakeService {
	return service.NewEarthquakeService(queries, mutations, cache, events, logger)
}

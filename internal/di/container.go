// Package di wires the worker's object graph.
package di

import (
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/tjsasakifln/Inbound/internal/adapters/publish"
	"github.com/tjsasakifln/Inbound/internal/adapters/queue"
	"github.com/tjsasakifln/Inbound/internal/config"
	"github.com/tjsasakifln/Inbound/internal/core"
	"github.com/tjsasakifln/Inbound/internal/dedup"
	"github.com/tjsasakifln/Inbound/internal/enrich"
	"github.com/tjsasakifln/Inbound/internal/factory"
	"github.com/tjsasakifln/Inbound/internal/logging"
	"github.com/tjsasakifln/Inbound/internal/resilience"
	"github.com/tjsasakifln/Inbound/internal/worker"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register Redis client
	if err := container.Provide(func(cfg *config.Config) *redis.Client {
		redisCfg := cfg.GetRedis()
		return redis.NewClient(&redis.Options{
			Addr:     redisCfg.Addr,
			Password: redisCfg.Password,
			DB:       redisCfg.DB,
		})
	}); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewScoringFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAuditFactory); err != nil {
		return nil, err
	}

	// Register scoring client
	if err := container.Provide(func(f *factory.ScoringFactory) (core.ScoringClient, error) {
		return f.CreateScoringClient()
	}); err != nil {
		return nil, err
	}

	// Register score cache
	if err := container.Provide(func(f *factory.CacheFactory) (core.ScoreCache, error) {
		return f.CreateScoreCache()
	}); err != nil {
		return nil, err
	}

	// Register lead store
	if err := container.Provide(func(f *factory.StoreFactory) (core.LeadStore, error) {
		return f.CreateLeadStore()
	}); err != nil {
		return nil, err
	}

	// Register audit sink
	if err := container.Provide(func(f *factory.AuditFactory) (core.AuditSink, error) {
		return f.CreateAuditSink()
	}); err != nil {
		return nil, err
	}

	// Register duplicate matcher
	if err := container.Provide(func(cfg *config.Config) core.DuplicateMatcher {
		dedupCfg := cfg.GetDedup()
		return dedup.NewMatcher(dedupCfg.SenderThreshold, dedupCfg.SubjectThreshold)
	}); err != nil {
		return nil, err
	}

	// Register enricher
	if err := container.Provide(func(logger *zap.Logger) core.Enricher {
		return enrich.NewAnalyzer(logger)
	}); err != nil {
		return nil, err
	}

	// Register classifier
	if err := container.Provide(func(
		scorer core.ScoringClient,
		cache core.ScoreCache,
		audit core.AuditSink,
		logger *zap.Logger,
		cacheFactory *factory.CacheFactory,
		cfg *config.Config,
	) (*core.Classifier, error) {
		scoringCfg, err := cfg.GetScoring()
		if err != nil {
			return nil, err
		}
		return core.NewClassifier(
			scorer,
			cache,
			audit,
			logger,
			cacheFactory.IsCacheEnabled(),
			scoringCfg.CacheTTL,
			scoringCfg.Timeout,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register publisher and dead-letter sink
	if err := container.Provide(func(client *redis.Client, cfg *config.Config) core.Publisher {
		return publish.NewRedisPublisher(client, cfg.GetString("publish.channel"))
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(client *redis.Client, cfg *config.Config) core.DeadLetterSink {
		return publish.NewRedisDeadLetter(client, cfg.GetString("dlq.list"))
	}); err != nil {
		return nil, err
	}

	// Register pipeline
	if err := container.Provide(func(
		matcher core.DuplicateMatcher,
		classifier *core.Classifier,
		enricher core.Enricher,
		store core.LeadStore,
		publisher core.Publisher,
		deadLetters core.DeadLetterSink,
		logger *zap.Logger,
		cfg *config.Config,
	) (*core.Pipeline, error) {
		retryCfg, err := cfg.GetRetry()
		if err != nil {
			return nil, err
		}
		scoringCfg, err := cfg.GetScoring()
		if err != nil {
			return nil, err
		}
		return core.NewPipeline(
			matcher,
			classifier,
			enricher,
			store,
			publisher,
			deadLetters,
			logger,
			resilience.Config{
				MaxAttempts:    retryCfg.MaxAttempts,
				InitialBackoff: retryCfg.InitialBackoff,
				MaxBackoff:     retryCfg.MaxBackoff,
				Multiplier:     retryCfg.Multiplier,
				JitterFraction: retryCfg.Jitter,
			},
			scoringCfg.FailOpen,
		), nil
	}); err != nil {
		return nil, err
	}

	// Register worker pool
	if err := container.Provide(func(pipeline *core.Pipeline, logger *zap.Logger, cfg *config.Config) *worker.Pool {
		return worker.NewPool(pipeline, logger, cfg.GetInt("worker.count"))
	}); err != nil {
		return nil, err
	}

	// Register stream consumer
	if err := container.Provide(func(client *redis.Client, pool *worker.Pool, logger *zap.Logger, cfg *config.Config) *queue.Consumer {
		hostname, err := os.Hostname()
		if err != nil {
			hostname = "inbound"
		}
		consumerName := fmt.Sprintf("%s-%d", hostname, os.Getpid())
		return queue.NewConsumer(
			client,
			cfg.GetString("queue.stream"),
			cfg.GetString("queue.group"),
			consumerName,
			pool,
			logger,
		)
	}); err != nil {
		return nil, err
	}

	return container, nil
}

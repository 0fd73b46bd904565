package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mirindaq/EcomStore-sub002/internal/config"
	"github.com/mirindaq/EcomStore-sub002/internal/domain"
	"github.com/mirindaq/EcomStore-sub002/internal/engine"
	esengine "github.com/mirindaq/EcomStore-sub002/internal/engine/elasticsearch"
	memengine "github.com/mirindaq/EcomStore-sub002/internal/engine/memory"
	"github.com/mirindaq/EcomStore-sub002/internal/event"
	handler "github.com/mirindaq/EcomStore-sub002/internal/handler/http"
	"github.com/mirindaq/EcomStore-sub002/internal/promotion"
	pgrepo "github.com/mirindaq/EcomStore-sub002/internal/repository/postgres"
	"github.com/mirindaq/EcomStore-sub002/internal/service"
	"github.com/mirindaq/EcomStore-sub002/internal/vector"
	redisvector "github.com/mirindaq/EcomStore-sub002/internal/vector/redis"
	"github.com/mirindaq/EcomStore-sub002/migrations"
	"github.com/mirindaq/EcomStore-sub002/pkg/database"
	"github.com/mirindaq/EcomStore-sub002/pkg/health"
	"github.com/mirindaq/EcomStore-sub002/pkg/httpclient"
	pkgkafka "github.com/mirindaq/EcomStore-sub002/pkg/kafka"
	"github.com/mirindaq/EcomStore-sub002/pkg/middleware"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// idempotencyTTL is how long processed event IDs are remembered.
const idempotencyTTL = 24 * time.Hour

// App wires together all dependencies and runs the catalog indexer service.
type App struct {
	cfg        *config.Config
	logger     *slog.Logger
	pool       *pgxpool.Pool
	redis      *redis.Client
	producer   *pkgkafka.Producer
	dlq        *pkgkafka.DLQProducer
	consumers  []*pkgkafka.Consumer
	httpServer *http.Server
}

// NewApp creates a new application instance, initializing all dependencies.
func NewApp(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	// Relational store.
	pgCfg := cfg.Postgres()
	pool, err := database.NewPostgresPool(ctx, &pgCfg, logger)
	if err != nil {
		return nil, fmt.Errorf("init postgres pool: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrations.FS, logger); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	repo := pgrepo.NewProductRepository(pool)

	// Redis backs the vector store and the consumer idempotency guard.
	redisClient, err := database.NewRedisClient(ctx, cfg.Redis())
	if err != nil {
		return nil, fmt.Errorf("init redis client: %w", err)
	}

	// Search engine based on configuration.
	var eng engine.SearchEngine
	var esEng *esengine.Engine
	switch cfg.SearchEngine {
	case "elasticsearch":
		esEng, err = esengine.New(cfg.ElasticsearchURL, cfg.ElasticsearchIndex, logger)
		if err != nil {
			return nil, fmt.Errorf("init elasticsearch engine: %w", err)
		}
		eng = esEng
		logger.Info("elasticsearch search engine initialized",
			slog.String("url", cfg.ElasticsearchURL),
			slog.String("index", cfg.ElasticsearchIndex),
		)
	default:
		eng = memengine.New()
		logger.Info("in-memory search engine initialized")
	}

	// Vector store.
	embedder := vector.NewHashingEmbedder(cfg.VectorDimensions)
	vectors := redisvector.NewStore(redisClient, embedder, logger)

	// Promotion engine; without a configured service every price resolves
	// to the original.
	promotions := newPromotionEngine(cfg, logger)

	// Kafka producer for post-commit publishing.
	producer := pkgkafka.NewProducer(pkgkafka.DefaultProducerConfig(cfg.KafkaBrokers), logger)
	eventProducer := event.NewProducer(producer, logger)

	// Service layer.
	catalogService := service.NewCatalogService(repo, eventProducer, logger)
	indexerService := service.NewIndexerService(repo, eng, vectors, logger)
	searchService := service.NewSearchService(eng, promotions, logger)

	// Consume side: idempotency-guarded handler, bounded retries, DLQ.
	eventConsumer := event.NewConsumer(indexerService, logger)
	idemStore := pkgkafka.NewRedisIdempotencyStore(redisClient, "", idempotencyTTL)
	handlerFn := pkgkafka.IdempotentHandler(idemStore, eventConsumer.Handle, logger)
	dlq := pkgkafka.NewDLQProducer(cfg.KafkaBrokers, logger)

	topics := []string{
		event.TopicProductCreated,
		event.TopicProductDeleted,
	}

	var consumers []*pkgkafka.Consumer
	for _, topic := range topics {
		consumerCfg := pkgkafka.ConsumerConfig{
			Brokers:  cfg.KafkaBrokers,
			GroupID:  cfg.KafkaConsumerGroup,
			Topic:    topic,
			MinBytes: 1,
			MaxBytes: 10e6, // 10 MB
		}
		c := pkgkafka.NewConsumer(consumerCfg, handlerFn, logger).WithDLQ(dlq)
		consumers = append(consumers, c)
	}
	logger.Info("kafka consumers initialized",
		slog.Any("brokers", cfg.KafkaBrokers),
		slog.Int("topic_count", len(topics)),
	)

	// Health checks.
	healthHandler := health.NewHandler()
	healthHandler.Register("postgres", func(ctx context.Context) error {
		return pool.Ping(ctx)
	})
	healthHandler.Register("redis", func(ctx context.Context) error {
		return redisClient.Ping(ctx).Err()
	})
	if esEng != nil {
		healthHandler.Register("elasticsearch", esEng.Ping)
	}
	healthHandler.Register("kafka", func(ctx context.Context) error {
		return pkgkafka.PingBrokers(ctx, cfg.KafkaBrokers)
	})

	// HTTP router.
	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.Environment = cfg.Environment
	router := handler.NewRouter(catalogService, searchService, indexerService, healthHandler, corsCfg, logger)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &App{
		cfg:        cfg,
		logger:     logger,
		pool:       pool,
		redis:      redisClient,
		producer:   producer,
		dlq:        dlq,
		consumers:  consumers,
		httpServer: httpServer,
	}, nil
}

// newPromotionEngine selects the promotion engine implementation from config.
func newPromotionEngine(cfg *config.Config, logger *slog.Logger) domain.PromotionEngine {
	if cfg.PromotionServiceURL == "" {
		logger.Info("no promotion service configured, prices resolve unchanged")
		return promotion.NewNoopEngine()
	}

	client := httpclient.New(httpclient.DefaultConfig())
	cbClient := httpclient.NewCircuitBreakerClient(client,
		httpclient.DefaultCircuitBreakerConfig("promotion-service"), logger)
	logger.Info("promotion engine initialized", slog.String("url", cfg.PromotionServiceURL))
	return promotion.NewHTTPEngine(cbClient, cfg.PromotionServiceURL, logger)
}

// Run starts the HTTP server and Kafka consumers, blocking until the context is canceled.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1+len(a.consumers))

	// Start Kafka consumers in background goroutines.
	for _, c := range a.consumers {
		c := c
		go func() {
			if err := c.Start(ctx); err != nil {
				errCh <- fmt.Errorf("kafka consumer: %w", err)
			}
		}()
	}

	// Start HTTP server.
	go func() {
		a.logger.Info("starting HTTP server",
			slog.String("addr", a.httpServer.Addr),
		)
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	return a.Shutdown()
}

// Shutdown gracefully stops all components.
func (a *App) Shutdown() error {
	a.logger.Info("shutting down application...")

	var errs []error

	// Graceful HTTP server shutdown with a 10-second deadline.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http server shutdown error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	// Close Kafka consumers and producers.
	for _, c := range a.consumers {
		if err := c.Close(); err != nil {
			a.logger.Error("kafka consumer close error", slog.String("error", err.Error()))
			errs = append(errs, err)
		}
	}
	if err := a.producer.Close(); err != nil {
		a.logger.Error("kafka producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	if err := a.dlq.Close(); err != nil {
		a.logger.Error("dlq producer close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}

	if err := a.redis.Close(); err != nil {
		a.logger.Error("redis close error", slog.String("error", err.Error()))
		errs = append(errs, err)
	}
	a.pool.Close()

	a.logger.Info("application shutdown complete")
	return errors.Join(errs...)
}

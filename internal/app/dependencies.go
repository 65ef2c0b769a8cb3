package app

import (
	"context"
	"fmt"
	"strings"

	goredis "github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/lessonshop/internal/backend"
	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
	"github.com/vladislavdragonenkov/lessonshop/internal/messaging/kafka"
	"github.com/vladislavdragonenkov/lessonshop/internal/metrics"
	"github.com/vladislavdragonenkov/lessonshop/internal/storage/memory"
	"github.com/vladislavdragonenkov/lessonshop/internal/storage/postgres"
	redisstore "github.com/vladislavdragonenkov/lessonshop/internal/storage/redis"
	"github.com/vladislavdragonenkov/lessonshop/internal/storefront"
)

// SessionStore — хранилище сессий с проверкой доступности и подсчётом.
type SessionStore interface {
	domain.SessionRepository
	Count(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
}

// Dependencies содержит все зависимости приложения.
type Dependencies struct {
	Backend   *backend.Client
	Sessions  SessionStore
	Publisher domain.EventPublisher
	Service   *storefront.Service
	Metrics   *metrics.StorefrontMetrics
	Logger    *log.Entry

	kafkaProducer *kafka.Producer
	redisClient   *goredis.Client
	pgStore       *postgres.Store
}

// NewDependencies собирает зависимости по конфигурации. Kafka необязательна:
// при ошибке подключения витрина работает без публикации событий.
func NewDependencies(ctx context.Context, cfg Config, m *metrics.StorefrontMetrics, logger *log.Entry) (*Dependencies, error) {
	if logger == nil {
		logger = log.WithField("component", "app")
	}
	if !cfg.SessionStore.Valid() {
		return nil, fmt.Errorf("unsupported session store %q", cfg.SessionStore)
	}
	if !cfg.SearchMode.Valid() {
		return nil, fmt.Errorf("unsupported search mode %q", cfg.SearchMode)
	}
	if !cfg.OrderFormat.Valid() {
		return nil, fmt.Errorf("unsupported order format %q", cfg.OrderFormat)
	}

	deps := &Dependencies{
		Metrics: m,
		Logger:  logger,
	}

	switch cfg.SessionStore {
	case StorageDriverRedis:
		client, err := redisstore.NewClient(ctx, cfg.RedisAddr)
		if err != nil {
			return nil, err
		}
		deps.redisClient = client
		deps.Sessions = redisstore.NewSessionRepository(client, cfg.SessionTTL)
		logger.WithField("addr", cfg.RedisAddr).Info("redis session store initialized")
	case StorageDriverPostgres:
		store, err := openPostgres(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		deps.pgStore = store
		deps.Sessions = postgres.NewSessionRepository(store, cfg.SessionTTL)
	default:
		deps.Sessions = memory.NewSessionRepository(cfg.SessionTTL)
	}

	deps.Publisher = domain.NoopPublisher{}
	if producer, err := initKafkaProducer(cfg.KafkaBrokers, logger); err == nil && producer != nil {
		deps.kafkaProducer = producer
		deps.Publisher = kafka.NewOrderEventPublisher(producer, cfg.KafkaTopic)
	}

	deps.Backend = backend.NewClient(cfg.BackendURL,
		backend.WithTimeout(cfg.BackendTimeout),
		backend.WithOrderFormat(cfg.OrderFormat),
		backend.WithLogger(logger.WithField("component", "backend-client")),
		backend.WithMetrics(m),
	)

	deps.Service = storefront.NewService(
		deps.Backend,
		deps.Publisher,
		m,
		logger.WithField("component", "storefront"),
		storefront.Options{
			SearchMode:          cfg.SearchMode,
			PushCapacityUpdates: cfg.PushCapacity,
		},
	)

	return deps, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *log.Entry) (*postgres.Store, error) {
	if strings.TrimSpace(cfg.PostgresDSN) == "" {
		return nil, fmt.Errorf("postgres session store requires a DSN")
	}
	store, err := postgres.Open(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, err
	}
	if cfg.PostgresAutoMigrate {
		if err := store.EnsureSchema(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("migrate postgres schema: %w", err)
		}
	}
	logger.WithField("auto_migrate", cfg.PostgresAutoMigrate).Info("postgres session store initialized")
	return store, nil
}

// KafkaEnabled сообщает, публикуются ли события заказов.
func (d *Dependencies) KafkaEnabled() bool {
	return d.kafkaProducer != nil
}

// Close освобождает внешние подключения.
func (d *Dependencies) Close() {
	closeKafka(d.kafkaProducer, d.Logger)
	if d.redisClient != nil {
		if err := d.redisClient.Close(); err != nil {
			d.Logger.WithError(err).Warn("failed to close redis client")
		}
	}
	if err := d.pgStore.Close(); err != nil {
		d.Logger.WithError(err).Warn("failed to close postgres store")
	}
}

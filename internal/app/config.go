package app

import (
	"time"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

// StorageDriver задаёт хранилище сессий.
type StorageDriver string

const (
	StorageDriverMemory   StorageDriver = "memory"
	StorageDriverRedis    StorageDriver = "redis"
	StorageDriverPostgres StorageDriver = "postgres"
)

// Valid сообщает, поддерживается ли драйвер.
func (d StorageDriver) Valid() bool {
	switch d {
	case StorageDriverMemory, StorageDriverRedis, StorageDriverPostgres:
		return true
	default:
		return false
	}
}

// Config описывает настройки запуска витрины.
type Config struct {
	HTTPAddr    string
	MetricsAddr string

	BackendURL     string
	BackendTimeout time.Duration

	SearchMode   domain.SearchMode
	OrderFormat  domain.OrderFormat
	PushCapacity bool

	SessionStore         StorageDriver
	RedisAddr            string
	PostgresDSN          string
	PostgresAutoMigrate  bool
	SessionTTL           time.Duration
	SessionSweepInterval time.Duration
	SessionSweepBatch    int

	// KafkaBrokers через запятую. Пустое значение отключает публикацию событий.
	KafkaBrokers string
	KafkaTopic   string

	Tracing bool
}

// DefaultConfig возвращает конфигурацию для локального запуска рядом с cmd/lesson-backend.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:             ":8080",
		MetricsAddr:          ":9090",
		BackendURL:           "http://localhost:8081",
		BackendTimeout:       10 * time.Second,
		SearchMode:           domain.SearchModeBackend,
		OrderFormat:          domain.OrderFormatQuantities,
		PushCapacity:         true,
		SessionStore:         StorageDriverMemory,
		RedisAddr:            "localhost:6379",
		PostgresAutoMigrate:  true,
		SessionTTL:           48 * time.Hour,
		SessionSweepInterval: time.Minute,
		SessionSweepBatch:    500,
		KafkaTopic:           "lessonshop.order.events",
	}
}

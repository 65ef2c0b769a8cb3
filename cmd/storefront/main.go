package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/lessonshop/internal/app"
	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
	"github.com/vladislavdragonenkov/lessonshop/internal/version"
)

const (
	envHTTPAddr             = "STOREFRONT_HTTP_ADDR"
	envMetricsAddr          = "STOREFRONT_METRICS_ADDR"
	envBackendURL           = "STOREFRONT_BACKEND_URL"
	envBackendTimeout       = "STOREFRONT_BACKEND_TIMEOUT"
	envSearchMode           = "STOREFRONT_SEARCH_MODE"
	envOrderFormat          = "STOREFRONT_ORDER_FORMAT"
	envPushCapacity         = "STOREFRONT_PUSH_CAPACITY"
	envSessionStore         = "STOREFRONT_SESSION_STORE"
	envRedisAddr            = "STOREFRONT_REDIS_ADDR"
	envPostgresDSN          = "STOREFRONT_POSTGRES_DSN"
	envPostgresAutoMigrate  = "STOREFRONT_POSTGRES_AUTO_MIGRATE"
	envSessionTTL           = "STOREFRONT_SESSION_TTL"
	envSessionSweepInterval = "STOREFRONT_SESSION_SWEEP_INTERVAL"
	envSessionSweepBatch    = "STOREFRONT_SESSION_SWEEP_BATCH"
	envKafkaBrokers         = "STOREFRONT_KAFKA_BROKERS"
	envKafkaTopic           = "STOREFRONT_KAFKA_TOPIC"
	envTracing              = "STOREFRONT_TRACING"
	envLogFormat            = "STOREFRONT_LOG_FORMAT"
	envLogLevel             = "STOREFRONT_LOG_LEVEL"
)

type envLookup func(string) (string, bool)

// setupLogger настраивает формат и уровень логирования для сервиса.
func setupLogger(lookup envLookup) {
	if v, ok := lookup(envLogFormat); ok && strings.EqualFold(strings.TrimSpace(v), "json") {
		log.SetFormatter(&log.JSONFormatter{
			FieldMap: log.FieldMap{
				log.FieldKeyTime:  "timestamp",
				log.FieldKeyLevel: "severity",
				log.FieldKeyMsg:   "message",
			},
			TimestampFormat: time.RFC3339Nano,
		})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	log.SetLevel(log.InfoLevel)
	if v, ok := lookup(envLogLevel); ok {
		if level, err := log.ParseLevel(strings.TrimSpace(v)); err == nil {
			log.SetLevel(level)
		}
	}
	log.SetOutput(os.Stdout)
}

// readConfigFromEnv накладывает переменные окружения на DefaultConfig.
// Некорректные значения не роняют запуск: остаётся значение по умолчанию, а
// причина возвращается предупреждением.
func readConfigFromEnv(lookup envLookup) (app.Config, []string) {
	cfg := app.DefaultConfig()
	var warnings []string
	warn := func(key string, err error) {
		warnings = append(warnings, fmt.Sprintf("%s: %v, using default", key, err))
	}

	if v, ok := nonEmpty(lookup, envHTTPAddr); ok {
		cfg.HTTPAddr = v
	}
	if v, ok := nonEmpty(lookup, envMetricsAddr); ok {
		cfg.MetricsAddr = v
	}
	if v, ok := nonEmpty(lookup, envBackendURL); ok {
		cfg.BackendURL = v
	}
	if v, ok := nonEmpty(lookup, envBackendTimeout); ok {
		d, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warn(envBackendTimeout, err)
		} else {
			cfg.BackendTimeout = d
		}
	}
	if v, ok := nonEmpty(lookup, envSearchMode); ok {
		mode := domain.SearchMode(strings.ToLower(v))
		if mode.Valid() {
			cfg.SearchMode = mode
		} else {
			warn(envSearchMode, fmt.Errorf("unknown search mode %q", v))
		}
	}
	if v, ok := nonEmpty(lookup, envOrderFormat); ok {
		format := domain.OrderFormat(strings.ToLower(v))
		if format.Valid() {
			cfg.OrderFormat = format
		} else {
			warn(envOrderFormat, fmt.Errorf("unknown order format %q", v))
		}
	}
	if v, ok := nonEmpty(lookup, envPushCapacity); ok {
		b, err := parseBool(v)
		if err != nil {
			warn(envPushCapacity, err)
		} else {
			cfg.PushCapacity = b
		}
	}
	if v, ok := nonEmpty(lookup, envSessionStore); ok {
		driver := app.StorageDriver(strings.ToLower(v))
		if driver.Valid() {
			cfg.SessionStore = driver
		} else {
			warn(envSessionStore, fmt.Errorf("unknown session store %q", v))
		}
	}
	if v, ok := nonEmpty(lookup, envRedisAddr); ok {
		cfg.RedisAddr = v
	}
	if v, ok := nonEmpty(lookup, envPostgresDSN); ok {
		cfg.PostgresDSN = v
	}
	if v, ok := nonEmpty(lookup, envPostgresAutoMigrate); ok {
		b, err := parseBool(v)
		if err != nil {
			warn(envPostgresAutoMigrate, err)
		} else {
			cfg.PostgresAutoMigrate = b
		}
	}
	if v, ok := nonEmpty(lookup, envSessionTTL); ok {
		d, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warn(envSessionTTL, err)
		} else {
			cfg.SessionTTL = d
		}
	}
	if v, ok := nonEmpty(lookup, envSessionSweepInterval); ok {
		d, err := parseDuration(v, func(d time.Duration) bool { return d > 0 }, "must be > 0")
		if err != nil {
			warn(envSessionSweepInterval, err)
		} else {
			cfg.SessionSweepInterval = d
		}
	}
	if v, ok := nonEmpty(lookup, envSessionSweepBatch); ok {
		n, err := parseInt(v, func(n int) bool { return n > 0 }, "must be > 0")
		if err != nil {
			warn(envSessionSweepBatch, err)
		} else {
			cfg.SessionSweepBatch = n
		}
	}
	if v, ok := nonEmpty(lookup, envKafkaBrokers); ok {
		cfg.KafkaBrokers = v
	}
	if v, ok := nonEmpty(lookup, envKafkaTopic); ok {
		cfg.KafkaTopic = v
	}
	if v, ok := nonEmpty(lookup, envTracing); ok {
		b, err := parseBool(v)
		if err != nil {
			warn(envTracing, err)
		} else {
			cfg.Tracing = b
		}
	}

	return cfg, warnings
}

func nonEmpty(lookup envLookup, key string) (string, bool) {
	v, ok := lookup(key)
	if !ok {
		return "", false
	}
	v = strings.TrimSpace(v)
	return v, v != ""
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}

func parseInt(raw string, valid func(int) bool, msg string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid int value %q", raw)
	}
	if !valid(v) {
		return 0, fmt.Errorf("%d %s", v, msg)
	}
	return v, nil
}

func parseDuration(raw string, valid func(time.Duration) bool, msg string) (time.Duration, error) {
	v, err := time.ParseDuration(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid duration value %q", raw)
	}
	if !valid(v) {
		return 0, fmt.Errorf("%s %s", v, msg)
	}
	return v, nil
}

func main() {
	setupLogger(os.LookupEnv)
	cfg, warnings := readConfigFromEnv(os.LookupEnv)
	for _, w := range warnings {
		log.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.WithFields(log.Fields{
		"http_addr":    cfg.HTTPAddr,
		"metrics_addr": cfg.MetricsAddr,
		"backend":      cfg.BackendURL,
		"version":      version.String(),
	}).Info("запускаем витрину занятий")

	if err := app.Run(ctx, cfg); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Fatal("приложение завершилось с ошибкой")
	}

	log.Info("витрина остановлена")
}

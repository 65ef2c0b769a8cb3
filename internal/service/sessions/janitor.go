// Package sessions обслуживает хранилище сессий витрины в фоне.
package sessions

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/lessonshop/internal/metrics"
)

const (
	defaultInterval  = time.Minute
	defaultBatchSize = 500
)

// Counter умеет считать живые сессии.
type Counter interface {
	Count(ctx context.Context) (int, error)
}

// Expirer удаляет истёкшие сессии порциями. Redis истекает сам и его не реализует.
type Expirer interface {
	DeleteExpired(ctx context.Context, limit int) (int, error)
}

// Options задает параметры Janitor.
type Options struct {
	Logger    *log.Entry
	Metrics   *metrics.StorefrontMetrics
	Interval  time.Duration
	BatchSize int
}

// Option настраивает Janitor.
type Option func(*Options)

// WithLogger задает logger.
func WithLogger(logger *log.Entry) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

// WithMetrics подключает метрики.
func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(opts *Options) {
		opts.Metrics = m
	}
}

// WithInterval задает интервал между прогонами.
func WithInterval(interval time.Duration) Option {
	return func(opts *Options) {
		opts.Interval = interval
	}
}

// WithBatchSize задает размер порции удаления.
func WithBatchSize(batchSize int) Option {
	return func(opts *Options) {
		opts.BatchSize = batchSize
	}
}

// Janitor периодически чистит истёкшие сессии и обновляет gauge активных сессий.
type Janitor struct {
	store     Counter
	expirer   Expirer
	logger    *log.Entry
	metrics   *metrics.StorefrontMetrics
	interval  time.Duration
	batchSize int
}

// NewJanitor создает Janitor. Если store реализует Expirer, истёкшие сессии удаляются.
func NewJanitor(store Counter, options ...Option) *Janitor {
	opts := Options{
		Interval:  defaultInterval,
		BatchSize: defaultBatchSize,
	}
	for _, option := range options {
		option(&opts)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.WithField("component", "session-janitor")
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}

	j := &Janitor{
		store:     store,
		logger:    logger,
		metrics:   opts.Metrics,
		interval:  opts.Interval,
		batchSize: opts.BatchSize,
	}
	if expirer, ok := store.(Expirer); ok {
		j.expirer = expirer
	}
	return j
}

// Run выполняет прогоны до отмены ctx.
func (j *Janitor) Run(ctx context.Context) {
	if j.store == nil {
		j.logger.Warn("session janitor is disabled: store is nil")
		return
	}

	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	deleted, err := j.Sweep(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		j.metrics.RecordSessionSweep(metrics.OutcomeError)
		j.logger.WithError(err).Warn("session sweep failed")
		return
	}

	j.metrics.RecordSessionSweep(metrics.OutcomeSuccess)
	if deleted > 0 {
		j.logger.WithField("deleted", deleted).Info("expired sessions removed")
	}
}

// Sweep удаляет истёкшие сессии порциями batchSize и обновляет gauge.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	total := 0
	if j.expirer != nil {
		for {
			if err := ctx.Err(); err != nil {
				return total, err
			}
			deleted, err := j.expirer.DeleteExpired(ctx, j.batchSize)
			if err != nil {
				return total, err
			}
			total += deleted
			j.metrics.RecordSessionsExpired(deleted)
			if deleted < j.batchSize {
				break
			}
		}
	}

	n, err := j.store.Count(ctx)
	if err != nil {
		return total, err
	}
	j.metrics.SetActiveSessions(n)
	return total, nil
}

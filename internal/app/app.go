package app

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	healthcheck "github.com/vladislavdragonenkov/lessonshop/internal/health"
	"github.com/vladislavdragonenkov/lessonshop/internal/httpapi"
	"github.com/vladislavdragonenkov/lessonshop/internal/metrics"
	"github.com/vladislavdragonenkov/lessonshop/internal/service/sessions"
	"github.com/vladislavdragonenkov/lessonshop/internal/version"
)

const shutdownTimeout = 5 * time.Second

// Run поднимает API витрины, сервер метрик и фоновую очистку сессий
// и работает до отмены ctx.
func Run(ctx context.Context, cfg Config) error {
	logger := log.WithField("component", "app")

	shutdownTracing, err := initTracing(cfg.Tracing, os.Stderr, logger)
	if err != nil {
		return err
	}
	defer func() {
		tctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(tctx); err != nil {
			logger.WithError(err).Warn("failed to flush traces")
		}
	}()

	m := metrics.NewStorefrontMetrics()
	deps, err := NewDependencies(ctx, cfg, m, logger)
	if err != nil {
		return err
	}
	defer deps.Close()

	healthHandler := newHealthHandler(deps)
	metricsSrv := startMetricsServer(ctx, cfg.MetricsAddr, logger, healthHandler)

	janitor := sessions.NewJanitor(deps.Sessions,
		sessions.WithLogger(logger.WithField("component", "session-janitor")),
		sessions.WithMetrics(m),
		sessions.WithInterval(cfg.SessionSweepInterval),
		sessions.WithBatchSize(cfg.SessionSweepBatch),
	)
	go janitor.Run(ctx)

	lis, err := net.Listen("tcp", cfg.HTTPAddr)
	if err != nil {
		shutdownHTTP(metricsSrv, logger)
		return err
	}

	api := httpapi.NewServer(deps.Service, deps.Sessions, logger.WithField("component", "httpapi"),
		httpapi.WithSessionTTL(cfg.SessionTTL),
	)
	apiSrv := &http.Server{
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.WithFields(log.Fields{
			"addr":        lis.Addr().String(),
			"backend":     cfg.BackendURL,
			"search_mode": cfg.SearchMode,
			"sessions":    cfg.SessionStore,
			"kafka":       deps.KafkaEnabled(),
		}).Info("storefront API listening")
		errCh <- apiSrv.Serve(lis)
	}()

	select {
	case <-ctx.Done():
		logger.Info("получен сигнал остановки, останавливаем HTTP сервер")
		shutdownHTTP(apiSrv, logger)
		shutdownHTTP(metricsSrv, logger)
		return ctx.Err()
	case err := <-errCh:
		shutdownHTTP(metricsSrv, logger)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func newHealthHandler(deps *Dependencies) *healthcheck.Handler {
	h := healthcheck.NewHandler(version.GetVersion())
	h.RegisterChecker("backend", healthcheck.NewPingChecker("backend", deps.Backend.Ping))
	h.RegisterChecker("sessions", healthcheck.NewPingChecker("sessions", deps.Sessions.Ping))
	return h
}

// startMetricsServer запускает HTTP-обработчик /metrics и health-пробы.
func startMetricsServer(ctx context.Context, addr string, logger *log.Entry, healthHandler *healthcheck.Handler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", healthHandler)
	mux.HandleFunc("/livez", healthcheck.LivenessHandler)
	mux.HandleFunc("/readyz", healthHandler.ReadinessHandler)

	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Infof("метрики доступны по адресу %s/metrics", addr)
		logger.Infof("health checks: %s/healthz, %s/livez, %s/readyz", addr, addr, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Warn("metrics server failed")
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownHTTP(srv, logger)
	}()

	return srv
}

// shutdownHTTP аккуратно останавливает HTTP-сервер.
func shutdownHTTP(srv *http.Server, logger *log.Entry) {
	if srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Warn("http shutdown with error")
	}
}

// Command lesson-backend запускает локальный бэкенд каталога занятий
// (GET /data, GET /search, POST /order, PUT /update/<id>) для разработки витрины.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/lessonshop/internal/service/backendmock"
)

const (
	envAddr     = "LESSON_BACKEND_ADDR"
	defaultAddr = ":8081"
)

func listenAddr(lookup func(string) (string, bool)) string {
	if v, ok := lookup(envAddr); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return defaultAddr
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	log.SetLevel(log.InfoLevel)
	logger := log.WithField("component", "lesson-backend")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	mock := backendmock.NewServer(nil, logger)
	srv := &http.Server{
		Addr:              listenAddr(os.LookupEnv),
		Handler:           mock.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.WithError(err).Warn("http shutdown with error")
		}
	}()

	logger.WithFields(log.Fields{
		"addr":    srv.Addr,
		"lessons": len(mock.Lessons()),
	}).Info("lesson backend listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.WithError(err).Fatal("lesson backend failed")
	}
	logger.Info("lesson backend остановлен")
}

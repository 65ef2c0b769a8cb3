package app

import (
	"testing"
	"time"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.HTTPAddr != ":8080" {
		t.Errorf("expected HTTPAddr :8080, got %s", cfg.HTTPAddr)
	}
	if cfg.MetricsAddr != ":9090" {
		t.Errorf("expected MetricsAddr :9090, got %s", cfg.MetricsAddr)
	}
	if cfg.BackendURL != "http://localhost:8081" {
		t.Errorf("unexpected backend url %s", cfg.BackendURL)
	}
	if cfg.BackendTimeout != 10*time.Second {
		t.Errorf("unexpected backend timeout %s", cfg.BackendTimeout)
	}
	if cfg.SearchMode != domain.SearchModeBackend || cfg.OrderFormat != domain.OrderFormatQuantities {
		t.Errorf("unexpected modes: %s %s", cfg.SearchMode, cfg.OrderFormat)
	}
	if !cfg.PushCapacity {
		t.Error("capacity push should be on by default")
	}
	if cfg.SessionStore != StorageDriverMemory || cfg.SessionTTL != 48*time.Hour {
		t.Errorf("unexpected session defaults: %s %s", cfg.SessionStore, cfg.SessionTTL)
	}
	if cfg.KafkaBrokers != "" || cfg.Tracing {
		t.Error("kafka and tracing should be off by default")
	}
}

func TestStorageDriverValid(t *testing.T) {
	for _, d := range []StorageDriver{StorageDriverMemory, StorageDriverRedis, StorageDriverPostgres} {
		if !d.Valid() {
			t.Errorf("%s should be valid", d)
		}
	}
	if StorageDriver("mysql").Valid() {
		t.Error("mysql is not a session store")
	}
}

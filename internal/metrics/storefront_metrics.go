package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операций для label outcome.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// StorefrontMetrics содержит метрики витрины и клиента бэкенда.
type StorefrontMetrics struct {
	// Корзина
	cartLinesAdded   prometheus.Counter
	cartLinesRemoved prometheus.Counter
	cartAddRejected  *prometheus.CounterVec

	// Заказы
	ordersSubmitted  prometheus.Counter
	ordersFailed     *prometheus.CounterVec
	capacityPushFail prometheus.Counter

	// Каталог и бэкенд
	catalogLoads    *prometheus.CounterVec
	backendDuration *prometheus.HistogramVec

	activeSessions  prometheus.Gauge
	sessionsExpired prometheus.Counter
	sessionSweeps   *prometheus.CounterVec
}

// NewStorefrontMetrics регистрирует метрики в реестре по умолчанию.
func NewStorefrontMetrics() *StorefrontMetrics {
	return NewStorefrontMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewStorefrontMetricsWithRegisterer регистрирует метрики в переданном реестре.
// Повторная регистрация возвращает уже существующие коллекторы.
func NewStorefrontMetricsWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		cartLinesAdded: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessonshop_cart_lines_added_total",
			Help: "Total number of lesson places added to carts",
		}),
		cartLinesRemoved: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessonshop_cart_lines_removed_total",
			Help: "Total number of lesson places removed from carts",
		}),
		cartAddRejected: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "lessonshop_cart_add_rejected_total",
			Help: "Total number of rejected add-to-cart attempts by reason",
		}, []string{"reason"}),
		ordersSubmitted: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessonshop_orders_submitted_total",
			Help: "Total number of orders accepted by the lesson backend",
		}),
		ordersFailed: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "lessonshop_orders_failed_total",
			Help: "Total number of orders that were not accepted, by reason",
		}, []string{"reason"}),
		capacityPushFail: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessonshop_capacity_updates_failed_total",
			Help: "Total number of capacity updates rejected after an accepted order",
		}),
		catalogLoads: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "lessonshop_catalog_loads_total",
			Help: "Total number of catalog loads by source and outcome",
		}, []string{"source", "outcome"}),
		backendDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "lessonshop_backend_request_duration_seconds",
			Help:    "Duration of lesson backend requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		}, []string{"operation", "outcome"}),
		activeSessions: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "lessonshop_active_sessions",
			Help: "Number of shopper sessions currently held by the session store",
		}),
		sessionsExpired: registerCounter(registerer, prometheus.CounterOpts{
			Name: "lessonshop_sessions_expired_total",
			Help: "Total number of expired sessions removed by the janitor",
		}),
		sessionSweeps: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "lessonshop_session_sweeps_total",
			Help: "Total number of session janitor runs by outcome",
		}, []string{"outcome"}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerCounterVec(registerer prometheus.Registerer, opts prometheus.CounterOpts, labels []string) *prometheus.CounterVec {
	collector := prometheus.NewCounterVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.CounterVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter vec %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// Все методы безопасны для nil-получателя: метрики в тестах часто не нужны.

// RecordCartLineAdded увеличивает счётчик добавленных мест.
func (m *StorefrontMetrics) RecordCartLineAdded() {
	if m == nil {
		return
	}
	m.cartLinesAdded.Inc()
}

// RecordCartLineRemoved увеличивает счётчик убранных мест.
func (m *StorefrontMetrics) RecordCartLineRemoved() {
	if m == nil {
		return
	}
	m.cartLinesRemoved.Inc()
}

// RecordCartAddRejected считает отказ добавления по причине.
func (m *StorefrontMetrics) RecordCartAddRejected(reason string) {
	if m == nil {
		return
	}
	m.cartAddRejected.WithLabelValues(reason).Inc()
}

// RecordOrderSubmitted увеличивает счётчик принятых заказов.
func (m *StorefrontMetrics) RecordOrderSubmitted() {
	if m == nil {
		return
	}
	m.ordersSubmitted.Inc()
}

// RecordOrderFailed считает неудачное оформление по причине.
func (m *StorefrontMetrics) RecordOrderFailed(reason string) {
	if m == nil {
		return
	}
	m.ordersFailed.WithLabelValues(reason).Inc()
}

// RecordCapacityUpdateFailed считает неудачные PUT /update после заказа.
func (m *StorefrontMetrics) RecordCapacityUpdateFailed() {
	if m == nil {
		return
	}
	m.capacityPushFail.Inc()
}

// RecordCatalogLoad считает загрузку каталога.
func (m *StorefrontMetrics) RecordCatalogLoad(source, outcome string) {
	if m == nil {
		return
	}
	m.catalogLoads.WithLabelValues(source, outcome).Inc()
}

// RecordBackendRequest записывает длительность запроса к бэкенду.
func (m *StorefrontMetrics) RecordBackendRequest(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.backendDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
}

// SetActiveSessions выставляет текущее количество сессий.
func (m *StorefrontMetrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

// RecordSessionsExpired увеличивает счётчик удалённых истёкших сессий.
func (m *StorefrontMetrics) RecordSessionsExpired(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.sessionsExpired.Add(float64(n))
}

// RecordSessionSweep считает прогон очистки сессий.
func (m *StorefrontMetrics) RecordSessionSweep(outcome string) {
	if m == nil {
		return
	}
	m.sessionSweeps.WithLabelValues(outcome).Inc()
}

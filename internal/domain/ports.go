package domain

import (
	"context"
	"time"
)

// CatalogBackend описывает удалённый бэкенд занятий.
type CatalogBackend interface {
	// FetchLessons возвращает весь каталог (GET /data).
	FetchLessons(ctx context.Context) ([]Lesson, error)
	// SearchLessons возвращает занятия, найденные бэкендом (GET /search?query=).
	SearchLessons(ctx context.Context, query string) ([]Lesson, error)
	// SubmitOrder отправляет заказ (POST /order).
	SubmitOrder(ctx context.Context, order Order) error
	// UpdateSpaces записывает новое количество мест (PUT /update/<id>).
	UpdateSpaces(ctx context.Context, id LessonID, spaces int) error
}

// OrderEventType — тип события оформления заказа.
type OrderEventType string

const (
	OrderEventSubmitted OrderEventType = "order.submitted"
	OrderEventFailed    OrderEventType = "order.failed"
)

// OrderEvent — событие для внешних подписчиков (аудит, аналитика).
type OrderEvent struct {
	Type      OrderEventType
	SessionID string
	Lines     []OrderLine
	Total     float64
	Reason    string
	At        time.Time
}

// EventPublisher публикует события оформления заказа.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, event OrderEvent) error
}

// NoopPublisher используется, когда публикация событий не настроена.
type NoopPublisher struct{}

// PublishOrderEvent ничего не делает.
func (NoopPublisher) PublishOrderEvent(context.Context, OrderEvent) error { return nil }

var _ EventPublisher = NoopPublisher{}

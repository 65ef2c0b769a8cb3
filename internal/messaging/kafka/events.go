package kafka

import (
	"context"
	"time"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

// TopicOrderEvents — топик событий оформления заказов.
const TopicOrderEvents = "lessonshop.order.events"

// HeaderEventType дублирует тип события в заголовке, чтобы потребители могли
// фильтровать без разбора тела.
const HeaderEventType = "x-event-type"

// OrderLineMessage — строка заказа в сообщении.
type OrderLineMessage struct {
	LessonID string `json:"lesson_id"`
	Quantity int    `json:"quantity"`
}

// OrderEventMessage — тело сообщения о заказе.
type OrderEventMessage struct {
	EventType string             `json:"event_type"`
	SessionID string             `json:"session_id"`
	Lines     []OrderLineMessage `json:"lines"`
	Total     float64            `json:"total"`
	Reason    string             `json:"reason,omitempty"`
	Timestamp time.Time          `json:"timestamp"`
}

// NewOrderEventMessage переводит доменное событие в формат сообщения.
func NewOrderEventMessage(event domain.OrderEvent) OrderEventMessage {
	lines := make([]OrderLineMessage, 0, len(event.Lines))
	for _, line := range event.Lines {
		lines = append(lines, OrderLineMessage{LessonID: line.LessonID.String(), Quantity: line.Quantity})
	}
	ts := event.At
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	return OrderEventMessage{
		EventType: string(event.Type),
		SessionID: event.SessionID,
		Lines:     lines,
		Total:     event.Total,
		Reason:    event.Reason,
		Timestamp: ts,
	}
}

// OrderEventPublisher публикует события заказов в Kafka.
type OrderEventPublisher struct {
	producer *Producer
	topic    string
}

// NewOrderEventPublisher создаёт публикатор; пустой topic заменяется TopicOrderEvents.
func NewOrderEventPublisher(producer *Producer, topic string) *OrderEventPublisher {
	if topic == "" {
		topic = TopicOrderEvents
	}
	return &OrderEventPublisher{producer: producer, topic: topic}
}

// PublishOrderEvent отправляет событие с ключом по сессии, чтобы события
// одного покупателя попадали в одну партицию.
func (p *OrderEventPublisher) PublishOrderEvent(ctx context.Context, event domain.OrderEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return p.producer.Publish(p.topic, event.SessionID, NewOrderEventMessage(event), map[string]string{
		HeaderEventType: string(event.Type),
	})
}

var _ domain.EventPublisher = (*OrderEventPublisher)(nil)

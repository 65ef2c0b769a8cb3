package kafka

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"

	"github.com/vladislavdragonenkov/lessonshop/internal/domain"
)

func sampleEvent() domain.OrderEvent {
	return domain.OrderEvent{
		Type:      domain.OrderEventSubmitted,
		SessionID: "session-1",
		Lines: []domain.OrderLine{
			{LessonID: domain.NumericLessonID(1), Quantity: 2},
			{LessonID: domain.NewLessonID("65a1"), Quantity: 1},
		},
		Total: 280,
		At:    time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestProducer_Publish(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := WrapSyncProducer(mockProducer)

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != "topic-a" {
			t.Errorf("unexpected topic %q", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "key-1" {
			t.Errorf("unexpected key %q", key)
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Key) != "h" {
			t.Errorf("unexpected headers %+v", msg.Headers)
		}
		return nil
	})

	if err := producer.Publish("topic-a", "key-1", map[string]int{"a": 1}, map[string]string{"h": "v"}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := producer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Publish_Error(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := WrapSyncProducer(mockProducer)

	mockProducer.ExpectSendMessageAndFail(sarama.ErrOutOfBrokers)

	if err := producer.Publish("topic-a", "key-1", struct{}{}, nil); err == nil {
		t.Fatal("expected error, got nil")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestProducer_Publish_MarshalError(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	producer := WrapSyncProducer(mockProducer)

	if err := producer.Publish("topic-a", "key", make(chan int), nil); err == nil {
		t.Fatal("expected marshal error")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_PublishOrderEvent(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOrderEventPublisher(WrapSyncProducer(mockProducer), "")

	mockProducer.ExpectSendMessageWithMessageCheckerFunctionAndSucceed(func(msg *sarama.ProducerMessage) error {
		if msg.Topic != TopicOrderEvents {
			t.Errorf("unexpected topic %q", msg.Topic)
		}
		key, _ := msg.Key.Encode()
		if string(key) != "session-1" {
			t.Errorf("unexpected key %q", key)
		}
		if len(msg.Headers) != 1 || string(msg.Headers[0].Value) != string(domain.OrderEventSubmitted) {
			t.Errorf("unexpected headers %+v", msg.Headers)
		}

		raw, _ := msg.Value.Encode()
		var body OrderEventMessage
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Errorf("decode body: %v", err)
			return nil
		}
		if body.EventType != "order.submitted" || body.Total != 280 || len(body.Lines) != 2 {
			t.Errorf("unexpected body %+v", body)
		}
		if body.Lines[1].LessonID != "65a1" || body.Lines[0].Quantity != 2 {
			t.Errorf("unexpected lines %+v", body.Lines)
		}
		return nil
	})

	if err := publisher.PublishOrderEvent(context.Background(), sampleEvent()); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestOrderEventPublisher_CanceledContext(t *testing.T) {
	mockProducer := mocks.NewSyncProducer(t, nil)
	publisher := NewOrderEventPublisher(WrapSyncProducer(mockProducer), "custom")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := publisher.PublishOrderEvent(ctx, sampleEvent()); err == nil {
		t.Fatal("expected context error")
	}
	if err := mockProducer.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestNewOrderEventMessage_FailedEvent(t *testing.T) {
	event := sampleEvent()
	event.Type = domain.OrderEventFailed
	event.Reason = "submit_order: status 500"
	event.At = time.Time{}

	msg := NewOrderEventMessage(event)
	if msg.EventType != "order.failed" {
		t.Fatalf("unexpected type %q", msg.EventType)
	}
	if msg.Reason == "" {
		t.Fatal("expected reason to be kept")
	}
	if msg.Timestamp.IsZero() {
		t.Fatal("expected timestamp to be filled")
	}
}

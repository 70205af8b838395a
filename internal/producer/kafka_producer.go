package producer

import (
	"context"
	"encoding/json"
	"time"

	"storefront-service/internal/service"

	"github.com/segmentio/kafka-go"
)

// OrderProducer публикует события жизненного цикла заказа в Kafka.
// Реализует service.EventBus.
type OrderProducer struct {
	writer *kafka.Writer
}

func NewOrderProducer(brokers []string, topic string) *OrderProducer {
	return &OrderProducer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireAll,
		},
	}
}

type envelope struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

func (p *OrderProducer) publish(ctx context.Context, key string, env envelope) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	value, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key),
		Value: value,
	})
}

func (p *OrderProducer) PublishOrderCreated(ctx context.Context, e service.OrderCreatedEvent) error {
	return p.publish(ctx, e.OrderID.String(), envelope{Type: "order.created", Payload: e})
}

func (p *OrderProducer) PublishOrderCancelled(ctx context.Context, e service.OrderCancelledEvent) error {
	return p.publish(ctx, e.OrderID.String(), envelope{Type: "order.cancelled", Payload: e})
}

func (p *OrderProducer) Close() error {
	return p.writer.Close()
}

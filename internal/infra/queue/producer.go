package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadbridge/internal/usecase"
)

// Publisher is the part of *amqp.Channel the producer needs.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// RabbitMQProducer forwards store change events to the topic exchange so
// other instances can refresh. It implements usecase.EventPublisher.
type RabbitMQProducer struct {
	Ch     Publisher
	Origin string
}

func NewProducer(ch Publisher, origin string) *RabbitMQProducer {
	return &RabbitMQProducer{
		Ch:     ch,
		Origin: origin,
	}
}

func (p *RabbitMQProducer) Publish(ctx context.Context, event usecase.ChangeEvent) error {
	// Evento repassado mantém a origem de quem o gerou
	if event.Origin == "" {
		event.Origin = p.Origin
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,       // ex.leadbridge
		string(event.Type), // e.g. lead.created
		false,              // Mandatory
		false,              // Immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			AppId:        event.Origin,
			Timestamp:    event.At,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}

	return nil
}

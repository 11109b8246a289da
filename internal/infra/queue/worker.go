package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/xavierca1/leadbridge/internal/usecase"
)

// Consumer é a parte do *amqp.Channel que o Worker usa (facilita o mock nos testes)
type Consumer interface {
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
}

// EventHandler reage a uma mudança feita por outra instância
type EventHandler func(ctx context.Context, event usecase.ChangeEvent) error

// Worker consome os eventos de mudança e repassa ao Handler os que vieram de outra instância
type Worker struct {
	Channel Consumer
	Origin  string
	Handler EventHandler
	Logger  *slog.Logger
}

func NewWorker(ch Consumer, origin string, handler EventHandler, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{
		Channel: ch,
		Origin:  origin,
		Handler: handler,
		Logger:  logger,
	}
}

// Start consome queueName até o ctx acabar ou o canal fechar
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		w.Origin,  // consumer
		false,     // auto-ack (manual, para poder dar Nack)
		false,     // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.Logger.Info(" [*] [WORKER] aguardando eventos na fila", "queue", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				w.Logger.Warn("⚠️ [WORKER] canal fechado, encerrando", "queue", queueName)
				return nil
			}
			w.handleDelivery(ctx, d)
		}
	}
}

func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) {
	var event usecase.ChangeEvent
	if err := json.Unmarshal(d.Body, &event); err != nil || event.Type == "" {
		w.Logger.Warn("❌ [WORKER] evento inválido", "routing_key", d.RoutingKey, "error", err)
		// Mensagem podre: rejeita sem requeue (vai pra DLQ) para não travar a fila
		d.Nack(false, false)
		return
	}

	// Evento nosso voltando pela exchange, já foi aplicado aqui
	if event.Origin == w.Origin {
		d.Ack(false)
		return
	}

	if err := w.Handler(ctx, event); err != nil {
		w.Logger.Error("❌ [WORKER] erro ao aplicar mudança remota", "type", event.Type, "origin", event.Origin, "error", err)
		// Retentativa: uma vez só. Na segunda falha vai pra DLQ
		d.Nack(false, !d.Redelivered)
		return
	}

	w.Logger.Debug("✅ [WORKER] mudança remota aplicada", "type", event.Type, "origin", event.Origin)
	d.Ack(false)
}

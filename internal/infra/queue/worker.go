package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// WelcomeSender notifies a new customer.
type WelcomeSender interface {
	SendWelcome(to, name, contractName string) error
}

type Worker struct {
	Channel *amqp.Channel
	Mailer  WelcomeSender
	logger  *zap.Logger
}

func NewWorker(ch *amqp.Channel, mailer WelcomeSender, logger *zap.Logger) *Worker {
	return &Worker{Channel: ch, Mailer: mailer, logger: logger}
}

// Start consumes queueName until ctx is done or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.ConsumeWithContext(ctx,
		queueName,
		"crm-welcome",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	w.logger.Info("worker waiting for messages", zap.String("queue", queueName))
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return nil
			}
			w.handle(d)
		}
	}
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

func (w *Worker) handle(d amqp.Delivery) {
	w.process(d.Body, &d)
}

// process acks on success. Malformed or undeliverable messages are nacked
// without requeue and end up in the dead letter queue.
func (w *Worker) process(body []byte, ack acknowledger) {
	var payload CustomerConvertedPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		w.logger.Error("invalid message", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	log := w.logger.With(zap.String("customer_id", payload.CustomerID))
	if payload.Email == "" {
		log.Warn("customer has no email, skipping welcome")
		_ = ack.Ack(false)
		return
	}

	name := payload.FirstName
	if payload.LastName != "" {
		name += " " + payload.LastName
	}
	if err := w.Mailer.SendWelcome(payload.Email, name, payload.ContractName); err != nil {
		log.Error("failed to send welcome email", zap.Error(err))
		_ = ack.Nack(false, false)
		return
	}

	log.Info("welcome email sent", zap.String("origin", payload.Origin))
	_ = ack.Ack(false)
}

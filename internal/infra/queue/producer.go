package queue

import (
	"context"
	"encoding/json"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// CustomerConvertedPayload is published once a lead became a customer.
type CustomerConvertedPayload struct {
	CustomerID string `json:"customer_id"`
	LeadID     string `json:"lead_id"`
	ContractID string `json:"contract_id"`
	Origin     string `json:"origin"` // "create" or "convert"

	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Email     string  `json:"email"`
	Phone     string  `json:"phone"`
	AdsID     *string `json:"ads_id,omitempty"`

	ContractName string `json:"contract_name"`
	Cost         string `json:"cost"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

type publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

type RabbitMQProducer struct {
	Ch publisher
}

func NewProducer(ch *amqp.Channel) *RabbitMQProducer {
	return &RabbitMQProducer{Ch: ch}
}

func (p *RabbitMQProducer) PublishCustomerConverted(ctx context.Context, payload CustomerConvertedPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			MessageId:    payload.CustomerID,
			Type:         "customer.converted",
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to rabbitmq: %w", err)
	}
	return nil
}

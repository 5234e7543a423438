package events

import (
	"context"
	"telehealth-service/internal/app/contracts"
	"telehealth-service/internal/pkg/constvars"
	"telehealth-service/internal/pkg/exceptions"

	"github.com/goccy/go-json"
	"github.com/rabbitmq/amqp091-go"
)

// channel is the subset of *amqp091.Channel the publisher needs.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp091.Publishing) error
}

type rabbitMQPublisher struct {
	Channel  channel
	Exchange string
}

// NewRabbitMQPublisher opens a channel and declares a durable topic exchange.
func NewRabbitMQPublisher(conn *amqp091.Connection, exchange string) (contracts.EventPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(exchange, amqp091.ExchangeTopic, true, false, false, false, nil)
	if err != nil {
		ch.Close()
		return nil, err
	}
	return &rabbitMQPublisher{Channel: ch, Exchange: exchange}, nil
}

func (p *rabbitMQPublisher) Publish(ctx context.Context, routingKey string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return exceptions.ErrCannotMarshalJSON(err)
	}

	message := amqp091.Publishing{
		ContentType:  constvars.MIMEApplicationJSON,
		Body:         body,
		DeliveryMode: amqp091.Persistent,
		Headers: amqp091.Table{
			"message_type": "JSON",
		},
	}

	err = p.Channel.PublishWithContext(ctx, p.Exchange, routingKey, false, false, message)
	if err != nil {
		return exceptions.ErrRabbitMQPublishMessage(err, p.Exchange)
	}
	return nil
}

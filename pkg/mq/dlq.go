package mq

import (
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

const (
	DLQExchangeName = "habit.events.dlq"
)

// DeclareDLQExchange declares the dead letter exchange.
func DeclareDLQExchange(ch *amqp091.Channel) error {
	return ch.ExchangeDeclare(
		DLQExchangeName,
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

// DeclareDLQQueue declares a dead letter queue bound to the given pattern.
func DeclareDLQQueue(ch *amqp091.Channel, name, bindingKey string) (amqp091.Queue, error) {
	queueName := fmt.Sprintf("%s.dlq", name)

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	// Bind queue to DLQ exchange
	err = ch.QueueBind(
		q.Name,
		bindingKey,
		DLQExchangeName,
		false,
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}

	return q, nil
}

// SetupDLQ declares the DLQ exchange and a queue bound to the given pattern
// on the publisher's channel.
func (p *Publisher) SetupDLQ(name, bindingKey string) error {
	if err := DeclareDLQExchange(p.channel); err != nil {
		return err
	}
	_, err := DeclareDLQQueue(p.channel, name, bindingKey)
	return err
}

// PublishToDLQ publishes a message to the dead letter queue.
func (p *Publisher) PublishToDLQ(routingKey string, payload []byte, originalError string) error {
	// Add error information to message headers
	headers := amqp091.Table{
		"x-original-error": originalError,
		"x-failed-at":      "activity-worker",
	}

	return p.channel.Publish(
		DLQExchangeName,
		routingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  "application/json",
			Body:         payload,
			DeliveryMode: amqp091.Persistent,
			Headers:      headers,
		},
	)
}

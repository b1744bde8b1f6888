package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// MessageHandler receives the routing key, message ID and raw body of one delivery.
// The message ID is stable across redeliveries, so handlers can use it for dedup.
type MessageHandler func(ctx context.Context, routingKey, messageID string, data json.RawMessage) error

type Consumer struct {
	conn       *amqp091.Connection
	channel    *amqp091.Channel
	queue      amqp091.Queue
	routingKey string
	handler    MessageHandler
	logger     *zap.Logger
}

// NewConsumer creates a consumer bound to a routing key pattern on the events exchange.
func NewConsumer(url, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := DeclareExchange(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	q, err := ch.QueueDeclare(
		queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	if err := ch.QueueBind(
		q.Name,
		routingKey,
		ExchangeName,
		false,
		nil,
	); err != nil {
		return nil, fmt.Errorf("failed to bind queue: %w", err)
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", ExchangeName),
	)

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		routingKey: routingKey,
		logger:     logger,
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// IsConnected reports whether the underlying connection is still alive.
func (c *Consumer) IsConnected() bool {
	if c.conn == nil || c.channel == nil {
		return false
	}
	return !c.conn.IsClosed()
}

// StartConsuming starts consuming messages. This method blocks and should be called in a goroutine.
func (c *Consumer) StartConsuming() error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"worker",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	// 保证每条消息都会被 ack 或 nack
	for msg := range deliveries {
		func() {
			ctx := context.Background()

			c.logger.Debug("Received message",
				zap.String("routing_key", msg.RoutingKey),
				zap.String("queue", c.queue.Name),
				zap.Int("message_size", len(msg.Body)),
			)

			// Panic 恢复：确保即使 handler panic 也能正确处理消息
			defer func() {
				if r := recover(); r != nil {
					c.logger.Error("Handler panic recovered",
						zap.String("routing_key", msg.RoutingKey),
						zap.Any("panic", r),
					)
					if err := msg.Nack(false, true); err != nil {
						c.logger.Error("Failed to nack message after panic", zap.Error(err))
					}
				}
			}()

			if err := c.handler(ctx, msg.RoutingKey, msg.MessageId, msg.Body); err != nil {
				c.logger.Error("Handler error",
					zap.String("routing_key", msg.RoutingKey),
					zap.String("queue", c.queue.Name),
					zap.Error(err),
				)
				// 业务失败 → 拒绝消息并重新入队，让 MQ 重试
				if err := msg.Nack(false, true); err != nil {
					c.logger.Error("Failed to nack message", zap.Error(err))
				}
				return
			}

			if err := msg.Ack(false); err != nil {
				c.logger.Error("Failed to ack message",
					zap.String("routing_key", msg.RoutingKey),
					zap.Error(err),
				)
			}
		}()
	}

	return nil
}

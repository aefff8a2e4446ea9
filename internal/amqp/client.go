// Package amqp publishes invoice lifecycle events to RabbitMQ. The
// publisher is optional infrastructure: writes to the store succeed even
// when no broker is configured or a publish fails.
package amqp

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	applog "faturas/internal/log"
)

type Client struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
}

func NewClient(url, exchangeName, queueName string) (*Client, error) {
	conn, err := amqp091.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial AMQP: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	client := &Client{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
	}

	if err := client.setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("setup exchange and queue: %w", err)
	}

	return client, nil
}

func (c *Client) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName, // name
		"direct",       // type
		true,           // durable
		false,          // auto-deleted
		false,          // internal
		false,          // no-wait
		nil,            // arguments
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName, // name
		true,        // durable
		false,       // delete when unused
		false,       // exclusive
		false,       // no-wait
		nil,         // arguments
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,    // queue name
		c.queueName,    // routing key (same as queue name for direct exchange)
		c.exchangeName, // exchange
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// PublishInvoiceEvent publishes a persistent lifecycle event for the
// given invoice id.
func (c *Client) PublishInvoiceEvent(ctx context.Context, id int64, action string) error {
	msg := NewInvoiceEventMessage(id, action)
	body, err := msg.ToJSON()
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = c.channel.PublishWithContext(
		ctx,
		c.exchangeName, // exchange
		c.queueName,    // routing key
		false,          // mandatory
		false,          // immediate
		amqp091.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp091.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("publish message: %w", err)
	}

	slog.InfoContext(ctx, "Published invoice event",
		applog.FieldInvoiceID, id,
		applog.FieldAction, action,
		"exchange", c.exchangeName,
		"queue", c.queueName)

	return nil
}

// ConsumeInvoiceEvents delivers invoice events to handler until the
// context is canceled. Malformed messages are rejected without requeue;
// a handler error requeues the delivery once, then discards it on the
// redelivered attempt so a poisoned event cannot spin the consumer.
func (c *Client) ConsumeInvoiceEvents(ctx context.Context, handler func(*InvoiceEventMessage) error) error {
	msgs, err := c.channel.Consume(
		c.queueName, // queue
		"",          // consumer
		false,       // auto-ack (we want manual ack)
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	slog.InfoContext(ctx, "Started consuming invoice events", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping event consumption", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-msgs:
			if !ok {
				return fmt.Errorf("message channel closed")
			}

			switch disposition, err := dispositionFor(delivery.Body, delivery.Redelivered, handler); disposition {
			case ackDelivery:
				delivery.Ack(false)
			case requeueDelivery:
				slog.ErrorContext(ctx, "Failed to handle event, requeueing",
					applog.FieldError, err)
				delivery.Nack(false, true)
			case discardDelivery:
				slog.ErrorContext(ctx, "Discarding event",
					applog.FieldError, err)
				delivery.Nack(false, false)
			}
		}
	}
}

type deliveryDisposition int

const (
	ackDelivery deliveryDisposition = iota
	requeueDelivery
	discardDelivery
)

// dispositionFor decides the fate of a delivery. Malformed bodies are
// never worth retrying; handler failures get exactly one redelivery.
func dispositionFor(body []byte, redelivered bool, handler func(*InvoiceEventMessage) error) (deliveryDisposition, error) {
	msg, err := InvoiceEventMessageFromJSON(body)
	if err != nil {
		return discardDelivery, fmt.Errorf("unmarshal event: %w", err)
	}

	if err := handler(msg); err != nil {
		if redelivered {
			return discardDelivery, fmt.Errorf("handle event %d (%s) after redelivery: %w", msg.ID, msg.Action, err)
		}
		return requeueDelivery, fmt.Errorf("handle event %d (%s): %w", msg.ID, msg.Action, err)
	}

	return ackDelivery, nil
}

func (c *Client) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/streadway/amqp"
	"go.uber.org/zap"
)

const (
	// OrderExchange is the topic exchange order events are published to.
	OrderExchange = "orders"
	// OrderQueue receives every order event.
	OrderQueue = "order_queue"
	orderBinding = "order.#"
)

// Client holds the RabbitMQ connection and channel.
type Client struct {
	conn    *amqp.Connection
	channel *amqp.Channel
	mu      sync.Mutex // guards channel publishes
	logger  *zap.Logger
}

// Config holds RabbitMQ connection details.
type Config struct {
	URL string
}

// NewClient creates a new RabbitMQ client.
// It connects to RabbitMQ, declares the order exchange and binds the order queue to it.
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	conn, err := amqp.Dial(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close() // Close connection if channel creation fails
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if err := declareTopology(ch); err != nil {
		ch.Close()
		conn.Close()
		return nil, err
	}

	logger.Info("rabbitmq client connected", zap.String("exchange", OrderExchange), zap.String("queue", OrderQueue))

	return &Client{
		conn:    conn,
		channel: ch,
		logger:  logger,
	}, nil
}

func declareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(
		OrderExchange, // name
		"topic",       // kind
		true,          // durable
		false,         // auto-deleted
		false,         // internal
		false,         // no-wait
		nil,           // arguments
	); err != nil {
		return fmt.Errorf("failed to declare %s exchange: %w", OrderExchange, err)
	}
	if _, err := ch.QueueDeclare(
		OrderQueue, // name
		true,       // durable (persists messages across broker restarts)
		false,      // delete when unused
		false,      // exclusive
		false,      // no-wait
		nil,        // arguments
	); err != nil {
		return fmt.Errorf("failed to declare %s: %w", OrderQueue, err)
	}
	if err := ch.QueueBind(OrderQueue, orderBinding, OrderExchange, false, nil); err != nil {
		return fmt.Errorf("failed to bind %s: %w", OrderQueue, err)
	}
	return nil
}

// Close closes the RabbitMQ connection and channel.
func (c *Client) Close() error {
	var errs []error
	if c.channel != nil {
		if err := c.channel.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close channel: %w", err))
		}
	}
	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close connection: %w", err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred during RabbitMQ client close: %v", errs)
	}
	return nil
}

// PublishOrderEvent publishes payload as JSON to the order exchange under routingKey.
func (c *Client) PublishOrderEvent(routingKey string, payload interface{}) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available")
	}

	msg, err := newPublishing(routingKey, payload, time.Now())
	if err != nil {
		return err
	}

	c.mu.Lock()
	err = c.channel.Publish(
		OrderExchange, // exchange
		routingKey,    // routing key
		false,         // mandatory
		false,         // immediate
		msg)
	c.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to publish message: %w", err)
	}

	c.logger.Debug("order event sent", zap.String("routing_key", routingKey), zap.Int("bytes", len(msg.Body)))
	return nil
}

func newPublishing(routingKey string, payload interface{}, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("failed to marshal %s event to JSON: %w", routingKey, err)
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		Type:         routingKey,
		Body:         body,
		DeliveryMode: amqp.Persistent, // Make message persistent
		Timestamp:    now,
	}, nil
}

// ConsumeOrderEvents delivers messages from the order queue to messageHandler
// until ctx is cancelled or the channel closes. Handled messages are acked;
// failed ones are nacked without requeue so a poison message cannot loop.
func (c *Client) ConsumeOrderEvents(ctx context.Context, messageHandler func(msg amqp.Delivery) error) error {
	if c.channel == nil {
		return fmt.Errorf("RabbitMQ channel is not available for consumption")
	}

	msgs, err := c.channel.Consume(
		OrderQueue, // queue
		"",         // consumer tag
		false,      // auto-ack: set to false to manually acknowledge messages
		false,      // exclusive
		false,      // no-local
		false,      // no-wait
		nil,        // args
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("waiting for order events", zap.String("queue", OrderQueue))
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				return fmt.Errorf("order event delivery channel closed")
			}
			c.dispatch(msg, messageHandler)
		}
	}
}

func (c *Client) dispatch(msg amqp.Delivery, messageHandler func(msg amqp.Delivery) error) {
	if err := messageHandler(msg); err != nil {
		c.logger.Error("error processing order event",
			zap.Uint64("delivery_tag", msg.DeliveryTag), zap.String("type", msg.Type), zap.Error(err))
		if nackErr := msg.Nack(false, false); nackErr != nil {
			c.logger.Error("error nacking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(nackErr))
		}
		return
	}
	if ackErr := msg.Ack(false); ackErr != nil {
		c.logger.Error("error acking message", zap.Uint64("delivery_tag", msg.DeliveryTag), zap.Error(ackErr))
	}
}

// LogOrderEvent returns a handler that records each order event in the log.
func LogOrderEvent(logger *zap.Logger) func(msg amqp.Delivery) error {
	return func(msg amqp.Delivery) error {
		var event map[string]interface{}
		if err := json.Unmarshal(msg.Body, &event); err != nil {
			return fmt.Errorf("malformed order event: %w", err)
		}
		logger.Info("order event received",
			zap.String("type", msg.Type),
			zap.Any("order_id", event["orderId"]),
			zap.Any("status", event["status"]),
			zap.Any("reference", event["reference"]))
		return nil
	}
}

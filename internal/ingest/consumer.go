package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/rabbitmq/amqp091-go"

	"github.com/zeronote/zeronote/internal/common"
	"github.com/zeronote/zeronote/internal/ledger"
	"github.com/zeronote/zeronote/internal/model"
)

// FeedService creates ledger records from feed requests, skipping
// external ids that were already ingested.
type FeedService interface {
	CreateFromFeed(ctx context.Context, req ledger.Request) (model.Transaction, bool, error)
}

// Consumer reads feed messages from a durable queue.
type Consumer struct {
	conn         *amqp091.Connection
	channel      *amqp091.Channel
	exchangeName string
	queueName    string
	service      FeedService
	logger       *slog.Logger
}

// NewConsumer dials the broker and declares the exchange, queue, and
// binding. The dial retries with backoff so the process survives the
// broker starting up after it.
func NewConsumer(ctx context.Context, url, exchangeName, queueName string, service FeedService, logger *slog.Logger) (*Consumer, error) {
	var conn *amqp091.Connection
	err := common.WithRetry(ctx, func() error {
		var dialErr error
		conn, dialErr = amqp091.Dial(url)
		if dialErr != nil {
			return classifyDialError(url, dialErr)
		}
		return nil
	}, common.RetryOptions{
		MaxAttempts:  5,
		InitialDelay: time.Second,
		MaxDelay:     15 * time.Second,
		Multiplier:   2,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to dial broker: %w", err)
	}

	channel, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	consumer := &Consumer{
		conn:         conn,
		channel:      channel,
		exchangeName: exchangeName,
		queueName:    queueName,
		service:      service,
		logger:       logger,
	}

	if err := consumer.setup(); err != nil {
		consumer.Close()
		return nil, fmt.Errorf("failed to declare topology: %w", err)
	}

	return consumer, nil
}

// classifyDialError marks dial failures retryable unless the URL itself
// is malformed, in which case no amount of retrying will connect.
func classifyDialError(url string, err error) error {
	if _, uriErr := amqp091.ParseURI(url); uriErr != nil {
		return &common.RetryableError{Err: err, Retryable: false}
	}
	return &common.RetryableError{Err: err, Retryable: true}
}

func (c *Consumer) setup() error {
	err := c.channel.ExchangeDeclare(
		c.exchangeName,
		"direct",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare exchange: %w", err)
	}

	_, err = c.channel.QueueDeclare(
		c.queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	err = c.channel.QueueBind(
		c.queueName,
		c.queueName, // routing key mirrors the queue name on a direct exchange
		c.exchangeName,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("bind queue: %w", err)
	}

	return nil
}

// Run consumes until the context is canceled. Malformed messages are
// rejected without requeue; transient failures requeue for another try.
func (c *Consumer) Run(ctx context.Context) error {
	deliveries, err := c.channel.Consume(
		c.queueName,
		"",    // consumer tag
		false, // manual ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	c.logger.Info("consuming feed messages", "queue", c.queueName)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("stopping feed consumer", "reason", ctx.Err())
			return ctx.Err()
		case delivery, ok := <-deliveries:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp091.Delivery) {
	msg, err := FeedMessageFromJSON(delivery.Body)
	if err != nil {
		c.logger.Error("failed to parse feed message", "error", err)
		delivery.Nack(false, false)
		return
	}

	req, err := msg.ToRequest()
	if err != nil {
		c.logger.Error("rejecting unusable feed message",
			"error", err,
			"external_id", msg.ExternalID)
		delivery.Nack(false, false)
		return
	}

	txn, created, err := c.service.CreateFromFeed(ctx, req)
	if err != nil {
		c.logger.Error("failed to ingest feed message",
			"error", err,
			"external_id", msg.ExternalID)
		delivery.Nack(false, true)
		return
	}

	if created {
		c.logger.Info("feed transaction ingested",
			"id", txn.ID,
			"external_id", msg.ExternalID,
			"category", txn.Category)
	}
	delivery.Ack(false)
}

// Close releases the channel and connection.
func (c *Consumer) Close() error {
	if c.channel != nil {
		c.channel.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

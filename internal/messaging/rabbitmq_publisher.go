package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

const (
	publishTimeout = 10 * time.Second
	appID          = "scenario-admin"
)

type rabbitMQAuditPublisher struct {
	channel   *amqp.Channel
	queueName string
	logger    *zap.Logger
}

// NewRabbitMQAuditPublisher opens a channel on conn and declares a durable queue.
func NewRabbitMQAuditPublisher(conn *amqp.Connection, queueName string, logger *zap.Logger) (AuditPublisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("audit publisher: failed to open channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		ch.Close()
		return nil, fmt.Errorf("audit publisher: failed to declare queue '%s': %w", queueName, err)
	}

	logger.Info("RabbitMQ audit publisher initialized", zap.String("queue", queueName))
	return &rabbitMQAuditPublisher{
		channel:   ch,
		queueName: queueName,
		logger:    logger.Named("AuditPublisher"),
	}, nil
}

func (p *rabbitMQAuditPublisher) Publish(ctx context.Context, event AuditEvent) error {
	if p.channel == nil {
		return errors.New("rabbitmq channel is not initialized")
	}

	body, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("Failed to marshal audit event", zap.String("action", string(event.Action)), zap.Error(err))
		return fmt.Errorf("failed to prepare audit event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		"",          // default exchange
		p.queueName, // routing key
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    event.ID.String(),
			Type:         string(event.Action),
			Body:         body,
			Timestamp:    event.At,
			AppId:        appID,
		},
	)
	if err != nil {
		p.logger.Error("Failed to publish audit event",
			zap.String("queue", p.queueName),
			zap.String("action", string(event.Action)),
			zap.Error(err))
		return fmt.Errorf("failed to publish to queue %s: %w", p.queueName, err)
	}

	p.logger.Debug("Audit event published",
		zap.String("queue", p.queueName),
		zap.String("action", string(event.Action)),
		zap.String("eventID", event.ID.String()),
	)
	return nil
}

func (p *rabbitMQAuditPublisher) Close() error {
	if p.channel != nil {
		p.logger.Info("Closing audit publisher channel")
		return p.channel.Close()
	}
	return nil
}

// ConnectRabbitMQ dials the broker, retrying a few times while it starts up.
func ConnectRabbitMQ(uri string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*amqp.Connection, error) {
	var connection *amqp.Connection
	var err error

	for i := 0; i < maxRetries; i++ {
		connection, err = amqp.Dial(uri)
		if err == nil {
			logger.Info("Connected to RabbitMQ")
			go func() {
				notifyClose := make(chan *amqp.Error, 1)
				connection.NotifyClose(notifyClose)
				if closeErr := <-notifyClose; closeErr != nil {
					logger.Error("RabbitMQ connection lost", zap.Error(closeErr))
				}
			}()
			return connection, nil
		}
		logger.Warn("Failed to connect to RabbitMQ, retrying...",
			zap.Error(err),
			zap.Int("retry", i+1),
			zap.Duration("delay", retryDelay),
		)
		time.Sleep(retryDelay)
	}
	return nil, fmt.Errorf("failed to connect to RabbitMQ after %d attempts: %w", maxRetries, err)
}

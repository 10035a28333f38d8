package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	q "github.com/iliyamo/patient-dashboard-api/internal/queue"
)

// RabbitPublisher publishes lab-report events to a durable RabbitMQ queue.
// Each publish dials its own connection; uploads are rare enough that a
// long-lived channel is not worth the reconnect handling.
type RabbitPublisher struct {
	URL   string
	Queue string
}

// NewRabbitPublisher returns a publisher for url; an empty queue selects
// the default lab-report queue.
func NewRabbitPublisher(url, queue string) *RabbitPublisher {
	if queue == "" {
		queue = q.LabReportQueueName
	}
	return &RabbitPublisher{URL: url, Queue: queue}
}

// PublishLabReportProcessed sends the event as a persistent JSON message.
// Errors are logged and returned so the caller can choose to ignore them.
func (p *RabbitPublisher) PublishLabReportProcessed(ctx context.Context, event q.LabReportProcessedEvent) error {
	logger := log.With().Str("component", "rabbitmq").Str("queue", p.Queue).Logger()

	conn, err := amqp.DialConfig(p.URL, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      dialContext(ctx),
	})
	if err != nil {
		logger.Warn().Err(err).Msg("dial failed")
		return fmt.Errorf("dial broker: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		logger.Warn().Err(err).Msg("channel open failed")
		return fmt.Errorf("open channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.Queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		logger.Warn().Err(err).Msg("queue declare failed")
		return fmt.Errorf("declare queue: %w", err)
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	}
	if err := ch.PublishWithContext(ctx, "", p.Queue, false, false, pub); err != nil {
		logger.Warn().Err(err).Msg("publish failed")
		return fmt.Errorf("publish: %w", err)
	}
	return nil
}

// defaultDialTimeout bounds the TCP and AMQP handshake when ctx has no
// deadline of its own.
const defaultDialTimeout = 30 * time.Second

// dialContext returns an amqp dialer whose TCP connect and AMQP handshake are
// bounded by ctx.  amqp091 clears the connection deadline once the handshake
// completes.
func dialContext(ctx context.Context) func(network, addr string) (net.Conn, error) {
	return func(network, addr string) (net.Conn, error) {
		deadline, ok := ctx.Deadline()
		if !ok {
			deadline = time.Now().Add(defaultDialTimeout)
		}
		d := net.Dialer{Deadline: deadline}
		conn, err := d.DialContext(ctx, network, addr)
		if err != nil {
			return nil, err
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		return conn, nil
	}
}

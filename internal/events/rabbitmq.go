package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitMQPublisher publishes events to a durable queue on the default exchange.
// Each publish opens its own connection so a broker restart never wedges the kiosk.
type RabbitMQPublisher struct {
	url   string
	queue string
}

var _ Publisher = (*RabbitMQPublisher)(nil)

// NewRabbitMQPublisher creates a publisher.
func NewRabbitMQPublisher(url, queue string) (*RabbitMQPublisher, error) {
	if url == "" {
		return nil, errors.New("RabbitMQ URL is required")
	}
	if queue == "" {
		return nil, errors.New("queue name is required")
	}
	return &RabbitMQPublisher{url: url, queue: queue}, nil
}

// PublishAccessGranted publishes the event as a persistent JSON message.
func (p *RabbitMQPublisher) PublishAccessGranted(ctx context.Context, event AccessGranted) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	conn, err := amqp.DialConfig(p.url, amqp.Config{Dial: amqp.DefaultDial(5 * time.Second)})
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	if _, err := ch.QueueDeclare(
		p.queue, // name
		true,    // durable
		false,   // autoDelete
		false,   // exclusive
		false,   // noWait
		nil,     // args
	); err != nil {
		return fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	pub := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.EventID,
		Timestamp:    time.Now().UTC(),
		Type:         "lab.access.granted",
		Body:         body,
	}

	if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
		return fmt.Errorf("rabbitmq publish: %w", err)
	}
	return nil
}

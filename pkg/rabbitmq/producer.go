// Package rabbitmq publishes donation lifecycle events to a topic exchange.
// Consumers are outside this service; publishing is best effort.
package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
)

// Routing keys for DonationEvent.
const (
	DonationCreated   = "donation.created"
	DonationCancelled = "donation.cancelled"
	DonationCompleted = "donation.completed"
	RequestCreated    = "request.created"
	RequestWithdrawn  = "request.withdrawn"
	RequestAccepted   = "request.accepted"
	RequestRejected   = "request.rejected"
)

// DonationEvent is the payload for every routing key above.
type DonationEvent struct {
	Type       string     `json:"type"`
	DonationID uuid.UUID  `json:"donation_id"`
	RequestID  *uuid.UUID `json:"request_id,omitempty"`
	DonorID    uuid.UUID  `json:"donor_id"`
	ReceiverID *uuid.UUID `json:"receiver_id,omitempty"`
	// Rejected lists requests rejected by the accept cascade.
	Rejected  int64     `json:"rejected,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is implemented by EventProducer and EventProducerFallback.
type Publisher interface {
	PublishDonationEvent(ctx context.Context, event DonationEvent) error
	Close()
}

// EventProducerFallback logs and drops events when no broker is configured.
type EventProducerFallback struct{}

func (p *EventProducerFallback) PublishDonationEvent(ctx context.Context, event DonationEvent) error {
	logrus.WithFields(logrus.Fields{
		"component":   "rabbitmq_producer",
		"mode":        "fallback",
		"event":       event.Type,
		"donation_id": event.DonationID,
	}).Debug("event publish skipped")
	return nil
}

func (p *EventProducerFallback) Close() {}

// EventProducer holds the RabbitMQ connection and channel for publishing.
type EventProducer struct {
	mu       sync.Mutex
	conn     *amqp091.Connection
	channel  *amqp091.Channel
	exchange string
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.TrimSpace(raw)
	clean = strings.Trim(clean, "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewEventProducer dials the broker and declares the durable topic exchange.
func NewEventProducer(amqpURL, exchange string) (*EventProducer, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp091.DialConfig(cleanURL, amqp091.Config{Dial: amqp091.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, err
	}

	p := &EventProducer{conn: conn, channel: ch, exchange: exchange}
	if err := p.declare(); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *EventProducer) declare() error {
	return p.channel.ExchangeDeclare(
		p.exchange, // name
		"topic",    // type
		true,       // durable
		false,      // autoDelete
		false,      // internal
		false,      // noWait
		nil,        // args
	)
}

// PublishDonationEvent routes the event by its Type. A closed channel is
// reopened once before giving up.
func (p *EventProducer) PublishDonationEvent(ctx context.Context, event DonationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := amqp091.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp091.Persistent,
		MessageId:    uuid.NewString(),
		Timestamp:    time.Now(),
		Body:         body,
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg)
	if err == nil {
		return nil
	}

	logrus.WithError(err).WithFields(logrus.Fields{
		"component":   "rabbitmq_producer",
		"routing_key": event.Type,
	}).Warn("publish failed, reopening channel")

	ch, chErr := p.conn.Channel()
	if chErr != nil {
		return chErr
	}
	p.channel = ch
	if err := p.declare(); err != nil {
		return err
	}
	return p.channel.PublishWithContext(ctx, p.exchange, event.Type, false, false, msg)
}

// Close gracefully closes the channel and connection.
func (p *EventProducer) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}

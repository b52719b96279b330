package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/septivank/earthquake-catalog/internal/earthquake"
	"github.com/septivank/earthquake-catalog/internal/severity"
	"go.uber.org/zap"
)

// Mutation event types double as routing keys.
const (
	EventCreated = "earthquake.created"
	EventUpdated = "earthquake.updated"
	EventDeleted = "earthquake.deleted"
)

// MutationEvent announces a committed change to the catalogue. Record and
// Severity are omitted for deletions.
type MutationEvent struct {
	Type       string             `json:"type"`
	ID         string             `json:"id"`
	Record     *earthquake.Record `json:"record,omitempty"`
	Severity   severity.Level     `json:"severity,omitempty"`
	OccurredAt time.Time          `json:"occurredAt"`
}

// NewRecordEvent builds a created or updated event for rec.
func NewRecordEvent(eventType string, rec earthquake.Record, now time.Time) MutationEvent {
	return MutationEvent{
		Type:       eventType,
		ID:         rec.ID,
		Record:     &rec,
		Severity:   severity.Classify(rec.Magnitude),
		OccurredAt: now.UTC(),
	}
}

// NewDeleteEvent builds a deleted event for id.
func NewDeleteEvent(id string, now time.Time) MutationEvent {
	return MutationEvent{Type: EventDeleted, ID: id, OccurredAt: now.UTC()}
}

type publishChannel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends mutation events to a topic exchange
type Publisher struct {
	channel  publishChannel
	exchange string
	logger   *zap.Logger
}

// NewPublisher opens a channel and declares the events exchange
func NewPublisher(conn *Connection, exchange string, logger *zap.Logger) (*Publisher, error) {
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to create channel: %w", err)
	}
	if err := declareTopicExchange(ch, exchange); err != nil {
		ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}

	return &Publisher{channel: ch, exchange: exchange, logger: logger}, nil
}

// PublishMutation publishes event persistently, routed by its type.
func (p *Publisher) PublishMutation(ctx context.Context, event MutationEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	err = p.channel.PublishWithContext(
		ctx,
		p.exchange,
		event.Type,
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			Timestamp:    event.OccurredAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish %s event: %w", event.Type, err)
	}

	p.logger.Debug("published mutation event",
		zap.String("type", event.Type),
		zap.String("id", event.ID),
	)
	return nil
}

// Close closes the publisher channel
func (p *Publisher) Close() error {
	if p.channel != nil {
		return p.channel.Close()
	}
	return nil
}

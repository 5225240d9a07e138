// Package events publishes analytics events to Kafka. Publishing is
// best-effort: the conversation never waits on a broker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/cvety-kz/cvety-chat-service/internal/config"
	"github.com/cvety-kz/cvety-chat-service/internal/logging"
	"github.com/cvety-kz/cvety-chat-service/internal/models"
)

// AnalyticsPublisher emits conversation and order analytics.
type AnalyticsPublisher interface {
	PublishTurnCompleted(ctx context.Context, sessionID string, cached, fallback bool) error
	PublishOrderCreated(ctx context.Context, order *models.Order) error
	Close() error
}

// Ensure KafkaPublisher implements AnalyticsPublisher
var _ AnalyticsPublisher = (*KafkaPublisher)(nil)

// EventType represents the type of analytics event.
type EventType string

const (
	EventTypeTurnCompleted EventType = "chat.turn_completed"
	EventTypeOrderCreated  EventType = "order.created"
)

// Event is the envelope written to the analytics topic.
type Event struct {
	ID        string          `json:"id"`
	Type      EventType       `json:"type"`
	SessionID string          `json:"session_id"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// KafkaPublisher publishes analytics events to Kafka.
type KafkaPublisher struct {
	writer *kafka.Writer
	topic  string
	logger *logging.Logger
}

// NewKafkaPublisher creates a Kafka-based analytics publisher.
func NewKafkaPublisher(cfg config.KafkaConfig, logger *logging.Logger) *KafkaPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.AnalyticsTopic,
		Balancer:     &kafka.LeastBytes{},
		WriteTimeout: 10 * time.Second,
		RequiredAcks: kafka.RequireOne,
	}

	return &KafkaPublisher{
		writer: writer,
		topic:  cfg.AnalyticsTopic,
		logger: logger,
	}
}

// PublishTurnCompleted records that one conversation turn finished.
func (p *KafkaPublisher) PublishTurnCompleted(ctx context.Context, sessionID string, cached, fallback bool) error {
	payload := struct {
		Cached   bool `json:"cached"`
		Fallback bool `json:"fallback"`
	}{
		Cached:   cached,
		Fallback: fallback,
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return p.publish(ctx, &Event{
		ID:        uuid.NewString(),
		Type:      EventTypeTurnCompleted,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now(),
	})
}

// PublishOrderCreated records a submitted order.
func (p *KafkaPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}

	return p.publish(ctx, &Event{
		ID:        uuid.NewString(),
		Type:      EventTypeOrderCreated,
		SessionID: order.SessionID,
		Data:      data,
		Timestamp: time.Now(),
	})
}

func (p *KafkaPublisher) publish(ctx context.Context, event *Event) error {
	eventData, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Key:   []byte(event.SessionID),
		Value: eventData,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.Error("Failed to publish event", logging.Fields{
			"event_id":   event.ID,
			"event_type": event.Type,
			"session_id": event.SessionID,
			"error":      err.Error(),
		})
		return err
	}

	p.logger.Debug("Event published", logging.Fields{
		"event_id":   event.ID,
		"event_type": event.Type,
		"session_id": event.SessionID,
	})

	return nil
}

// Close closes the Kafka writer.
func (p *KafkaPublisher) Close() error {
	p.logger.Info("Closing Kafka publisher", nil)
	return p.writer.Close()
}

// NoopPublisher drops every event. Used when no brokers are configured.
type NoopPublisher struct{}

func (NoopPublisher) PublishTurnCompleted(ctx context.Context, sessionID string, cached, fallback bool) error {
	return nil
}

func (NoopPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	return nil
}

func (NoopPublisher) Close() error { return nil }

// MockPublisher is a mock implementation for testing.
type MockPublisher struct {
	Events []*Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Events: make([]*Event, 0)}
}

func (m *MockPublisher) PublishTurnCompleted(ctx context.Context, sessionID string, cached, fallback bool) error {
	m.Events = append(m.Events, &Event{Type: EventTypeTurnCompleted, SessionID: sessionID})
	return nil
}

func (m *MockPublisher) PublishOrderCreated(ctx context.Context, order *models.Order) error {
	m.Events = append(m.Events, &Event{Type: EventTypeOrderCreated, SessionID: order.SessionID})
	return nil
}

func (m *MockPublisher) Close() error { return nil }

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/Ayush-an/Exam-Buddy-sub000/internal/metrics"
)

type Publisher interface {
	PublishExamEvent(ctx context.Context, event *ExamSubmittedEvent) error
	PublishHistoryLinkFailed(ctx context.Context, event *HistoryLinkFailedEvent) error
	PublishPaperEvent(ctx context.Context, event *PaperUpdatedEvent) error
	PublishUserEvent(ctx context.Context, event *UserEvent) error
	Close() error
}

type EventPublisher struct {
	client       *RabbitMQClient
	exchangeName string
	enabled      bool
}

// NewEventPublisher returns a disabled publisher when rabbitURI is empty.
func NewEventPublisher(rabbitURI, exchangeName string) (*EventPublisher, error) {
	if rabbitURI == "" {
		log.Println("Warning: RabbitMQ URI is empty, event publishing is disabled")
		return &EventPublisher{
			enabled: false,
		}, nil
	}

	client, err := NewRabbitMQClient(rabbitURI, exchangeName)
	if err != nil {
		return nil, err
	}

	return &EventPublisher{
		client:       client,
		exchangeName: exchangeName,
		enabled:      true,
	}, nil
}

func (p *EventPublisher) Enabled() bool {
	return p.enabled
}

// Connected reports false while the broker connection is being rebuilt.
func (p *EventPublisher) Connected() bool {
	return p.enabled && p.client.Connected()
}

func (p *EventPublisher) publishEvent(ctx context.Context, routingKey string, event any) error {
	if !p.enabled {
		log.Printf("Event publishing is disabled, skipping event: %s", routingKey)
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	pubCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.client.Publish(pubCtx, routingKey, body); err != nil {
		metrics.EventPublishFailures.WithLabelValues(routingKey).Inc()
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published event: %s", routingKey)
	return nil
}

func (p *EventPublisher) PublishExamEvent(ctx context.Context, event *ExamSubmittedEvent) error {
	return p.publishEvent(ctx, event.EventType, event)
}

func (p *EventPublisher) PublishHistoryLinkFailed(ctx context.Context, event *HistoryLinkFailedEvent) error {
	return p.publishEvent(ctx, event.EventType, event)
}

func (p *EventPublisher) PublishPaperEvent(ctx context.Context, event *PaperUpdatedEvent) error {
	return p.publishEvent(ctx, event.EventType, event)
}

func (p *EventPublisher) PublishUserEvent(ctx context.Context, event *UserEvent) error {
	return p.publishEvent(ctx, event.EventType, event)
}

func (p *EventPublisher) Close() error {
	if !p.enabled {
		return nil
	}
	return p.client.Close()
}

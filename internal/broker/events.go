package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"datagen-service/internal/models"

	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing dataset lifecycle events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishDatasetRequested publishes DatasetRequested event
func (ep *EventPublisher) PublishDatasetRequested(ctx context.Context, event *models.DatasetRequestedEvent) error {
	key := fmt.Sprintf("dataset-%d-%d", event.Seed, event.RecordCount)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishDatasetCompleted publishes DatasetCompleted event
func (ep *EventPublisher) PublishDatasetCompleted(ctx context.Context, event *models.DatasetCompletedEvent) error {
	key := fmt.Sprintf("run-%s", event.RunID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishDatasetFailed publishes DatasetFailed event
func (ep *EventPublisher) PublishDatasetFailed(ctx context.Context, event *models.DatasetFailedEvent) error {
	key := fmt.Sprintf("dataset-%d-%d", event.Seed, event.RecordCount)
	return ep.producer.PublishEvent(ctx, key, event)
}

// EventHandler routes incoming dataset events
type EventHandler struct {
	onDatasetRequested func(context.Context, *models.DatasetRequestedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnDatasetRequested registers a handler for DatasetRequested events
func (eh *EventHandler) OnDatasetRequested(handler func(context.Context, *models.DatasetRequestedEvent) error) {
	eh.onDatasetRequested = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypeDatasetRequested:
		if eh.onDatasetRequested != nil {
			var event models.DatasetRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal DatasetRequested event: %w", err)
			}
			return eh.onDatasetRequested(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}

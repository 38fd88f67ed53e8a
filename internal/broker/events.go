package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"mn-electronics/internal/models"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer *Producer
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer *Producer) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishJobCreated publishes JobCreated event
func (ep *EventPublisher) PublishJobCreated(ctx context.Context, event *models.JobCreatedEvent) error {
	key := fmt.Sprintf("job-%d", event.JobID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishJobStatusChanged publishes JobStatusChanged event
func (ep *EventPublisher) PublishJobStatusChanged(ctx context.Context, event *models.JobStatusChangedEvent) error {
	key := fmt.Sprintf("job-%d", event.JobID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishPartsConsumed publishes PartsConsumed event
func (ep *EventPublisher) PublishPartsConsumed(ctx context.Context, event *models.PartsConsumedEvent) error {
	key := fmt.Sprintf("item-%d", event.ItemID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishWarrantyClaimed publishes WarrantyClaimed event
func (ep *EventPublisher) PublishWarrantyClaimed(ctx context.Context, event *models.WarrantyClaimedEvent) error {
	key := fmt.Sprintf("job-%d", event.OriginalJobID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// PublishInvoiceIssued publishes InvoiceIssued event
func (ep *EventPublisher) PublishInvoiceIssued(ctx context.Context, event *models.InvoiceIssuedEvent) error {
	key := fmt.Sprintf("job-%d", event.JobID)
	return ep.producer.PublishEvent(ctx, key, event)
}

// KafkaDispatcher delivers notifications by publishing them to the
// notifications topic; the notification worker consumes and sends them.
// Satisfies the service layer's Dispatcher interface.
type KafkaDispatcher struct {
	producer *Producer
}

// NewKafkaDispatcher creates a dispatcher backed by a Kafka producer
func NewKafkaDispatcher(producer *Producer) *KafkaDispatcher {
	return &KafkaDispatcher{producer: producer}
}

// Dispatch publishes a notification request for the given contact
func (d *KafkaDispatcher) Dispatch(ctx context.Context, contact, message string) error {
	event := &models.NotificationRequestedEvent{
		BaseEvent: models.BaseEvent{
			EventID:   uuid.New().String(),
			EventType: models.EventTypeNotificationRequested,
			Timestamp: time.Now(),
		},
		Contact: contact,
		Message: message,
	}
	return d.producer.PublishEvent(ctx, fmt.Sprintf("contact-%s", contact), event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onPartsConsumed func(context.Context, *models.PartsConsumedEvent) error
	onNotification  func(context.Context, *models.NotificationRequestedEvent) error
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{}
}

// OnPartsConsumed registers a handler for PartsConsumed events
func (eh *EventHandler) OnPartsConsumed(handler func(context.Context, *models.PartsConsumedEvent) error) {
	eh.onPartsConsumed = handler
}

// OnNotificationRequested registers a handler for NotificationRequested events
func (eh *EventHandler) OnNotificationRequested(handler func(context.Context, *models.NotificationRequestedEvent) error) {
	eh.onNotification = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	log.Printf("Handling event: type=%s, id=%s", baseEvent.EventType, baseEvent.EventID)

	switch baseEvent.EventType {
	case models.EventTypePartsConsumed:
		if eh.onPartsConsumed != nil {
			var event models.PartsConsumedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal PartsConsumed event: %w", err)
			}
			return eh.onPartsConsumed(ctx, &event)
		}

	case models.EventTypeNotificationRequested:
		if eh.onNotification != nil {
			var event models.NotificationRequestedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal NotificationRequested event: %w", err)
			}
			return eh.onNotification(ctx, &event)
		}

	default:
		log.Printf("Unhandled event type: %s", baseEvent.EventType)
	}

	return nil
}

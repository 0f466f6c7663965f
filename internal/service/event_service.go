package service

import (
	"context"
	"encoding/json"
	"time"

	"ai-studio-be/internal/constant"
	"ai-studio-be/internal/pkg/logger"
	"ai-studio-be/pkg/events"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const DomainEventsTopic = "studio.domain-events"

// IEventBus is the in-process, best-effort event bus. Emit never fails the caller.
type IEventBus interface {
	Emit(ctx context.Context, eventType string, data map[string]interface{})
}

// EventSink is the durable destination the relay forwards to (NATS JetStream).
type EventSink interface {
	Publish(ctx context.Context, event events.Event) error
}

type eventEnvelope struct {
	Type       string                 `json:"type"`
	Data       map[string]interface{} `json:"data"`
	OccurredAt time.Time              `json:"occurred_at"`
}

type eventBus struct {
	pubSub *gochannel.GoChannel
	topic  string
	logger logger.ILogger
	now    func() time.Time
}

func NewEventBus(pubSub *gochannel.GoChannel, topic string, logger logger.ILogger) IEventBus {
	return &eventBus{
		pubSub: pubSub,
		topic:  topic,
		logger: logger,
		now:    time.Now,
	}
}

func (b *eventBus) Emit(ctx context.Context, eventType string, data map[string]interface{}) {
	payload, err := json.Marshal(eventEnvelope{
		Type:       eventType,
		Data:       data,
		OccurredAt: b.now(),
	})
	if err != nil {
		b.logger.Error(constant.ModuleEvents, "Failed to marshal event", map[string]interface{}{"type": eventType, "error": err.Error()})
		return
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubSub.Publish(b.topic, msg); err != nil {
		b.logger.Error(constant.ModuleEvents, "Failed to emit event", map[string]interface{}{"type": eventType, "error": err.Error()})
	}
}

type noopEventBus struct{}

// NewNoopEventBus drops every event.
func NewNoopEventBus() IEventBus {
	return noopEventBus{}
}

func (noopEventBus) Emit(context.Context, string, map[string]interface{}) {}

type IEventRelayService interface {
	Consume(ctx context.Context) error
}

type eventRelayService struct {
	pubSub *gochannel.GoChannel
	topic  string
	sink   EventSink
	logger logger.ILogger
}

// NewEventRelayService forwards bus events to sink. A nil sink means events
// are only logged at debug level.
func NewEventRelayService(pubSub *gochannel.GoChannel, topic string, sink EventSink, logger logger.ILogger) IEventRelayService {
	return &eventRelayService{
		pubSub: pubSub,
		topic:  topic,
		sink:   sink,
		logger: logger,
	}
}

func (r *eventRelayService) Consume(ctx context.Context) error {
	messages, err := r.pubSub.Subscribe(ctx, r.topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			r.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (r *eventRelayService) processMessage(ctx context.Context, msg *message.Message) {
	// Delivery is best effort: every message is acked so a NATS outage cannot
	// wedge the in-process bus.
	defer msg.Ack()

	var env eventEnvelope
	if err := json.Unmarshal(msg.Payload, &env); err != nil {
		r.logger.Error(constant.ModuleEvents, "Dropping malformed event", map[string]interface{}{"error": err.Error()})
		return
	}

	if r.sink == nil {
		r.logger.Debug(constant.ModuleEvents, "Event not forwarded, no sink configured", map[string]interface{}{"type": env.Type})
		return
	}

	evt := events.BaseEvent{Type: env.Type, Data: env.Data, OccurredAt: env.OccurredAt}
	if err := r.sink.Publish(ctx, evt); err != nil {
		r.logger.Error(constant.ModuleEvents, "Failed to forward event", map[string]interface{}{"type": env.Type, "error": err.Error()})
	}
}

package viewcache

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/enums"
	"github.com/heartlink/heartlink-backend/pkg/logger"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/outbox/idempotency"
	"github.com/heartlink/heartlink-backend/pkg/outbox/payloads"
	"github.com/heartlink/heartlink-backend/pkg/outbox/registry"
)

const viewCacheConsumer = "view-cache"

type invalidator interface {
	Invalidate(ctx context.Context, circleIDs ...string) error
}

// Consumer watches circle domain events and drops cached member views that
// the event made stale.
type Consumer struct {
	cache        invalidator
	subscription *pubsub.Subscriber
	decoders     *registry.DecoderRegistry
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a view-cache invalidation consumer.
func NewConsumer(cache invalidator, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if cache == nil {
		return nil, fmt.Errorf("view cache required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("circle subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		cache:        cache,
		subscription: subscription,
		decoders:     newCircleDecoders(),
		idempotency:  manager,
		logg:         logg,
	}, nil
}

func newCircleDecoders() *registry.DecoderRegistry {
	reg := registry.NewDecoderRegistry()
	reg.Register(enums.EventCircleChanged, 1, func(raw json.RawMessage) (interface{}, error) {
		var payload payloads.CircleChangedEvent
		return &payload, json.Unmarshal(raw, &payload)
	})
	reg.Register(enums.EventCircleDeleted, 1, func(raw json.RawMessage) (interface{}, error) {
		var payload payloads.CircleDeletedEvent
		return &payload, json.Unmarshal(raw, &payload)
	})
	reg.Register(enums.EventMembershipChanged, 1, func(raw json.RawMessage) (interface{}, error) {
		var payload payloads.MembershipChangedEvent
		return &payload, json.Unmarshal(raw, &payload)
	})
	return reg
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	eventType := enums.OutboxEventType(msg.Attributes["event_type"])
	logCtx := c.logg.WithFields(ctx, map[string]any{
		"message_id": msg.ID,
		"event_type": string(eventType),
	})

	switch eventType {
	case enums.EventCircleChanged, enums.EventCircleDeleted, enums.EventMembershipChanged:
	default:
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, viewCacheConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		return processResult{ack: true}
	}

	decoded, err := c.decoders.Decode(eventType, envelope.Version, envelope.Data)
	if err != nil {
		c.logg.Error(logCtx, "failed to decode payload", err)
		return processResult{ack: true}
	}

	circleID := circleIDFromPayload(decoded)
	if circleID == uuid.Nil {
		c.logg.Error(logCtx, "payload missing circle id", fmt.Errorf("event %s", envelope.EventID))
		return processResult{ack: true}
	}

	if err := c.cache.Invalidate(ctx, circleID.String()); err != nil {
		c.logg.Error(logCtx, "member view invalidation failed", err)
		_ = c.idempotency.Delete(ctx, viewCacheConsumer, eventID)
		return processResult{nack: true}
	}

	c.logg.Info(c.logg.WithCircleID(logCtx, circleID.String()), "member view invalidated")
	return processResult{ack: true}
}

func circleIDFromPayload(decoded interface{}) uuid.UUID {
	switch payload := decoded.(type) {
	case *payloads.CircleChangedEvent:
		return payload.CircleID
	case *payloads.CircleDeletedEvent:
		return payload.CircleID
	case *payloads.MembershipChangedEvent:
		return payload.CircleID
	default:
		return uuid.Nil
	}
}

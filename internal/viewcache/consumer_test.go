package viewcache

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/heartlink/heartlink-backend/pkg/enums"
	"github.com/heartlink/heartlink-backend/pkg/logger"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/outbox/idempotency"
	"github.com/heartlink/heartlink-backend/pkg/outbox/payloads"
)

type fakeIdempotencyStore struct {
	seen   map[string]bool
	setErr error
}

func (f *fakeIdempotencyStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if f.setErr != nil {
		return false, f.setErr
	}
	if f.seen[key] {
		return false, nil
	}
	f.seen[key] = true
	return true, nil
}

func (f *fakeIdempotencyStore) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.seen, key)
	}
	return nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "hl:idempotency:" + scope + ":" + id
}

type stubInvalidator struct {
	circles []string
	err     error
}

func (s *stubInvalidator) Invalidate(ctx context.Context, circleIDs ...string) error {
	if s.err != nil {
		return s.err
	}
	s.circles = append(s.circles, circleIDs...)
	return nil
}

func newTestConsumer(t *testing.T, cache invalidator) *Consumer {
	t.Helper()
	manager, err := idempotency.NewManager(&fakeIdempotencyStore{seen: map[string]bool{}}, time.Hour)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	logg := logger.New(logger.Options{ServiceName: "test", Level: zerolog.ErrorLevel, Output: io.Discard})
	return &Consumer{
		cache:       cache,
		decoders:    newCircleDecoders(),
		idempotency: manager,
		logg:        logg,
	}
}

func membershipChangedMessage(t *testing.T, circleID uuid.UUID) *pubsub.Message {
	t.Helper()
	data, err := json.Marshal(payloads.MembershipChangedEvent{
		CircleID:    circleID,
		UserID:      uuid.New(),
		Status:      enums.MembershipStatusActive,
		MemberCount: 3,
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	envelope, err := json.Marshal(outbox.PayloadEnvelope{
		Version:    1,
		EventID:    uuid.New().String(),
		OccurredAt: time.Now().UTC(),
		Data:       data,
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return &pubsub.Message{
		Data:       envelope,
		Attributes: map[string]string{"event_type": string(enums.EventMembershipChanged)},
	}
}

func TestConsumerInvalidatesOnMembershipChange(t *testing.T) {
	cache := &stubInvalidator{}
	consumer := newTestConsumer(t, cache)
	circleID := uuid.New()

	result := consumer.process(context.Background(), membershipChangedMessage(t, circleID))
	if !result.ack || result.nack {
		t.Fatalf("expected ack, got %+v", result)
	}
	if len(cache.circles) != 1 || cache.circles[0] != circleID.String() {
		t.Fatalf("expected invalidation for %s, got %v", circleID, cache.circles)
	}
}

func TestConsumerSkipsUnrelatedEvents(t *testing.T) {
	cache := &stubInvalidator{}
	consumer := newTestConsumer(t, cache)

	msg := &pubsub.Message{
		Data:       []byte(`{}`),
		Attributes: map[string]string{"event_type": string(enums.EventInvitationCreated)},
	}
	result := consumer.process(context.Background(), msg)
	if !result.ack {
		t.Fatalf("expected unrelated event to ack")
	}
	if len(cache.circles) != 0 {
		t.Fatalf("expected no invalidation, got %v", cache.circles)
	}
}

func TestConsumerDedupesByEventID(t *testing.T) {
	cache := &stubInvalidator{}
	consumer := newTestConsumer(t, cache)
	msg := membershipChangedMessage(t, uuid.New())

	first := consumer.process(context.Background(), msg)
	second := consumer.process(context.Background(), msg)
	if !first.ack || !second.ack {
		t.Fatalf("expected both deliveries to ack")
	}
	if len(cache.circles) != 1 {
		t.Fatalf("expected a single invalidation, got %d", len(cache.circles))
	}
}

func TestConsumerNacksWhenInvalidationFails(t *testing.T) {
	cache := &stubInvalidator{err: errors.New("redis down")}
	consumer := newTestConsumer(t, cache)
	msg := membershipChangedMessage(t, uuid.New())

	result := consumer.process(context.Background(), msg)
	if !result.nack {
		t.Fatalf("expected nack on cache failure, got %+v", result)
	}

	// The idempotency mark is released so the redelivery can retry.
	cache.err = nil
	retry := consumer.process(context.Background(), msg)
	if !retry.ack || len(cache.circles) != 1 {
		t.Fatalf("expected redelivery to succeed, got %+v with %v", retry, cache.circles)
	}
}

package enums

import "fmt"

// OutboxAggregateType maps to the aggregate_type enum in Postgres.
type OutboxAggregateType string

const (
	AggregateCircle     OutboxAggregateType = "circle"
	AggregateMembership OutboxAggregateType = "membership"
	AggregateInvitation OutboxAggregateType = "invitation"
	AggregateEvent      OutboxAggregateType = "event"
)

var validAggregateTypes = []OutboxAggregateType{
	AggregateCircle,
	AggregateMembership,
	AggregateInvitation,
	AggregateEvent,
}

// IsValid reports whether the value matches the canonical aggregate_type enum.
func (a OutboxAggregateType) IsValid() bool {
	for _, candidate := range validAggregateTypes {
		if candidate == a {
			return true
		}
	}
	return false
}

// ParseOutboxAggregateType converts raw input into OutboxAggregateType.
func ParseOutboxAggregateType(value string) (OutboxAggregateType, error) {
	for _, candidate := range validAggregateTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid aggregate type %q", value)
}

// OutboxEventType maps to the event_type enum in Postgres.
type OutboxEventType string

const (
	EventCircleChanged      OutboxEventType = "circle_changed"
	EventCircleDeleted      OutboxEventType = "circle_deleted"
	EventMembershipChanged  OutboxEventType = "membership_changed"
	EventInvitationCreated  OutboxEventType = "invitation_created"
	EventInvitationResolved OutboxEventType = "invitation_resolved"
	EventCircleEventCreated OutboxEventType = "circle_event_created"
)

var validOutboxEventTypes = []OutboxEventType{
	EventCircleChanged,
	EventCircleDeleted,
	EventMembershipChanged,
	EventInvitationCreated,
	EventInvitationResolved,
	EventCircleEventCreated,
}

// IsValid reports whether the value matches the canonical event_type enum.
func (e OutboxEventType) IsValid() bool {
	for _, candidate := range validOutboxEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseOutboxEventType converts raw input into OutboxEventType.
func ParseOutboxEventType(value string) (OutboxEventType, error) {
	for _, candidate := range validOutboxEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}

package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// CircleChangedEvent is emitted whenever circle settings or metadata change.
type CircleChangedEvent struct {
	CircleID    uuid.UUID `json:"circle_id"`
	OwnerID     uuid.UUID `json:"owner_id"`
	ShowMembers *bool     `json:"show_members,omitempty"`
	MemberCount int       `json:"member_count"`
}

// CircleDeletedEvent signals a circle and its dependents were removed.
type CircleDeletedEvent struct {
	CircleID  uuid.UUID `json:"circle_id"`
	OwnerID   uuid.UUID `json:"owner_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

// MembershipChangedEvent is emitted when a member joins, leaves, or is removed.
type MembershipChangedEvent struct {
	CircleID    uuid.UUID              `json:"circle_id"`
	UserID      uuid.UUID              `json:"user_id"`
	Status      enums.MembershipStatus `json:"status"`
	MemberCount int                    `json:"member_count"`
}

// InvitationCreatedEvent is emitted when an owner invites a prospective member.
type InvitationCreatedEvent struct {
	InvitationID uuid.UUID `json:"invitation_id"`
	CircleID     uuid.UUID `json:"circle_id"`
	InviterID    uuid.UUID `json:"inviter_id"`
	InviteeID    uuid.UUID `json:"invitee_id"`
}

// InvitationResolvedEvent is emitted when the invitee accepts or rejects.
type InvitationResolvedEvent struct {
	InvitationID uuid.UUID              `json:"invitation_id"`
	CircleID     uuid.UUID              `json:"circle_id"`
	InviteeID    uuid.UUID              `json:"invitee_id"`
	Status       enums.InvitationStatus `json:"status"`
	RespondedAt  time.Time              `json:"responded_at"`
}

// CircleEventCreatedEvent surfaces new gatherings to downstream consumers.
type CircleEventCreatedEvent struct {
	EventID   uuid.UUID `json:"event_id"`
	CircleID  uuid.UUID `json:"circle_id"`
	CreatorID uuid.UUID `json:"creator_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
}

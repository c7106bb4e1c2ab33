package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// CircleEventAttendee records a member's RSVP to a circle event. A member
// has at most one RSVP per event; re-RSVPing updates the existing row.
type CircleEventAttendee struct {
	ID        uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	EventID   uuid.UUID            `gorm:"column:event_id;type:uuid;not null;uniqueIndex:ux_event_attendees_event_user"`
	UserID    uuid.UUID            `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_event_attendees_event_user"`
	Status    enums.AttendeeStatus `gorm:"column:status;type:attendee_status;not null"`
	CreatedAt time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

package engagement

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// MessageDTO is a feed message with the sender's privacy-filtered name.
type MessageDTO struct {
	ID         uuid.UUID `json:"id"`
	CircleID   uuid.UUID `json:"circle_id"`
	SenderID   uuid.UUID `json:"sender_id"`
	SenderName string    `json:"sender_name"`
	Content    string    `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

// MessageList pairs a page of messages with the cursor for the next page.
type MessageList struct {
	Items  []MessageDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// EventDTO is the transport shape for a circle event.
type EventDTO struct {
	ID          uuid.UUID  `json:"id"`
	CircleID    uuid.UUID  `json:"circle_id"`
	CreatorID   uuid.UUID  `json:"creator_id"`
	Title       string     `json:"title"`
	Description *string    `json:"description,omitempty"`
	Location    *string    `json:"location,omitempty"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at,omitempty"`
	GoingCount  int        `json:"going_count"`
	CreatedAt   time.Time  `json:"created_at"`
}

// RSVPDTO reflects a member's current RSVP for an event.
type RSVPDTO struct {
	EventID uuid.UUID            `json:"event_id"`
	UserID  uuid.UUID            `json:"user_id"`
	Status  enums.AttendeeStatus `json:"status"`
}

// ActivityDTO is an entry in the circle's engagement feed.
type ActivityDTO struct {
	ID        uuid.UUID          `json:"id"`
	CircleID  uuid.UUID          `json:"circle_id"`
	ActorID   uuid.UUID          `json:"actor_id"`
	Type      enums.ActivityType `json:"type"`
	Data      any                `json:"data,omitempty"`
	CreatedAt time.Time          `json:"created_at"`
}

// ActivityList pairs a page of activity entries with the next-page cursor.
type ActivityList struct {
	Items  []ActivityDTO `json:"items"`
	Cursor string        `json:"cursor"`
}

func eventToDTO(event *models.CircleEvent, goingCount int) *EventDTO {
	if event == nil {
		return nil
	}
	return &EventDTO{
		ID:          event.ID,
		CircleID:    event.CircleID,
		CreatorID:   event.CreatorID,
		Title:       event.Title,
		Description: event.Description,
		Location:    event.Location,
		StartsAt:    event.StartsAt,
		EndsAt:      event.EndsAt,
		GoingCount:  goingCount,
		CreatedAt:   event.CreatedAt,
	}
}

package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/heartlink/heartlink-backend/internal/repo"
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	"github.com/heartlink/heartlink-backend/pkg/pagination"
)

// Repository handles persistence for circle messages, events, RSVPs, and the
// activity feed.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateMessageTx inserts a feed message inside the provided transaction.
func (r *Repository) CreateMessageTx(tx *gorm.DB, message *models.CircleMessage) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(message).Error
}

// ListMessages returns a page of feed messages joined with the sender's name
// parts and layered display preferences, newest first.
func (r *Repository) ListMessages(ctx context.Context, circleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]messageWithSenderRow, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.DB(ctx).
		Model(&models.CircleMessage{}).
		Select(`circle_messages.*,
			users.first_name,
			users.last_name,
			users.show_full_name AS global_show_full_name,
			circle_memberships.show_full_name AS circle_show_full_name`).
		Joins("JOIN users ON users.id = circle_messages.sender_id").
		Joins("LEFT JOIN circle_memberships ON circle_memberships.circle_id = circle_messages.circle_id AND circle_memberships.user_id = circle_messages.sender_id").
		Where("circle_messages.circle_id = ?", circleID)
	if cursor != nil {
		query = query.Where("(circle_messages.created_at, circle_messages.id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []messageWithSenderRow
	if err := query.
		Order("circle_messages.created_at DESC, circle_messages.id DESC").
		Limit(buffered).
		Scan(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

// CreateEventTx inserts a circle event inside the provided transaction.
func (r *Repository) CreateEventTx(tx *gorm.DB, event *models.CircleEvent) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(event).Error
}

// FindEventByID loads an event by its UUID.
func (r *Repository) FindEventByID(ctx context.Context, id uuid.UUID) (*models.CircleEvent, error) {
	var event models.CircleEvent
	if err := r.DB(ctx).First(&event, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

// ListEvents returns the circle's events starting after the provided time,
// soonest first, each with its going count.
func (r *Repository) ListEvents(ctx context.Context, circleID uuid.UUID, from time.Time) ([]eventWithGoingRow, error) {
	var rows []eventWithGoingRow
	err := r.DB(ctx).
		Model(&models.CircleEvent{}).
		Select(`circle_events.*,
			COUNT(CASE WHEN circle_event_attendees.status = ? THEN 1 END) AS going_count`, enums.AttendeeStatusGoing).
		Joins("LEFT JOIN circle_event_attendees ON circle_event_attendees.event_id = circle_events.id").
		Where("circle_events.circle_id = ? AND circle_events.starts_at >= ?", circleID, from).
		Group("circle_events.id").
		Order("circle_events.starts_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// UpsertRSVP records or updates the member's RSVP for an event. Re-RSVPing
// rewrites the status on the existing row.
func (r *Repository) UpsertRSVP(ctx context.Context, attendee *models.CircleEventAttendee) error {
	return r.DB(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "event_id"}, {Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"status":     attendee.Status,
				"updated_at": time.Now().UTC(),
			}),
		}).
		Create(attendee).Error
}

// RecordActivityTx appends an activity entry inside the provided transaction.
func (r *Repository) RecordActivityTx(tx *gorm.DB, activity *models.CircleActivity) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	return tx.Create(activity).Error
}

// ListActivity returns a page of the circle's activity feed, newest first.
func (r *Repository) ListActivity(ctx context.Context, circleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.CircleActivity, *pagination.Cursor, error) {
	buffered := pagination.LimitWithBuffer(limit)
	normalized := pagination.NormalizeLimit(limit)

	query := r.DB(ctx).
		Model(&models.CircleActivity{}).
		Where("circle_id = ?", circleID)
	if cursor != nil {
		query = query.Where("(created_at, id) < (?, ?)", cursor.CreatedAt, cursor.ID)
	}

	var rows []models.CircleActivity
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(buffered).
		Find(&rows).Error; err != nil {
		return nil, nil, err
	}

	if len(rows) > normalized {
		next := rows[normalized]
		rows = rows[:normalized]
		return rows, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return rows, nil, nil
}

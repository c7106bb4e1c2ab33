package engagement

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/outbox/payloads"
	"github.com/heartlink/heartlink-backend/pkg/pagination"
)

const (
	maxMessageLen    = 2000
	maxEventTitleLen = 200
)

type engagementRepository interface {
	CreateMessageTx(tx *gorm.DB, message *models.CircleMessage) error
	ListMessages(ctx context.Context, circleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]messageWithSenderRow, *pagination.Cursor, error)
	CreateEventTx(tx *gorm.DB, event *models.CircleEvent) error
	FindEventByID(ctx context.Context, id uuid.UUID) (*models.CircleEvent, error)
	ListEvents(ctx context.Context, circleID uuid.UUID, from time.Time) ([]eventWithGoingRow, error)
	UpsertRSVP(ctx context.Context, attendee *models.CircleEventAttendee) error
	RecordActivityTx(tx *gorm.DB, activity *models.CircleActivity) error
	ListActivity(ctx context.Context, circleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.CircleActivity, *pagination.Cursor, error)
}

type circleLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error)
}

type membershipChecker interface {
	HasActiveMembership(ctx context.Context, circleID, userID uuid.UUID) (bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// ListParams configures cursor pagination for feed reads.
type ListParams struct {
	Limit  int
	Cursor string
}

// CreateEventInput carries a new circle event.
type CreateEventInput struct {
	Title       string
	Description *string
	Location    *string
	StartsAt    time.Time
	EndsAt      *time.Time
}

// Service covers in-circle engagement: the message feed, scheduled events
// with RSVPs, and the activity log. Every operation requires the caller to be
// the circle owner or an active member.
type Service interface {
	PostMessage(ctx context.Context, circleID, senderID uuid.UUID, content string) (*MessageDTO, error)
	ListMessages(ctx context.Context, circleID, viewerID uuid.UUID, params ListParams) (*MessageList, error)
	CreateEvent(ctx context.Context, circleID, creatorID uuid.UUID, input CreateEventInput) (*EventDTO, error)
	ListEvents(ctx context.Context, circleID, viewerID uuid.UUID) ([]EventDTO, error)
	RSVP(ctx context.Context, eventID, userID uuid.UUID, status enums.AttendeeStatus) (*RSVPDTO, error)
	ListActivity(ctx context.Context, circleID, viewerID uuid.UUID, params ListParams) (*ActivityList, error)
}

type service struct {
	repo    engagementRepository
	circles circleLookup
	members membershipChecker
	tx      txRunner
	events  eventEmitter
}

// NewService wires engagement dependencies.
func NewService(repo engagementRepository, circles circleLookup, members membershipChecker, tx txRunner, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "engagement repository required")
	}
	if circles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "circle lookup required")
	}
	if members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "membership checker required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event emitter required")
	}
	return &service{repo: repo, circles: circles, members: members, tx: tx, events: events}, nil
}

func (s *service) PostMessage(ctx context.Context, circleID, senderID uuid.UUID, content string) (*MessageDTO, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content required")
	}
	if len(content) > maxMessageLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "message content is too long")
	}
	if err := s.requireParticipant(ctx, circleID, senderID); err != nil {
		return nil, err
	}

	message := &models.CircleMessage{
		CircleID: circleID,
		SenderID: senderID,
		Content:  content,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateMessageTx(tx, message); err != nil {
			return fmt.Errorf("create message: %w", err)
		}
		return s.repo.RecordActivityTx(tx, &models.CircleActivity{
			CircleID: circleID,
			ActorID:  senderID,
			Type:     enums.ActivityTypeMessageSent,
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "post message")
	}

	return &MessageDTO{
		ID:        message.ID,
		CircleID:  message.CircleID,
		SenderID:  message.SenderID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
	}, nil
}

func (s *service) ListMessages(ctx context.Context, circleID, viewerID uuid.UUID, params ListParams) (*MessageList, error) {
	if err := s.requireParticipant(ctx, circleID, viewerID); err != nil {
		return nil, err
	}
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListMessages(ctx, circleID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list messages")
	}
	return &MessageList{
		Items:  messagesFromRows(rows),
		Cursor: encodeCursor(next),
	}, nil
}

func (s *service) CreateEvent(ctx context.Context, circleID, creatorID uuid.UUID, input CreateEventInput) (*EventDTO, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event title required")
	}
	if len(title) > maxEventTitleLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event title is too long")
	}
	if input.StartsAt.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event start time required")
	}
	if input.EndsAt != nil && !input.EndsAt.After(input.StartsAt) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event end must be after its start")
	}
	if err := s.requireParticipant(ctx, circleID, creatorID); err != nil {
		return nil, err
	}

	event := &models.CircleEvent{
		CircleID:    circleID,
		CreatorID:   creatorID,
		Title:       title,
		Description: input.Description,
		Location:    input.Location,
		StartsAt:    input.StartsAt,
		EndsAt:      input.EndsAt,
	}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateEventTx(tx, event); err != nil {
			return fmt.Errorf("create event: %w", err)
		}
		if err := s.repo.RecordActivityTx(tx, &models.CircleActivity{
			CircleID: circleID,
			ActorID:  creatorID,
			Type:     enums.ActivityTypeEventCreated,
		}); err != nil {
			return fmt.Errorf("record activity: %w", err)
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCircleEventCreated,
			AggregateType: enums.AggregateEvent,
			AggregateID:   event.ID,
			Actor:         &outbox.ActorRef{UserID: creatorID},
			Version:       1,
			Data: payloads.CircleEventCreatedEvent{
				EventID:   event.ID,
				CircleID:  circleID,
				CreatorID: creatorID,
				Title:     title,
				StartsAt:  input.StartsAt,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create event")
	}
	return eventToDTO(event, 0), nil
}

func (s *service) ListEvents(ctx context.Context, circleID, viewerID uuid.UUID) ([]EventDTO, error) {
	if err := s.requireParticipant(ctx, circleID, viewerID); err != nil {
		return nil, err
	}

	rows, err := s.repo.ListEvents(ctx, circleID, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list events")
	}
	return eventsFromRows(rows), nil
}

func (s *service) RSVP(ctx context.Context, eventID, userID uuid.UUID, status enums.AttendeeStatus) (*RSVPDTO, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid rsvp status")
	}

	event, err := s.repo.FindEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "event not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load event")
	}
	if err := s.requireParticipant(ctx, event.CircleID, userID); err != nil {
		return nil, err
	}

	attendee := &models.CircleEventAttendee{
		EventID: eventID,
		UserID:  userID,
		Status:  status,
	}
	if err := s.repo.UpsertRSVP(ctx, attendee); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save rsvp")
	}
	return &RSVPDTO{EventID: eventID, UserID: userID, Status: status}, nil
}

func (s *service) ListActivity(ctx context.Context, circleID, viewerID uuid.UUID, params ListParams) (*ActivityList, error) {
	if err := s.requireParticipant(ctx, circleID, viewerID); err != nil {
		return nil, err
	}
	cursor, err := parseCursor(params.Cursor)
	if err != nil {
		return nil, err
	}

	rows, next, err := s.repo.ListActivity(ctx, circleID, params.Limit, cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list activity")
	}
	return &ActivityList{
		Items:  activitiesFromModels(rows),
		Cursor: encodeCursor(next),
	}, nil
}

// requireParticipant gates engagement reads and writes to the owner or an
// active member.
func (s *service) requireParticipant(ctx context.Context, circleID, userID uuid.UUID) error {
	circle, err := s.circles.FindByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "circle not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load circle")
	}
	if circle.OwnerID == userID {
		return nil
	}

	active, err := s.members.HasActiveMembership(ctx, circleID, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check membership")
	}
	if !active {
		return pkgerrors.New(pkgerrors.CodeForbidden, "circle engagement is limited to members")
	}
	return nil
}

func parseCursor(raw string) (*pagination.Cursor, error) {
	if raw == "" {
		return nil, nil
	}
	cursor, err := pagination.ParseCursor(raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return cursor, nil
}

func encodeCursor(cursor *pagination.Cursor) string {
	if cursor == nil {
		return ""
	}
	return pagination.EncodeCursor(*cursor)
}

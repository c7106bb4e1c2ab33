package engagement

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/pagination"
)

type stubEngagementRepo struct {
	messages   []*models.CircleMessage
	events     []*models.CircleEvent
	activities []*models.CircleActivity
	rsvps      []*models.CircleEventAttendee
	event      *models.CircleEvent
	msgRows    []messageWithSenderRow
	nextCursor *pagination.Cursor
}

func (s *stubEngagementRepo) CreateMessageTx(tx *gorm.DB, message *models.CircleMessage) error {
	message.ID = uuid.New()
	message.CreatedAt = time.Now().UTC()
	s.messages = append(s.messages, message)
	return nil
}

func (s *stubEngagementRepo) ListMessages(ctx context.Context, circleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]messageWithSenderRow, *pagination.Cursor, error) {
	return s.msgRows, s.nextCursor, nil
}

func (s *stubEngagementRepo) CreateEventTx(tx *gorm.DB, event *models.CircleEvent) error {
	event.ID = uuid.New()
	s.events = append(s.events, event)
	return nil
}

func (s *stubEngagementRepo) FindEventByID(ctx context.Context, id uuid.UUID) (*models.CircleEvent, error) {
	if s.event == nil || s.event.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.event, nil
}

func (s *stubEngagementRepo) ListEvents(ctx context.Context, circleID uuid.UUID, from time.Time) ([]eventWithGoingRow, error) {
	return nil, nil
}

func (s *stubEngagementRepo) UpsertRSVP(ctx context.Context, attendee *models.CircleEventAttendee) error {
	s.rsvps = append(s.rsvps, attendee)
	return nil
}

func (s *stubEngagementRepo) RecordActivityTx(tx *gorm.DB, activity *models.CircleActivity) error {
	s.activities = append(s.activities, activity)
	return nil
}

func (s *stubEngagementRepo) ListActivity(ctx context.Context, circleID uuid.UUID, limit int, cursor *pagination.Cursor) ([]models.CircleActivity, *pagination.Cursor, error) {
	return nil, nil, nil
}

type stubCircleLookup struct {
	circle *models.Circle
}

func (s *stubCircleLookup) FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error) {
	if s.circle == nil || s.circle.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.circle, nil
}

type stubMembershipChecker struct {
	active map[uuid.UUID]bool
}

func (s *stubMembershipChecker) HasActiveMembership(ctx context.Context, circleID, userID uuid.UUID) (bool, error) {
	return s.active[userID], nil
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	s.events = append(s.events, event)
	return nil
}

type fixture struct {
	repo    *stubEngagementRepo
	members *stubMembershipChecker
	emitter *stubEmitter
	svc     Service
	circle  *models.Circle
	member  uuid.UUID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	circle := &models.Circle{ID: uuid.New(), Name: "Book Club", OwnerID: uuid.New()}
	member := uuid.New()
	f := &fixture{
		repo:    &stubEngagementRepo{},
		members: &stubMembershipChecker{active: map[uuid.UUID]bool{member: true}},
		emitter: &stubEmitter{},
		circle:  circle,
		member:  member,
	}
	svc, err := NewService(f.repo, &stubCircleLookup{circle: circle}, f.members, stubTxRunner{}, f.emitter)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	f.svc = svc
	return f
}

func TestPostMessageRequiresMembership(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PostMessage(context.Background(), f.circle.ID, uuid.New(), "hello")
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestPostMessageAppendsActivity(t *testing.T) {
	f := newFixture(t)

	dto, err := f.svc.PostMessage(context.Background(), f.circle.ID, f.member, "  hello circle  ")
	if err != nil {
		t.Fatalf("post message: %v", err)
	}
	if dto.Content != "hello circle" {
		t.Fatalf("expected trimmed content, got %q", dto.Content)
	}
	if len(f.repo.activities) != 1 || f.repo.activities[0].Type != enums.ActivityTypeMessageSent {
		t.Fatalf("expected message_sent activity, got %+v", f.repo.activities)
	}
}

func TestPostMessageOwnerWithoutMembership(t *testing.T) {
	f := newFixture(t)

	if _, err := f.svc.PostMessage(context.Background(), f.circle.ID, f.circle.OwnerID, "hi"); err != nil {
		t.Fatalf("owner must be able to post without a membership row: %v", err)
	}
}

func TestPostMessageValidatesContent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.PostMessage(context.Background(), f.circle.ID, f.member, "   ")
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateEventEmitsAndLogs(t *testing.T) {
	f := newFixture(t)
	starts := time.Now().UTC().Add(48 * time.Hour)

	dto, err := f.svc.CreateEvent(context.Background(), f.circle.ID, f.member, CreateEventInput{
		Title:    "Monthly Meetup",
		StartsAt: starts,
	})
	if err != nil {
		t.Fatalf("create event: %v", err)
	}
	if dto.Title != "Monthly Meetup" {
		t.Fatalf("unexpected title %q", dto.Title)
	}
	if len(f.repo.activities) != 1 || f.repo.activities[0].Type != enums.ActivityTypeEventCreated {
		t.Fatalf("expected event_created activity, got %+v", f.repo.activities)
	}
	if len(f.emitter.events) != 1 || f.emitter.events[0].EventType != enums.EventCircleEventCreated {
		t.Fatalf("expected circle_event_created event, got %+v", f.emitter.events)
	}
}

func TestCreateEventValidatesWindow(t *testing.T) {
	f := newFixture(t)
	starts := time.Now().UTC().Add(48 * time.Hour)
	ends := starts.Add(-time.Hour)

	_, err := f.svc.CreateEvent(context.Background(), f.circle.ID, f.member, CreateEventInput{
		Title:    "Backwards",
		StartsAt: starts,
		EndsAt:   &ends,
	})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRSVPUnknownEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RSVP(context.Background(), uuid.New(), f.member, enums.AttendeeStatusGoing)
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestRSVPGatesOnEventCircle(t *testing.T) {
	f := newFixture(t)
	f.repo.event = &models.CircleEvent{ID: uuid.New(), CircleID: f.circle.ID, Title: "Meetup"}

	_, err := f.svc.RSVP(context.Background(), f.repo.event.ID, uuid.New(), enums.AttendeeStatusGoing)
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	dto, err := f.svc.RSVP(context.Background(), f.repo.event.ID, f.member, enums.AttendeeStatusMaybe)
	if err != nil {
		t.Fatalf("rsvp: %v", err)
	}
	if dto.Status != enums.AttendeeStatusMaybe {
		t.Fatalf("expected maybe, got %s", dto.Status)
	}
	if len(f.repo.rsvps) != 1 {
		t.Fatalf("expected one rsvp, got %d", len(f.repo.rsvps))
	}
}

func TestRSVPValidatesStatus(t *testing.T) {
	f := newFixture(t)
	f.repo.event = &models.CircleEvent{ID: uuid.New(), CircleID: f.circle.ID}

	_, err := f.svc.RSVP(context.Background(), f.repo.event.ID, f.member, enums.AttendeeStatus("perhaps"))
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListMessagesInvalidCursor(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListMessages(context.Background(), f.circle.ID, f.member, ListParams{Cursor: "bogus"})
	if code := pkgerrors.As(err).Code(); code != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

package memberships

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/internal/notifications"
	"github.com/heartlink/heartlink-backend/pkg/db"
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/outbox/payloads"
	"github.com/heartlink/heartlink-backend/pkg/visibility"
)

const membershipUniqueConstraint = "ux_circle_memberships_circle_user"

type membershipRepository interface {
	CreateTx(tx *gorm.DB, membership *models.CircleMembership) error
	FindByCircleAndUser(ctx context.Context, circleID, userID uuid.UUID) (*models.CircleMembership, error)
	HasActiveMembership(ctx context.Context, circleID, userID uuid.UUID) (bool, error)
	DeleteTx(tx *gorm.DB, circleID, userID uuid.UUID) (int64, error)
	ListActiveWithUsers(ctx context.Context, circleID uuid.UUID) ([]memberWithUserRow, error)
	SetShowFullName(ctx context.Context, circleID, userID uuid.UUID, show *bool) (int64, error)
	CountActiveTx(tx *gorm.DB, circleID uuid.UUID) (int64, error)
	RecordActivityTx(tx *gorm.DB, activity *models.CircleActivity) error
}

type circleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.Circle, error)
	AdjustMemberCountTx(tx *gorm.DB, circleID uuid.UUID, delta int) error
	SetMemberCountTx(tx *gorm.DB, circleID uuid.UUID, count int64) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type notifier interface {
	CreateTx(ctx context.Context, tx *gorm.DB, input notifications.CreateInput) error
}

// AddMemberInput describes a membership created inside a caller-owned
// transaction, usually the invitation accept path.
type AddMemberInput struct {
	CircleID  uuid.UUID
	UserID    uuid.UUID
	InvitedBy *uuid.UUID
}

// Service coordinates circle membership lifecycle and listing.
type Service interface {
	// AddMemberTx joins the user to the circle inside the caller's
	// transaction: membership row, counter increment, activity entry, and
	// outbox event all commit together.
	AddMemberTx(ctx context.Context, tx *gorm.DB, input AddMemberInput) (*models.CircleMembership, error)
	RemoveMember(ctx context.Context, circleID, userID, callerID uuid.UUID) error
	ListMembers(ctx context.Context, circleID, viewerID uuid.UUID) ([]MemberDTO, error)
	SetNamePreference(ctx context.Context, circleID, callerID, userID uuid.UUID, showFullName *bool) error
	Reconcile(ctx context.Context, circleID uuid.UUID) (int64, error)
}

// MemberViewCache caches rendered member lists. Implementations must treat
// failures as misses; the service never depends on the cache for correctness.
type MemberViewCache interface {
	GetMembers(ctx context.Context, circleID string) ([]MemberDTO, bool)
	StoreMembers(ctx context.Context, circleID string, members []MemberDTO)
}

// Option customizes optional service collaborators.
type Option func(*service)

// WithMemberViewCache serves ListMembers from the cache when possible.
func WithMemberViewCache(cache MemberViewCache) Option {
	return func(s *service) {
		s.viewCache = cache
	}
}

type service struct {
	repo      membershipRepository
	circles   circleRepository
	tx        txRunner
	events    eventEmitter
	notifier  notifier
	viewCache MemberViewCache
}

// NewService wires membership dependencies.
func NewService(repo membershipRepository, circles circleRepository, tx txRunner, events eventEmitter, notifier notifier, opts ...Option) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "membership repository required")
	}
	if circles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "circle repository required")
	}
	if tx == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "transaction runner required")
	}
	if events == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "event emitter required")
	}
	if notifier == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifier required")
	}
	svc := &service{repo: repo, circles: circles, tx: tx, events: events, notifier: notifier}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

func (s *service) AddMemberTx(ctx context.Context, tx *gorm.DB, input AddMemberInput) (*models.CircleMembership, error) {
	circle, err := s.circles.FindByIDTx(tx, input.CircleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "circle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load circle")
	}
	// The owner is tracked on the circle row and never holds a membership.
	if circle.OwnerID == input.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle owner cannot be added as a member")
	}

	membership := &models.CircleMembership{
		CircleID:  input.CircleID,
		UserID:    input.UserID,
		Status:    enums.MembershipStatusActive,
		InvitedBy: input.InvitedBy,
		JoinedAt:  time.Now().UTC(),
	}
	if err := s.repo.CreateTx(tx, membership); err != nil {
		if db.IsUniqueViolation(err, membershipUniqueConstraint) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "user is already a member of this circle")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create membership")
	}

	if err := s.circles.AdjustMemberCountTx(tx, input.CircleID, 1); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "increment member count")
	}
	if err := s.recordActivity(tx, input.CircleID, input.UserID, enums.ActivityTypeMemberJoined, nil); err != nil {
		return nil, err
	}
	if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
		EventType:     enums.EventMembershipChanged,
		AggregateType: enums.AggregateMembership,
		AggregateID:   membership.ID,
		Actor:         &outbox.ActorRef{UserID: input.UserID},
		Version:       1,
		Data: payloads.MembershipChangedEvent{
			CircleID:    input.CircleID,
			UserID:      input.UserID,
			Status:      enums.MembershipStatusActive,
			MemberCount: circle.MemberCount + 1,
		},
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emit membership event")
	}
	return membership, nil
}

func (s *service) RemoveMember(ctx context.Context, circleID, userID, callerID uuid.UUID) error {
	circle, err := s.loadCircle(ctx, circleID)
	if err != nil {
		return err
	}
	if callerID != circle.OwnerID && callerID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner or the member themselves can remove a membership")
	}
	if userID == circle.OwnerID {
		return pkgerrors.New(pkgerrors.CodeValidation, "the owner has no membership to remove")
	}

	removedByOwner := callerID == circle.OwnerID && callerID != userID
	activityType := enums.ActivityTypeMemberLeft
	if removedByOwner {
		activityType = enums.ActivityTypeMemberRemoved
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.DeleteTx(tx, circleID, userID)
		if err != nil {
			return fmt.Errorf("delete membership: %w", err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
		}
		if err := s.circles.AdjustMemberCountTx(tx, circleID, -1); err != nil {
			return fmt.Errorf("decrement member count: %w", err)
		}
		if err := s.recordActivity(tx, circleID, callerID, activityType, map[string]string{"user_id": userID.String()}); err != nil {
			return err
		}
		if removedByOwner {
			if err := s.notifier.CreateTx(ctx, tx, notifications.CreateInput{
				UserID:  userID,
				Type:    enums.NotificationTypeMemberRemoved,
				Title:   "Removed from circle",
				Message: fmt.Sprintf("You were removed from %s", circle.Name),
				Data:    map[string]string{"circle_id": circleID.String()},
			}); err != nil {
				return err
			}
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventMembershipChanged,
			AggregateType: enums.AggregateMembership,
			AggregateID:   circleID,
			Actor:         &outbox.ActorRef{UserID: callerID},
			Version:       1,
			Data: payloads.MembershipChangedEvent{
				CircleID:    circleID,
				UserID:      userID,
				Status:      enums.MembershipStatusRemoved,
				MemberCount: circle.MemberCount - 1,
			},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return typed
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "remove member")
	}
	return nil
}

// ListMembers returns the privacy-filtered member list. A viewer who may not
// see members gets an empty list rather than an error so circle pages render
// uniformly.
func (s *service) ListMembers(ctx context.Context, circleID, viewerID uuid.UUID) ([]MemberDTO, error) {
	circle, err := s.loadCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if !visibility.CanViewMembers(visibility.MemberViewInput{Circle: circle, ViewerID: viewerID}) {
		return []MemberDTO{}, nil
	}

	// The rendered list is viewer-independent once the gate passed, so a
	// single cached view per circle is safe.
	if s.viewCache != nil {
		if members, ok := s.viewCache.GetMembers(ctx, circleID.String()); ok {
			return members, nil
		}
	}

	rows, err := s.repo.ListActiveWithUsers(ctx, circleID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list members")
	}
	members := membersFromRows(rows)
	if s.viewCache != nil {
		s.viewCache.StoreMembers(ctx, circleID.String(), members)
	}
	return members, nil
}

func (s *service) SetNamePreference(ctx context.Context, circleID, callerID, userID uuid.UUID, showFullName *bool) error {
	if callerID != userID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "display preferences can only be changed by their owner")
	}

	affected, err := s.repo.SetShowFullName(ctx, circleID, userID, showFullName)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update name preference")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "membership not found")
	}
	return nil
}

// Reconcile recounts active memberships and rewrites the denormalized counter.
// Used by the correction cron job; returns the authoritative count.
func (s *service) Reconcile(ctx context.Context, circleID uuid.UUID) (int64, error) {
	if _, err := s.loadCircle(ctx, circleID); err != nil {
		return 0, err
	}

	var count int64
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		var err error
		count, err = s.repo.CountActiveTx(tx, circleID)
		if err != nil {
			return fmt.Errorf("count memberships: %w", err)
		}
		return s.circles.SetMemberCountTx(tx, circleID, count)
	})
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reconcile member count")
	}
	return count, nil
}

func (s *service) loadCircle(ctx context.Context, circleID uuid.UUID) (*models.Circle, error) {
	circle, err := s.circles.FindByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "circle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load circle")
	}
	return circle, nil
}

func (s *service) recordActivity(tx *gorm.DB, circleID, actorID uuid.UUID, activityType enums.ActivityType, data any) error {
	activity := &models.CircleActivity{
		CircleID: circleID,
		ActorID:  actorID,
		Type:     activityType,
	}
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode activity data")
		}
		activity.Data = encoded
	}
	if err := s.repo.RecordActivityTx(tx, activity); err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

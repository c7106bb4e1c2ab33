package invitations

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/internal/memberships"
	"github.com/heartlink/heartlink-backend/internal/notifications"
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/outbox/payloads"
	"github.com/heartlink/heartlink-backend/pkg/visibility"
)

const maxMessageLen = 500

type invitationRepository interface {
	CreateTx(tx *gorm.DB, invitation *models.CircleInvitation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.CircleInvitation, error)
	ResolveTx(tx *gorm.DB, id uuid.UUID, status enums.InvitationStatus, respondedAt time.Time) (int64, error)
	ListForInvitee(ctx context.Context, inviteeID uuid.UUID, status *enums.InvitationStatus) ([]invitationWithCircleRow, error)
}

type circleLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error)
}

type userLookup interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

type memberAdder interface {
	AddMemberTx(ctx context.Context, tx *gorm.DB, input memberships.AddMemberInput) (*models.CircleMembership, error)
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

// InviteInput carries the owner's invitation request.
type InviteInput struct {
	InviteeID uuid.UUID
	Message   *string
}

// Service coordinates the invitation workflow: pending offers, terminal
// responses, and the membership handoff on acceptance.
type Service interface {
	Invite(ctx context.Context, circleID, inviterID uuid.UUID, input InviteInput) (*InvitationDTO, error)
	Respond(ctx context.Context, invitationID, responderID uuid.UUID, decision enums.InvitationStatus) (*InvitationDTO, error)
	ListForInvitee(ctx context.Context, inviteeID uuid.UUID, status *enums.InvitationStatus) ([]InvitationWithCircle, error)
}

type service struct {
	repo     invitationRepository
	circles  circleLookup
	users    userLookup
	members  memberAdder
	tx       txRunner
	events   eventEmitter
	notifier notifier
}

// NewService wires invitation dependencies.
func NewService(repo invitationRepository, circles circleLookup, users userLookup, members memberAdder, tx txRunner, events eventEmitter, notifier notifier) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "invitation repository required")
	}
	if circles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "circle lookup required")
	}
	if users == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "user lookup required")
	}
	if members == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "membership service required")
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
	return &service{
		repo:     repo,
		circles:  circles,
		users:    users,
		members:  members,
		tx:       tx,
		events:   events,
		notifier: notifier,
	}, nil
}

func (s *service) Invite(ctx context.Context, circleID, inviterID uuid.UUID, input InviteInput) (*InvitationDTO, error) {
	circle, err := s.circles.FindByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "circle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load circle")
	}
	if circle.OwnerID != inviterID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can invite members")
	}
	if input.InviteeID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invitee id required")
	}
	if input.InviteeID == inviterID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "you cannot invite yourself")
	}
	if input.Message != nil && len(strings.TrimSpace(*input.Message)) > maxMessageLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invitation message is too long")
	}

	if _, err := s.users.FindByID(ctx, input.InviteeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitee not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitee")
	}

	inviter, err := s.users.FindByID(ctx, inviterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load inviter")
	}
	inviterName := visibility.DisplayName(visibility.DisplayNameInput{
		FirstName:  inviter.FirstName,
		LastName:   inviter.LastName,
		GlobalPref: inviter.ShowFullName,
	})

	invitation := &models.CircleInvitation{
		CircleID:  circleID,
		InviterID: inviterID,
		InviteeID: input.InviteeID,
		Status:    enums.InvitationStatusPending,
		Message:   input.Message,
	}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.CreateTx(tx, invitation); err != nil {
			return fmt.Errorf("create invitation: %w", err)
		}
		if err := s.notifier.CreateTx(ctx, tx, notifications.CreateInput{
			UserID:  input.InviteeID,
			Type:    enums.NotificationTypeCircleInvite,
			Title:   "Circle invitation",
			Message: fmt.Sprintf("%s invited you to join %s", inviterName, circle.Name),
			Data: map[string]string{
				"invitation_id": invitation.ID.String(),
				"circle_id":     circleID.String(),
			},
		}); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvitationCreated,
			AggregateType: enums.AggregateInvitation,
			AggregateID:   invitation.ID,
			Actor:         &outbox.ActorRef{UserID: inviterID},
			Version:       1,
			Data: payloads.InvitationCreatedEvent{
				InvitationID: invitation.ID,
				CircleID:     circleID,
				InviterID:    inviterID,
				InviteeID:    input.InviteeID,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create invitation")
	}
	return ToDTO(invitation), nil
}

// Respond moves a pending invitation to a terminal state. The accept path is
// a single transaction: a failure anywhere, including a duplicate membership,
// rolls the whole response back and the invitation stays pending.
func (s *service) Respond(ctx context.Context, invitationID, responderID uuid.UUID, decision enums.InvitationStatus) (*InvitationDTO, error) {
	if decision != enums.InvitationStatusAccepted && decision != enums.InvitationStatusRejected {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "decision must be accepted or rejected")
	}

	invitation, err := s.repo.FindByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invitation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load invitation")
	}
	if invitation.InviteeID != responderID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the invitee can respond to an invitation")
	}
	if invitation.Status != enums.InvitationStatusPending {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "invitation has already been resolved")
	}

	respondedAt := time.Now().UTC()
	responderName, err := s.responderName(ctx, responderID)
	if err != nil {
		return nil, err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		affected, err := s.repo.ResolveTx(tx, invitationID, decision, respondedAt)
		if err != nil {
			return fmt.Errorf("resolve invitation: %w", err)
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "invitation has already been resolved")
		}

		notificationType := enums.NotificationTypeInviteRejected
		notificationMsg := fmt.Sprintf("%s declined your invitation", responderName)
		if decision == enums.InvitationStatusAccepted {
			if _, err := s.members.AddMemberTx(ctx, tx, memberships.AddMemberInput{
				CircleID:  invitation.CircleID,
				UserID:    invitation.InviteeID,
				InvitedBy: &invitation.InviterID,
			}); err != nil {
				return err
			}
			notificationType = enums.NotificationTypeInviteAccepted
			notificationMsg = fmt.Sprintf("%s accepted your invitation", responderName)
		}

		if err := s.notifier.CreateTx(ctx, tx, notifications.CreateInput{
			UserID:  invitation.InviterID,
			Type:    notificationType,
			Title:   "Invitation update",
			Message: notificationMsg,
			Data: map[string]string{
				"invitation_id": invitation.ID.String(),
				"circle_id":     invitation.CircleID.String(),
			},
		}); err != nil {
			return err
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventInvitationResolved,
			AggregateType: enums.AggregateInvitation,
			AggregateID:   invitation.ID,
			Actor:         &outbox.ActorRef{UserID: responderID},
			Version:       1,
			Data: payloads.InvitationResolvedEvent{
				InvitationID: invitation.ID,
				CircleID:     invitation.CircleID,
				InviteeID:    invitation.InviteeID,
				Status:       decision,
				RespondedAt:  respondedAt,
			},
		})
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, typed
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "respond to invitation")
	}

	invitation.Status = decision
	invitation.RespondedAt = &respondedAt
	return ToDTO(invitation), nil
}

func (s *service) ListForInvitee(ctx context.Context, inviteeID uuid.UUID, status *enums.InvitationStatus) ([]InvitationWithCircle, error) {
	if status != nil && !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid invitation status filter")
	}

	rows, err := s.repo.ListForInvitee(ctx, inviteeID, status)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list invitations")
	}
	return invitationsFromRows(rows), nil
}

func (s *service) responderName(ctx context.Context, responderID uuid.UUID) (string, error) {
	responder, err := s.users.FindByID(ctx, responderID)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load responder")
	}
	return visibility.DisplayName(visibility.DisplayNameInput{
		FirstName:  responder.FirstName,
		LastName:   responder.LastName,
		GlobalPref: responder.ShowFullName,
	}), nil
}

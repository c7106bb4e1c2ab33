package circles

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
	"github.com/heartlink/heartlink-backend/pkg/outbox/payloads"
	"github.com/heartlink/heartlink-backend/pkg/visibility"
)

const maxNameLen = 120

type circleRepository interface {
	Create(ctx context.Context, dto CreateCircleDTO) (*models.Circle, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error)
	FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.Circle, error)
	Update(ctx context.Context, circle *models.Circle) error
	UpdateTx(tx *gorm.DB, circle *models.Circle) error
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]models.Circle, error)
	ListJoined(ctx context.Context, userID uuid.UUID) ([]models.Circle, error)
	DeleteCascadeTx(tx *gorm.DB, circleID uuid.UUID) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type eventEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// UpdateCircleInput captures the owner-editable circle fields.
type UpdateCircleInput struct {
	Name        *string
	Description *string
	Category    *string
	IsPrivate   *bool
	ShowMembers *bool
}

// Service exposes circle registry operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateCircleDTO) (*CircleDTO, error)
	Get(ctx context.Context, circleID, viewerID uuid.UUID) (*CircleDTO, error)
	Update(ctx context.Context, circleID, callerID uuid.UUID, input UpdateCircleInput) (*CircleDTO, error)
	Delete(ctx context.Context, circleID, callerID uuid.UUID) error
	ListOwned(ctx context.Context, ownerID uuid.UUID) ([]CircleDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID) ([]CircleDTO, error)
}

type service struct {
	repo   circleRepository
	tx     txRunner
	events eventEmitter
}

// NewService builds the circle registry service.
func NewService(repo circleRepository, tx txRunner, events eventEmitter) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("circle repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event emitter required")
	}
	return &service{repo: repo, tx: tx, events: events}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateCircleDTO) (*CircleDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle name is required")
	}
	if len(name) > maxNameLen {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle name too long")
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "owner id is required")
	}
	input.Name = name
	input.OwnerID = ownerID

	circle, err := s.repo.Create(ctx, input)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create circle")
	}
	return s.toDTO(circle, ownerID), nil
}

func (s *service) Get(ctx context.Context, circleID, viewerID uuid.UUID) (*CircleDTO, error) {
	circle, err := s.loadCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	return s.toDTO(circle, viewerID), nil
}

func (s *service) Update(ctx context.Context, circleID, callerID uuid.UUID, input UpdateCircleInput) (*CircleDTO, error) {
	circle, err := s.loadCircle(ctx, circleID)
	if err != nil {
		return nil, err
	}
	if circle.OwnerID != callerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can update a circle")
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle name is required")
		}
		if len(name) > maxNameLen {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "circle name too long")
		}
		circle.Name = name
	}
	if input.Description != nil {
		circle.Description = cloneStringPtr(input.Description)
	}
	if input.Category != nil {
		category := strings.TrimSpace(*input.Category)
		if category == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "category cannot be empty")
		}
		circle.Category = category
	}
	if input.IsPrivate != nil {
		circle.IsPrivate = *input.IsPrivate
	}
	if input.ShowMembers != nil {
		circle.ShowMembers = cloneBoolPtr(input.ShowMembers)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.UpdateTx(tx, circle); err != nil {
			return fmt.Errorf("save circle: %w", err)
		}
		return s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCircleChanged,
			AggregateType: enums.AggregateCircle,
			AggregateID:   circle.ID,
			Actor:         &outbox.ActorRef{UserID: callerID},
			Version:       1,
			Data: payloads.CircleChangedEvent{
				CircleID:    circle.ID,
				OwnerID:     circle.OwnerID,
				ShowMembers: circle.ShowMembers,
				MemberCount: circle.MemberCount,
			},
		})
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update circle")
	}
	return s.toDTO(circle, callerID), nil
}

func (s *service) Delete(ctx context.Context, circleID, callerID uuid.UUID) error {
	circle, err := s.loadCircle(ctx, circleID)
	if err != nil {
		return err
	}
	if circle.OwnerID != callerID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "only the owner can delete a circle")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.events.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventCircleDeleted,
			AggregateType: enums.AggregateCircle,
			AggregateID:   circle.ID,
			Actor:         &outbox.ActorRef{UserID: callerID},
			Version:       1,
			Data: payloads.CircleDeletedEvent{
				CircleID:  circle.ID,
				OwnerID:   circle.OwnerID,
				DeletedAt: time.Now().UTC(),
			},
		}); err != nil {
			return err
		}
		return s.repo.DeleteCascadeTx(tx, circle.ID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete circle")
	}
	return nil
}

func (s *service) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]CircleDTO, error) {
	rows, err := s.repo.ListOwned(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owned circles")
	}
	return s.toDTOs(rows, ownerID), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID) ([]CircleDTO, error) {
	owned, err := s.repo.ListOwned(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list owned circles")
	}
	joined, err := s.repo.ListJoined(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list joined circles")
	}

	seen := make(map[uuid.UUID]struct{}, len(owned))
	out := make([]CircleDTO, 0, len(owned)+len(joined))
	for i := range owned {
		seen[owned[i].ID] = struct{}{}
		out = append(out, *s.toDTO(&owned[i], userID))
	}
	for i := range joined {
		if _, dup := seen[joined[i].ID]; dup {
			continue
		}
		out = append(out, *s.toDTO(&joined[i], userID))
	}
	return out, nil
}

func (s *service) loadCircle(ctx context.Context, circleID uuid.UUID) (*models.Circle, error) {
	circle, err := s.repo.FindByID(ctx, circleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "circle not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load circle")
	}
	return circle, nil
}

func (s *service) toDTO(circle *models.Circle, viewerID uuid.UUID) *CircleDTO {
	canView := visibility.CanViewMembers(visibility.MemberViewInput{Circle: circle, ViewerID: viewerID})
	return FromModel(circle, canView)
}

func (s *service) toDTOs(rows []models.Circle, viewerID uuid.UUID) []CircleDTO {
	out := make([]CircleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *s.toDTO(&rows[i], viewerID))
	}
	return out
}

package circles

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
	pkgerrors "github.com/heartlink/heartlink-backend/pkg/errors"
	"github.com/heartlink/heartlink-backend/pkg/outbox"
)

type stubCircleRepo struct {
	circle  *models.Circle
	owned   []models.Circle
	joined  []models.Circle
	err     error
	deleted []uuid.UUID
}

func (s *stubCircleRepo) Create(ctx context.Context, dto CreateCircleDTO) (*models.Circle, error) {
	if s.err != nil {
		return nil, s.err
	}
	circle := dto.ToModel()
	circle.ID = uuid.New()
	if circle.Category == "" {
		circle.Category = "general"
	}
	return circle, nil
}

func (s *stubCircleRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.circle == nil || s.circle.ID != id {
		return nil, gorm.ErrRecordNotFound
	}
	return s.circle, nil
}

func (s *stubCircleRepo) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.Circle, error) {
	return s.FindByID(context.Background(), id)
}

func (s *stubCircleRepo) Update(ctx context.Context, circle *models.Circle) error {
	return s.err
}

func (s *stubCircleRepo) UpdateTx(tx *gorm.DB, circle *models.Circle) error {
	return s.err
}

func (s *stubCircleRepo) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]models.Circle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.owned, nil
}

func (s *stubCircleRepo) ListJoined(ctx context.Context, userID uuid.UUID) ([]models.Circle, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.joined, nil
}

func (s *stubCircleRepo) DeleteCascadeTx(tx *gorm.DB, circleID uuid.UUID) error {
	if s.err != nil {
		return s.err
	}
	s.deleted = append(s.deleted, circleID)
	return nil
}

type stubTxRunner struct {
	err error
}

func (s stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	if s.err != nil {
		return s.err
	}
	return fn(&gorm.DB{})
}

type stubEmitter struct {
	events []outbox.DomainEvent
	err    error
}

func (s *stubEmitter) Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error {
	if s.err != nil {
		return s.err
	}
	s.events = append(s.events, event)
	return nil
}

func newTestService(t *testing.T, repo circleRepository, emitter *stubEmitter) Service {
	t.Helper()
	svc, err := NewService(repo, stubTxRunner{}, emitter)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func boolPtr(v bool) *bool    { return &v }
func strPtr(v string) *string { return &v }

func TestNewServiceRequiresDeps(t *testing.T) {
	if _, err := NewService(nil, stubTxRunner{}, &stubEmitter{}); err == nil {
		t.Fatal("expected error without repo")
	}
	if _, err := NewService(&stubCircleRepo{}, nil, &stubEmitter{}); err == nil {
		t.Fatal("expected error without tx runner")
	}
	if _, err := NewService(&stubCircleRepo{}, stubTxRunner{}, nil); err == nil {
		t.Fatal("expected error without emitter")
	}
}

func TestServiceCreate(t *testing.T) {
	svc := newTestService(t, &stubCircleRepo{}, &stubEmitter{})
	ownerID := uuid.New()

	dto, err := svc.Create(context.Background(), ownerID, CreateCircleDTO{Name: "  Hiking Buddies  "})
	if err != nil {
		t.Fatalf("create circle: %v", err)
	}
	if dto.Name != "Hiking Buddies" {
		t.Fatalf("expected trimmed name, got %q", dto.Name)
	}
	if dto.OwnerID != ownerID {
		t.Fatalf("expected owner %s got %s", ownerID, dto.OwnerID)
	}
	if dto.MemberCount != 0 {
		t.Fatalf("new circle should start with zero members, got %d", dto.MemberCount)
	}
	if !dto.CanViewMembers {
		t.Fatal("owner should always see members of their own circle")
	}
}

func TestServiceCreateValidatesName(t *testing.T) {
	svc := newTestService(t, &stubCircleRepo{}, &stubEmitter{})

	_, err := svc.Create(context.Background(), uuid.New(), CreateCircleDTO{Name: "   "})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceGetAnnotatesVisibility(t *testing.T) {
	ownerID := uuid.New()
	circle := &models.Circle{ID: uuid.New(), Name: "Book Club", OwnerID: ownerID, ShowMembers: boolPtr(false)}
	svc := newTestService(t, &stubCircleRepo{circle: circle}, &stubEmitter{})

	dto, err := svc.Get(context.Background(), circle.ID, ownerID)
	if err != nil {
		t.Fatalf("get circle: %v", err)
	}
	if !dto.CanViewMembers {
		t.Fatal("owner must see members even when hidden")
	}

	dto, err = svc.Get(context.Background(), circle.ID, uuid.New())
	if err != nil {
		t.Fatalf("get circle: %v", err)
	}
	if dto.CanViewMembers {
		t.Fatal("stranger must not see hidden members")
	}
}

func TestServiceGetNotFound(t *testing.T) {
	svc := newTestService(t, &stubCircleRepo{}, &stubEmitter{})

	_, err := svc.Get(context.Background(), uuid.New(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestServiceUpdateOwnerOnly(t *testing.T) {
	circle := &models.Circle{ID: uuid.New(), Name: "Book Club", OwnerID: uuid.New()}
	svc := newTestService(t, &stubCircleRepo{circle: circle}, &stubEmitter{})

	_, err := svc.Update(context.Background(), circle.ID, uuid.New(), UpdateCircleInput{Name: strPtr("New Name")})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestServiceUpdateEmitsCircleChanged(t *testing.T) {
	ownerID := uuid.New()
	circle := &models.Circle{ID: uuid.New(), Name: "Book Club", OwnerID: ownerID}
	emitter := &stubEmitter{}
	svc := newTestService(t, &stubCircleRepo{circle: circle}, emitter)

	dto, err := svc.Update(context.Background(), circle.ID, ownerID, UpdateCircleInput{
		Name:        strPtr("Night Owls"),
		ShowMembers: boolPtr(false),
	})
	if err != nil {
		t.Fatalf("update circle: %v", err)
	}
	if dto.Name != "Night Owls" {
		t.Fatalf("expected updated name, got %q", dto.Name)
	}
	if dto.ShowMembers == nil || *dto.ShowMembers {
		t.Fatalf("expected show_members=false, got %v", dto.ShowMembers)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventCircleChanged {
		t.Fatalf("expected one circle_changed event, got %+v", emitter.events)
	}
}

func TestServiceDeleteOwnerOnlyAndCascades(t *testing.T) {
	ownerID := uuid.New()
	circle := &models.Circle{ID: uuid.New(), Name: "Book Club", OwnerID: ownerID}
	repo := &stubCircleRepo{circle: circle}
	emitter := &stubEmitter{}
	svc := newTestService(t, repo, emitter)

	if err := svc.Delete(context.Background(), circle.ID, uuid.New()); err == nil {
		t.Fatal("expected forbidden for non-owner")
	}

	if err := svc.Delete(context.Background(), circle.ID, ownerID); err != nil {
		t.Fatalf("delete circle: %v", err)
	}
	if len(repo.deleted) != 1 || repo.deleted[0] != circle.ID {
		t.Fatalf("expected cascade delete of %s, got %v", circle.ID, repo.deleted)
	}
	if len(emitter.events) != 1 || emitter.events[0].EventType != enums.EventCircleDeleted {
		t.Fatalf("expected circle_deleted event, got %+v", emitter.events)
	}
}

func TestServiceListMineMergesOwnedAndJoined(t *testing.T) {
	userID := uuid.New()
	owned := models.Circle{ID: uuid.New(), Name: "Mine", OwnerID: userID}
	joined := models.Circle{ID: uuid.New(), Name: "Joined", OwnerID: uuid.New()}
	repo := &stubCircleRepo{
		owned:  []models.Circle{owned},
		joined: []models.Circle{joined, owned},
	}
	svc := newTestService(t, repo, &stubEmitter{})

	out, err := svc.ListMine(context.Background(), userID)
	if err != nil {
		t.Fatalf("list mine: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected deduplicated merge of 2 circles, got %d", len(out))
	}
}

func TestServiceListMineDependencyError(t *testing.T) {
	svc := newTestService(t, &stubCircleRepo{err: errors.New("boom")}, &stubEmitter{})

	_, err := svc.ListMine(context.Background(), uuid.New())
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeDependency {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

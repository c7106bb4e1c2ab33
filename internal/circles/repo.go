package circles

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/internal/repo"
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// Repository handles circle persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds a GORM DB to circle operations.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// Create persists a new circle row.
func (r *Repository) Create(ctx context.Context, dto CreateCircleDTO) (*models.Circle, error) {
	circle := dto.ToModel()
	if err := r.DB(ctx).Create(circle).Error; err != nil {
		return nil, err
	}
	return circle, nil
}

// FindByID loads a circle by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Circle, error) {
	var circle models.Circle
	if err := r.DB(ctx).First(&circle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &circle, nil
}

// FindByIDTx loads a circle using the provided transaction.
func (r *Repository) FindByIDTx(tx *gorm.DB, id uuid.UUID) (*models.Circle, error) {
	if tx == nil {
		return nil, gorm.ErrInvalidTransaction
	}
	var circle models.Circle
	if err := tx.First(&circle, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &circle, nil
}

// Update saves the provided circle.
func (r *Repository) Update(ctx context.Context, circle *models.Circle) error {
	if circle == nil {
		return fmt.Errorf("circle is required")
	}
	return r.DB(ctx).Save(circle).Error
}

// UpdateTx persists the circle using the provided transaction.
func (r *Repository) UpdateTx(tx *gorm.DB, circle *models.Circle) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if circle == nil {
		return fmt.Errorf("circle is required")
	}
	return tx.Save(circle).Error
}

// ListOwned returns all circles owned by the provided user.
func (r *Repository) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]models.Circle, error) {
	var rows []models.Circle
	err := r.DB(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListJoined returns circles the user belongs to via an active membership.
// Owned circles are excluded; the owner never holds a membership row.
func (r *Repository) ListJoined(ctx context.Context, userID uuid.UUID) ([]models.Circle, error) {
	var rows []models.Circle
	err := r.DB(ctx).
		Joins("JOIN circle_memberships ON circle_memberships.circle_id = circles.id").
		Where("circle_memberships.user_id = ? AND circle_memberships.status = ?", userID, enums.MembershipStatusActive).
		Order("circles.created_at DESC").
		Find(&rows).Error
	return rows, err
}

// ListDriftedIDs returns circles whose denormalized member_count disagrees
// with the actual number of active memberships.
func (r *Repository) ListDriftedIDs(ctx context.Context, limit int) ([]uuid.UUID, error) {
	if limit <= 0 {
		limit = 100
	}
	var ids []uuid.UUID
	err := r.DB(ctx).
		Model(&models.Circle{}).
		Select("circles.id").
		Joins(`LEFT JOIN (
			SELECT circle_id, COUNT(*) AS active_count
			FROM circle_memberships
			WHERE status = ?
			GROUP BY circle_id
		) counts ON counts.circle_id = circles.id`, enums.MembershipStatusActive).
		Where("circles.member_count <> COALESCE(counts.active_count, 0)").
		Limit(limit).
		Scan(&ids).Error
	return ids, err
}

// AdjustMemberCountTx shifts member_count server-side inside the transaction.
// Decrements are floored at zero.
func (r *Repository) AdjustMemberCountTx(tx *gorm.DB, circleID uuid.UUID, delta int) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	expr := gorm.Expr("member_count + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN member_count + ? < 0 THEN 0 ELSE member_count + ? END", delta, delta)
	}
	return tx.Model(&models.Circle{}).
		Where("id = ?", circleID).
		UpdateColumn("member_count", expr).Error
}

// SetMemberCountTx rewrites member_count to an absolute value.
func (r *Repository) SetMemberCountTx(tx *gorm.DB, circleID uuid.UUID, count int64) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Model(&models.Circle{}).
		Where("id = ?", circleID).
		UpdateColumn("member_count", count).Error
}

// DeleteCascadeTx removes the circle and every dependent row inside the
// provided transaction. Order matters: dependents first, circle last.
func (r *Repository) DeleteCascadeTx(tx *gorm.DB, circleID uuid.UUID) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if err := tx.Where("circle_id = ?", circleID).Delete(&models.CircleInvitation{}).Error; err != nil {
		return fmt.Errorf("delete invitations: %w", err)
	}
	if err := tx.Where("circle_id = ?", circleID).Delete(&models.CircleMessage{}).Error; err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	if err := tx.Where("circle_id = ?", circleID).Delete(&models.CircleActivity{}).Error; err != nil {
		return fmt.Errorf("delete activities: %w", err)
	}
	if err := tx.Where("event_id IN (?)",
		tx.Session(&gorm.Session{NewDB: true}).
			Model(&models.CircleEvent{}).
			Select("id").
			Where("circle_id = ?", circleID),
	).Delete(&models.CircleEventAttendee{}).Error; err != nil {
		return fmt.Errorf("delete attendees: %w", err)
	}
	if err := tx.Where("circle_id = ?", circleID).Delete(&models.CircleEvent{}).Error; err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	if err := tx.Where("circle_id = ?", circleID).Delete(&models.CircleMembership{}).Error; err != nil {
		return fmt.Errorf("delete memberships: %w", err)
	}
	if err := tx.Where("id = ?", circleID).Delete(&models.Circle{}).Error; err != nil {
		return fmt.Errorf("delete circle: %w", err)
	}
	return nil
}

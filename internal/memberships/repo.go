package memberships

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/internal/repo"
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// Repository exposes membership persistence operations.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateTx inserts a membership row inside the provided transaction. Unique
// violations on (circle_id, user_id) bubble up untranslated; the service layer
// owns the error taxonomy.
func (r *Repository) CreateTx(tx *gorm.DB, membership *models.CircleMembership) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(membership).Error
}

// FindByCircleAndUser loads the membership linking the user to the circle.
func (r *Repository) FindByCircleAndUser(ctx context.Context, circleID, userID uuid.UUID) (*models.CircleMembership, error) {
	var membership models.CircleMembership
	err := r.DB(ctx).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		First(&membership).Error
	if err != nil {
		return nil, err
	}
	return &membership, nil
}

// HasActiveMembership reports whether the user holds an active membership in
// the circle.
func (r *Repository) HasActiveMembership(ctx context.Context, circleID, userID uuid.UUID) (bool, error) {
	var count int64
	err := r.DB(ctx).
		Model(&models.CircleMembership{}).
		Where("circle_id = ? AND user_id = ? AND status = ?", circleID, userID, enums.MembershipStatusActive).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteTx removes the membership row inside the provided transaction and
// reports how many rows it hit.
func (r *Repository) DeleteTx(tx *gorm.DB, circleID, userID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	result := tx.
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		Delete(&models.CircleMembership{})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListActiveWithUsers returns the circle's active members joined with the
// user name parts and the account-wide display preference.
func (r *Repository) ListActiveWithUsers(ctx context.Context, circleID uuid.UUID) ([]memberWithUserRow, error) {
	var rows []memberWithUserRow
	err := r.DB(ctx).
		Model(&models.CircleMembership{}).
		Select("circle_memberships.*, users.first_name, users.last_name, users.show_full_name AS global_show_full_name").
		Joins("JOIN users ON users.id = circle_memberships.user_id").
		Where("circle_memberships.circle_id = ? AND circle_memberships.status = ?", circleID, enums.MembershipStatusActive).
		Order("circle_memberships.joined_at").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SetShowFullName updates the per-circle display override and reports whether
// a membership row was hit.
func (r *Repository) SetShowFullName(ctx context.Context, circleID, userID uuid.UUID, show *bool) (int64, error) {
	result := r.DB(ctx).
		Model(&models.CircleMembership{}).
		Where("circle_id = ? AND user_id = ?", circleID, userID).
		UpdateColumn("show_full_name", show)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// CountActiveTx counts active memberships inside the provided transaction.
func (r *Repository) CountActiveTx(tx *gorm.DB, circleID uuid.UUID) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	var count int64
	err := tx.
		Model(&models.CircleMembership{}).
		Where("circle_id = ? AND status = ?", circleID, enums.MembershipStatusActive).
		Count(&count).Error
	return count, err
}

// RecordActivityTx appends a circle activity entry inside the provided
// transaction. Membership changes log here so the engagement feed sees joins
// and removals without a cross-package dependency.
func (r *Repository) RecordActivityTx(tx *gorm.DB, activity *models.CircleActivity) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now().UTC()
	}
	return tx.Create(activity).Error
}

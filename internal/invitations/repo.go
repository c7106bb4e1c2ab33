package invitations

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/heartlink/heartlink-backend/internal/repo"
	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// Repository handles invitation persistence.
type Repository struct {
	repo.Base
}

// NewRepository binds the repo to the provided GORM connection.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db)}
}

// CreateTx inserts a pending invitation inside the provided transaction.
func (r *Repository) CreateTx(tx *gorm.DB, invitation *models.CircleInvitation) error {
	if tx == nil {
		return gorm.ErrInvalidTransaction
	}
	return tx.Create(invitation).Error
}

// FindByID loads an invitation by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CircleInvitation, error) {
	var invitation models.CircleInvitation
	if err := r.DB(ctx).First(&invitation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invitation, nil
}

// ResolveTx flips a pending invitation to a terminal status. The status guard
// in the WHERE clause makes concurrent responses lose cleanly: the second
// writer sees zero affected rows.
func (r *Repository) ResolveTx(tx *gorm.DB, id uuid.UUID, status enums.InvitationStatus, respondedAt time.Time) (int64, error) {
	if tx == nil {
		return 0, gorm.ErrInvalidTransaction
	}
	result := tx.Model(&models.CircleInvitation{}).
		Where("id = ? AND status = ?", id, enums.InvitationStatusPending).
		Updates(map[string]interface{}{
			"status":       status,
			"responded_at": respondedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// ListForInvitee returns the user's invitations joined with the circle summary
// and the inviter's name parts, newest first.
func (r *Repository) ListForInvitee(ctx context.Context, inviteeID uuid.UUID, status *enums.InvitationStatus) ([]invitationWithCircleRow, error) {
	query := r.DB(ctx).
		Model(&models.CircleInvitation{}).
		Select(`circle_invitations.*,
			circles.name AS circle_name,
			circles.category AS circle_category,
			circles.member_count AS circle_member_count,
			users.first_name AS inviter_first_name,
			users.last_name AS inviter_last_name,
			users.show_full_name AS inviter_show_full_name`).
		Joins("JOIN circles ON circles.id = circle_invitations.circle_id").
		Joins("JOIN users ON users.id = circle_invitations.inviter_id").
		Where("circle_invitations.invitee_id = ?", inviteeID)
	if status != nil {
		query = query.Where("circle_invitations.status = ?", *status)
	}

	var rows []invitationWithCircleRow
	if err := query.Order("circle_invitations.created_at DESC").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

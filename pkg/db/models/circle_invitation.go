package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// CircleInvitation is a pending offer from a circle owner to a prospective
// member. Once resolved (accepted/rejected) the row is immutable.
type CircleInvitation struct {
	ID          uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CircleID    uuid.UUID              `gorm:"column:circle_id;type:uuid;not null;index"`
	InviterID   uuid.UUID              `gorm:"column:inviter_id;type:uuid;not null"`
	InviteeID   uuid.UUID              `gorm:"column:invitee_id;type:uuid;not null;index"`
	Status      enums.InvitationStatus `gorm:"column:status;type:invitation_status;not null;default:'pending'"`
	Message     *string                `gorm:"column:message"`
	RespondedAt *time.Time             `gorm:"column:responded_at"`
	CreatedAt   time.Time              `gorm:"column:created_at;autoCreateTime"`
}

package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// CircleMembership links a user with a circle. The owner is tracked on the
// circle row itself and never appears here.
type CircleMembership struct {
	ID       uuid.UUID              `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CircleID uuid.UUID              `gorm:"column:circle_id;type:uuid;not null;uniqueIndex:ux_circle_memberships_circle_user"`
	UserID   uuid.UUID              `gorm:"column:user_id;type:uuid;not null;uniqueIndex:ux_circle_memberships_circle_user"`
	Status   enums.MembershipStatus `gorm:"column:status;type:membership_status;not null"`
	// InvitedBy records the inviter when the membership came out of an
	// accepted invitation.
	InvitedBy *uuid.UUID `gorm:"column:invited_by;type:uuid"`
	// ShowFullName overrides the member's global display preference for this
	// circle only; NULL inherits the global setting.
	ShowFullName *bool     `gorm:"column:show_full_name"`
	JoinedAt     time.Time `gorm:"column:joined_at;not null"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

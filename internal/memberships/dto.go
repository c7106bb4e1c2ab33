package memberships

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// MembershipDTO is the transport shape for a raw membership record.
type MembershipDTO struct {
	ID           uuid.UUID              `json:"id"`
	CircleID     uuid.UUID              `json:"circle_id"`
	UserID       uuid.UUID              `json:"user_id"`
	Status       enums.MembershipStatus `json:"status"`
	InvitedBy    *uuid.UUID             `json:"invited_by,omitempty"`
	ShowFullName *bool                  `json:"show_full_name,omitempty"`
	JoinedAt     time.Time              `json:"joined_at"`
	CreatedAt    time.Time              `json:"created_at"`
}

// MemberDTO is a privacy-filtered member listing entry. The name is already
// rendered according to the member's layered show-full-name preference, so
// callers never see raw name parts they were not meant to.
type MemberDTO struct {
	MembershipID uuid.UUID `json:"membership_id"`
	UserID       uuid.UUID `json:"user_id"`
	DisplayName  string    `json:"display_name"`
	JoinedAt     time.Time `json:"joined_at"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(m *models.CircleMembership) *MembershipDTO {
	if m == nil {
		return nil
	}

	return &MembershipDTO{
		ID:           m.ID,
		CircleID:     m.CircleID,
		UserID:       m.UserID,
		Status:       m.Status,
		InvitedBy:    copyUUIDPointer(m.InvitedBy),
		ShowFullName: copyBoolPointer(m.ShowFullName),
		JoinedAt:     m.JoinedAt,
		CreatedAt:    m.CreatedAt,
	}
}

func copyUUIDPointer(src *uuid.UUID) *uuid.UUID {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func copyBoolPointer(src *bool) *bool {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

package invitations

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// InvitationDTO is the transport shape for a circle invitation.
type InvitationDTO struct {
	ID          uuid.UUID              `json:"id"`
	CircleID    uuid.UUID              `json:"circle_id"`
	InviterID   uuid.UUID              `json:"inviter_id"`
	InviteeID   uuid.UUID              `json:"invitee_id"`
	Status      enums.InvitationStatus `json:"status"`
	Message     *string                `json:"message,omitempty"`
	RespondedAt *time.Time             `json:"responded_at,omitempty"`
	CreatedAt   time.Time              `json:"created_at"`
}

// InvitationWithCircle enriches an invitation with the circle summary and the
// inviter's privacy-filtered display name for inbox rendering.
type InvitationWithCircle struct {
	InvitationDTO
	CircleName        string `json:"circle_name"`
	CircleCategory    string `json:"circle_category"`
	CircleMemberCount int    `json:"circle_member_count"`
	InviterName       string `json:"inviter_name"`
}

// ToDTO converts a model to the external DTO.
func ToDTO(inv *models.CircleInvitation) *InvitationDTO {
	if inv == nil {
		return nil
	}

	return &InvitationDTO{
		ID:          inv.ID,
		CircleID:    inv.CircleID,
		InviterID:   inv.InviterID,
		InviteeID:   inv.InviteeID,
		Status:      inv.Status,
		Message:     copyStringPointer(inv.Message),
		RespondedAt: copyTimePointer(inv.RespondedAt),
		CreatedAt:   inv.CreatedAt,
	}
}

func copyStringPointer(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func copyTimePointer(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

package circles

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
)

// CircleDTO exposes circle data in API responses.
type CircleDTO struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Description    *string   `json:"description,omitempty"`
	Category       string    `json:"category"`
	IsPrivate      bool      `json:"is_private"`
	ShowMembers    *bool     `json:"show_members,omitempty"`
	OwnerID        uuid.UUID `json:"owner_id"`
	MemberCount    int       `json:"member_count"`
	CanViewMembers bool      `json:"can_view_members"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// CreateCircleDTO holds creation-time data for a new circle.
type CreateCircleDTO struct {
	Name        string
	Description *string
	Category    *string
	IsPrivate   *bool
	ShowMembers *bool
	OwnerID     uuid.UUID
}

// ToModel maps creation input onto a fresh circle row.
func (c CreateCircleDTO) ToModel() *models.Circle {
	circle := &models.Circle{
		Name:        c.Name,
		Description: cloneStringPtr(c.Description),
		ShowMembers: cloneBoolPtr(c.ShowMembers),
		OwnerID:     c.OwnerID,
	}
	if c.Category != nil {
		circle.Category = *c.Category
	}
	if c.IsPrivate != nil {
		circle.IsPrivate = *c.IsPrivate
	}
	return circle
}

// FromModel maps the persisted circle into a DTO; can_view_members is
// computed for the given viewer by the service.
func FromModel(m *models.Circle, canViewMembers bool) *CircleDTO {
	if m == nil {
		return nil
	}
	return &CircleDTO{
		ID:             m.ID,
		Name:           m.Name,
		Description:    cloneStringPtr(m.Description),
		Category:       m.Category,
		IsPrivate:      m.IsPrivate,
		ShowMembers:    cloneBoolPtr(m.ShowMembers),
		OwnerID:        m.OwnerID,
		MemberCount:    m.MemberCount,
		CanViewMembers: canViewMembers,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func cloneStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

func cloneBoolPtr(src *bool) *bool {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

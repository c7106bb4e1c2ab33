package users

import (
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/db/models"
)

// UserDTO is the transport shape that omits sensitive credentials.
type UserDTO struct {
	ID           uuid.UUID  `json:"id"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name"`
	LastName     string     `json:"last_name"`
	ShowFullName *bool      `json:"show_full_name,omitempty"`
	IsActive     bool       `json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	SystemRole   *string    `json:"system_role,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// CreateUserDTO holds the data required by the repo to persist a new user.
type CreateUserDTO struct {
	Email        string
	PasswordHash string
	FirstName    string
	LastName     string
	ShowFullName *bool
	SystemRole   *string
	IsActive     *bool
}

func FromModel(u *models.User) *UserDTO {
	if u == nil {
		return nil
	}

	return &UserDTO{
		ID:           u.ID,
		Email:        u.Email,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		ShowFullName: copyBoolPointer(u.ShowFullName),
		IsActive:     u.IsActive,
		LastLoginAt:  u.LastLoginAt,
		SystemRole:   u.SystemRole,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (c CreateUserDTO) ToModel() *models.User {
	isActive := true
	if c.IsActive != nil {
		isActive = *c.IsActive
	}

	return &models.User{
		ID:           uuid.New(),
		Email:        c.Email,
		PasswordHash: c.PasswordHash,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		ShowFullName: copyBoolPointer(c.ShowFullName),
		IsActive:     isActive,
		SystemRole:   c.SystemRole,
	}
}

func copyBoolPointer(src *bool) *bool {
	if src == nil {
		return nil
	}
	dst := *src
	return &dst
}

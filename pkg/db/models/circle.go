package models

import (
	"time"

	"github.com/google/uuid"
)

// Circle is a named social group owned by a single user.
//
// MemberCount is denormalized: it mirrors the number of active memberships and
// is only ever mutated through the membership repository's server-side
// increment/decrement expressions.
type Circle struct {
	ID          uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	Name        string    `gorm:"column:name;not null"`
	Description *string   `gorm:"column:description"`
	Category    string    `gorm:"column:category;not null;default:'general'"`
	IsPrivate   bool      `gorm:"column:is_private;not null;default:false"`
	// ShowMembers is nullable: circles created before the flag existed carry
	// NULL, which readers must treat as visible.
	ShowMembers *bool     `gorm:"column:show_members"`
	OwnerID     uuid.UUID `gorm:"column:owner_id;type:uuid;not null"`
	MemberCount int       `gorm:"column:member_count;not null;default:0"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// MembersVisible resolves the nullable ShowMembers flag, defaulting to true.
func (c *Circle) MembersVisible() bool {
	if c == nil {
		return false
	}
	if c.ShowMembers == nil {
		return true
	}
	return *c.ShowMembers
}

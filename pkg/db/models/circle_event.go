package models

import (
	"time"

	"github.com/google/uuid"
)

// CircleEvent is a scheduled gathering organised within a circle.
type CircleEvent struct {
	ID          uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CircleID    uuid.UUID  `gorm:"column:circle_id;type:uuid;not null;index"`
	CreatorID   uuid.UUID  `gorm:"column:creator_id;type:uuid;not null"`
	Title       string     `gorm:"column:title;type:text;not null"`
	Description *string    `gorm:"column:description;type:text"`
	Location    *string    `gorm:"column:location;type:text"`
	StartsAt    time.Time  `gorm:"column:starts_at;type:timestamptz;not null"`
	EndsAt      *time.Time `gorm:"column:ends_at;type:timestamptz"`
	CreatedAt   time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/heartlink/heartlink-backend/pkg/enums"
)

// CircleActivity is an append-only feed entry describing something that
// happened inside a circle.
type CircleActivity struct {
	ID        uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CircleID  uuid.UUID          `gorm:"column:circle_id;type:uuid;not null;index"`
	ActorID   uuid.UUID          `gorm:"column:actor_id;type:uuid;not null"`
	Type      enums.ActivityType `gorm:"column:type;type:activity_type;not null"`
	Data      json.RawMessage    `gorm:"column:data;type:jsonb"`
	CreatedAt time.Time          `gorm:"column:created_at;autoCreateTime"`
}

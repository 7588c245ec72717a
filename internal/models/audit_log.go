package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AdminAuditLog records an administrative action. Rows are append-only.
type AdminAuditLog struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ActorEmail string         `gorm:"type:varchar(255);not null;index" json:"actor_email" validate:"required"`
	Action     string         `gorm:"type:varchar(64);not null;index" json:"action" validate:"required"`
	EntityType string         `gorm:"type:varchar(64);not null;index" json:"entity_type" validate:"required"`
	EntityID   string         `gorm:"type:varchar(64)" json:"entity_id"`
	Detail     datatypes.JSON `gorm:"type:jsonb" json:"detail"`
	CreatedAt  time.Time      `gorm:"index" json:"created_at"`
}

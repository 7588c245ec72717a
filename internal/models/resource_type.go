package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceType is a provider-agnostic catalog entry, e.g. "Relational Database"
// or "Managed Container Orchestrator". The Category decides whether it may be
// attached to blueprints (SHARED), stacks (NON_SHARED), or either (BOTH).
type ResourceType struct {
	ID          uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string           `gorm:"type:varchar(128);uniqueIndex;not null" json:"name" validate:"required"`
	Description string           `gorm:"type:text" json:"description"`
	Category    ResourceCategory `gorm:"type:varchar(16);not null;index" json:"category" validate:"required,oneof=SHARED NON_SHARED BOTH"`
	Enabled     bool             `gorm:"not null;default:true;index" json:"enabled"`
	CreatedBy   string           `gorm:"type:varchar(255);index" json:"created_by"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	DeletedAt   gorm.DeletedAt   `gorm:"index" json:"-"`
}

// UsableInBlueprints reports whether the category allows blueprint usage.
func (r *ResourceType) UsableInBlueprints() bool {
	return r.Category == CategoryShared || r.Category == CategoryBoth
}

// UsableInStacks reports whether the category allows direct stack usage.
func (r *ResourceType) UsableInStacks() bool {
	return r.Category == CategoryNonShared || r.Category == CategoryBoth
}

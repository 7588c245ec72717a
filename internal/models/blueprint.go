package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Blueprint is a reusable composition of shared infrastructure resources for
// one provider and stack type. Stacks are instantiated from blueprints.
type Blueprint struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name            string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"name" validate:"required"`
	Description     string         `gorm:"type:text" json:"description"`
	StackType       StackType      `gorm:"type:varchar(32);not null;index" json:"stack_type" validate:"required"`
	CloudProviderID uuid.UUID      `gorm:"type:uuid;not null;index" json:"cloud_provider_id" validate:"required"`
	Enabled         bool           `gorm:"not null;default:true;index" json:"enabled"`
	CreatedBy       string         `gorm:"type:varchar(255);index" json:"created_by"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`

	CloudProvider *CloudProvider      `gorm:"foreignKey:CloudProviderID" json:"cloud_provider,omitempty"`
	Resources     []BlueprintResource `gorm:"foreignKey:BlueprintID" json:"resources,omitempty"`
}

// BlueprintResource attaches one resource mapping to a blueprint with its
// property configuration.
type BlueprintResource struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	BlueprintID   uuid.UUID      `gorm:"type:uuid;not null;index" json:"blueprint_id" validate:"required"`
	MappingID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"mapping_id" validate:"required"`
	Name          string         `gorm:"type:varchar(128);not null" json:"name" validate:"required"`
	Configuration datatypes.JSON `gorm:"type:jsonb" json:"configuration"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Mapping *ResourceTypeCloudMapping `gorm:"foreignKey:MappingID" json:"mapping,omitempty"`
}

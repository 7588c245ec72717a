package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ResourceTypeCloudMapping binds a ResourceType to a CloudProvider and carries
// the Terraform module used to provision it there. A mapping is only usable
// once it is complete (module location set and at least one property schema)
// and enabled.
type ResourceTypeCloudMapping struct {
	ID              uuid.UUID          `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ResourceTypeID  uuid.UUID          `gorm:"type:uuid;not null;index:idx_mappings_type_provider,unique" json:"resource_type_id" validate:"required"`
	CloudProviderID uuid.UUID          `gorm:"type:uuid;not null;index:idx_mappings_type_provider,unique" json:"cloud_provider_id" validate:"required"`
	ModuleLocation  string             `gorm:"type:text" json:"module_location"`
	LocationType    ModuleLocationType `gorm:"type:varchar(16)" json:"location_type" validate:"omitempty,oneof=GIT FILE_SYSTEM REGISTRY"`
	ModuleVersion   string             `gorm:"type:varchar(64)" json:"module_version"`
	Enabled         bool               `gorm:"not null;default:false;index" json:"enabled"`
	CreatedBy       string             `gorm:"type:varchar(255);index" json:"created_by"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
	DeletedAt       gorm.DeletedAt     `gorm:"index" json:"-"`

	ResourceType  *ResourceType    `gorm:"foreignKey:ResourceTypeID" json:"resource_type,omitempty"`
	CloudProvider *CloudProvider   `gorm:"foreignKey:CloudProviderID" json:"cloud_provider,omitempty"`
	Properties    []PropertySchema `gorm:"foreignKey:MappingID" json:"properties,omitempty"`
}

// HasModuleLocation reports whether a non-blank Terraform module location is set.
func (m *ResourceTypeCloudMapping) HasModuleLocation() bool {
	return strings.TrimSpace(m.ModuleLocation) != ""
}

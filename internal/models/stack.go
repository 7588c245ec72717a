package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Stack is a deployable unit instantiated from a blueprint. CloudName is the
// normalized identifier used in generated infrastructure names and must be
// unique across the platform.
type Stack struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name            string              `gorm:"type:varchar(128);not null" json:"name" validate:"required"`
	CloudName       string              `gorm:"type:varchar(64);uniqueIndex;not null" json:"cloud_name" validate:"required"`
	Description     string              `gorm:"type:text" json:"description"`
	StackType       StackType           `gorm:"type:varchar(32);not null;index" json:"stack_type" validate:"required"`
	Language        ProgrammingLanguage `gorm:"type:varchar(16)" json:"language"`
	BlueprintID     uuid.UUID           `gorm:"type:uuid;not null;index" json:"blueprint_id" validate:"required"`
	CloudProviderID uuid.UUID           `gorm:"type:uuid;not null;index" json:"cloud_provider_id" validate:"required"`
	TeamID          *uuid.UUID          `gorm:"type:uuid;index" json:"team_id,omitempty"`
	DomainID        *uuid.UUID          `gorm:"type:uuid;index" json:"domain_id,omitempty"`
	CategoryID      *uuid.UUID          `gorm:"type:uuid;index" json:"category_id,omitempty"`
	CollectionID    *uuid.UUID          `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	Public          bool                `gorm:"not null;default:false" json:"public"`
	RoutePath       string              `gorm:"type:varchar(32)" json:"route_path"`
	Enabled         bool                `gorm:"not null;default:true;index" json:"enabled"`
	CreatedBy       string              `gorm:"type:varchar(255);not null;index" json:"created_by"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
	DeletedAt       gorm.DeletedAt      `gorm:"index" json:"-"`

	Blueprint     *Blueprint      `gorm:"foreignKey:BlueprintID" json:"blueprint,omitempty"`
	CloudProvider *CloudProvider  `gorm:"foreignKey:CloudProviderID" json:"cloud_provider,omitempty"`
	Resources     []StackResource `gorm:"foreignKey:StackID" json:"resources,omitempty"`
}

// SupportsPublicExposure reports whether this stack type may be reachable
// from outside the platform.
func (s *Stack) SupportsPublicExposure() bool {
	switch s.StackType {
	case StackTypeRestfulServerless, StackTypeRestfulAPI, StackTypeEventDrivenAPI:
		return true
	}
	return false
}

// RequiresLanguage reports whether the stack type carries application code.
func (s *Stack) RequiresLanguage() bool {
	return s.StackType != StackTypeInfrastructure
}

// StackResource attaches one resource mapping to a stack. Configuration holds
// the validated property values plus, once generated, the provisioning
// metadata under the "provisioning" key.
type StackResource struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	StackID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"stack_id" validate:"required"`
	MappingID     uuid.UUID      `gorm:"type:uuid;not null;index" json:"mapping_id" validate:"required"`
	Name          string         `gorm:"type:varchar(128);not null" json:"name" validate:"required"`
	Configuration datatypes.JSON `gorm:"type:jsonb" json:"configuration"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	Mapping *ResourceTypeCloudMapping `gorm:"foreignKey:MappingID" json:"mapping,omitempty"`
}

// ProvisioningKey is the Configuration key provisioning metadata is stored under.
const ProvisioningKey = "provisioning"

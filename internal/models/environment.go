package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Environment is a deployment environment (DEV, PROD).
type Environment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        EnvironmentName `gorm:"type:varchar(16);uniqueIndex;not null" json:"name" validate:"required,oneof=DEV PROD"`
	Description string          `gorm:"type:text" json:"description"`
	Enabled     bool            `gorm:"not null;default:true" json:"enabled"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `gorm:"index" json:"-"`

	Configs []EnvironmentConfig `gorm:"foreignKey:EnvironmentID" json:"configs,omitempty"`
}

// EnvironmentConfig is one key/value setting scoped to an environment and,
// optionally, a cloud provider.
type EnvironmentConfig struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	EnvironmentID   uuid.UUID      `gorm:"type:uuid;not null;index:idx_env_configs_key,unique" json:"environment_id" validate:"required"`
	CloudProviderID *uuid.UUID     `gorm:"type:uuid;index" json:"cloud_provider_id,omitempty"`
	Key             string         `gorm:"type:varchar(128);not null;index:idx_env_configs_key,unique" json:"key" validate:"required"`
	Value           string         `gorm:"type:text;not null" json:"value"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

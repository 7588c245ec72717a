package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CloudProvider is a deployment target such as aws or on-prem.
type CloudProvider struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"type:varchar(64);uniqueIndex;not null" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	Enabled     bool           `gorm:"not null;default:true;index" json:"enabled"`
	CreatedBy   string         `gorm:"type:varchar(255);index" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

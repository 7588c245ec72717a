package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Team is an owning group for stacks.
type Team struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	OwnerEmail  string         `gorm:"type:varchar(255);index" json:"owner_email" validate:"omitempty,email"`
	CreatedBy   string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Domain is a business domain stacks can be filed under.
type Domain struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedBy   string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Category is a free-form classification label for stacks.
type Category struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedBy   string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// StackCollection groups related stacks, e.g. one product's services.
type StackCollection struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string         `gorm:"type:varchar(128);uniqueIndex;not null" json:"name" validate:"required"`
	Description string         `gorm:"type:text" json:"description"`
	CreatedBy   string         `gorm:"type:varchar(255)" json:"created_by"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

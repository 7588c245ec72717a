package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PropertySchema declares one configurable property of a mapping, with
// optional validation rules stored as JSON. Recognized rule keys depend on
// DataType: minLength/maxLength/pattern/patternMessage for STRING, min/max
// for NUMBER, minItems/maxItems for LIST.
type PropertySchema struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	MappingID    uuid.UUID        `gorm:"type:uuid;not null;index:idx_properties_mapping_name,unique" json:"mapping_id" validate:"required"`
	Name         string           `gorm:"type:varchar(128);not null;index:idx_properties_mapping_name,unique" json:"name" validate:"required"`
	DataType     PropertyDataType `gorm:"type:varchar(16);not null" json:"data_type" validate:"required,oneof=STRING NUMBER BOOLEAN LIST"`
	Required     bool             `gorm:"not null;default:false" json:"required"`
	DefaultValue string           `gorm:"type:text" json:"default_value"`
	Description  string           `gorm:"type:text" json:"description"`
	Rules        datatypes.JSON   `gorm:"type:jsonb" json:"rules"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	DeletedAt    gorm.DeletedAt   `gorm:"index" json:"-"`
}

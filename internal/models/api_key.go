package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// APIKeyStatus is derived, never stored: revocation wins over expiry.
type APIKeyStatus string

const (
	APIKeyActive  APIKeyStatus = "ACTIVE"
	APIKeyExpired APIKeyStatus = "EXPIRED"
	APIKeyRevoked APIKeyStatus = "REVOKED"
)

// APIKey is a long-lived credential. Only the bcrypt hash is stored; the
// prefix (first 20 characters of the plaintext) is kept for lookup so
// authentication does not need to hash against every row.
type APIKey struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string         `gorm:"type:varchar(128);not null" json:"name" validate:"required"`
	Description  string         `gorm:"type:text" json:"description"`
	Type         APIKeyType     `gorm:"type:varchar(16);not null;index" json:"type" validate:"required,oneof=USER SYSTEM"`
	KeyPrefix    string         `gorm:"type:varchar(20);not null;index" json:"key_prefix"`
	KeyHash      string         `gorm:"type:varchar(128);not null" json:"-"`
	OwnerEmail   string         `gorm:"type:varchar(255);not null;index" json:"owner_email" validate:"required,email"`
	ExpiresAt    time.Time      `gorm:"not null;index" json:"expires_at"`
	LastUsedAt   *time.Time     `json:"last_used_at,omitempty"`
	Revoked      bool           `gorm:"not null;default:false;index" json:"revoked"`
	RevokedAt    *time.Time     `json:"revoked_at,omitempty"`
	RotatedAt    *time.Time     `gorm:"index" json:"rotated_at,omitempty"`
	ReplacedByID *uuid.UUID     `gorm:"type:uuid" json:"replaced_by_id,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}

// Status derives the key state at the given instant.
func (k *APIKey) Status(now time.Time) APIKeyStatus {
	if k.Revoked {
		return APIKeyRevoked
	}
	if now.After(k.ExpiresAt) {
		return APIKeyExpired
	}
	return APIKeyActive
}

// Usable reports whether the key may authenticate requests at the given
// instant. A rotated key stays usable until its rotation grace elapses.
func (k *APIKey) Usable(now time.Time, rotationGrace time.Duration) bool {
	if k.Status(now) != APIKeyActive {
		return false
	}
	if k.RotatedAt != nil && now.After(k.RotatedAt.Add(rotationGrace)) {
		return false
	}
	return true
}

// ExpiringSoon reports whether the key is active and expires within window.
func (k *APIKey) ExpiringSoon(now time.Time, window time.Duration) bool {
	return k.Status(now) == APIKeyActive && k.ExpiresAt.Before(now.Add(window))
}

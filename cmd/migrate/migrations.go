package main

import (
	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
)

// registerModels returns all models that need migration
func registerModels() []interface{} {
	return []interface{}{
		// Catalog
		&models.CloudProvider{},
		&models.ResourceType{},
		&models.ResourceTypeCloudMapping{},
		&models.PropertySchema{},

		// Composition
		&models.Blueprint{},
		&models.BlueprintResource{},
		&models.Stack{},
		&models.StackResource{},

		// Organization
		&models.Team{},
		&models.Domain{},
		&models.Category{},
		&models.StackCollection{},
		&models.Environment{},
		&models.EnvironmentConfig{},

		// Access and audit
		&models.APIKey{},
		&models.AdminAuditLog{},
	}
}

// runMigrations executes all database migrations
func runMigrations(db *gorm.DB) error {
	models := registerModels()

	// Run AutoMigrate for all models
	if err := db.AutoMigrate(models...); err != nil {
		return err
	}

	// Run custom migrations
	return runCustomMigrations(db)
}

// runCustomMigrations handles schema changes AutoMigrate can't handle
func runCustomMigrations(db *gorm.DB) error {
	migrations := []func(*gorm.DB) error{
		enableUUIDExtension,
		addStackIndexes,
	}

	for _, migration := range migrations {
		if err := migration(db); err != nil {
			return err
		}
	}

	return nil
}

// enableUUIDExtension ensures UUID generation is available
func enableUUIDExtension(db *gorm.DB) error {
	return db.Exec(`CREATE EXTENSION IF NOT EXISTS "pgcrypto"`).Error
}

// addStackIndexes adds custom indexes for common stack lookups
func addStackIndexes(db *gorm.DB) error {
	return db.Exec(`
		CREATE INDEX IF NOT EXISTS idx_stacks_creator_team
		ON stacks(created_by, team_id)
		WHERE deleted_at IS NULL
	`).Error
}

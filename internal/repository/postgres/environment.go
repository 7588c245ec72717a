package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type environmentRepository struct {
	base[models.Environment]
	db *gorm.DB
}

func NewEnvironmentRepository(db *gorm.DB) repository.EnvironmentRepository {
	return &environmentRepository{base: newBase[models.Environment](db), db: db}
}

func (r *environmentRepository) GetByName(ctx context.Context, name models.EnvironmentName) (*models.Environment, error) {
	return getBy[models.Environment](ctx, r.db, "name = ?", name)
}

type environmentConfigRepository struct {
	base[models.EnvironmentConfig]
	db *gorm.DB
}

func NewEnvironmentConfigRepository(db *gorm.DB) repository.EnvironmentConfigRepository {
	return &environmentConfigRepository{base: newBase[models.EnvironmentConfig](db), db: db}
}

func (r *environmentConfigRepository) ListByEnvironment(ctx context.Context, environmentID uuid.UUID) ([]models.EnvironmentConfig, error) {
	return listBy[models.EnvironmentConfig](ctx, r.db, "environment_id = ?", environmentID)
}

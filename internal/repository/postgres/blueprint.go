package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

type blueprintRepository struct {
	base[models.Blueprint]
	db *gorm.DB
}

func NewBlueprintRepository(db *gorm.DB) repository.BlueprintRepository {
	return &blueprintRepository{base: newBase[models.Blueprint](db), db: db}
}

func (r *blueprintRepository) GetByName(ctx context.Context, name string) (*models.Blueprint, error) {
	return getBy[models.Blueprint](ctx, r.db, "name = ?", name)
}

func (r *blueprintRepository) ListByProvider(ctx context.Context, cloudProviderID uuid.UUID) ([]models.Blueprint, error) {
	return listBy[models.Blueprint](ctx, r.db, "cloud_provider_id = ?", cloudProviderID)
}

func (r *blueprintRepository) ListByStackType(ctx context.Context, stackType models.StackType) ([]models.Blueprint, error) {
	return listBy[models.Blueprint](ctx, r.db, "stack_type = ?", stackType)
}

func (r *blueprintRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type blueprintResourceRepository struct {
	base[models.BlueprintResource]
	db *gorm.DB
}

func NewBlueprintResourceRepository(db *gorm.DB) repository.BlueprintResourceRepository {
	return &blueprintResourceRepository{base: newBase[models.BlueprintResource](db), db: db}
}

func (r *blueprintResourceRepository) ListByBlueprint(ctx context.Context, blueprintID uuid.UUID) ([]models.BlueprintResource, error) {
	return listBy[models.BlueprintResource](ctx, r.db, "blueprint_id = ?", blueprintID)
}

func (r *blueprintResourceRepository) DeleteByBlueprint(ctx context.Context, blueprintID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("blueprint_id = ?", blueprintID).Delete(&models.BlueprintResource{}).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete blueprint resources failed")
	}
	return nil
}

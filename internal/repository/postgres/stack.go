package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

type stackRepository struct {
	base[models.Stack]
	db *gorm.DB
}

func NewStackRepository(db *gorm.DB) repository.StackRepository {
	return &stackRepository{base: newBase[models.Stack](db), db: db}
}

func (r *stackRepository) GetByCloudName(ctx context.Context, cloudName string) (*models.Stack, error) {
	return getBy[models.Stack](ctx, r.db, "cloud_name = ?", cloudName)
}

func (r *stackRepository) ExistsByNameAndOwner(ctx context.Context, name, owner string) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Stack{}).Where("name = ? AND created_by = ?", name, owner).Count(&n).Error; err != nil {
		return false, appErr.Wrap(err, appErr.CodeInternal, "count stacks by name and owner failed")
	}
	return n > 0, nil
}

func (r *stackRepository) ListByOwner(ctx context.Context, email string) ([]models.Stack, error) {
	return listBy[models.Stack](ctx, r.db, "created_by = ?", email)
}

func (r *stackRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Stack, error) {
	return listBy[models.Stack](ctx, r.db, "team_id = ?", teamID)
}

func (r *stackRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.Stack, error) {
	return listBy[models.Stack](ctx, r.db, "collection_id = ?", collectionID)
}

func (r *stackRepository) CountByBlueprint(ctx context.Context, blueprintID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Stack{}).Where("blueprint_id = ?", blueprintID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count stacks by blueprint failed")
	}
	return n, nil
}

func (r *stackRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type stackResourceRepository struct {
	base[models.StackResource]
	db *gorm.DB
}

func NewStackResourceRepository(db *gorm.DB) repository.StackResourceRepository {
	return &stackResourceRepository{base: newBase[models.StackResource](db), db: db}
}

func (r *stackResourceRepository) ListByStack(ctx context.Context, stackID uuid.UUID) ([]models.StackResource, error) {
	return listBy[models.StackResource](ctx, r.db, "stack_id = ?", stackID)
}

func (r *stackResourceRepository) DeleteByStack(ctx context.Context, stackID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("stack_id = ?", stackID).Delete(&models.StackResource{}).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete stack resources failed")
	}
	return nil
}

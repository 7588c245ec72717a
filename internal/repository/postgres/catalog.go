package postgres

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

type cloudProviderRepository struct {
	base[models.CloudProvider]
	db *gorm.DB
}

func NewCloudProviderRepository(db *gorm.DB) repository.CloudProviderRepository {
	return &cloudProviderRepository{base: newBase[models.CloudProvider](db), db: db}
}

func (r *cloudProviderRepository) GetByName(ctx context.Context, name string) (*models.CloudProvider, error) {
	return getBy[models.CloudProvider](ctx, r.db, "name = ?", name)
}

func (r *cloudProviderRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type resourceTypeRepository struct {
	base[models.ResourceType]
	db *gorm.DB
}

func NewResourceTypeRepository(db *gorm.DB) repository.ResourceTypeRepository {
	return &resourceTypeRepository{base: newBase[models.ResourceType](db), db: db}
}

func (r *resourceTypeRepository) GetByName(ctx context.Context, name string) (*models.ResourceType, error) {
	return getBy[models.ResourceType](ctx, r.db, "name = ?", name)
}

func (r *resourceTypeRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type mappingRepository struct {
	base[models.ResourceTypeCloudMapping]
	db *gorm.DB
}

func NewMappingRepository(db *gorm.DB) repository.MappingRepository {
	return &mappingRepository{base: newBase[models.ResourceTypeCloudMapping](db), db: db}
}

func (r *mappingRepository) GetByPair(ctx context.Context, resourceTypeID, cloudProviderID uuid.UUID) (*models.ResourceTypeCloudMapping, error) {
	return getBy[models.ResourceTypeCloudMapping](ctx, r.db, "resource_type_id = ? AND cloud_provider_id = ?", resourceTypeID, cloudProviderID)
}

func (r *mappingRepository) ListByProvider(ctx context.Context, cloudProviderID uuid.UUID) ([]models.ResourceTypeCloudMapping, error) {
	return listBy[models.ResourceTypeCloudMapping](ctx, r.db, "cloud_provider_id = ?", cloudProviderID)
}

func (r *mappingRepository) ListByResourceType(ctx context.Context, resourceTypeID uuid.UUID) ([]models.ResourceTypeCloudMapping, error) {
	return listBy[models.ResourceTypeCloudMapping](ctx, r.db, "resource_type_id = ?", resourceTypeID)
}

func (r *mappingRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type propertySchemaRepository struct {
	base[models.PropertySchema]
	db *gorm.DB
}

func NewPropertySchemaRepository(db *gorm.DB) repository.PropertySchemaRepository {
	return &propertySchemaRepository{base: newBase[models.PropertySchema](db), db: db}
}

func (r *propertySchemaRepository) ListByMapping(ctx context.Context, mappingID uuid.UUID) ([]models.PropertySchema, error) {
	return listBy[models.PropertySchema](ctx, r.db, "mapping_id = ?", mappingID)
}

func (r *propertySchemaRepository) CountByMapping(ctx context.Context, mappingID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.PropertySchema{}).Where("mapping_id = ?", mappingID).Count(&n).Error; err != nil {
		return 0, appErr.Wrap(err, appErr.CodeInternal, "count property schemas failed")
	}
	return n, nil
}

func (r *propertySchemaRepository) DeleteByMapping(ctx context.Context, mappingID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("mapping_id = ?", mappingID).Delete(&models.PropertySchema{}).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "delete property schemas failed")
	}
	return nil
}

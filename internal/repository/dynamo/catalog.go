package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type cloudProviderRepository struct {
	store[models.CloudProvider]
}

func NewCloudProviderRepository(client *dynamodb.Client) repository.CloudProviderRepository {
	return &cloudProviderRepository{store: newStore[models.CloudProvider](client, tableCloudProviders)}
}

func (r *cloudProviderRepository) GetByName(ctx context.Context, name string) (*models.CloudProvider, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", name)
}

func (r *cloudProviderRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type resourceTypeRepository struct {
	store[models.ResourceType]
}

func NewResourceTypeRepository(client *dynamodb.Client) repository.ResourceTypeRepository {
	return &resourceTypeRepository{store: newStore[models.ResourceType](client, tableResourceTypes)}
}

func (r *resourceTypeRepository) GetByName(ctx context.Context, name string) (*models.ResourceType, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", name)
}

func (r *resourceTypeRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type mappingRepository struct {
	store[models.ResourceTypeCloudMapping]
}

func NewMappingRepository(client *dynamodb.Client) repository.MappingRepository {
	return &mappingRepository{store: newStore[models.ResourceTypeCloudMapping](client, tableMappings)}
}

func (r *mappingRepository) GetByPair(ctx context.Context, resourceTypeID, cloudProviderID uuid.UUID) (*models.ResourceTypeCloudMapping, error) {
	items, err := r.queryIndex(ctx, indexByResourceType, "ResourceTypeID", resourceTypeID,
		"#p = :p", map[string]any{"#p": "CloudProviderID", ":p": cloudProviderID})
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, notFound()
	}
	return &items[0], nil
}

func (r *mappingRepository) ListByProvider(ctx context.Context, cloudProviderID uuid.UUID) ([]models.ResourceTypeCloudMapping, error) {
	return r.queryIndex(ctx, indexByProvider, "CloudProviderID", cloudProviderID, "", nil)
}

func (r *mappingRepository) ListByResourceType(ctx context.Context, resourceTypeID uuid.UUID) ([]models.ResourceTypeCloudMapping, error) {
	return r.queryIndex(ctx, indexByResourceType, "ResourceTypeID", resourceTypeID, "", nil)
}

func (r *mappingRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type propertySchemaRepository struct {
	store[models.PropertySchema]
}

func NewPropertySchemaRepository(client *dynamodb.Client) repository.PropertySchemaRepository {
	return &propertySchemaRepository{store: newStore[models.PropertySchema](client, tablePropertySchemas)}
}

func (r *propertySchemaRepository) ListByMapping(ctx context.Context, mappingID uuid.UUID) ([]models.PropertySchema, error) {
	return r.queryIndex(ctx, indexByMapping, "MappingID", mappingID, "", nil)
}

func (r *propertySchemaRepository) CountByMapping(ctx context.Context, mappingID uuid.UUID) (int64, error) {
	items, err := r.ListByMapping(ctx, mappingID)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (r *propertySchemaRepository) DeleteByMapping(ctx context.Context, mappingID uuid.UUID) error {
	items, err := r.ListByMapping(ctx, mappingID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := r.Delete(ctx, item.ID); err != nil {
			return err
		}
	}
	return nil
}

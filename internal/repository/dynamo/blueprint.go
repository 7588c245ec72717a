package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type blueprintRepository struct {
	store[models.Blueprint]
}

func NewBlueprintRepository(client *dynamodb.Client) repository.BlueprintRepository {
	return &blueprintRepository{store: newStore[models.Blueprint](client, tableBlueprints)}
}

func (r *blueprintRepository) GetByName(ctx context.Context, name string) (*models.Blueprint, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", name)
}

func (r *blueprintRepository) ListByProvider(ctx context.Context, cloudProviderID uuid.UUID) ([]models.Blueprint, error) {
	return r.queryIndex(ctx, indexByProvider, "CloudProviderID", cloudProviderID, "", nil)
}

func (r *blueprintRepository) ListByStackType(ctx context.Context, stackType models.StackType) ([]models.Blueprint, error) {
	return r.queryIndex(ctx, indexByStackType, "StackType", string(stackType), "", nil)
}

func (r *blueprintRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type blueprintResourceRepository struct {
	store[models.BlueprintResource]
}

func NewBlueprintResourceRepository(client *dynamodb.Client) repository.BlueprintResourceRepository {
	return &blueprintResourceRepository{store: newStore[models.BlueprintResource](client, tableBlueprintResources)}
}

func (r *blueprintResourceRepository) ListByBlueprint(ctx context.Context, blueprintID uuid.UUID) ([]models.BlueprintResource, error) {
	return r.queryIndex(ctx, indexByBlueprint, "BlueprintID", blueprintID, "", nil)
}

func (r *blueprintResourceRepository) DeleteByBlueprint(ctx context.Context, blueprintID uuid.UUID) error {
	items, err := r.ListByBlueprint(ctx, blueprintID)
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

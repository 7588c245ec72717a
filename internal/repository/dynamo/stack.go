package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type stackRepository struct {
	store[models.Stack]
}

func NewStackRepository(client *dynamodb.Client) repository.StackRepository {
	return &stackRepository{store: newStore[models.Stack](client, tableStacks)}
}

func (r *stackRepository) GetByCloudName(ctx context.Context, cloudName string) (*models.Stack, error) {
	return r.getOneByIndex(ctx, indexByCloudName, "CloudName", cloudName)
}

func (r *stackRepository) ExistsByNameAndOwner(ctx context.Context, name, owner string) (bool, error) {
	items, err := r.ListByOwner(ctx, owner)
	if err != nil {
		return false, err
	}
	for i := range items {
		if items[i].Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *stackRepository) ListByOwner(ctx context.Context, email string) ([]models.Stack, error) {
	return r.queryIndex(ctx, indexByCreatedBy, "CreatedBy", email, "", nil)
}

func (r *stackRepository) ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Stack, error) {
	return r.queryIndex(ctx, indexByTeam, "TeamID", teamID, "", nil)
}

func (r *stackRepository) ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.Stack, error) {
	return r.queryIndex(ctx, indexByCollection, "CollectionID", collectionID, "", nil)
}

func (r *stackRepository) CountByBlueprint(ctx context.Context, blueprintID uuid.UUID) (int64, error) {
	items, err := r.queryIndex(ctx, indexByBlueprint, "BlueprintID", blueprintID, "", nil)
	if err != nil {
		return 0, err
	}
	return int64(len(items)), nil
}

func (r *stackRepository) CountEnabled(ctx context.Context) (int64, error) {
	return r.countEnabled(ctx)
}

type stackResourceRepository struct {
	store[models.StackResource]
}

func NewStackResourceRepository(client *dynamodb.Client) repository.StackResourceRepository {
	return &stackResourceRepository{store: newStore[models.StackResource](client, tableStackResources)}
}

func (r *stackResourceRepository) ListByStack(ctx context.Context, stackID uuid.UUID) ([]models.StackResource, error) {
	return r.queryIndex(ctx, indexByStack, "StackID", stackID, "", nil)
}

func (r *stackResourceRepository) DeleteByStack(ctx context.Context, stackID uuid.UUID) error {
	items, err := r.ListByStack(ctx, stackID)
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

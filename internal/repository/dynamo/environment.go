package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type environmentRepository struct {
	store[models.Environment]
}

func NewEnvironmentRepository(client *dynamodb.Client) repository.EnvironmentRepository {
	return &environmentRepository{store: newStore[models.Environment](client, tableEnvironments)}
}

func (r *environmentRepository) GetByName(ctx context.Context, name models.EnvironmentName) (*models.Environment, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", string(name))
}

type environmentConfigRepository struct {
	store[models.EnvironmentConfig]
}

func NewEnvironmentConfigRepository(client *dynamodb.Client) repository.EnvironmentConfigRepository {
	return &environmentConfigRepository{store: newStore[models.EnvironmentConfig](client, tableEnvironmentConfigs)}
}

func (r *environmentConfigRepository) ListByEnvironment(ctx context.Context, environmentID uuid.UUID) ([]models.EnvironmentConfig, error) {
	return r.queryIndex(ctx, indexByEnvironment, "EnvironmentID", environmentID, "", nil)
}

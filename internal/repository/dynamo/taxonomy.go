package dynamo

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type teamRepository struct {
	store[models.Team]
}

func NewTeamRepository(client *dynamodb.Client) repository.TeamRepository {
	return &teamRepository{store: newStore[models.Team](client, tableTeams)}
}

func (r *teamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", name)
}

type domainRepository struct {
	store[models.Domain]
}

func NewDomainRepository(client *dynamodb.Client) repository.DomainRepository {
	return &domainRepository{store: newStore[models.Domain](client, tableDomains)}
}

func (r *domainRepository) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", name)
}

type categoryRepository struct {
	store[models.Category]
}

func NewCategoryRepository(client *dynamodb.Client) repository.CategoryRepository {
	return &categoryRepository{store: newStore[models.Category](client, tableCategories)}
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", name)
}

type collectionRepository struct {
	store[models.StackCollection]
}

func NewStackCollectionRepository(client *dynamodb.Client) repository.StackCollectionRepository {
	return &collectionRepository{store: newStore[models.StackCollection](client, tableStackCollections)}
}

func (r *collectionRepository) GetByName(ctx context.Context, name string) (*models.StackCollection, error) {
	return r.getOneByIndex(ctx, indexByName, "Name", name)
}

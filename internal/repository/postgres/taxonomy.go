package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
)

type teamRepository struct {
	base[models.Team]
	db *gorm.DB
}

func NewTeamRepository(db *gorm.DB) repository.TeamRepository {
	return &teamRepository{base: newBase[models.Team](db), db: db}
}

func (r *teamRepository) GetByName(ctx context.Context, name string) (*models.Team, error) {
	return getBy[models.Team](ctx, r.db, "name = ?", name)
}

type domainRepository struct {
	base[models.Domain]
	db *gorm.DB
}

func NewDomainRepository(db *gorm.DB) repository.DomainRepository {
	return &domainRepository{base: newBase[models.Domain](db), db: db}
}

func (r *domainRepository) GetByName(ctx context.Context, name string) (*models.Domain, error) {
	return getBy[models.Domain](ctx, r.db, "name = ?", name)
}

type categoryRepository struct {
	base[models.Category]
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) repository.CategoryRepository {
	return &categoryRepository{base: newBase[models.Category](db), db: db}
}

func (r *categoryRepository) GetByName(ctx context.Context, name string) (*models.Category, error) {
	return getBy[models.Category](ctx, r.db, "name = ?", name)
}

type collectionRepository struct {
	base[models.StackCollection]
	db *gorm.DB
}

func NewStackCollectionRepository(db *gorm.DB) repository.StackCollectionRepository {
	return &collectionRepository{base: newBase[models.StackCollection](db), db: db}
}

func (r *collectionRepository) GetByName(ctx context.Context, name string) (*models.StackCollection, error) {
	return getBy[models.StackCollection](ctx, r.db, "name = ?", name)
}

package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/angryss/idp-engine/internal/models"
)

// Base defines the CRUD operations every entity repository provides.
// Implementations exist for PostgreSQL and DynamoDB; services depend only on
// these interfaces.
type Base[T any] interface {
	Create(ctx context.Context, obj *T) error
	GetByID(ctx context.Context, id uuid.UUID) (*T, error)
	Update(ctx context.Context, obj *T) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]T, error)
	Count(ctx context.Context) (int64, error)
}

type CloudProviderRepository interface {
	Base[models.CloudProvider]
	GetByName(ctx context.Context, name string) (*models.CloudProvider, error)
	CountEnabled(ctx context.Context) (int64, error)
}

type ResourceTypeRepository interface {
	Base[models.ResourceType]
	GetByName(ctx context.Context, name string) (*models.ResourceType, error)
	CountEnabled(ctx context.Context) (int64, error)
}

type MappingRepository interface {
	Base[models.ResourceTypeCloudMapping]
	// GetByPair looks up the mapping for a (resource type, provider) pair.
	GetByPair(ctx context.Context, resourceTypeID, cloudProviderID uuid.UUID) (*models.ResourceTypeCloudMapping, error)
	ListByProvider(ctx context.Context, cloudProviderID uuid.UUID) ([]models.ResourceTypeCloudMapping, error)
	ListByResourceType(ctx context.Context, resourceTypeID uuid.UUID) ([]models.ResourceTypeCloudMapping, error)
	CountEnabled(ctx context.Context) (int64, error)
}

type PropertySchemaRepository interface {
	Base[models.PropertySchema]
	ListByMapping(ctx context.Context, mappingID uuid.UUID) ([]models.PropertySchema, error)
	CountByMapping(ctx context.Context, mappingID uuid.UUID) (int64, error)
	DeleteByMapping(ctx context.Context, mappingID uuid.UUID) error
}

type BlueprintRepository interface {
	Base[models.Blueprint]
	GetByName(ctx context.Context, name string) (*models.Blueprint, error)
	ListByProvider(ctx context.Context, cloudProviderID uuid.UUID) ([]models.Blueprint, error)
	ListByStackType(ctx context.Context, stackType models.StackType) ([]models.Blueprint, error)
	CountEnabled(ctx context.Context) (int64, error)
}

type BlueprintResourceRepository interface {
	Base[models.BlueprintResource]
	ListByBlueprint(ctx context.Context, blueprintID uuid.UUID) ([]models.BlueprintResource, error)
	DeleteByBlueprint(ctx context.Context, blueprintID uuid.UUID) error
}

type StackRepository interface {
	Base[models.Stack]
	GetByCloudName(ctx context.Context, cloudName string) (*models.Stack, error)
	ExistsByNameAndOwner(ctx context.Context, name, owner string) (bool, error)
	ListByOwner(ctx context.Context, email string) ([]models.Stack, error)
	ListByTeam(ctx context.Context, teamID uuid.UUID) ([]models.Stack, error)
	ListByCollection(ctx context.Context, collectionID uuid.UUID) ([]models.Stack, error)
	CountByBlueprint(ctx context.Context, blueprintID uuid.UUID) (int64, error)
	CountEnabled(ctx context.Context) (int64, error)
}

type StackResourceRepository interface {
	Base[models.StackResource]
	ListByStack(ctx context.Context, stackID uuid.UUID) ([]models.StackResource, error)
	DeleteByStack(ctx context.Context, stackID uuid.UUID) error
}

type TeamRepository interface {
	Base[models.Team]
	GetByName(ctx context.Context, name string) (*models.Team, error)
}

type DomainRepository interface {
	Base[models.Domain]
	GetByName(ctx context.Context, name string) (*models.Domain, error)
}

type CategoryRepository interface {
	Base[models.Category]
	GetByName(ctx context.Context, name string) (*models.Category, error)
}

type StackCollectionRepository interface {
	Base[models.StackCollection]
	GetByName(ctx context.Context, name string) (*models.StackCollection, error)
}

type EnvironmentRepository interface {
	Base[models.Environment]
	GetByName(ctx context.Context, name models.EnvironmentName) (*models.Environment, error)
}

type EnvironmentConfigRepository interface {
	Base[models.EnvironmentConfig]
	ListByEnvironment(ctx context.Context, environmentID uuid.UUID) ([]models.EnvironmentConfig, error)
}

type APIKeyRepository interface {
	Base[models.APIKey]
	// ListByPrefix returns candidate keys for hash comparison during auth.
	ListByPrefix(ctx context.Context, prefix string) ([]models.APIKey, error)
	ListByOwner(ctx context.Context, email string) ([]models.APIKey, error)
	// ListExpiredActive returns non-revoked keys whose expiry has passed.
	ListExpiredActive(ctx context.Context, now time.Time) ([]models.APIKey, error)
	// ListRotatedBefore returns non-revoked keys rotated before cutoff.
	ListRotatedBefore(ctx context.Context, cutoff time.Time) ([]models.APIKey, error)
}

type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AdminAuditLog) error
	List(ctx context.Context, limit, offset int) ([]models.AdminAuditLog, error)
	ListByEntityType(ctx context.Context, entityType string, limit int) ([]models.AdminAuditLog, error)
}

// Registry aggregates every repository behind one handle so wiring stays in
// one place per backend.
type Registry struct {
	CloudProviders     CloudProviderRepository
	ResourceTypes      ResourceTypeRepository
	Mappings           MappingRepository
	Properties         PropertySchemaRepository
	Blueprints         BlueprintRepository
	BlueprintResources BlueprintResourceRepository
	Stacks             StackRepository
	StackResources     StackResourceRepository
	Teams              TeamRepository
	Domains            DomainRepository
	Categories         CategoryRepository
	Collections        StackCollectionRepository
	Environments       EnvironmentRepository
	EnvironmentConfigs EnvironmentConfigRepository
	APIKeys            APIKeyRepository
	AuditLogs          AuditLogRepository
}

package postgres

import (
	"gorm.io/gorm"

	"github.com/angryss/idp-engine/internal/repository"
)

// NewRegistry wires every PostgreSQL repository.
func NewRegistry(db *gorm.DB) *repository.Registry {
	return &repository.Registry{
		CloudProviders:     NewCloudProviderRepository(db),
		ResourceTypes:      NewResourceTypeRepository(db),
		Mappings:           NewMappingRepository(db),
		Properties:         NewPropertySchemaRepository(db),
		Blueprints:         NewBlueprintRepository(db),
		BlueprintResources: NewBlueprintResourceRepository(db),
		Stacks:             NewStackRepository(db),
		StackResources:     NewStackResourceRepository(db),
		Teams:              NewTeamRepository(db),
		Domains:            NewDomainRepository(db),
		Categories:         NewCategoryRepository(db),
		Collections:        NewStackCollectionRepository(db),
		Environments:       NewEnvironmentRepository(db),
		EnvironmentConfigs: NewEnvironmentConfigRepository(db),
		APIKeys:            NewAPIKeyRepository(db),
		AuditLogs:          NewAuditLogRepository(db),
	}
}

package dynamo

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/angryss/idp-engine/internal/repository"
)

// NewRegistry wires every DynamoDB repository.
func NewRegistry(client *dynamodb.Client) *repository.Registry {
	return &repository.Registry{
		CloudProviders:     NewCloudProviderRepository(client),
		ResourceTypes:      NewResourceTypeRepository(client),
		Mappings:           NewMappingRepository(client),
		Properties:         NewPropertySchemaRepository(client),
		Blueprints:         NewBlueprintRepository(client),
		BlueprintResources: NewBlueprintResourceRepository(client),
		Stacks:             NewStackRepository(client),
		StackResources:     NewStackResourceRepository(client),
		Teams:              NewTeamRepository(client),
		Domains:            NewDomainRepository(client),
		Categories:         NewCategoryRepository(client),
		Collections:        NewStackCollectionRepository(client),
		Environments:       NewEnvironmentRepository(client),
		EnvironmentConfigs: NewEnvironmentConfigRepository(client),
		APIKeys:            NewAPIKeyRepository(client),
		AuditLogs:          NewAuditLogRepository(client),
	}
}

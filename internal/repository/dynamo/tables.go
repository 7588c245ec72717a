package dynamo

import (
	"context"
	"errors"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"github.com/angryss/idp-engine/pkg/logger"
)

const (
	tableCloudProviders     = "idp_cloud_providers"
	tableResourceTypes      = "idp_resource_types"
	tableMappings           = "idp_resource_type_cloud_mappings"
	tablePropertySchemas    = "idp_property_schemas"
	tableBlueprints         = "idp_blueprints"
	tableBlueprintResources = "idp_blueprint_resources"
	tableStacks             = "idp_stacks"
	tableStackResources     = "idp_stack_resources"
	tableTeams              = "idp_teams"
	tableDomains            = "idp_domains"
	tableCategories         = "idp_categories"
	tableStackCollections   = "idp_stack_collections"
	tableEnvironments       = "idp_environments"
	tableEnvironmentConfigs = "idp_environment_configs"
	tableAPIKeys            = "idp_api_keys"
	tableAuditLogs          = "idp_audit_logs"
)

const (
	indexByName         = "Name-index"
	indexByResourceType = "ResourceTypeID-index"
	indexByProvider     = "CloudProviderID-index"
	indexByMapping      = "MappingID-index"
	indexByStackType    = "StackType-index"
	indexByBlueprint    = "BlueprintID-index"
	indexByCloudName    = "CloudName-index"
	indexByCreatedBy    = "CreatedBy-index"
	indexByTeam         = "TeamID-index"
	indexByCollection   = "CollectionID-index"
	indexByStack        = "StackID-index"
	indexByEnvironment  = "EnvironmentID-index"
	indexByKeyPrefix    = "KeyPrefix-index"
	indexByOwner        = "OwnerEmail-index"
	indexByEntityType   = "EntityType-index"
)

type tableSpec struct {
	name    string
	indexes []string // GSI hash attribute names, all string-typed
}

var tableSpecs = []tableSpec{
	{tableCloudProviders, []string{"Name"}},
	{tableResourceTypes, []string{"Name"}},
	{tableMappings, []string{"ResourceTypeID", "CloudProviderID"}},
	{tablePropertySchemas, []string{"MappingID"}},
	{tableBlueprints, []string{"Name", "CloudProviderID", "StackType"}},
	{tableBlueprintResources, []string{"BlueprintID"}},
	{tableStacks, []string{"CloudName", "CreatedBy", "TeamID", "CollectionID", "BlueprintID"}},
	{tableStackResources, []string{"StackID"}},
	{tableTeams, []string{"Name"}},
	{tableDomains, []string{"Name"}},
	{tableCategories, []string{"Name"}},
	{tableStackCollections, []string{"Name"}},
	{tableEnvironments, []string{"Name"}},
	{tableEnvironmentConfigs, []string{"EnvironmentID"}},
	{tableAPIKeys, []string{"KeyPrefix", "OwnerEmail"}},
	{tableAuditLogs, []string{"EntityType"}},
}

// EnsureTables creates every table with its indexes, skipping tables that
// already exist, and waits until they are active.
func EnsureTables(ctx context.Context, client *dynamodb.Client) error {
	log := logger.Named("dynamo")

	for _, spec := range tableSpecs {
		input := buildCreateTableInput(spec)
		_, err := client.CreateTable(ctx, input)
		if err != nil {
			var inUse *types.ResourceInUseException
			if errors.As(err, &inUse) {
				log.Debug("table exists", zap.String("table", spec.name))
				continue
			}
			return err
		}

		waiter := dynamodb.NewTableExistsWaiter(client)
		if err := waiter.Wait(ctx, &dynamodb.DescribeTableInput{
			TableName: aws.String(spec.name),
		}, 2*time.Minute); err != nil {
			return err
		}
		log.Info("table created", zap.String("table", spec.name))
	}
	return nil
}

func buildCreateTableInput(spec tableSpec) *dynamodb.CreateTableInput {
	attrs := []types.AttributeDefinition{
		{AttributeName: aws.String("ID"), AttributeType: types.ScalarAttributeTypeS},
	}
	var gsis []types.GlobalSecondaryIndex
	for _, attr := range spec.indexes {
		attrs = append(attrs, types.AttributeDefinition{
			AttributeName: aws.String(attr),
			AttributeType: types.ScalarAttributeTypeS,
		})
		gsis = append(gsis, types.GlobalSecondaryIndex{
			IndexName: aws.String(attr + "-index"),
			KeySchema: []types.KeySchemaElement{
				{AttributeName: aws.String(attr), KeyType: types.KeyTypeHash},
			},
			Projection: &types.Projection{ProjectionType: types.ProjectionTypeAll},
		})
	}

	input := &dynamodb.CreateTableInput{
		TableName:            aws.String(spec.name),
		BillingMode:          types.BillingModePayPerRequest,
		AttributeDefinitions: attrs,
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String("ID"), KeyType: types.KeyTypeHash},
		},
	}
	if len(gsis) > 0 {
		input.GlobalSecondaryIndexes = gsis
	}
	return input
}

package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

type fakeEnqueuer struct {
	enqueued []uuid.UUID
	fail     error
}

func (f *fakeEnqueuer) EnqueueGenerate(_ context.Context, stackID uuid.UUID) error {
	if f.fail != nil {
		return f.fail
	}
	f.enqueued = append(f.enqueued, stackID)
	return nil
}

type stackFixture struct {
	*testCatalog
	svc        StackService
	enqueuer   *fakeEnqueuer
	serverless models.Blueprint
	api        models.Blueprint
}

func newStackFixture(t *testing.T) *stackFixture {
	t.Helper()
	c := seedCatalog(t)
	ctx := context.Background()

	bps := c.blueprintService()
	serverless, err := bps.Create(ctx, "admin@corp.example", &BlueprintInput{
		Name:            "aws-serverless",
		StackType:       models.StackTypeRestfulServerless,
		CloudProviderID: c.aws.ID,
	})
	require.NoError(t, err)
	api, err := bps.Create(ctx, "admin@corp.example", &BlueprintInput{
		Name:            "aws-api",
		StackType:       models.StackTypeRestfulAPI,
		CloudProviderID: c.aws.ID,
		Resources: []BlueprintResourceInput{
			{MappingID: c.awsOrchestrator.ID},
		},
	})
	require.NoError(t, err)

	enqueuer := &fakeEnqueuer{}
	return &stackFixture{
		testCatalog: c,
		svc:         NewStackService(c.repos, NewAuditor(c.repos.AuditLogs), enqueuer),
		enqueuer:    enqueuer,
		serverless:  serverless.Blueprint,
		api:         api.Blueprint,
	}
}

func TestStackCreate(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	owner := Actor{Email: "jo@corp.example"}

	detail, err := f.svc.Create(ctx, owner, &StackInput{
		Name:        "Orders",
		CloudName:   "orders",
		BlueprintID: f.serverless.ID,
		Resources: []StackResourceInput{
			{MappingID: f.awsDatabase.ID, Configuration: map[string]any{"engine": "postgres"}},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StackTypeRestfulServerless, detail.StackType)
	assert.Equal(t, models.LanguageQuarkus, detail.Language, "language defaults from the stack type")
	assert.Equal(t, f.aws.ID, detail.CloudProviderID, "provider comes from the blueprint")
	assert.Equal(t, "jo@corp.example", detail.CreatedBy)
	require.Len(t, detail.Resources, 1)

	var config map[string]any
	require.NoError(t, json.Unmarshal(detail.Resources[0].Configuration, &config))
	assert.Equal(t, "postgres", config["engine"])
	assert.Equal(t, "1", config["instances"], "schema default applied")

	// Creation schedules metadata generation.
	require.Len(t, f.enqueuer.enqueued, 1)
	assert.Equal(t, detail.ID, f.enqueuer.enqueued[0])

	_, err = f.svc.Update(ctx, owner, detail.ID, &StackUpdate{Name: "Orders", Description: "order intake"})
	require.NoError(t, err)
	assert.Len(t, f.enqueuer.enqueued, 2, "updates re-enqueue generation")
}

func TestStackCreateCloudNameConflict(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	owner := Actor{Email: "jo@corp.example"}

	_, err := f.svc.Create(ctx, owner, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, owner, &StackInput{
		Name: "Orders Two", CloudName: "orders", BlueprintID: f.serverless.ID,
	})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeAlreadyExists))
}

func TestStackCreateNameUniquePerOwner(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, Actor{Email: "jo@corp.example"}, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Create(ctx, Actor{Email: "jo@corp.example"}, &StackInput{
		Name: "Orders", CloudName: "orders-v2", BlueprintID: f.serverless.ID,
	})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeAlreadyExists))

	// The same name under a different owner is fine.
	_, err = f.svc.Create(ctx, Actor{Email: "sam@corp.example"}, &StackInput{
		Name: "Orders", CloudName: "orders-sam", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)
}

func TestStackUpdateRenameCollision(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	owner := Actor{Email: "jo@corp.example"}

	_, err := f.svc.Create(ctx, owner, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)
	billing, err := f.svc.Create(ctx, owner, &StackInput{
		Name: "Billing", CloudName: "billing", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.Update(ctx, owner, billing.ID, &StackUpdate{Name: "Orders"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeAlreadyExists))

	// Saving without changing the name is not a collision.
	_, err = f.svc.Update(ctx, owner, billing.ID, &StackUpdate{Name: "Billing", Description: "invoices"})
	require.NoError(t, err)
}

func TestStackCreateTypeMustMatchBlueprint(t *testing.T) {
	f := newStackFixture(t)

	_, err := f.svc.Create(context.Background(), Actor{Email: "jo@corp.example"}, &StackInput{
		Name:        "Orders",
		CloudName:   "orders",
		StackType:   models.StackTypeEventDrivenAPI,
		BlueprintID: f.serverless.ID,
	})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestStackCreateInvalidCloudName(t *testing.T) {
	f := newStackFixture(t)

	_, err := f.svc.Create(context.Background(), Actor{Email: "jo@corp.example"}, &StackInput{
		Name: "Orders", CloudName: "orders--api", BlueprintID: f.serverless.ID,
	})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestStackCreateRejectsUnknownTeam(t *testing.T) {
	f := newStackFixture(t)
	bogus := uuid.New()

	_, err := f.svc.Create(context.Background(), Actor{Email: "jo@corp.example"}, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.serverless.ID, TeamID: &bogus,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "team does not exist")
}

func TestStackCreateRejectsSharedResource(t *testing.T) {
	f := newStackFixture(t)

	_, err := f.svc.Create(context.Background(), Actor{Email: "jo@corp.example"}, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.api.ID, Public: true, RoutePath: "/orders/",
		Resources: []StackResourceInput{
			{MappingID: f.awsOrchestrator.ID},
		},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be attached to stacks directly")
}

func TestStackOwnershipEnforced(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	owner := Actor{Email: "jo@corp.example"}
	other := Actor{Email: "sam@corp.example"}
	admin := Actor{Email: "admin@corp.example", Admin: true}

	detail, err := f.svc.Create(ctx, owner, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)

	_, err = f.svc.SetEnabled(ctx, other, detail.ID, false)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	_, err = f.svc.SetEnabled(ctx, admin, detail.ID, false)
	require.NoError(t, err)

	// The owner matches through a different identity domain.
	_, err = f.svc.SetEnabled(ctx, Actor{Email: "jo@idp.example"}, detail.ID, true)
	require.NoError(t, err)

	require.Error(t, f.svc.Delete(ctx, other, detail.ID))
	require.NoError(t, f.svc.Delete(ctx, owner, detail.ID))
}

func TestStackRequestProvisioning(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	owner := Actor{Email: "jo@corp.example"}

	detail, err := f.svc.Create(ctx, owner, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)
	f.enqueuer.enqueued = nil // drop the create-time enqueue

	require.NoError(t, f.svc.RequestProvisioning(ctx, owner, detail.ID))
	require.Len(t, f.enqueuer.enqueued, 1)
	assert.Equal(t, detail.ID, f.enqueuer.enqueued[0])

	require.Error(t, f.svc.RequestProvisioning(ctx, Actor{Email: "sam@corp.example"}, detail.ID))

	_, err = f.svc.SetEnabled(ctx, owner, detail.ID, false)
	require.NoError(t, err)
	err = f.svc.RequestProvisioning(ctx, owner, detail.ID)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestStackGenerateProvisioningMetadata(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()
	owner := Actor{Email: "jo@corp.example"}

	detail, err := f.svc.Create(ctx, owner, &StackInput{
		Name:        "Orders",
		CloudName:   "orders",
		BlueprintID: f.serverless.ID,
		Resources: []StackResourceInput{
			{MappingID: f.awsDatabase.ID, Name: "orders-db", Configuration: map[string]any{"engine": "postgres"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, f.svc.GenerateProvisioningMetadata(ctx, detail.ID))

	view, err := f.svc.GetProvisioning(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, "orders", view.CloudName)
	assert.Equal(t, models.ComputeLambda, view.ComputePlatform)
	assert.Equal(t, "lambda-provisioner", view.ComputeProvisioner)

	meta, ok := view.Resources["orders-db"]
	require.True(t, ok)
	assert.Equal(t, "git::https://git.corp.example/modules/aurora", meta.ModuleLocation)
	assert.Equal(t, "GIT", meta.LocationType)
	assert.Equal(t, "1.0.0", meta.ModuleVersion)
	assert.Equal(t, "aurora-postgresql-provisioner", meta.Provisioner)

	// The original configuration survives alongside the metadata.
	fresh, err := f.svc.Get(ctx, detail.ID)
	require.NoError(t, err)
	var config map[string]any
	require.NoError(t, json.Unmarshal(fresh.Resources[0].Configuration, &config))
	assert.Equal(t, "postgres", config["engine"])
	assert.Contains(t, config, models.ProvisioningKey)
}

func TestStackGenerateProvisioningMetadataRequiresModuleLocation(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()

	detail, err := f.svc.Create(ctx, Actor{Email: "jo@corp.example"}, &StackInput{
		Name:        "Orders",
		CloudName:   "orders",
		BlueprintID: f.serverless.ID,
		Resources: []StackResourceInput{
			{MappingID: f.awsDatabase.ID, Configuration: map[string]any{"engine": "postgres"}},
		},
	})
	require.NoError(t, err)

	f.awsDatabase.ModuleLocation = ""
	require.NoError(t, f.repos.Mappings.Update(ctx, &f.awsDatabase))

	err = f.svc.GenerateProvisioningMetadata(ctx, detail.ID)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestStackListFilters(t *testing.T) {
	f := newStackFixture(t)
	ctx := context.Background()

	team := models.Team{Name: "payments"}
	require.NoError(t, f.repos.Teams.Create(ctx, &team))

	_, err := f.svc.Create(ctx, Actor{Email: "jo@corp.example"}, &StackInput{
		Name: "Orders", CloudName: "orders", BlueprintID: f.serverless.ID, TeamID: &team.ID,
	})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, Actor{Email: "sam@corp.example"}, &StackInput{
		Name: "Billing", CloudName: "billing", BlueprintID: f.serverless.ID,
	})
	require.NoError(t, err)

	mine, err := f.svc.List(ctx, StackFilter{Owner: "jo@corp.example"})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "orders", mine[0].CloudName)

	byTeam, err := f.svc.List(ctx, StackFilter{TeamID: &team.ID})
	require.NoError(t, err)
	assert.Len(t, byTeam, 1)

	byType, err := f.svc.List(ctx, StackFilter{StackType: models.StackTypeRestfulServerless})
	require.NoError(t, err)
	assert.Len(t, byType, 2)

	// Filters combine: jo owns no API stacks.
	none, err := f.svc.List(ctx, StackFilter{Owner: "jo@corp.example", StackType: models.StackTypeRestfulAPI})
	require.NoError(t, err)
	assert.Empty(t, none)

	all, err := f.svc.List(ctx, StackFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/repository"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

func newTestTaxonomyService() (TaxonomyService, *repository.Registry) {
	repos := newFakeRegistry()
	return NewTaxonomyService(repos, NewAuditor(repos.AuditLogs)), repos
}

func TestTaxonomyTeamLifecycle(t *testing.T) {
	svc, _ := newTestTaxonomyService()
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, testActor, &NamedInput{Name: "payments", OwnerEmail: "lead@corp.example"})
	require.NoError(t, err)
	assert.Equal(t, "lead@corp.example", team.OwnerEmail)

	_, err = svc.CreateTeam(ctx, testActor, &NamedInput{Name: "payments"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeAlreadyExists))

	_, err = svc.CreateTeam(ctx, testActor, &NamedInput{Name: "  "})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	updated, err := svc.UpdateTeam(ctx, testActor, team.ID, &NamedInput{Name: "payments-platform", Description: "payments org"})
	require.NoError(t, err)
	assert.Equal(t, "payments-platform", updated.Name)

	require.NoError(t, svc.DeleteTeam(ctx, testActor, team.ID))
}

func TestTaxonomyDeleteTeamBlockedByStacks(t *testing.T) {
	svc, repos := newTestTaxonomyService()
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, testActor, &NamedInput{Name: "payments"})
	require.NoError(t, err)

	require.NoError(t, repos.Stacks.Create(ctx, &models.Stack{
		Name: "Orders", CloudName: "orders",
		StackType: models.StackTypeRestfulServerless,
		TeamID:    &team.ID,
		CreatedBy: "jo@corp.example",
	}))

	err = svc.DeleteTeam(ctx, testActor, team.ID)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestTaxonomyCollectionDeleteBlocked(t *testing.T) {
	svc, repos := newTestTaxonomyService()
	ctx := context.Background()

	coll, err := svc.CreateCollection(ctx, testActor, &NamedInput{Name: "storefront"})
	require.NoError(t, err)

	require.NoError(t, repos.Stacks.Create(ctx, &models.Stack{
		Name: "Orders", CloudName: "orders",
		StackType:    models.StackTypeRestfulServerless,
		CollectionID: &coll.ID,
		CreatedBy:    "jo@corp.example",
	}))

	err = svc.DeleteCollection(ctx, testActor, coll.ID)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestTaxonomyDomainsAndCategories(t *testing.T) {
	svc, _ := newTestTaxonomyService()
	ctx := context.Background()

	d, err := svc.CreateDomain(ctx, testActor, &NamedInput{Name: "commerce"})
	require.NoError(t, err)
	_, err = svc.CreateDomain(ctx, testActor, &NamedInput{Name: "commerce"})
	require.Error(t, err)

	c, err := svc.CreateCategory(ctx, testActor, &NamedInput{Name: "backend"})
	require.NoError(t, err)

	domains, err := svc.ListDomains(ctx)
	require.NoError(t, err)
	assert.Len(t, domains, 1)

	require.NoError(t, svc.DeleteDomain(ctx, testActor, d.ID))
	require.NoError(t, svc.DeleteCategory(ctx, testActor, c.ID))
}

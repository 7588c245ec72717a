package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

func newTestEnvironmentService() EnvironmentService {
	repos := newFakeRegistry()
	return NewEnvironmentService(repos, NewAuditor(repos.AuditLogs))
}

func TestEnvironmentCreate(t *testing.T) {
	svc := newTestEnvironmentService()
	ctx := context.Background()

	dev, err := svc.Create(ctx, testActor, &EnvironmentInput{Name: models.EnvironmentDev})
	require.NoError(t, err)
	assert.True(t, dev.Enabled)

	_, err = svc.Create(ctx, testActor, &EnvironmentInput{Name: models.EnvironmentDev})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeAlreadyExists))

	_, err = svc.Create(ctx, testActor, &EnvironmentInput{Name: "STAGING"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	found, err := svc.GetByName(ctx, models.EnvironmentDev)
	require.NoError(t, err)
	assert.Equal(t, dev.ID, found.ID)
}

func TestEnvironmentConfigUpsert(t *testing.T) {
	svc := newTestEnvironmentService()
	ctx := context.Background()

	env, err := svc.Create(ctx, testActor, &EnvironmentInput{Name: models.EnvironmentProd})
	require.NoError(t, err)

	cfg, err := svc.SetConfig(ctx, testActor, env.ID, &EnvironmentConfigInput{Key: "dns_zone", Value: "prod.corp.example"})
	require.NoError(t, err)
	assert.Equal(t, "prod.corp.example", cfg.Value)

	// Same key overwrites instead of duplicating.
	updated, err := svc.SetConfig(ctx, testActor, env.ID, &EnvironmentConfigInput{Key: "dns_zone", Value: "prod2.corp.example"})
	require.NoError(t, err)
	assert.Equal(t, cfg.ID, updated.ID)
	assert.Equal(t, "prod2.corp.example", updated.Value)

	configs, err := svc.ListConfigs(ctx, env.ID)
	require.NoError(t, err)
	assert.Len(t, configs, 1)

	_, err = svc.SetConfig(ctx, testActor, env.ID, &EnvironmentConfigInput{Key: "   ", Value: "x"})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))
}

func TestEnvironmentDeleteConfigChecksOwnership(t *testing.T) {
	svc := newTestEnvironmentService()
	ctx := context.Background()

	prod, err := svc.Create(ctx, testActor, &EnvironmentInput{Name: models.EnvironmentProd})
	require.NoError(t, err)
	dev, err := svc.Create(ctx, testActor, &EnvironmentInput{Name: models.EnvironmentDev})
	require.NoError(t, err)

	cfg, err := svc.SetConfig(ctx, testActor, prod.ID, &EnvironmentConfigInput{Key: "dns_zone", Value: "prod.corp.example"})
	require.NoError(t, err)

	err = svc.DeleteConfig(ctx, testActor, dev.ID, cfg.ID)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeNotFound))

	require.NoError(t, svc.DeleteConfig(ctx, testActor, prod.ID, cfg.ID))

	err = svc.DeleteConfig(ctx, testActor, prod.ID, uuid.New())
	require.Error(t, err)
}

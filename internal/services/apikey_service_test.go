package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/models"
	appErr "github.com/angryss/idp-engine/pkg/errors"
)

func newTestKeyService() (APIKeyService, *fakeAPIKeys) {
	repos := newFakeRegistry()
	svc := NewAPIKeyService(repos, NewAuditor(repos.AuditLogs), 90, time.Hour)
	return svc, repos.APIKeys.(*fakeAPIKeys)
}

func TestAPIKeyGenerateFormat(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()

	gen, err := svc.Generate(ctx, Actor{Email: "jo@corp.example"}, &APIKeyInput{Name: "ci"})
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(gen.Plaintext, "idp_user_"))
	assert.Len(t, gen.Plaintext, len("idp_user_")+32)
	for _, c := range gen.Plaintext[len("idp_user_"):] {
		assert.Contains(t, base62Alphabet, string(c))
	}

	assert.Equal(t, gen.Plaintext[:20], gen.KeyPrefix)
	assert.Equal(t, "jo@corp.example", gen.OwnerEmail)
	assert.Equal(t, models.APIKeyUser, gen.Type)
	assert.Equal(t, models.APIKeyActive, gen.Status)
}

func TestAPIKeyGenerateSystemRequiresAdmin(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()

	_, err := svc.Generate(ctx, Actor{Email: "jo@corp.example"}, &APIKeyInput{
		Name: "provisioner", Type: models.APIKeySystem,
	})
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	gen, err := svc.Generate(ctx, Actor{Email: "admin@corp.example", Admin: true}, &APIKeyInput{
		Name: "provisioner", Type: models.APIKeySystem, OwnerEmail: "platform@corp.example",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(gen.Plaintext, "idp_system_"))
	assert.Equal(t, "platform@corp.example", gen.OwnerEmail)
}

func TestAPIKeyAuthenticateRoundtrip(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()
	actor := Actor{Email: "jo@corp.example"}

	gen, err := svc.Generate(ctx, actor, &APIKeyInput{Name: "ci"})
	require.NoError(t, err)

	key, err := svc.Authenticate(ctx, gen.Plaintext)
	require.NoError(t, err)
	assert.Equal(t, gen.ID, key.ID)
	assert.NotNil(t, key.LastUsedAt)

	_, err = svc.Authenticate(ctx, gen.Plaintext[:len(gen.Plaintext)-1]+"!")
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))

	_, err = svc.Authenticate(ctx, "not-a-key")
	require.Error(t, err)
}

func TestAPIKeyAuthenticateRejectsRevoked(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()
	actor := Actor{Email: "jo@corp.example"}

	gen, err := svc.Generate(ctx, actor, &APIKeyInput{Name: "ci"})
	require.NoError(t, err)
	require.NoError(t, svc.Revoke(ctx, actor, gen.ID))

	_, err = svc.Authenticate(ctx, gen.Plaintext)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
}

func TestAPIKeyRevokeRequiresOwnerOrAdmin(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()

	gen, err := svc.Generate(ctx, Actor{Email: "jo@corp.example"}, &APIKeyInput{Name: "ci"})
	require.NoError(t, err)

	err = svc.Revoke(ctx, Actor{Email: "sam@corp.example"}, gen.ID)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))

	require.NoError(t, svc.Revoke(ctx, Actor{Email: "admin@corp.example", Admin: true}, gen.ID))
	// Revoking twice is a no-op.
	require.NoError(t, svc.Revoke(ctx, Actor{Email: "admin@corp.example", Admin: true}, gen.ID))
}

func TestAPIKeyRename(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()
	actor := Actor{Email: "jo@corp.example"}

	gen, err := svc.Generate(ctx, actor, &APIKeyInput{Name: "ci"})
	require.NoError(t, err)

	view, err := svc.Rename(ctx, actor, gen.ID, "deploy-pipeline", "used by the deploy job")
	require.NoError(t, err)
	assert.Equal(t, "deploy-pipeline", view.Name)
	assert.Equal(t, "used by the deploy job", view.Description)

	_, err = svc.Rename(ctx, actor, gen.ID, "   ", "")
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeInvalid))

	_, err = svc.Rename(ctx, Actor{Email: "sam@corp.example"}, gen.ID, "stolen", "")
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeForbidden))
}

func TestAPIKeyRotate(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()
	actor := Actor{Email: "jo@corp.example"}

	gen, err := svc.Generate(ctx, actor, &APIKeyInput{Name: "ci", Description: "pipeline"})
	require.NoError(t, err)

	replacement, err := svc.Rotate(ctx, actor, gen.ID)
	require.NoError(t, err)
	assert.NotEqual(t, gen.ID, replacement.ID)
	assert.Equal(t, gen.Name, replacement.Name)
	assert.NotEqual(t, gen.Plaintext, replacement.Plaintext)

	old, err := svc.Get(ctx, actor, gen.ID)
	require.NoError(t, err)
	require.NotNil(t, old.RotatedAt)
	require.NotNil(t, old.ReplacedByID)
	assert.Equal(t, replacement.ID, *old.ReplacedByID)

	// Both keys authenticate during the grace window.
	_, err = svc.Authenticate(ctx, gen.Plaintext)
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, replacement.Plaintext)
	require.NoError(t, err)

	// A key rotates at most once.
	_, err = svc.Rotate(ctx, actor, gen.ID)
	require.Error(t, err)
	assert.True(t, appErr.IsCode(err, appErr.CodeConflict))
}

func TestAPIKeySweepExpired(t *testing.T) {
	svc, keys := newTestKeyService()
	ctx := context.Background()

	gen, err := svc.Generate(ctx, Actor{Email: "jo@corp.example"}, &APIKeyInput{Name: "ci"})
	require.NoError(t, err)

	// Force the key past its expiry.
	stored, err := keys.GetByID(ctx, gen.ID)
	require.NoError(t, err)
	stored.ExpiresAt = time.Now().UTC().Add(-time.Hour)
	require.NoError(t, keys.Update(ctx, stored))

	swept, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	view, err := svc.Get(ctx, Actor{Email: "jo@corp.example"}, gen.ID)
	require.NoError(t, err)
	assert.True(t, view.Revoked)
}

func TestAPIKeySweepRotated(t *testing.T) {
	svc, keys := newTestKeyService()
	ctx := context.Background()
	actor := Actor{Email: "jo@corp.example"}

	gen, err := svc.Generate(ctx, actor, &APIKeyInput{Name: "ci"})
	require.NoError(t, err)
	_, err = svc.Rotate(ctx, actor, gen.ID)
	require.NoError(t, err)

	// Still inside the grace window, nothing to sweep.
	swept, err := svc.SweepRotated(ctx)
	require.NoError(t, err)
	assert.Zero(t, swept)

	stored, err := keys.GetByID(ctx, gen.ID)
	require.NoError(t, err)
	past := time.Now().UTC().Add(-2 * time.Hour)
	stored.RotatedAt = &past
	require.NoError(t, keys.Update(ctx, stored))

	swept, err = svc.SweepRotated(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	_, err = svc.Authenticate(ctx, gen.Plaintext)
	require.Error(t, err)
}

func TestAPIKeyListMine(t *testing.T) {
	svc, _ := newTestKeyService()
	ctx := context.Background()

	_, err := svc.Generate(ctx, Actor{Email: "jo@corp.example"}, &APIKeyInput{Name: "one"})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, Actor{Email: "jo@corp.example"}, &APIKeyInput{Name: "two"})
	require.NoError(t, err)
	_, err = svc.Generate(ctx, Actor{Email: "sam@corp.example"}, &APIKeyInput{Name: "other"})
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, Actor{Email: "jo@corp.example"})
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	all, err := svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

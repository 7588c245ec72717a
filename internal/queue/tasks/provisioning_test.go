package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/angryss/idp-engine/internal/models"
	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
	"github.com/angryss/idp-engine/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests (required by tasks)
	_, err := logger.Init("info", "json")
	if err != nil {
		panic("failed to init logger: " + err.Error())
	}
	os.Exit(m.Run())
}

// Mock implementations
type mockStackService struct {
	mock.Mock
}

func (m *mockStackService) Create(ctx context.Context, actor services.Actor, in *services.StackInput) (*services.StackDetail, error) {
	args := m.Called(ctx, actor, in)
	if v := args.Get(0); v != nil {
		return v.(*services.StackDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStackService) Get(ctx context.Context, id uuid.UUID) (*services.StackDetail, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*services.StackDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStackService) List(ctx context.Context, filter services.StackFilter) ([]models.Stack, error) {
	args := m.Called(ctx, filter)
	if v := args.Get(0); v != nil {
		return v.([]models.Stack), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStackService) Update(ctx context.Context, actor services.Actor, id uuid.UUID, in *services.StackUpdate) (*services.StackDetail, error) {
	args := m.Called(ctx, actor, id, in)
	if v := args.Get(0); v != nil {
		return v.(*services.StackDetail), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStackService) SetEnabled(ctx context.Context, actor services.Actor, id uuid.UUID, enabled bool) (*models.Stack, error) {
	args := m.Called(ctx, actor, id, enabled)
	if v := args.Get(0); v != nil {
		return v.(*models.Stack), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStackService) Delete(ctx context.Context, actor services.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *mockStackService) AddResource(ctx context.Context, actor services.Actor, stackID uuid.UUID, in *services.StackResourceInput) (*models.StackResource, error) {
	args := m.Called(ctx, actor, stackID, in)
	if v := args.Get(0); v != nil {
		return v.(*models.StackResource), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockStackService) RemoveResource(ctx context.Context, actor services.Actor, stackID, resourceID uuid.UUID) error {
	args := m.Called(ctx, actor, stackID, resourceID)
	return args.Error(0)
}

func (m *mockStackService) RequestProvisioning(ctx context.Context, actor services.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *mockStackService) GenerateProvisioningMetadata(ctx context.Context, stackID uuid.UUID) error {
	args := m.Called(ctx, stackID)
	return args.Error(0)
}

func (m *mockStackService) GetProvisioning(ctx context.Context, id uuid.UUID) (*services.ProvisioningView, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*services.ProvisioningView), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockAPIKeyService struct {
	mock.Mock
}

func (m *mockAPIKeyService) Generate(ctx context.Context, actor services.Actor, in *services.APIKeyInput) (*services.GeneratedKey, error) {
	args := m.Called(ctx, actor, in)
	if v := args.Get(0); v != nil {
		return v.(*services.GeneratedKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyService) Get(ctx context.Context, actor services.Actor, id uuid.UUID) (*services.APIKeyView, error) {
	args := m.Called(ctx, actor, id)
	if v := args.Get(0); v != nil {
		return v.(*services.APIKeyView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyService) ListMine(ctx context.Context, actor services.Actor) ([]services.APIKeyView, error) {
	args := m.Called(ctx, actor)
	if v := args.Get(0); v != nil {
		return v.([]services.APIKeyView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyService) ListAll(ctx context.Context) ([]services.APIKeyView, error) {
	args := m.Called(ctx)
	if v := args.Get(0); v != nil {
		return v.([]services.APIKeyView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyService) Rename(ctx context.Context, actor services.Actor, id uuid.UUID, name, description string) (*services.APIKeyView, error) {
	args := m.Called(ctx, actor, id, name, description)
	if v := args.Get(0); v != nil {
		return v.(*services.APIKeyView), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyService) Rotate(ctx context.Context, actor services.Actor, id uuid.UUID) (*services.GeneratedKey, error) {
	args := m.Called(ctx, actor, id)
	if v := args.Get(0); v != nil {
		return v.(*services.GeneratedKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyService) Revoke(ctx context.Context, actor services.Actor, id uuid.UUID) error {
	args := m.Called(ctx, actor, id)
	return args.Error(0)
}

func (m *mockAPIKeyService) Authenticate(ctx context.Context, plaintext string) (*models.APIKey, error) {
	args := m.Called(ctx, plaintext)
	if v := args.Get(0); v != nil {
		return v.(*models.APIKey), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAPIKeyService) SweepExpired(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func (m *mockAPIKeyService) SweepRotated(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func generateTask(t *testing.T, stackID string) *asynq.Task {
	t.Helper()
	payload, err := json.Marshal(GeneratePayload{StackID: stackID})
	require.NoError(t, err)
	return asynq.NewTask(TypeProvisioningGenerate, payload)
}

func TestProvisioningTaskHandler_HandleGenerate(t *testing.T) {
	stackID := uuid.New()

	t.Run("successful generation", func(t *testing.T) {
		stacks := &mockStackService{}
		stacks.On("GenerateProvisioningMetadata", mock.Anything, stackID).Return(nil).Once()

		handler := NewProvisioningTaskHandler(stacks)
		err := handler.HandleGenerate(context.Background(), generateTask(t, stackID.String()))
		require.NoError(t, err)
		stacks.AssertExpectations(t)
	})

	t.Run("deleted stack is not retried", func(t *testing.T) {
		stacks := &mockStackService{}
		stacks.On("GenerateProvisioningMetadata", mock.Anything, stackID).
			Return(appErr.New(appErr.CodeNotFound, "stack not found")).Once()

		handler := NewProvisioningTaskHandler(stacks)
		err := handler.HandleGenerate(context.Background(), generateTask(t, stackID.String()))
		require.NoError(t, err)
		stacks.AssertExpectations(t)
	})

	t.Run("transient failure is returned for retry", func(t *testing.T) {
		stacks := &mockStackService{}
		stacks.On("GenerateProvisioningMetadata", mock.Anything, stackID).
			Return(appErr.New(appErr.CodeInvalid, "mapping has no module location")).Once()

		handler := NewProvisioningTaskHandler(stacks)
		err := handler.HandleGenerate(context.Background(), generateTask(t, stackID.String()))
		require.Error(t, err)
		stacks.AssertExpectations(t)
	})

	t.Run("malformed payload", func(t *testing.T) {
		handler := NewProvisioningTaskHandler(&mockStackService{})
		err := handler.HandleGenerate(context.Background(), asynq.NewTask(TypeProvisioningGenerate, []byte("{")))
		require.Error(t, err)
	})

	t.Run("invalid stack id", func(t *testing.T) {
		handler := NewProvisioningTaskHandler(&mockStackService{})
		err := handler.HandleGenerate(context.Background(), generateTask(t, "not-a-uuid"))
		require.Error(t, err)
	})
}

func TestAPIKeySweepHandler(t *testing.T) {
	t.Run("sweep expired", func(t *testing.T) {
		keys := &mockAPIKeyService{}
		keys.On("SweepExpired", mock.Anything).Return(2, nil).Once()

		handler := NewAPIKeySweepHandler(keys)
		err := handler.HandleSweepExpired(context.Background(), asynq.NewTask(TypeAPIKeySweepExpired, nil))
		require.NoError(t, err)
		keys.AssertExpectations(t)
	})

	t.Run("sweep rotated failure propagates", func(t *testing.T) {
		keys := &mockAPIKeyService{}
		keys.On("SweepRotated", mock.Anything).Return(0, errors.New("redis down")).Once()

		handler := NewAPIKeySweepHandler(keys)
		err := handler.HandleSweepRotated(context.Background(), asynq.NewTask(TypeAPIKeySweepRotated, nil))
		require.Error(t, err)
		keys.AssertExpectations(t)
	})
}

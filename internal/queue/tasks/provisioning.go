package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/angryss/idp-engine/internal/services"
	appErr "github.com/angryss/idp-engine/pkg/errors"
	"github.com/angryss/idp-engine/pkg/logger"
)

// Task type names registered on the asynq mux.
const (
	TypeProvisioningGenerate = "provisioning:generate"
	TypeAPIKeySweepExpired   = "apikeys:sweep_expired"
	TypeAPIKeySweepRotated   = "apikeys:sweep_rotated"
)

// GeneratePayload is the payload for provisioning metadata generation tasks.
type GeneratePayload struct {
	StackID string `json:"stack_id"`
}

// ProvisioningTaskHandler resolves provisioning metadata for stack resources.
type ProvisioningTaskHandler struct {
	stacks services.StackService
}

func NewProvisioningTaskHandler(stacks services.StackService) *ProvisioningTaskHandler {
	return &ProvisioningTaskHandler{stacks: stacks}
}

func (h *ProvisioningTaskHandler) HandleGenerate(ctx context.Context, t *asynq.Task) error {
	var p GeneratePayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid provisioning task payload", zap.Error(err))
		return err
	}
	id, err := uuid.Parse(p.StackID)
	if err != nil {
		logger.L().Error("invalid stack id in task", zap.Error(err))
		return err
	}

	logger.L().Info("handling provisioning task", zap.String("stack_id", id.String()))

	if err := h.stacks.GenerateProvisioningMetadata(ctx, id); err != nil {
		// A deleted stack is not retryable; everything else is.
		if appErr.IsCode(err, appErr.CodeNotFound) {
			logger.L().Warn("stack gone, skipping provisioning task", zap.String("stack_id", id.String()))
			return nil
		}
		logger.L().Error("provisioning metadata generation failed",
			zap.String("stack_id", id.String()), zap.Error(err))
		return err
	}

	logger.L().Info("provisioning metadata generated", zap.String("stack_id", id.String()))
	return nil
}

// APIKeySweepHandler revokes keys past expiry or past the rotation grace
// window. Both tasks run on the periodic scheduler.
type APIKeySweepHandler struct {
	keys services.APIKeyService
}

func NewAPIKeySweepHandler(keys services.APIKeyService) *APIKeySweepHandler {
	return &APIKeySweepHandler{keys: keys}
}

func (h *APIKeySweepHandler) HandleSweepExpired(ctx context.Context, t *asynq.Task) error {
	n, err := h.keys.SweepExpired(ctx)
	if err != nil {
		logger.L().Error("expired key sweep failed", zap.Error(err))
		return err
	}
	if n > 0 {
		logger.L().Info("expired keys revoked", zap.Int("count", n))
	}
	return nil
}

func (h *APIKeySweepHandler) HandleSweepRotated(ctx context.Context, t *asynq.Task) error {
	n, err := h.keys.SweepRotated(ctx)
	if err != nil {
		logger.L().Error("rotated key sweep failed", zap.Error(err))
		return err
	}
	if n > 0 {
		logger.L().Info("rotated keys revoked after grace window", zap.Int("count", n))
	}
	return nil
}

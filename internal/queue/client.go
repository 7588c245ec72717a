package queue

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/angryss/idp-engine/internal/queue/tasks"
	"github.com/angryss/idp-engine/pkg/logger"
)

// Client enqueues background tasks for the worker. It implements
// services.ProvisioningEnqueuer.
type Client struct {
	inner *asynq.Client
}

func NewClient(redisAddr, redisPassword string) *Client {
	return &Client{inner: asynq.NewClient(asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: redisPassword,
		DB:       0,
	})}
}

func (c *Client) EnqueueGenerate(ctx context.Context, stackID uuid.UUID) error {
	payload, err := json.Marshal(tasks.GeneratePayload{StackID: stackID.String()})
	if err != nil {
		return err
	}
	task := asynq.NewTask(tasks.TypeProvisioningGenerate, payload,
		asynq.MaxRetry(3),
		asynq.Timeout(2*time.Minute),
	)
	info, err := c.inner.EnqueueContext(ctx, task)
	if err != nil {
		return err
	}
	logger.L().Info("provisioning task enqueued",
		zap.String("task_id", info.ID),
		zap.String("stack_id", stackID.String()))
	return nil
}

func (c *Client) Close() error {
	return c.inner.Close()
}

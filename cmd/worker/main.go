package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/angryss/idp-engine/internal/queue/tasks"
	"github.com/angryss/idp-engine/internal/repository"
	dynamorepo "github.com/angryss/idp-engine/internal/repository/dynamo"
	postgresrepo "github.com/angryss/idp-engine/internal/repository/postgres"
	"github.com/angryss/idp-engine/internal/services"
	"github.com/angryss/idp-engine/pkg/config"
	"github.com/angryss/idp-engine/pkg/database"
	"github.com/angryss/idp-engine/pkg/logger"
)

func main() {
	cfg := config.MustLoad()
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	}

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: cfg.AsynqConcurrency,
	})

	ctx := context.Background()
	repos, err := openRepositories(ctx, cfg)
	if err != nil {
		logger.L().Fatal("failed to open database", zap.Error(err))
	}

	auditor := services.NewAuditor(repos.AuditLogs)
	keySvc := services.NewAPIKeyService(repos, auditor, cfg.APIKeyExpirationDays, cfg.APIKeyRotationGrace)

	// The worker generates metadata directly, so it needs no enqueuer.
	stackSvc := services.NewStackService(repos, auditor, nil)

	mux := asynq.NewServeMux()
	provisioning := tasks.NewProvisioningTaskHandler(stackSvc)
	sweeps := tasks.NewAPIKeySweepHandler(keySvc)
	mux.HandleFunc(tasks.TypeProvisioningGenerate, provisioning.HandleGenerate)
	mux.HandleFunc(tasks.TypeAPIKeySweepExpired, sweeps.HandleSweepExpired)
	mux.HandleFunc(tasks.TypeAPIKeySweepRotated, sweeps.HandleSweepRotated)

	// Periodic key hygiene: expiry daily, rotation grace hourly.
	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register("@daily", asynq.NewTask(tasks.TypeAPIKeySweepExpired, nil)); err != nil {
		log.Fatal("failed to register expired key sweep", zap.Error(err))
	}
	if _, err := scheduler.Register("@hourly", asynq.NewTask(tasks.TypeAPIKeySweepRotated, nil)); err != nil {
		log.Fatal("failed to register rotated key sweep", zap.Error(err))
	}

	errCh := make(chan error, 2)
	go func() {
		logger.L().Info("asynq worker starting", zap.Int("concurrency", cfg.AsynqConcurrency))
		if err := srv.Run(mux); err != nil {
			errCh <- err
		}
	}()
	go func() {
		if err := scheduler.Run(); err != nil {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.L().Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		logger.L().Error("worker stopped with error", zap.Error(err))
	}

	scheduler.Shutdown()
	srv.Shutdown()
}

func openRepositories(ctx context.Context, cfg *config.Config) (*repository.Registry, error) {
	switch cfg.DatabaseProvider {
	case "dynamodb":
		client, err := database.OpenDynamo(ctx, database.DynamoOptions{
			Region:   cfg.DynamoRegion,
			Endpoint: cfg.DynamoEndpoint,
		})
		if err != nil {
			return nil, err
		}
		return dynamorepo.NewRegistry(client), nil
	default:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return postgresrepo.NewRegistry(db), nil
	}
}

package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/angryss/idp-engine/internal/repository/dynamo"
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

	ctx := context.Background()

	switch cfg.DatabaseProvider {
	case "dynamodb":
		client, err := database.OpenDynamo(ctx, database.DynamoOptions{
			Region:   cfg.DynamoRegion,
			Endpoint: cfg.DynamoEndpoint,
		})
		if err != nil {
			log.Fatal("failed to connect to dynamodb", zap.Error(err))
		}
		if err := dynamo.EnsureTables(ctx, client); err != nil {
			log.Fatal("table creation failed", zap.Error(err))
		}
	default:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("failed to connect to database", zap.Error(err))
		}
		if err := runMigrations(db); err != nil {
			log.Fatal("migration failed", zap.Error(err))
		}
	}

	fmt.Fprintln(os.Stdout, "migrations completed")
}

package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/angryss/idp-engine/internal/api"
	"github.com/angryss/idp-engine/internal/api/handlers"
	"github.com/angryss/idp-engine/internal/queue"
	"github.com/angryss/idp-engine/internal/repository"
	dynamorepo "github.com/angryss/idp-engine/internal/repository/dynamo"
	postgresrepo "github.com/angryss/idp-engine/internal/repository/postgres"
	"github.com/angryss/idp-engine/internal/services"
	"github.com/angryss/idp-engine/pkg/cache"
	"github.com/angryss/idp-engine/pkg/config"
	"github.com/angryss/idp-engine/pkg/database"
	"github.com/angryss/idp-engine/pkg/logger"
)

// @title           IDP Engine API
// @version         1.0
// @description     Internal developer platform backend for stacks, blueprints, and resource catalogs

// @license.name  MIT
// @license.url   https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and a JWT or platform API key.

func main() {
	// Load configuration
	cfg := config.MustLoad()

	// Initialize logger
	log, err := logger.Init(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	log.Info("Starting IDP Engine",
		zap.String("env", cfg.AppEnv),
		zap.String("addr", cfg.HTTPAddr),
		zap.String("database_provider", cfg.DatabaseProvider),
	)

	ctx := context.Background()
	repos, dbCheck, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	log.Info("Database connected successfully")

	// Redis backs the dashboard cache and the task queue.
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal("redis connection failed", zap.Error(err))
	}

	jwtSecret := []byte(cfg.JWTSecret)
	if len(jwtSecret) == 0 {
		log.Warn("JWT_SECRET not set, using default (INSECURE for production)")
		jwtSecret = []byte("change-me-in-production-please")
	}

	enqueuer := queue.NewClient(cfg.RedisAddr, cfg.RedisPassword)
	defer enqueuer.Close()

	// Services
	auditor := services.NewAuditor(repos.AuditLogs)
	keySvc := services.NewAPIKeyService(repos, auditor, cfg.APIKeyExpirationDays, cfg.APIKeyRotationGrace)
	authSvc := services.NewAuthService(keySvc, auditor, jwtSecret, cfg.AdminGroup, cfg.DemoMode)
	catalogSvc := services.NewCatalogService(repos, auditor)
	blueprintSvc := services.NewBlueprintService(repos, auditor)
	stackSvc := services.NewStackService(repos, auditor, enqueuer)
	taxonomySvc := services.NewTaxonomyService(repos, auditor)
	environmentSvc := services.NewEnvironmentService(repos, auditor)
	dashboardSvc := services.NewDashboardService(repos, cache.New(rdb), cfg.DashboardCacheTTL)

	// Create router with dependencies
	router := api.NewRouter(api.Dependencies{
		Auth: authSvc,
		HealthChecks: map[string]func(context.Context) error{
			"database": dbCheck,
			"redis":    func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		ProvidersHandler:     handlers.NewProvidersHandler(catalogSvc),
		ResourceTypesHandler: handlers.NewResourceTypesHandler(catalogSvc),
		MappingsHandler:      handlers.NewMappingsHandler(catalogSvc),
		BlueprintsHandler:    handlers.NewBlueprintsHandler(blueprintSvc),
		StacksHandler:        handlers.NewStacksHandler(stackSvc),
		TaxonomyHandler:      handlers.NewTaxonomyHandler(taxonomySvc),
		EnvironmentsHandler:  handlers.NewEnvironmentsHandler(environmentSvc),
		APIKeysHandler:       handlers.NewAPIKeysHandler(keySvc),
		AdminHandler:         handlers.NewAdminHandler(dashboardSvc, repos.AuditLogs),
	})

	// Create HTTP server
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", zap.String("signal", sig.String()))
	case err := <-errCh:
		log.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	} else {
		log.Info("server exited gracefully")
	}
}

// openRepositories builds the repository registry for the configured backend
// and returns a readiness check against it.
func openRepositories(ctx context.Context, cfg *config.Config) (*repository.Registry, func(context.Context) error, error) {
	switch cfg.DatabaseProvider {
	case "dynamodb":
		client, err := database.OpenDynamo(ctx, database.DynamoOptions{
			Region:   cfg.DynamoRegion,
			Endpoint: cfg.DynamoEndpoint,
		})
		if err != nil {
			return nil, nil, err
		}
		check := func(ctx context.Context) error {
			_, err := client.ListTables(ctx, nil)
			return err
		}
		return dynamorepo.NewRegistry(client), check, nil
	default:
		db, err := database.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		check := func(ctx context.Context) error {
			sqlDB, err := db.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
		return postgresrepo.NewRegistry(db), check, nil
	}
}

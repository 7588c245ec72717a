package config

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration loaded from environment variables or config files.
type Config struct {
	AppEnv          string        `mapstructure:"APP_ENV" validate:"required,oneof=development staging production test"`
	HTTPAddr        string        `mapstructure:"HTTP_ADDR" validate:"required,hostname_port"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT" validate:"required"`

	LogLevel  string `mapstructure:"LOG_LEVEL" validate:"required,oneof=debug info warn error dpanic panic fatal"`
	LogFormat string `mapstructure:"LOG_FORMAT" validate:"required,oneof=json console"`

	// DatabaseProvider selects the persistence backend.
	DatabaseProvider string `mapstructure:"DATABASE_PROVIDER" validate:"required,oneof=postgres dynamodb"`
	DatabaseURL      string `mapstructure:"DATABASE_URL" validate:"required_if=DatabaseProvider postgres"`

	DynamoRegion   string `mapstructure:"DYNAMO_REGION"`
	DynamoEndpoint string `mapstructure:"DYNAMO_ENDPOINT"`

	RedisAddr     string `mapstructure:"REDIS_ADDR" validate:"required,hostname_port"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`

	AsynqConcurrency int `mapstructure:"ASYNQ_CONCURRENCY" validate:"gte=1,lte=1000"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	// AdminGroup is the identity-provider group granting the admin role.
	AdminGroup string `mapstructure:"ADMIN_GROUP"`

	// APIKeyExpirationDays is the default lifetime of newly issued API keys.
	APIKeyExpirationDays int `mapstructure:"API_KEY_EXPIRATION_DAYS" validate:"gte=1,lte=3650"`
	// APIKeyRotationGrace is how long a rotated-out key stays usable.
	APIKeyRotationGrace time.Duration `mapstructure:"API_KEY_ROTATION_GRACE"`

	DemoMode bool `mapstructure:"DEMO_MODE"`

	// DashboardCacheTTL bounds staleness of cached admin dashboard statistics.
	DashboardCacheTTL time.Duration `mapstructure:"DASHBOARD_CACHE_TTL"`

	GoMaxProcs int `mapstructure:"GOMAXPROCS" validate:"gte=0,lte=4096"`
}

var (
	cfg      *Config
	validate = validator.New(validator.WithRequiredStructEnabled())
)

// Load initializes configuration using Viper. It loads from .env if present,
// applies defaults, binds env vars, and validates the result.
func Load() (*Config, error) {
	// Load .env if present (non-fatal)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("HTTP_ADDR", "0.0.0.0:8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "15s")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("DATABASE_PROVIDER", "postgres")
	v.SetDefault("DYNAMO_REGION", "us-east-1")
	v.SetDefault("ASYNQ_CONCURRENCY", 10)
	v.SetDefault("API_KEY_EXPIRATION_DAYS", 90)
	v.SetDefault("API_KEY_ROTATION_GRACE", "24h")
	v.SetDefault("DEMO_MODE", false)
	v.SetDefault("DASHBOARD_CACHE_TTL", "30s")
	v.SetDefault("GOMAXPROCS", 0)

	// Optional config file
	_ = v.ReadInConfig()

	// Bind env without prefix for convenience
	keys := []string{
		"APP_ENV",
		"HTTP_ADDR",
		"SHUTDOWN_TIMEOUT",
		"LOG_LEVEL",
		"LOG_FORMAT",
		"DATABASE_PROVIDER",
		"DATABASE_URL",
		"DYNAMO_REGION",
		"DYNAMO_ENDPOINT",
		"REDIS_ADDR",
		"REDIS_PASSWORD",
		"ASYNQ_CONCURRENCY",
		"JWT_SECRET",
		"ADMIN_GROUP",
		"API_KEY_EXPIRATION_DAYS",
		"API_KEY_ROTATION_GRACE",
		"DEMO_MODE",
		"DASHBOARD_CACHE_TTL",
		"GOMAXPROCS",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("config unmarshal error: %w", err)
	}

	// Parse duration types that may come as string
	for _, d := range []struct {
		key string
		dst *time.Duration
	}{
		{"SHUTDOWN_TIMEOUT", &c.ShutdownTimeout},
		{"API_KEY_ROTATION_GRACE", &c.APIKeyRotationGrace},
		{"DASHBOARD_CACHE_TTL", &c.DashboardCacheTTL},
	} {
		if s := v.GetString(d.key); s != "" {
			dur, err := time.ParseDuration(s)
			if err != nil {
				return nil, fmt.Errorf("invalid %s: %w", d.key, err)
			}
			*d.dst = dur
		}
	}

	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	if c.GoMaxProcs > 0 {
		runtime.GOMAXPROCS(c.GoMaxProcs)
	}

	cfg = &c
	return cfg, nil
}

// MustLoad loads configuration or exits the process on failure.
func MustLoad() *Config {
	c, err := Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	return c
}

// Get returns the loaded configuration. Panics if not loaded.
func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call config.Load or config.MustLoad first")
	}
	return cfg
}

package config

import (
	"fmt"

	"github.com/BartekS5/salesflow/pkg/logger"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads .env files (if any exist), then the process environment, and
// validates the result. With no paths it tries ./.env.
func Load(envFiles ...string) (*App, error) {
	if len(envFiles) == 0 {
		if err := godotenv.Load(); err != nil {
			logger.Debugf("No .env file found, using system environment variables")
		}
	}
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil {
			return nil, fmt.Errorf("failed to load env file '%s': %w", path, err)
		}
	}
	return LoadFromEnv()
}

// LoadFromEnv builds the config from the environment only.
func LoadFromEnv() (*App, error) {
	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (a *App) Validate() error {
	if err := validator.New().Struct(a); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// LogSummary writes the effective configuration with secrets masked.
func (a *App) LogSummary() {
	logger.L().Info().
		Str("pipeline", a.PipelineName).
		Str("storage_backend", a.Storage.Backend).
		Str("storage_endpoint", a.Storage.Endpoint).
		Str("storage_access_key", maskValue(a.Storage.AccessKey)).
		Str("bucket", a.Storage.Bucket).
		Str("object", a.Storage.Object).
		Str("db_driver", a.DB.Driver).
		Str("db_host", a.DB.Host).
		Str("db_name", a.DB.Name).
		Str("db_table", a.DB.Table).
		Str("db_password", maskValue(a.DB.Password)).
		Bool("lineage_enabled", a.Lineage.Enabled).
		Str("lineage_transport", a.Lineage.Transport).
		Dur("schedule_interval", a.Schedule.Interval).
		Int("retries", a.Schedule.Retries).
		Dur("retry_delay", a.Schedule.RetryDelay).
		Msg("App config loaded")
}

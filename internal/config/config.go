package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/go-playground/validator/v10"
)

type Config struct {
	// Database
	DBHost     string `env:"DB_HOST" envDefault:"localhost" validate:"required"`
	DBPort     string `env:"DB_PORT" envDefault:"5432" validate:"required,numeric"`
	DBUser     string `env:"DB_USER" envDefault:"postgres" validate:"required"`
	DBPassword string `env:"DB_PASSWORD" validate:"required"`
	DBName     string `env:"DB_NAME" envDefault:"reader_db" validate:"required"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable" validate:"oneof=disable require verify-ca verify-full"`

	// Tokens (shared across all sites)
	JWTSecret         string   `env:"JWT_SECRET" validate:"required,min=32"`
	AccessTokenTTL    Duration `env:"ACCESS_TOKEN_TTL" envDefault:"15m"`
	RefreshTokenTTL   Duration `env:"REFRESH_TOKEN_TTL" envDefault:"7d"`
	SessionGrace      Duration `env:"SESSION_GRACE_PERIOD" envDefault:"5m"`
	RotationLedgerTTL Duration `env:"ROTATION_LEDGER_TTL" envDefault:"5m"`

	// Background maintenance
	SweepInterval    Duration `env:"SWEEP_INTERVAL" envDefault:"1h"`
	LogRetentionDays int      `env:"LOG_RETENTION_DAYS" envDefault:"30" validate:"gt=0"`

	// Server
	Port        string `env:"PORT" envDefault:"8080" validate:"required,numeric"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	CORSOrigins string `env:"CORS_ORIGINS" envDefault:"*"`

	// Site registry
	SitesConfigPath string `env:"SITES_CONFIG_PATH" envDefault:"sites.json"`
}

// Load reads the configuration from the environment and rejects anything
// malformed up front. Missing secrets and bad duration strings are startup
// errors, never silent defaults.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

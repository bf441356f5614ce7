package config

import (
	"time"

	"github.com/spf13/viper"
)

// Config holds runtime configuration for both the document server and the
// terminal. Every field maps to one environment variable.
type Config struct {
	// Server
	Port int    `mapstructure:"PORT"`
	Env  string `mapstructure:"APP_ENV"` // development | production

	// Document server persistence
	DBDriver    string `mapstructure:"DB_DRIVER"` // postgres | sqlite
	DatabaseURL string `mapstructure:"DATABASE_URL"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	// Terminal replication
	StoreDriver string `mapstructure:"STORE_DRIVER"` // remote | redis | memory
	SyncURL     string `mapstructure:"SYNC_URL"`
	RedisURL    string `mapstructure:"REDIS_URL"`
	DocumentKey string `mapstructure:"DOCUMENT_KEY"`
	SyncGraceMS int    `mapstructure:"SYNC_GRACE_MS"`

	// Bootstrap
	TableCount int    `mapstructure:"TABLE_COUNT"`
	AdminPIN   string `mapstructure:"ADMIN_PIN"`

	// Auth
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	JWTExpirationHours int    `mapstructure:"JWT_EXPIRATION_HOURS"`
}

// Load reads configuration from environment variables (and optional .env file).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	v.SetDefault("PORT", 3000)
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("SQLITE_PATH", "restaurant.db")
	v.SetDefault("STORE_DRIVER", "remote")
	v.SetDefault("SYNC_URL", "http://localhost:3000")
	v.SetDefault("REDIS_URL", "redis://localhost:6379/0")
	v.SetDefault("DOCUMENT_KEY", "restaurant_state")
	v.SetDefault("SYNC_GRACE_MS", 500)
	v.SetDefault("TABLE_COUNT", 24)
	v.SetDefault("ADMIN_PIN", "")
	v.SetDefault("JWT_SECRET", "change-me-in-production")
	v.SetDefault("JWT_EXPIRATION_HOURS", 12)

	// Optional .env file for local development; a missing file is not an error
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SyncGrace converts SyncGraceMS; zero disables the window.
func (c *Config) SyncGrace() time.Duration {
	if c.SyncGraceMS <= 0 {
		return -1
	}
	return time.Duration(c.SyncGraceMS) * time.Millisecond
}

func (c *Config) JWTExpiration() time.Duration {
	return time.Duration(c.JWTExpirationHours) * time.Hour
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

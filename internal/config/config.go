package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Database
		Auth
		Audit
		Global
	}

	HTTP struct {
		Port int32
		Host string
	}
	Database struct {
		Path string
	}
	Auth struct {
		SecretKey   string
		TokenExpiry time.Duration
		BcryptCost  int
	}
	// Audit configures the periodic inventory consistency check.
	Audit struct {
		Enabled  bool
		Schedule string // Cron format: "0 * * * *" = hourly
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)

	// Auth defaults
	v.SetDefault("secret_key", "")
	v.SetDefault("access_token_expiry", "30m")
	v.SetDefault("bcrypt_cost", 12)

	// Inventory audit defaults
	v.SetDefault("inventory_audit_enabled", false)
	v.SetDefault("inventory_audit_schedule", "0 * * * *") // Hourly at :00

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		Auth: Auth{
			SecretKey:   v.GetString("SECRET_KEY"),
			TokenExpiry: v.GetDuration("ACCESS_TOKEN_EXPIRY"),
			BcryptCost:  v.GetInt("BCRYPT_COST"),
		},
		Audit: Audit{
			Enabled:  v.GetBool("INVENTORY_AUDIT_ENABLED"),
			Schedule: v.GetString("INVENTORY_AUDIT_SCHEDULE"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
	}
}

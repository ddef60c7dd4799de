// Package config loads and validates the application configuration from
// environment variables and optional config files.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	SRS      SRSConfig      `mapstructure:"srs"      validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains the settings for validating platform-issued tokens.
// Token issuance belongs to the platform identity service; this service only
// verifies bearer tokens against the shared secret.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`
}

// SRSConfig exposes the tunable parameters of the scheduling algorithm.
// The defaults match standard SM-2; overrides exist mainly for experiments.
type SRSConfig struct {
	MinEaseFactor      float64 `mapstructure:"min_ease_factor"      validate:"required,gt=1"`
	MaxEaseFactor      float64 `mapstructure:"max_ease_factor"      validate:"required,gtfield=MinEaseFactor"`
	FirstIntervalDays  int     `mapstructure:"first_interval_days"  validate:"required,gte=1"`
	SecondIntervalDays int     `mapstructure:"second_interval_days" validate:"required,gte=1"`
}

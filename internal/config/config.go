package config

// Config holds all application configuration.
// It is constructed once at startup by Load and passed explicitly to every
// component that needs it; there is no process-wide settings singleton.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Upload   UploadConfig   `mapstructure:"upload"   validate:"required"`
}

// ServerConfig contains all HTTP server related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	// CORSOrigins is the list of origins allowed to call the API from a
	// browser. An empty list disables cross-origin access entirely.
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig contains all database related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains authentication and token settings.
type AuthConfig struct {
	// JWTSecret signs both access and refresh tokens with HMAC-SHA256.
	// Must be at least 32 bytes.
	JWTSecret string `mapstructure:"jwt_secret" validate:"required,min=32"`

	// TokenLifetimeMinutes is the access token lifetime.
	TokenLifetimeMinutes int `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`

	// RefreshTokenLifetimeMinutes is the refresh token lifetime.
	RefreshTokenLifetimeMinutes int `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`

	// CookieSecure controls the Secure attribute on the auth cookies.
	// Disable only for plain-HTTP local development.
	CookieSecure bool `mapstructure:"cookie_secure"`
}

// UploadConfig contains file upload settings.
type UploadConfig struct {
	// Dir is the root directory uploaded files are written to.
	// Created at startup if it does not exist.
	Dir string `mapstructure:"dir" validate:"required"`
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// APIServerConfig represents the Viral API server configuration
type APIServerConfig struct {
	Server         ServerConfig         `mapstructure:"server"`
	Database       DatabaseConfig       `mapstructure:"database"`
	Auth           AuthConfig           `mapstructure:"auth"`
	Limits         LimitsConfig         `mapstructure:"limits"`
	Stripe         StripeConfig         `mapstructure:"stripe"`
	Gateway        GatewayConfig        `mapstructure:"gateway"`
	Splits         SplitsConfig         `mapstructure:"splits"`
	Social         SocialConfig         `mapstructure:"social"`
	RateLimit      RateLimitConfig      `mapstructure:"rate_limit"`
	Reconciliation ReconciliationConfig `mapstructure:"reconciliation"`
	Monitoring     MonitoringConfig     `mapstructure:"monitoring"`
	Logging        LoggingConfig        `mapstructure:"logging"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"ssl_mode"`
}

// AuthConfig contains JWT/JWKS validation settings for the identity provider
type AuthConfig struct {
	JWKSURL       string `mapstructure:"jwks_url"`
	Issuer        string `mapstructure:"issuer"`
	AdminTokenEnv string `mapstructure:"admin_token_env"`
}

// LimitsConfig contains token-creation quota settings
type LimitsConfig struct {
	FreeLimit          int   `mapstructure:"free_limit"`
	DailyLimit         int   `mapstructure:"daily_limit"`
	PlatformDailyLimit int   `mapstructure:"platform_daily_limit"`
	CreationPriceCents int64 `mapstructure:"creation_price_cents"`
}

// StripeConfig contains card payment rail settings.
// Secret values are read from the environment, not the config file.
type StripeConfig struct {
	BaseURL          string `mapstructure:"base_url"`
	SecretKeyEnv     string `mapstructure:"secret_key_env"`
	WebhookSecretEnv string `mapstructure:"webhook_secret_env"`
}

// GatewayConfig contains the token deployment gateway settings
type GatewayConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	APIKeyEnv      string        `mapstructure:"api_key_env"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SplitsConfig contains the revenue split-wallet generation settings
type SplitsConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	PlatformWallet string        `mapstructure:"platform_wallet"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// SocialConfig contains the announcement posting settings
type SocialConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	BaseURL string `mapstructure:"base_url"`
}

// RateLimitConfig contains per-IP request limiting for the deploy endpoint
type RateLimitConfig struct {
	DeployPerMinute int `mapstructure:"deploy_per_minute"`
	Burst           int `mapstructure:"burst"`
}

// ReconciliationConfig contains settings for the pending-deploy sweep
type ReconciliationConfig struct {
	InitialTimeout time.Duration `mapstructure:"initial_timeout"`
	Interval       time.Duration `mapstructure:"interval"`
	GracePeriod    time.Duration `mapstructure:"grace_period"`
}

// MonitoringConfig contains monitoring and metrics settings
type MonitoringConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// LoadAPIServer loads API server configuration from file
func LoadAPIServer(configPath string) (*APIServerConfig, error) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")
	viper.AutomaticEnv()

	setAPIServerDefaults()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config APIServerConfig
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateAPIServer(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func setAPIServerDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8081)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "30s")
	viper.SetDefault("server.idle_timeout", "60s")
	viper.SetDefault("server.shutdown_timeout", "30s")

	// Database defaults
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.ssl_mode", "disable")
	viper.SetDefault("database.database", "viral_api")

	// Quota defaults
	viper.SetDefault("limits.free_limit", 3)
	viper.SetDefault("limits.daily_limit", 10)
	viper.SetDefault("limits.platform_daily_limit", 500)
	viper.SetDefault("limits.creation_price_cents", 500)

	// Auth defaults
	viper.SetDefault("auth.admin_token_env", "ADMIN_API_TOKEN")

	// Payment rail defaults
	viper.SetDefault("stripe.base_url", "https://api.stripe.com")
	viper.SetDefault("stripe.secret_key_env", "STRIPE_SECRET_KEY")
	viper.SetDefault("stripe.webhook_secret_env", "STRIPE_WEBHOOK_SECRET")

	// Deployment gateway defaults
	viper.SetDefault("gateway.api_key_env", "GATEWAY_API_KEY")
	viper.SetDefault("gateway.request_timeout", "30s")

	// Split wallet defaults
	viper.SetDefault("splits.request_timeout", "15s")

	// Social posting defaults
	viper.SetDefault("social.enabled", false)

	// Rate limit defaults
	viper.SetDefault("rate_limit.deploy_per_minute", 5)
	viper.SetDefault("rate_limit.burst", 5)

	// Reconciliation defaults
	viper.SetDefault("reconciliation.initial_timeout", "2m")
	viper.SetDefault("reconciliation.interval", "5m")
	viper.SetDefault("reconciliation.grace_period", "10m")

	// Monitoring defaults
	viper.SetDefault("monitoring.enabled", true)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output_path", "stdout")
}

func validateAPIServer(config *APIServerConfig) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if config.Gateway.BaseURL == "" {
		return fmt.Errorf("gateway.base_url is required")
	}
	if config.Splits.BaseURL == "" {
		return fmt.Errorf("splits.base_url is required")
	}
	if config.Splits.PlatformWallet == "" {
		return fmt.Errorf("splits.platform_wallet is required")
	}
	if config.Auth.JWKSURL == "" {
		return fmt.Errorf("auth.jwks_url is required")
	}
	if config.Limits.FreeLimit > config.Limits.DailyLimit {
		return fmt.Errorf("limits.free_limit cannot exceed limits.daily_limit")
	}
	return nil
}

// GetConnectionString returns a PostgreSQL connection string
func (c *DatabaseConfig) GetConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

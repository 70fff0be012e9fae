// Package config provides configuration management for the ROI ledger.
package config

import (
	"fmt"
	"time"

	"github.com/yourusername/roi-ledger/internal/httpclient"
)

// Store drivers
const (
	StoreDriverREST     = "rest"
	StoreDriverPostgres = "postgres"
)

// Config represents the complete application configuration
type Config struct {
	App        AppConfig        `mapstructure:"app" validate:"required"`
	Server     ServerConfig     `mapstructure:"server" validate:"required"`
	Store      StoreConfig      `mapstructure:"store" validate:"required"`
	Supabase   SupabaseConfig   `mapstructure:"supabase"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Extraction ExtractionConfig `mapstructure:"extraction" validate:"required"`
	HTTPClient HTTPClientConfig `mapstructure:"http_client" validate:"required"`
	Dashboard  DashboardConfig  `mapstructure:"dashboard" validate:"required"`
	Notify     NotifyConfig     `mapstructure:"notify"`
	Metrics    MetricsConfig    `mapstructure:"metrics" validate:"required"`
	Secrets    SecretsConfig    `mapstructure:"secrets"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API listener
type ServerConfig struct {
	Port               int      `mapstructure:"port" validate:"required,min=1,max=65535"`
	AdminToken         string   `mapstructure:"admin_token"`
	MaxUploadBytes     int64    `mapstructure:"max_upload_bytes" validate:"required,gt=0"`
	ReadTimeoutSeconds int      `mapstructure:"read_timeout_seconds" validate:"required,gt=0"`
	AllowedOrigins     []string `mapstructure:"allowed_origins"`
}

// StoreConfig selects the data store implementation
type StoreConfig struct {
	Driver             string `mapstructure:"driver" validate:"required,storedriver"`
	RecentResultsLimit int    `mapstructure:"recent_results_limit" validate:"required,gt=0"`
}

// SupabaseConfig represents the PostgREST endpoint used by the rest driver
type SupabaseConfig struct {
	URL            string `mapstructure:"url" validate:"omitempty,url"`
	ServiceRoleKey string `mapstructure:"service_role_key"`
	AnonKey        string `mapstructure:"anon_key"`
}

// DatabaseConfig represents database connection configuration for the postgres driver
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port" validate:"omitempty,min=1,max=65535"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"omitempty,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"omitempty,gt=0"`
}

// ExtractionConfig represents the document extraction service
type ExtractionConfig struct {
	BaseURL     string  `mapstructure:"base_url" validate:"required,url"`
	Model       string  `mapstructure:"model" validate:"required"`
	APIKey      string  `mapstructure:"api_key"`
	Temperature float64 `mapstructure:"temperature" validate:"gte=0,lte=2"`
	TopK        int     `mapstructure:"top_k" validate:"gte=0"`
	TopP        float64 `mapstructure:"top_p" validate:"gte=0,lte=1"`
}

// HTTPClientConfig represents the outbound HTTP transport
type HTTPClientConfig struct {
	TimeoutSeconds         int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries             int     `mapstructure:"max_retries" validate:"gte=0"`
	RetryWaitMinMillis     int     `mapstructure:"retry_wait_min_ms" validate:"gte=0"`
	RetryWaitMaxMillis     int     `mapstructure:"retry_wait_max_ms" validate:"gte=0"`
	RateLimit              float64 `mapstructure:"rate_limit" validate:"gte=0"`
	CircuitBreakerMax      int     `mapstructure:"circuit_breaker_max" validate:"gte=0"`
	CircuitCooldownSeconds int     `mapstructure:"circuit_cooldown_seconds" validate:"gte=0"`
}

// DashboardConfig controls dashboard caching
type DashboardConfig struct {
	CacheTTLSeconds int    `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	RefreshCron     string `mapstructure:"refresh_cron" validate:"omitempty,cron"`
}

// NotifyConfig controls event fan-out
type NotifyConfig struct {
	WebsocketEnabled bool           `mapstructure:"websocket_enabled"`
	Telegram         TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig represents the optional Telegram notifier
type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required"`
}

// SecretsConfig points at an optional AWS Secrets Manager secret
type SecretsConfig struct {
	AWSRegion  string `mapstructure:"aws_region"`
	SecretName string `mapstructure:"secret_name"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsStaging checks if the application is running in staging mode
func (c *Config) IsStaging() bool {
	return c.App.Environment == "staging"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// SupabaseKey returns the service-role key, falling back to the anon key
func (c *Config) SupabaseKey() string {
	if c.Supabase.ServiceRoleKey != "" {
		return c.Supabase.ServiceRoleKey
	}
	return c.Supabase.AnonKey
}

// HTTPClientSettings converts the transport section into client settings
func (c *Config) HTTPClientSettings() httpclient.Config {
	h := c.HTTPClient
	return httpclient.Config{
		Timeout:           time.Duration(h.TimeoutSeconds) * time.Second,
		MaxRetries:        h.MaxRetries,
		RetryWaitMin:      time.Duration(h.RetryWaitMinMillis) * time.Millisecond,
		RetryWaitMax:      time.Duration(h.RetryWaitMaxMillis) * time.Millisecond,
		RateLimit:         h.RateLimit,
		CircuitBreakerMax: h.CircuitBreakerMax,
		CircuitCooldown:   time.Duration(h.CircuitCooldownSeconds) * time.Second,
	}
}

// DashboardCacheTTL returns the snapshot cache lifetime
func (c *Config) DashboardCacheTTL() time.Duration {
	return time.Duration(c.Dashboard.CacheTTLSeconds) * time.Second
}

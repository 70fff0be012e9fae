package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

const (
	// DefaultConfigPath is used when no path is given
	DefaultConfigPath = "config/config.yaml"
	envPrefix         = "ROI_LEDGER"
)

// Load reads and parses the configuration from file and environment variables
// It expands environment variable placeholders in the YAML file (${VAR_NAME})
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v := newViper()
	if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return unmarshal(v)
}

// LoadWithDefaults loads configuration with default values for optional fields.
// A missing file is not an error; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = DefaultConfigPath
	}

	v := newViper()
	setDefaults(v)

	if data, err := os.ReadFile(configPath); err == nil {
		if err := v.ReadConfig(bytes.NewBufferString(os.ExpandEnv(string(data)))); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return unmarshal(v)
}

// LoadAndValidate loads with defaults, applies the secrets overlay when one
// is configured, and validates the result
func LoadAndValidate(ctx context.Context, configPath string) (*Config, error) {
	cfg, err := LoadWithDefaults(configPath)
	if err != nil {
		return nil, err
	}

	if cfg.Secrets.SecretName != "" {
		if err := LoadSecretsFromAWS(ctx, cfg, cfg.Secrets.AWSRegion, cfg.Secrets.SecretName); err != nil {
			return nil, err
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	return v
}

// setDefaults registers every optional key so environment overrides apply
// even without a config file
func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "roi-ledger")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.admin_token", "")
	v.SetDefault("server.max_upload_bytes", 5*1024*1024)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("store.driver", StoreDriverREST)
	v.SetDefault("store.recent_results_limit", 12)

	v.SetDefault("supabase.url", "")
	v.SetDefault("supabase.service_role_key", "")
	v.SetDefault("supabase.anon_key", "")

	v.SetDefault("database.host", "")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)

	v.SetDefault("extraction.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("extraction.model", "gemini-1.5-pro-latest")
	v.SetDefault("extraction.api_key", "")
	v.SetDefault("extraction.temperature", 0.1)
	v.SetDefault("extraction.top_k", 32)
	v.SetDefault("extraction.top_p", 0.8)

	v.SetDefault("http_client.timeout_seconds", 60)
	v.SetDefault("http_client.max_retries", 2)
	v.SetDefault("http_client.retry_wait_min_ms", 200)
	v.SetDefault("http_client.retry_wait_max_ms", 5000)
	v.SetDefault("http_client.rate_limit", 10.0)
	v.SetDefault("http_client.circuit_breaker_max", 5)
	v.SetDefault("http_client.circuit_cooldown_seconds", 30)

	v.SetDefault("dashboard.cache_ttl_seconds", 30)
	v.SetDefault("dashboard.refresh_cron", "")

	v.SetDefault("notify.websocket_enabled", true)
	v.SetDefault("notify.telegram.enabled", false)
	v.SetDefault("notify.telegram.bot_token", "")
	v.SetDefault("notify.telegram.chat_id", 0)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("secrets.aws_region", "")
	v.SetDefault("secrets.secret_name", "")
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return cfg, nil
}

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/robfig/cron/v3"
)

// minProductionTokenLength is the shortest admin token accepted in production
const minProductionTokenLength = 16

// CustomValidator wraps the validator with custom validation rules
type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator creates a new validator with custom validation functions
func NewValidator() *CustomValidator {
	v := validator.New()

	_ = v.RegisterValidation("environment", validateEnvironment)
	_ = v.RegisterValidation("loglevel", validateLogLevel)
	_ = v.RegisterValidation("storedriver", validateStoreDriver)
	_ = v.RegisterValidation("cron", validateCron)

	return &CustomValidator{validator: v}
}

// Validate validates the entire configuration
func Validate(cfg *Config) error {
	return NewValidator().Validate(cfg)
}

// Validate validates the configuration using registered validation rules
func (cv *CustomValidator) Validate(cfg *Config) error {
	if err := cv.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			return formatValidationErrors(validationErrors)
		}
		return fmt.Errorf("validation failed: %w", err)
	}

	return validateCrossField(cfg)
}

func validateEnvironment(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "development", "staging", "production":
		return true
	default:
		return false
	}
}

func validateLogLevel(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func validateStoreDriver(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case StoreDriverREST, StoreDriverPostgres:
		return true
	default:
		return false
	}
}

func validateCron(fl validator.FieldLevel) bool {
	_, err := cron.ParseStandard(fl.Field().String())
	return err == nil
}

// validateCrossField performs cross-field validations
func validateCrossField(cfg *Config) error {
	switch cfg.Store.Driver {
	case StoreDriverREST:
		if cfg.Supabase.URL == "" {
			return fmt.Errorf("store driver %q requires supabase.url", StoreDriverREST)
		}
		if cfg.SupabaseKey() == "" {
			return fmt.Errorf("store driver %q requires supabase.service_role_key or supabase.anon_key", StoreDriverREST)
		}
	case StoreDriverPostgres:
		db := cfg.Database
		if db.Host == "" || db.Name == "" || db.User == "" || db.Port == 0 {
			return fmt.Errorf("store driver %q requires database host, port, name and user", StoreDriverPostgres)
		}
	}

	if cfg.IsProduction() {
		if len(strings.TrimSpace(cfg.Server.AdminToken)) < minProductionTokenLength {
			return fmt.Errorf("production environment requires an admin_token of at least %d characters", minProductionTokenLength)
		}
		if cfg.Store.Driver == StoreDriverPostgres && cfg.Database.SSLMode == "disable" {
			return fmt.Errorf("production environment requires database SSL mode to be 'require' or 'verify-full'")
		}
	}

	if cfg.Notify.Telegram.Enabled {
		if cfg.Notify.Telegram.BotToken == "" || cfg.Notify.Telegram.ChatID == 0 {
			return fmt.Errorf("telegram notifications require bot_token and chat_id")
		}
	}

	if cfg.HTTPClient.RetryWaitMaxMillis < cfg.HTTPClient.RetryWaitMinMillis {
		return fmt.Errorf("http_client.retry_wait_max_ms cannot be less than retry_wait_min_ms")
	}

	return nil
}

// formatValidationErrors formats validation errors into a readable string
func formatValidationErrors(validationErrors validator.ValidationErrors) error {
	var b strings.Builder
	for _, fieldError := range validationErrors {
		field := fieldError.Namespace()
		tag := fieldError.Tag()
		value := fieldError.Value()

		switch tag {
		case "required":
			fmt.Fprintf(&b, "- Field '%s' is required\n", field)
		case "url":
			fmt.Fprintf(&b, "- Field '%s' must be a valid URL, got '%v'\n", field, value)
		case "min", "max":
			fmt.Fprintf(&b, "- Field '%s' validation failed: %s constraint violated\n", field, tag)
		case "gt", "gte", "lt", "lte":
			fmt.Fprintf(&b, "- Field '%s' validation failed: numeric constraint %s violated\n", field, tag)
		case "environment":
			fmt.Fprintf(&b, "- Field '%s' must be one of: development, staging, production\n", field)
		case "loglevel":
			fmt.Fprintf(&b, "- Field '%s' must be one of: debug, info, warn, error\n", field)
		case "storedriver":
			fmt.Fprintf(&b, "- Field '%s' must be one of: %s, %s\n", field, StoreDriverREST, StoreDriverPostgres)
		case "cron":
			fmt.Fprintf(&b, "- Field '%s' must be a standard cron expression, got '%v'\n", field, value)
		case "oneof":
			fmt.Fprintf(&b, "- Field '%s' has invalid value '%v'\n", field, value)
		default:
			fmt.Fprintf(&b, "- Field '%s' failed validation: %s\n", field, tag)
		}
	}
	return fmt.Errorf("configuration validation failed:\n%s", b.String())
}

package config

import (
	"fmt"
	"strings"

	"github.com/aretw0/turing/internal/logging"
)

// FieldError represents a validation error for a specific configuration field.
type FieldError struct {
	// Field is the dotted path to the configuration field (e.g., "redis.addr").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError represents one or more validation errors in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the whole configuration and collects every problem.
func Validate(cfg *Config) error {
	var errs []FieldError

	if _, err := logging.ParseLevel(cfg.LogLevel); err != nil {
		errs = append(errs, FieldError{Field: "log_level", Message: "must be one of debug, info, warn, error"})
	}

	switch cfg.Store {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if cfg.Redis.Addr == "" {
			errs = append(errs, FieldError{Field: "redis.addr", Message: "is required when store is redis"})
		}
	default:
		errs = append(errs, FieldError{Field: "store", Message: fmt.Sprintf("unknown backend %q (want memory, file or redis)", cfg.Store)})
	}

	if cfg.HTTP.Port < 1 || cfg.HTTP.Port > 65535 {
		errs = append(errs, FieldError{Field: "http.port", Message: "must be between 1 and 65535"})
	}
	if cfg.Redis.DB < 0 {
		errs = append(errs, FieldError{Field: "redis.db", Message: "must not be negative"})
	}
	if cfg.Redis.TTL < 0 {
		errs = append(errs, FieldError{Field: "redis.ttl", Message: "must not be negative"})
	}
	if cfg.Redis.LockTTL < 0 {
		errs = append(errs, FieldError{Field: "redis.lock_ttl", Message: "must not be negative"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no --config flag is given. A missing file at
// the default path is not an error.
const DefaultPath = "turing.yaml"

// Load reads the YAML file at path, applies defaults and validates.
// An empty path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
		}
	}

	ApplyDefaults(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// LoadWithEnvOverrides loads path and applies TURING_* environment
// variables on top. Environment variables follow the naming convention
// TURING_SECTION_FIELD (e.g., TURING_REDIS_ADDR).
//
// When path is DefaultPath and the file does not exist, loading continues
// from defaults.
func LoadWithEnvOverrides(path string) (*Config, error) {
	if path == DefaultPath {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	// Re-validate after overrides
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides to the configuration.
// Unparseable numbers and durations are reported rather than ignored.
func applyEnvOverrides(cfg *Config) error {
	var errs []FieldError

	str := func(name string, dst *string) {
		if val := os.Getenv(name); val != "" {
			*dst = val
		}
	}
	num := func(name string, dst *int) {
		if val := os.Getenv(name); val != "" {
			i, err := strconv.Atoi(val)
			if err != nil {
				errs = append(errs, FieldError{Field: name, Message: "must be an integer"})
				return
			}
			*dst = i
		}
	}
	dur := func(name string, dst *time.Duration) {
		if val := os.Getenv(name); val != "" {
			d, err := time.ParseDuration(val)
			if err != nil {
				errs = append(errs, FieldError{Field: name, Message: "must be a duration"})
				return
			}
			*dst = d
		}
	}

	str("TURING_MACHINES_DIR", &cfg.MachinesDir)
	num("TURING_MAX_STEPS", &cfg.MaxSteps)
	str("TURING_LOG_LEVEL", &cfg.LogLevel)
	str("TURING_STORE", &cfg.Store)
	str("TURING_SESSIONS_DIR", &cfg.SessionsDir)

	num("TURING_HTTP_PORT", &cfg.HTTP.Port)
	if val := os.Getenv("TURING_HTTP_METRICS"); val != "" {
		b, err := strconv.ParseBool(val)
		if err != nil {
			errs = append(errs, FieldError{Field: "TURING_HTTP_METRICS", Message: "must be a boolean"})
		} else {
			cfg.HTTP.Metrics = b
		}
	}

	str("TURING_REDIS_ADDR", &cfg.Redis.Addr)
	str("TURING_REDIS_PASSWORD", &cfg.Redis.Password)
	num("TURING_REDIS_DB", &cfg.Redis.DB)
	str("TURING_REDIS_PREFIX", &cfg.Redis.Prefix)
	dur("TURING_REDIS_TTL", &cfg.Redis.TTL)
	dur("TURING_REDIS_LOCK_TTL", &cfg.Redis.LockTTL)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// Package config loads the turing.yaml configuration file.
//
// Values come from three layers, later ones winning: built-in defaults, the
// YAML file, and TURING_* environment variables. Command-line flags are
// applied on top by the CLI.
package config

import "time"

// Session store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// Config is the root configuration.
type Config struct {
	// MachinesDir is a directory of definition files served alongside the
	// embedded machines. Empty means embedded machines only.
	MachinesDir string `yaml:"machines_dir"`

	// MaxSteps is the default step budget. A negative value means
	// unbounded, which only the CLI honors; servers keep their own cap.
	MaxSteps int `yaml:"max_steps"`

	LogLevel string `yaml:"log_level"`

	// Store selects the session backend: memory, file or redis.
	Store       string `yaml:"store"`
	SessionsDir string `yaml:"sessions_dir"`

	HTTP  HTTPConfig  `yaml:"http"`
	Redis RedisConfig `yaml:"redis"`
}

// HTTPConfig configures `turing serve`.
type HTTPConfig struct {
	Port    int  `yaml:"port"`
	Metrics bool `yaml:"metrics"`
}

// RedisConfig configures the redis session store and locker.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	Prefix   string        `yaml:"prefix"`
	TTL      time.Duration `yaml:"ttl"`
	LockTTL  time.Duration `yaml:"lock_ttl"`
}

// Default values.
const (
	DefaultMaxSteps    = 1_000_000
	DefaultLogLevel    = "warn"
	DefaultSessionsDir = ".turing/sessions"
	DefaultHTTPPort    = 8080
	DefaultRedisPrefix = "turing:session:"
	DefaultLockTTL     = 30 * time.Second
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// ApplyDefaults fills zero values with defaults.
func ApplyDefaults(cfg *Config) {
	if cfg.MaxSteps == 0 {
		cfg.MaxSteps = DefaultMaxSteps
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.Store == "" {
		cfg.Store = StoreMemory
	}
	if cfg.SessionsDir == "" {
		cfg.SessionsDir = DefaultSessionsDir
	}
	if cfg.HTTP.Port == 0 {
		cfg.HTTP.Port = DefaultHTTPPort
	}
	if cfg.Redis.Prefix == "" {
		cfg.Redis.Prefix = DefaultRedisPrefix
	}
	if cfg.Redis.LockTTL == 0 {
		cfg.Redis.LockTTL = DefaultLockTTL
	}
}

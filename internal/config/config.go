// Package config loads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/zap/zapcore"

	"github.com/goliatone/go-configtypes/pkg/activity"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "CONFIGTYPES_"

// Config holds settings shared by every command.
type Config struct {
	Addr            string        `env:"ADDR"             envDefault:":8080"`
	SnapshotPath    string        `env:"SNAPSHOT_PATH"`
	Watch           bool          `env:"WATCH"            envDefault:"false"`
	MaxDepth        int           `env:"MAX_DEPTH"        envDefault:"32"`
	MaxParallelism  int           `env:"MAX_PARALLELISM"  envDefault:"10"`
	CacheSize       int           `env:"CACHE_SIZE"       envDefault:"4096"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	LogLevel        string        `env:"LOG_LEVEL"        envDefault:"info"`
	LogDevelopment  bool          `env:"LOG_DEVELOPMENT"  envDefault:"false"`

	Activity activity.Config `envPrefix:"ACTIVITY_"`
}

// ParseEnv loads and validates configuration from the process environment.
func ParseEnv() (Config, error) {
	return validated(LoadEnv())
}

// ParseEnvFrom loads and validates configuration from environ instead of the
// process environment. Keys carry the prefix.
func ParseEnvFrom(environ map[string]string) (Config, error) {
	return validated(LoadEnvFrom(environ))
}

// LoadEnv reads the process environment without validating, for callers that
// apply further overrides and call Validate themselves.
func LoadEnv() (Config, error) {
	return load(env.Options{Prefix: EnvPrefix})
}

// LoadEnvFrom is LoadEnv reading environ.
func LoadEnvFrom(environ map[string]string) (Config, error) {
	return load(env.Options{Prefix: EnvPrefix, Environment: environ})
}

func load(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("config: parse env: %w", err)
	}
	return cfg, nil
}

func validated(cfg Config, err error) (Config, error) {
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports settings that cannot be used. A zero CacheSize disables
// the closure cache.
func (c Config) Validate() error {
	var errs []error
	if c.MaxDepth <= 0 {
		errs = append(errs, fmt.Errorf("max depth must be positive, got %d", c.MaxDepth))
	}
	if c.MaxParallelism <= 0 {
		errs = append(errs, fmt.Errorf("max parallelism must be positive, got %d", c.MaxParallelism))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache size must not be negative, got %d", c.CacheSize))
	}
	if c.Watch && c.SnapshotPath == "" {
		errs = append(errs, errors.New("watch requires a snapshot path"))
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("log level: %w", err))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Level returns the parsed log level, defaulting to info.
func (c Config) Level() zapcore.Level {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/spf13/viper"

	"github.com/smartcontractkit/domain-coordinator/dispatch"
	"github.com/smartcontractkit/domain-coordinator/pkg/logger"
)

// Supported history store drivers.
const (
	DriverPostgres = "postgres"
	DriverRamSQL   = "ramsql"
)

// CoordinatorConfig identifies the host this process coordinates from.
type CoordinatorConfig struct {
	LocalHostName string `mapstructure:"local_host_name" yaml:"local_host_name"` // The name of the coordinating host
}

// DispatchConfig controls how operations are fanned out to the hosts.
type DispatchConfig struct {
	MaxAttempts    uint          `mapstructure:"max_attempts" yaml:"max_attempts"`         // Attempts per host, the first one included
	RetryDelay     time.Duration `mapstructure:"retry_delay" yaml:"retry_delay"`           // Base backoff delay between attempts
	Concurrency    int           `mapstructure:"concurrency" yaml:"concurrency"`           // Hosts executing at once, 0 for no limit
	HostTimeout    time.Duration `mapstructure:"host_timeout" yaml:"host_timeout"`         // Timeout of a single attempt, 0 for none
	MinHostVersion string        `mapstructure:"min_host_version" yaml:"min_host_version"` // Hosts below this management version are skipped
}

// LogConfig configures the runtime logger.
type LogConfig struct {
	Level    string `mapstructure:"level" yaml:"level"`       // debug, info, warn or error
	Encoding string `mapstructure:"encoding" yaml:"encoding"` // json or console
}

// HistoryConfig configures the store of finalized outcomes.
//
// WARNING: The DSN may contain credentials and should not be logged.
type HistoryConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"` // postgres or ramsql
	DSN    string `mapstructure:"dsn" yaml:"dsn"`       // Secret: the data source name
}

// Config wraps the entire configuration of the coordinator.
type Config struct {
	Coordinator CoordinatorConfig `mapstructure:"coordinator" yaml:"coordinator"`
	Dispatch    DispatchConfig    `mapstructure:"dispatch" yaml:"dispatch"`
	Log         LogConfig         `mapstructure:"log" yaml:"log"`
	History     HistoryConfig     `mapstructure:"history" yaml:"history"`
}

// Load loads the config from the file path, falling back to env vars if the file does not exist.
// If the file exists, any env vars that are set will override the values loaded from the file.
func Load(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	// If the config file exists, we continue to read it, otherwise we fallback to using
	// environment variables
	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadEnv loads the config from the environment variables.
func LoadEnv() (*Config, error) {
	v := newViper()

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// LoadFile loads the config from a file.
func LoadFile(filePath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(filePath)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	cfg := &Config{}
	err := v.Unmarshal(cfg)

	return cfg, err
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Coordinator.LocalHostName == "" {
		errs = append(errs, errors.New("coordinator.local_host_name is required"))
	}
	if c.Dispatch.Concurrency < 0 {
		errs = append(errs, fmt.Errorf("dispatch.concurrency must not be negative, got %d", c.Dispatch.Concurrency))
	}
	if _, err := c.Dispatch.minHostVersion(); err != nil {
		errs = append(errs, err)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if c.History.Driver != DriverPostgres && c.History.Driver != DriverRamSQL {
		errs = append(errs, fmt.Errorf("history.driver must be %q or %q, got %q", DriverPostgres, DriverRamSQL, c.History.Driver))
	}

	return errors.Join(errs...)
}

// DispatcherConfig returns the dispatcher settings.
func (c DispatchConfig) DispatcherConfig() (dispatch.Config, error) {
	minVersion, err := c.minHostVersion()
	if err != nil {
		return dispatch.Config{}, err
	}

	return dispatch.Config{
		Concurrency:    c.Concurrency,
		HostTimeout:    c.HostTimeout,
		MinHostVersion: minVersion,
		Retry: dispatch.RetryPolicy{
			MaxAttempts: c.MaxAttempts,
			Delay:       c.RetryDelay,
		},
	}, nil
}

func (c DispatchConfig) minHostVersion() (*semver.Version, error) {
	if c.MinHostVersion == "" {
		return nil, nil //nolint:nilnil // no minimum
	}
	v, err := semver.NewVersion(c.MinHostVersion)
	if err != nil {
		return nil, fmt.Errorf("dispatch.min_host_version: %w", err)
	}

	return v, nil
}

// Logger builds the runtime logger.
func (c LogConfig) Logger() (logger.Logger, error) {
	lvl, err := logger.ParseLevel(c.Level)
	if err != nil {
		return nil, err
	}
	cfg := logger.Config{Level: lvl, Encoding: c.Encoding}

	return cfg.New()
}

func newViper() *viper.Viper {
	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}

	return v
}

var (
	defaults = map[string]any{
		"dispatch.max_attempts": 3,
		"dispatch.retry_delay":  "100ms",
		"dispatch.concurrency":  8,
		"dispatch.host_timeout": "30s",
		"log.level":             "info",
		"log.encoding":          "json",
		"history.driver":        DriverRamSQL,
		"history.dsn":           "domain-history",
	}

	// envBindings maps each config key to the environment variables that can provide its value.
	// The first name is the preferred one; a second name is the legacy variable still honored
	// for existing deployments. Viper uses the first one that is set.
	envBindings = map[string][]string{
		"coordinator.local_host_name": {"COORDINATOR_LOCAL_HOST_NAME", "DOMAIN_HOST_NAME"},
		"dispatch.max_attempts":       {"DISPATCH_MAX_ATTEMPTS"},
		"dispatch.retry_delay":        {"DISPATCH_RETRY_DELAY"},
		"dispatch.concurrency":        {"DISPATCH_CONCURRENCY", "DOMAIN_DISPATCH_THREADS"},
		"dispatch.host_timeout":       {"DISPATCH_HOST_TIMEOUT", "DOMAIN_HOST_TIMEOUT"},
		"dispatch.min_host_version":   {"DISPATCH_MIN_HOST_VERSION"},
		"log.level":                   {"LOG_LEVEL", "DOMAIN_LOG_LEVEL"},
		"log.encoding":                {"LOG_ENCODING"},
		"history.driver":              {"HISTORY_DRIVER"},
		"history.dsn":                 {"HISTORY_DSN", "DATABASE_URL"},
	}
)

// bindEnvs binds the environment variables to the viper instance.
func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		// Prepend the config key to the start of the arguments
		inputs := slices.Insert(envs, 0, key)

		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}

	return nil
}

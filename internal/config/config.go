package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v11"
)

// EnvPrefix is prepended to every variable name.
const EnvPrefix = "JOBGRAPH_"

// Config is the configuration of a jobgraph process.
type Config struct {
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"text"`

	// Listen is the coordinator's HTTP address.
	Listen         string `env:"LISTEN" envDefault:":7070"`
	CoordinatorURL string `env:"COORDINATOR_URL" envDefault:"http://localhost:7070"`
	Policy         string `env:"POLICY" envDefault:"equity"`
	JobsDir        string `env:"JOBS_DIR" envDefault:"jobs"`

	// WorkerCapacity of zero lets the coordinator choose.
	WorkerCapacity int           `env:"WORKER_CAPACITY" envDefault:"0"`
	TaskDelay      time.Duration `env:"TASK_DELAY" envDefault:"0s"`
	MaxCapacity    int           `env:"MAX_CAPACITY" envDefault:"2"`
}

var (
	ErrInvalidLogLevel  = errors.New("invalid log level: must be 'debug', 'info', 'warn', or 'error'")
	ErrInvalidLogFormat = errors.New("invalid log format: must be 'text' or 'json'")
	ErrInvalidPolicy    = errors.New("invalid policy: must be 'equity' or 'first-fit'")
	ErrInvalidValue     = errors.New("invalid configuration value")
)

// Load reads the configuration from the process environment.
func Load() (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix})
}

// LoadFrom reads the configuration from vars instead of the process
// environment.
func LoadFrom(vars map[string]string) (*Config, error) {
	return parse(env.Options{Prefix: EnvPrefix, Environment: vars})
}

func parse(opts env.Options) (*Config, error) {
	cfg, err := env.ParseAsWithOptions[Config](opts)
	if err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return &cfg, nil
}

// Validate rejects unknown enum values and out-of-range numbers.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}
	switch c.Policy {
	case "equity", "first-fit":
	default:
		return ErrInvalidPolicy
	}
	if c.WorkerCapacity < 0 {
		return fmt.Errorf("%w: worker capacity %d is negative", ErrInvalidValue, c.WorkerCapacity)
	}
	if c.MaxCapacity < 1 {
		return fmt.Errorf("%w: max capacity %d is below 1", ErrInvalidValue, c.MaxCapacity)
	}
	if c.TaskDelay < 0 {
		return fmt.Errorf("%w: task delay %s is negative", ErrInvalidValue, c.TaskDelay)
	}
	if c.CoordinatorURL != "" {
		u, err := url.Parse(c.CoordinatorURL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("%w: coordinator url %q", ErrInvalidValue, c.CoordinatorURL)
		}
	}
	return nil
}

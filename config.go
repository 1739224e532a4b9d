package hubclient

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment keys read by LoadConfig.
const (
	EnvHubURL       = "HUB_URL"
	EnvTimeout      = "HUB_TIMEOUT"
	EnvPollAttempts = "HUB_POLL_ATTEMPTS"
	EnvPollInterval = "HUB_POLL_INTERVAL"
)

// DefaultHubURL is used when no source sets the hub URL.
const DefaultHubURL = "http://localhost:9080"

// Config is the process-wide harness configuration. It is read once at start
// and not changed during a run.
type Config struct {
	HubURL  string        `yaml:"hubUrl"`
	Timeout time.Duration `yaml:"timeout"`
	Poll    PollPolicy    `yaml:"poll"`
}

// ConfigOption selects the sources LoadConfig reads.
type ConfigOption func(*configSources)

type configSources struct {
	yamlPath   string
	dotEnvPath string
	lookupEnv  func(string) (string, bool)
}

// WithConfigFile reads a YAML file (e.g. hubtest.yaml). A missing file is skipped.
func WithConfigFile(path string) ConfigOption {
	return func(s *configSources) { s.yamlPath = path }
}

// WithDotEnv reads a .env file. A missing file is skipped.
func WithDotEnv(path string) ConfigOption {
	return func(s *configSources) { s.dotEnvPath = path }
}

// WithEnvLookup replaces os.LookupEnv, mainly for tests.
func WithEnvLookup(lookup func(string) (string, bool)) ConfigOption {
	return func(s *configSources) { s.lookupEnv = lookup }
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		HubURL:  DefaultHubURL,
		Timeout: 30 * time.Second,
		Poll:    DefaultPollPolicy(),
	}
}

// LoadConfig builds the configuration from, in increasing precedence:
// defaults, the YAML file, the .env file, and the OS environment.
func LoadConfig(options ...ConfigOption) (*Config, error) {
	sources := &configSources{lookupEnv: os.LookupEnv}
	for _, option := range options {
		option(sources)
	}

	cfg := DefaultConfig()

	if sources.yamlPath != "" {
		if err := cfg.mergeYAML(sources.yamlPath); err != nil {
			return nil, err
		}
	}

	var dotEnvVars map[string]string
	if sources.dotEnvPath != "" {
		loaded, err := godotenv.Read(sources.dotEnvPath)
		switch {
		case err == nil:
			dotEnvVars = loaded
		case errors.Is(err, os.ErrNotExist):
			slog.Debug("LoadConfig: no .env file", "path", sources.dotEnvPath)
		default:
			return nil, fmt.Errorf("reading %s: %w", sources.dotEnvPath, err)
		}
	}

	lookup := func(key string) (string, bool) {
		if value, ok := sources.lookupEnv(key); ok {
			return value, true
		}
		value, ok := dotEnvVars[key]
		return value, ok
	}
	if err := cfg.mergeEnv(lookup); err != nil {
		return nil, err
	}

	if err := cfg.Poll.validate(); err != nil {
		return nil, err
	}
	slog.Debug("LoadConfig: loaded", "hubURL", cfg.HubURL, "timeout", cfg.Timeout, "pollAttempts", cfg.Poll.MaxAttempts)
	return cfg, nil
}

func (c *Config) mergeYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Debug("LoadConfig: no config file", "path", path)
			return nil
		}
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}
	return nil
}

func (c *Config) mergeEnv(lookup func(string) (string, bool)) error {
	if value, ok := lookup(EnvHubURL); ok && value != "" {
		c.HubURL = value
	}
	if value, ok := lookup(EnvTimeout); ok && value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvTimeout, err)
		}
		c.Timeout = timeout
	}
	if value, ok := lookup(EnvPollAttempts); ok && value != "" {
		attempts, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollAttempts, err)
		}
		c.Poll.MaxAttempts = attempts
	}
	if value, ok := lookup(EnvPollInterval); ok && value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvPollInterval, err)
		}
		c.Poll.InitialInterval = interval
	}
	return nil
}

// NewClient builds a Client pointed at the configured hub.
func (c *Config) NewClient(options ...ClientOption) (*Client, error) {
	base := []ClientOption{
		WithBaseURL(c.HubURL),
		WithTimeout(c.Timeout),
		WithPollPolicy(c.Poll),
	}
	return NewClient(append(base, options...)...)
}

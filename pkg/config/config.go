// Package config defines the tool configuration: which binaries drive
// the fetches, where packages are downloaded from, and how the tool
// logs. Configuration is explicit — strategy switches like "use an
// external cipd binary" are config values threaded into the engine, not
// process-wide state read from the environment at init.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config is the depsync tool configuration.
type Config struct {
	// PackageHost is the binary-package repository base URL.
	PackageHost string `yaml:"package_host" validate:"required,url"`

	// GitBinary is the git executable used for source checkouts.
	GitBinary string `yaml:"git_binary" validate:"required"`

	// CIPDBinary, when set, switches package retrieval to the external
	// cipd tool. Empty selects the built-in zip fetcher.
	CIPDBinary string `yaml:"cipd_binary"`

	// Interpreter replaces python3-family tokens in hook actions. Empty
	// means resolve python3 from PATH at engine construction.
	Interpreter string `yaml:"interpreter"`

	// Download configures the built-in package downloader.
	Download DownloadConfig `yaml:"download"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`
}

// DownloadConfig configures the built-in package downloader.
type DownloadConfig struct {
	// Retries is how many times a failed download is retried. The core
	// fetch contract performs no retries; this is an opt-in wrapper.
	Retries int `yaml:"retries" validate:"min=0,max=10"`

	// RetryWait is the initial retry delay, doubled at each retry.
	RetryWait time.Duration `yaml:"retry_wait"`

	// Timeout bounds a single download request. Zero means no timeout.
	Timeout time.Duration `yaml:"timeout"`
}

// LoggingConfig configures structured logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"omitempty,oneof=console json"`
	Output string `yaml:"output"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		PackageHost: "https://chrome-infra-packages.appspot.com",
		GitBinary:   "git",
		Download: DownloadConfig{
			Retries:   0,
			RetryWait: 5 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
	}
}

// Load reads a YAML configuration file over the defaults and validates
// the result. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

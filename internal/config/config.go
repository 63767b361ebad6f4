// Package config provides configuration management for FairFund.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/fairfund/fairfund/internal/fileutil"
)

// Config represents the application configuration.
type Config struct {
	Version  int            `yaml:"version"`
	Home     string         `yaml:"home"`
	Origin   string         `yaml:"origin"`
	Token    TokenConfig    `yaml:"token"`
	Backend  BackendConfig  `yaml:"backend"`
	Ethereum EthereumConfig `yaml:"ethereum"`
	Funding  FundingConfig  `yaml:"funding"`
	Timeouts TimeoutsConfig `yaml:"timeouts"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// TokenConfig defines the platform token being purchased.
type TokenConfig struct {
	Symbol   string `yaml:"symbol"`
	Decimals int    `yaml:"decimals"`
}

// BackendConfig defines the payment backend settings.
type BackendConfig struct {
	BaseURL        string  `yaml:"base_url"`
	APIKey         string  `yaml:"api_key"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	RatePerSecond  float64 `yaml:"rate_per_second"`
	Burst          int     `yaml:"burst"`
}

// EthereumConfig defines the injected-provider RPC settings.
type EthereumConfig struct {
	RPC     string `yaml:"rpc"`
	ChainID int64  `yaml:"chain_id"`
	Account string `yaml:"account,omitempty"`
}

// FundingConfig defines funding-flow tuning and per-currency fallbacks.
type FundingConfig struct {
	DebounceMillis    int               `yaml:"debounce_ms"`
	MaxAmount         float64           `yaml:"max_amount"`
	FallbackAddresses map[string]string `yaml:"fallback_addresses"`
}

// TimeoutsConfig bounds the asynchronous external calls.
type TimeoutsConfig struct {
	ActivationSeconds int `yaml:"activation_seconds"`
	ReadSeconds       int `yaml:"read_seconds"`
}

// LoggingConfig defines logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Load reads configuration from the specified file.
func Load(path string) (*Config, error) {
	// #nosec G304 -- config file path is from validated user input
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to the specified file.
func Save(cfg *Config, path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// Atomic write so a crash mid-save never truncates an existing config.
	return fileutil.WriteAtomic(path, data, 0o600)
}

// Path returns the default config file path.
func Path(home string) string {
	return filepath.Join(home, "config.yaml")
}

// GetHome returns the fairfund home directory path.
func (c *Config) GetHome() string {
	return c.Home
}

// GetOrigin returns the application origin used for mobile deep links.
func (c *Config) GetOrigin() string {
	return c.Origin
}

// GetBackendBaseURL returns the payment backend base URL.
func (c *Config) GetBackendBaseURL() string {
	return c.Backend.BaseURL
}

// GetETHRPC returns the Ethereum RPC URL.
func (c *Config) GetETHRPC() string {
	return c.Ethereum.RPC
}

// GetLoggingLevel returns the configured logging level.
func (c *Config) GetLoggingLevel() string {
	return c.Logging.Level
}

// GetLoggingFile returns the configured log file path.
func (c *Config) GetLoggingFile() string {
	return c.Logging.File
}

// FallbackAddress returns the static fallback deposit address for a currency,
// or empty when none is configured.
func (c *Config) FallbackAddress(currency string) string {
	return c.Funding.FallbackAddresses[currency]
}

// DefaultHome returns the default fairfund home directory.
func DefaultHome() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".fairfund"
	}
	return filepath.Join(home, ".fairfund")
}

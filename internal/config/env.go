package config

import (
	"os"
	"strconv"
	"strings"
)

// Environment variable names.
const (
	EnvHome          = "FAIRFUND_HOME"
	EnvOrigin        = "FAIRFUND_ORIGIN"
	EnvBackendURL    = "FAIRFUND_BACKEND_URL"
	EnvBackendAPIKey = "FAIRFUND_BACKEND_API_KEY" // #nosec G101 -- false positive, this is a const name not a credential
	EnvETHRPC        = "FAIRFUND_ETH_RPC"
	EnvLogLevel      = "FAIRFUND_LOG_LEVEL"
	EnvDebounceMS    = "FAIRFUND_DEBOUNCE_MS"
)

// ApplyEnvironment applies environment variable overrides to the configuration.
func ApplyEnvironment(cfg *Config) {
	if v := os.Getenv(EnvHome); v != "" {
		cfg.Home = v
	}

	if v := os.Getenv(EnvOrigin); v != "" {
		cfg.Origin = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvBackendURL); v != "" {
		cfg.Backend.BaseURL = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvBackendAPIKey); v != "" {
		cfg.Backend.APIKey = v
	}

	if v := os.Getenv(EnvETHRPC); v != "" {
		cfg.Ethereum.RPC = strings.TrimSpace(v)
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}

	if v := os.Getenv(EnvDebounceMS); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			cfg.Funding.DebounceMillis = ms
		}
	}
}

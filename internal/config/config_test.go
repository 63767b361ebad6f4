package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairfund/fairfund/internal/config"
)

func TestLoadSave_RoundTrip(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	// Create config with custom values
	cfg := config.Defaults()
	cfg.Backend.BaseURL = "https://api.staging.fairfund.io"
	cfg.Backend.APIKey = "test-api-key"
	cfg.Ethereum.RPC = "https://mainnet.infura.io/v3/YOUR-KEY"
	cfg.Funding.FallbackAddresses = map[string]string{
		"BTC": "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
	}

	// Save
	err := config.Save(cfg, path)
	require.NoError(t, err)

	// Verify file exists
	_, err = os.Stat(path)
	require.NoError(t, err)

	// Load
	loaded, err := config.Load(path)
	require.NoError(t, err)

	// Verify values
	assert.Equal(t, cfg.Version, loaded.Version)
	assert.Equal(t, cfg.Backend.BaseURL, loaded.Backend.BaseURL)
	assert.Equal(t, cfg.Backend.APIKey, loaded.Backend.APIKey)
	assert.Equal(t, cfg.Ethereum.RPC, loaded.Ethereum.RPC)
	assert.Equal(t, cfg.Funding.FallbackAddresses, loaded.Funding.FallbackAddresses)
}

func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "config.yaml")

	partial := []byte("token:\n  symbol: WFAIR\n")
	require.NoError(t, os.WriteFile(path, partial, 0o600))

	loaded, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "WFAIR", loaded.Token.Symbol)
	// Unspecified fields keep their defaults
	assert.Equal(t, config.DefaultDebounceMillis, loaded.Funding.DebounceMillis)
	assert.Equal(t, config.DefaultETHRPCURL, loaded.Ethereum.RPC)
}

func TestLoad_Missing(t *testing.T) {
	t.Parallel()
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()

	assert.Equal(t, 1, cfg.Version)
	assert.Equal(t, "~/.fairfund", cfg.Home)
	assert.Equal(t, "PLAY", cfg.Token.Symbol)
	assert.Equal(t, 18, cfg.Token.Decimals)
	assert.Equal(t, config.DefaultETHRPCURL, cfg.Ethereum.RPC)
	assert.Equal(t, int64(1), cfg.Ethereum.ChainID)
	assert.Equal(t, 500, cfg.Funding.DebounceMillis)
	assert.InDelta(t, 2000.0, cfg.Funding.MaxAmount, 0)
	assert.Equal(t, 10, cfg.Timeouts.ActivationSeconds)
	assert.Equal(t, 5, cfg.Timeouts.ReadSeconds)
	assert.Equal(t, "error", cfg.Logging.Level)
}

func TestFallbackAddress(t *testing.T) {
	t.Parallel()
	cfg := config.Defaults()
	cfg.Funding.FallbackAddresses = map[string]string{
		"BTC": "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh",
		"ETH": "0x8ba1f109551bD432803012645Ac136ddd64DBA72",
	}

	assert.Equal(t, "bc1qxy2kgdygjrsqtzq2n0yrf2493p83kkfjhx0wlh", cfg.FallbackAddress("BTC"))
	assert.Equal(t, "0x8ba1f109551bD432803012645Ac136ddd64DBA72", cfg.FallbackAddress("ETH"))
	assert.Empty(t, cfg.FallbackAddress("LTC"))
}

func TestPath(t *testing.T) {
	t.Parallel()
	assert.Equal(t, filepath.Join("/tmp/home", "config.yaml"), config.Path("/tmp/home"))
}

package config

// DefaultETHRPCURL is the default Ethereum RPC endpoint.
// Uses PublicNode (Allnodes), a privacy-first provider that requires no API key.
const DefaultETHRPCURL = "https://ethereum-rpc.publicnode.com"

// DefaultDebounceMillis is the quiet window applied to amount edits before a
// conversion estimate is requested.
const DefaultDebounceMillis = 500

// DefaultMaxAmount is the ceiling a front end should apply to the amount input.
const DefaultMaxAmount = 2000

// Defaults returns the default configuration.
func Defaults() *Config {
	return &Config{
		Version: 1,
		Home:    "~/.fairfund",
		Origin:  "https://app.fairfund.io",
		Token: TokenConfig{
			Symbol:   "PLAY",
			Decimals: 18,
		},
		Backend: BackendConfig{
			BaseURL:        "https://api.fairfund.io",
			TimeoutSeconds: 5,
			RatePerSecond:  5,
			Burst:          10,
		},
		Ethereum: EthereumConfig{
			RPC:     DefaultETHRPCURL,
			ChainID: 1,
		},
		Funding: FundingConfig{
			DebounceMillis:    DefaultDebounceMillis,
			MaxAmount:         DefaultMaxAmount,
			FallbackAddresses: map[string]string{},
		},
		Timeouts: TimeoutsConfig{
			ActivationSeconds: 10,
			ReadSeconds:       5,
		},
		Logging: LoggingConfig{
			Level: "error",
			File:  "~/.fairfund/logs/fairfund.log",
		},
	}
}

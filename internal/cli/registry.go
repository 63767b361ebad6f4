package cli

import (
	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/config"
	"github.com/fairfund/fairfund/internal/ethprovider"
	"github.com/fairfund/fairfund/internal/wallet"
)

// trustWalletLink opens the Trust Wallet app or its install page.
const trustWalletLink = "https://link.trustwallet.com/open_url?coin_id=60&url=https://fairfund.io"

// walletEnvironment bundles everything the connect flow needs: the option
// registry, environment facts, and the provider capabilities when an RPC
// endpoint is configured.
type walletEnvironment struct {
	registry *wallet.Registry
	facts    wallet.Facts
	provider *ethprovider.Provider
}

// buildWalletEnvironment assembles the wallet registry from configuration.
// When an Ethereum RPC endpoint is configured it backs the injected-family
// and pairing options; without one those options are filtered out by the
// injected-detection fact.
func buildWalletEnvironment(cfg *config.Config, mobile bool, logger *zap.Logger) *walletEnvironment {
	env := &walletEnvironment{
		facts: wallet.Facts{
			Mobile: mobile,
			Origin: cfg.GetOrigin(),
		},
	}

	var connector wallet.Connector
	if cfg.GetETHRPC() != "" {
		provider, err := ethprovider.New(&ethprovider.Options{
			RPCURL:  cfg.GetETHRPC(),
			ChainID: cfg.Ethereum.ChainID,
			Account: cfg.Ethereum.Account,
			Logger:  logger,
		})
		if err == nil {
			env.provider = provider
			connector = provider
			env.facts.InjectedDetected = true
		} else {
			logger.Warn("ethereum provider unavailable", zap.Error(err))
		}
	}

	env.registry = wallet.NewRegistry([]wallet.Option{
		{
			ID:          "metamask",
			DisplayName: "MetaMask",
			IconRef:     "metamask",
			Connector:   connector,
			Injected:    true,
			Branded:     true,
			Mobile:      true,
		},
		{
			ID:          "injected",
			DisplayName: "Browser Wallet",
			IconRef:     "wallet",
			Connector:   connector,
			Injected:    true,
			Mobile:      true,
		},
		{
			ID:          "walletconnect",
			DisplayName: "WalletConnect",
			IconRef:     "walletconnect",
			Connector:   connector,
			Mobile:      true,
		},
		{
			ID:           "trust",
			DisplayName:  "Trust Wallet",
			IconRef:      "trust",
			Mobile:       true,
			MobileOnly:   true,
			ExternalLink: trustWalletLink,
		},
	})

	return env
}

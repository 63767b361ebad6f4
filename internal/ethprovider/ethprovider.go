// Package ethprovider exposes an Ethereum JSON-RPC endpoint as a wallet
// connector and balance reader for the connect flow.
package ethprovider

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/wallet"
	funderr "github.com/fairfund/fairfund/pkg/errors"
)

// ConnectorID identifies the RPC-backed connector in the wallet registry.
const ConnectorID = "eth-rpc"

// Backend is the subset of the Ethereum client used by the provider.
type Backend interface {
	BalanceAt(ctx context.Context, account common.Address, blockNumber *big.Int) (*big.Int, error)
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// Dialer opens a Backend for an RPC URL. The default dials with ethclient.
type Dialer func(ctx context.Context, rawURL string) (Backend, error)

func defaultDialer(ctx context.Context, rawURL string) (Backend, error) {
	return ethclient.DialContext(ctx, rawURL)
}

// Options configures the provider.
type Options struct {
	// RPCURL is the Ethereum JSON-RPC endpoint. Required.
	RPCURL string

	// ChainID, when non-zero, is verified against the endpoint during
	// activation; a mismatch fails with an unsupported-chain error.
	ChainID int64

	// Account is the address the connector reports once active.
	Account string

	// Dialer overrides the default ethclient dialer.
	Dialer Dialer

	// Logger receives connection diagnostics. Nil disables logging.
	Logger *zap.Logger
}

// Provider is an RPC-backed wallet connector and balance reader.
type Provider struct {
	rpcURL  string
	chainID int64
	account string
	dial    Dialer
	logger  *zap.Logger

	mu      sync.Mutex
	backend Backend
}

// New creates an Ethereum RPC provider.
func New(opts *Options) (*Provider, error) {
	if opts == nil || opts.RPCURL == "" {
		return nil, funderr.WithDetails(funderr.ErrProviderUnavailable,
			map[string]string{"reason": "rpc url is required"})
	}

	p := &Provider{
		rpcURL:  opts.RPCURL,
		chainID: opts.ChainID,
		account: opts.Account,
		dial:    opts.Dialer,
		logger:  opts.Logger,
	}
	if p.dial == nil {
		p.dial = defaultDialer
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p, nil
}

// ID returns the connector identifier.
func (p *Provider) ID() string { return ConnectorID }

// Activate dials the RPC endpoint, verifies the chain, and returns the
// configured account address.
func (p *Provider) Activate(ctx context.Context) (string, error) {
	backend, err := p.dial(ctx, p.rpcURL)
	if err != nil {
		p.logger.Debug("rpc dial failed", zap.String("url", p.rpcURL), zap.Error(err))
		return "", wallet.NewNoProviderError("no Ethereum provider reachable at " + p.rpcURL)
	}

	chainID, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return "", fmt.Errorf("querying chain id: %w", err)
	}
	if p.chainID != 0 && chainID.Int64() != p.chainID {
		backend.Close()
		p.logger.Debug("chain id mismatch",
			zap.Int64("want", p.chainID), zap.Int64("got", chainID.Int64()))
		return "", wallet.NewUnsupportedChainError(
			fmt.Sprintf("endpoint serves chain %d, expected %d", chainID.Int64(), p.chainID))
	}

	if !common.IsHexAddress(p.account) {
		backend.Close()
		return "", funderr.WithDetails(funderr.ErrInvalidInput,
			map[string]string{"account": p.account})
	}

	p.mu.Lock()
	p.backend = backend
	p.mu.Unlock()
	return common.HexToAddress(p.account).Hex(), nil
}

// ResetSession closes any open RPC connection so the next activation starts
// from a clean handshake.
func (p *Provider) ResetSession() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.backend != nil {
		p.backend.Close()
		p.backend = nil
	}
}

// ReadBalance returns the on-chain balance for an address in wei.
func (p *Provider) ReadBalance(ctx context.Context, address string) (*big.Int, error) {
	if !common.IsHexAddress(address) {
		return nil, funderr.WithDetails(funderr.ErrInvalidInput,
			map[string]string{"address": address})
	}

	p.mu.Lock()
	backend := p.backend
	if backend == nil {
		var err error
		backend, err = p.dial(ctx, p.rpcURL)
		if err != nil {
			p.mu.Unlock()
			return nil, fmt.Errorf("%w: %w", funderr.ErrProviderUnavailable, err)
		}
		p.backend = backend
	}
	p.mu.Unlock()

	balance, err := backend.BalanceAt(ctx, common.HexToAddress(address), nil)
	if err != nil {
		return nil, fmt.Errorf("reading balance for %s: %w",
			shortenAddress(address), err)
	}
	return balance, nil
}

// Unlocked reports whether the provider has an account to sign with. An RPC
// endpoint has no lock screen, so a configured account counts as unlocked.
func (p *Provider) Unlocked(_ context.Context) (bool, error) {
	return common.IsHexAddress(p.account), nil
}

// shortenAddress renders an address as 0x1234...abcd for log and error text.
func shortenAddress(address string) string {
	if len(address) <= 10 {
		return address
	}
	return address[:6] + "..." + strings.ToLower(address[len(address)-4:])
}

// Package funding implements the crypto-funding pipeline: deposit channel
// provisioning, debounced price conversion, and purchase confirmation.
package funding

import (
	"regexp"
	"strings"

	funderr "github.com/fairfund/fairfund/pkg/errors"
)

// Tab identifies a source cryptocurrency in the funding flow.
type Tab string

// Supported deposit currencies.
const (
	TabBitcoin  Tab = "bitcoin"
	TabEthereum Tab = "ethereum"
	TabLitecoin Tab = "litecoin"
)

// Address validation patterns per currency.
var (
	bitcoinAddressRegex  = regexp.MustCompile(`^(bc1|[13])[a-zA-HJ-NP-Z0-9]{25,39}$`)
	ethereumAddressRegex = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	litecoinAddressRegex = regexp.MustCompile(`^[LM3][a-km-zA-HJ-NP-Z1-9]{26,33}$`)
)

// Tabs returns the ordered set of selectable currencies.
func Tabs() []Tab {
	return []Tab{TabBitcoin, TabEthereum, TabLitecoin}
}

// Code returns the short currency code sent to the backend.
func (t Tab) Code() string {
	switch t {
	case TabBitcoin:
		return "BTC"
	case TabEthereum:
		return "ETH"
	case TabLitecoin:
		return "LTC"
	default:
		return ""
	}
}

// DisplayName returns the human-readable currency name.
func (t Tab) DisplayName() string {
	switch t {
	case TabBitcoin:
		return "Bitcoin"
	case TabEthereum:
		return "Ethereum"
	case TabLitecoin:
		return "Litecoin"
	default:
		return string(t)
	}
}

// IsValid returns true if the tab is a supported currency.
func (t Tab) IsValid() bool {
	switch t {
	case TabBitcoin, TabEthereum, TabLitecoin:
		return true
	default:
		return false
	}
}

// ValidAddress reports whether an address matches the currency's format.
func (t Tab) ValidAddress(address string) bool {
	switch t {
	case TabBitcoin:
		return bitcoinAddressRegex.MatchString(address)
	case TabEthereum:
		return ethereumAddressRegex.MatchString(address)
	case TabLitecoin:
		return litecoinAddressRegex.MatchString(address)
	default:
		return false
	}
}

// ParseTab resolves a tab from a currency name or short code.
func ParseTab(s string) (Tab, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "bitcoin", "btc":
		return TabBitcoin, nil
	case "ethereum", "eth":
		return TabEthereum, nil
	case "litecoin", "ltc":
		return TabLitecoin, nil
	default:
		return "", funderr.WithDetails(funderr.ErrInvalidCurrency, map[string]string{"currency": s})
	}
}

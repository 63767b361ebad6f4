// Package wallet defines the wallet-linking abstractions: registry options,
// connector capabilities, environment facts, and activation error
// classification.
package wallet

import "context"

// Connector abstracts a specific wallet-linking mechanism, such as a
// browser-injected provider or a remote pairing session.
type Connector interface {
	// ID identifies the connector for active-option comparison.
	ID() string

	// Activate performs the asynchronous handshake that authorizes the
	// application to read the account address. Failures should carry an
	// *ActivationError so they can be classified.
	Activate(ctx context.Context) (address string, err error)

	// ResetSession discards any cached single-use pairing state (such as a
	// stale pairing URI) so a fresh one is generated on the next Activate.
	ResetSession()
}

// UnlockReporter is an optional capability exposed by injected providers that
// can report whether the wallet is currently unlocked.
type UnlockReporter interface {
	Unlocked(ctx context.Context) (bool, error)
}

// Option is an immutable wallet registry entry.
type Option struct {
	ID           string
	DisplayName  string
	IconRef      string
	Connector    Connector // nil for link-only entries
	Injected     bool      // entry belongs to the injected-provider family
	Branded      bool      // brand-specific injected entry (vs. the generic one)
	Mobile       bool      // usable on mobile
	MobileOnly   bool      // hidden on desktop
	ExternalLink string    // external install/open link instead of a connector
}

// Facts captures the environment facts that drive option filtering and
// error-message guidance.
type Facts struct {
	Mobile           bool
	InjectedDetected bool   // an injected provider object exists
	KnownBrand       bool   // the detected provider matches the known primary brand
	Origin           string // application origin, embedded in mobile deep links
}

// FailureKind is the closed set of activation failure signals a connector may
// report. Classification operates on these tags plus the message, never on
// runtime type identity.
type FailureKind int

// Activation failure kinds.
const (
	FailureOther FailureKind = iota
	FailureNoProvider
	FailureUnsupportedChain
	FailureRejected
)

// ActivationError is the structured failure a connector returns from Activate.
type ActivationError struct {
	Kind    FailureKind
	Message string
}

func (e *ActivationError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	switch e.Kind {
	case FailureNoProvider:
		return "no wallet provider available"
	case FailureUnsupportedChain:
		return "unsupported chain"
	case FailureRejected:
		return "authorization rejected"
	default:
		return "activation failed"
	}
}

// NewNoProviderError reports that no compatible provider exists in the environment.
func NewNoProviderError(message string) *ActivationError {
	return &ActivationError{Kind: FailureNoProvider, Message: message}
}

// NewUnsupportedChainError reports a chain/network mismatch.
func NewUnsupportedChainError(message string) *ActivationError {
	return &ActivationError{Kind: FailureUnsupportedChain, Message: message}
}

// NewRejectedError reports that the user declined the authorization prompt.
func NewRejectedError(message string) *ActivationError {
	return &ActivationError{Kind: FailureRejected, Message: message}
}

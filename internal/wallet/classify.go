package wallet

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Category is the user-facing error taxonomy for activation failures.
type Category int

// Error categories.
const (
	CategoryUnknown Category = iota
	CategoryNoProvider
	CategoryUnsupportedChain
	CategoryUserRejected
	CategoryTimeout
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryNoProvider:
		return "no_provider"
	case CategoryUnsupportedChain:
		return "unsupported_chain"
	case CategoryUserRejected:
		return "user_rejected"
	case CategoryTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Classified is the structured message descriptor produced for an activation
// failure. Presentation renders it; nothing above the connection controller
// inspects raw error values.
type Classified struct {
	Category   Category
	Message    string
	Suggestion string
	DeepLink   string // install or open link, when actionable
}

const (
	// userDeniedMessage is the literal message some providers return when
	// the user declines the authorization prompt.
	userDeniedMessage = "User denied account authorization"

	// installWalletURL is the desktop install link for the primary wallet.
	installWalletURL = "https://metamask.io/download/"

	// mobileDeepLinkPrefix opens the current origin inside the primary
	// wallet's dApp browser.
	mobileDeepLinkPrefix = "https://metamask.app.link/dapp/"

	// genericFailureMessage is shown when a failure carries no message.
	genericFailureMessage = "Unknown error"
)

// Classify maps an activation failure to a user-facing message descriptor.
// Rules are applied in order: no provider, chain mismatch, user rejection,
// timeout, anything else. Unknown failures are logged for diagnostics.
func Classify(err error, facts Facts, log *zap.Logger) Classified {
	var ae *ActivationError
	if errors.As(err, &ae) {
		switch ae.Kind {
		case FailureNoProvider:
			return classifyNoProvider(facts)
		case FailureUnsupportedChain:
			return Classified{
				Category:   CategoryUnsupportedChain,
				Message:    "You're connected to an unsupported network.",
				Suggestion: "Switch your wallet to a supported network and try again.",
			}
		case FailureRejected:
			return rejected()
		}
	}

	if err != nil && err.Error() == userDeniedMessage {
		return rejected()
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return Classified{
			Category:   CategoryTimeout,
			Message:    "The wallet did not respond in time.",
			Suggestion: "Check that your wallet is open and try again.",
		}
	}

	if log != nil {
		log.Error("unclassified activation failure", zap.Error(err))
	}

	msg := genericFailureMessage
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return Classified{Category: CategoryUnknown, Message: msg}
}

// IsUserRejection reports whether the failure is the user declining the
// prompt. Rejections are not surfaced as errors; state simply reverts.
func IsUserRejection(err error) bool {
	var ae *ActivationError
	if errors.As(err, &ae) && ae.Kind == FailureRejected {
		return true
	}
	return err != nil && err.Error() == userDeniedMessage
}

func rejected() Classified {
	return Classified{
		Category: CategoryUserRejected,
		Message:  "Please authorize this application to access your account.",
	}
}

func classifyNoProvider(facts Facts) Classified {
	c := Classified{
		Category: CategoryNoProvider,
		Message: "No wallet browser extension detected. Install the wallet on desktop " +
			"or visit from a dApp browser on mobile.",
	}

	if facts.Mobile && !facts.KnownBrand {
		c.DeepLink = mobileDeepLinkPrefix + facts.Origin
		c.Suggestion = "Open this site inside your wallet's dApp browser."
	} else {
		c.DeepLink = installWalletURL
		c.Suggestion = "Install the wallet extension and reload."
	}
	return c
}

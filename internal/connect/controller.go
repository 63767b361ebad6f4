// Package connect owns the wallet connect/activate state machine and the
// asynchronous balance fetcher behind it.
package connect

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/amount"
	"github.com/fairfund/fairfund/internal/metrics"
	"github.com/fairfund/fairfund/internal/wallet"
)

// ViewState is the current connect-flow view.
type ViewState int

// View states.
const (
	ViewOptions ViewState = iota
	ViewAccount
	ViewPending
)

// String returns the view state name.
func (v ViewState) String() string {
	switch v {
	case ViewAccount:
		return "account"
	case ViewPending:
		return "pending"
	default:
		return "options"
	}
}

// Account is the connected account exposed to presentation.
type Account struct {
	Address string
	Balance string // formatted 2dp, empty until fetched
}

// Snapshot is the read-only view of controller state for presentation.
type Snapshot struct {
	View     ViewState
	Error    *wallet.Classified
	Advisory string // non-fatal notice, e.g. "unlock your wallet"
	Account  Account
	Options  []wallet.Option
	ActiveID string // id of the active connector, empty when disconnected
}

// Config contains dependencies for creating a connection controller.
type Config struct {
	Registry *wallet.Registry
	Facts    wallet.Facts
	Reader   BalanceReader         // optional until a provider exists
	Unlock   wallet.UnlockReporter // optional injected-provider capability
	Logger   *zap.Logger

	BalanceDecimals   int           // minor-unit precision, default 18
	ActivationTimeout time.Duration // default 10s
	ReadTimeout       time.Duration // default 5s

	// OnChange is invoked after every observable state change, outside the
	// controller lock. Presentation re-reads Snapshot from it.
	OnChange func()
}

// Controller drives wallet discovery and activation. All exported methods are
// safe for concurrent use; asynchronous completions are resolved against
// sequence tokens so stale responses never overwrite newer state.
type Controller struct {
	registry *wallet.Registry
	facts    wallet.Facts
	reader   BalanceReader
	unlock   wallet.UnlockReporter
	logger   *zap.Logger
	onChange func()

	decimals          int
	activationTimeout time.Duration
	readTimeout       time.Duration

	mu         sync.Mutex
	view       ViewState
	prevView   ViewState // view to restore after a silent rejection
	errMsg     *wallet.Classified
	advisory   string
	account    Account
	active     wallet.Connector
	activating bool
	balanceSeq uint64
}

// New creates a connection controller.
func New(cfg *Config) *Controller {
	c := &Controller{
		registry:          cfg.Registry,
		facts:             cfg.Facts,
		reader:            cfg.Reader,
		unlock:            cfg.Unlock,
		logger:            cfg.Logger,
		onChange:          cfg.OnChange,
		decimals:          cfg.BalanceDecimals,
		activationTimeout: cfg.ActivationTimeout,
		readTimeout:       cfg.ReadTimeout,
		view:              ViewOptions,
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	if c.decimals == 0 {
		c.decimals = amount.BalanceDecimals
	}
	if c.activationTimeout == 0 {
		c.activationTimeout = 10 * time.Second
	}
	if c.readTimeout == 0 {
		c.readTimeout = 5 * time.Second
	}
	return c
}

// Snapshot returns the current state for presentation.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := Snapshot{
		View:     c.view,
		Advisory: c.advisory,
		Account:  c.account,
		Options:  c.registry.Filter(c.facts),
	}
	if c.errMsg != nil {
		msg := *c.errMsg
		snap.Error = &msg
	}
	if c.active != nil {
		snap.ActiveID = c.active.ID()
	}
	return snap
}

// SelectWallet handles a wallet option click. Selecting the already-active
// connector switches to the account view. Link-only options are left to
// presentation. Anything else starts an activation, unless one is already
// pending.
func (c *Controller) SelectWallet(opt wallet.Option) {
	c.mu.Lock()

	if opt.Connector != nil && c.active != nil && opt.Connector.ID() == c.active.ID() {
		c.view = ViewAccount
		c.mu.Unlock()
		c.notify()
		return
	}

	if opt.ExternalLink != "" || opt.Connector == nil {
		c.mu.Unlock()
		return
	}

	// At most one activation in flight; a second click while pending is
	// ignored rather than racing the first.
	if c.activating {
		c.mu.Unlock()
		return
	}

	c.activating = true
	c.prevView = c.view
	c.view = ViewPending
	c.errMsg = nil
	c.advisory = ""
	conn := opt.Connector
	c.mu.Unlock()
	c.notify()

	// Stale cached pairing state must be dropped before reactivation so the
	// connector regenerates its single-use URI.
	conn.ResetSession()

	go c.checkUnlocked()
	go c.activate(conn)
}

// Disconnect clears the active connector and account.
func (c *Controller) Disconnect() {
	c.mu.Lock()
	c.active = nil
	c.account = Account{}
	c.view = ViewOptions
	c.errMsg = nil
	c.advisory = ""
	c.balanceSeq++ // invalidate any in-flight balance fetch
	c.mu.Unlock()
	c.notify()
}

// checkUnlocked queries the optional unlocked capability. An explicitly
// locked provider surfaces a non-fatal advisory without aborting activation.
func (c *Controller) checkUnlocked() {
	if c.unlock == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.readTimeout)
	defer cancel()

	unlocked, err := c.unlock.Unlocked(ctx)
	if err != nil || unlocked {
		return
	}

	c.mu.Lock()
	c.advisory = "Please unlock your wallet and proceed with signing"
	c.mu.Unlock()
	c.notify()
}

// activate runs the asynchronous handshake and resolves the state machine.
func (c *Controller) activate(conn wallet.Connector) {
	ctx, cancel := context.WithTimeout(context.Background(), c.activationTimeout)
	defer cancel()

	addr, err := conn.Activate(ctx)

	c.mu.Lock()
	c.activating = false

	if err != nil {
		if wallet.IsUserRejection(err) {
			// Rejection is not an error to surface; state reverts silently.
			c.errMsg = nil
			c.view = c.prevView
			c.mu.Unlock()
			metrics.Global.RecordActivation(err, true)
			c.notify()
			return
		}

		msg := wallet.Classify(err, c.facts, c.logger)
		c.errMsg = &msg
		c.view = ViewOptions
		c.mu.Unlock()
		metrics.Global.RecordActivation(err, false)
		c.notify()
		return
	}

	c.active = conn
	c.account = Account{Address: addr}
	c.view = ViewAccount
	c.errMsg = nil
	c.mu.Unlock()
	metrics.Global.RecordActivation(nil, false)
	c.notify()

	c.RefreshBalance()
}

func (c *Controller) notify() {
	if c.onChange != nil {
		c.onChange()
	}
}

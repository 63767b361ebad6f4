package funding

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/metrics"
)

// Config contains dependencies for creating a purchase orchestrator.
type Config struct {
	Provisioner ChannelProvisioner
	Converter   ConversionService
	Submitter   PurchaseSubmitter
	Logger      *zap.Logger

	TokenSymbol       string            // destination token, default "PLAY"
	FallbackAddresses map[string]string // static deposit address per currency code
	Debounce          time.Duration     // amount-edit quiet window, default 500ms
	Timeout           time.Duration     // per external call, default 5s

	// OnChange is invoked after every observable state change, outside the
	// orchestrator lock.
	OnChange func()
}

// Orchestrator composes channel provisioning, debounced conversion, and the
// confirm lifecycle for the funding flow. Responses are tagged with the tab
// and a sequence token at request time; a response whose tag no longer
// matches the current selection is discarded.
type Orchestrator struct {
	provisioner ChannelProvisioner
	converter   ConversionService
	submitter   PurchaseSubmitter
	logger      *zap.Logger
	onChange    func()

	tokenSymbol string
	fallbacks   map[string]string
	timeout     time.Duration
	debouncer   *Debouncer

	mu         sync.Mutex
	tab        Tab
	amount     float64
	channel    DepositChannel
	quote      Quote
	locked     bool
	submission SubmissionState
	intent     *PurchaseIntent
	channelSeq uint64
	quoteSeq   uint64
}

// Snapshot is the read-only view of orchestrator state for presentation.
type Snapshot struct {
	Tab        Tab
	Amount     float64
	Channel    DepositChannel
	Quote      Quote
	Locked     bool
	Submission SubmissionState
	Intent     *PurchaseIntent
}

// New creates a purchase orchestrator. The initial tab is bitcoin; callers
// trigger the first channel fetch with SelectTab.
func New(cfg *Config) *Orchestrator {
	o := &Orchestrator{
		provisioner: cfg.Provisioner,
		converter:   cfg.Converter,
		submitter:   cfg.Submitter,
		logger:      cfg.Logger,
		onChange:    cfg.OnChange,
		tokenSymbol: cfg.TokenSymbol,
		fallbacks:   cfg.FallbackAddresses,
		timeout:     cfg.Timeout,
		tab:         TabBitcoin,
		quote:       Quote{Tab: TabBitcoin, EstimatedTokens: "0"},
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.tokenSymbol == "" {
		o.tokenSymbol = "PLAY"
	}
	if o.timeout == 0 {
		o.timeout = 5 * time.Second
	}
	delay := cfg.Debounce
	if delay == 0 {
		delay = 500 * time.Millisecond
	}
	o.debouncer = NewDebouncer(delay, o.convertNow)
	return o
}

// Snapshot returns the current state for presentation.
func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	snap := Snapshot{
		Tab:        o.tab,
		Amount:     o.amount,
		Channel:    o.channel,
		Quote:      o.quote,
		Locked:     o.locked,
		Submission: o.submission,
	}
	if o.intent != nil {
		intent := *o.intent
		snap.Intent = &intent
	}
	return snap
}

// SelectTab switches the active currency, fetches a fresh deposit channel,
// and immediately re-runs the conversion with the already-entered amount so
// the estimate stays consistent with the new source currency.
func (o *Orchestrator) SelectTab(tab Tab) {
	if !tab.IsValid() {
		return
	}

	o.mu.Lock()
	if o.locked {
		o.mu.Unlock()
		return
	}
	o.tab = tab
	o.channelSeq++
	seq := o.channelSeq
	amt := o.amount
	o.mu.Unlock()
	o.notify()

	go o.fetchChannel(seq, tab)

	// The pending debounced call, if any, belongs to the old edit burst.
	o.debouncer.Cancel()
	o.convertNow(amt)
}

// OnAmountChange records an amount edit. Edits within the quiet window are
// coalesced into one conversion call; non-positive amounts short-circuit to a
// zero estimate without calling the service.
func (o *Orchestrator) OnAmountChange(value float64) {
	o.mu.Lock()
	if o.locked {
		o.mu.Unlock()
		return
	}
	o.amount = value

	if value <= 0 {
		o.quoteSeq++ // invalidate any in-flight conversion
		o.quote = Quote{Tab: o.tab, Amount: value, EstimatedTokens: "0"}
		o.mu.Unlock()
		o.debouncer.Cancel()
		o.notify()
		return
	}
	o.mu.Unlock()

	o.debouncer.Schedule(value)
}

// Confirm submits the purchase when currency, amount, and estimate are all
// present, then freezes the flow: the displayed address switches to the
// currency's static fallback and further tab/amount edits are suppressed.
// With anything missing the confirm is a no-op, not an error.
func (o *Orchestrator) Confirm() {
	o.mu.Lock()
	if o.locked {
		o.mu.Unlock()
		return
	}

	code := o.tab.Code()
	est := o.quote.EstimatedTokens
	if code == "" || o.amount == 0 || est == "" || est == "0" {
		o.mu.Unlock()
		return
	}

	intent := PurchaseIntent{
		ID:       uuid.New(),
		Currency: code,
		Amount:   o.amount,
		Estimate: est,
	}
	o.intent = &intent
	o.locked = true
	o.submission = SubmissionPending
	o.channel = DepositChannel{
		Tab:        o.tab,
		Address:    o.fallbacks[code],
		PaymentURI: o.channel.PaymentURI,
	}
	// Invalidate any in-flight channel or quote fetch so a late response
	// cannot overwrite the pinned fallback address or the confirmed estimate.
	o.channelSeq++
	o.quoteSeq++
	o.mu.Unlock()
	o.debouncer.Cancel()
	o.notify()

	go o.submit(intent)
}

// Locked reports whether a confirmed purchase has frozen the flow.
func (o *Orchestrator) Locked() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.locked
}

func (o *Orchestrator) fetchChannel(seq uint64, tab Tab) {
	metrics.Global.RecordChannelFetch()

	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	ch, err := o.provisioner.FetchDepositChannel(ctx, tab.Code())

	o.mu.Lock()
	if seq != o.channelSeq || tab != o.tab {
		o.mu.Unlock()
		metrics.Global.RecordStaleDiscard()
		return
	}

	if err != nil {
		// Provisioning failure degrades to the static fallback address.
		o.channel = DepositChannel{Tab: tab, Address: o.fallbacks[tab.Code()]}
		o.mu.Unlock()
		o.logger.Debug("deposit channel fetch failed",
			zap.String("currency", tab.Code()), zap.Error(err))
		o.notify()
		return
	}

	o.channel = DepositChannel{Tab: tab, Address: ch.Address, PaymentURI: ch.PaymentURI}
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) submit(intent PurchaseIntent) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	err := o.submitter.SubmitPurchase(ctx, intent)
	metrics.Global.RecordPurchase(err)

	o.mu.Lock()
	if err != nil {
		o.submission = SubmissionFailed
	} else {
		o.submission = SubmissionSucceeded
	}
	o.mu.Unlock()

	if err != nil {
		o.logger.Error("purchase submission failed",
			zap.String("intent_id", intent.ID.String()),
			zap.String("currency", intent.Currency),
			zap.Error(err))
	}
	o.notify()
}

func (o *Orchestrator) notify() {
	if o.onChange != nil {
		o.onChange()
	}
}

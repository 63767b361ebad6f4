package funding_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairfund/fairfund/internal/funding"
)

const waitFor = 2 * time.Second

// mockProvisioner gates each channel fetch so tests control resolution order.
type mockProvisioner struct {
	mu    sync.Mutex
	calls []*channelCall
}

type channelCall struct {
	currency string
	gate     chan struct{}
	channel  funding.Channel
	err      error
}

func (p *mockProvisioner) FetchDepositChannel(ctx context.Context, currency string) (funding.Channel, error) {
	call := &channelCall{currency: currency, gate: make(chan struct{})}
	p.mu.Lock()
	p.calls = append(p.calls, call)
	p.mu.Unlock()

	select {
	case <-call.gate:
	case <-ctx.Done():
		return funding.Channel{}, ctx.Err()
	}
	return call.channel, call.err
}

func (p *mockProvisioner) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}

func (p *mockProvisioner) resolve(t *testing.T, i int, ch funding.Channel, err error) {
	t.Helper()
	p.mu.Lock()
	call := p.calls[i]
	p.mu.Unlock()
	call.channel = ch
	call.err = err
	close(call.gate)
}

// mockConverter gates each conversion call.
type mockConverter struct {
	mu    sync.Mutex
	calls []*convCall
}

type convCall struct {
	from   string
	amount float64
	gate   chan struct{}
	result *float64
	err    error
}

func (c *mockConverter) Convert(ctx context.Context, from, _ string, amount float64) (*float64, error) {
	call := &convCall{from: from, amount: amount, gate: make(chan struct{})}
	c.mu.Lock()
	c.calls = append(c.calls, call)
	c.mu.Unlock()

	select {
	case <-call.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return call.result, call.err
}

func (c *mockConverter) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func (c *mockConverter) call(i int) *convCall {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls[i]
}

func (c *mockConverter) resolve(t *testing.T, i int, result *float64, err error) {
	t.Helper()
	c.mu.Lock()
	call := c.calls[i]
	c.mu.Unlock()
	call.result = result
	call.err = err
	close(call.gate)
}

type mockSubmitter struct {
	mu      sync.Mutex
	intents []funding.PurchaseIntent
	err     error
}

func (s *mockSubmitter) SubmitPurchase(_ context.Context, intent funding.PurchaseIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.intents = append(s.intents, intent)
	return s.err
}

func (s *mockSubmitter) submitted() []funding.PurchaseIntent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]funding.PurchaseIntent, len(s.intents))
	copy(out, s.intents)
	return out
}

func floatPtr(v float64) *float64 { return &v }

type fixture struct {
	orch        *funding.Orchestrator
	provisioner *mockProvisioner
	converter   *mockConverter
	submitter   *mockSubmitter
}

func newFixture(t *testing.T, debounce time.Duration) *fixture {
	t.Helper()

	f := &fixture{
		provisioner: &mockProvisioner{},
		converter:   &mockConverter{},
		submitter:   &mockSubmitter{},
	}
	f.orch = funding.New(&funding.Config{
		Provisioner: f.provisioner,
		Converter:   f.converter,
		Submitter:   f.submitter,
		TokenSymbol: "PLAY",
		FallbackAddresses: map[string]string{
			"BTC": "1FallbackBTCAddr",
			"ETH": "0xFallbackETHAddr",
			"LTC": "LFallbackLTCAddr",
		},
		Debounce: debounce,
		Timeout:  waitFor,
	})
	return f
}

func TestSelectTab_FetchesChannel(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 20*time.Millisecond)
	f.orch.SelectTab(funding.TabEthereum)

	require.Eventually(t, func() bool {
		return f.provisioner.pending() == 1
	}, waitFor, 5*time.Millisecond)

	f.provisioner.resolve(t, 0, funding.Channel{
		Address:    "0xDeposit",
		PaymentURI: "ethereum:0xDeposit",
	}, nil)

	require.Eventually(t, func() bool {
		snap := f.orch.Snapshot()
		return snap.Channel.Address == "0xDeposit"
	}, waitFor, 5*time.Millisecond)

	snap := f.orch.Snapshot()
	assert.Equal(t, funding.TabEthereum, snap.Tab)
	assert.Equal(t, funding.TabEthereum, snap.Channel.Tab)
	assert.Equal(t, "ethereum:0xDeposit", snap.Channel.PaymentURI)
}

func TestSelectTab_LateResponseForOldTabDiscarded(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 20*time.Millisecond)

	f.orch.SelectTab(funding.TabBitcoin)
	require.Eventually(t, func() bool {
		return f.provisioner.pending() == 1
	}, waitFor, 5*time.Millisecond)

	f.orch.SelectTab(funding.TabEthereum)
	require.Eventually(t, func() bool {
		return f.provisioner.pending() == 2
	}, waitFor, 5*time.Millisecond)

	// Ethereum answers first, then the stale bitcoin response lands.
	f.provisioner.resolve(t, 1, funding.Channel{Address: "0xDeposit"}, nil)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Channel.Address == "0xDeposit"
	}, waitFor, 5*time.Millisecond)

	f.provisioner.resolve(t, 0, funding.Channel{Address: "1StaleBTCAddr"}, nil)

	assert.Never(t, func() bool {
		return f.orch.Snapshot().Channel.Address == "1StaleBTCAddr"
	}, 100*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, funding.TabEthereum, f.orch.Snapshot().Channel.Tab)
}

func TestSelectTab_ProvisionFailureUsesFallback(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 20*time.Millisecond)
	f.orch.SelectTab(funding.TabLitecoin)

	require.Eventually(t, func() bool {
		return f.provisioner.pending() == 1
	}, waitFor, 5*time.Millisecond)
	f.provisioner.resolve(t, 0, funding.Channel{}, errors.New("service unavailable"))

	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Channel.Address == "LFallbackLTCAddr"
	}, waitFor, 5*time.Millisecond)
}

func TestOnAmountChange_DebouncedToSingleCall(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 50*time.Millisecond)

	f.orch.OnAmountChange(1)
	f.orch.OnAmountChange(2)
	f.orch.OnAmountChange(3)

	require.Eventually(t, func() bool {
		return f.converter.pending() == 1
	}, waitFor, 5*time.Millisecond)

	call := f.converter.call(0)
	assert.Equal(t, "BTC", call.from)
	assert.Equal(t, float64(3), call.amount)

	// The quiet window has long passed; no further calls appear.
	assert.Never(t, func() bool {
		return f.converter.pending() > 1
	}, 150*time.Millisecond, 10*time.Millisecond)
}

func TestOnAmountChange_ZeroShortCircuits(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 20*time.Millisecond)

	f.orch.OnAmountChange(0)

	snap := f.orch.Snapshot()
	assert.Equal(t, "0", snap.Quote.EstimatedTokens)

	assert.Never(t, func() bool {
		return f.converter.pending() > 0
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestOnAmountChange_ZeroCancelsPendingConversion(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 50*time.Millisecond)

	f.orch.OnAmountChange(10)
	f.orch.OnAmountChange(0)

	assert.Never(t, func() bool {
		return f.converter.pending() > 0
	}, 150*time.Millisecond, 10*time.Millisecond)
	assert.Equal(t, "0", f.orch.Snapshot().Quote.EstimatedTokens)
}

func TestOnAmountChange_LateQuoteForOldAmountDiscarded(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10*time.Millisecond)

	f.orch.OnAmountChange(5)
	require.Eventually(t, func() bool {
		return f.converter.pending() == 1
	}, waitFor, 5*time.Millisecond)

	f.orch.OnAmountChange(7)
	require.Eventually(t, func() bool {
		return f.converter.pending() == 2
	}, waitFor, 5*time.Millisecond)

	// The newer request answers first, then the stale one lands.
	f.converter.resolve(t, 1, floatPtr(700), nil)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Quote.EstimatedTokens == "700.00"
	}, waitFor, 5*time.Millisecond)

	f.converter.resolve(t, 0, floatPtr(500), nil)
	assert.Never(t, func() bool {
		return f.orch.Snapshot().Quote.EstimatedTokens == "500.00"
	}, 100*time.Millisecond, 10*time.Millisecond)
}

func TestSelectTab_RerunsConversionImmediately(t *testing.T) {
	t.Parallel()

	f := newFixture(t, time.Hour) // debounce never fires on its own

	f.orch.OnAmountChange(10)
	f.orch.SelectTab(funding.TabEthereum)

	require.Eventually(t, func() bool {
		return f.converter.pending() == 1
	}, waitFor, 5*time.Millisecond)

	call := f.converter.call(0)
	assert.Equal(t, "ETH", call.from)
	assert.Equal(t, float64(10), call.amount)
}

func TestConvert_NilResultMeansZero(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10*time.Millisecond)

	f.orch.OnAmountChange(10)
	require.Eventually(t, func() bool {
		return f.converter.pending() == 1
	}, waitFor, 5*time.Millisecond)

	f.converter.resolve(t, 0, nil, nil)

	require.Eventually(t, func() bool {
		snap := f.orch.Snapshot()
		return snap.Quote.Amount == 10 && snap.Quote.EstimatedTokens == "0"
	}, waitFor, 5*time.Millisecond)
}

func TestConfirm_IncompleteStateIsNoOp(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		setup func(t *testing.T, f *fixture)
	}{
		{
			name:  "no amount entered",
			setup: func(_ *testing.T, _ *fixture) {},
		},
		{
			name: "zero estimate",
			setup: func(t *testing.T, f *fixture) {
				f.orch.OnAmountChange(10)
				require.Eventually(t, func() bool {
					return f.converter.pending() == 1
				}, waitFor, 5*time.Millisecond)
				f.converter.resolve(t, 0, floatPtr(0), nil)
				require.Eventually(t, func() bool {
					return f.orch.Snapshot().Quote.EstimatedTokens == "0"
				}, waitFor, 5*time.Millisecond)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, 10*time.Millisecond)
			tt.setup(t, f)

			f.orch.Confirm()

			snap := f.orch.Snapshot()
			assert.False(t, snap.Locked)
			assert.Equal(t, funding.SubmissionNone, snap.Submission)
			assert.Nil(t, snap.Intent)
			assert.Empty(t, f.submitter.submitted())
		})
	}
}

func TestConfirm_SubmitsIntentAndLocksFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10*time.Millisecond)

	f.orch.SelectTab(funding.TabEthereum)
	require.Eventually(t, func() bool {
		return f.provisioner.pending() == 1
	}, waitFor, 5*time.Millisecond)
	f.provisioner.resolve(t, 0, funding.Channel{Address: "0xDeposit"}, nil)

	f.orch.OnAmountChange(10)
	require.Eventually(t, func() bool {
		return f.converter.pending() >= 1
	}, waitFor, 5*time.Millisecond)
	last := f.converter.pending() - 1
	f.converter.resolve(t, last, floatPtr(123.456), nil)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Quote.EstimatedTokens == "123.45"
	}, waitFor, 5*time.Millisecond)

	f.orch.Confirm()

	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Submission == funding.SubmissionSucceeded
	}, waitFor, 5*time.Millisecond)

	snap := f.orch.Snapshot()
	assert.True(t, snap.Locked)
	require.NotNil(t, snap.Intent)
	assert.Equal(t, "ETH", snap.Intent.Currency)
	assert.Equal(t, float64(10), snap.Intent.Amount)
	assert.Equal(t, "123.45", snap.Intent.Estimate)

	// Locking switches the displayed address to the static fallback.
	assert.Equal(t, "0xFallbackETHAddr", snap.Channel.Address)

	intents := f.submitter.submitted()
	require.Len(t, intents, 1)
	assert.Equal(t, snap.Intent.ID, intents[0].ID)
	assert.Equal(t, "ETH", intents[0].Currency)

	// Further edits are suppressed while locked.
	f.orch.SelectTab(funding.TabBitcoin)
	f.orch.OnAmountChange(99)
	f.orch.Confirm()

	after := f.orch.Snapshot()
	assert.Equal(t, funding.TabEthereum, after.Tab)
	assert.Equal(t, float64(10), after.Amount)
	assert.Len(t, f.submitter.submitted(), 1)
}

func TestConfirm_LateResponsesCannotUnpinLockedFlow(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10*time.Millisecond)

	// Channel fetch stays in flight across the confirm.
	f.orch.SelectTab(funding.TabBitcoin)
	require.Eventually(t, func() bool {
		return f.provisioner.pending() == 1
	}, waitFor, 5*time.Millisecond)

	f.orch.OnAmountChange(10)
	require.Eventually(t, func() bool {
		return f.converter.pending() == 1
	}, waitFor, 5*time.Millisecond)
	f.converter.resolve(t, 0, floatPtr(500), nil)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Quote.EstimatedTokens == "500.00"
	}, waitFor, 5*time.Millisecond)

	// A second conversion is also in flight when the user confirms.
	f.orch.OnAmountChange(20)
	require.Eventually(t, func() bool {
		return f.converter.pending() == 2
	}, waitFor, 5*time.Millisecond)

	f.orch.Confirm()
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Locked
	}, waitFor, 5*time.Millisecond)
	require.Equal(t, "1FallbackBTCAddr", f.orch.Snapshot().Channel.Address)

	// Both late responses land after the lock pinned the fallback address.
	f.provisioner.resolve(t, 0, funding.Channel{Address: "1LiveBTCAddr"}, nil)
	f.converter.resolve(t, 1, floatPtr(999), nil)

	assert.Never(t, func() bool {
		snap := f.orch.Snapshot()
		return snap.Channel.Address == "1LiveBTCAddr" ||
			snap.Quote.EstimatedTokens == "999.00"
	}, 100*time.Millisecond, 10*time.Millisecond)

	snap := f.orch.Snapshot()
	assert.Equal(t, "1FallbackBTCAddr", snap.Channel.Address)
	assert.Equal(t, "500.00", snap.Quote.EstimatedTokens)
}

func TestConfirm_SubmissionFailureObservable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10*time.Millisecond)
	f.submitter.err = errors.New("payment backend down")

	f.orch.OnAmountChange(5)
	require.Eventually(t, func() bool {
		return f.converter.pending() == 1
	}, waitFor, 5*time.Millisecond)
	f.converter.resolve(t, 0, floatPtr(60), nil)
	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Quote.EstimatedTokens == "60.00"
	}, waitFor, 5*time.Millisecond)

	f.orch.Confirm()

	require.Eventually(t, func() bool {
		return f.orch.Snapshot().Submission == funding.SubmissionFailed
	}, waitFor, 5*time.Millisecond)

	// Failure is reported but the flow stays locked.
	assert.True(t, f.orch.Snapshot().Locked)
}

func TestSnapshot_InitialState(t *testing.T) {
	t.Parallel()

	f := newFixture(t, 10*time.Millisecond)

	snap := f.orch.Snapshot()
	assert.Equal(t, funding.TabBitcoin, snap.Tab)
	assert.Equal(t, "0", snap.Quote.EstimatedTokens)
	assert.False(t, snap.Locked)
	assert.Equal(t, funding.SubmissionNone, snap.Submission)
}

func TestOrchestrator_OnChangeNotified(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	notified := 0

	provisioner := &mockProvisioner{}
	orch := funding.New(&funding.Config{
		Provisioner: provisioner,
		Converter:   &mockConverter{},
		Submitter:   &mockSubmitter{},
		Debounce:    10 * time.Millisecond,
		Timeout:     waitFor,
		OnChange: func() {
			mu.Lock()
			notified++
			mu.Unlock()
		},
	})

	orch.SelectTab(funding.TabEthereum)
	require.Eventually(t, func() bool {
		return provisioner.pending() == 1
	}, waitFor, 5*time.Millisecond)
	provisioner.resolve(t, 0, funding.Channel{Address: "0xDeposit"}, nil)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return notified >= 2
	}, waitFor, 5*time.Millisecond)
}

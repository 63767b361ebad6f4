package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairfund/fairfund/internal/backend"
	"github.com/fairfund/fairfund/internal/funding"
	"github.com/fairfund/fairfund/internal/output"
	funderr "github.com/fairfund/fairfund/pkg/errors"
)

var (
	buyCurrency string
	buyAmount   float64
	buyConfirm  bool
)

var buyCmd = &cobra.Command{
	Use:   "buy",
	Short: "Buy platform tokens with crypto",
	Long: `Buy provisions a deposit channel for the chosen currency, shows the
deposit address as a QR code, and estimates how many tokens the amount is
worth. With --confirm the purchase is submitted and the deposit address is
pinned to the static fallback for the currency.

Example:
  fairfund buy --currency btc
  fairfund buy --currency eth --amount 0.5 --confirm`,
	RunE: runBuy,
}

// buyResult is the JSON shape for a buy invocation.
type buyResult struct {
	Currency   string  `json:"currency"`
	Amount     float64 `json:"amount,omitempty"`
	Estimate   string  `json:"estimate,omitempty"`
	Address    string  `json:"address,omitempty"`
	PaymentURI string  `json:"payment_uri,omitempty"`
	Submission string  `json:"submission,omitempty"`
}

//nolint:gocognit // Buy flow has inherent branching for quote, confirm, and output paths
func runBuy(cmd *cobra.Command, _ []string) error {
	ctx := globalContext()

	tab, err := funding.ParseTab(buyCurrency)
	if err != nil {
		names := make([]string, 0, len(funding.Tabs())*2)
		for _, t := range funding.Tabs() {
			names = append(names, string(t), t.Code())
		}
		if match := closestMatch(buyCurrency, names); match != "" {
			return funderr.WithSuggestion(err, fmt.Sprintf("did you mean '%s'?", match))
		}
		return err
	}

	if buyAmount < 0 {
		return funderr.WithDetails(funderr.ErrInvalidAmount,
			map[string]string{"amount": strconv.FormatFloat(buyAmount, 'f', -1, 64)})
	}
	if maxAmount := ctx.Config.Funding.MaxAmount; maxAmount > 0 && buyAmount > maxAmount {
		return funderr.WithSuggestion(
			funderr.WithDetails(funderr.ErrInvalidAmount, map[string]string{
				"amount": strconv.FormatFloat(buyAmount, 'f', -1, 64),
				"max":    strconv.FormatFloat(maxAmount, 'f', -1, 64),
			}),
			"lower the amount or raise funding.max_amount in config.yaml")
	}

	client := backend.NewClient(&backend.ClientOptions{
		BaseURL:       ctx.Config.GetBackendBaseURL(),
		APIKey:        ctx.Config.Backend.APIKey,
		Timeout:       time.Duration(ctx.Config.Backend.TimeoutSeconds) * time.Second,
		RatePerSecond: ctx.Config.Backend.RatePerSecond,
		Burst:         ctx.Config.Backend.Burst,
		Logger:        ctx.Logger,
	})

	changed := make(chan struct{}, 1)
	orch := funding.New(&funding.Config{
		Provisioner:       client,
		Converter:         client,
		Submitter:         client,
		Logger:            ctx.Logger,
		TokenSymbol:       ctx.Config.Token.Symbol,
		FallbackAddresses: ctx.Config.Funding.FallbackAddresses,
		Debounce:          time.Duration(ctx.Config.Funding.DebounceMillis) * time.Millisecond,
		Timeout:           time.Duration(ctx.Config.Timeouts.ReadSeconds) * time.Second,
		OnChange: func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	})

	orch.SelectTab(tab)
	if buyAmount > 0 {
		orch.OnAmountChange(buyAmount)
	}

	deadline := buyDeadline(ctx)
	snap := awaitFunding(orch, changed, deadline, func(s funding.Snapshot) bool {
		if s.Channel.Address == "" {
			return false
		}
		if buyAmount > 0 {
			return s.Quote.Amount == buyAmount && s.Quote.EstimatedTokens != ""
		}
		return true
	})

	if buyConfirm {
		if snap.Quote.EstimatedTokens == "" || snap.Quote.EstimatedTokens == "0" {
			return funderr.WithSuggestion(funderr.ErrInvalidAmount,
				"provide --amount so an estimate exists before confirming")
		}
		orch.Confirm()
		snap = awaitFunding(orch, changed, deadline, func(s funding.Snapshot) bool {
			return s.Submission == funding.SubmissionSucceeded ||
				s.Submission == funding.SubmissionFailed
		})
	}

	result := buyResult{
		Currency:   tab.Code(),
		Amount:     snap.Amount,
		Estimate:   snap.Quote.EstimatedTokens,
		Address:    snap.Channel.Address,
		PaymentURI: snap.Channel.PaymentURI,
	}
	if snap.Submission != funding.SubmissionNone {
		result.Submission = snap.Submission.String()
	}

	if ctx.Formatter.IsJSON() {
		if err := ctx.Formatter.Print(result); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		if err := output.RenderPaymentURI(w, result.PaymentURI, result.Address); err != nil {
			return err
		}
		if buyAmount > 0 {
			if _, err := fmt.Fprintf(w, "%g %s ≈ %s %s\n",
				buyAmount, tab.Code(), result.Estimate, ctx.Config.Token.Symbol); err != nil {
				return err
			}
		}
		if snap.Submission == funding.SubmissionSucceeded {
			if err := output.Successf(w, "Purchase submitted: %g %s for %s %s",
				buyAmount, tab.Code(), result.Estimate, ctx.Config.Token.Symbol); err != nil {
				return err
			}
		} else if snap.Submission == funding.SubmissionFailed {
			if err := output.Warnf(w, "Purchase submission failed"); err != nil {
				return err
			}
		}
	}

	if snap.Submission == funding.SubmissionFailed {
		return funderr.Wrap(funderr.ErrBackendUnavailable, "purchase submission failed")
	}
	return nil
}

// buyDeadline bounds each synchronous wait on the funding flow.
func buyDeadline(ctx *CommandContext) time.Duration {
	d := time.Duration(ctx.Config.Timeouts.ReadSeconds) * time.Second
	if d == 0 {
		d = 5 * time.Second
	}
	debounce := time.Duration(ctx.Config.Funding.DebounceMillis) * time.Millisecond
	return d + debounce + 2*time.Second
}

// awaitFunding waits until the snapshot satisfies done or the deadline passes.
func awaitFunding(orch *funding.Orchestrator, changed <-chan struct{}, deadline time.Duration, done func(funding.Snapshot) bool) funding.Snapshot {
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for {
		snap := orch.Snapshot()
		if done(snap) {
			return snap
		}
		select {
		case <-changed:
		case <-timer.C:
			return orch.Snapshot()
		}
	}
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	buyCmd.Flags().StringVarP(&buyCurrency, "currency", "c", "bitcoin", "deposit currency: bitcoin, ethereum, litecoin")
	buyCmd.Flags().Float64VarP(&buyAmount, "amount", "a", 0, "amount of crypto to convert")
	buyCmd.Flags().BoolVar(&buyConfirm, "confirm", false, "submit the purchase and lock the flow")
	rootCmd.AddCommand(buyCmd)
}

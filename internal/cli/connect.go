package cli

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/cache"
	"github.com/fairfund/fairfund/internal/connect"
	"github.com/fairfund/fairfund/internal/output"
	funderr "github.com/fairfund/fairfund/pkg/errors"
)

var connectMobile bool

var connectCmd = &cobra.Command{
	Use:   "connect <wallet-id>",
	Short: "Link a wallet and show the account balance",
	Long: `Connect activates the chosen wallet option, waits for the handshake
to finish, and prints the linked account address with its token balance.

Example:
  fairfund connect metamask
  fairfund connect walletconnect --mobile`,
	Args: cobra.ExactArgs(1),
	RunE: runConnect,
}

// connectResult is the JSON shape for a successful connection.
type connectResult struct {
	Wallet   string `json:"wallet"`
	Address  string `json:"address"`
	Balance  string `json:"balance,omitempty"`
	Cached   bool   `json:"cached,omitempty"` // balance is a last-known value
	Advisory string `json:"advisory,omitempty"`
}

// balanceCachePath is the on-disk location of the last-known balance cache.
func balanceCachePath(ctx *CommandContext) string {
	return filepath.Join(ctx.Config.GetHome(), "cache", "balances.json")
}

func runConnect(cmd *cobra.Command, args []string) error {
	ctx := globalContext()
	env := buildWalletEnvironment(ctx.Config, connectMobile, ctx.Logger)

	opt, ok := env.registry.Find(args[0])
	if !ok {
		return unknownWalletError(args[0], env.registry.IDs())
	}

	if opt.ExternalLink != "" {
		return ctx.Formatter.Printf("Open %s in your wallet app: %s\n", opt.DisplayName, opt.ExternalLink)
	}
	if opt.Connector == nil {
		return funderr.WithSuggestion(funderr.ErrNoConnector,
			"configure an Ethereum RPC endpoint with FAIRFUND_ETH_RPC or in config.yaml")
	}

	changed := make(chan struct{}, 1)
	ctrl := connect.New(&connect.Config{
		Registry:          env.registry,
		Facts:             env.facts,
		Reader:            env.provider,
		Unlock:            env.provider,
		Logger:            ctx.Logger,
		BalanceDecimals:   ctx.Config.Token.Decimals,
		ActivationTimeout: time.Duration(ctx.Config.Timeouts.ActivationSeconds) * time.Second,
		ReadTimeout:       time.Duration(ctx.Config.Timeouts.ReadSeconds) * time.Second,
		OnChange: func() {
			select {
			case changed <- struct{}{}:
			default:
			}
		},
	})

	ctrl.SelectWallet(opt)
	snap := awaitSettled(ctrl, changed, activationDeadline(ctx))

	if snap.Error != nil {
		err := funderr.New("ACTIVATION_FAILED", snap.Error.Message)
		if snap.Error.Suggestion != "" {
			return funderr.WithSuggestion(err, snap.Error.Suggestion)
		}
		if snap.Error.DeepLink != "" {
			return funderr.WithSuggestion(err, "open "+snap.Error.DeepLink+" on your phone")
		}
		return err
	}
	if snap.View != connect.ViewAccount {
		return funderr.New("ACTIVATION_CANCELLED", "wallet connection was not completed")
	}

	// Give the balance fetch a moment, but an address alone is a success.
	snap = awaitBalance(ctrl, changed, time.Duration(ctx.Config.Timeouts.ReadSeconds)*time.Second)

	result := connectResult{
		Wallet:   opt.ID,
		Address:  snap.Account.Address,
		Balance:  snap.Account.Balance,
		Advisory: snap.Advisory,
	}

	// Keep the last-known balance on disk; fall back to it when the live
	// read did not land in time.
	store := cache.NewFileStorage(balanceCachePath(ctx))
	balances, cacheErr := store.Load()
	if cacheErr != nil {
		ctx.Logger.Debug("balance cache unavailable", zap.Error(cacheErr))
		balances = cache.New()
	}
	if result.Balance != "" {
		balances.Set(cache.Entry{
			Address: result.Address,
			Balance: result.Balance,
			Symbol:  ctx.Config.Token.Symbol,
		})
		if err := store.Save(balances); err != nil {
			ctx.Logger.Debug("saving balance cache failed", zap.Error(err))
		}
	} else if entry, ok, _ := balances.Get(result.Address); ok && !balances.IsStale(result.Address) {
		result.Balance = entry.Balance
		result.Cached = true
	}
	if ctx.Formatter.IsJSON() {
		return ctx.Formatter.Print(result)
	}

	w := cmd.OutOrStdout()
	if err := output.Successf(w, "Connected %s", opt.DisplayName); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Address: %s\n", result.Address); err != nil {
		return err
	}
	if result.Balance != "" {
		note := ""
		if result.Cached {
			note = " (cached)"
		}
		if _, err := fmt.Fprintf(w, "Balance: %s %s%s\n", result.Balance, ctx.Config.Token.Symbol, note); err != nil {
			return err
		}
	}
	if result.Advisory != "" {
		if err := output.Notef(w, "%s", result.Advisory); err != nil {
			return err
		}
	}
	return nil
}

// activationDeadline bounds the synchronous wait for the handshake.
func activationDeadline(ctx *CommandContext) time.Duration {
	d := time.Duration(ctx.Config.Timeouts.ActivationSeconds) * time.Second
	if d == 0 {
		d = 10 * time.Second
	}
	return d + 2*time.Second
}

// awaitSettled waits until the controller leaves the pending view.
func awaitSettled(ctrl *connect.Controller, changed <-chan struct{}, deadline time.Duration) connect.Snapshot {
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for {
		snap := ctrl.Snapshot()
		if snap.View != connect.ViewPending {
			return snap
		}
		select {
		case <-changed:
		case <-timer.C:
			return ctrl.Snapshot()
		}
	}
}

// awaitBalance waits briefly for the balance fetch to land.
func awaitBalance(ctrl *connect.Controller, changed <-chan struct{}, deadline time.Duration) connect.Snapshot {
	timer := time.NewTimer(deadline)
	defer timer.Stop()

	for {
		snap := ctrl.Snapshot()
		if snap.Account.Balance != "" {
			return snap
		}
		select {
		case <-changed:
		case <-timer.C:
			return ctrl.Snapshot()
		}
	}
}

// unknownWalletError builds a not-found error with a closest-match hint.
func unknownWalletError(id string, known []string) error {
	err := funderr.WithDetails(funderr.ErrWalletUnknown, map[string]string{"wallet": id})
	if match := closestMatch(id, known); match != "" {
		return funderr.WithSuggestion(err, fmt.Sprintf("did you mean '%s'? List options with: fairfund wallets", match))
	}
	return funderr.WithSuggestion(err, "list options with: fairfund wallets")
}

//nolint:gochecknoinits // Cobra CLI pattern requires init for command registration
func init() {
	connectCmd.Flags().BoolVar(&connectMobile, "mobile", false, "treat the environment as mobile")
	rootCmd.AddCommand(connectCmd)
}

package connect

import (
	"context"

	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/amount"
	"github.com/fairfund/fairfund/internal/metrics"
)

// RefreshBalance issues one asynchronous balance query for the connected
// account. It is a no-op without an account or reader. Failures degrade to
// "no update this cycle"; the next trigger retries.
func (c *Controller) RefreshBalance() {
	c.mu.Lock()
	addr := c.account.Address
	if addr == "" || c.reader == nil {
		c.mu.Unlock()
		return
	}
	c.balanceSeq++
	seq := c.balanceSeq
	c.mu.Unlock()

	go c.fetchBalance(seq, addr)
}

func (c *Controller) fetchBalance(seq uint64, addr string) {
	ctx, cancel := context.WithTimeout(context.Background(), c.readTimeout)
	defer cancel()

	raw, err := c.reader.ReadBalance(ctx, addr)
	metrics.Global.RecordBalanceFetch(err)

	c.mu.Lock()
	// A result for a superseded request or a different account is discarded,
	// never merged.
	if seq != c.balanceSeq || c.account.Address != addr {
		c.mu.Unlock()
		metrics.Global.RecordStaleDiscard()
		return
	}

	if err != nil {
		c.mu.Unlock()
		c.logger.Debug("balance fetch failed", zap.String("address", addr), zap.Error(err))
		return
	}

	c.account.Balance = amount.FormatBalance(raw, c.decimals)
	c.mu.Unlock()
	c.notify()
}

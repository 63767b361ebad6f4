package funding

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fairfund/fairfund/internal/amount"
	"github.com/fairfund/fairfund/internal/metrics"
)

// convertNow issues a conversion request for value against the current tab.
// It runs on the debouncer's timer goroutine or inline from SelectTab.
func (o *Orchestrator) convertNow(value float64) {
	o.mu.Lock()
	if o.locked {
		o.mu.Unlock()
		return
	}
	if value <= 0 {
		o.quoteSeq++
		o.quote = Quote{Tab: o.tab, Amount: value, EstimatedTokens: "0"}
		o.mu.Unlock()
		o.notify()
		return
	}
	o.quoteSeq++
	seq := o.quoteSeq
	tab := o.tab
	o.mu.Unlock()

	go o.fetchQuote(seq, tab, value)
}

func (o *Orchestrator) fetchQuote(seq uint64, tab Tab, value float64) {
	ctx, cancel := context.WithTimeout(context.Background(), o.timeout)
	defer cancel()

	result, err := o.converter.Convert(ctx, tab.Code(), o.tokenSymbol, value)
	metrics.Global.RecordConversion(err)

	o.mu.Lock()
	if seq != o.quoteSeq || tab != o.tab {
		o.mu.Unlock()
		metrics.Global.RecordStaleDiscard()
		return
	}

	if err != nil {
		o.quote = Quote{Tab: tab, Amount: value, EstimatedTokens: "0"}
		o.mu.Unlock()
		o.logger.Debug("conversion failed",
			zap.String("from", tab.Code()), zap.Float64("amount", value), zap.Error(err))
		o.notify()
		return
	}

	var tokens float64
	if result != nil {
		tokens = *result
	}
	est := amount.FormatEstimate(decimal.NewFromFloat(tokens))
	o.quote = Quote{Tab: tab, Amount: value, EstimatedTokens: est}
	o.mu.Unlock()
	o.notify()
}

package funding

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid repeated inputs into a single downstream call
// after a quiet interval. Only the last value scheduled within the window
// fires; earlier timer callbacks are turned into no-ops by a sequence check.
type Debouncer struct {
	delay time.Duration
	fn    func(float64)

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer invoking fn after delay of quiet.
func NewDebouncer(delay time.Duration, fn func(float64)) *Debouncer {
	return &Debouncer{delay: delay, fn: fn}
}

// Schedule arms the timer for value, superseding any pending call.
func (d *Debouncer) Schedule(value float64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		stale := seq != d.seq
		d.mu.Unlock()
		if stale {
			return
		}
		d.fn(value)
	})
}

// Cancel drops any pending call without firing it.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

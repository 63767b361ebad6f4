// Package cache persists the last-known token balance per address so the
// connect flow can show a recent value when the live balance read is slow or
// unavailable.
package cache

import (
	"sync"
	"time"
)

// DefaultStaleness is the duration after which cached balances are considered
// stale and no longer shown.
const DefaultStaleness = 5 * time.Minute

// Entry is a single cached balance.
type Entry struct {
	Address   string    `json:"address"`
	Balance   string    `json:"balance"` // display-formatted
	Symbol    string    `json:"symbol"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BalanceCache stores last-known balances keyed by address. Safe for
// concurrent use.
type BalanceCache struct {
	mu      sync.RWMutex
	Entries map[string]Entry `json:"entries"`
}

// New creates an empty balance cache.
func New() *BalanceCache {
	return &BalanceCache{Entries: make(map[string]Entry)}
}

// Get retrieves a cached balance and its age. The second return is false when
// no entry exists.
func (c *BalanceCache) Get(address string) (Entry, bool, time.Duration) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.Entries[address]
	if !ok {
		return Entry{}, false, 0
	}
	return entry, true, time.Since(entry.UpdatedAt)
}

// Set stores a balance entry, stamping it with the current time.
func (c *BalanceCache) Set(entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Entries == nil {
		c.Entries = make(map[string]Entry)
	}
	entry.UpdatedAt = time.Now()
	c.Entries[entry.Address] = entry
}

// IsStale reports whether the entry for address is older than DefaultStaleness
// or missing.
func (c *BalanceCache) IsStale(address string) bool {
	return c.IsStaleWithDuration(address, DefaultStaleness)
}

// IsStaleWithDuration reports staleness against a custom duration.
func (c *BalanceCache) IsStaleWithDuration(address string, staleness time.Duration) bool {
	_, ok, age := c.Get(address)
	if !ok {
		return true
	}
	return age > staleness
}

// Delete removes the entry for address.
func (c *BalanceCache) Delete(address string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.Entries, address)
}

// Size returns the number of cached entries.
func (c *BalanceCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.Entries)
}

// Prune removes entries older than maxAge and returns how many were removed.
func (c *BalanceCache) Prune(maxAge time.Duration) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for addr, entry := range c.Entries {
		if entry.UpdatedAt.Before(cutoff) {
			delete(c.Entries, addr)
			removed++
		}
	}
	return removed
}

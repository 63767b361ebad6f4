// Package metrics provides application-level metrics collection.
// This is a lightweight metrics foundation using atomic counters.
// For production observability, consider integrating with Prometheus or similar.
package metrics

import (
	"sync/atomic"
	"time"
)

// Metrics holds application metrics using atomic counters for thread safety.
type Metrics struct {
	// Wallet activation metrics
	activationsTotal    atomic.Int64
	activationsRejected atomic.Int64
	activationsFailed   atomic.Int64

	// Balance metrics
	balanceFetches      atomic.Int64
	balanceFetchErrors  atomic.Int64
	staleDiscardsTotal  atomic.Int64

	// Funding metrics
	channelFetches    atomic.Int64
	conversionCalls   atomic.Int64
	conversionErrors  atomic.Int64
	purchasesTotal    atomic.Int64
	purchasesFailed   atomic.Int64

	// Backend metrics
	backendCallsTotal   atomic.Int64
	backendErrorsTotal  atomic.Int64
	backendLatencyNanos atomic.Int64
}

// Global is the global metrics instance.
// Use this for recording metrics throughout the application.
//
//nolint:gochecknoglobals // Intentional global for metrics access
var Global = &Metrics{}

// RecordActivation records a wallet activation attempt.
// Rejections are counted separately from failures.
func (m *Metrics) RecordActivation(err error, rejected bool) {
	m.activationsTotal.Add(1)
	if rejected {
		m.activationsRejected.Add(1)
		return
	}
	if err != nil {
		m.activationsFailed.Add(1)
	}
}

// RecordBalanceFetch records a balance fetch.
func (m *Metrics) RecordBalanceFetch(err error) {
	m.balanceFetches.Add(1)
	if err != nil {
		m.balanceFetchErrors.Add(1)
	}
}

// RecordStaleDiscard records a response dropped because its request tag no
// longer matched the current selection.
func (m *Metrics) RecordStaleDiscard() {
	m.staleDiscardsTotal.Add(1)
}

// RecordChannelFetch records a deposit channel fetch.
func (m *Metrics) RecordChannelFetch() {
	m.channelFetches.Add(1)
}

// RecordConversion records a conversion service call.
func (m *Metrics) RecordConversion(err error) {
	m.conversionCalls.Add(1)
	if err != nil {
		m.conversionErrors.Add(1)
	}
}

// RecordPurchase records a purchase submission outcome.
func (m *Metrics) RecordPurchase(err error) {
	m.purchasesTotal.Add(1)
	if err != nil {
		m.purchasesFailed.Add(1)
	}
}

// RecordBackendCall records a payment backend call with its duration.
func (m *Metrics) RecordBackendCall(duration time.Duration, err error) {
	m.backendCallsTotal.Add(1)
	m.backendLatencyNanos.Add(duration.Nanoseconds())
	if err != nil {
		m.backendErrorsTotal.Add(1)
	}
}

// Snapshot returns a point-in-time copy of all metrics.
type Snapshot struct {
	ActivationsTotal    int64
	ActivationsRejected int64
	ActivationsFailed   int64
	BalanceFetches      int64
	BalanceFetchErrors  int64
	StaleDiscardsTotal  int64
	ChannelFetches      int64
	ConversionCalls     int64
	ConversionErrors    int64
	PurchasesTotal      int64
	PurchasesFailed     int64
	BackendCallsTotal   int64
	BackendErrorsTotal  int64
	BackendLatencyNanos int64
}

// Snapshot returns a point-in-time copy of all metrics.
func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		ActivationsTotal:    m.activationsTotal.Load(),
		ActivationsRejected: m.activationsRejected.Load(),
		ActivationsFailed:   m.activationsFailed.Load(),
		BalanceFetches:      m.balanceFetches.Load(),
		BalanceFetchErrors:  m.balanceFetchErrors.Load(),
		StaleDiscardsTotal:  m.staleDiscardsTotal.Load(),
		ChannelFetches:      m.channelFetches.Load(),
		ConversionCalls:     m.conversionCalls.Load(),
		ConversionErrors:    m.conversionErrors.Load(),
		PurchasesTotal:      m.purchasesTotal.Load(),
		PurchasesFailed:     m.purchasesFailed.Load(),
		BackendCallsTotal:   m.backendCallsTotal.Load(),
		BackendErrorsTotal:  m.backendErrorsTotal.Load(),
		BackendLatencyNanos: m.backendLatencyNanos.Load(),
	}
}

// BackendLatencyAvgMs returns the average backend call latency in milliseconds.
// Returns 0 if no calls have been made.
func (m *Metrics) BackendLatencyAvgMs() float64 {
	calls := m.backendCallsTotal.Load()
	if calls == 0 {
		return 0
	}
	nanos := m.backendLatencyNanos.Load()
	return float64(nanos) / float64(calls) / 1e6
}

// Reset resets all metrics to zero.
// Useful for testing.
func (m *Metrics) Reset() {
	m.activationsTotal.Store(0)
	m.activationsRejected.Store(0)
	m.activationsFailed.Store(0)
	m.balanceFetches.Store(0)
	m.balanceFetchErrors.Store(0)
	m.staleDiscardsTotal.Store(0)
	m.channelFetches.Store(0)
	m.conversionCalls.Store(0)
	m.conversionErrors.Store(0)
	m.purchasesTotal.Store(0)
	m.purchasesFailed.Store(0)
	m.backendCallsTotal.Store(0)
	m.backendErrorsTotal.Store(0)
	m.backendLatencyNanos.Store(0)
}

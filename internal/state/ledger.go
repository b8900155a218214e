package state

import (
	"sync"
	"sync/atomic"

	"main/internal/schema"
)

// Ledger tracks per-ticker position state. The broker-confirmed share count
// is the single source of truth for every limit and risk decision; it is
// written only by the broker position-event handler and overwritten
// unconditionally on each report. The internal size is advisory bookkeeping
// derived from fills and never feeds enforcement.
type Ledger struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

type entry struct {
	brokerShares  atomic.Int64
	internalSize  atomic.Int64
	unrealizedPnL atomic.Int64
}

// NewLedger creates an empty ledger.
func NewLedger() *Ledger {
	return &Ledger{entries: make(map[string]*entry)}
}

func (l *Ledger) entryFor(ticker string) *entry {
	l.mu.RLock()
	e, ok := l.entries[ticker]
	l.mu.RUnlock()
	if ok {
		return e
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if e, ok = l.entries[ticker]; ok {
		return e
	}
	e = &entry{}
	l.entries[ticker] = e
	return e
}

// SetBrokerPosition overwrites the broker-confirmed signed share count.
// Per-ticker events are delivered in order, so the latest report wins.
func (l *Ledger) SetBrokerPosition(ticker string, shares schema.Quantity) {
	l.entryFor(ticker).brokerShares.Store(int64(shares))
}

// BrokerPosition returns the broker-confirmed signed share count. This is
// the sole read path for limit checks.
func (l *Ledger) BrokerPosition(ticker string) schema.Quantity {
	return schema.Quantity(l.entryFor(ticker).brokerShares.Load())
}

// RecordFill adjusts the advisory internal size by the signed fill delta.
func (l *Ledger) RecordFill(ticker string, side schema.Side, qty schema.Quantity) {
	delta := int64(qty)
	if side == schema.SideSell {
		delta = -delta
	}
	l.entryFor(ticker).internalSize.Add(delta)
}

// SetInternalSize replaces the advisory internal size outright, used when
// trade bookkeeping is reconciled wholesale.
func (l *Ledger) SetInternalSize(ticker string, size schema.Quantity) {
	l.entryFor(ticker).internalSize.Store(int64(size))
}

// InternalSize returns the advisory internally tracked signed size.
func (l *Ledger) InternalSize(ticker string) schema.Quantity {
	return schema.Quantity(l.entryFor(ticker).internalSize.Load())
}

// SetUnrealizedPnL stores the latest unrealized P&L report.
func (l *Ledger) SetUnrealizedPnL(ticker string, pnl schema.Notional) {
	l.entryFor(ticker).unrealizedPnL.Store(int64(pnl))
}

// UnrealizedPnL returns the latest unrealized P&L report.
func (l *Ledger) UnrealizedPnL(ticker string) schema.Notional {
	return schema.Notional(l.entryFor(ticker).unrealizedPnL.Load())
}

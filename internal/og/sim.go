package og

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/yanun0323/errors"

	"main/internal/schema"
)

// Sim is an in-memory gateway. Submissions are accepted instantly and the
// caller scripts fills, position reports, and quotes, which come back on
// the same ordered event stream a live broker connection would use.
type Sim struct {
	mu      sync.Mutex
	nextID  atomic.Int64
	offline atomic.Bool

	working map[int64]*schema.Order
	refs    map[string]struct{}
	events  chan schema.Event
}

// NewSim creates a simulated gateway with the given event buffer.
func NewSim(buffer int) *Sim {
	if buffer <= 0 {
		buffer = 128
	}
	return &Sim{
		working: make(map[int64]*schema.Order),
		refs:    make(map[string]struct{}),
		events:  make(chan schema.Event, buffer),
	}
}

// Events returns the ordered event stream.
func (s *Sim) Events() <-chan schema.Event {
	return s.events
}

// SetOffline toggles the simulated connection state.
func (s *Sim) SetOffline(offline bool) {
	s.offline.Store(offline)
}

func (s *Sim) NextOrderID() int64 {
	return s.nextID.Add(1)
}

func (s *Sim) SubmitOrder(_ context.Context, o *schema.Order) error {
	if s.offline.Load() {
		return ErrGatewayDisconnected
	}

	cp := *o
	cp.Status = schema.StatusSubmitted

	s.mu.Lock()
	// the client reference deduplicates resubmissions
	if cp.ClientRef != "" {
		if _, ok := s.refs[cp.ClientRef]; ok {
			s.mu.Unlock()
			return errors.Wrapf(ErrDuplicateClientRef, "submit %d", cp.ID)
		}
		s.refs[cp.ClientRef] = struct{}{}
	}
	s.working[cp.ID] = &cp
	s.mu.Unlock()

	s.events <- schema.Event{
		Kind:    schema.EventOrderStatus,
		Ticker:  cp.Ticker,
		OrderID: cp.ID,
		Status:  schema.StatusSubmitted,
	}
	return nil
}

func (s *Sim) CancelOrder(_ context.Context, orderID int64) error {
	if s.offline.Load() {
		return ErrGatewayDisconnected
	}

	s.mu.Lock()
	o, ok := s.working[orderID]
	if ok {
		delete(s.working, orderID)
	}
	s.mu.Unlock()
	if !ok {
		return errors.Wrapf(ErrUnknownOrder, "cancel %d", orderID)
	}

	s.events <- schema.Event{
		Kind:      schema.EventOrderStatus,
		Ticker:    o.Ticker,
		OrderID:   o.ID,
		Status:    schema.StatusCancelled,
		FilledQty: o.FilledQty,
		AvgPrice:  o.AvgFillPrice,
	}
	return nil
}

// Fill scripts a broker fill report with cumulative quantity. The order
// transitions to filled when the cumulative quantity covers the request.
func (s *Sim) Fill(orderID int64, cumQty schema.Quantity, avgPrice schema.Price) error {
	s.mu.Lock()
	o, ok := s.working[orderID]
	if !ok {
		s.mu.Unlock()
		return errors.Wrapf(ErrUnknownOrder, "fill %d", orderID)
	}

	o.FilledQty = cumQty
	o.AvgFillPrice = avgPrice
	status := schema.StatusPartFilled
	if cumQty >= o.RequestedQty {
		status = schema.StatusFilled
		delete(s.working, orderID)
	}
	o.Status = status
	ticker := o.Ticker
	s.mu.Unlock()

	s.events <- schema.Event{
		Kind:      schema.EventOrderStatus,
		Ticker:    ticker,
		OrderID:   orderID,
		Status:    status,
		FilledQty: cumQty,
		AvgPrice:  avgPrice,
	}
	return nil
}

// ReportPosition scripts a broker position report.
func (s *Sim) ReportPosition(ticker string, shares schema.Quantity) {
	s.events <- schema.Event{
		Kind:       schema.EventPosition,
		Ticker:     ticker,
		ShareCount: shares,
	}
}

// ReportQuote scripts a top-of-book quote.
func (s *Sim) ReportQuote(ticker string, bid, ask schema.Price) {
	s.events <- schema.Event{
		Kind:   schema.EventQuote,
		Ticker: ticker,
		Bid:    bid,
		Ask:    ask,
	}
}

// WorkingOrders returns copies of the orders still working at the broker.
func (s *Sim) WorkingOrders(ticker string) []schema.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]schema.Order, 0, len(s.working))
	for _, o := range s.working {
		if o.Ticker == ticker {
			out = append(out, *o)
		}
	}
	return out
}

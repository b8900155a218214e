package schema

import (
	"time"

	"github.com/yanun0323/errors"
)

var (
	ErrTradeLocked       = errors.New("trade is locked for further entries")
	ErrTradeSideMismatch = errors.New("fill side does not match trade side")
)

type fill struct {
	qty   Quantity
	price Price
}

// Trade groups entry fills with the exits that unwind them, from the first
// entry fill until the net size returns to zero. Fills are keyed by order id
// with cumulative quantities, so replaying a broker event is a no-op.
type Trade struct {
	ID        int64
	Ticker    string
	Side      Side
	Size      Quantity
	OpenTime  time.Time
	CloseTime time.Time

	// Locked rejects further entries once an exit sequence has started.
	Locked bool

	TakeProfitOrderID int64
	StopLossOrderID   int64
	ExitOrderID       int64
	TakeProfitFilled  bool

	entryFills map[int64]fill
	exitFills  map[int64]fill
}

// NewTrade opens a trade from its first entry fill. The trade id is the
// entry order id.
func NewTrade(orderID int64, ticker string, side Side, qty Quantity, price Price, at time.Time) *Trade {
	return &Trade{
		ID:         orderID,
		Ticker:     ticker,
		Side:       side,
		Size:       qty,
		OpenTime:   at,
		entryFills: map[int64]fill{orderID: {qty: qty, price: price}},
		exitFills:  make(map[int64]fill),
	}
}

// AddEntry records an entry fill. Quantities are cumulative per order id,
// matching broker order-status reports.
func (t *Trade) AddEntry(orderID int64, side Side, qty Quantity, price Price) error {
	if t.Locked {
		return ErrTradeLocked
	}
	if side != t.Side {
		return ErrTradeSideMismatch
	}

	t.entryFills[orderID] = fill{qty: qty, price: price}
	t.recomputeSize()
	return nil
}

// Reduce records an exit fill against the trade and returns the portion of
// qty that could not be absorbed. Quantities are cumulative per order id.
func (t *Trade) Reduce(orderID int64, qty Quantity, price Price) (leftover Quantity) {
	already := t.exitFills[orderID].qty
	fresh := qty - already
	if fresh <= 0 {
		return 0
	}
	if fresh > t.Size {
		leftover = fresh - t.Size
		fresh = t.Size
	}

	t.exitFills[orderID] = fill{qty: already + fresh, price: price}
	t.recomputeSize()
	return leftover
}

// Lock marks the trade closed for further entries.
func (t *Trade) Lock() {
	t.Locked = true
}

// Remaining returns the open size of the trade.
func (t *Trade) Remaining() Quantity {
	return t.Size
}

// ExpiredBy reports whether the trade has been open longer than hold.
func (t *Trade) ExpiredBy(now time.Time, hold time.Duration) bool {
	return hold > 0 && now.Sub(t.OpenTime) > hold
}

// AvgEntryPrice returns the size-weighted average entry price.
func (t *Trade) AvgEntryPrice() Price {
	var qty Quantity
	var value int64
	for _, f := range t.entryFills {
		qty += f.qty
		value += int64(f.qty) * int64(f.price)
	}
	if qty == 0 {
		return 0
	}
	return Price(value / int64(qty))
}

// RealizedPnL returns the realized profit for the exited portion of the
// trade: positive when exits beat the weighted entry price for the side.
func (t *Trade) RealizedPnL() Notional {
	var exitQty Quantity
	var exitValue int64
	for _, f := range t.exitFills {
		exitQty += f.qty
		exitValue += int64(f.qty) * int64(f.price)
	}
	if exitQty == 0 {
		return 0
	}

	avgEntry := int64(t.AvgEntryPrice())
	avgExit := exitValue / int64(exitQty)

	var perShare int64
	if t.Side == SideBuy {
		perShare = avgExit - avgEntry
	} else {
		perShare = avgEntry - avgExit
	}
	return Notional(perShare * int64(exitQty))
}

func (t *Trade) recomputeSize() {
	var entered, exited Quantity
	for _, f := range t.entryFills {
		entered += f.qty
	}
	for _, f := range t.exitFills {
		exited += f.qty
	}
	size := entered - exited
	if size < 0 {
		size = 0
	}
	t.Size = size
}

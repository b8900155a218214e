package schema

import "time"

// Side is the direction of an order.
type Side uint8

const (
	SideUnknown Side = iota
	SideBuy
	SideSell
)

func (s Side) String() string {
	switch s {
	case SideBuy:
		return "BUY"
	case SideSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// Opposite returns the reversed side.
func (s Side) Opposite() Side {
	switch s {
	case SideBuy:
		return SideSell
	case SideSell:
		return SideBuy
	default:
		return SideUnknown
	}
}

// OrderKind is the closed set of order roles in the execution engine.
type OrderKind uint8

const (
	KindUnknown OrderKind = iota
	KindEntry
	KindTakeProfit
	KindStopLoss
	KindExit
	KindEmergencyExit
	KindDanglingShares
)

func (k OrderKind) String() string {
	switch k {
	case KindEntry:
		return "ENTRY"
	case KindTakeProfit:
		return "TAKE_PROFIT"
	case KindStopLoss:
		return "STOP_LOSS"
	case KindExit:
		return "EXIT"
	case KindEmergencyExit:
		return "EMERGENCY_EXIT"
	case KindDanglingShares:
		return "DANGLING_SHARES"
	default:
		return "UNKNOWN"
	}
}

// OrderStatus tracks the lifecycle of an order.
type OrderStatus uint8

const (
	StatusUnknown OrderStatus = iota
	StatusPending
	StatusSubmitted
	StatusPartFilled
	StatusFilled
	StatusCancelled
)

func (s OrderStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusSubmitted:
		return "SUBMITTED"
	case StatusPartFilled:
		return "PARTIALLY_FILLED"
	case StatusFilled:
		return "FILLED"
	case StatusCancelled:
		return "CANCELLED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal reports whether no further transitions are possible.
func (s OrderStatus) IsTerminal() bool {
	return s == StatusFilled || s == StatusCancelled
}

// Order is the engine's view of a single broker order.
type Order struct {
	ID           int64
	ClientRef    string
	Ticker       string
	Kind         OrderKind
	Side         Side
	RequestedQty Quantity
	FilledQty    Quantity
	LimitPrice   Price
	AvgFillPrice Price
	Status       OrderStatus
	TimeInForce  time.Duration
	CreatedAt    time.Time
}

// LeavesQty returns the unfilled remainder of the order.
func (o *Order) LeavesQty() Quantity {
	leaves := o.RequestedQty - o.FilledQty
	if leaves < 0 {
		return 0
	}
	return leaves
}

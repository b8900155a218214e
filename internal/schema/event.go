package schema

// EventKind categorizes gateway events.
type EventKind uint8

const (
	EventUnknown EventKind = iota
	EventOrderStatus
	EventPosition
	EventQuote
)

func (k EventKind) String() string {
	switch k {
	case EventOrderStatus:
		return "ORDER_STATUS"
	case EventPosition:
		return "POSITION"
	case EventQuote:
		return "QUOTE"
	default:
		return "UNKNOWN"
	}
}

// Event is one entry of the gateway's per-ticker ordered stream. Exactly
// the fields for its Kind are populated; the engine assumes in-order
// delivery per ticker and never reorders or coalesces events.
type Event struct {
	Kind   EventKind
	Ticker string

	// EventOrderStatus
	OrderID   int64
	Status    OrderStatus
	FilledQty Quantity
	AvgPrice  Price

	// EventPosition: signed broker-confirmed share count.
	ShareCount Quantity

	// EventQuote
	Bid Price
	Ask Price
}

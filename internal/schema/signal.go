package schema

import "time"

// Direction is the predicted price direction carried by a trade signal.
type Direction uint8

const (
	DirectionUnknown Direction = iota
	DirectionBullish
	DirectionBearish
)

func (d Direction) String() string {
	switch d {
	case DirectionBullish:
		return "BULLISH"
	case DirectionBearish:
		return "BEARISH"
	default:
		return "UNKNOWN"
	}
}

// EntrySide maps a direction to the side that opens a position.
func (d Direction) EntrySide() Side {
	switch d {
	case DirectionBullish:
		return SideBuy
	case DirectionBearish:
		return SideSell
	default:
		return SideUnknown
	}
}

// Signal is a directional trade signal delivered to the executor.
// Duplicate and late signals are permitted; the risk gate re-evaluates
// every one independently.
type Signal struct {
	Ticker     string
	Direction  Direction
	Confidence float64
	At         time.Time
}

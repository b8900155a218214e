package risk

import (
	"math"
	"time"

	"github.com/yanun0323/errors"

	"main/internal/schema"
)

var ErrMalformedSignal = errors.New("malformed signal")

// Reason explains why an entry was denied.
type Reason uint8

const (
	ReasonNone Reason = iota
	ReasonConfidence
	ReasonPositionLimit
	ReasonCooldown
	ReasonEmergency
)

func (r Reason) String() string {
	switch r {
	case ReasonNone:
		return "none"
	case ReasonConfidence:
		return "confidence"
	case ReasonPositionLimit:
		return "position_limit"
	case ReasonCooldown:
		return "cooldown"
	case ReasonEmergency:
		return "emergency"
	default:
		return "unknown"
	}
}

// Config defines the static entry limits for one ticker.
type Config struct {
	MaxPosition schema.Quantity

	BullishLowerConf float64
	BullishUpperConf float64
	BearishLowerConf float64
	BearishUpperConf float64
}

// View is the snapshot of ticker state an entry decision runs against.
// BrokerPosition must come from the ledger's broker-confirmed count.
type View struct {
	BrokerPosition  schema.Quantity
	CooldownUntil   time.Time
	EmergencyActive bool
	Now             time.Time
}

// Decision is the outcome of an entry evaluation.
type Decision struct {
	Allow  bool
	Reason Reason
}

// Gate evaluates entry predicates. It is pure: no side effects, ordinary
// rejections are decisions, only malformed input returns an error.
type Gate struct {
	cfg Config
}

// NewGate creates a gate with static limits.
func NewGate(cfg Config) *Gate {
	return &Gate{cfg: cfg}
}

// AllowEntry combines the confidence band, broker-position limit, and
// cooldown predicates for a prospective entry.
func (g *Gate) AllowEntry(sig schema.Signal, view View) (Decision, error) {
	if sig.Direction != schema.DirectionBullish && sig.Direction != schema.DirectionBearish {
		return Decision{}, errors.Wrap(ErrMalformedSignal, "unknown direction")
	}
	if math.IsNaN(sig.Confidence) || sig.Confidence < 0 || sig.Confidence > 1 {
		return Decision{}, errors.Wrap(ErrMalformedSignal, "confidence out of range")
	}

	if view.EmergencyActive {
		return Decision{Reason: ReasonEmergency}, nil
	}

	lower, upper := g.cfg.BullishLowerConf, g.cfg.BullishUpperConf
	if sig.Direction == schema.DirectionBearish {
		lower, upper = g.cfg.BearishLowerConf, g.cfg.BearishUpperConf
	}
	if sig.Confidence < lower || sig.Confidence > upper {
		return Decision{Reason: ReasonConfidence}, nil
	}

	if g.cfg.MaxPosition > 0 && schema.AbsQuantity(view.BrokerPosition) >= g.cfg.MaxPosition {
		return Decision{Reason: ReasonPositionLimit}, nil
	}

	if !view.CooldownUntil.IsZero() && view.Now.Before(view.CooldownUntil) {
		return Decision{Reason: ReasonCooldown}, nil
	}

	return Decision{Allow: true}, nil
}

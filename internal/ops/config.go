package ops

import (
	"encoding/json"
	"os"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/exec"
	"main/internal/risk"
	"main/internal/schema"
)

var ErrInvalidConfig = errors.New("invalid config")

// Defaults applied when an assignment leaves a timing field unset. All of
// them are configuration inputs; decision logic never hardcodes timing.
const (
	defaultCooldownSeconds  = 60.0
	defaultStaggerSeconds   = 5.0
	defaultEntryTIFSeconds  = 60.0
	defaultExitTIFSeconds   = 10.0
	defaultEmergencySeconds = 10.0
)

// FileAssignment is the JSON form of one ticker's risk assignment.
type FileAssignment struct {
	Ticker          string `json:"ticker"`
	UnitSize        int64  `json:"unitSize"`
	MaxPositionSize int64  `json:"maxPositionSize"`

	StaggerDelaySeconds      float64 `json:"staggerDelaySeconds"`
	MaxHoldTimeSeconds       float64 `json:"maxHoldTimeSeconds"`
	CooldownSeconds          float64 `json:"cooldownSeconds"`
	EntryTimeInForceSeconds  float64 `json:"entryTimeInForceSeconds"`
	ExitTimeInForceSeconds   float64 `json:"exitTimeInForceSeconds"`
	EmergencyIntervalSeconds float64 `json:"emergencyIntervalSeconds"`

	TakeProfitTarget float64 `json:"takeProfitTarget"`
	StopLossTarget   float64 `json:"stopLossTarget"`
	MaxLossPerTrade  float64 `json:"maxLossPerTrade"`

	BullishLowerConfidence float64 `json:"bullishLowerConfidence"`
	BullishUpperConfidence float64 `json:"bullishUpperConfidence"`
	BearishLowerConfidence float64 `json:"bearishLowerConfidence"`
	BearishUpperConfidence float64 `json:"bearishUpperConfidence"`
}

// FileConfig is the JSON configuration file.
type FileConfig struct {
	MaxLossCumulative float64          `json:"maxLossCumulative"`
	Assignments       []FileAssignment `json:"assignments"`
}

// Loaded is the resolved configuration handed to the engine.
type Loaded struct {
	MaxLossCumulative schema.Notional
	Assignments       []exec.Config
}

// Load reads, resolves, and validates the configuration file. Any defect
// fails before a single unit starts.
func Load(path string) (*Loaded, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}

	var fc FileConfig
	if err := json.Unmarshal(raw, &fc); err != nil {
		return nil, errors.Wrapf(err, "parse config %s", path)
	}
	return Resolve(&fc)
}

// Resolve applies defaults and validates a parsed file config.
func Resolve(fc *FileConfig) (*Loaded, error) {
	if len(fc.Assignments) == 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "no assignments")
	}
	if fc.MaxLossCumulative < 0 {
		return nil, errors.Wrap(ErrInvalidConfig, "maxLossCumulative must not be negative")
	}

	loaded := &Loaded{
		MaxLossCumulative: notionalFromFloat(fc.MaxLossCumulative),
		Assignments:       make([]exec.Config, 0, len(fc.Assignments)),
	}

	seen := make(map[string]struct{}, len(fc.Assignments))
	for i := range fc.Assignments {
		cfg, err := resolveAssignment(&fc.Assignments[i])
		if err != nil {
			return nil, err
		}
		if _, dup := seen[cfg.Ticker]; dup {
			return nil, errors.Wrapf(ErrInvalidConfig, "duplicate ticker %s", cfg.Ticker)
		}
		seen[cfg.Ticker] = struct{}{}
		loaded.Assignments = append(loaded.Assignments, cfg)
	}

	logs.Infof("config loaded, %d assignment(s)", len(loaded.Assignments))
	return loaded, nil
}

func resolveAssignment(fa *FileAssignment) (exec.Config, error) {
	var zero exec.Config

	if fa.Ticker == "" {
		return zero, errors.Wrap(ErrInvalidConfig, "empty ticker")
	}
	if fa.UnitSize <= 0 {
		return zero, errors.Wrapf(ErrInvalidConfig, "[%s] unitSize must be positive", fa.Ticker)
	}
	if fa.MaxPositionSize <= 0 {
		return zero, errors.Wrapf(ErrInvalidConfig, "[%s] maxPositionSize must be positive", fa.Ticker)
	}
	if fa.MaxPositionSize < fa.UnitSize {
		return zero, errors.Wrapf(ErrInvalidConfig, "[%s] maxPositionSize below unitSize", fa.Ticker)
	}
	if fa.TakeProfitTarget <= 0 || fa.StopLossTarget <= 0 {
		return zero, errors.Wrapf(ErrInvalidConfig, "[%s] bracket targets must be positive", fa.Ticker)
	}
	if fa.MaxHoldTimeSeconds <= 0 {
		return zero, errors.Wrapf(ErrInvalidConfig, "[%s] maxHoldTimeSeconds must be positive", fa.Ticker)
	}
	if fa.MaxLossPerTrade < 0 {
		return zero, errors.Wrapf(ErrInvalidConfig, "[%s] maxLossPerTrade must not be negative", fa.Ticker)
	}

	bullLo, bullHi := fa.BullishLowerConfidence, fa.BullishUpperConfidence
	bearLo, bearHi := fa.BearishLowerConfidence, fa.BearishUpperConfidence
	if bullHi == 0 {
		bullHi = 1.0
	}
	if bearHi == 0 {
		bearHi = 1.0
	}
	for _, b := range [...]struct {
		name   string
		lo, hi float64
	}{
		{"bullish", bullLo, bullHi},
		{"bearish", bearLo, bearHi},
	} {
		if b.lo < 0 || b.hi > 1 || b.lo > b.hi {
			return zero, errors.Wrapf(ErrInvalidConfig, "[%s] %s confidence bounds out of order", fa.Ticker, b.name)
		}
	}

	return exec.Config{
		Ticker:            fa.Ticker,
		UnitSize:          schema.Quantity(fa.UnitSize),
		Stagger:           secondsOrDefault(fa.StaggerDelaySeconds, defaultStaggerSeconds),
		MaxHoldTime:       seconds(fa.MaxHoldTimeSeconds),
		Cooldown:          secondsOrDefault(fa.CooldownSeconds, defaultCooldownSeconds),
		EntryTimeInForce:  secondsOrDefault(fa.EntryTimeInForceSeconds, defaultEntryTIFSeconds),
		ExitTimeInForce:   secondsOrDefault(fa.ExitTimeInForceSeconds, defaultExitTIFSeconds),
		EmergencyInterval: secondsOrDefault(fa.EmergencyIntervalSeconds, defaultEmergencySeconds),
		TakeProfitTarget:  fa.TakeProfitTarget,
		StopLossTarget:    fa.StopLossTarget,
		MaxLossPerTrade:   notionalFromFloat(fa.MaxLossPerTrade),
		Risk: risk.Config{
			MaxPosition:      schema.Quantity(fa.MaxPositionSize),
			BullishLowerConf: bullLo,
			BullishUpperConf: bullHi,
			BearishLowerConf: bearLo,
			BearishUpperConf: bearHi,
		},
	}, nil
}

func seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}

func secondsOrDefault(v, def float64) time.Duration {
	if v <= 0 {
		return seconds(def)
	}
	return seconds(v)
}

func notionalFromFloat(v float64) schema.Notional {
	return schema.Notional(v * schema.PriceScale)
}

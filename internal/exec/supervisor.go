package exec

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/schema"
)

const defaultSupervisorInterval = time.Second

// Supervisor watches cumulative realized loss across every unit and, when
// the portfolio-wide limit is breached, forces liquidation on all of them.
// It trips at most once per process.
type Supervisor struct {
	maxLoss  schema.Notional
	units    []*Unit
	interval time.Duration

	running atomic.Bool
	tripped atomic.Bool
}

// NewSupervisor builds a portfolio watcher. A zero maxLoss disables it.
func NewSupervisor(maxLoss schema.Notional, units []*Unit) *Supervisor {
	return &Supervisor{
		maxLoss:  maxLoss,
		units:    units,
		interval: defaultSupervisorInterval,
	}
}

// Run starts the watch loop. Subsequent calls are no-ops.
func (s *Supervisor) Run(ctx context.Context) {
	if s.maxLoss <= 0 || len(s.units) == 0 {
		return
	}
	if s.running.Swap(true) {
		return
	}
	go s.loop(ctx)
}

func (s *Supervisor) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.check(ctx) {
				return
			}
		}
	}
}

func (s *Supervisor) check(ctx context.Context) bool {
	var total schema.Notional
	for _, u := range s.units {
		total += u.Executor().ClosedPnL()
	}
	if total >= -s.maxLoss {
		return false
	}
	if s.tripped.Swap(true) {
		return true
	}

	logs.Errorf("portfolio realized %.2f beyond loss limit %.2f, liquidating every unit",
		total.Float64(), s.maxLoss.Float64())
	for _, u := range s.units {
		u.TriggerEmergency(ctx)
	}
	return true
}

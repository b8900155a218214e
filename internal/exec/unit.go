package exec

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/yanun0323/logs"

	"main/internal/obs"
	"main/internal/og"
	"main/internal/queue"
	"main/internal/schema"
)

const expiryTickInterval = time.Second

type command uint8

const (
	cmdEmergency command = iota + 1
	cmdCancelEmergency
)

// Unit is the serialized execution context for one ticker. Every decision
// for the ticker, whether driven by a gateway event, a signal, a control
// command, or a periodic tick, runs on the unit's single goroutine, so no
// two critical sections ever overlap.
type Unit struct {
	exec    *Executor
	events  chan schema.Event
	signals chan schema.Signal
	control chan command

	running atomic.Bool
	done    chan struct{}
}

// NewUnit wraps an executor in its serialized loop.
func NewUnit(exec *Executor) *Unit {
	return &Unit{
		exec:    exec,
		events:  make(chan schema.Event, 256),
		signals: make(chan schema.Signal, 16),
		control: make(chan command, 4),
		done:    make(chan struct{}),
	}
}

// Executor exposes the wrapped state machine for wiring hooks.
func (u *Unit) Executor() *Executor {
	return u.exec
}

// Deliver feeds one gateway event into the loop. Callers must preserve
// per-ticker emission order; a single forwarder goroutine per gateway
// stream does.
func (u *Unit) Deliver(ev schema.Event) {
	u.events <- ev
}

// DeliverSignal hands a signal to the unit without blocking. Signals
// arriving faster than decisions drain are dropped; the gate re-evaluates
// every survivor independently, so drops are safe.
func (u *Unit) DeliverSignal(sig schema.Signal) bool {
	select {
	case u.signals <- sig:
		return true
	default:
		logs.Warnf("[%s] signal dropped, unit busy", u.exec.cfg.Ticker)
		return false
	}
}

// TriggerEmergency requests forced liquidation from any goroutine. When
// the control channel cannot accept the command, one best-effort
// liquidation order is placed rather than none.
func (u *Unit) TriggerEmergency(ctx context.Context) {
	select {
	case u.control <- cmdEmergency:
	default:
		logs.Errorf("[%s] control channel saturated, placing best-effort emergency order", u.exec.cfg.Ticker)
		u.exec.BestEffortEmergency(ctx)
	}
}

// CancelEmergency requests deactivation of the liquidation protocol.
func (u *Unit) CancelEmergency() {
	select {
	case u.control <- cmdCancelEmergency:
	default:
		logs.Warnf("[%s] control channel saturated, cancel request dropped", u.exec.cfg.Ticker)
	}
}

// Run starts the loop. Subsequent calls are no-ops.
func (u *Unit) Run(ctx context.Context) {
	if u.running.Swap(true) {
		return
	}
	go u.loop(ctx)
}

// Done closes when the loop has exited.
func (u *Unit) Done() <-chan struct{} {
	return u.done
}

func (u *Unit) loop(ctx context.Context) {
	defer close(u.done)

	expiry := time.NewTicker(expiryTickInterval)
	defer expiry.Stop()
	retry := time.NewTicker(u.exec.emergencyInterval())
	defer retry.Stop()

	logs.Infof("[%s] unit started", u.exec.cfg.Ticker)
	for {
		select {
		case <-ctx.Done():
			logs.Infof("[%s] unit stopped", u.exec.cfg.Ticker)
			return
		case ev := <-u.events:
			u.exec.OnEvent(ctx, ev)
		case sig := <-u.signals:
			u.exec.HandleSignal(ctx, sig)
		case cmd := <-u.control:
			switch cmd {
			case cmdEmergency:
				// the first retry cycle waits the full interval from
				// activation, not from unit startup
				retry.Reset(u.exec.emergencyInterval())
				u.exec.TriggerEmergency(ctx)
			case cmdCancelEmergency:
				u.exec.CancelEmergency(ctx)
			}
		case now := <-expiry.C:
			u.exec.CheckExpiry(ctx, now)
			u.exec.ReconcileDangling(ctx)
		case <-retry.C:
			u.exec.EmergencyStep(ctx)
		}
	}
}

// SubmitFunc builds the queue's submission callback: a gateway submit
// that, on failure, injects a synthetic cancellation so the unit cleans up
// its bookkeeping on its own goroutine.
func SubmitFunc(gw og.Gateway, deliver func(schema.Event)) queue.SubmitFunc {
	return func(ctx context.Context, o *schema.Order) error {
		if err := gw.SubmitOrder(ctx, o); err != nil {
			deliver(schema.Event{
				Kind:      schema.EventOrderStatus,
				Ticker:    o.Ticker,
				OrderID:   o.ID,
				Status:    schema.StatusCancelled,
				FilledQty: o.FilledQty,
			})
			return err
		}
		obs.IncSubmitted(o.Ticker, o.Kind)
		return nil
	}
}

// DropFunc builds the queue's revocation callback: a dropped order comes
// back as a synthetic cancellation so the unit retires it on its own
// goroutine.
func DropFunc(deliver func(schema.Event)) queue.DropFunc {
	return func(o *schema.Order) {
		deliver(schema.Event{
			Kind:    schema.EventOrderStatus,
			Ticker:  o.Ticker,
			OrderID: o.ID,
			Status:  schema.StatusCancelled,
		})
	}
}

package exec

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"main/internal/obs"
	"main/internal/schema"
)

const defaultEmergencyInterval = 10 * time.Second

// emergencyState tracks the forced-liquidation protocol. At most one
// emergency order is outstanding; each retry cycle cancels the previous
// one before pricing a replacement.
type emergencyState struct {
	active  bool
	orderID int64
}

// EmergencyActive reports whether forced liquidation is in progress.
func (e *Executor) EmergencyActive() bool {
	return e.em.active
}

// TriggerEmergency starts forced liquidation: every working order for the
// ticker is flushed, then retry cycles drive the position to zero. Runs on
// the unit goroutine; external callers go through Unit.TriggerEmergency.
func (e *Executor) TriggerEmergency(ctx context.Context) {
	if e.em.active {
		return
	}
	e.em.active = true
	logs.Warnf("[%s] emergency liquidation triggered, broker position %d",
		e.cfg.Ticker, e.ledger.BrokerPosition(e.cfg.Ticker))

	if e.trade != nil {
		e.trade.Lock()
	}
	for id, o := range e.orders {
		if o.Status == schema.StatusPending {
			if e.queue.Revoke(id) {
				continue
			}
			e.pendingCancel[id] = struct{}{}
			continue
		}
		e.cancelOrder(ctx, id)
	}

	e.EmergencyStep(ctx)
}

// EmergencyStep runs one retry cycle: cancel the prior emergency order,
// re-price at the current touch, submit a replacement sized to the broker
// position, and finish when the position is flat. Called on activation and
// then from the unit's retry tick.
func (e *Executor) EmergencyStep(ctx context.Context) {
	if !e.em.active {
		return
	}

	pos := e.ledger.BrokerPosition(e.cfg.Ticker)
	if pos == 0 {
		e.finishEmergency(ctx)
		return
	}

	if e.em.orderID != 0 {
		e.cancelOrder(ctx, e.em.orderID)
		e.em.orderID = 0
	}

	side := schema.SideSell
	if pos < 0 {
		side = schema.SideBuy
	}
	o := e.newOrder(schema.KindEmergencyExit, side, schema.AbsQuantity(pos), e.aggressivePrice(side), 0)
	if err := e.submitDirect(ctx, o); err != nil {
		return
	}
	e.em.orderID = o.ID
	obs.IncEmergencyRetry(e.cfg.Ticker)
	logs.Warnf("[%s] emergency exit %d: %s %d at %s",
		e.cfg.Ticker, o.ID, side, o.RequestedQty, o.LimitPrice)
}

// CancelEmergency aborts the protocol without flattening.
func (e *Executor) CancelEmergency(ctx context.Context) {
	if !e.em.active {
		return
	}
	if e.em.orderID != 0 {
		e.cancelOrder(ctx, e.em.orderID)
		e.em.orderID = 0
	}
	e.em.active = false
	logs.Warnf("[%s] emergency liquidation cancelled by operator", e.cfg.Ticker)
}

func (e *Executor) finishEmergency(ctx context.Context) {
	if e.em.orderID != 0 {
		e.cancelOrder(ctx, e.em.orderID)
		e.em.orderID = 0
	}
	e.em.active = false
	logs.Infof("[%s] emergency liquidation complete, position flat", e.cfg.Ticker)

	if t := e.trade; t != nil {
		t.Lock()
		e.closeTrade(ctx)
	}
	e.ledger.SetInternalSize(e.cfg.Ticker, 0)
}

// BestEffortEmergency places a single liquidation order straight at the
// gateway. It is the fallback when the unit loop cannot accept the
// activation command; it reads only atomic ledger state and touches no
// executor-owned bookkeeping, so it is safe off the unit goroutine. The
// resulting order is untracked.
func (e *Executor) BestEffortEmergency(ctx context.Context) {
	pos := e.ledger.BrokerPosition(e.cfg.Ticker)
	if pos == 0 {
		return
	}

	side := schema.SideSell
	if pos < 0 {
		side = schema.SideBuy
	}
	o := &schema.Order{
		ID:           e.gw.NextOrderID(),
		ClientRef:    uuid.New().String(),
		Ticker:       e.cfg.Ticker,
		Kind:         schema.KindEmergencyExit,
		Side:         side,
		RequestedQty: schema.AbsQuantity(pos),
		Status:       schema.StatusPending,
		CreatedAt:    time.Now(),
	}
	if err := e.gw.SubmitOrder(ctx, o); err != nil {
		logs.Errorf("[%s] best-effort emergency submit, err: %+v", e.cfg.Ticker, err)
		return
	}
	obs.IncSubmitted(e.cfg.Ticker, o.Kind)
	obs.IncEmergencyRetry(e.cfg.Ticker)
	logs.Warnf("[%s] best-effort emergency exit %d: %s %d at market",
		e.cfg.Ticker, o.ID, side, o.RequestedQty)
}

func (e *Executor) emergencyInterval() time.Duration {
	if e.cfg.EmergencyInterval > 0 {
		return e.cfg.EmergencyInterval
	}
	return defaultEmergencyInterval
}

package exec

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/logs"

	"main/internal/obs"
	"main/internal/og"
	"main/internal/queue"
	"main/internal/risk"
	"main/internal/schema"
	"main/internal/state"
)

// Config is the per-ticker risk assignment resolved from configuration.
// Bracket targets at or below 1.0 are fractions of the entry price;
// larger values are flat dollar offsets.
type Config struct {
	Ticker   string
	UnitSize schema.Quantity

	Stagger           time.Duration
	MaxHoldTime       time.Duration
	Cooldown          time.Duration
	EntryTimeInForce  time.Duration
	ExitTimeInForce   time.Duration
	EmergencyInterval time.Duration

	TakeProfitTarget float64
	StopLossTarget   float64
	MaxLossPerTrade  schema.Notional

	Risk risk.Config
}

// Executor is the per-ticker order and trade state machine. Every method
// except BestEffortEmergency must run on the owning unit goroutine; that
// single execution context is what keeps enforcement reads of the broker
// position consistent with the events that produced them.
type Executor struct {
	cfg    Config
	gw     og.Gateway
	ledger *state.Ledger
	gate   *risk.Gate
	queue  *queue.Queue

	// Active order set. Orders leave on reaching a terminal status.
	orders map[int64]*schema.Order
	trade  *schema.Trade

	// orders whose queue revocation lost the race against submission;
	// the cancel goes out when the broker acknowledges them
	pendingCancel map[int64]struct{}

	cooldownUntil time.Time

	// cumulative realized P&L of closed trades, atomic so the portfolio
	// supervisor can read it off the unit goroutine
	closedPnL atomic.Int64

	em emergencyState

	lastBid schema.Price
	lastAsk schema.Price

	onClosedTrade func(*schema.Trade)
	now           func() time.Time
}

// NewExecutor builds the state machine for one ticker.
func NewExecutor(cfg Config, gw og.Gateway, ledger *state.Ledger, q *queue.Queue) *Executor {
	return &Executor{
		cfg:           cfg,
		gw:            gw,
		ledger:        ledger,
		gate:          risk.NewGate(cfg.Risk),
		queue:         q,
		orders:        make(map[int64]*schema.Order),
		pendingCancel: make(map[int64]struct{}),
		now:           time.Now,
	}
}

// SetTradeHook registers a callback invoked with every closed trade.
// The callback runs on the unit goroutine and must not block.
func (e *Executor) SetTradeHook(fn func(*schema.Trade)) {
	e.onClosedTrade = fn
}

// ClosedPnL returns the cumulative realized P&L of closed trades. Safe
// from any goroutine.
func (e *Executor) ClosedPnL() schema.Notional {
	return schema.Notional(e.closedPnL.Load())
}

// HandleSignal gates, sizes, and queues an entry for the signal. Ordinary
// rejections are logged decisions, not errors.
func (e *Executor) HandleSignal(ctx context.Context, sig schema.Signal) {
	view := risk.View{
		BrokerPosition:  e.ledger.BrokerPosition(e.cfg.Ticker),
		CooldownUntil:   e.cooldownUntil,
		EmergencyActive: e.em.active,
		Now:             e.now(),
	}

	dec, err := e.gate.AllowEntry(sig, view)
	if err != nil {
		logs.Warnf("[%s] dropping signal, err: %+v", e.cfg.Ticker, err)
		return
	}
	if !dec.Allow {
		obs.IncRiskRejection(e.cfg.Ticker, dec.Reason.String())
		logs.Infof("[%s] entry rejected: %s (confidence %.2f, broker position %d)",
			e.cfg.Ticker, dec.Reason, sig.Confidence, view.BrokerPosition)
		return
	}

	qty := e.cfg.UnitSize
	if e.cfg.Risk.MaxPosition > 0 {
		if room := e.cfg.Risk.MaxPosition - schema.AbsQuantity(view.BrokerPosition); room < qty {
			qty = room
		}
	}
	if qty <= 0 {
		return
	}

	side := sig.Direction.EntrySide()
	o := e.newOrder(schema.KindEntry, side, qty, e.entryPrice(side), e.cfg.EntryTimeInForce)
	e.orders[o.ID] = o
	if err := e.queue.Enqueue(o); err != nil {
		delete(e.orders, o.ID)
		logs.Errorf("[%s] enqueue entry %d, err: %+v", e.cfg.Ticker, o.ID, err)
		return
	}
	logs.Infof("[%s] queued %s entry %d for %d shares", e.cfg.Ticker, side, o.ID, qty)
}

// OnEvent applies one gateway event.
func (e *Executor) OnEvent(ctx context.Context, ev schema.Event) {
	switch ev.Kind {
	case schema.EventOrderStatus:
		e.onOrderStatus(ctx, ev)
	case schema.EventPosition:
		e.onPosition(ctx, ev)
	case schema.EventQuote:
		e.lastBid, e.lastAsk = ev.Bid, ev.Ask
	default:
		logs.Warnf("[%s] unknown event kind %d dropped", e.cfg.Ticker, ev.Kind)
	}
}

func (e *Executor) onPosition(ctx context.Context, ev schema.Event) {
	e.ledger.SetBrokerPosition(e.cfg.Ticker, ev.ShareCount)
	obs.SetBrokerPosition(e.cfg.Ticker, ev.ShareCount)
	if e.em.active && ev.ShareCount == 0 {
		e.finishEmergency(ctx)
	}
}

func (e *Executor) onOrderStatus(ctx context.Context, ev schema.Event) {
	o, ok := e.orders[ev.OrderID]
	if !ok {
		logs.Warnf("[%s] %s event for unknown order %d dropped", e.cfg.Ticker, ev.Status, ev.OrderID)
		return
	}
	if o.Status.IsTerminal() {
		return
	}

	switch ev.Status {
	case schema.StatusSubmitted:
		o.Status = schema.StatusSubmitted
		if _, ok := e.pendingCancel[o.ID]; ok {
			delete(e.pendingCancel, o.ID)
			e.cancelOrder(ctx, o.ID)
		}
	case schema.StatusPartFilled, schema.StatusFilled:
		e.onFill(ctx, o, ev)
	case schema.StatusCancelled:
		e.onCancel(ctx, o, ev)
	default:
		logs.Warnf("[%s] unhandled status %s for order %d", e.cfg.Ticker, ev.Status, ev.OrderID)
	}
}

// onFill applies a cumulative fill report and dispatches by order kind.
func (e *Executor) onFill(ctx context.Context, o *schema.Order, ev schema.Event) {
	fresh := ev.FilledQty - o.FilledQty
	if fresh < 0 {
		logs.Warnf("[%s] order %d fill report regressed (%d -> %d), ignored",
			e.cfg.Ticker, o.ID, o.FilledQty, ev.FilledQty)
		return
	}
	o.FilledQty = ev.FilledQty
	o.AvgFillPrice = ev.AvgPrice
	o.Status = ev.Status

	if fresh > 0 {
		obs.IncFill(e.cfg.Ticker, o.Kind)
		if o.Kind != schema.KindDanglingShares {
			e.ledger.RecordFill(e.cfg.Ticker, o.Side, fresh)
		}
	}

	switch o.Kind {
	case schema.KindEntry:
		e.onEntryFill(ctx, o, ev)
	case schema.KindTakeProfit, schema.KindStopLoss:
		e.onBracketFill(ctx, o, ev)
	case schema.KindExit:
		e.onExitFill(ctx, o, ev)
	case schema.KindEmergencyExit:
		e.onEmergencyFill(ctx, o, ev)
	case schema.KindDanglingShares:
		logs.Infof("[%s] reconciliation order %d filled %d of %d",
			e.cfg.Ticker, o.ID, o.FilledQty, o.RequestedQty)
	}

	if ev.Status.IsTerminal() {
		delete(e.orders, o.ID)
		delete(e.pendingCancel, o.ID)
	}
}

func (e *Executor) onEntryFill(ctx context.Context, o *schema.Order, ev schema.Event) {
	if e.trade == nil {
		e.trade = schema.NewTrade(o.ID, e.cfg.Ticker, o.Side, ev.FilledQty, ev.AvgPrice, e.now())
		logs.Infof("[%s] trade %d opened, %s %d at %s",
			e.cfg.Ticker, e.trade.ID, o.Side, ev.FilledQty, ev.AvgPrice)
	} else if err := e.trade.AddEntry(o.ID, o.Side, ev.FilledQty, ev.AvgPrice); err != nil {
		logs.Warnf("[%s] entry fill on order %d rejected, err: %+v", e.cfg.Ticker, o.ID, err)
		return
	}

	// Cancelling excess entries takes priority over bracket placement, so
	// brackets end up sized to the post-cancellation quantity. The check
	// reads the broker-confirmed count, never an internal sum.
	broker := e.ledger.BrokerPosition(e.cfg.Ticker)
	if e.cfg.Risk.MaxPosition > 0 {
		outstanding := e.outstandingEntryQty(o.ID)
		if outstanding > 0 && schema.AbsQuantity(broker)+outstanding > e.cfg.Risk.MaxPosition {
			e.cancelOtherEntries(ctx, o.ID)
		}
	}
	e.placeBrackets(ctx)
}

func (e *Executor) onBracketFill(ctx context.Context, o *schema.Order, ev schema.Event) {
	t := e.trade
	if t == nil {
		logs.Warnf("[%s] %s fill on order %d with no open trade", e.cfg.Ticker, o.Kind, o.ID)
		return
	}

	t.Lock()
	before := t.RealizedPnL()
	if leftover := t.Reduce(o.ID, ev.FilledQty, ev.AvgPrice); leftover > 0 {
		logs.Warnf("[%s] %s order %d filled %d beyond trade size", e.cfg.Ticker, o.Kind, o.ID, leftover)
	}
	logs.Infof("[%s] %s order %d filled %d of %d, realized delta %.2f",
		e.cfg.Ticker, o.Kind, o.ID, ev.FilledQty, o.RequestedQty, (t.RealizedPnL() - before).Float64())

	if o.Kind == schema.KindStopLoss {
		e.cooldownUntil = e.now().Add(e.cfg.Cooldown)
		logs.Infof("[%s] stop loss hit, entries rejected until %s",
			e.cfg.Ticker, e.cooldownUntil.Format(time.RFC3339))
	}

	if ev.Status == schema.StatusFilled {
		switch o.Kind {
		case schema.KindTakeProfit:
			t.TakeProfitFilled = true
			t.TakeProfitOrderID = 0
			if t.StopLossOrderID != 0 {
				e.cancelOrder(ctx, t.StopLossOrderID)
				t.StopLossOrderID = 0
			}
			// re-protect the remainder at the original anchor
			if t.Remaining() > 0 {
				e.placeStopLoss(ctx)
			}
		case schema.KindStopLoss:
			t.StopLossOrderID = 0
			if t.TakeProfitOrderID != 0 {
				e.cancelOrder(ctx, t.TakeProfitOrderID)
				t.TakeProfitOrderID = 0
			}
			if t.Remaining() > 0 {
				e.submitExit(ctx, "stop loss residual")
			}
		}
	}

	e.checkTradeLoss(ctx)
	e.closeIfFlat(ctx)
}

func (e *Executor) onExitFill(ctx context.Context, o *schema.Order, ev schema.Event) {
	t := e.trade
	if t == nil {
		logs.Warnf("[%s] exit fill on order %d with no open trade", e.cfg.Ticker, o.ID)
		return
	}

	if leftover := t.Reduce(o.ID, ev.FilledQty, ev.AvgPrice); leftover > 0 {
		logs.Warnf("[%s] exit order %d filled %d beyond trade size", e.cfg.Ticker, o.ID, leftover)
	}

	if ev.Status == schema.StatusFilled {
		if t.ExitOrderID == o.ID {
			t.ExitOrderID = 0
		}
		if t.Remaining() > 0 {
			e.submitExit(ctx, "residual after exit fill")
		}
	}
	e.closeIfFlat(ctx)
}

func (e *Executor) onEmergencyFill(ctx context.Context, o *schema.Order, ev schema.Event) {
	if t := e.trade; t != nil {
		t.Lock()
		t.Reduce(o.ID, ev.FilledQty, ev.AvgPrice)
	}
	if ev.Status == schema.StatusFilled && e.em.orderID == o.ID {
		e.em.orderID = 0
	}
	e.closeIfFlat(ctx)
}

func (e *Executor) onCancel(ctx context.Context, o *schema.Order, ev schema.Event) {
	// a cancel report can carry the order's final fill delta
	fresh := ev.FilledQty - o.FilledQty
	if fresh > 0 {
		o.FilledQty = ev.FilledQty
		o.AvgFillPrice = ev.AvgPrice
		if o.Kind != schema.KindDanglingShares {
			e.ledger.RecordFill(e.cfg.Ticker, o.Side, fresh)
		}
	}
	o.Status = schema.StatusCancelled
	obs.IncCancelled(e.cfg.Ticker, o.Kind)
	delete(e.orders, o.ID)
	delete(e.pendingCancel, o.ID)

	switch o.Kind {
	case schema.KindEntry:
		if fresh > 0 {
			if e.trade == nil {
				e.trade = schema.NewTrade(o.ID, e.cfg.Ticker, o.Side, ev.FilledQty, ev.AvgPrice, e.now())
			} else if err := e.trade.AddEntry(o.ID, o.Side, ev.FilledQty, ev.AvgPrice); err != nil {
				logs.Warnf("[%s] entry fill on cancelled order %d rejected, err: %+v", e.cfg.Ticker, o.ID, err)
			}
			e.placeBrackets(ctx)
		}
		logs.Infof("[%s] entry %d cancelled, %d of %d filled",
			e.cfg.Ticker, o.ID, o.FilledQty, o.RequestedQty)
	case schema.KindTakeProfit:
		if t := e.trade; t != nil {
			if fresh > 0 {
				t.Lock()
				t.Reduce(o.ID, ev.FilledQty, ev.AvgPrice)
			}
			if t.TakeProfitOrderID == o.ID {
				t.TakeProfitOrderID = 0
			}
			e.closeIfFlat(ctx)
		}
	case schema.KindStopLoss:
		if t := e.trade; t != nil {
			if fresh > 0 {
				t.Lock()
				t.Reduce(o.ID, ev.FilledQty, ev.AvgPrice)
			}
			if t.StopLossOrderID == o.ID {
				t.StopLossOrderID = 0
			}
			e.closeIfFlat(ctx)
		}
	case schema.KindExit:
		// exits never silently vanish
		if t := e.trade; t != nil {
			if fresh > 0 {
				t.Reduce(o.ID, ev.FilledQty, ev.AvgPrice)
			}
			if t.ExitOrderID == o.ID {
				t.ExitOrderID = 0
			}
			if t.Remaining() > 0 && !e.em.active {
				e.submitExit(ctx, "cancelled exit")
			}
			e.closeIfFlat(ctx)
		}
	case schema.KindEmergencyExit:
		if e.em.orderID == o.ID {
			e.em.orderID = 0
		}
		if fresh > 0 {
			if t := e.trade; t != nil {
				t.Reduce(o.ID, ev.FilledQty, ev.AvgPrice)
			}
			e.closeIfFlat(ctx)
		}
	case schema.KindDanglingShares:
		logs.Infof("[%s] reconciliation order %d cancelled, %d of %d filled",
			e.cfg.Ticker, o.ID, o.FilledQty, o.RequestedQty)
	}
}

// CheckExpiry runs on the periodic tick. Trades held past MaxHoldTime are
// flattened with an immediate exit that bypasses the stagger queue; a
// locked trade left without a working exit or bracket gets its exit
// re-driven here.
func (e *Executor) CheckExpiry(ctx context.Context, now time.Time) {
	t := e.trade
	if t == nil || e.em.active {
		return
	}
	if t.ExitOrderID != 0 {
		if _, working := e.orders[t.ExitOrderID]; working {
			return
		}
		t.ExitOrderID = 0
	}

	if t.Locked {
		if t.Remaining() > 0 && t.TakeProfitOrderID == 0 && t.StopLossOrderID == 0 {
			e.submitExit(ctx, "unprotected locked remainder")
		}
		return
	}

	if !t.ExpiredBy(now, e.cfg.MaxHoldTime) {
		return
	}

	logs.Infof("[%s] trade %d held past %s, flattening", e.cfg.Ticker, t.ID, e.cfg.MaxHoldTime)
	if t.TakeProfitOrderID != 0 {
		e.cancelOrder(ctx, t.TakeProfitOrderID)
		t.TakeProfitOrderID = 0
	}
	if t.StopLossOrderID != 0 {
		e.cancelOrder(ctx, t.StopLossOrderID)
		t.StopLossOrderID = 0
	}
	e.submitExit(ctx, "max hold time exceeded")
}

// ReconcileDangling compares broker and internal counts. A divergence with
// no working order to explain it gets an advisory reconciliation order for
// the signed difference; enforcement keeps reading the broker count.
func (e *Executor) ReconcileDangling(ctx context.Context) {
	broker := e.ledger.BrokerPosition(e.cfg.Ticker)
	internal := e.ledger.InternalSize(e.cfg.Ticker)
	diff := broker - internal
	obs.SetDanglingShares(e.cfg.Ticker, diff)
	if diff == 0 || e.em.active {
		return
	}
	// any in-flight order explains the divergence
	if len(e.orders) > 0 {
		return
	}

	side := schema.SideSell
	if diff < 0 {
		side = schema.SideBuy
	}
	qty := schema.AbsQuantity(diff)
	logs.Warnf("[%s] dangling shares: broker %d, internal %d, submitting %s %d",
		e.cfg.Ticker, broker, internal, side, qty)

	o := e.newOrder(schema.KindDanglingShares, side, qty, e.aggressivePrice(side), e.cfg.ExitTimeInForce)
	_ = e.submitDirect(ctx, o)
}

func (e *Executor) checkTradeLoss(ctx context.Context) {
	t := e.trade
	if t == nil || e.cfg.MaxLossPerTrade <= 0 || e.em.active {
		return
	}
	if pnl := t.RealizedPnL(); pnl < -e.cfg.MaxLossPerTrade && t.Remaining() > 0 {
		logs.Warnf("[%s] trade %d realized %.2f beyond loss limit, forcing liquidation",
			e.cfg.Ticker, t.ID, pnl.Float64())
		e.TriggerEmergency(ctx)
	}
}

func (e *Executor) closeIfFlat(ctx context.Context) {
	if e.trade == nil || e.trade.Remaining() != 0 {
		return
	}
	e.closeTrade(ctx)
}

func (e *Executor) closeTrade(ctx context.Context) {
	t := e.trade
	if t == nil {
		return
	}
	if t.TakeProfitOrderID != 0 {
		e.cancelOrder(ctx, t.TakeProfitOrderID)
	}
	if t.StopLossOrderID != 0 {
		e.cancelOrder(ctx, t.StopLossOrderID)
	}

	t.CloseTime = e.now()
	pnl := t.RealizedPnL()
	e.closedPnL.Add(int64(pnl))
	if e.cfg.MaxLossPerTrade > 0 && pnl < -e.cfg.MaxLossPerTrade {
		e.cooldownUntil = e.now().Add(e.cfg.Cooldown)
		logs.Warnf("[%s] trade %d closed beyond loss limit (%.2f), entries rejected until %s",
			e.cfg.Ticker, t.ID, pnl.Float64(), e.cooldownUntil.Format(time.RFC3339))
	}
	logs.Infof("[%s] trade %d closed, realized %.2f", e.cfg.Ticker, t.ID, pnl.Float64())

	if e.onClosedTrade != nil {
		e.onClosedTrade(t)
	}
	e.trade = nil
	e.ledger.SetInternalSize(e.cfg.Ticker, 0)
}

// outstandingEntryQty sums the unfilled quantity of every working entry
// other than skip.
func (e *Executor) outstandingEntryQty(skip int64) schema.Quantity {
	var total schema.Quantity
	for id, o := range e.orders {
		if o.Kind != schema.KindEntry || id == skip || o.Status.IsTerminal() {
			continue
		}
		total += o.LeavesQty()
	}
	return total
}

// cancelOtherEntries drops every working entry except keep, preserving
// take-profit and stop-loss orders.
func (e *Executor) cancelOtherEntries(ctx context.Context, keep int64) {
	for id, o := range e.orders {
		if o.Kind != schema.KindEntry || id == keep || o.Status.IsTerminal() {
			continue
		}
		if o.Status == schema.StatusPending {
			if e.queue.Revoke(id) {
				// stays tracked until the worker confirms the drop
				logs.Infof("[%s] position limit reached, revoked queued entry %d", e.cfg.Ticker, id)
				continue
			}
			// submission already claimed; cancel on the broker ack
			e.pendingCancel[id] = struct{}{}
			logs.Infof("[%s] position limit reached, entry %d cancels on acknowledgement", e.cfg.Ticker, id)
			continue
		}
		logs.Infof("[%s] position limit reached, cancelling entry %d", e.cfg.Ticker, id)
		e.cancelOrder(ctx, id)
	}
}

func (e *Executor) placeBrackets(ctx context.Context) {
	t := e.trade
	if t == nil || t.Locked || t.Remaining() == 0 {
		return
	}

	// replace working brackets so sizes track the filled quantity
	if t.TakeProfitOrderID != 0 {
		e.cancelOrder(ctx, t.TakeProfitOrderID)
		t.TakeProfitOrderID = 0
	}
	if t.StopLossOrderID != 0 {
		e.cancelOrder(ctx, t.StopLossOrderID)
		t.StopLossOrderID = 0
	}

	e.placeTakeProfit(ctx)
	e.placeStopLoss(ctx)
}

func (e *Executor) placeTakeProfit(ctx context.Context) {
	t := e.trade
	if t == nil || t.TakeProfitFilled {
		return
	}
	qty := t.Remaining() / 2
	if qty <= 0 {
		return
	}

	price := bracketPrice(t.AvgEntryPrice(), t.Side, e.cfg.TakeProfitTarget, true)
	o := e.newOrder(schema.KindTakeProfit, t.Side.Opposite(), qty, price, 0)
	if e.submitDirect(ctx, o) == nil {
		t.TakeProfitOrderID = o.ID
	}
}

func (e *Executor) placeStopLoss(ctx context.Context) {
	t := e.trade
	if t == nil {
		return
	}
	qty := t.Remaining()
	if qty <= 0 {
		return
	}

	price := bracketPrice(t.AvgEntryPrice(), t.Side, e.cfg.StopLossTarget, false)
	o := e.newOrder(schema.KindStopLoss, t.Side.Opposite(), qty, price, 0)
	if e.submitDirect(ctx, o) == nil {
		t.StopLossOrderID = o.ID
	}
}

func (e *Executor) submitExit(ctx context.Context, reason string) {
	t := e.trade
	if t == nil {
		return
	}
	qty := t.Remaining()
	if qty <= 0 {
		return
	}
	if t.ExitOrderID != 0 {
		if _, working := e.orders[t.ExitOrderID]; working {
			return
		}
	}

	t.Lock()
	side := t.Side.Opposite()
	o := e.newOrder(schema.KindExit, side, qty, e.aggressivePrice(side), e.cfg.ExitTimeInForce)
	if err := e.submitDirect(ctx, o); err != nil {
		// retried from the expiry tick
		return
	}
	t.ExitOrderID = o.ID
	logs.Infof("[%s] exit %d submitted for %d shares (%s)", e.cfg.Ticker, o.ID, qty, reason)
}

// submitDirect bypasses the stagger queue; brackets, exits, emergency
// orders, and reconciliation orders are all time-critical.
func (e *Executor) submitDirect(ctx context.Context, o *schema.Order) error {
	e.orders[o.ID] = o
	if err := e.gw.SubmitOrder(ctx, o); err != nil {
		delete(e.orders, o.ID)
		logs.Errorf("[%s] submit %s order %d, err: %+v", e.cfg.Ticker, o.Kind, o.ID, err)
		return err
	}
	obs.IncSubmitted(e.cfg.Ticker, o.Kind)
	return nil
}

func (e *Executor) cancelOrder(ctx context.Context, id int64) {
	if err := e.gw.CancelOrder(ctx, id); err != nil {
		logs.Errorf("[%s] cancel order %d, err: %+v", e.cfg.Ticker, id, err)
	}
}

func (e *Executor) newOrder(kind schema.OrderKind, side schema.Side, qty schema.Quantity, price schema.Price, tif time.Duration) *schema.Order {
	return &schema.Order{
		ID:           e.gw.NextOrderID(),
		ClientRef:    uuid.New().String(),
		Ticker:       e.cfg.Ticker,
		Kind:         kind,
		Side:         side,
		RequestedQty: qty,
		LimitPrice:   price,
		Status:       schema.StatusPending,
		TimeInForce:  tif,
		CreatedAt:    e.now(),
	}
}

// entryPrice joins the touch; zero means no quote yet and the gateway
// treats the order as marketable.
func (e *Executor) entryPrice(side schema.Side) schema.Price {
	if side == schema.SideBuy {
		return e.lastAsk
	}
	return e.lastBid
}

// aggressivePrice crosses the spread to get out.
func (e *Executor) aggressivePrice(side schema.Side) schema.Price {
	if side == schema.SideSell {
		return e.lastBid
	}
	return e.lastAsk
}

// bracketPrice resolves a target against the entry anchor. Targets at or
// below 1.0 are fractions of the anchor, larger values are flat dollar
// offsets.
func bracketPrice(anchor schema.Price, side schema.Side, target float64, profit bool) schema.Price {
	var offset schema.Price
	if target <= 1.0 {
		offset = schema.Price(float64(anchor) * target)
	} else {
		offset = schema.PriceFromFloat(target)
	}
	if (side == schema.SideBuy) == profit {
		return anchor + offset
	}
	return anchor - offset
}

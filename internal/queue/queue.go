package queue

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"

	"main/internal/schema"
)

var (
	ErrQueueFull   = errors.New("submission queue full")
	ErrQueueClosed = errors.New("submission queue closed")
)

// SubmitFunc performs the gateway submission for one order.
type SubmitFunc func(ctx context.Context, o *schema.Order) error

// DropFunc is invoked for every revoked order the worker discards instead
// of submitting.
type DropFunc func(o *schema.Order)

// Config controls one ticker's submission pipeline.
type Config struct {
	Ticker   string
	Stagger  time.Duration
	Capacity int
}

// Queue is the per-ticker staggered submission pipeline. It decouples
// signal arrival from gateway submission: orders are handed off FIFO to a
// single background worker which spaces submissions at least Stagger apart,
// measured from the previous submission for the ticker, not from enqueue
// time. The first-ever submission goes out with zero delay.
type Queue struct {
	cfg    Config
	submit SubmitFunc
	drop   DropFunc

	// closeMu orders Enqueue sends against the channel close in Close.
	closeMu sync.RWMutex
	ch      chan *schema.Order
	running atomic.Bool
	closed  atomic.Bool
	discard chan struct{}
	done    chan struct{}

	// Unix nanos of the previous submission; zero means never submitted.
	lastSubmitNano atomic.Int64

	// ids of orders enqueued but not yet claimed for submission. Revoke
	// and the worker race on LoadAndDelete and exactly one wins, so a
	// successful revocation guarantees the order never reaches the
	// gateway.
	pending sync.Map

	now func() time.Time
}

// New creates a queue; Run must be called before orders are drained. The
// drop callback fires on the worker goroutine for every revoked order it
// discards; a nil callback discards silently.
func New(cfg Config, submit SubmitFunc, drop DropFunc) *Queue {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 64
	}
	return &Queue{
		cfg:     cfg,
		submit:  submit,
		drop:    drop,
		ch:      make(chan *schema.Order, cfg.Capacity),
		discard: make(chan struct{}),
		done:    make(chan struct{}),
		now:     time.Now,
	}
}

// Enqueue appends an order without blocking.
func (q *Queue) Enqueue(o *schema.Order) error {
	q.closeMu.RLock()
	defer q.closeMu.RUnlock()
	if q.closed.Load() {
		return ErrQueueClosed
	}

	q.pending.Store(o.ID, struct{}{})
	select {
	case q.ch <- o:
		return nil
	default:
		q.pending.Delete(o.ID)
		return ErrQueueFull
	}
}

// Revoke withdraws a queued order. A true return guarantees the worker
// drops the order instead of submitting it and confirms through the drop
// callback; false means the worker has already claimed it for submission.
func (q *Queue) Revoke(orderID int64) bool {
	_, ok := q.pending.LoadAndDelete(orderID)
	return ok
}

// Run starts the worker. Subsequent calls are no-ops.
func (q *Queue) Run(ctx context.Context) {
	if q.running.Swap(true) {
		return
	}
	go q.work(ctx)
}

// Close stops intake, lets the worker drain for up to timeout, then
// discards whatever remains and joins the worker.
func (q *Queue) Close(timeout time.Duration) {
	q.closeMu.Lock()
	first := q.closed.CompareAndSwap(false, true)
	if first {
		close(q.ch)
	}
	q.closeMu.Unlock()
	if !first {
		return
	}

	select {
	case <-q.done:
	case <-time.After(timeout):
		close(q.discard)
		<-q.done
	}
}

// LastSubmitAt returns the time of the previous submission, or the zero
// time when nothing has been submitted yet.
func (q *Queue) LastSubmitAt() time.Time {
	nano := q.lastSubmitNano.Load()
	if nano == 0 {
		return time.Time{}
	}
	return time.Unix(0, nano)
}

func (q *Queue) work(ctx context.Context) {
	defer close(q.done)

	for o := range q.ch {
		if _, ok := q.pending.Load(o.ID); !ok {
			q.dropRevoked(o)
			continue
		}
		if ctx.Err() != nil {
			q.pending.Delete(o.ID)
			logs.Warnf("[%s] discarding queued %s order %d: context cancelled", q.cfg.Ticker, o.Kind, o.ID)
			continue
		}
		if !q.waitStagger(ctx) {
			q.pending.Delete(o.ID)
			logs.Warnf("[%s] discarding queued %s order %d: queue shutting down", q.cfg.Ticker, o.Kind, o.ID)
			continue
		}
		// claim after the stagger wait; a revocation issued while the
		// order sat in the window wins here and the order is dropped
		if _, ok := q.pending.LoadAndDelete(o.ID); !ok {
			q.dropRevoked(o)
			continue
		}

		err := q.submit(ctx, o)
		q.lastSubmitNano.Store(q.now().UnixNano())
		if err != nil {
			logs.Errorf("[%s] submit %s order %d, err: %+v", q.cfg.Ticker, o.Kind, o.ID, err)
		}
	}
}

func (q *Queue) dropRevoked(o *schema.Order) {
	logs.Infof("[%s] dropping revoked %s order %d before submission", q.cfg.Ticker, o.Kind, o.ID)
	if q.drop != nil {
		q.drop(o)
	}
}

func (q *Queue) waitStagger(ctx context.Context) bool {
	last := q.lastSubmitNano.Load()
	if last == 0 || q.cfg.Stagger <= 0 {
		return true
	}

	wait := q.cfg.Stagger - q.now().Sub(time.Unix(0, last))
	if wait <= 0 {
		return true
	}

	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-q.discard:
		return false
	}
}

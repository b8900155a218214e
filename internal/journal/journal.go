package journal

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"gorm.io/gorm"

	"main/internal/schema"
)

// TradeRecord is the persisted form of a closed trade.
type TradeRecord struct {
	ID            string `gorm:"primaryKey;size:36"`
	TradeID       int64
	Ticker        string `gorm:"index"`
	Side          string
	AvgEntryPrice float64
	RealizedPnL   float64
	OpenedAt      time.Time
	ClosedAt      time.Time
	CreatedAt     time.Time
}

// Journal persists closed trades off the decision path. A nil Journal or
// one built without a database is a no-op, and write failures are logged
// rather than surfaced; bookkeeping must never stall trading.
type Journal struct {
	db      *gorm.DB
	ch      chan *TradeRecord
	running atomic.Bool
	done    chan struct{}
}

// New wraps a gorm handle. db may be nil to disable persistence.
func New(db *gorm.DB) (*Journal, error) {
	if db == nil {
		return nil, nil
	}
	if err := db.AutoMigrate(&TradeRecord{}); err != nil {
		return nil, errors.Wrap(err, "migrate journal")
	}
	return &Journal{
		db:   db,
		ch:   make(chan *TradeRecord, 128),
		done: make(chan struct{}),
	}, nil
}

// Run starts the background writer. Subsequent calls are no-ops.
func (j *Journal) Run(ctx context.Context) {
	if j == nil || j.running.Swap(true) {
		return
	}
	go j.work(ctx)
}

// RecordClosed enqueues a closed trade without blocking.
func (j *Journal) RecordClosed(t *schema.Trade) {
	if j == nil || t == nil {
		return
	}

	rec := &TradeRecord{
		ID:            uuid.New().String(),
		TradeID:       t.ID,
		Ticker:        t.Ticker,
		Side:          t.Side.String(),
		AvgEntryPrice: t.AvgEntryPrice().Float64(),
		RealizedPnL:   t.RealizedPnL().Float64(),
		OpenedAt:      t.OpenTime,
		ClosedAt:      t.CloseTime,
	}
	select {
	case j.ch <- rec:
	default:
		logs.Warnf("[%s] journal buffer full, trade %d record dropped", t.Ticker, t.ID)
	}
}

// Close stops intake and joins the writer.
func (j *Journal) Close() {
	if j == nil || !j.running.Load() {
		return
	}
	close(j.ch)
	<-j.done
}

func (j *Journal) work(ctx context.Context) {
	defer close(j.done)

	for rec := range j.ch {
		if err := j.db.WithContext(ctx).Create(rec).Error; err != nil {
			logs.Errorf("[%s] journal write trade %d, err: %+v", rec.Ticker, rec.TradeID, err)
		}
	}
}

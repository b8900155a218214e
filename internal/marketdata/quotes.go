package marketdata

import (
	"context"

	"github.com/yanun0323/decimal"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"
	"github.com/yanun0323/pkg/ws"

	"main/internal/schema"
)

// Feed bridges a broker-side quote websocket into gateway quote events.
type Feed struct {
	wss *ws.WebSocket
}

// NewFeed dials lazily; Start opens the connection.
func NewFeed(ctx context.Context, url string) *Feed {
	return &Feed{
		wss: ws.New(ctx, url),
	}
}

func (f *Feed) Start(ctx context.Context) error {
	if err := f.wss.Start(ctx); err != nil {
		return errors.Wrap(err, "start wss")
	}
	return nil
}

func (f *Feed) Close() {
	f.wss.Close()
}

type subscribeRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

type subscribeResponse struct {
	ID     int64 `json:"id"`
	Result any   `json:"result"`
}

// SubscribeQuotes registers for top-of-book updates on one ticker and
// waits for the acknowledgement.
func (f *Feed) SubscribeQuotes(ctx context.Context, ticker string) error {
	appendIntoRegister := true
	if err := f.wss.SendAndWait(ctx, ws.Sidecar{
		Sender: func(ctx context.Context, ws *ws.WebSocket) error {
			payload := subscribeRequest{
				Method: "SUBSCRIBE",
				Params: []string{ticker + "@quote"},
				ID:     1,
			}

			if err := ws.WriteJSON(payload); err != nil {
				return errors.Wrap(err, "write subscribe payload").With("payload", payload)
			}
			return nil
		},
		Waiter: func(ctx context.Context, m ws.Message) (bool, error) {
			var resp subscribeResponse
			if err := m.Unmarshal(&resp); err != nil || resp.ID != 1 {
				return false, nil
			}
			if resp.Result != nil {
				return false, errors.Errorf("subscribe and wait, err: %+v", resp.Result)
			}
			return true, nil
		},
	}, appendIntoRegister); err != nil {
		return errors.Wrap(err, "send and wait")
	}
	return nil
}

type quotePayload struct {
	Type   string          `json:"type"`
	Ticker string          `json:"ticker"`
	Bid    decimal.Decimal `json:"bid"`
	Ask    decimal.Decimal `json:"ask"`
}

// ObserveQuotes forwards each top-of-book update as a quote event.
func (f *Feed) ObserveQuotes(ctx context.Context, handler func(schema.Event)) (unsubscribe func()) {
	ch, cancel := f.wss.Subscribe()

	go func() {
		defer cancel()
		for {
			select {
			case <-sys.Shutdown():
				return
			case <-ctx.Done():
				return
			case m, ok := <-ch:
				if !ok {
					return
				}

				payload, ok := ws.ReadMessage[quotePayload](m)
				if !ok || payload.Type != "quote" {
					continue
				}

				ev, err := quoteEvent(payload)
				if err != nil {
					logs.Warnf("[%s] bad quote payload, err: %+v", payload.Ticker, err)
					continue
				}
				handler(ev)
			}
		}
	}()

	return cancel
}

func quoteEvent(p quotePayload) (schema.Event, error) {
	bid, err := schema.ParsePrice(p.Bid.String())
	if err != nil {
		return schema.Event{}, errors.Wrap(err, "parse bid")
	}
	ask, err := schema.ParsePrice(p.Ask.String())
	if err != nil {
		return schema.Event{}, errors.Wrap(err, "parse ask")
	}

	return schema.Event{
		Kind:   schema.EventQuote,
		Ticker: p.Ticker,
		Bid:    bid,
		Ask:    ask,
	}, nil
}

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"net/http"
	"strings"
	"time"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/yanun0323/logs"
	"github.com/yanun0323/pkg/sys"

	"main/internal/exec"
	"main/internal/journal"
	"main/internal/marketdata"
	"main/internal/og"
	"main/internal/ops"
	"main/internal/queue"
	"main/internal/schema"
	"main/internal/state"
	"main/pkg/conn"
)

const queueCloseTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "", "Path to JSON config")
	pgDSN := flag.String("pg-dsn", "", "Postgres DSN for the trade journal (empty=disabled)")
	feedURL := flag.String("feed-url", "", "Websocket quote feed URL (empty=simulated quotes only)")
	metricsAddr := flag.String("metrics-addr", ":9100", "Listen address for /metrics and the operator API")
	pyroscopeAddr := flag.String("pyroscope", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	if *configPath == "" {
		log.Fatalf("-config is required")
	}
	loaded, err := ops.Load(*configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	if *pyroscopeAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "trader",
			ServerAddress:   *pyroscopeAddr,
			Tags: map[string]string{
				"env": "local",
			},
			Logger: emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			log.Fatalf("pyroscope start failed: %v", err)
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var jnl *journal.Journal
	if *pgDSN != "" {
		db, err := conn.Postgres(*pgDSN)
		if err != nil {
			log.Fatalf("postgres connect failed: %v", err)
		}
		defer func() {
			_ = conn.Close(db)
		}()
		if jnl, err = journal.New(db); err != nil {
			log.Fatalf("journal init failed: %v", err)
		}
		jnl.Run(ctx)
	}

	gw := og.NewSim(1024)
	ledger := state.NewLedger()

	units := make(map[string]*exec.Unit, len(loaded.Assignments))
	queues := make([]*queue.Queue, 0, len(loaded.Assignments))
	unitList := make([]*exec.Unit, 0, len(loaded.Assignments))
	for _, asg := range loaded.Assignments {
		var unit *exec.Unit
		deliver := func(ev schema.Event) { unit.Deliver(ev) }

		q := queue.New(queue.Config{
			Ticker:  asg.Ticker,
			Stagger: asg.Stagger,
		}, exec.SubmitFunc(gw, deliver), exec.DropFunc(deliver))

		unit = exec.NewUnit(exec.NewExecutor(asg, gw, ledger, q))
		unit.Executor().SetTradeHook(jnl.RecordClosed)

		units[asg.Ticker] = unit
		queues = append(queues, q)
		unitList = append(unitList, unit)

		q.Run(ctx)
		unit.Run(ctx)
	}

	exec.NewSupervisor(loaded.MaxLossCumulative, unitList).Run(ctx)

	// one forwarder keeps per-ticker emission order intact
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case ev := <-gw.Events():
				if u, ok := units[ev.Ticker]; ok {
					u.Deliver(ev)
				} else {
					logs.Warnf("[%s] event for unknown ticker dropped", ev.Ticker)
				}
			}
		}
	}()

	if *feedURL != "" {
		feed := marketdata.NewFeed(ctx, *feedURL)
		if err := feed.Start(ctx); err != nil {
			log.Fatalf("quote feed start failed: %v", err)
		}
		defer feed.Close()
		for ticker := range units {
			if err := feed.SubscribeQuotes(ctx, ticker); err != nil {
				log.Fatalf("subscribe quotes for %s failed: %v", ticker, err)
			}
		}
		feed.ObserveQuotes(ctx, func(ev schema.Event) {
			if u, ok := units[ev.Ticker]; ok {
				u.Deliver(ev)
			}
		})
	}

	go serveOps(ctx, *metricsAddr, units)

	<-sys.Shutdown()
	logs.Info("shutting down")
	cancel()
	for _, q := range queues {
		q.Close(queueCloseTimeout)
	}
	for _, u := range unitList {
		<-u.Done()
	}
	jnl.Close()
}

type signalRequest struct {
	Ticker     string  `json:"ticker"`
	Direction  string  `json:"direction"`
	Confidence float64 `json:"confidence"`
}

// serveOps exposes /metrics plus a minimal operator API: POST /signal to
// inject a trade signal, POST /emergency?ticker=X to force liquidation,
// DELETE /emergency?ticker=X to call it off.
func serveOps(ctx context.Context, addr string, units map[string]*exec.Unit) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	mux.HandleFunc("/signal", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		var req signalRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		u, ok := units[req.Ticker]
		if !ok {
			http.Error(w, "unknown ticker", http.StatusNotFound)
			return
		}

		var dir schema.Direction
		switch strings.ToUpper(req.Direction) {
		case "BULLISH":
			dir = schema.DirectionBullish
		case "BEARISH":
			dir = schema.DirectionBearish
		default:
			http.Error(w, "unknown direction", http.StatusBadRequest)
			return
		}

		u.DeliverSignal(schema.Signal{
			Ticker:     req.Ticker,
			Direction:  dir,
			Confidence: req.Confidence,
			At:         time.Now(),
		})
		w.WriteHeader(http.StatusAccepted)
	})

	mux.HandleFunc("/emergency", func(w http.ResponseWriter, r *http.Request) {
		u, ok := units[r.URL.Query().Get("ticker")]
		if !ok {
			http.Error(w, "unknown ticker", http.StatusNotFound)
			return
		}
		switch r.Method {
		case http.MethodPost:
			u.TriggerEmergency(r.Context())
		case http.MethodDelete:
			u.CancelEmergency()
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	srv := &http.Server{Addr: addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logs.Infof("operator API listening on %s", addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logs.Errorf("operator API, err: %+v", err)
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}

package obs

import (
	"github.com/prometheus/client_golang/prometheus"

	"main/internal/schema"
)

var (
	ordersSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_orders_submitted_total",
		Help: "Orders submitted to the gateway, by ticker and kind.",
	}, []string{"ticker", "kind"})

	ordersCancelled = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_orders_cancelled_total",
		Help: "Orders reaching cancelled state, by ticker and kind.",
	}, []string{"ticker", "kind"})

	fills = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_fills_total",
		Help: "Fill reports applied, by ticker and kind.",
	}, []string{"ticker", "kind"})

	riskRejections = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_risk_rejections_total",
		Help: "Entry signals rejected by the risk gate, by reason.",
	}, []string{"ticker", "reason"})

	emergencyRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trader_emergency_retries_total",
		Help: "Emergency liquidation orders submitted, by ticker.",
	}, []string{"ticker"})

	brokerPosition = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trader_broker_position",
		Help: "Latest broker-confirmed signed share count.",
	}, []string{"ticker"})

	danglingShares = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "trader_dangling_shares",
		Help: "Signed divergence between broker position and internal size.",
	}, []string{"ticker"})
)

func init() {
	prometheus.MustRegister(
		ordersSubmitted,
		ordersCancelled,
		fills,
		riskRejections,
		emergencyRetries,
		brokerPosition,
		danglingShares,
	)
}

func IncSubmitted(ticker string, kind schema.OrderKind) {
	ordersSubmitted.WithLabelValues(ticker, kind.String()).Inc()
}

func IncCancelled(ticker string, kind schema.OrderKind) {
	ordersCancelled.WithLabelValues(ticker, kind.String()).Inc()
}

func IncFill(ticker string, kind schema.OrderKind) {
	fills.WithLabelValues(ticker, kind.String()).Inc()
}

func IncRiskRejection(ticker, reason string) {
	riskRejections.WithLabelValues(ticker, reason).Inc()
}

func IncEmergencyRetry(ticker string) {
	emergencyRetries.WithLabelValues(ticker).Inc()
}

func SetBrokerPosition(ticker string, shares schema.Quantity) {
	brokerPosition.WithLabelValues(ticker).Set(float64(shares))
}

func SetDanglingShares(ticker string, diff schema.Quantity) {
	danglingShares.WithLabelValues(ticker).Set(float64(diff))
}

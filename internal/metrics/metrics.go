package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hourskill_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "hourskill_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	LedgerTransactionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hourskill_ledger_transactions_total",
			Help: "Committed ledger entries by type",
		},
		[]string{"tx_type"},
	)

	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hourskill_purchases_total",
			Help: "Video unlock attempts by outcome",
		},
		[]string{"outcome"},
	)

	AdRewardsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hourskill_ad_rewards_total",
			Help: "Ad reward requests by outcome",
		},
		[]string{"outcome"},
	)

	TrustPenaltiesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hourskill_trust_penalties_total",
			Help: "Trust score penalties applied for ad reward spam",
		},
	)

	HeartbeatsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hourskill_watch_heartbeats_total",
			Help: "Accepted watch session heartbeats",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordLedgerTransaction(txType string) {
	LedgerTransactionsTotal.WithLabelValues(txType).Inc()
}

func RecordPurchase(outcome string) {
	PurchasesTotal.WithLabelValues(outcome).Inc()
}

func RecordAdReward(outcome string) {
	AdRewardsTotal.WithLabelValues(outcome).Inc()
}

func RecordTrustPenalty() {
	TrustPenaltiesTotal.Inc()
}

func RecordHeartbeat() {
	HeartbeatsTotal.Inc()
}

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordHTTPRequest(t *testing.T) {
	HTTPRequestsTotal.Reset()
	HTTPRequestDuration.Reset()

	RecordHTTPRequest("GET", "/wallet", "200", 0.5)

	count := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/wallet", "200"))
	assert.Equal(t, float64(1), count)
	assert.Equal(t, 1, testutil.CollectAndCount(HTTPRequestDuration))
}

func TestRecordHTTPRequestMultiple(t *testing.T) {
	HTTPRequestsTotal.Reset()

	RecordHTTPRequest("POST", "/ads/reward", "200", 0.1)
	RecordHTTPRequest("POST", "/ads/reward", "200", 0.2)
	RecordHTTPRequest("POST", "/ads/reward", "429", 0.05)

	assert.Equal(t, float64(2), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/ads/reward", "200")))
	assert.Equal(t, float64(1), testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("POST", "/ads/reward", "429")))
}

func TestRecordLedgerTransaction(t *testing.T) {
	LedgerTransactionsTotal.Reset()

	RecordLedgerTransaction("SPEND_VIEW")
	RecordLedgerTransaction("SPEND_VIEW")
	RecordLedgerTransaction("EARN_ADS")

	assert.Equal(t, float64(2), testutil.ToFloat64(LedgerTransactionsTotal.WithLabelValues("SPEND_VIEW")))
	assert.Equal(t, float64(1), testutil.ToFloat64(LedgerTransactionsTotal.WithLabelValues("EARN_ADS")))
}

func TestRecordPurchaseAndAdReward(t *testing.T) {
	PurchasesTotal.Reset()
	AdRewardsTotal.Reset()

	RecordPurchase("unlocked")
	RecordPurchase("insufficient_funds")
	RecordAdReward("rate_limited")

	assert.Equal(t, float64(1), testutil.ToFloat64(PurchasesTotal.WithLabelValues("unlocked")))
	assert.Equal(t, float64(1), testutil.ToFloat64(PurchasesTotal.WithLabelValues("insufficient_funds")))
	assert.Equal(t, float64(1), testutil.ToFloat64(AdRewardsTotal.WithLabelValues("rate_limited")))
}

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(TrustPenaltiesTotal)
	RecordTrustPenalty()
	assert.Equal(t, before+1, testutil.ToFloat64(TrustPenaltiesTotal))

	before = testutil.ToFloat64(HeartbeatsTotal)
	RecordHeartbeat()
	RecordHeartbeat()
	assert.Equal(t, before+2, testutil.ToFloat64(HeartbeatsTotal))
}

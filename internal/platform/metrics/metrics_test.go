package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Observations(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.ObserveVerification("verified", 72)
	m.ObserveVerification("failed", 0)
	m.ObserveTestCompleted(true)
	m.ObserveTestCompleted(false)
	m.ObserveOracleCall("assess", 2*time.Second, "timeout")
	m.IncCertificateLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationsTotal.WithLabelValues("verified")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.VerificationsTotal.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CertificatesIssued))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TestsCompleted.WithLabelValues("failed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.OracleFailures.WithLabelValues("assess", "timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CertificateLookups.WithLabelValues("not_found")))
}

func TestMetrics_NilReceiver(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveVerification("verified", 90)
		m.IncTestStarted()
		m.ObserveTxLockWait("resume", time.Millisecond)
		m.IncRateLimitRejection("api")
	})
}

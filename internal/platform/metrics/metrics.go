package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the domain collectors. All methods are safe on a nil receiver
// so services can run without metrics in tests.
type Metrics struct {
	VerificationsTotal  *prometheus.CounterVec
	VerificationScore   prometheus.Histogram
	CredentialsBound    *prometheus.CounterVec
	TestsStarted        prometheus.Counter
	TestsCompleted      *prometheus.CounterVec
	CertificatesIssued  prometheus.Counter
	CertificateLookups  *prometheus.CounterVec
	OracleLatency       *prometheus.HistogramVec
	OracleFailures      *prometheus.CounterVec
	BlobPutLatency      prometheus.Histogram
	TxLockWait          *prometheus.HistogramVec
	RateLimitRejections *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		VerificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_verifications_total",
			Help: "Verification runs, labeled by outcome (verified, rejected, failed)",
		}, []string{"outcome"}),
		VerificationScore: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credverify_verification_score",
			Help:    "Distribution of resume credibility scores",
			Buckets: prometheus.LinearBuckets(0, 10, 11),
		}),
		CredentialsBound: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_credentials_bound_total",
			Help: "Credential bind calls, labeled by result (bound, noop)",
		}, []string{"result"}),
		TestsStarted: f.NewCounter(prometheus.CounterOpts{
			Name: "credverify_tests_started_total",
			Help: "Skill tests started",
		}),
		TestsCompleted: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_tests_completed_total",
			Help: "Skill tests completed, labeled by result (passed, failed)",
		}, []string{"result"}),
		CertificatesIssued: f.NewCounter(prometheus.CounterOpts{
			Name: "credverify_certificates_issued_total",
			Help: "Certificates issued for passed skill tests",
		}),
		CertificateLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_certificate_lookups_total",
			Help: "Public certificate lookups, labeled by result (found, not_found)",
		}, []string{"result"}),
		OracleLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credverify_oracle_latency_seconds",
			Help:    "Scoring oracle call latency",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 45},
		}, []string{"operation"}),
		OracleFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_oracle_failures_total",
			Help: "Scoring oracle failures, labeled by operation and reason",
		}, []string{"operation", "reason"}),
		BlobPutLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "credverify_blob_put_latency_seconds",
			Help:    "Blob store pin latency",
			Buckets: prometheus.DefBuckets,
		}),
		TxLockWait: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "credverify_store_tx_lock_wait_seconds",
			Help:    "Time spent waiting for an in-memory store transaction lock",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1},
		}, []string{"store"}),
		RateLimitRejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "credverify_rate_limit_rejections_total",
			Help: "Requests rejected by the rate limiter, labeled by class",
		}, []string{"class"}),
	}
}

// ObserveVerification records a finished verification run.
func (m *Metrics) ObserveVerification(outcome string, score int) {
	if m == nil {
		return
	}
	m.VerificationsTotal.WithLabelValues(outcome).Inc()
	if outcome != "failed" {
		m.VerificationScore.Observe(float64(score))
	}
}

// IncCredentialBound records a bind call.
func (m *Metrics) IncCredentialBound(result string) {
	if m == nil {
		return
	}
	m.CredentialsBound.WithLabelValues(result).Inc()
}

// IncTestStarted records a started test.
func (m *Metrics) IncTestStarted() {
	if m == nil {
		return
	}
	m.TestsStarted.Inc()
}

// ObserveTestCompleted records a graded test and, when passed, the issued certificate.
func (m *Metrics) ObserveTestCompleted(passed bool) {
	if m == nil {
		return
	}
	if passed {
		m.TestsCompleted.WithLabelValues("passed").Inc()
		m.CertificatesIssued.Inc()
		return
	}
	m.TestsCompleted.WithLabelValues("failed").Inc()
}

// IncCertificateLookup records a public lookup.
func (m *Metrics) IncCertificateLookup(found bool) {
	if m == nil {
		return
	}
	if found {
		m.CertificateLookups.WithLabelValues("found").Inc()
		return
	}
	m.CertificateLookups.WithLabelValues("not_found").Inc()
}

// ObserveOracleCall records a scoring oracle call; reason is empty on success.
func (m *Metrics) ObserveOracleCall(operation string, elapsed time.Duration, reason string) {
	if m == nil {
		return
	}
	m.OracleLatency.WithLabelValues(operation).Observe(elapsed.Seconds())
	if reason != "" {
		m.OracleFailures.WithLabelValues(operation, reason).Inc()
	}
}

// ObserveBlobPut records a blob pin.
func (m *Metrics) ObserveBlobPut(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.BlobPutLatency.Observe(elapsed.Seconds())
}

// ObserveTxLockWait records time spent acquiring a store lock.
func (m *Metrics) ObserveTxLockWait(store string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.TxLockWait.WithLabelValues(store).Observe(elapsed.Seconds())
}

// IncRateLimitRejection records a rejected request.
func (m *Metrics) IncRateLimitRejection(class string) {
	if m == nil {
		return
	}
	m.RateLimitRejections.WithLabelValues(class).Inc()
}

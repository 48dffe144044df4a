// Package observability holds the Prometheus metrics and the error reporter
// used by the sync core.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	syncErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymsync",
		Subsystem: "sync",
		Name:      "errors_total",
		Help:      "Gateway failures reported by the sync core, by operation.",
	}, []string{"operation"})
	bootstrapOutcomes = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymsync",
		Subsystem: "bootstrap",
		Name:      "outcomes_total",
		Help:      "Session bootstrap results: adopted, seeded, stale or failed.",
	}, []string{"outcome"})
	lastUpload = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymsync",
		Subsystem: "sync",
		Name:      "last_upload_timestamp_seconds",
		Help:      "Unix timestamp of the most recent successful profile upload.",
	})
	auditDefects = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "gymsync",
		Subsystem: "audit",
		Name:      "defects",
		Help:      "Validation defects found by the last audit, by kind.",
	}, []string{"kind"})
)

func init() {
	prometheus.MustRegister(syncErrors, bootstrapOutcomes, lastUpload, auditDefects)
}

// Bootstrap outcome labels.
const (
	OutcomeAdopted = "adopted"
	OutcomeSeeded  = "seeded"
	OutcomeStale   = "stale"
	OutcomeFailed  = "failed"
)

// RecordBootstrap counts one bootstrap result.
func RecordBootstrap(outcome string) {
	bootstrapOutcomes.WithLabelValues(outcome).Inc()
}

// RecordUpload updates the upload watermark gauge.
func RecordUpload(ts time.Time) {
	if ts.IsZero() {
		return
	}
	lastUpload.Set(float64(ts.Unix()))
}

// RecordAudit replaces the per-kind defect gauge with counts.
func RecordAudit(counts map[string]int) {
	auditDefects.Reset()
	for kind, n := range counts {
		auditDefects.WithLabelValues(kind).Set(float64(n))
	}
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AuditsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "seo_audits_total",
			Help: "Total number of page audits by validity outcome.",
		},
		[]string{"valid"},
	)

	AuditDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seo_audit_duration_seconds",
			Help:    "Time spent producing a single audit report.",
			Buckets: prometheus.DefBuckets,
		},
	)

	OverallScore = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "seo_audit_overall_score",
			Help:    "Distribution of overall audit scores.",
			Buckets: []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100},
		},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seo_audit_cache_hits_total",
			Help: "Audit reports served from the report cache.",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "seo_audit_cache_misses_total",
			Help: "Audit requests that required a fresh report.",
		},
	)
)

package reconcile

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/esgf/solrsync/metrics"
)

const namespace = "reconcile"

var (
	numSessions = metrics.NewCounter(
		"sessions",
		namespace,
		"number of reconciliation sessions",
		[]string{"outcome"},
	)
	sessionSuccess = numSessions.WithLabelValues("ok")
	sessionFail    = numSessions.WithLabelValues("not")

	sessionDuration = metrics.NewHistogramWithBuckets(
		"session_duration_seconds",
		namespace,
		"duration of reconciliation sessions",
		[]string{},
		prometheus.ExponentialBuckets(1, 2, 16),
	).WithLabelValues()

	windowsExamined = metrics.NewCounter(
		"windows_examined",
		namespace,
		"number of windows compared",
		[]string{"core", "granularity"},
	)

	windowsRepaired = metrics.NewCounter(
		"windows_repaired",
		namespace,
		"number of leaf windows repaired",
		[]string{"core"},
	)

	recordsMigrated = metrics.NewCounter(
		"records_migrated",
		namespace,
		"number of records copied to the target",
		[]string{"core"},
	)

	recordsSkipped = metrics.NewCounter(
		"records_skipped",
		namespace,
		"number of records that could not be written",
		[]string{"core"},
	)

	batchFallbacks = metrics.NewCounter(
		"batch_fallbacks",
		namespace,
		"number of batches written record by record",
		[]string{"core"},
	)

	writeConflicts = metrics.NewCounter(
		"write_conflicts",
		namespace,
		"number of writes rejected with a version conflict",
		[]string{"core"},
	)

	probeLatency = metrics.NewHistogramWithBuckets(
		"probe_latency_seconds",
		namespace,
		"latency of signature probes",
		[]string{"side"},
		prometheus.ExponentialBuckets(0.005, 2, 14),
	)
	sourceProbeLatency = probeLatency.WithLabelValues("source")
	targetProbeLatency = probeLatency.WithLabelValues("target")

	sourceCacheHits = metrics.NewCounter(
		"source_cache",
		namespace,
		"source signature cache lookups",
		[]string{"outcome"},
	)
	cacheHit  = sourceCacheHits.WithLabelValues("hit")
	cacheMiss = sourceCacheHits.WithLabelValues("miss")
)

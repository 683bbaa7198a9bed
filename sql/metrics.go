package sql

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/esgf/solrsync/metrics"
)

const namespace = "database"

// QueryDuration in nanoseconds.
var queryDuration = metrics.NewHistogramWithBuckets(
	"query_duration",
	namespace,
	"Duration of the query in nanoseconds",
	[]string{"query"},
	prometheus.ExponentialBuckets(100_000, 2, 20),
)

var connWaitLatency = metrics.NewHistogramWithBuckets(
	"conn_wait_latency_seconds",
	namespace,
	"Time spent waiting for a pooled connection",
	[]string{},
	prometheus.ExponentialBuckets(0.0001, 2, 16),
).WithLabelValues()

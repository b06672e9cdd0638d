package mapper

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for plan resolution and row materialization. Cache
// hit/miss counters are the ones worth watching: a high miss rate means
// result-set shapes are churning and plans are not being reused.
var (
	planCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rowbind",
		Subsystem: "plan_cache",
		Name:      "hits_total",
		Help:      "Number of plan resolutions served from the cache",
	})

	planCacheMisses = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "rowbind",
		Subsystem: "plan_cache",
		Name:      "misses_total",
		Help:      "Number of plan resolutions that required a full resolve",
	})

	plansResolved = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rowbind",
		Subsystem: "resolver",
		Name:      "plans_total",
		Help:      "Plan resolutions by outcome",
	}, []string{"outcome"})

	resolveDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rowbind",
		Subsystem: "resolver",
		Name:      "duration_seconds",
		Help:      "Time spent resolving mapping plans",
		Buckets:   prometheus.ExponentialBuckets(1e-6, 4, 10),
	})

	rowsMaterialized = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rowbind",
		Subsystem: "materializer",
		Name:      "rows_total",
		Help:      "Row materializations by outcome",
	}, []string{"outcome"})
)

const (
	outcomeSuccess = "success"
	outcomeError   = "error"
)

package production

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	metricsMu          sync.Mutex
	metricsInitialized bool
	metricsErr         error

	fetchCounter   *prometheus.CounterVec
	cacheCounter   *prometheus.CounterVec
	buildHistogram prometheus.Histogram
)

// SetupMetrics registers the pipeline collectors. Only the first call registers;
// later calls return the first outcome.
func SetupMetrics(reg prometheus.Registerer) error {
	metricsMu.Lock()
	defer metricsMu.Unlock()
	if metricsInitialized {
		return metricsErr
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	fetch := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prodmon_source_fetch_total",
		Help: "Raw row fetches by outcome (live, fallback).",
	}, []string{"outcome"})
	cache := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "prodmon_rows_cache_total",
		Help: "Raw row cache lookups by result (hit, miss, error).",
	}, []string{"result"})
	build := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "prodmon_dashboard_build_duration_seconds",
		Help:    "Time spent normalizing, filtering and aggregating a dashboard.",
		Buckets: prometheus.DefBuckets,
	})

	for _, collector := range []prometheus.Collector{fetch, cache, build} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				metricsErr = err
				metricsInitialized = true
				return metricsErr
			}
			switch existing := already.ExistingCollector.(type) {
			case *prometheus.CounterVec:
				if collector == fetch {
					fetch = existing
				} else {
					cache = existing
				}
			case prometheus.Histogram:
				build = existing
			default:
				metricsErr = fmt.Errorf("production metrics: unexpected collector type %T", existing)
			}
		}
	}
	fetchCounter, cacheCounter, buildHistogram = fetch, cache, build
	metricsInitialized = true
	return metricsErr
}

// ObserveFetch counts one source fetch by outcome.
func ObserveFetch(source Source) {
	if fetchCounter == nil {
		return
	}
	fetchCounter.WithLabelValues(string(source)).Inc()
}

func observeCache(result string) {
	if cacheCounter == nil {
		return
	}
	cacheCounter.WithLabelValues(result).Inc()
}

func observeBuild(d time.Duration) {
	if buildHistogram == nil {
		return
	}
	buildHistogram.Observe(d.Seconds())
}

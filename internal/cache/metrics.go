package cache

import "github.com/prometheus/client_golang/prometheus"

// cacheMetrics holds Prometheus counters for cache operations. A nil
// *cacheMetrics is valid and records nothing.
type cacheMetrics struct {
	hits          prometheus.Counter
	misses        prometheus.Counter
	invalidations prometheus.Counter
}

func newCacheMetrics(reg prometheus.Registerer) (*cacheMetrics, error) {
	m := &cacheMetrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		}),
		invalidations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "docstore",
			Subsystem: "cache",
			Name:      "invalidations_total",
			Help:      "Total number of cache entries removed by invalidation",
		}),
	}
	for _, c := range []prometheus.Collector{m.hits, m.misses, m.invalidations} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *cacheMetrics) hit() {
	if m != nil {
		m.hits.Inc()
	}
}

func (m *cacheMetrics) miss() {
	if m != nil {
		m.misses.Inc()
	}
}

func (m *cacheMetrics) invalidated(n int) {
	if m != nil {
		m.invalidations.Add(float64(n))
	}
}

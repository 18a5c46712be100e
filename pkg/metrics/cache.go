package metrics

import "github.com/prometheus/client_golang/prometheus"

// CacheMetrics tracks read-path cache behavior per operation.
type CacheMetrics struct {
	hits   *prometheus.CounterVec
	misses *prometheus.CounterVec
	errors *prometheus.CounterVec
}

// NewCacheMetrics registers the cache counters on the provided registerer.
func NewCacheMetrics(reg prometheus.Registerer) *CacheMetrics {
	if reg == nil {
		return &CacheMetrics{}
	}
	hits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Cache hits per operation.",
	}, []string{"operation"})
	misses := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Cache misses per operation, including expired and degraded reads.",
	}, []string{"operation"})
	errors := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cache_backend_errors_total",
		Help: "Cache backend failures that were downgraded to misses.",
	}, []string{"operation"})
	reg.MustRegister(hits, misses, errors)
	return &CacheMetrics{hits: hits, misses: misses, errors: errors}
}

// IncHit increments the hit counter for the named operation.
func (c *CacheMetrics) IncHit(operation string) {
	if c == nil || c.hits == nil {
		return
	}
	c.hits.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncMiss increments the miss counter for the named operation.
func (c *CacheMetrics) IncMiss(operation string) {
	if c == nil || c.misses == nil {
		return
	}
	c.misses.WithLabelValues(normalizeLabel(operation)).Inc()
}

// IncError increments the backend-error counter for the named operation.
func (c *CacheMetrics) IncError(operation string) {
	if c == nil || c.errors == nil {
		return
	}
	c.errors.WithLabelValues(normalizeLabel(operation)).Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CacheCollector implements module.CacheMetrics.
type CacheCollector struct {
	entries  *prometheus.GaugeVec
	hits     *prometheus.CounterVec
	notFound *prometheus.CounterVec
	misses   *prometheus.CounterVec
}

func NewCacheCollector(registerer prometheus.Registerer, namespace string) *CacheCollector {
	factory := promauto.With(registerer)
	return &CacheCollector{
		entries: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: subsystemCache,
			Name:      "entries_total",
			Help:      "the number of entries in the cache",
		}, []string{LabelResource}),
		hits: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCache,
			Name:      "hits_total",
			Help:      "the number of hits for the cache",
		}, []string{LabelResource}),
		notFound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCache,
			Name:      "notfounds_total",
			Help:      "the number of times the queried item was not found in either cache or database",
		}, []string{LabelResource}),
		misses: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystemCache,
			Name:      "misses_total",
			Help:      "the number of times the queried item was not found in the cache but found in the database",
		}, []string{LabelResource}),
	}
}

func (c *CacheCollector) CacheEntries(resource string, entries uint) {
	c.entries.With(prometheus.Labels{LabelResource: resource}).Set(float64(entries))
}

func (c *CacheCollector) CacheHit(resource string) {
	c.hits.With(prometheus.Labels{LabelResource: resource}).Inc()
}

func (c *CacheCollector) CacheNotFound(resource string) {
	c.notFound.With(prometheus.Labels{LabelResource: resource}).Inc()
}

func (c *CacheCollector) CacheMiss(resource string) {
	c.misses.With(prometheus.Labels{LabelResource: resource}).Inc()
}

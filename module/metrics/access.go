package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/onflow/contract-client/module"
)

var _ module.RateLimitMetrics = (*AccessCollector)(nil)

type AccessCollector struct {
	rateLimited *prometheus.CounterVec
}

func NewAccessCollector(registerer prometheus.Registerer) *AccessCollector {
	return &AccessCollector{
		rateLimited: promauto.With(registerer).NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceAccess,
			Subsystem: subsystemRateLimit,
			Name:      "rejected_requests_total",
			Help:      "the number of requests rejected by the rate limiter",
		}, []string{LabelMethod}),
	}
}

func (c *AccessCollector) RequestRateLimited(method string) {
	c.rateLimited.With(prometheus.Labels{LabelMethod: method}).Inc()
}

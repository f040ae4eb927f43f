package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/onflow/contract-client/module"
)

var _ module.ClientMetrics = (*ClientCollector)(nil)

type ClientCollector struct {
	*CacheCollector
	compileDuration prometheus.Histogram
	deployed        *prometheus.CounterVec
	submitted       prometheus.Counter
	failed          *prometheus.CounterVec
	syncDuration    prometheus.Histogram
	syncHeight      prometheus.Gauge
	syncUpdated     prometheus.Counter
	retries         *prometheus.CounterVec
}

func NewClientCollector(registerer prometheus.Registerer) *ClientCollector {
	factory := promauto.With(registerer)
	return &ClientCollector{
		CacheCollector: NewCacheCollector(registerer, namespaceClient),
		compileDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemCompiler,
			Name:      "compile_duration_seconds",
			Help:      "the duration of assembling a contract library",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		deployed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemTransactions,
			Name:      "accounts_deployed_total",
			Help:      "the number of accounts registered on the ledger",
		}, []string{LabelAccountType}),
		submitted: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemTransactions,
			Name:      "submitted_total",
			Help:      "the number of transactions accepted by the ledger",
		}),
		failed: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemTransactions,
			Name:      "failed_total",
			Help:      "the number of transactions that could not be submitted or were rejected",
		}, []string{LabelErrorKind}),
		syncDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemSync,
			Name:      "duration_seconds",
			Help:      "the duration of a state sync round trip",
			Buckets:   prometheus.DefBuckets,
		}),
		syncHeight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemSync,
			Name:      "block_height",
			Help:      "the ledger height the local view is synced to",
		}),
		syncUpdated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemSync,
			Name:      "updated_accounts_total",
			Help:      "the number of account states refreshed by syncs",
		}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceClient,
			Subsystem: subsystemTransactions,
			Name:      "request_retries_total",
			Help:      "the number of retried ledger requests",
		}, []string{LabelMethod}),
	}
}

func (c *ClientCollector) ContractCompiled(duration time.Duration) {
	c.compileDuration.Observe(duration.Seconds())
}

func (c *ClientCollector) AccountDeployed(accountType string) {
	c.deployed.With(prometheus.Labels{LabelAccountType: accountType}).Inc()
}

func (c *ClientCollector) TransactionSubmitted() {
	c.submitted.Inc()
}

func (c *ClientCollector) TransactionFailed(kind string) {
	c.failed.With(prometheus.Labels{LabelErrorKind: kind}).Inc()
}

func (c *ClientCollector) StateSynced(height uint64, updatedAccounts int, duration time.Duration) {
	c.syncDuration.Observe(duration.Seconds())
	c.syncHeight.Set(float64(height))
	c.syncUpdated.Add(float64(updatedAccounts))
}

func (c *ClientCollector) RequestRetried(method string) {
	c.retries.With(prometheus.Labels{LabelMethod: method}).Inc()
}

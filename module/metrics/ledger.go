package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/onflow/contract-client/module"
)

var _ module.LedgerMetrics = (*LedgerCollector)(nil)
var _ module.CacheMetrics = (*LedgerCollector)(nil)

type LedgerCollector struct {
	*CacheCollector
	height          prometheus.Gauge
	blockTxs        prometheus.Histogram
	blockAccounts   prometheus.Counter
	execDuration    prometheus.Histogram
	execCycles      prometheus.Histogram
	reverted        *prometheus.CounterVec
	accountsCreated *prometheus.CounterVec
	syncs           prometheus.Counter
	syncAccounts    prometheus.Counter
}

func NewLedgerCollector(registerer prometheus.Registerer) *LedgerCollector {
	factory := promauto.With(registerer)
	return &LedgerCollector{
		CacheCollector: NewCacheCollector(registerer, namespaceLedger),
		height: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemBlocks,
			Name:      "latest_height",
			Help:      "the height of the latest committed block",
		}),
		blockTxs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemBlocks,
			Name:      "transactions_per_block",
			Help:      "the number of transactions committed per block",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		}),
		blockAccounts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemBlocks,
			Name:      "created_accounts_total",
			Help:      "the number of accounts created by committed blocks",
		}),
		execDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Name:      "transaction_duration_seconds",
			Help:      "the duration of executing a transaction",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		execCycles: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Name:      "transaction_cycles",
			Help:      "the number of vm cycles used by a transaction",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 11),
		}),
		reverted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemExecution,
			Name:      "reverted_transactions_total",
			Help:      "the number of rejected transactions",
		}, []string{LabelErrorCode}),
		accountsCreated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemAccounts,
			Name:      "created_total",
			Help:      "the number of registered accounts",
		}, []string{LabelAccountType}),
		syncs: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemAccounts,
			Name:      "sync_requests_total",
			Help:      "the number of answered sync requests",
		}),
		syncAccounts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespaceLedger,
			Subsystem: subsystemAccounts,
			Name:      "synced_accounts_total",
			Help:      "the number of account states returned by sync requests",
		}),
	}
}

func (c *LedgerCollector) BlockCommitted(height uint64, transactions int, accounts int) {
	c.height.Set(float64(height))
	c.blockTxs.Observe(float64(transactions))
	c.blockAccounts.Add(float64(accounts))
}

func (c *LedgerCollector) TransactionExecuted(duration time.Duration, cycles uint64) {
	c.execDuration.Observe(duration.Seconds())
	c.execCycles.Observe(float64(cycles))
}

func (c *LedgerCollector) TransactionReverted(code string) {
	c.reverted.With(prometheus.Labels{LabelErrorCode: code}).Inc()
}

func (c *LedgerCollector) AccountCreated(accountType string) {
	c.accountsCreated.With(prometheus.Labels{LabelAccountType: accountType}).Inc()
}

func (c *LedgerCollector) SyncServed(accounts int) {
	c.syncs.Inc()
	c.syncAccounts.Add(float64(accounts))
}

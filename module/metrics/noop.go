package metrics

import (
	"time"

	"github.com/onflow/contract-client/module"
)

type NoopCollector struct{}

var (
	_ module.ClientMetrics    = (*NoopCollector)(nil)
	_ module.LedgerMetrics    = (*NoopCollector)(nil)
	_ module.RateLimitMetrics = (*NoopCollector)(nil)
)

func NewNoopCollector() *NoopCollector {
	nc := &NoopCollector{}
	return nc
}

func (nc *NoopCollector) CacheEntries(resource string, entries uint)                     {}
func (nc *NoopCollector) CacheHit(resource string)                                       {}
func (nc *NoopCollector) CacheNotFound(resource string)                                  {}
func (nc *NoopCollector) CacheMiss(resource string)                                      {}
func (nc *NoopCollector) ContractCompiled(duration time.Duration)                        {}
func (nc *NoopCollector) AccountDeployed(accountType string)                             {}
func (nc *NoopCollector) TransactionSubmitted()                                          {}
func (nc *NoopCollector) TransactionFailed(kind string)                                  {}
func (nc *NoopCollector) StateSynced(height uint64, updated int, duration time.Duration) {}
func (nc *NoopCollector) RequestRetried(method string)                                   {}
func (nc *NoopCollector) BlockCommitted(height uint64, transactions int, accounts int)   {}
func (nc *NoopCollector) TransactionExecuted(duration time.Duration, cycles uint64)      {}
func (nc *NoopCollector) TransactionReverted(code string)                                {}
func (nc *NoopCollector) AccountCreated(accountType string)                              {}
func (nc *NoopCollector) SyncServed(accounts int)                                        {}
func (nc *NoopCollector) RequestRateLimited(method string)                               {}

package module

import (
	"time"
)

// CacheMetrics tracks the size and effectiveness of read-through caches.
type CacheMetrics interface {
	// CacheEntries report the total number of cached items
	CacheEntries(resource string, entries uint)
	// CacheHit report the number of times the queried item is found in the cache
	CacheHit(resource string)
	// CacheNotFound records the number of times the queried item was not found in either cache or database.
	CacheNotFound(resource string)
	// CacheMiss report the number of times the queried item is not found in the cache, but found in the database.
	CacheMiss(resource string)
}

// ClientMetrics covers the operations a ledger client performs on behalf of
// its caller.
type ClientMetrics interface {
	CacheMetrics

	// ContractCompiled records how long assembling a library took.
	ContractCompiled(duration time.Duration)
	// AccountDeployed counts accounts registered on the ledger, by account type.
	AccountDeployed(accountType string)
	// TransactionSubmitted counts submissions accepted by the ledger.
	TransactionSubmitted()
	// TransactionFailed counts submissions that failed, by error kind.
	TransactionFailed(kind string)
	// StateSynced records a completed sync with the ledger.
	StateSynced(height uint64, updatedAccounts int, duration time.Duration)
	// RequestRetried counts retried ledger requests, by method.
	RequestRetried(method string)
}

// LedgerMetrics covers block production and execution on the emulated ledger.
type LedgerMetrics interface {
	// BlockCommitted records the height and payload of a committed block.
	BlockCommitted(height uint64, transactions int, accounts int)
	// TransactionExecuted records the execution time and cycle count.
	TransactionExecuted(duration time.Duration, cycles uint64)
	// TransactionReverted counts rejected transactions, by error code.
	TransactionReverted(code string)
	// AccountCreated counts registered accounts, by account type.
	AccountCreated(accountType string)
	// SyncServed counts answered sync requests and the accounts returned.
	SyncServed(accounts int)
}

// RateLimitMetrics counts requests rejected by a rate limiter.
type RateLimitMetrics interface {
	RequestRateLimited(method string)
}

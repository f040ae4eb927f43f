package client

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module"
	"github.com/onflow/contract-client/module/metrics"
)

// libraryCache keeps the compiled libraries of contracts by contract id.
// An entry goes stale when a sync brings code whose commitment differs from
// the compiled library.
type libraryCache struct {
	libraries *lru.Cache[flow.AccountID, *assembly.Library]
	metrics   module.CacheMetrics
}

func newLibraryCache(size int, collector module.CacheMetrics) (*libraryCache, error) {
	libraries, err := lru.New[flow.AccountID, *assembly.Library](size)
	if err != nil {
		return nil, fmt.Errorf("could not create library cache: %w", err)
	}
	return &libraryCache{libraries: libraries, metrics: collector}, nil
}

func (c *libraryCache) get(id flow.AccountID) (*assembly.Library, bool) {
	lib, ok := c.libraries.Get(id)
	if ok {
		c.metrics.CacheHit(metrics.ResourceLibrary)
	} else {
		c.metrics.CacheMiss(metrics.ResourceLibrary)
	}
	return lib, ok
}

func (c *libraryCache) peek(id flow.AccountID) (*assembly.Library, bool) {
	return c.libraries.Peek(id)
}

func (c *libraryCache) insert(id flow.AccountID, lib *assembly.Library) {
	c.libraries.Add(id, lib)
	c.metrics.CacheEntries(metrics.ResourceLibrary, uint(c.libraries.Len()))
}

func (c *libraryCache) remove(id flow.AccountID) {
	c.libraries.Remove(id)
	c.metrics.CacheEntries(metrics.ResourceLibrary, uint(c.libraries.Len()))
}

// InvalidateLibrary drops the cached library of a contract. The next
// invocation recompiles it from the stored source.
func (c *Client) InvalidateLibrary(id flow.AccountID) {
	c.libraries.remove(id)
}

// invalidateChanged drops the cached libraries of updated accounts whose
// code commitment no longer matches the compiled library.
func (c *Client) invalidateChanged(updated []flow.AccountID) error {
	for _, id := range updated {
		lib, ok := c.libraries.peek(id)
		if !ok {
			continue
		}
		account, err := c.view.Account(id)
		if err != nil {
			return fmt.Errorf("could not read account %s: %w", id, err)
		}
		if account.Code.Commitment != lib.Digest {
			c.log.Info().Str("account_id", id.String()).Msg("contract code changed, dropping cached library")
			c.InvalidateLibrary(id)
		}
	}
	return nil
}

// library returns the compiled library of a contract, compiling it from the
// source stored when the contract was deployed if it is not cached.
func (c *Client) library(id flow.AccountID) (*assembly.Library, error) {
	lib, ok := c.libraries.get(id)
	if ok {
		return lib, nil
	}

	source, err := c.view.ContractSource(id)
	if err != nil {
		return nil, c.lookupError(id, err)
	}

	lib, err = c.compileLibrary(source.Path, source.Source)
	if err != nil {
		return nil, err
	}
	c.libraries.insert(id, lib)
	return lib, nil
}

// Package storage defines the interface for persisting the committed state
// of an emulated ledger.
package storage

import (
	"github.com/onflow/contract-client/model/flow"
)

// Store defines the storage layer for committed ledger state.
//
// This includes committed blocks, the latest state of every account with the
// height it last changed at, and transaction results. It does not include
// pending state.
//
// Implementations must return storage.ErrNotFound if a resource cannot be
// found, and must be safe for use by multiple goroutines.
type Store interface {
	GetLatestBlock() (*flow.Block, error)
	GetBlockByHeight(height uint64) (*flow.Block, error)
	GetBlockByID(id flow.Digest) (*flow.Block, error)

	// GetAccount returns the latest committed state of the account along with
	// the height of the block that last changed it.
	GetAccount(id flow.AccountID) (*flow.Account, uint64, error)

	GetTransactionResult(id flow.TransactionID) (*flow.TransactionResult, error)

	// CommitBlock atomically stores the block, the accounts it changed and the
	// results of its transactions.
	CommitBlock(block *flow.Block, accounts []*flow.Account, results []*flow.TransactionResult) error

	Close() error
}

package storage

import (
	"github.com/onflow/contract-client/model/flow"
)

// ContractSource is the assembly source a contract account was built from,
// kept so the contract's library can be rebuilt for linking.
type ContractSource struct {
	Path   string
	Source string
}

// LocalView is the client's persisted copy of the ledger state it follows.
//
// Tracked ids are recorded when an account is registered. Account states are
// only written by ApplySync, which also moves the synced height, so a reader
// never observes a partially applied sync.
type LocalView interface {
	// TrackAccount starts following the account.
	// Returns storage.ErrAlreadyExists if the id is tracked already.
	TrackAccount(id flow.AccountID) error

	// IsTracked returns true if the account is followed.
	IsTracked(id flow.AccountID) (bool, error)

	// TrackedAccounts lists every followed account id.
	TrackedAccounts() ([]flow.AccountID, error)

	// Account returns the last synced state of the account.
	// Returns storage.ErrNotFound if no sync has delivered the account yet.
	Account(id flow.AccountID) (*flow.Account, error)

	// SyncHeight returns the ledger height of the last applied sync, zero if
	// the view was never synced.
	SyncHeight() (uint64, error)

	// ApplySync stores every account of the update and the new height in a
	// single transaction. Updates for untracked accounts are ignored.
	ApplySync(update *flow.StateUpdate) ([]flow.AccountID, error)

	// StoreContractSource records the source a contract was built from.
	StoreContractSource(id flow.AccountID, source ContractSource) error

	// ContractSource returns the source a contract was built from.
	// Returns storage.ErrNotFound for unknown contracts.
	ContractSource(id flow.AccountID) (*ContractSource, error)
}

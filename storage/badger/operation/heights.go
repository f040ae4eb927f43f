package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/contract-client/model/flow"
)

// UpsertSyncHeight stores the height and block id of the last applied sync.
func UpsertSyncHeight(height uint64, blockID flow.Digest) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := upsert(makePrefix(codeSyncHeight), height)(tx)
		if err != nil {
			return err
		}
		return upsert(makePrefix(codeSyncBlock), blockID)(tx)
	}
}

// RetrieveSyncHeight reads the height of the last applied sync.
// Returns storage.ErrNotFound if the view was never synced.
func RetrieveSyncHeight(height *uint64) func(*badger.Txn) error {
	return retrieve(makePrefix(codeSyncHeight), height)
}

// RetrieveSyncBlock reads the block id of the last applied sync.
func RetrieveSyncBlock(blockID *flow.Digest) func(*badger.Txn) error {
	return retrieve(makePrefix(codeSyncBlock), blockID)
}

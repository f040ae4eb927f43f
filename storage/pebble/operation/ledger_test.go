package operation

import (
	"testing"

	"github.com/cockroachdb/pebble"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/storage"
	"github.com/onflow/contract-client/utils/unittest"
)

func TestBlocks(t *testing.T) {
	unittest.RunWithPebbleDB(t, func(db *pebble.DB) {
		block := unittest.BlockFixture(3)

		var found bool
		require.NoError(t, HasLatestHeight(&found)(db))
		assert.False(t, found)

		require.NoError(t, InsertBlock(block)(db))
		require.NoError(t, UpdateLatestHeight(3)(db))

		var actual flow.Block
		require.NoError(t, RetrieveBlockByHeight(3, &actual)(db))
		assert.Equal(t, block.ID(), actual.ID())
		assert.Equal(t, block.Transactions, actual.Transactions)

		var height uint64
		require.NoError(t, LookupBlockHeight(block.ID(), &height)(db))
		assert.Equal(t, uint64(3), height)

		require.NoError(t, RetrieveLatestHeight(&height)(db))
		assert.Equal(t, uint64(3), height)
		require.NoError(t, HasLatestHeight(&found)(db))
		assert.True(t, found)

		err := RetrieveBlockByHeight(4, &actual)(db)
		require.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestAccountsAndResults(t *testing.T) {
	unittest.RunWithPebbleDB(t, func(db *pebble.DB) {
		account := unittest.AccountFixture(unittest.WithNonce(2))

		batch := db.NewBatch()
		require.NoError(t, UpsertAccount(account, 5)(batch))
		result := unittest.TransactionResultFixture(flow.TransactionStatusCommitted)
		require.NoError(t, InsertTransactionResult(result)(batch))

		// nothing is visible before the batch commits
		var record AccountRecord
		err := RetrieveAccount(account.ID, &record)(db)
		require.ErrorIs(t, err, storage.ErrNotFound)

		require.NoError(t, batch.Commit(pebble.Sync))

		require.NoError(t, RetrieveAccount(account.ID, &record)(db))
		assert.Equal(t, *account, record.Account)
		assert.Equal(t, uint64(5), record.Height)

		var actual flow.TransactionResult
		require.NoError(t, RetrieveTransactionResult(result.TransactionID, &actual)(db))
		assert.Equal(t, *result, actual)
	})
}

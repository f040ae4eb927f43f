package pebble_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/storage"
	"github.com/onflow/contract-client/storage/pebble"
	"github.com/onflow/contract-client/utils/unittest"
)

func TestLedgerStore(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		db, err := pebble.OpenDefaultPebbleDB(dir)
		require.NoError(t, err)
		store, err := pebble.NewLedgerStore(metrics.NewNoopCollector(), db)
		require.NoError(t, err)

		_, err = store.GetLatestBlock()
		require.ErrorIs(t, err, storage.ErrNotFound)

		genesis := flow.Genesis()
		account := unittest.AccountFixture()
		require.NoError(t, store.CommitBlock(genesis, []*flow.Account{account}, nil))

		t.Run("blocks must extend the chain", func(t *testing.T) {
			err := store.CommitBlock(unittest.BlockFixture(5), nil, nil)
			require.ErrorIs(t, err, storage.ErrDataMismatch)
		})

		block := unittest.BlockFixture(1)
		block.Header.ParentID = genesis.ID()
		updated := account.Copy()
		updated.Nonce = 1
		result := unittest.TransactionResultFixture(flow.TransactionStatusCommitted)
		require.NoError(t, store.CommitBlock(block, []*flow.Account{updated}, []*flow.TransactionResult{result}))

		latest, err := store.GetLatestBlock()
		require.NoError(t, err)
		assert.Equal(t, block.ID(), latest.ID())

		byID, err := store.GetBlockByID(genesis.ID())
		require.NoError(t, err)
		assert.Equal(t, uint64(0), byID.Header.Height)

		actual, height, err := store.GetAccount(account.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), height)
		assert.Equal(t, uint64(1), actual.Nonce)

		_, _, err = store.GetAccount(unittest.AccountIDFixture())
		require.ErrorIs(t, err, storage.ErrNotFound)

		r, err := store.GetTransactionResult(result.TransactionID)
		require.NoError(t, err)
		assert.Equal(t, result.Cycles, r.Cycles)

		require.NoError(t, store.Close())

		// state survives a restart
		db, err = pebble.OpenDefaultPebbleDB(dir)
		require.NoError(t, err)
		store, err = pebble.NewLedgerStore(metrics.NewNoopCollector(), db)
		require.NoError(t, err)
		defer store.Close()

		actual, height, err = store.GetAccount(account.ID)
		require.NoError(t, err)
		assert.Equal(t, uint64(1), height)
		assert.Equal(t, updated, actual)
	})
}

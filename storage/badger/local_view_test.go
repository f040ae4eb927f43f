package badger_test

import (
	"testing"

	"github.com/dgraph-io/badger/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/storage"
	bstorage "github.com/onflow/contract-client/storage/badger"
	"github.com/onflow/contract-client/utils/unittest"
)

func TestLocalViewTracking(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		view := bstorage.NewLocalView(metrics.NewNoopCollector(), db)
		id := unittest.AccountIDFixture()

		require.NoError(t, view.TrackAccount(id))
		err := view.TrackAccount(id)
		require.ErrorIs(t, err, storage.ErrAlreadyExists)

		tracked, err := view.IsTracked(id)
		require.NoError(t, err)
		assert.True(t, tracked)

		ids, err := view.TrackedAccounts()
		require.NoError(t, err)
		assert.Equal(t, []flow.AccountID{id}, ids)
	})
}

func TestLocalViewSync(t *testing.T) {
	unittest.RunWithBadgerDB(t, func(db *badger.DB) {
		view := bstorage.NewLocalView(metrics.NewNoopCollector(), db)
		account := unittest.AccountFixture()
		untracked := unittest.AccountFixture()

		t.Run("reading before sync is not found", func(t *testing.T) {
			require.NoError(t, view.TrackAccount(account.ID))

			_, err := view.Account(account.ID)
			require.ErrorIs(t, err, storage.ErrNotFound)

			height, err := view.SyncHeight()
			require.NoError(t, err)
			assert.Equal(t, uint64(0), height)
		})

		t.Run("sync stores tracked accounts and height", func(t *testing.T) {
			updated, err := view.ApplySync(&flow.StateUpdate{
				BlockHeight: 2,
				BlockID:     unittest.DigestFixture(),
				Accounts:    []*flow.Account{account, untracked},
			})
			require.NoError(t, err)
			assert.Equal(t, []flow.AccountID{account.ID}, updated)

			actual, err := view.Account(account.ID)
			require.NoError(t, err)
			assert.Equal(t, account, actual)

			_, err = view.Account(untracked.ID)
			require.ErrorIs(t, err, storage.ErrNotFound)

			height, err := view.SyncHeight()
			require.NoError(t, err)
			assert.Equal(t, uint64(2), height)
		})

		t.Run("reads are idempotent and isolated", func(t *testing.T) {
			first, err := view.Account(account.ID)
			require.NoError(t, err)
			first.Storage[0] = flow.EmptyWord

			second, err := view.Account(account.ID)
			require.NoError(t, err)
			assert.Equal(t, account.Storage, second.Storage)
		})

		t.Run("stale update leaves the view unchanged", func(t *testing.T) {
			changed := account.Copy()
			changed.Nonce = 9
			_, err := view.ApplySync(&flow.StateUpdate{BlockHeight: 1, Accounts: []*flow.Account{changed}})
			require.ErrorIs(t, err, storage.ErrDataMismatch)

			actual, err := view.Account(account.ID)
			require.NoError(t, err)
			assert.Equal(t, account.Nonce, actual.Nonce)

			height, err := view.SyncHeight()
			require.NoError(t, err)
			assert.Equal(t, uint64(2), height)
		})

		t.Run("empty update only moves the height", func(t *testing.T) {
			updated, err := view.ApplySync(&flow.StateUpdate{BlockHeight: 5})
			require.NoError(t, err)
			assert.Empty(t, updated)

			height, err := view.SyncHeight()
			require.NoError(t, err)
			assert.Equal(t, uint64(5), height)
		})
	})
}

func TestLocalViewReopen(t *testing.T) {
	unittest.RunWithTempDir(t, func(dir string) {
		account := unittest.AccountFixture()

		db, err := bstorage.OpenDB(dir, unittest.Logger())
		require.NoError(t, err)
		view := bstorage.NewLocalView(metrics.NewNoopCollector(), db)
		require.NoError(t, view.TrackAccount(account.ID))
		_, err = view.ApplySync(&flow.StateUpdate{BlockHeight: 1, Accounts: []*flow.Account{account}})
		require.NoError(t, err)
		require.NoError(t, view.StoreContractSource(account.ID, storage.ContractSource{Path: "a::b", Source: "src"}))
		require.NoError(t, db.Close())

		db, err = bstorage.OpenDB(dir, unittest.Logger())
		require.NoError(t, err)
		defer db.Close()
		view = bstorage.NewLocalView(metrics.NewNoopCollector(), db)

		actual, err := view.Account(account.ID)
		require.NoError(t, err)
		assert.Equal(t, account, actual)

		source, err := view.ContractSource(account.ID)
		require.NoError(t, err)
		assert.Equal(t, "src", source.Source)
	})
}

package badger

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/storage"
	"github.com/onflow/contract-client/storage/badger/operation"
)

// LocalView implements storage.LocalView on top of badger.
type LocalView struct {
	db       *badger.DB
	accounts *Cache[flow.AccountID, *flow.Account]
}

var _ storage.LocalView = (*LocalView)(nil)

func NewLocalView(collector module.CacheMetrics, db *badger.DB) *LocalView {
	retrieve := func(id flow.AccountID) (*flow.Account, error) {
		var account flow.Account
		err := db.View(operation.RetrieveAccount(id, &account))
		return &account, err
	}

	return &LocalView{
		db: db,
		accounts: newCache[flow.AccountID, *flow.Account](collector, metrics.ResourceAccount,
			withLimit[flow.AccountID, *flow.Account](256),
			withRetrieve[flow.AccountID, *flow.Account](retrieve),
		),
	}
}

func (v *LocalView) TrackAccount(id flow.AccountID) error {
	err := operation.RetryOnConflict(v.db.Update, operation.InsertTrackedAccount(id))
	if err != nil {
		return fmt.Errorf("could not track account %s: %w", id, operation.CheckDiskFull(err))
	}
	return nil
}

func (v *LocalView) IsTracked(id flow.AccountID) (bool, error) {
	var tracked bool
	err := v.db.View(operation.CheckTrackedAccount(id, &tracked))
	if err != nil {
		return false, fmt.Errorf("could not check tracked account %s: %w", id, err)
	}
	return tracked, nil
}

func (v *LocalView) TrackedAccounts() ([]flow.AccountID, error) {
	var ids []flow.AccountID
	err := v.db.View(operation.LookupTrackedAccounts(&ids))
	if err != nil {
		return nil, fmt.Errorf("could not look up tracked accounts: %w", err)
	}
	return ids, nil
}

// Account returns a copy of the synced account state, so callers can not
// change the cached value.
func (v *LocalView) Account(id flow.AccountID) (*flow.Account, error) {
	account, err := v.accounts.Get(id)
	if err != nil {
		return nil, err
	}
	return account.Copy(), nil
}

func (v *LocalView) SyncHeight() (uint64, error) {
	var height uint64
	err := v.db.View(operation.RetrieveSyncHeight(&height))
	if errors.Is(err, storage.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("could not retrieve sync height: %w", err)
	}
	return height, nil
}

// ApplySync writes the update in one transaction. An update older than the
// current sync height is rejected with storage.ErrDataMismatch and leaves the
// view unchanged.
func (v *LocalView) ApplySync(update *flow.StateUpdate) ([]flow.AccountID, error) {
	var applied []*flow.Account

	err := operation.RetryOnConflict(v.db.Update, func(tx *badger.Txn) error {
		applied = applied[:0]

		var height uint64
		err := operation.RetrieveSyncHeight(&height)(tx)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("could not retrieve sync height: %w", err)
		}
		if update.BlockHeight < height {
			return fmt.Errorf("update at height %d is older than synced height %d: %w",
				update.BlockHeight, height, storage.ErrDataMismatch)
		}

		for _, account := range update.Accounts {
			var tracked bool
			err := operation.CheckTrackedAccount(account.ID, &tracked)(tx)
			if err != nil {
				return err
			}
			if !tracked {
				continue
			}

			err = operation.UpsertAccount(account)(tx)
			if err != nil {
				return fmt.Errorf("could not store account %s: %w", account.ID, err)
			}
			applied = append(applied, account)
		}

		return operation.UpsertSyncHeight(update.BlockHeight, update.BlockID)(tx)
	})
	if err != nil {
		return nil, fmt.Errorf("could not apply sync: %w", operation.CheckDiskFull(err))
	}

	ids := make([]flow.AccountID, 0, len(applied))
	for _, account := range applied {
		v.accounts.Insert(account.ID, account.Copy())
		ids = append(ids, account.ID)
	}
	return ids, nil
}

func (v *LocalView) StoreContractSource(id flow.AccountID, source storage.ContractSource) error {
	err := operation.RetryOnConflict(v.db.Update, operation.InsertContractSource(id, source))
	if err != nil {
		return fmt.Errorf("could not store contract source %s: %w", id, operation.CheckDiskFull(err))
	}
	return nil
}

func (v *LocalView) ContractSource(id flow.AccountID) (*storage.ContractSource, error) {
	var source storage.ContractSource
	err := v.db.View(operation.RetrieveContractSource(id, &source))
	if err != nil {
		return nil, fmt.Errorf("could not retrieve contract source %s: %w", id, err)
	}
	return &source, nil
}

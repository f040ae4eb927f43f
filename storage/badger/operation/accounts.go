package operation

import (
	"github.com/dgraph-io/badger/v2"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/storage"
)

// UpsertAccount stores the account state, replacing any previous state.
func UpsertAccount(account *flow.Account) func(*badger.Txn) error {
	return upsert(makePrefix(codeAccount, account.ID), account)
}

// RetrieveAccount reads the account state.
// Returns storage.ErrNotFound if the account was never stored.
func RetrieveAccount(id flow.AccountID, account *flow.Account) func(*badger.Txn) error {
	return retrieve(makePrefix(codeAccount, id), account)
}

// InsertTrackedAccount marks the account as followed.
// Returns storage.ErrAlreadyExists if it is followed already.
func InsertTrackedAccount(id flow.AccountID) func(*badger.Txn) error {
	return insert(makePrefix(codeTrackedAccount, id), id)
}

// CheckTrackedAccount checks whether the account is followed.
func CheckTrackedAccount(id flow.AccountID, tracked *bool) func(*badger.Txn) error {
	return check(makePrefix(codeTrackedAccount, id), tracked)
}

// LookupTrackedAccounts lists every followed account, ordered by id.
func LookupTrackedAccounts(ids *[]flow.AccountID) func(*badger.Txn) error {
	*ids = make([]flow.AccountID, 0, len(*ids))
	iteration := func() (checkFunc, createFunc, handleFunc) {
		check := func(key []byte) bool {
			return true
		}
		var id flow.AccountID
		create := func() interface{} {
			return &id
		}
		handle := func() error {
			*ids = append(*ids, id)
			return nil
		}
		return check, create, handle
	}
	return traverse(makePrefix(codeTrackedAccount), iteration)
}

// RemoveTrackedAccount stops following the account and drops its state.
func RemoveTrackedAccount(id flow.AccountID) func(*badger.Txn) error {
	return func(tx *badger.Txn) error {
		err := remove(makePrefix(codeTrackedAccount, id))(tx)
		if err != nil {
			return err
		}
		return remove(makePrefix(codeAccount, id))(tx)
	}
}

// InsertContractSource records the source a contract was built from.
func InsertContractSource(id flow.AccountID, source storage.ContractSource) func(*badger.Txn) error {
	return insert(makePrefix(codeContractSource, id), source)
}

// RetrieveContractSource reads the source a contract was built from.
func RetrieveContractSource(id flow.AccountID, source *storage.ContractSource) func(*badger.Txn) error {
	return retrieve(makePrefix(codeContractSource, id), source)
}

package operation

import (
	"time"

	"github.com/cockroachdb/pebble"

	"github.com/onflow/contract-client/model/flow"
)

// AccountRecord is the stored form of an account: its state and the height
// of the block that last changed it.
type AccountRecord struct {
	Account flow.Account
	Height  uint64
}

// blockRecord stores the timestamp as unix nanoseconds so decoded blocks
// hash to the same id regardless of the local time zone.
type blockRecord struct {
	ParentID        flow.Digest
	Height          uint64
	Timestamp       int64
	Transactions    []flow.TransactionID
	CreatedAccounts []flow.AccountID
}

func InsertBlock(block *flow.Block) func(pebble.Writer) error {
	return func(w pebble.Writer) error {
		record := blockRecord{
			ParentID:        block.Header.ParentID,
			Height:          block.Header.Height,
			Timestamp:       block.Header.Timestamp.UnixNano(),
			Transactions:    block.Transactions,
			CreatedAccounts: block.CreatedAccounts,
		}
		err := put(makePrefix(codeBlock, block.Header.Height), record)(w)
		if err != nil {
			return err
		}
		return put(makePrefix(codeBlockIDToHeight, block.ID()), block.Header.Height)(w)
	}
}

func RetrieveBlockByHeight(height uint64, block *flow.Block) func(pebble.Reader) error {
	return func(r pebble.Reader) error {
		var record blockRecord
		err := get(makePrefix(codeBlock, height), &record)(r)
		if err != nil {
			return err
		}
		*block = flow.Block{
			Header: flow.Header{
				ParentID:  record.ParentID,
				Height:    record.Height,
				Timestamp: time.Unix(0, record.Timestamp).UTC(),
			},
			Transactions:    record.Transactions,
			CreatedAccounts: record.CreatedAccounts,
		}
		return nil
	}
}

func LookupBlockHeight(blockID flow.Digest, height *uint64) func(pebble.Reader) error {
	return get(makePrefix(codeBlockIDToHeight, blockID), height)
}

func UpdateLatestHeight(height uint64) func(pebble.Writer) error {
	return put(makePrefix(codeLatestHeight), height)
}

func RetrieveLatestHeight(height *uint64) func(pebble.Reader) error {
	return get(makePrefix(codeLatestHeight), height)
}

func HasLatestHeight(found *bool) func(pebble.Reader) error {
	return has(makePrefix(codeLatestHeight), found)
}

func UpsertAccount(account *flow.Account, height uint64) func(pebble.Writer) error {
	return put(makePrefix(codeAccount, account.ID), AccountRecord{Account: *account, Height: height})
}

func RetrieveAccount(id flow.AccountID, record *AccountRecord) func(pebble.Reader) error {
	return get(makePrefix(codeAccount, id), record)
}

func InsertTransactionResult(result *flow.TransactionResult) func(pebble.Writer) error {
	return put(makePrefix(codeTransactionResult, result.TransactionID), result)
}

func RetrieveTransactionResult(id flow.TransactionID, result *flow.TransactionResult) func(pebble.Reader) error {
	return get(makePrefix(codeTransactionResult, id), result)
}

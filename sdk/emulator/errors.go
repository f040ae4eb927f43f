package emulator

import (
	"fmt"

	"github.com/onflow/contract-client/model/flow"
)

// ErrBlockNotFound indicates that a block specified by height or ID could not be found.
type ErrBlockNotFound struct {
	BlockID *flow.Digest
	Height  uint64
}

func (e *ErrBlockNotFound) Error() string {
	if e.BlockID != nil {
		return fmt.Sprintf("block with ID %s cannot be found", e.BlockID)
	}

	return fmt.Sprintf("block at height %d cannot be found", e.Height)
}

// ErrTransactionNotFound indicates that a transaction specified by ID could not be found.
type ErrTransactionNotFound struct {
	ID flow.TransactionID
}

func (e *ErrTransactionNotFound) Error() string {
	return fmt.Sprintf("transaction with ID %s cannot be found", e.ID)
}

// ErrAccountNotFound indicates that an account specified by ID could not be found.
type ErrAccountNotFound struct {
	ID flow.AccountID
}

func (e *ErrAccountNotFound) Error() string {
	return fmt.Sprintf("account with ID %s cannot be found", e.ID)
}

// ErrDuplicateAccount indicates that an account with the same ID is already
// registered.
type ErrDuplicateAccount struct {
	ID flow.AccountID
}

func (e *ErrDuplicateAccount) Error() string {
	return fmt.Sprintf("account with ID %s is already registered", e.ID)
}

// ErrInvalidAccount indicates that a registered account is malformed.
type ErrInvalidAccount struct {
	ID     flow.AccountID
	Reason string
}

func (e *ErrInvalidAccount) Error() string {
	return fmt.Sprintf("account %s is invalid: %s", e.ID, e.Reason)
}

// ErrDuplicateTransaction indicates that a transaction has already been submitted.
type ErrDuplicateTransaction struct {
	ID flow.TransactionID
}

func (e *ErrDuplicateTransaction) Error() string {
	return fmt.Sprintf("transaction with ID %s has already been submitted", e.ID)
}

// ErrInvalidTransaction indicates that a submitted transaction is malformed.
type ErrInvalidTransaction struct {
	ID     flow.TransactionID
	Reason string
}

func (e *ErrInvalidTransaction) Error() string {
	return fmt.Sprintf("transaction with ID %s is invalid: %s", e.ID, e.Reason)
}

// ErrPendingBlockFull indicates that no more transactions fit into the
// pending block until it is committed.
type ErrPendingBlockFull struct {
	Height uint64
}

func (e *ErrPendingBlockFull) Error() string {
	return fmt.Sprintf("pending block at height %d is full", e.Height)
}

// ErrStorage indicates that an error occurred in the storage provider.
type ErrStorage struct {
	inner error
}

func (e *ErrStorage) Error() string {
	return fmt.Sprintf("storage failure: %v", e.inner)
}

func (e *ErrStorage) Unwrap() error {
	return e.inner
}

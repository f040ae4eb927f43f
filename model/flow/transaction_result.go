package flow

import (
	"fmt"
)

// TransactionResult is the outcome of executing a transaction on the ledger.
type TransactionResult struct {
	// TransactionID is the ID of the transaction this result belongs to.
	TransactionID TransactionID
	Status        TransactionStatus
	// BlockHeight is the height of the block the transaction was committed
	// in. Zero while pending.
	BlockHeight uint64
	// ErrorMessage contains the error message of a reverted transaction.
	ErrorMessage string
	// Cycles is the number of VM instructions executed.
	Cycles uint64
}

// String returns the string representation of this result.
func (t TransactionResult) String() string {
	return fmt.Sprintf("Transaction ID: %s, Status: %s, Error Message: %s", t.TransactionID, t.Status, t.ErrorMessage)
}

// Succeeded returns true if the transaction executed without errors.
func (t TransactionResult) Succeeded() bool {
	return t.Status == TransactionStatusCommitted && t.ErrorMessage == ""
}

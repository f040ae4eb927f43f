package fvm

import (
	"github.com/onflow/contract-client/fvm/errors"
)

// TransactionSequenceNumberChecker rejects transactions built against a
// stale nonce and increments the nonce of the target account.
type TransactionSequenceNumberChecker struct{}

func NewTransactionSequenceNumberChecker() *TransactionSequenceNumberChecker {
	return &TransactionSequenceNumberChecker{}
}

func (c *TransactionSequenceNumberChecker) Process(
	_ *VirtualMachine,
	_ Context,
	proc *TransactionProcedure,
) error {
	account := proc.Account
	if proc.Transaction.Nonce != account.Nonce {
		return errors.NewInvalidNonceErrorf(account.ID, account.Nonce, proc.Transaction.Nonce)
	}
	account.Nonce++
	return nil
}

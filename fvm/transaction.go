package fvm

import (
	"github.com/onflow/contract-client/model/flow"
)

func Transaction(tx *flow.Transaction) *TransactionProcedure {
	return &TransactionProcedure{
		ID:          tx.ID(),
		Transaction: tx,
	}
}

type TransactionProcessor interface {
	Process(*VirtualMachine, Context, *TransactionProcedure) error
}

type TransactionProcedure struct {
	ID          flow.TransactionID
	Transaction *flow.Transaction
	// Account holds the target account state. After a successful run it is
	// the updated state to commit; it is nil when the transaction failed.
	Account *flow.Account
	Cycles  uint64
	Err     error
}

func (proc *TransactionProcedure) Run(vm *VirtualMachine, ctx Context, accounts Accounts) error {
	account, err := vm.GetAccount(proc.Transaction.AccountID, accounts)
	vmErr, fatalErr := handleError(err)
	if fatalErr != nil {
		return fatalErr
	}
	if vmErr != nil {
		proc.Err = vmErr
		return nil
	}
	proc.Account = account.Copy()

	for _, p := range ctx.TransactionProcessors {
		err := p.Process(vm, ctx, proc)
		vmErr, fatalErr := handleError(err)
		if fatalErr != nil {
			return fatalErr
		}

		if vmErr != nil {
			proc.Err = vmErr
			proc.Account = nil
			return nil
		}
	}

	return nil
}

package fvm

import (
	stdErrors "errors"
	"fmt"

	"github.com/onflow/contract-client/fvm/errors"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/storage"
)

// An Procedure is an operation that can be executed by the virtual machine.
type Procedure interface {
	Run(vm *VirtualMachine, ctx Context, accounts Accounts) error
}

// Accounts is the read access the virtual machine has to ledger state.
// GetAccount returns storage.ErrNotFound for unknown accounts.
type Accounts interface {
	GetAccount(id flow.AccountID) (*flow.Account, error)
}

// A VirtualMachine executes transaction scripts against account state.
type VirtualMachine struct{}

// NewVirtualMachine creates a new virtual machine instance.
func NewVirtualMachine() *VirtualMachine {
	return &VirtualMachine{}
}

// Run runs a procedure against a view of the ledger state. Execution errors
// are recorded on the procedure; the returned error is only set for fatal
// errors.
func (vm *VirtualMachine) Run(ctx Context, proc Procedure, accounts Accounts) error {
	return proc.Run(vm, ctx, accounts)
}

// GetAccount returns the account with the given id or an error if none exists.
func (vm *VirtualMachine) GetAccount(id flow.AccountID, accounts Accounts) (*flow.Account, error) {
	account, err := accounts.GetAccount(id)
	if stdErrors.Is(err, storage.ErrNotFound) {
		return nil, errors.NewAccountNotFoundError(id)
	}
	if err != nil {
		return nil, fmt.Errorf("could not get account %s: %w", id, err)
	}
	return account, nil
}

// handleError splits an error into an execution error, which is recorded on
// the procedure, and a fatal error.
func handleError(err error) (vmErr error, fatalErr error) {
	if err == nil {
		return nil, nil
	}
	var coded errors.CodedError
	if stdErrors.As(err, &coded) {
		return err, nil
	}
	return nil, err
}

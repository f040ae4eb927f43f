package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/model/flow"
)

// TransportError is returned when a ledger request failed or timed out. The
// request may be retried.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// CompileError is returned when contract or script source does not assemble.
// The source has to be fixed.
type CompileError struct {
	Err error
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("compile error: %v", e.Err)
}

func (e *CompileError) Unwrap() error {
	return e.Err
}

// DuplicateAccountError is returned when an account id is already known
// locally or on the ledger. The caller must regenerate the seed.
type DuplicateAccountError struct {
	ID flow.AccountID
}

func (e *DuplicateAccountError) Error() string {
	return fmt.Sprintf("account %s already exists", e.ID)
}

// AccountNotFoundError is returned when an account is unknown to the local
// view or to the ledger. Reads may succeed after a sync.
type AccountNotFoundError struct {
	ID flow.AccountID
}

func (e *AccountNotFoundError) Error() string {
	return fmt.Sprintf("account %s not found", e.ID)
}

// ExecutionError is returned when the ledger rejected or reverted a
// transaction. The transaction had no effect.
type ExecutionError struct {
	TransactionID flow.TransactionID
	Message       string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("transaction %s failed: %s", e.TransactionID, e.Message)
}

// SlotIndexError is returned when reading a storage slot the account does
// not declare.
type SlotIndexError struct {
	ID    flow.AccountID
	Index int
	Slots int
}

func (e *SlotIndexError) Error() string {
	return fmt.Sprintf("account %s has %d storage slot(s), cannot read slot %d", e.ID, e.Slots, e.Index)
}

func IsTransportError(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}

func IsCompileError(err error) bool {
	var target *CompileError
	return errors.As(err, &target)
}

func IsDuplicateAccountError(err error) bool {
	var target *DuplicateAccountError
	return errors.As(err, &target)
}

func IsAccountNotFoundError(err error) bool {
	var target *AccountNotFoundError
	return errors.As(err, &target)
}

func IsExecutionError(err error) bool {
	var target *ExecutionError
	return errors.As(err, &target)
}

func IsSlotIndexError(err error) bool {
	var target *SlotIndexError
	return errors.As(err, &target)
}

// IsRetryable returns true if repeating the failed operation may succeed.
// Only transport failures are retryable.
func IsRetryable(err error) bool {
	return IsTransportError(err)
}

// convertRPCError maps a ledger error to the client error taxonomy. account is
// the account the request was about.
func convertRPCError(op string, account flow.AccountID, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &TransportError{Op: op, Err: err}
	}

	st, ok := status.FromError(err)
	if !ok {
		return &TransportError{Op: op, Err: err}
	}

	switch st.Code() {
	case codes.NotFound:
		return &AccountNotFoundError{ID: account}
	case codes.AlreadyExists:
		return &DuplicateAccountError{ID: account}
	case codes.Unavailable, codes.DeadlineExceeded, codes.Canceled,
		codes.ResourceExhausted, codes.Aborted, codes.Unknown:
		return &TransportError{Op: op, Err: err}
	default:
		return fmt.Errorf("ledger rejected %s: %w", op, err)
	}
}

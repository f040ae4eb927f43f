package errors

import (
	"github.com/onflow/contract-client/model/flow"
)

func NewStackUnderflowError(op string, need, have int) CodedError {
	return NewCodedError(
		ErrCodeStackUnderflowError,
		"%s needs %d element(s) on the stack, found %d",
		op, need, have)
}

func IsStackUnderflowError(err error) bool {
	return HasErrorCode(err, ErrCodeStackUnderflowError)
}

func NewAssertionFailedError(line int, value flow.Felt) CodedError {
	return NewCodedError(
		ErrCodeAssertionFailedError,
		"assertion failed at line %d: expected 1, got %s",
		line, value)
}

func IsAssertionFailedError(err error) bool {
	return HasErrorCode(err, ErrCodeAssertionFailedError)
}

func NewWitnessKeyNotFoundError(key flow.Word) CodedError {
	return NewCodedError(
		ErrCodeWitnessKeyNotFoundError,
		"no witness value under key %s",
		key)
}

func IsWitnessKeyNotFoundError(err error) bool {
	return HasErrorCode(err, ErrCodeWitnessKeyNotFoundError)
}

// NewInvalidWitnessErrorf is returned when a witness value has the wrong
// shape for the instruction that consumes it.
func NewInvalidWitnessErrorf(key flow.Word, msg string, args ...interface{}) CodedError {
	return NewCodedError(
		ErrCodeInvalidWitnessError,
		"invalid witness value under key %s: "+msg,
		append([]interface{}{key}, args...)...)
}

func NewProcedureNotFoundError(account flow.AccountID, digest flow.Digest) CodedError {
	return NewCodedError(
		ErrCodeProcedureNotFoundError,
		"procedure %s is not exported by account %s",
		digest, account)
}

func IsProcedureNotFoundError(err error) bool {
	return HasErrorCode(err, ErrCodeProcedureNotFoundError)
}

// NewStorageAccessError is returned when storage is touched outside of a
// procedure call into the account code.
func NewStorageAccessError(op string) CodedError {
	return NewCodedError(
		ErrCodeStorageAccessError,
		"%s is only allowed inside an account procedure",
		op)
}

func NewComputationLimitExceededError(limit uint64) CodedError {
	return NewCodedError(
		ErrCodeComputationLimitExceededError,
		"computation exceeds limit (%d)",
		limit)
}

func IsComputationLimitExceededError(err error) bool {
	return HasErrorCode(err, ErrCodeComputationLimitExceededError)
}

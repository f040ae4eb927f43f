package errors

import (
	"github.com/onflow/contract-client/model/flow"
)

func NewAccountNotFoundError(id flow.AccountID) CodedError {
	return NewCodedError(
		ErrCodeAccountNotFoundError,
		"account not found for id %s",
		id)
}

// IsAccountNotFoundError returns true if error has this type
func IsAccountNotFoundError(err error) bool {
	return HasErrorCode(err, ErrCodeAccountNotFoundError)
}

// NewAccountAlreadyExistsError is returned when account creation fails
// because an account with the same id is already registered.
func NewAccountAlreadyExistsError(id flow.AccountID) CodedError {
	return NewCodedError(
		ErrCodeAccountAlreadyExistsError,
		"account with id %s already exists",
		id)
}

func IsAccountAlreadyExistsError(err error) bool {
	return HasErrorCode(err, ErrCodeAccountAlreadyExistsError)
}

// NewInvalidAccountIDErrorf is returned when an account id does not match the
// inputs it is supposed to be derived from.
func NewInvalidAccountIDErrorf(id flow.AccountID, msg string, args ...interface{}) CodedError {
	return NewCodedError(
		ErrCodeInvalidAccountIDError,
		"invalid account id (%s): "+msg,
		append([]interface{}{id}, args...)...)
}

func IsInvalidAccountIDError(err error) bool {
	return HasErrorCode(err, ErrCodeInvalidAccountIDError)
}

func NewStorageSlotError(err flow.SlotIndexOutOfBoundsError) CodedError {
	return WrapCodedError(ErrCodeStorageSlotError, err, "")
}

func IsStorageSlotError(err error) bool {
	return HasErrorCode(err, ErrCodeStorageSlotError)
}

package errors

import (
	"github.com/onflow/contract-client/model/flow"
)

// NewInvalidNonceErrorf indicates that the transaction was built against a
// stale view of the account.
func NewInvalidNonceErrorf(account flow.AccountID, expected, got uint64) CodedError {
	return NewCodedError(
		ErrCodeInvalidNonceError,
		"invalid nonce for account %s: expected %d, got %d",
		account, expected, got)
}

func IsInvalidNonceError(err error) bool {
	return HasErrorCode(err, ErrCodeInvalidNonceError)
}

// NewInvalidScriptErrorf indicates that the transaction script could not be
// decoded or does not match its digest.
func NewInvalidScriptErrorf(msg string, args ...interface{}) CodedError {
	return NewCodedError(
		ErrCodeInvalidScriptError,
		"transaction script is invalid: "+msg,
		args...)
}

func IsInvalidScriptError(err error) bool {
	return HasErrorCode(err, ErrCodeInvalidScriptError)
}

func NewMissingSignatureError(account flow.AccountID) CodedError {
	return NewCodedError(
		ErrCodeMissingSignatureError,
		"account %s requires a signature",
		account)
}

func NewInvalidSignatureError(account flow.AccountID, err error) CodedError {
	return WrapCodedError(
		ErrCodeInvalidSignatureError,
		err,
		"invalid signature for account %s",
		account)
}

// IsAuthorizationError returns true for missing and invalid signatures.
func IsAuthorizationError(err error) bool {
	return HasErrorCode(err, ErrCodeMissingSignatureError) ||
		HasErrorCode(err, ErrCodeInvalidSignatureError)
}

// NewInvalidArgumentErrorf indicates that a request carries invalid
// arguments.
func NewInvalidArgumentErrorf(msg string, args ...interface{}) CodedError {
	return NewCodedError(
		ErrCodeInvalidArgumentError,
		"arguments are invalid: ("+msg+")",
		args...)
}

func IsInvalidArgumentError(err error) bool {
	return HasErrorCode(err, ErrCodeInvalidArgumentError)
}

func NewOperationNotSupportedError(operation string) CodedError {
	return NewCodedError(
		ErrCodeOperationNotSupportedError,
		"operation (%s) is not supported in this environment",
		operation)
}

package errors

import "fmt"

type ErrorCode uint16

func (ec ErrorCode) String() string {
	return fmt.Sprintf("[Error Code: %d]", ec)
}

const (
	// tx validation errors 1000 - 1049
	ErrCodeInvalidNonceError          ErrorCode = 1001
	ErrCodeInvalidScriptError         ErrorCode = 1004
	ErrCodeInvalidSignatureError      ErrorCode = 1008
	ErrCodeMissingSignatureError      ErrorCode = 1009
	ErrCodeInvalidWitnessError        ErrorCode = 1010
	ErrCodeAccountAuthorizationError  ErrorCode = 1055
	ErrCodeInvalidArgumentError       ErrorCode = 1052
	ErrCodeOperationNotSupportedError ErrorCode = 1057

	// execution errors 1100 - 1200
	ErrCodeStackUnderflowError           ErrorCode = 1101
	ErrCodeAssertionFailedError          ErrorCode = 1102
	ErrCodeWitnessKeyNotFoundError       ErrorCode = 1103
	ErrCodeProcedureNotFoundError        ErrorCode = 1104
	ErrCodeStorageAccessError            ErrorCode = 1105
	ErrCodeComputationLimitExceededError ErrorCode = 1110

	// accounts errors 1200 - 1250
	ErrCodeAccountNotFoundError      ErrorCode = 1201
	ErrCodeAccountAlreadyExistsError ErrorCode = 1203
	ErrCodeInvalidAccountIDError     ErrorCode = 1204
	ErrCodeStorageSlotError          ErrorCode = 1205
)

package errors

import (
	stdErrors "errors"
	"fmt"
)

// CodedError is an error that carries a code so that it keeps its meaning
// after crossing a process boundary.
type CodedError struct {
	code ErrorCode
	err  error
}

// NewCodedError constructs a CodedError from a format string.
func NewCodedError(code ErrorCode, format string, args ...interface{}) CodedError {
	return CodedError{
		code: code,
		err:  fmt.Errorf(format, args...),
	}
}

// WrapCodedError attaches a code to an existing error.
func WrapCodedError(code ErrorCode, err error, prefixMsgFormat string, formatArguments ...interface{}) CodedError {
	if prefixMsgFormat != "" {
		msg := fmt.Sprintf(prefixMsgFormat, formatArguments...)
		err = fmt.Errorf("%s: %w", msg, err)
	}
	return CodedError{code: code, err: err}
}

func (err CodedError) Unwrap() error {
	return err.err
}

func (err CodedError) Error() string {
	return fmt.Sprintf("%v %v", err.code, err.err)
}

func (err CodedError) Code() ErrorCode {
	return err.code
}

// HasErrorCode returns true if any error in the chain carries the code.
func HasErrorCode(err error, code ErrorCode) bool {
	for err != nil {
		var coded CodedError
		if !stdErrors.As(err, &coded) {
			return false
		}
		if coded.code == code {
			return true
		}
		err = coded.err
	}
	return false
}

// Code returns the code of the outermost CodedError in the chain.
func Code(err error) (ErrorCode, bool) {
	var coded CodedError
	if stdErrors.As(err, &coded) {
		return coded.code, true
	}
	return 0, false
}

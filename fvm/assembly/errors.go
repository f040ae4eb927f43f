package assembly

import (
	"errors"
	"fmt"
)

// CompileError reports malformed assembly source.
type CompileError struct {
	// Source names the unit being compiled: a library path or "script".
	Source string
	Line   int
	Msg    string
}

func newCompileError(source string, line int, format string, args ...interface{}) *CompileError {
	return &CompileError{
		Source: source,
		Line:   line,
		Msg:    fmt.Sprintf(format, args...),
	}
}

func (e *CompileError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("could not compile %s: line %d: %s", e.Source, e.Line, e.Msg)
	}
	return fmt.Sprintf("could not compile %s: %s", e.Source, e.Msg)
}

// IsCompileError returns true if the error chain contains a CompileError.
func IsCompileError(err error) bool {
	var ce *CompileError
	return errors.As(err, &ce)
}

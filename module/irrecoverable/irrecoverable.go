package irrecoverable

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
)

// Signaler forwards irrecoverable errors to whoever owns the error channel,
// typically the component that started the worker.
type Signaler struct {
	errors chan<- error
}

func NewSignaler(errors chan<- error) *Signaler {
	return &Signaler{errors: errors}
}

// Throw reports err and terminates the calling goroutine.
func (s *Signaler) Throw(err error) {
	s.errors <- err
	runtime.Goexit()
}

// SignalerContext is a context.Context that can report irrecoverable errors.
type SignalerContext interface {
	context.Context
	Throw(err error)
	sealed()
}

type signalerCtx struct {
	context.Context
	signaler *Signaler
}

func (sc signalerCtx) sealed() {}

func (sc signalerCtx) Throw(err error) {
	sc.signaler.Throw(err)
}

// WithSignaler attaches the signaler to ctx.
func WithSignaler(ctx context.Context, sig *Signaler) SignalerContext {
	return signalerCtx{Context: ctx, signaler: sig}
}

// WithSignalerContext starts a worker context and returns the channel its
// irrecoverable errors are delivered on.
func WithSignalerContext(parent context.Context) (SignalerContext, <-chan error) {
	errs := make(chan error, 1)
	return WithSignaler(parent, NewSignaler(errs)), errs
}

// Throw reports err through ctx if it carries a signaler. Contexts without
// one have no place to deliver the error, so the process exits.
func Throw(ctx context.Context, err error) {
	if sctx, ok := ctx.(SignalerContext); ok {
		sctx.Throw(err)
	}
	log.Fatalf("irrecoverable error without signaler: %v", err)
}

type exception struct {
	err error
}

// NewException marks err as an unexpected failure. Callers must not branch on
// it; it is meant to abort the operation.
func NewException(err error) error {
	return exception{err: err}
}

// NewExceptionf is NewException with a formatted message.
func NewExceptionf(msg string, args ...interface{}) error {
	return exception{err: fmt.Errorf(msg, args...)}
}

func (e exception) Error() string {
	return fmt.Sprintf("[exception!] %s", e.err.Error())
}

func (e exception) Unwrap() error {
	return e.err
}

// IsException returns true if err or any error it wraps is an exception.
func IsException(err error) bool {
	var e exception
	return errors.As(err, &e)
}

package fvm

import (
	"github.com/rs/zerolog"
)

// DefaultComputationLimit is the default maximum number of instructions a
// transaction may execute.
const DefaultComputationLimit = 1 << 20

// DefaultMaxStackDepth is the default maximum operand stack size.
const DefaultMaxStackDepth = 1 << 12

// A Context defines a set of execution parameters used by the virtual machine.
type Context struct {
	ComputationLimit      uint64
	MaxStackDepth         int
	Logger                zerolog.Logger
	TransactionProcessors []TransactionProcessor
}

// NewContext initializes a new execution context with the provided options.
func NewContext(logger zerolog.Logger, opts ...Option) Context {
	return newContext(defaultContext(logger), opts...)
}

func newContext(ctx Context, opts ...Option) Context {
	for _, applyOption := range opts {
		ctx = applyOption(ctx)
	}
	return ctx
}

func defaultContext(logger zerolog.Logger) Context {
	return Context{
		ComputationLimit: DefaultComputationLimit,
		MaxStackDepth:    DefaultMaxStackDepth,
		Logger:           logger,
		TransactionProcessors: []TransactionProcessor{
			NewTransactionSignatureVerifier(),
			NewTransactionSequenceNumberChecker(),
			NewTransactionInvoker(logger),
		},
	}
}

// An Option sets a configuration parameter for a virtual machine context.
type Option func(ctx Context) Context

// WithComputationLimit sets the instruction limit for a transaction.
func WithComputationLimit(limit uint64) Option {
	return func(ctx Context) Context {
		ctx.ComputationLimit = limit
		return ctx
	}
}

// WithMaxStackDepth sets the maximum operand stack size.
func WithMaxStackDepth(depth int) Option {
	return func(ctx Context) Context {
		ctx.MaxStackDepth = depth
		return ctx
	}
}

// WithTransactionProcessors sets the processors run for each transaction.
func WithTransactionProcessors(processors ...TransactionProcessor) Option {
	return func(ctx Context) Context {
		ctx.TransactionProcessors = processors
		return ctx
	}
}

package fvm

import (
	"github.com/rs/zerolog"

	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/fvm/errors"
)

// TransactionInvoker runs the transaction script against the target account.
type TransactionInvoker struct {
	logger zerolog.Logger
}

func NewTransactionInvoker(logger zerolog.Logger) *TransactionInvoker {
	return &TransactionInvoker{
		logger: logger.With().Str("component", "transaction_invoker").Logger(),
	}
}

func (i *TransactionInvoker) Process(
	_ *VirtualMachine,
	ctx Context,
	proc *TransactionProcedure,
) error {
	program, err := assembly.DecodeProgram(proc.Transaction.Request.Script)
	if err != nil {
		return errors.WrapCodedError(errors.ErrCodeInvalidScriptError, err, "")
	}

	env := newEnvironment(proc.Account, proc.Transaction.Request.WitnessMap())
	interp := newInterpreter(ctx, env)
	err = interp.pushWord(proc.Transaction.Request.ScriptArg)
	if err != nil {
		return err
	}

	err = interp.run(program.Entry, false)
	proc.Cycles = interp.cycles
	if err != nil {
		i.logger.Debug().
			Err(err).
			Str("tx_id", proc.ID.String()).
			Uint64("cycles", interp.cycles).
			Msg("transaction script failed")
		return err
	}

	i.logger.Debug().
		Str("tx_id", proc.ID.String()).
		Uint64("cycles", interp.cycles).
		Msg("transaction script executed")
	return nil
}

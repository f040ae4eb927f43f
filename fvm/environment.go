package fvm

import (
	"fmt"

	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/fvm/errors"
	"github.com/onflow/contract-client/model/flow"
)

// environment is the host side of script execution: storage of the target
// account, the witness map and procedure lookup in the account code.
// Writes go to the account copy held by the procedure.
type environment struct {
	account   *flow.Account
	witness   flow.WitnessMap
	component *assembly.AccountComponent
}

func newEnvironment(account *flow.Account, witness flow.WitnessMap) *environment {
	return &environment{
		account: account,
		witness: witness,
	}
}

func (env *environment) getItem(index int) (flow.Word, error) {
	w, err := env.account.GetItem(index)
	if err != nil {
		return flow.EmptyWord, slotError(err)
	}
	return w, nil
}

func (env *environment) setItem(index int, value flow.Word) error {
	return slotError(env.account.SetItem(index, value))
}

func slotError(err error) error {
	if err == nil {
		return nil
	}
	if slotErr, ok := err.(flow.SlotIndexOutOfBoundsError); ok {
		return errors.NewStorageSlotError(slotErr)
	}
	return err
}

func (env *environment) witnessValue(key flow.Word) ([]flow.Felt, error) {
	v, ok := env.witness.Get(key)
	if !ok {
		return nil, errors.NewWitnessKeyNotFoundError(key)
	}
	return v, nil
}

// procedure resolves a procedure digest against the account code.
func (env *environment) procedure(digest flow.Digest) (assembly.Procedure, error) {
	if !env.account.Code.HasProcedure(digest) {
		return assembly.Procedure{}, errors.NewProcedureNotFoundError(env.account.ID, digest)
	}
	if env.component == nil {
		component, err := assembly.DecodeAccountComponent(env.account.Code.Component)
		if err != nil {
			return assembly.Procedure{}, fmt.Errorf("could not decode code of account %s: %w", env.account.ID, err)
		}
		env.component = component
	}
	proc, ok := env.component.Library.ProcedureByDigest(digest)
	if !ok {
		return assembly.Procedure{}, fmt.Errorf("account %s lists procedure %s missing from its code", env.account.ID, digest)
	}
	return proc, nil
}

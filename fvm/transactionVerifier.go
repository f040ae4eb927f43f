package fvm

import (
	"fmt"

	"github.com/onflow/contract-client/fvm/errors"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/keys"
)

// TransactionSignatureVerifier checks that transactions against
// authenticated accounts are signed by the account key.
type TransactionSignatureVerifier struct{}

func NewTransactionSignatureVerifier() *TransactionSignatureVerifier {
	return &TransactionSignatureVerifier{}
}

func (v *TransactionSignatureVerifier) Process(
	_ *VirtualMachine,
	_ Context,
	proc *TransactionProcedure,
) error {
	account := proc.Account
	switch account.Auth.Scheme {
	case flow.AuthSchemeNone:
		return nil
	case flow.AuthSchemeECDSAK256:
		if len(proc.Transaction.Signature) == 0 {
			return errors.NewMissingSignatureError(account.ID)
		}
		valid, err := keys.VerifySignature(account.Auth.PublicKey, proc.Transaction.Signature, proc.ID[:])
		if err != nil {
			return errors.NewInvalidSignatureError(account.ID, err)
		}
		if !valid {
			return errors.NewInvalidSignatureError(account.ID, fmt.Errorf("signature verification failed"))
		}
		return nil
	default:
		return errors.NewOperationNotSupportedError("auth scheme")
	}
}

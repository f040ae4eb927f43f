package client

import (
	"context"
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/sdk/keys"
)

// Invoke runs script against a deployed contract.
//
// The script is linked against the contract's library, so its calls resolve
// to the contract's procedures. operands are the public script argument,
// witness is the private witness map; entries under the same key keep the
// last value inserted. The local view is synced before returning, so the
// contract's storage can be read right after a successful call.
//
// Invoke returns an ExecutionError if the ledger reverted or rejected the
// transaction. A rejection, e.g. for a nonce another writer already used,
// syncs the view so a retry is built on the ledger's current nonce.
// A transaction still pending when Invoke returns can be waited for with
// AwaitTransaction.
func (c *Client) Invoke(
	ctx context.Context,
	contractID flow.AccountID,
	script string,
	operands flow.Word,
	witness flow.WitnessMap,
) (flow.TransactionID, error) {
	tx, err := c.buildTransaction(contractID, script, operands, witness)
	if err != nil {
		return flow.TransactionID{}, err
	}
	txID := tx.ID()

	log := c.log.With().
		Str("tx_id", txID.String()).
		Str("account_id", contractID.String()).
		Uint64("nonce", tx.Nonce).
		Logger()

	_, err = c.api.SubmitTransaction(ctx, tx)
	if err != nil {
		err = convertSubmitError(txID, contractID, err)
		c.metrics.TransactionFailed(errorKind(err))
		if IsExecutionError(err) {
			_, syncErr := c.Sync(ctx)
			if syncErr != nil {
				log.Warn().Err(syncErr).Msg("could not sync after rejected transaction")
			}
		}
		return flow.TransactionID{}, err
	}
	c.metrics.TransactionSubmitted()
	log.Debug().Msg("transaction submitted")

	_, err = c.Sync(ctx)
	if err != nil {
		return txID, err
	}

	result, err := c.api.GetTransactionResult(ctx, txID)
	if err != nil {
		return txID, convertRPCError("get transaction result", contractID, err)
	}
	if result.Status == flow.TransactionStatusReverted {
		c.metrics.TransactionFailed("execution")
		log.Warn().Str("error", result.ErrorMessage).Msg("transaction reverted")
		return txID, &ExecutionError{TransactionID: txID, Message: result.ErrorMessage}
	}

	log.Info().Str("status", result.Status.String()).Msg("transaction executed")
	return txID, nil
}

// buildTransaction links and assembles script and binds the request to the
// contract's current nonce from the local view.
func (c *Client) buildTransaction(contractID flow.AccountID, script string, operands flow.Word, witness flow.WitnessMap) (*flow.Transaction, error) {
	lib, err := c.library(contractID)
	if err != nil {
		return nil, err
	}

	assembler, err := c.assembler().WithDynamicLibrary(lib)
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	program, err := assembler.AssembleProgram(script)
	if err != nil {
		return nil, &CompileError{Err: err}
	}
	txScript, err := program.Script()
	if err != nil {
		return nil, fmt.Errorf("could not encode transaction script: %w", err)
	}

	request, err := flow.NewTransactionRequest().
		SetCustomScript(txScript).
		SetScriptArg(operands).
		ExtendWitnessMap(witness).
		Build()
	if err != nil {
		return nil, fmt.Errorf("could not build transaction request: %w", err)
	}

	account, err := c.view.Account(contractID)
	if err != nil {
		return nil, c.lookupError(contractID, err)
	}

	tx := flow.NewTransaction(contractID, account.Nonce, request)
	if !account.Auth.IsPermissionless() {
		err = c.sign(tx, account)
		if err != nil {
			return nil, err
		}
	}
	return tx, nil
}

// sign signs the transaction id with the account key from the keystore.
func (c *Client) sign(tx *flow.Transaction, account *flow.Account) error {
	pk, err := keys.DecodePublicKey(keys.KeyTypeECDSA_SECp256k1_SHA3_256, account.Auth.PublicKey)
	if err != nil {
		return fmt.Errorf("could not decode key of account %s: %w", account.ID, err)
	}
	sk, err := c.keystore.GetKey(pk)
	if err != nil {
		return fmt.Errorf("could not load key of account %s: %w", account.ID, err)
	}

	id := tx.ID()
	tx.Signature, err = sk.Sign(id[:])
	if err != nil {
		return fmt.Errorf("could not sign transaction %s: %w", id, err)
	}
	return nil
}

// convertSubmitError maps submission errors. The ledger answers a rejected
// transaction, e.g. a stale nonce or a duplicate, with InvalidArgument or
// AlreadyExists.
func convertSubmitError(txID flow.TransactionID, account flow.AccountID, err error) error {
	switch status.Code(err) {
	case codes.InvalidArgument, codes.FailedPrecondition, codes.AlreadyExists:
		return &ExecutionError{TransactionID: txID, Message: status.Convert(err).Message()}
	default:
		return convertRPCError("submit transaction", account, err)
	}
}

// errorKind labels an error for metrics.
func errorKind(err error) string {
	switch {
	case IsTransportError(err):
		return "transport"
	case IsCompileError(err):
		return "compile"
	case IsAccountNotFoundError(err):
		return "account_not_found"
	case IsExecutionError(err):
		return "execution"
	default:
		return "other"
	}
}

package emulator

import (
	"context"
	"errors"

	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/access"
	"github.com/onflow/contract-client/model/flow"
	cstorage "github.com/onflow/contract-client/storage"
)

// Backend exposes an emulated ledger through the access API.
type Backend struct {
	ledger *EmulatedLedger
	log    zerolog.Logger
}

var _ access.API = (*Backend)(nil)

// NewBackend returns a new access backend for the ledger.
func NewBackend(log zerolog.Logger, ledger *EmulatedLedger) *Backend {
	return &Backend{
		ledger: ledger,
		log:    log.With().Str("component", "emulator_backend").Logger(),
	}
}

// Ledger returns the emulated ledger behind the backend.
func (b *Backend) Ledger() *EmulatedLedger {
	return b.ledger
}

func (b *Backend) Ping(_ context.Context) error {
	return nil
}

func (b *Backend) GetNetworkParameters(_ context.Context) (access.NetworkParameters, error) {
	return access.NetworkParameters{NetworkID: b.ledger.Network()}, nil
}

func (b *Backend) GetLatestBlock(_ context.Context) (*flow.Block, error) {
	block, err := b.ledger.GetLatestBlock()
	if err != nil {
		return nil, convertError(err)
	}
	return block, nil
}

func (b *Backend) AddAccount(_ context.Context, account *flow.Account, seed flow.Seed) error {
	if account == nil {
		return status.Error(codes.InvalidArgument, "account is required")
	}

	_, err := b.ledger.AddAccount(account, seed)
	if err != nil {
		return convertError(err)
	}
	return nil
}

func (b *Backend) GetAccount(_ context.Context, id flow.AccountID) (*flow.Account, error) {
	account, err := b.ledger.GetAccount(id)
	if err != nil {
		return nil, convertError(err)
	}
	return account, nil
}

func (b *Backend) SubmitTransaction(_ context.Context, tx *flow.Transaction) (flow.TransactionID, error) {
	if tx == nil {
		return flow.TransactionID{}, status.Error(codes.InvalidArgument, "transaction is required")
	}

	result, err := b.ledger.SubmitTransaction(tx)
	if err != nil {
		return flow.TransactionID{}, convertError(err)
	}

	b.log.Debug().
		Str("tx_id", result.TransactionID.String()).
		Str("status", result.Status.String()).
		Msg("transaction submitted")

	return result.TransactionID, nil
}

func (b *Backend) GetTransactionResult(_ context.Context, id flow.TransactionID) (*flow.TransactionResult, error) {
	result, err := b.ledger.GetTransactionResult(id)
	if err != nil {
		return nil, convertError(err)
	}
	return result, nil
}

func (b *Backend) SyncState(_ context.Context, req *flow.SyncRequest) (*flow.StateUpdate, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "sync request is required")
	}

	update, err := b.ledger.Sync(req)
	if err != nil {
		return nil, convertError(err)
	}
	return update, nil
}

// convertError maps emulator errors to gRPC status errors.
func convertError(err error) error {
	var (
		blockNotFound   *ErrBlockNotFound
		txNotFound      *ErrTransactionNotFound
		accountNotFound *ErrAccountNotFound
		duplicateAcct   *ErrDuplicateAccount
		duplicateTx     *ErrDuplicateTransaction
		invalidAccount  *ErrInvalidAccount
		invalidTx       *ErrInvalidTransaction
		blockFull       *ErrPendingBlockFull
	)

	switch {
	case errors.As(err, &blockNotFound),
		errors.As(err, &txNotFound),
		errors.As(err, &accountNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &duplicateAcct),
		errors.As(err, &duplicateTx):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.As(err, &invalidAccount),
		errors.As(err, &invalidTx):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &blockFull):
		return status.Error(codes.ResourceExhausted, err.Error())
	default:
		// store failures that escaped the ledger's own error types
		return cstorage.ConvertStorageError(err)
	}
}

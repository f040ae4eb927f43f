package access

//go:generate mockgen -destination=mocks/api.go -package=mocks github.com/onflow/contract-client/access API

import (
	"context"

	"github.com/onflow/contract-client/model/flow"
)

// API provides all public-facing functionality of a ledger node.
//
// Errors are gRPC status errors so they keep their meaning across the wire:
// codes.NotFound for unknown accounts, transactions and blocks,
// codes.AlreadyExists for duplicate accounts and transactions,
// codes.InvalidArgument for malformed input and codes.ResourceExhausted when
// the node is overloaded.
type API interface {
	Ping(ctx context.Context) error
	GetNetworkParameters(ctx context.Context) (NetworkParameters, error)

	GetLatestBlock(ctx context.Context) (*flow.Block, error)

	// AddAccount registers a new account created from seed.
	AddAccount(ctx context.Context, account *flow.Account, seed flow.Seed) error
	GetAccount(ctx context.Context, id flow.AccountID) (*flow.Account, error)

	// SubmitTransaction queues a transaction for execution. The returned id
	// does not imply the transaction succeeded; use GetTransactionResult.
	SubmitTransaction(ctx context.Context, tx *flow.Transaction) (flow.TransactionID, error)
	GetTransactionResult(ctx context.Context, id flow.TransactionID) (*flow.TransactionResult, error)

	// SyncState returns the committed chain tip and the accounts the
	// requester is missing.
	SyncState(ctx context.Context, req *flow.SyncRequest) (*flow.StateUpdate, error)
}

// NetworkParameters contains the network-wide parameters of the ledger.
type NetworkParameters struct {
	NetworkID flow.NetworkID
}

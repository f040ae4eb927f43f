package rpc

import (
	"time"

	"github.com/onflow/contract-client/model/flow"
)

type PingRequest struct{}

type PingResponse struct{}

type GetNetworkParametersRequest struct{}

type GetNetworkParametersResponse struct {
	NetworkID string
}

type GetLatestBlockRequest struct{}

type BlockResponse struct {
	Block *Block
}

// Block is the wire form of a block. The timestamp travels as Unix
// nanoseconds so the block id can be recomputed by the receiver.
type Block struct {
	ParentID        flow.Digest
	Height          uint64
	Timestamp       int64
	Transactions    []flow.TransactionID
	CreatedAccounts []flow.AccountID
}

type AddAccountRequest struct {
	Account *flow.Account
	Seed    flow.Seed
}

type AddAccountResponse struct{}

type GetAccountRequest struct {
	ID flow.AccountID
}

type AccountResponse struct {
	Account *flow.Account
}

type SubmitTransactionRequest struct {
	Transaction *flow.Transaction
}

type SubmitTransactionResponse struct {
	ID flow.TransactionID
}

type GetTransactionResultRequest struct {
	ID flow.TransactionID
}

type TransactionResultResponse struct {
	Result *flow.TransactionResult
}

type SyncStateRequest struct {
	Request *flow.SyncRequest
}

type SyncStateResponse struct {
	Update *flow.StateUpdate
}

// BlockToMessage converts a block to its wire form.
func BlockToMessage(b *flow.Block) *Block {
	return &Block{
		ParentID:        b.Header.ParentID,
		Height:          b.Header.Height,
		Timestamp:       b.Header.Timestamp.UnixNano(),
		Transactions:    b.Transactions,
		CreatedAccounts: b.CreatedAccounts,
	}
}

// MessageToBlock converts a block from its wire form.
func MessageToBlock(m *Block) *flow.Block {
	return &flow.Block{
		Header: flow.Header{
			ParentID:  m.ParentID,
			Height:    m.Height,
			Timestamp: time.Unix(0, m.Timestamp).UTC(),
		},
		Transactions:    m.Transactions,
		CreatedAccounts: m.CreatedAccounts,
	}
}

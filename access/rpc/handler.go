package rpc

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/access"
)

// Handler serves the ledger service from an access API backend.
type Handler struct {
	api access.API
}

var _ LedgerServer = (*Handler)(nil)

func NewHandler(api access.API) *Handler {
	return &Handler{api: api}
}

// Ping responds to requests when the server is up.
func (h *Handler) Ping(ctx context.Context, _ *PingRequest) (*PingResponse, error) {
	err := h.api.Ping(ctx)
	if err != nil {
		return nil, err
	}
	return &PingResponse{}, nil
}

func (h *Handler) GetNetworkParameters(ctx context.Context, _ *GetNetworkParametersRequest) (*GetNetworkParametersResponse, error) {
	params, err := h.api.GetNetworkParameters(ctx)
	if err != nil {
		return nil, err
	}
	return &GetNetworkParametersResponse{NetworkID: params.NetworkID.String()}, nil
}

func (h *Handler) GetLatestBlock(ctx context.Context, _ *GetLatestBlockRequest) (*BlockResponse, error) {
	block, err := h.api.GetLatestBlock(ctx)
	if err != nil {
		return nil, err
	}
	return &BlockResponse{Block: BlockToMessage(block)}, nil
}

func (h *Handler) AddAccount(ctx context.Context, req *AddAccountRequest) (*AddAccountResponse, error) {
	if req.Account == nil {
		return nil, status.Error(codes.InvalidArgument, "account is required")
	}
	err := h.api.AddAccount(ctx, req.Account, req.Seed)
	if err != nil {
		return nil, err
	}
	return &AddAccountResponse{}, nil
}

func (h *Handler) GetAccount(ctx context.Context, req *GetAccountRequest) (*AccountResponse, error) {
	account, err := h.api.GetAccount(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &AccountResponse{Account: account}, nil
}

func (h *Handler) SubmitTransaction(ctx context.Context, req *SubmitTransactionRequest) (*SubmitTransactionResponse, error) {
	if req.Transaction == nil {
		return nil, status.Error(codes.InvalidArgument, "transaction is required")
	}
	id, err := h.api.SubmitTransaction(ctx, req.Transaction)
	if err != nil {
		return nil, err
	}
	return &SubmitTransactionResponse{ID: id}, nil
}

func (h *Handler) GetTransactionResult(ctx context.Context, req *GetTransactionResultRequest) (*TransactionResultResponse, error) {
	result, err := h.api.GetTransactionResult(ctx, req.ID)
	if err != nil {
		return nil, err
	}
	return &TransactionResultResponse{Result: result}, nil
}

func (h *Handler) SyncState(ctx context.Context, req *SyncStateRequest) (*SyncStateResponse, error) {
	if req.Request == nil {
		return nil, status.Error(codes.InvalidArgument, "sync request is required")
	}
	update, err := h.api.SyncState(ctx, req.Request)
	if err != nil {
		return nil, err
	}
	return &SyncStateResponse{Update: update}, nil
}

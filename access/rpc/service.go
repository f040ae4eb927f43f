package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// ServiceName is the fully qualified name of the ledger service.
const ServiceName = "ledger.Ledger"

const (
	methodPing                 = "/" + ServiceName + "/Ping"
	methodGetNetworkParameters = "/" + ServiceName + "/GetNetworkParameters"
	methodGetLatestBlock       = "/" + ServiceName + "/GetLatestBlock"
	methodAddAccount           = "/" + ServiceName + "/AddAccount"
	methodGetAccount           = "/" + ServiceName + "/GetAccount"
	methodSubmitTransaction    = "/" + ServiceName + "/SubmitTransaction"
	methodGetTransactionResult = "/" + ServiceName + "/GetTransactionResult"
	methodSyncState            = "/" + ServiceName + "/SyncState"
)

// LedgerServer is the server API for the ledger service.
type LedgerServer interface {
	Ping(context.Context, *PingRequest) (*PingResponse, error)
	GetNetworkParameters(context.Context, *GetNetworkParametersRequest) (*GetNetworkParametersResponse, error)
	GetLatestBlock(context.Context, *GetLatestBlockRequest) (*BlockResponse, error)
	AddAccount(context.Context, *AddAccountRequest) (*AddAccountResponse, error)
	GetAccount(context.Context, *GetAccountRequest) (*AccountResponse, error)
	SubmitTransaction(context.Context, *SubmitTransactionRequest) (*SubmitTransactionResponse, error)
	GetTransactionResult(context.Context, *GetTransactionResultRequest) (*TransactionResultResponse, error)
	SyncState(context.Context, *SyncStateRequest) (*SyncStateResponse, error)
}

// RegisterLedgerServer registers srv with the grpc server.
func RegisterLedgerServer(s grpc.ServiceRegistrar, srv LedgerServer) {
	s.RegisterService(&ledgerServiceDesc, srv)
}

// unaryHandler adapts a typed server method to a grpc method handler.
func unaryHandler[Req any, Resp any](
	fullMethod string,
	call func(LedgerServer, context.Context, *Req) (*Resp, error),
) func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(LedgerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: fullMethod,
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(LedgerServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var ledgerServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*LedgerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Ping",
			Handler:    unaryHandler(methodPing, LedgerServer.Ping),
		},
		{
			MethodName: "GetNetworkParameters",
			Handler:    unaryHandler(methodGetNetworkParameters, LedgerServer.GetNetworkParameters),
		},
		{
			MethodName: "GetLatestBlock",
			Handler:    unaryHandler(methodGetLatestBlock, LedgerServer.GetLatestBlock),
		},
		{
			MethodName: "AddAccount",
			Handler:    unaryHandler(methodAddAccount, LedgerServer.AddAccount),
		},
		{
			MethodName: "GetAccount",
			Handler:    unaryHandler(methodGetAccount, LedgerServer.GetAccount),
		},
		{
			MethodName: "SubmitTransaction",
			Handler:    unaryHandler(methodSubmitTransaction, LedgerServer.SubmitTransaction),
		},
		{
			MethodName: "GetTransactionResult",
			Handler:    unaryHandler(methodGetTransactionResult, LedgerServer.GetTransactionResult),
		},
		{
			MethodName: "SyncState",
			Handler:    unaryHandler(methodSyncState, LedgerServer.SyncState),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ledger.proto",
}

// LedgerClient is the client API for the ledger service.
type LedgerClient interface {
	Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error)
	GetNetworkParameters(ctx context.Context, in *GetNetworkParametersRequest, opts ...grpc.CallOption) (*GetNetworkParametersResponse, error)
	GetLatestBlock(ctx context.Context, in *GetLatestBlockRequest, opts ...grpc.CallOption) (*BlockResponse, error)
	AddAccount(ctx context.Context, in *AddAccountRequest, opts ...grpc.CallOption) (*AddAccountResponse, error)
	GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error)
	SubmitTransaction(ctx context.Context, in *SubmitTransactionRequest, opts ...grpc.CallOption) (*SubmitTransactionResponse, error)
	GetTransactionResult(ctx context.Context, in *GetTransactionResultRequest, opts ...grpc.CallOption) (*TransactionResultResponse, error)
	SyncState(ctx context.Context, in *SyncStateRequest, opts ...grpc.CallOption) (*SyncStateResponse, error)
}

type ledgerClient struct {
	cc grpc.ClientConnInterface
}

// NewLedgerClient returns a client of the ledger service. Calls are encoded
// with the CBOR codec.
func NewLedgerClient(cc grpc.ClientConnInterface) LedgerClient {
	return &ledgerClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in interface{}, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	err := cc.Invoke(ctx, method, in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ledgerClient) Ping(ctx context.Context, in *PingRequest, opts ...grpc.CallOption) (*PingResponse, error) {
	return invoke[PingResponse](ctx, c.cc, methodPing, in, opts)
}

func (c *ledgerClient) GetNetworkParameters(ctx context.Context, in *GetNetworkParametersRequest, opts ...grpc.CallOption) (*GetNetworkParametersResponse, error) {
	return invoke[GetNetworkParametersResponse](ctx, c.cc, methodGetNetworkParameters, in, opts)
}

func (c *ledgerClient) GetLatestBlock(ctx context.Context, in *GetLatestBlockRequest, opts ...grpc.CallOption) (*BlockResponse, error) {
	return invoke[BlockResponse](ctx, c.cc, methodGetLatestBlock, in, opts)
}

func (c *ledgerClient) AddAccount(ctx context.Context, in *AddAccountRequest, opts ...grpc.CallOption) (*AddAccountResponse, error) {
	return invoke[AddAccountResponse](ctx, c.cc, methodAddAccount, in, opts)
}

func (c *ledgerClient) GetAccount(ctx context.Context, in *GetAccountRequest, opts ...grpc.CallOption) (*AccountResponse, error) {
	return invoke[AccountResponse](ctx, c.cc, methodGetAccount, in, opts)
}

func (c *ledgerClient) SubmitTransaction(ctx context.Context, in *SubmitTransactionRequest, opts ...grpc.CallOption) (*SubmitTransactionResponse, error) {
	return invoke[SubmitTransactionResponse](ctx, c.cc, methodSubmitTransaction, in, opts)
}

func (c *ledgerClient) GetTransactionResult(ctx context.Context, in *GetTransactionResultRequest, opts ...grpc.CallOption) (*TransactionResultResponse, error) {
	return invoke[TransactionResultResponse](ctx, c.cc, methodGetTransactionResult, in, opts)
}

func (c *ledgerClient) SyncState(ctx context.Context, in *SyncStateRequest, opts ...grpc.CallOption) (*SyncStateResponse, error) {
	return invoke[SyncStateResponse](ctx, c.cc, methodSyncState, in, opts)
}

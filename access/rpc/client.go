package rpc

import (
	"context"
	"time"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"

	"github.com/onflow/contract-client/access"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module/grpcserver"
)

// DefaultTimeout bounds every call made by a Client.
const DefaultTimeout = 10 * time.Second

// DefaultMaxMsgSize is the largest message a Client accepts.
const DefaultMaxMsgSize = 16 << 20

// Client is an access API client talking to a ledger node over gRPC.
type Client struct {
	rpcClient LedgerClient
	close     func() error
}

var _ access.API = (*Client)(nil)

type clientConfig struct {
	timeout     time.Duration
	dialOptions []grpc.DialOption
}

// ClientOption configures a Client.
type ClientOption func(*clientConfig)

// WithTimeout sets the per-call timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *clientConfig) {
		c.timeout = timeout
	}
}

// WithDialOptions adds options to the gRPC dial, e.g. a custom dialer.
func WithDialOptions(opts ...grpc.DialOption) ClientOption {
	return func(c *clientConfig) {
		c.dialOptions = append(c.dialOptions, opts...)
	}
}

// New initializes a ledger client connected to addr.
//
// Connections are established lazily, so an unreachable host surfaces on the
// first call.
func New(addr string, opts ...ClientOption) (*Client, error) {
	config := clientConfig{timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&config)
	}

	dialOptions := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.MaxCallRecvMsgSize(DefaultMaxMsgSize)),
		grpc.WithChainUnaryInterceptor(
			TimeoutInterceptor(config.timeout),
			RequestIDInterceptor,
		),
	}, config.dialOptions...)

	conn, err := grpc.Dial(addr, dialOptions...)
	if err != nil {
		return nil, err
	}

	return &Client{
		rpcClient: NewLedgerClient(conn),
		close:     func() error { return conn.Close() },
	}, nil
}

// NewFromRPCClient initializes a client using a pre-configured gRPC provider.
func NewFromRPCClient(rpcClient LedgerClient) *Client {
	return &Client{
		rpcClient: rpcClient,
		close:     func() error { return nil },
	}
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.close()
}

// TimeoutInterceptor applies timeout to calls without an earlier deadline.
func TimeoutInterceptor(timeout time.Duration) grpc.UnaryClientInterceptor {
	return func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
		if timeout <= 0 {
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return invoker(ctx, method, req, reply, cc, opts...)
	}
}

// RequestIDInterceptor tags every call with a new request id, unless the
// caller set one.
func RequestIDInterceptor(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
	md, _ := metadata.FromOutgoingContext(ctx)
	if len(md.Get(grpcserver.RequestIDHeader)) == 0 {
		ctx = metadata.AppendToOutgoingContext(ctx, grpcserver.RequestIDHeader, uuid.NewString())
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func (c *Client) Ping(ctx context.Context) error {
	_, err := c.rpcClient.Ping(ctx, &PingRequest{})
	return err
}

func (c *Client) GetNetworkParameters(ctx context.Context) (access.NetworkParameters, error) {
	res, err := c.rpcClient.GetNetworkParameters(ctx, &GetNetworkParametersRequest{})
	if err != nil {
		return access.NetworkParameters{}, err
	}
	return access.NetworkParameters{NetworkID: flow.NetworkID(res.NetworkID)}, nil
}

// GetLatestBlock gets the latest committed block.
func (c *Client) GetLatestBlock(ctx context.Context) (*flow.Block, error) {
	res, err := c.rpcClient.GetLatestBlock(ctx, &GetLatestBlockRequest{})
	if err != nil {
		return nil, err
	}
	return MessageToBlock(res.Block), nil
}

// AddAccount registers a new account on the ledger.
func (c *Client) AddAccount(ctx context.Context, account *flow.Account, seed flow.Seed) error {
	_, err := c.rpcClient.AddAccount(ctx, &AddAccountRequest{Account: account, Seed: seed})
	return err
}

// GetAccount fetches an account by id.
func (c *Client) GetAccount(ctx context.Context, id flow.AccountID) (*flow.Account, error) {
	res, err := c.rpcClient.GetAccount(ctx, &GetAccountRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return res.Account, nil
}

// SubmitTransaction submits a transaction to the network.
func (c *Client) SubmitTransaction(ctx context.Context, tx *flow.Transaction) (flow.TransactionID, error) {
	res, err := c.rpcClient.SubmitTransaction(ctx, &SubmitTransactionRequest{Transaction: tx})
	if err != nil {
		return flow.TransactionID{}, err
	}
	return res.ID, nil
}

// GetTransactionResult fetches the result of a transaction by id.
func (c *Client) GetTransactionResult(ctx context.Context, id flow.TransactionID) (*flow.TransactionResult, error) {
	res, err := c.rpcClient.GetTransactionResult(ctx, &GetTransactionResultRequest{ID: id})
	if err != nil {
		return nil, err
	}
	return res.Result, nil
}

// SyncState requests the state changes the caller is missing.
func (c *Client) SyncState(ctx context.Context, req *flow.SyncRequest) (*flow.StateUpdate, error) {
	res, err := c.rpcClient.SyncState(ctx, &SyncStateRequest{Request: req})
	if err != nil {
		return nil, err
	}
	return res.Update, nil
}

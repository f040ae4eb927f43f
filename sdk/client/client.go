// Package client deploys accounts and contracts on a ledger, invokes
// contracts and reads their storage from a locally synced view.
//
// A Client is a single mutable resource. Its methods must not be called
// concurrently; use a Registry to share clients between goroutines.
package client

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/onflow/contract-client/access"
	"github.com/onflow/contract-client/access/rpc"
	"github.com/onflow/contract-client/config"
	"github.com/onflow/contract-client/fvm/assembly"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/sdk/keys"
	"github.com/onflow/contract-client/storage"
	"github.com/onflow/contract-client/storage/badger"
)

// KeyStore persists the secret keys of deployed accounts.
type KeyStore interface {
	AddKey(sk *keys.PrivateKey) error
	GetKey(pk keys.PublicKey) (*keys.PrivateKey, error)
}

// Client is a ledger client. Build one with New.
type Client struct {
	log       zerolog.Logger
	conf      config.ClientConfig
	api       access.API
	view      storage.LocalView
	keystore  KeyStore
	libraries *libraryCache
	metrics   module.ClientMetrics
	rng       io.Reader
	closers   []io.Closer
}

type options struct {
	log      zerolog.Logger
	api      access.API
	view     storage.LocalView
	keystore KeyStore
	metrics  module.ClientMetrics
	rng      io.Reader
	rpcOpts  []rpc.ClientOption
}

// Option configures a Client.
type Option func(*options)

// WithLogger sets the logger of the client.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithAPI uses api instead of dialing the configured endpoint.
func WithAPI(api access.API) Option {
	return func(o *options) {
		o.api = api
	}
}

// WithRPCOptions passes options to the gRPC client dialing the endpoint.
func WithRPCOptions(opts ...rpc.ClientOption) Option {
	return func(o *options) {
		o.rpcOpts = append(o.rpcOpts, opts...)
	}
}

// WithLocalView uses view instead of opening the configured store directory.
func WithLocalView(view storage.LocalView) Option {
	return func(o *options) {
		o.view = view
	}
}

// WithKeyStore uses ks instead of the configured keystore directory.
func WithKeyStore(ks KeyStore) Option {
	return func(o *options) {
		o.keystore = ks
	}
}

// WithMetrics sets the metrics collector of the client.
func WithMetrics(collector module.ClientMetrics) Option {
	return func(o *options) {
		o.metrics = collector
	}
}

// WithRandom sets the source of account seeds and key material.
func WithRandom(rng io.Reader) Option {
	return func(o *options) {
		o.rng = rng
	}
}

// New builds a client from conf. Collaborators not provided as options are
// created from the configuration: the gRPC transport, the badger local view
// and the filesystem keystore.
func New(conf config.ClientConfig, opts ...Option) (*Client, error) {
	o := options{
		log:     zerolog.Nop(),
		metrics: metrics.NewNoopCollector(),
		rng:     rand.Reader,
	}
	for _, opt := range opts {
		opt(&o)
	}

	c := &Client{
		log:     o.log.With().Str("component", "client").Str("network", conf.Network.String()).Logger(),
		conf:    conf,
		api:     o.api,
		view:    o.view,
		metrics: o.metrics,
		rng:     o.rng,
	}

	if c.api == nil {
		endpoint, err := conf.ResolveEndpoint()
		if err != nil {
			return nil, err
		}
		rpcClient, err := rpc.New(endpoint, append([]rpc.ClientOption{rpc.WithTimeout(conf.Timeout)}, o.rpcOpts...)...)
		if err != nil {
			return nil, &TransportError{Op: "dial", Err: err}
		}
		c.api = rpcClient
		c.closers = append(c.closers, rpcClient)
	}

	if c.view == nil {
		db, err := badger.OpenDB(conf.StoreDir, c.log)
		if err != nil {
			return nil, multierror.Append(err, c.Close()).ErrorOrNil()
		}
		c.closers = append(c.closers, db)
		c.view = badger.NewLocalView(c.metrics, db)
	}

	c.keystore = o.keystore
	if c.keystore == nil {
		ks, err := keys.NewFilesystemKeyStore(conf.KeystoreDir)
		if err != nil {
			return nil, multierror.Append(err, c.Close()).ErrorOrNil()
		}
		c.keystore = ks
	}

	libraries, err := newLibraryCache(conf.LibraryCacheSize, c.metrics)
	if err != nil {
		return nil, multierror.Append(err, c.Close()).ErrorOrNil()
	}
	c.libraries = libraries

	return c, nil
}

// Network returns the network the client is configured for.
func (c *Client) Network() flow.NetworkID {
	return c.conf.Network
}

// Close releases the transport and the local view database.
func (c *Client) Close() error {
	var result *multierror.Error
	for i := len(c.closers) - 1; i >= 0; i-- {
		err := c.closers[i].Close()
		if err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.closers = nil
	return result.ErrorOrNil()
}

func (c *Client) assembler() *assembly.Assembler {
	return assembly.NewAssembler(assembly.WithDebugMode(c.conf.DebugMode))
}

func (c *Client) randomSeed() (flow.Seed, error) {
	var seed flow.Seed
	_, err := io.ReadFull(c.rng, seed[:])
	if err != nil {
		return flow.Seed{}, fmt.Errorf("could not draw seed: %w", err)
	}
	return seed, nil
}

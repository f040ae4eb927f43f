package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/onflow/contract-client/access/rpc"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module/grpcserver"
	"github.com/onflow/contract-client/module/irrecoverable"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/sdk/emulator"
	"github.com/onflow/contract-client/sdk/emulator/storage"
	"github.com/onflow/contract-client/sdk/emulator/storage/memstore"
	"github.com/onflow/contract-client/storage/pebble"
)

// EmulatorServer is a local server that runs an emulated ledger.
//
// The server wraps the emulated ledger with the ledger gRPC service and serves
// prometheus metrics and a health check over http.
type EmulatorServer struct {
	log        zerolog.Logger
	config     *Config
	ledger     *emulator.EmulatedLedger
	backend    *emulator.Backend
	grpcServer *grpcserver.GrpcServer
	httpServer *metrics.Server
}

// Config for the EmulatorServer configuration settings.
type Config struct {
	GRPCAddress string
	// HTTPAddress serves /metrics and /health. Empty disables it.
	HTTPAddress string
	// BlockTime commits a block on every tick. Zero commits a block per
	// transaction.
	BlockTime time.Duration
	// DBPath persists the chain in a pebble database. Empty keeps it in
	// memory.
	DBPath           string
	Network          flow.NetworkID
	ComputationLimit uint64
	MaxMsgSize       uint
	RateLimits       map[string]int
	BurstLimits      map[string]int
}

// DefaultConfig returns the configuration of a local emulator.
func DefaultConfig() *Config {
	return &Config{
		GRPCAddress: "localhost:3569",
		HTTPAddress: "localhost:8080",
		Network:     flow.Localnet,
		MaxMsgSize:  rpc.DefaultMaxMsgSize,
	}
}

// NewEmulatorServer creates a new instance of an emulator server.
func NewEmulatorServer(log zerolog.Logger, conf *Config) (*EmulatorServer, error) {
	registry := prometheus.NewRegistry()
	ledgerMetrics := metrics.NewLedgerCollector(registry)

	store, err := openStore(conf, ledgerMetrics)
	if err != nil {
		return nil, err
	}

	opts := []emulator.Option{
		emulator.WithStore(store),
		emulator.WithLogger(log),
		emulator.WithMetrics(ledgerMetrics),
		emulator.WithNetwork(conf.Network),
		emulator.WithAutoMine(conf.BlockTime == 0),
	}
	if conf.ComputationLimit > 0 {
		opts = append(opts, emulator.WithComputationLimit(conf.ComputationLimit))
	}

	ledger, err := emulator.NewEmulatedLedger(opts...)
	if err != nil {
		return nil, multierror.Append(fmt.Errorf("could not create emulated ledger: %w", err), store.Close()).ErrorOrNil()
	}
	backend := emulator.NewBackend(log, ledger)

	grpcOpts := []grpcserver.Option{grpcserver.WithRPCMetrics()}
	if len(conf.RateLimits) > 0 {
		grpcOpts = append(grpcOpts, grpcserver.WithRateLimits(conf.RateLimits, conf.BurstLimits, metrics.NewAccessCollector(registry)))
	}
	builder := grpcserver.NewGrpcServerBuilder(log, conf.GRPCAddress, conf.MaxMsgSize, grpcOpts...)
	rpc.RegisterLedgerServer(builder.Server(), rpc.NewHandler(backend))

	server := &EmulatorServer{
		log:        log.With().Str("component", "emulator_server").Logger(),
		config:     conf,
		ledger:     ledger,
		backend:    backend,
		grpcServer: builder.Build(),
	}

	if conf.HTTPAddress != "" {
		gatherer := prometheus.Gatherers{registry, prometheus.DefaultGatherer}
		server.httpServer = metrics.NewServer(log, conf.HTTPAddress, gatherer, server.health)
	}

	latest, err := ledger.GetLatestBlock()
	if err != nil {
		return nil, err
	}
	server.log.Info().
		Str("network", conf.Network.String()).
		Uint64("height", latest.Header.Height).
		Msg("emulated ledger ready")

	return server, nil
}

func openStore(conf *Config, collector *metrics.LedgerCollector) (storage.Store, error) {
	if conf.DBPath == "" {
		return memstore.New(), nil
	}
	db, err := pebble.OpenDefaultPebbleDB(conf.DBPath)
	if err != nil {
		return nil, fmt.Errorf("could not open ledger database: %w", err)
	}
	store, err := pebble.NewLedgerStore(collector, db)
	if err != nil {
		return nil, multierror.Append(fmt.Errorf("could not open ledger store: %w", err), db.Close()).ErrorOrNil()
	}
	return store, nil
}

// Ledger returns the emulated ledger served by the server.
func (s *EmulatorServer) Ledger() *emulator.EmulatedLedger {
	return s.ledger
}

// Backend returns the access API backend of the server.
func (s *EmulatorServer) Backend() *emulator.Backend {
	return s.backend
}

// GRPCAddress returns the address the gRPC server is bound to.
func (s *EmulatorServer) GRPCAddress() net.Addr {
	<-s.grpcServer.Ready()
	return s.grpcServer.GRPCAddress()
}

// HTTPHandler returns the handler serving /metrics and /health, or nil when
// http is disabled.
func (s *EmulatorServer) HTTPHandler() http.Handler {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Handler()
}

func (s *EmulatorServer) health(ctx context.Context) error {
	_, err := s.backend.GetLatestBlock(ctx)
	return err
}

// Start serves until ctx is canceled or a component fails. With a block
// time configured, a block is committed on every tick.
func (s *EmulatorServer) Start(ctx context.Context) error {
	l, err := net.Listen("tcp", s.config.GRPCAddress)
	if err != nil {
		return fmt.Errorf("could not listen on %s: %w", s.config.GRPCAddress, err)
	}
	return s.Serve(ctx, l)
}

// Serve is Start with a gRPC listener provided by the caller.
func (s *EmulatorServer) Serve(ctx context.Context, l net.Listener) error {
	signalerCtx, errChan := irrecoverable.WithSignalerContext(ctx)
	g, gCtx := errgroup.WithContext(signalerCtx)

	g.Go(func() error {
		return s.grpcServer.Serve(gCtx, l)
	})

	if s.httpServer != nil {
		g.Go(func() error {
			return s.httpServer.Run(gCtx)
		})
	}

	if s.config.BlockTime > 0 {
		g.Go(func() error {
			s.mineBlocks(signalerCtx, gCtx.Done())
			return nil
		})
	}

	g.Go(func() error {
		select {
		case err := <-errChan:
			return fmt.Errorf("irrecoverable error: %w", err)
		case <-gCtx.Done():
			return nil
		}
	})

	s.log.Info().
		Str("grpc_address", l.Addr().String()).
		Str("http_address", s.config.HTTPAddress).
		Dur("block_time", s.config.BlockTime).
		Msg("starting emulator server")

	return g.Wait()
}

// mineBlocks commits the pending block on every tick. A failed commit leaves
// the ledger in an unknown state and is thrown.
func (s *EmulatorServer) mineBlocks(ctx irrecoverable.SignalerContext, done <-chan struct{}) {
	ticker := time.NewTicker(s.config.BlockTime)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			block, err := s.ledger.CommitPendingBlock()
			if err != nil {
				ctx.Throw(fmt.Errorf("could not commit block: %w", err))
			}
			if block == nil {
				continue
			}
			s.log.Debug().
				Uint64("height", block.Header.Height).
				Int("transactions", len(block.Transactions)).
				Msg("block mined")
		case <-done:
			return
		}
	}
}

// Stop closes the ledger store. The server must not be serving.
func (s *EmulatorServer) Stop() error {
	return s.ledger.Close()
}

package grpcserver

import (
	"context"
	"errors"
	"net"
	"sync"

	"github.com/rs/zerolog"
	"google.golang.org/grpc"
)

// GrpcServer serves a configured grpc server until its context is canceled.
type GrpcServer struct {
	log        zerolog.Logger
	listenAddr string
	grpcServer *grpc.Server

	addrLock    sync.RWMutex
	grpcAddress net.Addr
	ready       chan struct{}
}

// NewGrpcServer returns a new grpc server.
func NewGrpcServer(log zerolog.Logger, listenAddr string, grpcServer *grpc.Server) *GrpcServer {
	return &GrpcServer{
		log:        log,
		listenAddr: listenAddr,
		grpcServer: grpcServer,
		ready:      make(chan struct{}),
	}
}

// Run listens on the configured address and serves until ctx is canceled,
// then stops gracefully.
func (g *GrpcServer) Run(ctx context.Context) error {
	g.log.Info().Str("grpc_address", g.listenAddr).Msg("starting grpc server on address")

	l, err := net.Listen("tcp", g.listenAddr)
	if err != nil {
		g.log.Err(err).Msg("failed to start the grpc server")
		return err
	}
	return g.Serve(ctx, l)
}

// Serve serves on l until ctx is canceled.
func (g *GrpcServer) Serve(ctx context.Context, l net.Listener) error {
	// the actual address may differ from the configured one if no port was given
	g.addrLock.Lock()
	g.grpcAddress = l.Addr()
	g.addrLock.Unlock()
	g.log.Debug().Str("grpc_address", l.Addr().String()).Msg("listening on port")
	close(g.ready)

	stopped := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			g.grpcServer.GracefulStop()
		case <-stopped:
		}
	}()
	defer close(stopped)

	err := g.grpcServer.Serve(l) // blocking call
	if err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		g.log.Err(err).Msg("fatal error in grpc server")
		return err
	}
	return nil
}

// Ready is closed once the server is bound to its address.
func (g *GrpcServer) Ready() <-chan struct{} {
	return g.ready
}

// GRPCAddress returns the listen address of the GRPC server.
// Guaranteed to be non-nil after Ready is closed.
func (g *GrpcServer) GRPCAddress() net.Addr {
	g.addrLock.RLock()
	defer g.addrLock.RUnlock()
	return g.grpcAddress
}

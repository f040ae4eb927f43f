package grpcserver

import (
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"

	"github.com/onflow/contract-client/module"
)

type Option func(*GrpcServerBuilder)

// WithTransportCredentials sets the transport credentials parameters for a grpc server builder.
func WithTransportCredentials(transportCredentials credentials.TransportCredentials) Option {
	return func(c *GrpcServerBuilder) {
		c.transportCredentials = transportCredentials
	}
}

// WithRPCMetrics enables the prometheus interceptor for every served method.
func WithRPCMetrics() Option {
	return func(c *GrpcServerBuilder) {
		c.rpcMetricsEnabled = true
	}
}

// WithRateLimits limits each method to the given calls per second and burst.
// Methods missing from the maps share the default limiter.
func WithRateLimits(apiRateLimits map[string]int, apiBurstLimits map[string]int, metrics module.RateLimitMetrics) Option {
	return func(c *GrpcServerBuilder) {
		c.apiRateLimits = apiRateLimits
		c.apiBurstLimits = apiBurstLimits
		c.rateLimitMetrics = metrics
	}
}

// WithUnaryInterceptor appends an interceptor that runs just before the
// logging interceptor.
func WithUnaryInterceptor(interceptor grpc.UnaryServerInterceptor) Option {
	return func(c *GrpcServerBuilder) {
		c.extraInterceptors = append(c.extraInterceptors, interceptor)
	}
}

// GrpcServerBuilder separates creating the grpc server from starting it, since
// services need to be registered in between.
type GrpcServerBuilder struct {
	log            zerolog.Logger
	gRPCListenAddr string
	server         *grpc.Server

	transportCredentials credentials.TransportCredentials
	rpcMetricsEnabled    bool
	apiRateLimits        map[string]int
	apiBurstLimits       map[string]int
	rateLimitMetrics     module.RateLimitMetrics
	extraInterceptors    []grpc.UnaryServerInterceptor
}

// NewGrpcServerBuilder creates a builder for a grpc server listening on
// gRPCListenAddr.
//
// Interceptors run in this order: request id, prometheus (if enabled), rate
// limit (if configured), custom interceptors, logging.
func NewGrpcServerBuilder(log zerolog.Logger, gRPCListenAddr string, maxMsgSize uint, opts ...Option) *GrpcServerBuilder {
	log = log.With().Str("component", "grpc_server").Logger()

	builder := &GrpcServerBuilder{
		gRPCListenAddr: gRPCListenAddr,
	}
	for _, applyOption := range opts {
		applyOption(builder)
	}

	grpcOpts := []grpc.ServerOption{
		grpc.MaxRecvMsgSize(int(maxMsgSize)),
		grpc.MaxSendMsgSize(int(maxMsgSize)),
	}

	interceptors := []grpc.UnaryServerInterceptor{RequestIDInterceptor}
	if builder.rpcMetricsEnabled {
		interceptors = append(interceptors, grpc_prometheus.UnaryServerInterceptor)
	}
	if len(builder.apiRateLimits) > 0 {
		limiter := NewRateLimiterInterceptor(log, builder.apiRateLimits, builder.apiBurstLimits, builder.rateLimitMetrics)
		interceptors = append(interceptors, limiter.UnaryServerInterceptor)
	}
	interceptors = append(interceptors, builder.extraInterceptors...)
	// logging is the innermost wrapper
	interceptors = append(interceptors, LoggingInterceptor(log))
	grpcOpts = append(grpcOpts, grpc.ChainUnaryInterceptor(interceptors...))

	if builder.transportCredentials != nil {
		log = log.With().Str("endpoint", "secure").Logger()
		grpcOpts = append(grpcOpts, grpc.Creds(builder.transportCredentials))
	} else {
		log = log.With().Str("endpoint", "unsecure").Logger()
	}
	builder.log = log
	builder.server = grpc.NewServer(grpcOpts...)

	return builder
}

// Server returns the underlying grpc server for service registration.
func (b *GrpcServerBuilder) Server() *grpc.Server {
	return b.server
}

// Build returns the server. Services must be registered before.
func (b *GrpcServerBuilder) Build() *GrpcServer {
	if b.rpcMetricsEnabled {
		grpc_prometheus.Register(b.server)
	}
	return NewGrpcServer(b.log, b.gRPCListenAddr, b.server)
}

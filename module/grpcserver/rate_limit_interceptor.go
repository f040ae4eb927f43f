package grpcserver

import (
	"context"
	"path/filepath"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/module"
)

const (
	defaultRateLimit = 10 // 10 calls per second
	DefaultBurst     = 3  // at most 3 calls that are made at the same time
)

// rateLimiterInterceptor rate limits calls per method.
type rateLimiterInterceptor struct {
	log     zerolog.Logger
	metrics module.RateLimitMetrics

	// default rate limiter for methods whose rate limit is not explicitly defined
	defaultLimiter *rate.Limiter

	// a map of method name and its limiter
	methodLimiterMap map[string]*rate.Limiter
}

// NewRateLimiterInterceptor creates a limiter per method in apiRateLimits. A
// method missing from apiBurstLimits gets DefaultBurst.
func NewRateLimiterInterceptor(log zerolog.Logger, apiRateLimits map[string]int, apiBurstLimits map[string]int, metrics module.RateLimitMetrics) *rateLimiterInterceptor {
	defaultLimiter := rate.NewLimiter(rate.Limit(defaultRateLimit), DefaultBurst)
	methodLimiterMap := make(map[string]*rate.Limiter, len(apiRateLimits))

	for method, limit := range apiRateLimits {
		burst := DefaultBurst
		if b, ok := apiBurstLimits[method]; ok {
			burst = b
		}
		methodLimiterMap[method] = rate.NewLimiter(rate.Limit(limit), burst)
	}

	return &rateLimiterInterceptor{
		log:              log.With().Str("component", "rate_limiter").Logger(),
		metrics:          metrics,
		defaultLimiter:   defaultLimiter,
		methodLimiterMap: methodLimiterMap,
	}
}

func (interceptor *rateLimiterInterceptor) UnaryServerInterceptor(ctx context.Context,
	req interface{},
	info *grpc.UnaryServerInfo,
	handler grpc.UnaryHandler) (resp interface{}, err error) {

	// remove the service name (e.g. "/ledger.Ledger/SubmitTransaction" to "SubmitTransaction")
	methodName := filepath.Base(info.FullMethod)

	limiter := interceptor.methodLimiterMap[methodName]
	if limiter == nil {
		interceptor.log.Debug().Str("method", methodName).Msg("rate limit not defined, using default limit")
		limiter = interceptor.defaultLimiter
	}

	if !limiter.Allow() {
		interceptor.log.Info().
			Str("method", methodName).
			Float64("limit", float64(limiter.Limit())).
			Msg("rate limit exceeded")
		if interceptor.metrics != nil {
			interceptor.metrics.RequestRateLimited(methodName)
		}

		return nil, status.Errorf(codes.ResourceExhausted, "%s rate limit reached, please retry later.",
			info.FullMethod)
	}

	return handler(ctx, req)
}

package client_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/onflow/contract-client/access/mocks"
	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/model/flow"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/sdk/client"
)

func fastBackoff(retries uint64) retry.Backoff {
	return retry.WithMaxRetries(retries, retry.NewConstant(time.Millisecond))
}

func TestDefaultBackoff(t *testing.T) {
	backoff := client.DefaultBackoff()

	for i := 0; i < 5; i++ {
		next, stop := backoff.Next()
		require.False(t, stop, "retry %d", i)
		assert.Positive(t, next)
		assert.LessOrEqual(t, next, 2*time.Second+200*time.Millisecond)
	}

	_, stop := backoff.Next()
	assert.True(t, stop)
}

func TestWithRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("transport errors are retried", func(t *testing.T) {
		calls := 0
		err := client.WithRetry(ctx, fastBackoff(5), func(context.Context) error {
			calls++
			if calls < 3 {
				return &client.TransportError{Op: "sync", Err: errors.New("connection refused")}
			}
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("compile errors are not retried", func(t *testing.T) {
		calls := 0
		err := client.WithRetry(ctx, fastBackoff(5), func(context.Context) error {
			calls++
			return &client.CompileError{Err: errors.New("undefined procedure")}
		})
		assert.True(t, client.IsCompileError(err), "unexpected error: %v", err)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after the last retry", func(t *testing.T) {
		calls := 0
		err := client.WithRetry(ctx, fastBackoff(2), func(context.Context) error {
			calls++
			return &client.TransportError{Op: "sync", Err: errors.New("connection refused")}
		})
		assert.True(t, client.IsTransportError(err), "unexpected error: %v", err)
		assert.Equal(t, 3, calls)
	})
}

func TestSyncWithRetry(t *testing.T) {
	ctrl := gomock.NewController(t)
	api := mocks.NewMockAPI(ctrl)
	registry := prometheus.NewRegistry()
	c, _ := newClient(t, api, client.WithMetrics(metrics.NewClientCollector(registry)))
	ctx := context.Background()

	expectContract(t, api)
	_, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	unavailable := status.Error(codes.Unavailable, "ledger unavailable")
	api.EXPECT().SyncState(gomock.Any(), gomock.Any()).Return(nil, unavailable).Times(2)
	api.EXPECT().SyncState(gomock.Any(), gomock.Any()).Return(&flow.StateUpdate{BlockHeight: 2}, nil)

	height, err := c.SyncWithRetry(ctx, fastBackoff(5))
	require.NoError(t, err)
	assert.Equal(t, uint64(2), height)
	assert.Equal(t, float64(2), metricValue(t, registry, "client_transactions_request_retries_total", map[string]string{
		metrics.LabelMethod: "sync",
	}))

	t.Run("exhausted", func(t *testing.T) {
		api.EXPECT().SyncState(gomock.Any(), gomock.Any()).Return(nil, unavailable).Times(3)

		_, err := c.SyncWithRetry(ctx, fastBackoff(2))
		assert.True(t, client.IsTransportError(err), "unexpected error: %v", err)

		synced, err := c.SyncHeight()
		require.NoError(t, err)
		assert.Equal(t, uint64(2), synced)
	})
}

func TestInvalidateLibrary(t *testing.T) {
	_, api := newLedger(t)
	registry := prometheus.NewRegistry()
	c, _ := newClient(t, api, client.WithMetrics(metrics.NewClientCollector(registry)))
	ctx := context.Background()

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	missesBefore := metricValue(t, registry, "client_cache_misses_total", map[string]string{
		metrics.LabelResource: metrics.ResourceLibrary,
	})

	c.InvalidateLibrary(contract.AccountID())

	operands, witness := calculatorInputs(1, 2, 3, 4)
	_, err = contract.Calculate(ctx, operands, witness)
	require.NoError(t, err)

	value, err := contract.GetResult(ctx)
	require.NoError(t, err)
	assert.Equal(t, flow.NewFelt(11), value.Last())

	assert.Equal(t, missesBefore+1, metricValue(t, registry, "client_cache_misses_total", map[string]string{
		metrics.LabelResource: metrics.ResourceLibrary,
	}))

	// recompiled and cached again
	_, err = contract.Calculate(ctx, operands, witness)
	require.NoError(t, err)
	assert.Equal(t, missesBefore+1, metricValue(t, registry, "client_cache_misses_total", map[string]string{
		metrics.LabelResource: metrics.ResourceLibrary,
	}))
}

package client_test

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/onflow/contract-client/contracts"
	"github.com/onflow/contract-client/module/metrics"
	"github.com/onflow/contract-client/sdk/client"
)

// metricValue sums the counter and gauge samples of the named metric family
// whose labels include labels.
func metricValue(t *testing.T, registry *prometheus.Registry, name string, labels map[string]string) float64 {
	families, err := registry.Gather()
	require.NoError(t, err)

	var total float64
	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metrics:
		for _, m := range family.GetMetric() {
			for _, pair := range m.GetLabel() {
				value, ok := labels[pair.GetName()]
				if ok && value != pair.GetValue() {
					continue metrics
				}
			}
			total += m.GetCounter().GetValue() + m.GetGauge().GetValue()
		}
	}
	return total
}

func TestClientMetrics(t *testing.T) {
	_, api := newLedger(t)
	registry := prometheus.NewRegistry()
	c, _ := newClient(t, api, client.WithMetrics(metrics.NewClientCollector(registry)))
	ctx := context.Background()

	contract, err := c.BuildContract(ctx, contracts.Calculator())
	require.NoError(t, err)

	for i := uint64(0); i < 2; i++ {
		operands, witness := calculatorInputs(i, 2, 3, 4)
		_, err = contract.Calculate(ctx, operands, witness)
		require.NoError(t, err)
	}

	height, err := c.Sync(ctx)
	require.NoError(t, err)

	assert.Equal(t, float64(1), metricValue(t, registry, "client_transactions_accounts_deployed_total", nil))
	assert.Equal(t, float64(2), metricValue(t, registry, "client_transactions_submitted_total", nil))
	assert.Equal(t, float64(2), metricValue(t, registry, "client_cache_hits_total", map[string]string{
		metrics.LabelResource: metrics.ResourceLibrary,
	}))
	assert.Equal(t, float64(height), metricValue(t, registry, "client_sync_block_height", nil))
}

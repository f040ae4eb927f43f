package flow_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/onflow/contract-client/model/flow"
)

func TestFeltArithmetic(t *testing.T) {
	t.Run("reduces into the field", func(t *testing.T) {
		assert.Equal(t, flow.Felt(0), flow.NewFelt(flow.Modulus))
		assert.Equal(t, flow.Felt(5), flow.NewFelt(flow.Modulus+5))
	})

	t.Run("wraps around the modulus", func(t *testing.T) {
		max := flow.NewFelt(flow.Modulus - 1)
		assert.Equal(t, flow.Felt(0), max.Add(1))
		assert.Equal(t, max, flow.Felt(0).Sub(1))
		assert.Equal(t, max, flow.Felt(1).Neg())
	})

	t.Run("x*a+y*b", func(t *testing.T) {
		x, y, a, b := flow.Felt(1), flow.Felt(2), flow.Felt(3), flow.Felt(4)
		assert.Equal(t, flow.Felt(11), x.Mul(a).Add(y.Mul(b)))
	})

	t.Run("add and sub are inverse", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			a := flow.NewFelt(rapid.Uint64().Draw(t, "a"))
			b := flow.NewFelt(rapid.Uint64().Draw(t, "b"))
			require.Equal(t, a, a.Add(b).Sub(b))
			require.Less(t, a.Mul(b).Uint64(), flow.Modulus)
		})
	})
}

func TestWord(t *testing.T) {
	w := flow.NewWord(0, 0, 0, 11)
	assert.Equal(t, flow.Felt(11), w.Last())
	assert.False(t, w.IsEmpty())
	assert.True(t, flow.EmptyWord.IsEmpty())
	assert.Equal(t, "[0, 0, 0, 11]", w.String())
	assert.Len(t, w.Bytes(), 32)
	assert.Equal(t, flow.NewWord(7, 0, 0, 0), flow.PrepareFeltVec(7))
}

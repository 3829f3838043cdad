package parallel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForVisitsEveryIndexOnce(t *testing.T) {
	const n = 1037
	hits := make([]int, n)
	require.NoError(t, For(context.Background(), n, func(i int) {
		hits[i]++
	}))
	for i, h := range hits {
		assert.Equal(t, 1, h, "index %d", i)
	}
}

func TestForEmpty(t *testing.T) {
	called := false
	require.NoError(t, For(context.Background(), 0, func(int) { called = true }))
	assert.False(t, called)
}

func TestForCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := For(ctx, 100, func(int) {})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReduceSum(t *testing.T) {
	const n = 5000
	sum, err := Reduce(context.Background(), n, 0,
		func(lo, hi int) int {
			s := 0
			for i := lo; i < hi; i++ {
				s += i
			}
			return s
		},
		func(a, b int) int { return a + b },
	)
	require.NoError(t, err)
	assert.Equal(t, n*(n-1)/2, sum)
}

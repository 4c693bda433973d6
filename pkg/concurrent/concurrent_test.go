package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEachRunsAll(t *testing.T) {
	var sum atomic.Int64
	err := Each(context.Background(), []int{1, 2, 3, 4}, func(_ context.Context, v int) error {
		sum.Add(int64(v))
		return nil
	})
	require.NoError(t, err)
	assert.EqualValues(t, 10, sum.Load())
}

func TestEachReturnsFirstError(t *testing.T) {
	boom := errors.New("boom")
	err := Each(context.Background(), []int{1, 2, 3}, func(_ context.Context, v int) error {
		if v == 2 {
			return boom
		}
		return nil
	})
	assert.ErrorIs(t, err, boom)
}

func TestMapPreservesOrder(t *testing.T) {
	out, err := Map(context.Background(), []int{3, 1, 2}, 2, func(_ context.Context, v int) (int, error) {
		return v * 10, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []int{30, 10, 20}, out)
}

func TestMapRespectsWorkerLimit(t *testing.T) {
	var inFlight, peak atomic.Int32
	_, err := Map(context.Background(), make([]int, 32), 3, func(_ context.Context, _ int) (struct{}, error) {
		n := inFlight.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		inFlight.Add(-1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	assert.LessOrEqual(t, peak.Load(), int32(3))
}

func TestParallelMust(t *testing.T) {
	var count atomic.Int32
	ParallelMust([]string{"a", "b", "c"}, func(string) { count.Add(1) })
	assert.EqualValues(t, 3, count.Load())
}

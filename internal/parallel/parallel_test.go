package parallel

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreads(t *testing.T) {
	assert.Equal(t, 1, Threads(0, 10))
	assert.Equal(t, 1, Threads(4, 0))
	assert.Equal(t, 3, Threads(8, 3))
	assert.Equal(t, 4, Threads(4, 100))
}

func TestSplit(t *testing.T) {
	assert.Nil(t, Split(0, 4))

	shards := Split(10, 4)
	require.Len(t, shards, 4)

	covered := 0
	prev := 0
	for _, r := range shards {
		assert.Equal(t, prev, r.Start)
		assert.Positive(t, r.Len())
		covered += r.Len()
		prev = r.End
	}
	assert.Equal(t, 10, covered)
	assert.Equal(t, 10, prev)

	assert.Equal(t, []Range{{0, 1}, {1, 2}}, Split(2, 16))
}

func TestRun_AllShards(t *testing.T) {
	out := make([]int, 100)
	err := Run(context.Background(), "fill", Split(len(out), 7), func(_ context.Context, _ int, r Range) error {
		for i := r.Start; i < r.End; i++ {
			out[i] = i * 2
		}
		return nil
	})
	require.NoError(t, err)
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
}

func TestRun_ErrorCancelsSiblings(t *testing.T) {
	boom := errors.New("boom")
	var canceled atomic.Int32

	err := Run(context.Background(), "stage-x", Split(4, 4), func(ctx context.Context, shard int, _ Range) error {
		if shard == 0 {
			return boom
		}
		<-ctx.Done()
		canceled.Add(1)
		return ctx.Err()
	})

	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "stage-x")
	assert.Equal(t, int32(3), canceled.Load())
}

func TestRun_Panic(t *testing.T) {
	err := Run(context.Background(), "panicky", Split(2, 2), func(_ context.Context, shard int, _ Range) error {
		if shard == 1 {
			panic("bad shard")
		}
		return nil
	})
	assert.ErrorIs(t, err, ErrWorkerPanic)
}

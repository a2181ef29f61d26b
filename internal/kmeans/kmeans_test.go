package kmeans

import (
	"context"
	"math/rand"
	"testing"

	"github.com/hupe1980/pkcc/codebook"
	"github.com/hupe1980/pkcc/internal/sampling"
	"github.com/hupe1980/pkcc/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uniformVectors(n int, v float32) [][]float32 {
	out := make([][]float32, n)
	for i := range out {
		out[i] = []float32{v, v, v, v}
	}
	return out
}

func TestTrain_UniformImageSingleCluster(t *testing.T) {
	img := testutil.UniformImage(8, 8, 128)
	rng := rand.New(rand.NewSource(1234))

	vectors, err := sampling.Collect(img, 2, 2, 1.0, rng)
	require.NoError(t, err)
	require.Len(t, vectors, 49)

	res, err := Train(vectors, Config{BlockWidth: 2, BlockHeight: 2, K: 1, MaxIterations: 10}, rng)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Codebook.Size())
	assert.Equal(t, []float32{128, 128, 128, 128}, res.Codebook.Centroid(0))
	// Nothing moves away from the initial all-zero assignment.
	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Converged)
}

func TestTrainParallel_UniformNeedsSecondPass(t *testing.T) {
	vectors := uniformVectors(49, 128)
	rng := rand.New(rand.NewSource(1234))

	res, err := TrainParallel(context.Background(), vectors, Config{BlockWidth: 2, BlockHeight: 2, K: 1, MaxIterations: 10}, rng, 4)
	require.NoError(t, err)

	assert.Equal(t, []float32{128, 128, 128, 128}, res.Codebook.Centroid(0))
	assert.Equal(t, 2, res.Iterations)
	assert.True(t, res.Converged)
}

// checkerboardVectors returns the nine overlapping 2x2 windows of a 4x4
// image made of 2x2 black and white blocks.
func checkerboardVectors(t *testing.T) [][]float32 {
	t.Helper()
	img := testutil.BlockCheckerboard(4, 4, 2, 2, 0, 255)
	vectors, err := sampling.Collect(img, 2, 2, 1.0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	require.Len(t, vectors, 9)
	return vectors
}

func TestTrain_CheckerboardTwoClusters(t *testing.T) {
	vectors := checkerboardVectors(t)

	// Seed centroids with window 0 (all black) and window 2 (all white).
	src := testutil.NewScriptedSource(testutil.IntDraw(0), testutil.IntDraw(2))
	res, err := Train(vectors, Config{BlockWidth: 2, BlockHeight: 2, K: 2, MaxIterations: 10}, rand.New(src))
	require.NoError(t, err)

	require.Equal(t, 2, res.Codebook.Size())
	assert.True(t, res.Converged)
	assert.Equal(t, 2, res.Iterations)
	assert.NotEqual(t, res.Codebook.Centroid(0), res.Codebook.Centroid(1))
	assert.Equal(t, []float32{255, 255, 255, 255}, res.Codebook.Centroid(1))

	black, err := res.Codebook.FindNearest([]float32{0, 0, 0, 0})
	require.NoError(t, err)
	white, err := res.Codebook.FindNearest([]float32{255, 255, 255, 255})
	require.NoError(t, err)
	assert.Equal(t, 0, black)
	assert.Equal(t, 1, white)

	// Two init draws, no empty cluster to re-seed.
	assert.Equal(t, 2, src.Consumed())
}

func TestTrain_DuplicateSeedsStopImmediately(t *testing.T) {
	vectors := [][]float32{{0}, {0}, {100}, {100}}

	// Both centroids start on vector 0: every vector ties to cluster 0,
	// which is also the initial assignment, so the first pass converges.
	src := testutil.NewScriptedSource(testutil.IntDraw(0), testutil.IntDraw(0))
	res, err := Train(vectors, Config{BlockWidth: 1, BlockHeight: 1, K: 2, MaxIterations: 10}, rand.New(src))
	require.NoError(t, err)

	assert.Equal(t, 1, res.Iterations)
	assert.True(t, res.Converged)
	assert.Equal(t, 2, src.Consumed())
}

func TestTrain_EmptyClusterReseeded(t *testing.T) {
	vectors := [][]float32{{0}, {0}, {100}, {100}}

	// Centroids 1 and 2 both start at 100; ties send vectors 2 and 3 to
	// cluster 1, leaving cluster 2 empty. Its re-seed draw picks vector 1.
	src := testutil.NewScriptedSource(
		testutil.IntDraw(0), testutil.IntDraw(2), testutil.IntDraw(3),
		testutil.IntDraw(1),
	)
	res, err := Train(vectors, Config{BlockWidth: 1, BlockHeight: 1, K: 3, MaxIterations: 10}, rand.New(src))
	require.NoError(t, err)

	assert.Equal(t, 4, src.Consumed())
	assert.Equal(t, 2, res.Iterations)
	assert.True(t, res.Converged)
	assert.Equal(t, []float32{0}, res.Codebook.Centroid(0))
	assert.Equal(t, []float32{100}, res.Codebook.Centroid(1))
	assert.Equal(t, []float32{0}, res.Codebook.Centroid(2))
}

func TestTrainParallel_EmptyClusterReseeded(t *testing.T) {
	vectors := [][]float32{{0}, {0}, {100}, {100}}

	// Duplicate initial centroids: every vector ties to cluster 0, leaving
	// cluster 1 empty until the re-seed draw picks vector 3.
	src := testutil.NewScriptedSource(testutil.IntDraw(0), testutil.IntDraw(0), testutil.IntDraw(3))
	res, err := TrainParallel(context.Background(), vectors, Config{BlockWidth: 1, BlockHeight: 1, K: 2, MaxIterations: 10}, rand.New(src), 2)
	require.NoError(t, err)

	assert.Equal(t, 3, src.Consumed())
	assert.True(t, res.Converged)
	assert.Equal(t, []float32{0}, res.Codebook.Centroid(0))
	assert.Equal(t, []float32{100}, res.Codebook.Centroid(1))
}

func TestTrain_MaxIterationsBound(t *testing.T) {
	rng := testutil.NewRNG(3)
	img := rng.NoiseImage(32, 32)
	vectors, err := sampling.Collect(img, 2, 2, 1.0, rand.New(rand.NewSource(3)))
	require.NoError(t, err)

	res, err := Train(vectors, Config{BlockWidth: 2, BlockHeight: 2, K: 64, MaxIterations: 3}, rand.New(rand.NewSource(3)))
	require.NoError(t, err)
	assert.LessOrEqual(t, res.Iterations, 3)

	for i := 0; i < res.Codebook.Size(); i++ {
		assert.Len(t, res.Codebook.Centroid(i), 4)
	}
}

func TestTrain_Errors(t *testing.T) {
	cfg := Config{BlockWidth: 2, BlockHeight: 2, K: 2, MaxIterations: 5}
	rng := rand.New(rand.NewSource(1))

	_, err := Train(nil, cfg, rng)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	_, err = TrainParallel(context.Background(), nil, cfg, rng, 4)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)

	bad := []Config{
		{BlockWidth: 0, BlockHeight: 2, K: 2, MaxIterations: 5},
		{BlockWidth: 2, BlockHeight: 2, K: 0, MaxIterations: 5},
		{BlockWidth: 2, BlockHeight: 2, K: 257, MaxIterations: 5},
		{BlockWidth: 2, BlockHeight: 2, K: 2, MaxIterations: 0},
	}
	for _, c := range bad {
		_, err := Train(uniformVectors(4, 1), c, rng)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%+v", c)
	}
}

func TestTrainParallel_DimensionMismatchFailsShard(t *testing.T) {
	vectors := uniformVectors(100, 7)
	vectors[77] = []float32{1, 2, 3}

	// Every init draw picks vector 0.
	src := testutil.NewScriptedSource()
	_, err := TrainParallel(context.Background(), vectors, Config{BlockWidth: 2, BlockHeight: 2, K: 4, MaxIterations: 5}, rand.New(src), 4)

	var dm *codebook.ErrDimensionMismatch
	require.ErrorAs(t, err, &dm)
	assert.Equal(t, 3, dm.Actual)
	assert.Contains(t, err.Error(), "kmeans assignment")
}

func TestTrainParallel_MatchesSequential(t *testing.T) {
	img := testutil.NewRNG(11).PatternImage(64, 64, 2, 2, 12, 8)

	collect := func() [][]float32 {
		v, err := sampling.Collect(img, 2, 2, 0.5, rand.New(rand.NewSource(1234)))
		require.NoError(t, err)
		return v
	}
	cfg := Config{BlockWidth: 2, BlockHeight: 2, K: 16, MaxIterations: 20}

	seq, err := Train(collect(), cfg, rand.New(rand.NewSource(99)))
	require.NoError(t, err)

	for _, threads := range []int{1, 4} {
		par, err := TrainParallel(context.Background(), collect(), cfg, rand.New(rand.NewSource(99)), threads)
		require.NoError(t, err)

		assert.InDelta(t, seq.Iterations, par.Iterations, 1, "threads=%d", threads)

		vectors := collect()
		dSeq, err := seq.Codebook.MeanDistortion(vectors)
		require.NoError(t, err)
		dPar, err := par.Codebook.MeanDistortion(vectors)
		require.NoError(t, err)
		assert.InEpsilon(t, dSeq, dPar, 1e-3, "threads=%d", threads)
	}
}

func TestTrainParallel_ThreadCountIndependent(t *testing.T) {
	img := testutil.NewRNG(5).PatternImage(48, 48, 2, 2, 6, 4)
	vectors, err := sampling.Collect(img, 2, 2, 1.0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	cfg := Config{BlockWidth: 2, BlockHeight: 2, K: 8, MaxIterations: 15}

	one, err := TrainParallel(context.Background(), vectors, cfg, rand.New(rand.NewSource(7)), 1)
	require.NoError(t, err)
	four, err := TrainParallel(context.Background(), vectors, cfg, rand.New(rand.NewSource(7)), 4)
	require.NoError(t, err)

	// Integer pixel sums are exact in float64, so the reduction order does not matter here.
	assert.Equal(t, one.Iterations, four.Iterations)
	for i := 0; i < one.Codebook.Size(); i++ {
		assert.Equal(t, one.Codebook.Centroid(i), four.Codebook.Centroid(i))
	}
}

func TestTrainParallel_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := TrainParallel(ctx, uniformVectors(10, 1), Config{BlockWidth: 2, BlockHeight: 2, K: 2, MaxIterations: 5}, rand.New(rand.NewSource(1)), 2)
	assert.ErrorIs(t, err, context.Canceled)
}

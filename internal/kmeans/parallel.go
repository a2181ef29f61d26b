package kmeans

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/hupe1980/pkcc/codebook"
	"github.com/hupe1980/pkcc/internal/parallel"
)

// cancelCheckInterval is how many vectors a shard processes between
// context checks.
const cancelCheckInterval = 1024

type shardState struct {
	changed bool
	acc     *accumulator
}

// TrainParallel runs Lloyd's algorithm with the assignment step sharded
// over max(1, min(parallelism, len(vectors))) goroutines.
//
// Each shard only reads the shared centroids and writes its own slice of
// the assignment table plus a private accumulator. After the join the
// driver ORs the change flags, sums the accumulators in shard order and
// applies the same mean and re-seed policy as Train. Assignments start
// unset, so "no change" is only accepted as convergence after the first
// pass. A vector of the wrong length fails its shard and the whole call.
func TrainParallel(ctx context.Context, vectors [][]float32, cfg Config, rng *rand.Rand, parallelism int) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, ErrEmptyTrainingSet
	}

	dim := cfg.dim()
	n := len(vectors)
	shards := parallel.Split(n, parallelism)
	states := make([]shardState, len(shards))
	for i := range states {
		states[i].acc = newAccumulator(cfg.K, dim)
	}

	centroids := initCentroids(vectors, cfg.K, rng)
	for i, c := range centroids {
		if len(c) != dim {
			return nil, fmt.Errorf("kmeans: initial centroid %d: %w", i, &codebook.ErrDimensionMismatch{Expected: dim, Actual: len(c)})
		}
	}
	assignments := make([]int, n)
	for i := range assignments {
		assignments[i] = -1
	}
	total := newAccumulator(cfg.K, dim)

	res := &Result{}
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		res.Iterations = iter + 1

		current := centroids
		err := parallel.Run(ctx, "kmeans assignment", shards, func(ctx context.Context, shard int, r parallel.Range) error {
			st := &states[shard]
			st.changed = false
			st.acc.reset()
			for i := r.Start; i < r.End; i++ {
				if (i-r.Start)%cancelCheckInterval == 0 {
					if err := ctx.Err(); err != nil {
						return err
					}
				}
				v := vectors[i]
				if len(v) != dim {
					return &codebook.ErrDimensionMismatch{Expected: dim, Actual: len(v)}
				}
				best := codebook.Nearest(current, v)
				if assignments[i] != best {
					assignments[i] = best
					st.changed = true
				}
				st.acc.add(best, v)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}

		changed := false
		total.reset()
		for i := range states {
			changed = changed || states[i].changed
			total.merge(states[i].acc)
		}
		if !changed && iter > 0 {
			res.Converged = true
			break
		}
		centroids = total.centroids(vectors, rng)
	}

	cb, err := codebook.New(cfg.BlockWidth, cfg.BlockHeight, centroids)
	if err != nil {
		return nil, err
	}
	res.Codebook = cb
	return res, nil
}

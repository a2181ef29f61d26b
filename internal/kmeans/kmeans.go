package kmeans

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/hupe1980/pkcc/codebook"
)

var (
	// ErrEmptyTrainingSet is returned when there are no training vectors.
	ErrEmptyTrainingSet = errors.New("kmeans: no training vectors")
	// ErrInvalidConfig is returned for out-of-range training parameters.
	ErrInvalidConfig = errors.New("kmeans: invalid config")
)

// Config holds the training parameters.
type Config struct {
	BlockWidth    int
	BlockHeight   int
	K             int
	MaxIterations int
}

func (c Config) validate() error {
	if c.BlockWidth <= 0 || c.BlockHeight <= 0 {
		return fmt.Errorf("%w: block size %dx%d", ErrInvalidConfig, c.BlockWidth, c.BlockHeight)
	}
	if c.K < 1 || c.K > codebook.MaxSize {
		return fmt.Errorf("%w: k=%d not in [1,%d]", ErrInvalidConfig, c.K, codebook.MaxSize)
	}
	if c.MaxIterations < 1 {
		return fmt.Errorf("%w: max iterations %d", ErrInvalidConfig, c.MaxIterations)
	}
	return nil
}

func (c Config) dim() int { return c.BlockWidth * c.BlockHeight }

// Result is the outcome of a training run.
type Result struct {
	Codebook *codebook.Codebook
	// Iterations is the number of assignment passes performed.
	Iterations int
	// Converged reports whether training stopped because no assignment changed.
	Converged bool
}

// Train runs Lloyd's algorithm on a single goroutine.
//
// Assignments start at cluster 0, so training may stop on the first pass
// if every vector is already nearest to centroid 0.
func Train(vectors [][]float32, cfg Config, rng *rand.Rand) (*Result, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, ErrEmptyTrainingSet
	}
	dim := cfg.dim()
	for i, v := range vectors {
		if len(v) != dim {
			return nil, fmt.Errorf("kmeans: vector %d: %w", i, &codebook.ErrDimensionMismatch{Expected: dim, Actual: len(v)})
		}
	}

	n := len(vectors)
	centroids := initCentroids(vectors, cfg.K, rng)
	assignments := make([]int, n)
	acc := newAccumulator(cfg.K, dim)

	res := &Result{}
	for iter := 0; iter < cfg.MaxIterations; iter++ {
		res.Iterations = iter + 1

		changed := false
		for i, v := range vectors {
			best := codebook.Nearest(centroids, v)
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			res.Converged = true
			break
		}

		acc.reset()
		for i, v := range vectors {
			acc.add(assignments[i], v)
		}
		centroids = acc.centroids(vectors, rng)
	}

	cb, err := codebook.New(cfg.BlockWidth, cfg.BlockHeight, centroids)
	if err != nil {
		return nil, err
	}
	res.Codebook = cb
	return res, nil
}

// initCentroids seeds k centroids with copies of randomly drawn vectors.
// Draws are with replacement.
func initCentroids(vectors [][]float32, k int, rng *rand.Rand) [][]float32 {
	centroids := make([][]float32, k)
	for i := range centroids {
		src := vectors[rng.Intn(len(vectors))]
		centroids[i] = append([]float32(nil), src...)
	}
	return centroids
}

// accumulator collects per-cluster member counts and component sums.
type accumulator struct {
	k      int
	dim    int
	counts []int
	sums   []float64
}

func newAccumulator(k, dim int) *accumulator {
	return &accumulator{
		k:      k,
		dim:    dim,
		counts: make([]int, k),
		sums:   make([]float64, k*dim),
	}
}

func (a *accumulator) reset() {
	clear(a.counts)
	clear(a.sums)
}

func (a *accumulator) add(cluster int, v []float32) {
	a.counts[cluster]++
	s := a.sums[cluster*a.dim : (cluster+1)*a.dim]
	for j, x := range v {
		s[j] += float64(x)
	}
}

// merge adds the statistics of other into a.
func (a *accumulator) merge(other *accumulator) {
	for c, n := range other.counts {
		a.counts[c] += n
	}
	for j, s := range other.sums {
		a.sums[j] += s
	}
}

// centroids turns the statistics into new centroids. Clusters without
// members are re-seeded from a random training vector, visiting clusters
// in ascending order.
func (a *accumulator) centroids(vectors [][]float32, rng *rand.Rand) [][]float32 {
	out := make([][]float32, a.k)
	for c := range out {
		if a.counts[c] == 0 {
			src := vectors[rng.Intn(len(vectors))]
			out[c] = append([]float32(nil), src...)
			continue
		}
		inv := 1 / float64(a.counts[c])
		s := a.sums[c*a.dim : (c+1)*a.dim]
		cv := make([]float32, a.dim)
		for j := range cv {
			cv[j] = float32(s[j] * inv)
		}
		out[c] = cv
	}
	return out
}

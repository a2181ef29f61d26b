// Package codebook holds the learned set of block centroids and the
// nearest-neighbor search used to quantize blocks.
package codebook

import (
	"errors"
	"fmt"
	"math"
)

// MaxSize is the largest codebook the single-byte index format can address.
const MaxSize = 256

// ErrInvalidCodebook is returned when a codebook cannot be constructed.
var ErrInvalidCodebook = errors.New("codebook: invalid codebook")

// ErrDimensionMismatch indicates a vector whose length differs from the
// codebook's block vector length.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("codebook: dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Codebook is a fixed set of centroids, each a flat row-major block of
// pixel intensities. It is immutable after construction and safe for
// concurrent reads.
type Codebook struct {
	blockWidth  int
	blockHeight int
	dim         int
	centroids   [][]float32
}

// New creates a codebook for blockWidth x blockHeight blocks.
// The centroid slices are retained, not copied.
func New(blockWidth, blockHeight int, centroids [][]float32) (*Codebook, error) {
	if blockWidth <= 0 || blockHeight <= 0 {
		return nil, fmt.Errorf("%w: block size %dx%d", ErrInvalidCodebook, blockWidth, blockHeight)
	}
	if len(centroids) == 0 {
		return nil, fmt.Errorf("%w: no centroids", ErrInvalidCodebook)
	}
	if len(centroids) > MaxSize {
		return nil, fmt.Errorf("%w: %d centroids exceeds %d", ErrInvalidCodebook, len(centroids), MaxSize)
	}
	dim := blockWidth * blockHeight
	for i, c := range centroids {
		if len(c) != dim {
			return nil, fmt.Errorf("%w: centroid %d: %w", ErrInvalidCodebook, i, &ErrDimensionMismatch{Expected: dim, Actual: len(c)})
		}
	}
	return &Codebook{
		blockWidth:  blockWidth,
		blockHeight: blockHeight,
		dim:         dim,
		centroids:   centroids,
	}, nil
}

// Size returns the number of centroids.
func (cb *Codebook) Size() int { return len(cb.centroids) }

// BlockWidth returns the block width in pixels.
func (cb *Codebook) BlockWidth() int { return cb.blockWidth }

// BlockHeight returns the block height in pixels.
func (cb *Codebook) BlockHeight() int { return cb.blockHeight }

// VectorLength returns blockWidth*blockHeight.
func (cb *Codebook) VectorLength() int { return cb.dim }

// Centroid returns centroid i. The slice must not be modified.
func (cb *Codebook) Centroid(i int) []float32 { return cb.centroids[i] }

// FindNearest returns the index of the centroid with the smallest squared
// Euclidean distance to v. Ties go to the lowest index.
func (cb *Codebook) FindNearest(v []float32) (int, error) {
	if len(v) != cb.dim {
		return -1, &ErrDimensionMismatch{Expected: cb.dim, Actual: len(v)}
	}
	return Nearest(cb.centroids, v), nil
}

// Nearest scans centroids linearly and returns the index of the closest
// one to v. The strict comparison keeps the first of equally close
// centroids. Callers guarantee matching lengths.
func Nearest(centroids [][]float32, v []float32) int {
	best := 0
	bestDist := float32(math.Inf(1))
	for i, c := range centroids {
		d := SquaredL2(v, c)
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// SquaredL2 returns the squared Euclidean distance between a and b.
func SquaredL2(a, b []float32) float32 {
	var sum float32
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return sum
}

// QuantizeComponent rounds half up and clamps to [0, 255].
func QuantizeComponent(v float32) byte {
	g := math.Floor(float64(v) + 0.5)
	if g < 0 {
		return 0
	}
	if g > 255 {
		return 255
	}
	return byte(g)
}

// Quantize returns every centroid rounded and clamped to bytes, in the
// layout the container stores: size * VectorLength bytes.
func (cb *Codebook) Quantize() []byte {
	out := make([]byte, 0, len(cb.centroids)*cb.dim)
	for _, c := range cb.centroids {
		for _, v := range c {
			out = append(out, QuantizeComponent(v))
		}
	}
	return out
}

// MeanDistortion returns the average squared distance from each vector
// to its nearest centroid.
func (cb *Codebook) MeanDistortion(vectors [][]float32) (float64, error) {
	if len(vectors) == 0 {
		return 0, nil
	}
	var total float64
	for _, v := range vectors {
		if len(v) != cb.dim {
			return 0, &ErrDimensionMismatch{Expected: cb.dim, Actual: len(v)}
		}
		total += float64(SquaredL2(v, cb.centroids[Nearest(cb.centroids, v)]))
	}
	return total / float64(len(vectors)), nil
}

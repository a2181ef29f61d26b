package testutil

import (
	"math/rand"
	"sync"

	"github.com/hupe1980/pkcc/model"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// NoiseImage returns an image with independent uniform pixels.
func (r *RNG) NoiseImage(width, height int) *model.GrayscaleImage {
	r.mu.Lock()
	defer r.mu.Unlock()

	img := model.NewBlankImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = byte(r.rand.Intn(256))
	}
	return img
}

// PatternImage tiles the image with blockWidth x blockHeight blocks, each
// a copy of one of `patterns` random block patterns perturbed by up to
// ±noise per pixel. Such images have a natural codebook of size `patterns`.
func (r *RNG) PatternImage(width, height, blockWidth, blockHeight, patterns, noise int) *model.GrayscaleImage {
	r.mu.Lock()
	defer r.mu.Unlock()

	dim := blockWidth * blockHeight
	bank := make([][]int, patterns)
	for p := range bank {
		bank[p] = make([]int, dim)
		for j := range bank[p] {
			bank[p][j] = r.rand.Intn(256)
		}
	}

	img := model.NewBlankImage(width, height)
	for by := 0; by*blockHeight < height; by++ {
		for bx := 0; bx*blockWidth < width; bx++ {
			pat := bank[r.rand.Intn(patterns)]
			for dy := 0; dy < blockHeight; dy++ {
				for dx := 0; dx < blockWidth; dx++ {
					x, y := bx*blockWidth+dx, by*blockHeight+dy
					if x >= width || y >= height {
						continue
					}
					v := pat[dy*blockWidth+dx]
					if noise > 0 {
						v += r.rand.Intn(2*noise+1) - noise
					}
					img.Set(x, y, clamp(v))
				}
			}
		}
	}
	return img
}

// UniformImage returns an image filled with v.
func UniformImage(width, height int, v byte) *model.GrayscaleImage {
	img := model.NewBlankImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// GradientImage returns an image whose pixel (x, y) is (x + y*width) mod 256.
func GradientImage(width, height int) *model.GrayscaleImage {
	img := model.NewBlankImage(width, height)
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	return img
}

// BlockCheckerboard alternates lo and hi blocks of blockWidth x blockHeight,
// starting with lo in the top-left corner.
func BlockCheckerboard(width, height, blockWidth, blockHeight int, lo, hi byte) *model.GrayscaleImage {
	img := model.NewBlankImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := lo
			if (x/blockWidth+y/blockHeight)%2 == 1 {
				v = hi
			}
			img.Set(x, y, v)
		}
	}
	return img
}

func clamp(v int) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}

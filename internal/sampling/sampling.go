// Package sampling extracts training vectors for codebook learning.
package sampling

import (
	"errors"
	"fmt"
	"math/rand"

	"github.com/hupe1980/pkcc/model"
)

var (
	// ErrInvalidBlockSize is returned for non-positive block dimensions.
	ErrInvalidBlockSize = errors.New("sampling: block width and height must be > 0")
	// ErrInvalidSampleRate is returned for a sample rate outside (0, 1].
	ErrInvalidSampleRate = errors.New("sampling: sample rate must be in (0,1]")
)

// Collect slides a blockWidth x blockHeight window over img with stride 1
// in both axes and keeps each window with probability sampleRate.
//
// Window positions are visited row by row; exactly one rng.Float64 draw is
// consumed per position, and the window is kept when the draw is
// <= sampleRate. Each vector is the window's pixels in row-major order.
func Collect(img *model.GrayscaleImage, blockWidth, blockHeight int, sampleRate float64, rng *rand.Rand) ([][]float32, error) {
	if blockWidth <= 0 || blockHeight <= 0 {
		return nil, fmt.Errorf("%w: got %dx%d", ErrInvalidBlockSize, blockWidth, blockHeight)
	}
	if !(sampleRate > 0 && sampleRate <= 1) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidSampleRate, sampleRate)
	}

	dim := blockWidth * blockHeight
	positions := max(0, img.Width-blockWidth+1) * max(0, img.Height-blockHeight+1)
	vectors := make([][]float32, 0, int(float64(positions)*sampleRate)+1)

	for y := 0; y+blockHeight <= img.Height; y++ {
		for x := 0; x+blockWidth <= img.Width; x++ {
			if rng.Float64() > sampleRate {
				continue
			}
			v := make([]float32, dim)
			t := 0
			for dy := 0; dy < blockHeight; dy++ {
				row := img.Pix[(y+dy)*img.Width+x:]
				for dx := 0; dx < blockWidth; dx++ {
					v[t] = float32(row[dx])
					t++
				}
			}
			vectors = append(vectors, v)
		}
	}
	return vectors, nil
}

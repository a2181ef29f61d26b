package sampling

import (
	"math/rand"
	"testing"

	"github.com/hupe1980/pkcc/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gradient(w, h int) *model.GrayscaleImage {
	img := model.NewBlankImage(w, h)
	for i := range img.Pix {
		img.Pix[i] = byte(i)
	}
	return img
}

func TestCollect_FullRate(t *testing.T) {
	img := gradient(4, 3)

	vectors, err := Collect(img, 2, 2, 1.0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)

	// (4-2+1) * (3-2+1) overlapping windows.
	require.Len(t, vectors, 6)
	assert.Equal(t, []float32{0, 1, 4, 5}, vectors[0])
	assert.Equal(t, []float32{1, 2, 5, 6}, vectors[1])
	assert.Equal(t, []float32{6, 7, 10, 11}, vectors[5])
}

func TestCollect_OneDrawPerPosition(t *testing.T) {
	img := gradient(5, 5)
	rng := rand.New(rand.NewSource(99))

	_, err := Collect(img, 2, 2, 0.5, rng)
	require.NoError(t, err)

	// 16 positions consumed 16 draws.
	ref := rand.New(rand.NewSource(99))
	for i := 0; i < 16; i++ {
		ref.Float64()
	}
	assert.Equal(t, ref.Float64(), rng.Float64())
}

func TestCollect_Reproducible(t *testing.T) {
	img := gradient(16, 16)

	a, err := Collect(img, 2, 2, 0.25, rand.New(rand.NewSource(1234)))
	require.NoError(t, err)
	b, err := Collect(img, 2, 2, 0.25, rand.New(rand.NewSource(1234)))
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Less(t, len(a), 15*15)
}

func TestCollect_WindowLargerThanImage(t *testing.T) {
	vectors, err := Collect(gradient(1, 1), 2, 2, 1.0, rand.New(rand.NewSource(1)))
	require.NoError(t, err)
	assert.Empty(t, vectors)
}

func TestCollect_InvalidArguments(t *testing.T) {
	img := gradient(4, 4)
	rng := rand.New(rand.NewSource(1))

	_, err := Collect(img, 0, 2, 1.0, rng)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	_, err = Collect(img, 2, -1, 1.0, rng)
	assert.ErrorIs(t, err, ErrInvalidBlockSize)

	for _, rate := range []float64{0, -0.1, 1.01} {
		_, err = Collect(img, 2, 2, rate, rng)
		assert.ErrorIs(t, err, ErrInvalidSampleRate, "rate %g", rate)
	}
}

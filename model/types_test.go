package model

import (
	"testing"

	"github.com/hupe1980/pkcc/codebook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGrayscaleImage(t *testing.T) {
	img, err := NewGrayscaleImage(3, 2, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)
	assert.Equal(t, byte(6), img.At(2, 1))

	img.Set(0, 1, 42)
	assert.Equal(t, byte(42), img.Pix[3])

	_, err = NewGrayscaleImage(3, 2, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrInvalidImage)

	_, err = NewGrayscaleImage(-1, 0, nil)
	assert.ErrorIs(t, err, ErrInvalidImage)
}

func TestEncodedImage_Geometry(t *testing.T) {
	e := &EncodedImage{Width: 7, Height: 5, BlockWidth: 2, BlockHeight: 2}
	assert.Equal(t, 3, e.BlocksX())
	assert.Equal(t, 2, e.BlocksY())
	assert.Equal(t, 6, e.TotalBlocks())
}

func TestEncodedImage_Validate(t *testing.T) {
	cb, err := codebook.New(2, 2, [][]float32{{0, 0, 0, 0}, {1, 1, 1, 1}})
	require.NoError(t, err)

	e := &EncodedImage{Width: 4, Height: 2, BlockWidth: 2, BlockHeight: 2, Codebook: cb, Indices: []uint32{0, 1}}
	require.NoError(t, e.Validate())

	e.Indices = []uint32{0, 2}
	assert.ErrorIs(t, e.Validate(), ErrIndexOutOfRange)

	e.Indices = []uint32{0}
	assert.ErrorIs(t, e.Validate(), ErrInvalidImage)

	e.Indices = []uint32{0, 1}
	e.BlockWidth = 1
	assert.ErrorIs(t, e.Validate(), ErrInvalidImage)
}

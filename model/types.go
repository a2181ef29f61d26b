package model

import (
	"errors"
	"fmt"

	"github.com/hupe1980/pkcc/codebook"
)

var (
	// ErrInvalidImage is returned for images whose buffer does not match their dimensions.
	ErrInvalidImage = errors.New("model: invalid image")
	// ErrIndexOutOfRange is returned when a block index does not address a codebook entry.
	ErrIndexOutOfRange = errors.New("model: block index out of codebook range")
)

// GrayscaleImage is an 8-bit grayscale image stored row-major.
type GrayscaleImage struct {
	Width  int
	Height int
	Pix    []byte
}

// NewGrayscaleImage wraps pix without copying.
func NewGrayscaleImage(width, height int, pix []byte) (*GrayscaleImage, error) {
	if width < 0 || height < 0 {
		return nil, fmt.Errorf("%w: negative size %dx%d", ErrInvalidImage, width, height)
	}
	if len(pix) != width*height {
		return nil, fmt.Errorf("%w: %d pixels for %dx%d", ErrInvalidImage, len(pix), width, height)
	}
	return &GrayscaleImage{Width: width, Height: height, Pix: pix}, nil
}

// NewBlankImage allocates a zeroed image.
func NewBlankImage(width, height int) *GrayscaleImage {
	return &GrayscaleImage{Width: width, Height: height, Pix: make([]byte, width*height)}
}

// At returns the intensity at (x, y).
func (img *GrayscaleImage) At(x, y int) byte {
	return img.Pix[y*img.Width+x]
}

// Set stores the intensity at (x, y).
func (img *GrayscaleImage) Set(x, y int, v byte) {
	img.Pix[y*img.Width+x] = v
}

// EncodedImage is an image expressed as one codebook index per block.
type EncodedImage struct {
	Width       int
	Height      int
	BlockWidth  int
	BlockHeight int
	Codebook    *codebook.Codebook
	// Indices holds one entry per block in row-major block order.
	Indices []uint32
}

// BlocksX returns the number of full block columns.
func (e *EncodedImage) BlocksX() int {
	if e.BlockWidth <= 0 {
		return 0
	}
	return e.Width / e.BlockWidth
}

// BlocksY returns the number of full block rows.
func (e *EncodedImage) BlocksY() int {
	if e.BlockHeight <= 0 {
		return 0
	}
	return e.Height / e.BlockHeight
}

// TotalBlocks returns BlocksX()*BlocksY().
func (e *EncodedImage) TotalBlocks() int {
	return e.BlocksX() * e.BlocksY()
}

// Validate checks the structural invariants of e.
func (e *EncodedImage) Validate() error {
	if e == nil {
		return fmt.Errorf("%w: nil encoded image", ErrInvalidImage)
	}
	if e.Codebook == nil {
		return fmt.Errorf("%w: missing codebook", ErrInvalidImage)
	}
	if e.Width < 0 || e.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrInvalidImage, e.Width, e.Height)
	}
	if e.BlockWidth != e.Codebook.BlockWidth() || e.BlockHeight != e.Codebook.BlockHeight() {
		return fmt.Errorf("%w: block size %dx%d does not match codebook %dx%d", ErrInvalidImage,
			e.BlockWidth, e.BlockHeight, e.Codebook.BlockWidth(), e.Codebook.BlockHeight())
	}
	if len(e.Indices) != e.TotalBlocks() {
		return fmt.Errorf("%w: %d indices for %d blocks", ErrInvalidImage, len(e.Indices), e.TotalBlocks())
	}
	size := uint32(e.Codebook.Size())
	for i, idx := range e.Indices {
		if idx >= size {
			return fmt.Errorf("%w: block %d has index %d, codebook size %d", ErrIndexOutOfRange, i, idx, size)
		}
	}
	return nil
}

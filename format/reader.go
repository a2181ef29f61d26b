package format

import (
	"bufio"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/pkcc/codebook"
	"github.com/hupe1980/pkcc/internal/bitstream"
	"github.com/hupe1980/pkcc/internal/huffman"
	"github.com/hupe1980/pkcc/model"
)

// maxPrealloc caps the index slice capacity taken from an untrusted header.
const maxPrealloc = 1 << 20

// Read parses a container. A version other than Version is logged as a
// warning and the stream is read with the current layout. Images larger
// than the WithMaxPixels limit fail with ErrInvalidHeader.
func Read(r io.Reader, opts ...Option) (*model.EncodedImage, error) {
	o := applyOptions(opts)
	br := bufio.NewReader(r)

	h, err := ReadHeader(br)
	if err != nil {
		return nil, err
	}
	if pixels := int64(h.Width) * int64(h.Height); pixels > o.maxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrInvalidHeader, h.Width, h.Height, o.maxPixels)
	}
	if h.Version != Version {
		o.logger.Warn("container version mismatch, reading with current layout",
			"file_version", h.Version,
			"codec_version", Version,
		)
	}

	dim := h.VectorLength()
	raw := make([]byte, h.CodebookSize*dim)
	if _, err := io.ReadFull(br, raw); err != nil {
		return nil, truncated("codebook", err)
	}
	centroids := make([][]float32, h.CodebookSize)
	for i := range centroids {
		c := make([]float32, dim)
		for j, b := range raw[i*dim : (i+1)*dim] {
			c[j] = float32(b)
		}
		centroids[i] = c
	}
	cb, err := codebook.New(h.BlockWidth, h.BlockHeight, centroids)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	lengths := make([]uint8, h.CodebookSize)
	if _, err := io.ReadFull(br, lengths); err != nil {
		return nil, truncated("code lengths", err)
	}

	enc := &model.EncodedImage{
		Width:       h.Width,
		Height:      h.Height,
		BlockWidth:  h.BlockWidth,
		BlockHeight: h.BlockHeight,
		Codebook:    cb,
	}
	total := h.TotalBlocks()
	if total == 0 {
		enc.Indices = []uint32{}
		return enc, nil
	}

	indices, err := readIndices(br, lengths, total)
	if err != nil {
		return nil, err
	}
	enc.Indices = indices
	return enc, nil
}

// readIndices decodes exactly total symbols; trailing pad bits are ignored.
// A code length table that cannot form a prefix code is a header error.
func readIndices(br *bufio.Reader, lengths []uint8, total int) ([]uint32, error) {
	codes, err := huffman.BuildCanonicalCodes(lengths)
	if err != nil {
		return nil, fmt.Errorf("%w: code lengths: %w", ErrInvalidHeader, err)
	}
	tree, err := huffman.BuildDecodingTree(lengths, codes)
	if err != nil {
		return nil, fmt.Errorf("%w: code lengths: %w", ErrInvalidHeader, err)
	}

	bits := bitstream.NewReader(br)
	indices := make([]uint32, 0, min(total, maxPrealloc))
	for i := 0; i < total; i++ {
		sym, err := huffman.DecodeSymbol(bits, tree)
		if err != nil {
			if errors.Is(err, huffman.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("%w: block %d of %d: %w", ErrTruncated, i, total, err)
			}
			return nil, fmt.Errorf("format: block %d: %w", i, err)
		}
		indices = append(indices, uint32(sym))
	}
	return indices, nil
}

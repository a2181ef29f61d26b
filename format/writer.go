package format

import (
	"bufio"
	"fmt"
	"io"

	"github.com/hupe1980/pkcc/internal/bitstream"
	"github.com/hupe1980/pkcc/internal/huffman"
	"github.com/hupe1980/pkcc/model"
)

// Write serializes enc to w. The codebook is stored byte-quantized, so a
// round trip through Read rounds centroids to integers.
func Write(w io.Writer, enc *model.EncodedImage, opts ...Option) error {
	o := applyOptions(opts)

	if err := enc.Validate(); err != nil {
		return err
	}
	cb := enc.Codebook
	h, err := headerFor(enc.Width, enc.Height, enc.BlockWidth, enc.BlockHeight, cb.Size())
	if err != nil {
		return err
	}

	lengths := make([]uint8, cb.Size())
	if len(enc.Indices) > 0 {
		freq, err := huffman.Frequencies(enc.Indices, cb.Size())
		if err != nil {
			return err
		}
		if lengths, err = huffman.BuildCodeLengths(freq); err != nil {
			return err
		}
	}

	bw := bufio.NewWriter(w)
	if _, err := bw.Write(h.marshal()); err != nil {
		return fmt.Errorf("format: writing header: %w", err)
	}
	if _, err := bw.Write(cb.Quantize()); err != nil {
		return fmt.Errorf("format: writing codebook: %w", err)
	}
	if _, err := bw.Write(lengths); err != nil {
		return fmt.Errorf("format: writing code lengths: %w", err)
	}

	if len(enc.Indices) > 0 {
		encoder, err := huffman.NewEncoder(lengths)
		if err != nil {
			return err
		}
		bits := bitstream.NewWriter(bw)
		if err := encoder.EncodeAll(bits, enc.Indices); err != nil {
			return fmt.Errorf("format: writing indices: %w", err)
		}
		if err := bits.Close(); err != nil {
			return fmt.Errorf("format: writing indices: %w", err)
		}
		o.logger.Debug("indices coded",
			"blocks", len(enc.Indices),
			"bits", bits.BitsWritten(),
		)
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("format: flush: %w", err)
	}
	return nil
}

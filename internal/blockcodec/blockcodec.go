// Package blockcodec maps images to per-block codebook indices and back.
//
// Blocks tile the image from the top-left corner; only full blocks are
// coded, so a right or bottom margin narrower than a block is dropped on
// encode and left zero on decode.
package blockcodec

import (
	"context"
	"fmt"

	"github.com/hupe1980/pkcc/codebook"
	"github.com/hupe1980/pkcc/internal/parallel"
	"github.com/hupe1980/pkcc/model"
)

// ErrIndexOutOfRange is returned when an encoded index does not address a
// codebook entry.
var ErrIndexOutOfRange = model.ErrIndexOutOfRange

// Encode replaces every full block of img with the index of its nearest
// codebook centroid. Indices are in row-major block order.
func Encode(img *model.GrayscaleImage, cb *codebook.Codebook) (*model.EncodedImage, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	enc := newEncoded(img, cb)
	buf := make([]float32, cb.VectorLength())
	for by := 0; by < enc.BlocksY(); by++ {
		if err := encodeRow(img, cb, enc, by, buf); err != nil {
			return nil, err
		}
	}
	return enc, nil
}

// EncodeParallel is Encode with block rows sharded over
// max(1, min(parallelism, blockRows)) goroutines. It produces the same
// indices as Encode.
func EncodeParallel(ctx context.Context, img *model.GrayscaleImage, cb *codebook.Codebook, parallelism int) (*model.EncodedImage, error) {
	if err := checkImage(img); err != nil {
		return nil, err
	}
	enc := newEncoded(img, cb)
	if enc.TotalBlocks() == 0 {
		return enc, nil
	}
	shards := parallel.Split(enc.BlocksY(), parallelism)
	err := parallel.Run(ctx, "block encode", shards, func(ctx context.Context, _ int, r parallel.Range) error {
		buf := make([]float32, cb.VectorLength())
		for by := r.Start; by < r.End; by++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			encodeRow(img, cb, enc, by, buf)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return enc, nil
}

func checkImage(img *model.GrayscaleImage) error {
	if img == nil {
		return fmt.Errorf("%w: nil image", model.ErrInvalidImage)
	}
	_, err := model.NewGrayscaleImage(img.Width, img.Height, img.Pix)
	return err
}

func newEncoded(img *model.GrayscaleImage, cb *codebook.Codebook) *model.EncodedImage {
	enc := &model.EncodedImage{
		Width:       img.Width,
		Height:      img.Height,
		BlockWidth:  cb.BlockWidth(),
		BlockHeight: cb.BlockHeight(),
		Codebook:    cb,
	}
	enc.Indices = make([]uint32, enc.TotalBlocks())
	return enc
}

// encodeRow writes the indices of block row by. buf is scratch space of
// length cb.VectorLength().
func encodeRow(img *model.GrayscaleImage, cb *codebook.Codebook, enc *model.EncodedImage, by int, buf []float32) error {
	bw, bh := cb.BlockWidth(), cb.BlockHeight()
	blocksX := enc.BlocksX()
	for bx := 0; bx < blocksX; bx++ {
		t := 0
		for dy := 0; dy < bh; dy++ {
			row := img.Pix[(by*bh+dy)*img.Width+bx*bw:]
			for dx := 0; dx < bw; dx++ {
				buf[t] = float32(row[dx])
				t++
			}
		}
		idx, err := cb.FindNearest(buf)
		if err != nil {
			return fmt.Errorf("block (%d,%d): %w", bx, by, err)
		}
		enc.Indices[by*blocksX+bx] = uint32(idx)
	}
	return nil
}

// Decode reconstructs an image by painting each block with its centroid,
// rounded half up and clamped to [0, 255]. enc is validated first, so a
// block size that disagrees with the codebook or a stray index is an
// error rather than an out-of-bounds access.
func Decode(enc *model.EncodedImage) (*model.GrayscaleImage, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	out := model.NewBlankImage(enc.Width, enc.Height)
	quantized := quantize(enc.Codebook)
	for by := 0; by < enc.BlocksY(); by++ {
		decodeRow(enc, quantized, out, by)
	}
	return out, nil
}

// DecodeParallel is Decode with block rows sharded over
// max(1, min(parallelism, blockRows)) goroutines. Shards write disjoint
// pixel rows.
func DecodeParallel(ctx context.Context, enc *model.EncodedImage, parallelism int) (*model.GrayscaleImage, error) {
	if err := enc.Validate(); err != nil {
		return nil, err
	}
	out := model.NewBlankImage(enc.Width, enc.Height)
	if enc.TotalBlocks() == 0 {
		return out, nil
	}
	quantized := quantize(enc.Codebook)
	shards := parallel.Split(enc.BlocksY(), parallelism)
	err := parallel.Run(ctx, "block decode", shards, func(ctx context.Context, _ int, r parallel.Range) error {
		for by := r.Start; by < r.End; by++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			decodeRow(enc, quantized, out, by)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// quantize rounds every centroid once so decode workers only copy bytes.
func quantize(cb *codebook.Codebook) [][]byte {
	flat := cb.Quantize()
	dim := cb.VectorLength()
	out := make([][]byte, cb.Size())
	for i := range out {
		out[i] = flat[i*dim : (i+1)*dim]
	}
	return out
}

func decodeRow(enc *model.EncodedImage, quantized [][]byte, out *model.GrayscaleImage, by int) {
	bw, bh := enc.BlockWidth, enc.BlockHeight
	blocksX := enc.BlocksX()
	for bx := 0; bx < blocksX; bx++ {
		c := quantized[enc.Indices[by*blocksX+bx]]
		for dy := 0; dy < bh; dy++ {
			dst := out.Pix[(by*bh+dy)*out.Width+bx*bw:]
			copy(dst[:bw], c[dy*bw:(dy+1)*bw])
		}
	}
}

package pkcc

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/hupe1980/pkcc/blobstore"
	"github.com/hupe1980/pkcc/codebook"
	"github.com/hupe1980/pkcc/format"
	"github.com/hupe1980/pkcc/imageio"
	"github.com/hupe1980/pkcc/internal/blockcodec"
	"github.com/hupe1980/pkcc/internal/kmeans"
	"github.com/hupe1980/pkcc/internal/sampling"
	"github.com/hupe1980/pkcc/model"
)

// Report summarizes a compress run.
type Report struct {
	Width           int           `json:"width"`
	Height          int           `json:"height"`
	TrainingVectors int           `json:"training_vectors"`
	Iterations      int           `json:"iterations"`
	Converged       bool          `json:"converged"`
	CodebookSize    int           `json:"codebook_size"`
	Blocks          int           `json:"blocks"`
	CompressedBytes int64         `json:"compressed_bytes"`
	Duration        time.Duration `json:"duration"`
}

// Compressor trains a codebook per image and writes PKCC containers.
//
// A Compressor is safe for concurrent use unless it was configured with a
// non-thread-safe WithSource.
type Compressor struct {
	opts options
	cfg  kmeans.Config
}

// New creates a Compressor. Options are validated eagerly.
func New(optFns ...Option) (*Compressor, error) {
	o := applyOptions(optFns)

	if o.blockWidth < 1 || o.blockWidth > 255 || o.blockHeight < 1 || o.blockHeight > 255 {
		return nil, fmt.Errorf("%w: block size %dx%d not in [1,255]", ErrInvalidArgument, o.blockWidth, o.blockHeight)
	}
	if o.codebookSize < 1 || o.codebookSize > codebook.MaxSize {
		return nil, fmt.Errorf("%w: codebook size %d not in [1,%d]", ErrInvalidArgument, o.codebookSize, codebook.MaxSize)
	}
	if !(o.sampleRate > 0 && o.sampleRate <= 1) {
		return nil, fmt.Errorf("%w: sample rate %g not in (0,1]", ErrInvalidArgument, o.sampleRate)
	}
	if o.maxIterations < 1 {
		return nil, fmt.Errorf("%w: max iterations %d", ErrInvalidArgument, o.maxIterations)
	}

	return &Compressor{
		opts: o,
		cfg: kmeans.Config{
			BlockWidth:    o.blockWidth,
			BlockHeight:   o.blockHeight,
			K:             o.codebookSize,
			MaxIterations: o.maxIterations,
		},
	}, nil
}

func (c *Compressor) rng() *rand.Rand {
	if c.opts.source != nil {
		return rand.New(c.opts.source)
	}
	return rand.New(rand.NewSource(c.opts.seed))
}

func (c *Compressor) parallel() bool { return c.opts.parallelism > 1 }

// Encode samples training vectors from img, trains a codebook and maps
// every full block to its nearest centroid.
func (c *Compressor) Encode(ctx context.Context, img *model.GrayscaleImage) (*model.EncodedImage, *Report, error) {
	start := time.Now()
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	if img == nil {
		return nil, nil, fmt.Errorf("%w: nil image", ErrInvalidArgument)
	}
	if _, err := model.NewGrayscaleImage(img.Width, img.Height, img.Pix); err != nil {
		return nil, nil, translateError(err)
	}

	log := c.opts.logger.WithImage(img.Width, img.Height)
	rng := c.rng()

	vectors, err := sampling.Collect(img, c.cfg.BlockWidth, c.cfg.BlockHeight, c.opts.sampleRate, rng)
	if err != nil {
		return nil, nil, translateError(err)
	}

	trainStart := time.Now()
	var res *kmeans.Result
	if c.parallel() {
		res, err = kmeans.TrainParallel(ctx, vectors, c.cfg, rng, c.opts.parallelism)
	} else {
		res, err = kmeans.Train(vectors, c.cfg, rng)
	}
	trainElapsed := time.Since(trainStart)
	iterations, converged := 0, false
	if res != nil {
		iterations, converged = res.Iterations, res.Converged
	}
	c.opts.metricsCollector.RecordTraining(iterations, trainElapsed, err)
	log.LogTraining(ctx, len(vectors), c.cfg.K, iterations, converged, trainElapsed, err)
	if err != nil {
		return nil, nil, translateError(err)
	}

	var enc *model.EncodedImage
	if c.parallel() {
		enc, err = blockcodec.EncodeParallel(ctx, img, res.Codebook, c.opts.parallelism)
	} else {
		enc, err = blockcodec.Encode(img, res.Codebook)
	}
	if err != nil {
		return nil, nil, translateError(err)
	}
	log.DebugContext(ctx, "blocks encoded", "blocks", len(enc.Indices))

	return enc, &Report{
		Width:           img.Width,
		Height:          img.Height,
		TrainingVectors: len(vectors),
		Iterations:      res.Iterations,
		Converged:       res.Converged,
		CodebookSize:    res.Codebook.Size(),
		Blocks:          len(enc.Indices),
		Duration:        time.Since(start),
	}, nil
}

// Decode renders enc back into pixels.
func (c *Compressor) Decode(ctx context.Context, enc *model.EncodedImage) (*model.GrayscaleImage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if enc == nil {
		return nil, fmt.Errorf("%w: nil encoded image", ErrInvalidArgument)
	}
	var (
		img *model.GrayscaleImage
		err error
	)
	if c.parallel() {
		img, err = blockcodec.DecodeParallel(ctx, enc, c.opts.parallelism)
	} else {
		img, err = blockcodec.Decode(enc)
	}
	if err != nil {
		return nil, translateError(err)
	}
	return img, nil
}

// Compress encodes img and writes the container to w.
func (c *Compressor) Compress(ctx context.Context, img *model.GrayscaleImage, w io.Writer) (rep *Report, err error) {
	start := time.Now()
	defer func() {
		var n int64
		if rep != nil {
			n = rep.CompressedBytes
		}
		elapsed := time.Since(start)
		c.opts.metricsCollector.RecordCompress(n, elapsed, err)
		blocks := 0
		if rep != nil {
			blocks = rep.Blocks
		}
		c.opts.logger.LogCompress(ctx, blocks, n, elapsed, err)
	}()

	enc, rep, err := c.Encode(ctx, img)
	if err != nil {
		return nil, err
	}

	cw := &countingWriter{w: w}
	if err := format.Write(cw, enc, format.WithLogger(c.opts.logger.Logger)); err != nil {
		return nil, translateError(err)
	}
	rep.CompressedBytes = cw.n
	rep.Duration = time.Since(start)
	return rep, nil
}

// Decompress reads a container from r and renders it.
func (c *Compressor) Decompress(ctx context.Context, r io.Reader) (img *model.GrayscaleImage, err error) {
	start := time.Now()
	blocks := 0
	defer func() {
		elapsed := time.Since(start)
		c.opts.metricsCollector.RecordDecompress(elapsed, err)
		w, h := 0, 0
		if img != nil {
			w, h = img.Width, img.Height
		}
		c.opts.logger.LogDecompress(ctx, w, h, blocks, elapsed, err)
	}()

	enc, err := format.Read(r, format.WithLogger(c.opts.logger.Logger), format.WithMaxPixels(c.opts.maxPixels))
	if err != nil {
		return nil, translateError(err)
	}
	blocks = len(enc.Indices)
	return c.Decode(ctx, enc)
}

// CompressFile loads the image at inPath and writes its container to
// outPath. A partial output file is removed on failure.
func (c *Compressor) CompressFile(ctx context.Context, inPath, outPath string) (*Report, error) {
	img, err := imageio.Load(inPath)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(outPath)
	if err != nil {
		return nil, err
	}
	rep, err := c.Compress(ctx, img, f)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(outPath)
		return nil, err
	}
	return rep, nil
}

// DecompressFile reads the container at inPath and saves the reconstruction
// to outPath in the named image format.
func (c *Compressor) DecompressFile(ctx context.Context, inPath, outPath, imageFormat string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer f.Close()

	img, err := c.Decompress(ctx, f)
	if err != nil {
		return err
	}
	return imageio.Save(img, outPath, imageFormat)
}

// CompressBlob streams the container for img into name in store. On a
// compression failure the writer is aborted; on a failed commit the blob
// is deleted, so no partial container is left behind.
func (c *Compressor) CompressBlob(ctx context.Context, img *model.GrayscaleImage, store blobstore.BlobStore, name string) (*Report, error) {
	w, err := store.Create(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("pkcc: create %s: %w", name, err)
	}
	rep, err := c.Compress(ctx, img, w)
	if err != nil {
		_ = w.Abort()
		return nil, err
	}
	if err := w.Sync(); err != nil {
		_ = w.Abort()
		_ = store.Delete(ctx, name)
		return nil, fmt.Errorf("pkcc: sync %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		_ = store.Delete(ctx, name)
		return nil, fmt.Errorf("pkcc: commit %s: %w", name, err)
	}
	return rep, nil
}

// DecompressBlob reads the container name from store and renders it.
func (c *Compressor) DecompressBlob(ctx context.Context, store blobstore.BlobStore, name string) (*model.GrayscaleImage, error) {
	data, err := blobstore.ReadAll(ctx, store, name)
	if err != nil {
		return nil, fmt.Errorf("pkcc: read %s: %w", name, err)
	}
	return c.Decompress(ctx, bytes.NewReader(data))
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += int64(n)
	return n, err
}

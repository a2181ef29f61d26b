// pkcc compresses grayscale images into PKCC containers and back.
//
// Usage:
//
//	pkcc [-m|--multithread] [options] <input> [<input> ...]
//
// Inputs ending in .pkcc are decompressed to <base>-recon.<format>; any other
// input is loaded as an image, converted to grayscale and compressed to
// <base>-compressed.pkcc.
//
// Options:
//
//	-m, --multithread   use runtime.NumCPU() goroutines
//	-bw, -bh            block width and height (default 2x2)
//	-k                  codebook size (default 256)
//	-rate               training sample rate (default 0.25)
//	-iter               maximum k-means iterations (default 10)
//	-seed               generator seed (default 1234)
//	-format             reconstruction image format (default png)
//	-store              blob store URL (file://, s3://, minio://)
//	-blob-compression   none, lz4 or zstd framing for -store
//	-list               list the containers in -store with their headers
//	-json               print a JSON report per input
//	-codec              JSON codec for -json (go-json, json)
//	-v, --verbose       debug logging
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hupe1980/pkcc"
	"github.com/hupe1980/pkcc/blobstore"
	"github.com/hupe1980/pkcc/codec"
	"github.com/hupe1980/pkcc/imageio"
)

const containerExt = ".pkcc"

var (
	multithread     bool
	verbose         bool
	blockWidth      int
	blockHeight     int
	codebookSize    int
	sampleRate      float64
	maxIterations   int
	seed            int64
	imageFormat     string
	storeURL        string
	blobCompression string
	listStore       bool
	jsonReport      bool
	codecName       string
)

func init() {
	flag.BoolVar(&multithread, "m", false, "multithreaded execution")
	flag.BoolVar(&multithread, "multithread", false, "multithreaded execution")
	flag.BoolVar(&verbose, "v", false, "debug logging")
	flag.BoolVar(&verbose, "verbose", false, "debug logging")
	flag.IntVar(&blockWidth, "bw", pkcc.DefaultBlockWidth, "block width")
	flag.IntVar(&blockHeight, "bh", pkcc.DefaultBlockHeight, "block height")
	flag.IntVar(&codebookSize, "k", pkcc.DefaultCodebookSize, "codebook size")
	flag.Float64Var(&sampleRate, "rate", pkcc.DefaultSampleRate, "training sample rate")
	flag.IntVar(&maxIterations, "iter", pkcc.DefaultMaxIterations, "maximum k-means iterations")
	flag.Int64Var(&seed, "seed", pkcc.DefaultSeed, "generator seed")
	flag.StringVar(&imageFormat, "format", imageio.DefaultFormat, "reconstruction image format")
	flag.StringVar(&storeURL, "store", "", "blob store URL (file://dir, s3://bucket/prefix, minio://host/bucket/prefix)")
	flag.StringVar(&blobCompression, "blob-compression", "none", "blob framing for -store (none, lz4, zstd)")
	flag.BoolVar(&listStore, "list", false, "list the containers in -store")
	flag.BoolVar(&jsonReport, "json", false, "print a JSON report per input")
	flag.StringVar(&codecName, "codec", "go-json", "JSON codec for -json ("+strings.Join(codec.Names(), ", ")+")")
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [-m|--multithread] [options] <input> [<input> ...]\n\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Compress images to %s containers, or decompress %s inputs.\n\n", containerExt, containerExt)
	fmt.Fprintf(os.Stderr, "Options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 && !listStore {
		usage()
		os.Exit(1)
	}

	if err := run(context.Background(), args); err != nil {
		fmt.Fprintf(os.Stderr, "pkcc: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if _, err := imageio.ParseFormat(imageFormat); err != nil {
		return err
	}
	jc, ok := codec.ByName(codecName)
	if !ok {
		return fmt.Errorf("unknown codec %q", codecName)
	}

	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	parallelism := 1
	if multithread {
		parallelism = runtime.NumCPU()
	}

	c, err := pkcc.New(
		pkcc.WithBlockSize(blockWidth, blockHeight),
		pkcc.WithCodebookSize(codebookSize),
		pkcc.WithSampleRate(sampleRate),
		pkcc.WithMaxIterations(maxIterations),
		pkcc.WithSeed(seed),
		pkcc.WithParallelism(parallelism),
		pkcc.WithLogLevel(level),
	)
	if err != nil {
		return err
	}

	var store blobstore.BlobStore
	if storeURL != "" {
		ct, err := blobstore.ParseCompressionType(blobCompression)
		if err != nil {
			return err
		}
		store, err = openStore(ctx, storeURL, ct)
		if err != nil {
			return err
		}
	}

	if listStore {
		if store == nil {
			return fmt.Errorf("-list needs -store")
		}
		return listContainers(ctx, store, os.Stdout)
	}

	for _, in := range args {
		start := time.Now()
		if strings.HasSuffix(in, containerExt) {
			out := outputName(in, true, imageFormat)
			if err := decompress(ctx, c, store, in, out); err != nil {
				return fmt.Errorf("decompress %s: %w", in, err)
			}
			fmt.Printf("decompressed %s -> %s in %s\n", in, out, time.Since(start).Round(time.Millisecond))
			continue
		}

		out := outputName(in, false, imageFormat)
		rep, err := compress(ctx, c, store, in, out)
		if err != nil {
			return fmt.Errorf("compress %s: %w", in, err)
		}
		if jsonReport {
			data, err := codec.Pretty(jc, rep)
			if err != nil {
				return err
			}
			fmt.Println(string(data))
			continue
		}
		fmt.Printf("compressed %s -> %s (%d bytes, %d blocks, %d iterations) in %s\n",
			in, out, rep.CompressedBytes, rep.Blocks, rep.Iterations, time.Since(start).Round(time.Millisecond))
	}
	return nil
}

func compress(ctx context.Context, c *pkcc.Compressor, store blobstore.BlobStore, in, out string) (*pkcc.Report, error) {
	if store == nil {
		return c.CompressFile(ctx, in, out)
	}
	img, err := imageio.Load(in)
	if err != nil {
		return nil, err
	}
	return c.CompressBlob(ctx, img, store, blobName(out))
}

func decompress(ctx context.Context, c *pkcc.Compressor, store blobstore.BlobStore, in, out string) error {
	if store == nil {
		return c.DecompressFile(ctx, in, out, imageFormat)
	}
	img, err := c.DecompressBlob(ctx, store, blobName(in))
	if err != nil {
		return err
	}
	return imageio.Save(img, out, imageFormat)
}

// Package pkcc is a lossy grayscale image codec based on vector
// quantization.
//
// Compression slides a block-sized window over the image, trains a
// codebook of up to 256 centroids with k-means, replaces every full block
// by the index of its nearest centroid and entropy-codes the indices with
// a canonical Huffman code. The result is stored in a self-describing PKCC
// container (see package format).
//
// # Quick Start
//
//	c, _ := pkcc.New(pkcc.WithBlockSize(4, 4), pkcc.WithCodebookSize(128))
//	rep, _ := c.CompressFile(ctx, "photo.png", "photo-compressed.pkcc")
//	_ = c.DecompressFile(ctx, "photo-compressed.pkcc", "photo-recon.png", "png")
//
// Containers can also be moved through any blobstore.BlobStore:
//
//	store := blobstore.NewCompressedStore(blobstore.NewLocalStore("./out"), blobstore.CompressionZSTD)
//	_, _ = c.CompressBlob(ctx, img, store, "photo.pkcc")
//	img, _ := c.DecompressBlob(ctx, store, "photo.pkcc")
//
// # Determinism
//
// A single generator feeds sampling, centroid initialization and empty
// cluster re-seeding in that order. With equal options and input, two
// runs produce byte-identical containers. WithParallelism changes the
// training convergence check only: the parallel trainer never accepts
// convergence on its first pass.
//
// Only full blocks are coded. Pixels right of the last full block column
// or below the last full block row decode as 0.
package pkcc

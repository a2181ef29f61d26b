package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/hupe1980/pkcc/blobstore"
	"github.com/hupe1980/pkcc/blobstore/minio"
	"github.com/hupe1980/pkcc/blobstore/s3"
	"github.com/hupe1980/pkcc/format"
)

// outputName derives the output path next to in.
func outputName(in string, decompress bool, imageFormat string) string {
	base := strings.TrimSuffix(in, filepath.Ext(in))
	if decompress {
		return base + "-recon." + strings.TrimPrefix(imageFormat, ".")
	}
	return base + "-compressed" + containerExt
}

// blobName is the store-relative name for a local path.
func blobName(p string) string {
	return path.Base(filepath.ToSlash(p))
}

// openStore resolves a store URL. MinIO credentials come from
// MINIO_ACCESS_KEY and MINIO_SECRET_KEY; S3 uses the default AWS chain.
func openStore(ctx context.Context, rawURL string, ct blobstore.CompressionType) (blobstore.BlobStore, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("store url: %w", err)
	}

	var store blobstore.BlobStore
	switch u.Scheme {
	case "", "file":
		dir := u.Path
		if u.Host != "" {
			dir = u.Host + u.Path
		}
		if dir == "" {
			return nil, fmt.Errorf("store url %q: missing directory", rawURL)
		}
		store = blobstore.NewLocalStore(dir)
	case "s3":
		if u.Host == "" {
			return nil, fmt.Errorf("store url %q: missing bucket", rawURL)
		}
		opts := []s3.Option{s3.WithPrefix(strings.TrimPrefix(u.Path, "/"))}
		if region := u.Query().Get("region"); region != "" {
			opts = append(opts, s3.WithRegion(region))
		}
		if endpoint := u.Query().Get("endpoint"); endpoint != "" {
			opts = append(opts, s3.WithEndpoint(endpoint))
		}
		store, err = s3.New(ctx, u.Host, opts...)
		if err != nil {
			return nil, err
		}
	case "minio":
		bucket, prefix, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if u.Host == "" || bucket == "" {
			return nil, fmt.Errorf("store url %q: want minio://host/bucket[/prefix]", rawURL)
		}
		store, err = minio.Dial(u.Host, os.Getenv("MINIO_ACCESS_KEY"), os.Getenv("MINIO_SECRET_KEY"),
			u.Query().Get("secure") == "true", bucket, prefix)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("store url %q: unsupported scheme %q", rawURL, u.Scheme)
	}

	if ct != blobstore.CompressionNone {
		store = blobstore.NewCompressedStore(store, ct)
	}
	return store, nil
}

// listContainers prints one line per container in store. Only the fixed
// header of each blob is read.
func listContainers(ctx context.Context, store blobstore.BlobStore, w io.Writer) error {
	names, err := store.List(ctx, "")
	if err != nil {
		return err
	}
	for _, name := range names {
		if !strings.HasSuffix(name, containerExt) {
			continue
		}
		h, size, err := blobHeader(ctx, store, name)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		fmt.Fprintf(w, "%s\t%dx%d\tblock %dx%d\tk=%d\t%d bytes\n",
			name, h.Width, h.Height, h.BlockWidth, h.BlockHeight, h.CodebookSize, size)
	}
	return nil
}

func blobHeader(ctx context.Context, store blobstore.BlobStore, name string) (*format.Header, int64, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, 0, err
	}
	defer func() { _ = b.Close() }()

	buf := make([]byte, min(b.Size(), format.HeaderSize))
	if _, err := b.ReadAt(ctx, buf, 0); err != nil && err != io.EOF {
		return nil, 0, err
	}
	h, err := format.ReadHeader(bytes.NewReader(buf))
	if err != nil {
		return nil, 0, err
	}
	return h, b.Size(), nil
}

// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("images/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	c, _ := pkcc.New()
//	err = c.CompressBlob(ctx, img, store, "lena.pkcc")
//
// # Features
//
//   - Range reads for efficient partial fetches
//   - Multipart uploads for large containers
//   - CRC32C integrity checks on uploads
//   - Automatic pagination for listing
//   - Configurable prefix for multi-tenant isolation
package s3

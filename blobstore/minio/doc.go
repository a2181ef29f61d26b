// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works against MinIO and other S3-compatible services (Ceph, Garage,
// SeaweedFS) without pulling in the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.Dial("localhost:9000", "minioadmin", "minioadmin", false, "images", "pkcc/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = compressor.CompressBlob(ctx, img, store, "lena.pkcc")
//
// An existing *minio.Client can be wrapped with NewStore.
package minio

// Package blobstore abstracts object storage for segment files.
//
// A Store holds immutable named blobs. The codec-facing adapter lives
// in package store (BlobDirectory); backends live here:
//
//   - LocalStore: local filesystem, memory-mapped reads
//   - MemoryStore: in-memory, for tests
//   - CachingStore: block-level read cache around any Store
//   - s3.Store: Amazon S3 via aws-sdk-go-v2
//   - minio.Store: MinIO and other S3-compatible services
//
// Blobs are written once through a WritableBlob and become visible
// atomically on Close.
package blobstore

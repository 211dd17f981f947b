// Package store provides the file abstraction the term vector codec
// reads and writes through: named immutable files inside a Directory,
// written once through an Output and read through positional,
// cloneable Inputs.
//
// # Built-in Implementations
//
//   - FSDirectory: local filesystem, inputs backed by memory-mapped files
//   - MemDirectory: in-memory files for tests
//   - BlobDirectory: adapter over a blobstore.Store (S3, MinIO, ...)
package store

import "hash/crc32"

// Directory is a flat namespace of immutable files. Implementations
// must be safe for concurrent use; the Outputs and Inputs they hand
// out are not.
type Directory interface {
	// CreateOutput creates the named file and returns an Output for
	// writing it. An existing file of the same name is truncated.
	CreateOutput(name string) (*Output, error)
	// OpenInput opens the named file for reading. The error satisfies
	// errors.Is(err, os.ErrNotExist) when the file is absent.
	OpenInput(name string) (*Input, error)
	// DeleteFile removes the named file.
	DeleteFile(name string) error
	// ListFiles returns the names of all files in the directory.
	ListFiles() ([]string, error)
	// Sync makes the named files durable, where the backend supports it.
	Sync(names ...string) error
}

var crc32Table = crc32.MakeTable(crc32.IEEE)

// Checksum returns the CRC32 (IEEE polynomial) checksum of data. It is
// fast and detects accidental corruption; it is not cryptographically
// secure.
func Checksum(data []byte) uint32 {
	return crc32.Checksum(data, crc32Table)
}

package store

import (
	"context"
	"fmt"
	"io"

	"github.com/hupe1980/termvec/blobstore"
)

// BlobDirectory adapts a blobstore.Store to the Directory interface,
// putting segment files on S3, MinIO or any other blob backend.
// Writes stream straight into the store and become visible atomically
// when the Output is closed. Reads stage the whole blob unless the
// backend exposes its bytes directly; wrap the store in a
// blobstore.CachingStore when staging is too expensive.
type BlobDirectory struct {
	ctx   context.Context
	store blobstore.Store
}

// NewBlobDirectory creates a BlobDirectory. ctx bounds every backend
// call the Directory makes; pass context.Background() for an unbounded
// directory.
func NewBlobDirectory(ctx context.Context, store blobstore.Store) *BlobDirectory {
	return &BlobDirectory{ctx: ctx, store: store}
}

// CreateOutput creates the named blob and returns an Output streaming
// into it.
func (d *BlobDirectory) CreateOutput(name string) (*Output, error) {
	wb, err := d.store.Create(d.ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to create blob %q: %w", name, err)
	}
	return NewOutput(name, wb), nil
}

// OpenInput opens the named blob for reading. Backends whose blobs are
// memory-resident are read zero-copy; everything else is staged into
// memory once.
func (d *BlobDirectory) OpenInput(name string) (*Input, error) {
	blob, err := d.store.Open(d.ctx, name)
	if err != nil {
		return nil, err
	}
	if m, ok := blob.(blobstore.Mappable); ok {
		data, err := m.Bytes()
		if err == nil {
			return NewInput(name, data, blob.Close), nil
		}
		// Fall through to staged read.
	}

	defer blob.Close() //nolint:errcheck

	rc, err := blob.ReadRange(d.ctx, 0, blob.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to read blob %q: %w", name, err)
	}
	defer rc.Close() //nolint:errcheck

	data := make([]byte, blob.Size())
	if _, err := io.ReadFull(rc, data); err != nil {
		return nil, fmt.Errorf("failed to read blob %q: %w", name, err)
	}
	return NewInput(name, data, nil), nil
}

// DeleteFile removes the named blob.
func (d *BlobDirectory) DeleteFile(name string) error {
	return d.store.Delete(d.ctx, name)
}

// ListFiles returns the names of all blobs.
func (d *BlobDirectory) ListFiles() ([]string, error) {
	return d.store.List(d.ctx, "")
}

// Sync is a no-op: blobs are durable once their Output is closed.
func (d *BlobDirectory) Sync(names ...string) error {
	return nil
}

package store

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"sync"
)

// MemDirectory is an in-memory Directory for tests. Thread-safe for
// concurrent use.
type MemDirectory struct {
	mu    sync.RWMutex
	files map[string][]byte
}

// NewMemDirectory returns an empty MemDirectory.
func NewMemDirectory() *MemDirectory {
	return &MemDirectory{files: make(map[string][]byte)}
}

// CreateOutput implements Directory. The file becomes visible when the
// Output is closed.
func (d *MemDirectory) CreateOutput(name string) (*Output, error) {
	return NewOutput(name, &memFile{dir: d, name: name}), nil
}

// OpenInput implements Directory.
func (d *MemDirectory) OpenInput(name string) (*Input, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.files[name]
	if !ok {
		return nil, fmt.Errorf("failed to open %q: %w", name, os.ErrNotExist)
	}
	// Copy so later deletes cannot pull the region out from under an
	// open Input.
	copied := make([]byte, len(data))
	copy(copied, data)
	return NewInput(name, copied, nil), nil
}

// DeleteFile implements Directory.
func (d *MemDirectory) DeleteFile(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.files[name]; !ok {
		return fmt.Errorf("failed to delete %q: %w", name, os.ErrNotExist)
	}
	delete(d.files, name)
	return nil
}

// ListFiles implements Directory.
func (d *MemDirectory) ListFiles() ([]string, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.files))
	for name := range d.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// Sync implements Directory. A no-op for memory.
func (d *MemDirectory) Sync(names ...string) error {
	return nil
}

// Corrupt flips one byte of the named file at off. Test hook for
// corruption injection.
func (d *MemDirectory) Corrupt(name string, off int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.files[name]
	if !ok {
		return fmt.Errorf("failed to corrupt %q: %w", name, os.ErrNotExist)
	}
	if off < 0 || off >= int64(len(data)) {
		return fmt.Errorf("failed to corrupt %q: offset %d out of range", name, off)
	}
	data[off] ^= 0xFF
	return nil
}

// Truncate shortens the named file to length bytes. Test hook.
func (d *MemDirectory) Truncate(name string, length int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	data, ok := d.files[name]
	if !ok {
		return fmt.Errorf("failed to truncate %q: %w", name, os.ErrNotExist)
	}
	if length < 0 || length > int64(len(data)) {
		return fmt.Errorf("failed to truncate %q: length %d out of range", name, length)
	}
	d.files[name] = data[:length]
	return nil
}

// FileLength returns the size of the named file.
func (d *MemDirectory) FileLength(name string) (int64, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	data, ok := d.files[name]
	if !ok {
		return 0, fmt.Errorf("failed to stat %q: %w", name, os.ErrNotExist)
	}
	return int64(len(data)), nil
}

// memFile buffers writes and registers the file on Close.
type memFile struct {
	dir  *MemDirectory
	name string
	buf  bytes.Buffer
}

func (f *memFile) Write(p []byte) (int, error) {
	return f.buf.Write(p)
}

func (f *memFile) Close() error {
	f.dir.mu.Lock()
	defer f.dir.mu.Unlock()

	data := make([]byte, f.buf.Len())
	copy(data, f.buf.Bytes())
	f.dir.files[f.name] = data
	return nil
}

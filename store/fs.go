package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hupe1980/termvec/internal/mmap"
)

// FSDirectory is a Directory on the local filesystem. Inputs are
// backed by memory-mapped files, so random access inside a segment
// costs no read syscalls and clones share the mapping.
type FSDirectory struct {
	root string
}

// NewFSDirectory returns an FSDirectory rooted at root, creating the
// directory if needed.
func NewFSDirectory(root string) (*FSDirectory, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory %q: %w", root, err)
	}
	return &FSDirectory{root: root}, nil
}

// Root returns the directory path.
func (d *FSDirectory) Root() string {
	return d.root
}

// CreateOutput implements Directory.
func (d *FSDirectory) CreateOutput(name string) (*Output, error) {
	f, err := os.OpenFile(filepath.Join(d.root, name), os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create %q: %w", name, err)
	}
	return NewOutput(name, f), nil
}

// OpenInput implements Directory.
func (d *FSDirectory) OpenInput(name string) (*Input, error) {
	m, err := mmap.Open(filepath.Join(d.root, name))
	if err != nil {
		return nil, fmt.Errorf("failed to open %q: %w", name, err)
	}
	// Document lookups jump between chunks, so random access is the
	// expected pattern.
	_ = m.Advise(mmap.AccessRandom)
	return NewInput(name, m.Bytes(), m.Close), nil
}

// DeleteFile implements Directory.
func (d *FSDirectory) DeleteFile(name string) error {
	if err := os.Remove(filepath.Join(d.root, name)); err != nil {
		return fmt.Errorf("failed to delete %q: %w", name, err)
	}
	return nil
}

// ListFiles implements Directory.
func (d *FSDirectory) ListFiles() ([]string, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", d.root, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// Sync implements Directory. Each named file is fsynced.
func (d *FSDirectory) Sync(names ...string) error {
	for _, name := range names {
		if err := d.syncFile(name); err != nil {
			return err
		}
	}
	return nil
}

func (d *FSDirectory) syncFile(name string) error {
	f, err := os.Open(filepath.Join(d.root, name))
	if err != nil {
		return fmt.Errorf("failed to sync %q: %w", name, err)
	}
	defer f.Close()
	if err := f.Sync(); err != nil {
		return fmt.Errorf("failed to sync %q: %w", name, err)
	}
	return nil
}

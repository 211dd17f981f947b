package store

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync/atomic"
)

// Input is a positional reader over an immutable file region. Inputs
// are cheap to clone; all clones and slices share one backing region,
// which is released when the last of them is closed.
//
// An Input is not safe for concurrent use. Hand each goroutine its own
// Clone.
type Input struct {
	name   string
	data   []byte
	pos    int
	region *region
	closed bool
}

// region tracks the lifetime of a shared backing buffer, e.g. a memory
// mapping that must be unmapped once.
type region struct {
	refs    atomic.Int32
	release func() error
}

func newRegion(release func() error) *region {
	r := &region{release: release}
	r.refs.Store(1)
	return r
}

func (r *region) retain() {
	r.refs.Add(1)
}

func (r *region) close() error {
	if r.refs.Add(-1) == 0 && r.release != nil {
		return r.release()
	}
	return nil
}

// NewInput wraps data as an Input for the file called name. release,
// if non-nil, is invoked when the last clone or slice is closed.
func NewInput(name string, data []byte, release func() error) *Input {
	return &Input{name: name, data: data, region: newRegion(release)}
}

// Name returns the file name this Input reads.
func (in *Input) Name() string {
	return in.name
}

// Length returns the total length of the region in bytes.
func (in *Input) Length() int64 {
	return int64(len(in.data))
}

// FilePointer returns the current read position.
func (in *Input) FilePointer() int64 {
	return int64(in.pos)
}

// Bytes returns the backing region. The slice is read-only and valid
// until the Input and all its clones are closed.
func (in *Input) Bytes() []byte {
	return in.data
}

// Seek positions the next read at pos.
func (in *Input) Seek(pos int64) error {
	if pos < 0 || pos > int64(len(in.data)) {
		return fmt.Errorf("failed to seek %q to %d: %w", in.name, pos, io.ErrUnexpectedEOF)
	}
	in.pos = int(pos)
	return nil
}

// Read implements io.Reader.
func (in *Input) Read(p []byte) (int, error) {
	if in.pos >= len(in.data) {
		return 0, io.EOF
	}
	n := copy(p, in.data[in.pos:])
	in.pos += n
	return n, nil
}

// ReadByte implements io.ByteReader.
func (in *Input) ReadByte() (byte, error) {
	if in.pos >= len(in.data) {
		return 0, io.EOF
	}
	b := in.data[in.pos]
	in.pos++
	return b, nil
}

// ReadFull fills p or fails with io.ErrUnexpectedEOF.
func (in *Input) ReadFull(p []byte) error {
	if len(in.data)-in.pos < len(p) {
		return fmt.Errorf("failed to read %d bytes from %q: %w", len(p), in.name, io.ErrUnexpectedEOF)
	}
	copy(p, in.data[in.pos:in.pos+len(p)])
	in.pos += len(p)
	return nil
}

// ReadUint32 reads a little-endian uint32.
func (in *Input) ReadUint32() (uint32, error) {
	if len(in.data)-in.pos < 4 {
		return 0, fmt.Errorf("failed to read uint32 from %q: %w", in.name, io.ErrUnexpectedEOF)
	}
	v := binary.LittleEndian.Uint32(in.data[in.pos:])
	in.pos += 4
	return v, nil
}

// ReadUint64 reads a little-endian uint64.
func (in *Input) ReadUint64() (uint64, error) {
	if len(in.data)-in.pos < 8 {
		return 0, fmt.Errorf("failed to read uint64 from %q: %w", in.name, io.ErrUnexpectedEOF)
	}
	v := binary.LittleEndian.Uint64(in.data[in.pos:])
	in.pos += 8
	return v, nil
}

// ReadUvarint reads an unsigned varint.
func (in *Input) ReadUvarint() (uint64, error) {
	v, err := binary.ReadUvarint(in)
	if err != nil {
		return 0, fmt.Errorf("failed to read uvarint from %q: %w", in.name, err)
	}
	return v, nil
}

// ReadBytes reads a length-prefixed byte slice written by
// Output.WriteBytes. The returned slice is freshly allocated.
func (in *Input) ReadBytes() ([]byte, error) {
	n, err := in.ReadUvarint()
	if err != nil {
		return nil, err
	}
	if n > uint64(len(in.data)-in.pos) {
		return nil, fmt.Errorf("failed to read %d bytes from %q: %w", n, in.name, io.ErrUnexpectedEOF)
	}
	p := make([]byte, n)
	copy(p, in.data[in.pos:])
	in.pos += int(n)
	return p, nil
}

// SkipBytes advances the read position by n bytes.
func (in *Input) SkipBytes(n int64) error {
	if n < 0 || n > int64(len(in.data)-in.pos) {
		return fmt.Errorf("failed to skip %d bytes in %q: %w", n, in.name, io.ErrUnexpectedEOF)
	}
	in.pos += int(n)
	return nil
}

// Clone returns an independent cursor over the same region, positioned
// at the same offset.
func (in *Input) Clone() *Input {
	in.region.retain()
	return &Input{name: in.name, data: in.data, pos: in.pos, region: in.region}
}

// Slice returns an Input over the sub-region [off, off+length),
// positioned at its start.
func (in *Input) Slice(off, length int64) (*Input, error) {
	if off < 0 || length < 0 || off+length > int64(len(in.data)) {
		return nil, fmt.Errorf("failed to slice %q at [%d, %d+%d): %w", in.name, off, off, length, io.ErrUnexpectedEOF)
	}
	in.region.retain()
	return &Input{name: in.name, data: in.data[off : off+length], region: in.region}, nil
}

// Close releases the Input. The backing region is released when the
// last clone or slice is closed.
func (in *Input) Close() error {
	if in.closed {
		return nil
	}
	in.closed = true
	if err := in.region.close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", in.name, err)
	}
	return nil
}

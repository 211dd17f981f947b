package store

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// Output writes a file sequentially. All writes are buffered and feed
// a running CRC32 checksum, so the caller can seal the file with a
// footer covering every byte written before it.
//
// Fixed-width integers are written little-endian.
type Output struct {
	name    string
	w       *bufio.Writer
	c       io.Closer
	n       int64
	crc     hash.Hash32
	scratch [binary.MaxVarintLen64]byte
}

// NewOutput wraps wc as an Output for the file called name. Closing
// the Output flushes buffered bytes and closes wc.
func NewOutput(name string, wc io.WriteCloser) *Output {
	return &Output{
		name: name,
		w:    bufio.NewWriterSize(wc, 1<<16),
		c:    wc,
		crc:  crc32.New(crc32Table),
	}
}

// Name returns the file name this Output writes.
func (o *Output) Name() string {
	return o.name
}

// Write implements io.Writer.
func (o *Output) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	if n > 0 {
		// hash.Hash never returns an error from Write.
		o.crc.Write(p[:n]) //nolint:errcheck
		o.n += int64(n)
	}
	if err != nil {
		return n, fmt.Errorf("failed to write %q: %w", o.name, err)
	}
	return n, nil
}

// WriteByte implements io.ByteWriter.
func (o *Output) WriteByte(b byte) error {
	if err := o.w.WriteByte(b); err != nil {
		return fmt.Errorf("failed to write %q: %w", o.name, err)
	}
	o.scratch[0] = b
	o.crc.Write(o.scratch[:1]) //nolint:errcheck
	o.n++
	return nil
}

// WriteUint32 writes v little-endian.
func (o *Output) WriteUint32(v uint32) error {
	binary.LittleEndian.PutUint32(o.scratch[:4], v)
	_, err := o.Write(o.scratch[:4])
	return err
}

// WriteUint64 writes v little-endian.
func (o *Output) WriteUint64(v uint64) error {
	binary.LittleEndian.PutUint64(o.scratch[:8], v)
	_, err := o.Write(o.scratch[:8])
	return err
}

// WriteUvarint writes v in unsigned varint encoding.
func (o *Output) WriteUvarint(v uint64) error {
	n := binary.PutUvarint(o.scratch[:], v)
	_, err := o.Write(o.scratch[:n])
	return err
}

// WriteBytes writes a length-prefixed byte slice.
func (o *Output) WriteBytes(p []byte) error {
	if err := o.WriteUvarint(uint64(len(p))); err != nil {
		return err
	}
	_, err := o.Write(p)
	return err
}

// FilePointer returns the number of bytes written so far.
func (o *Output) FilePointer() int64 {
	return o.n
}

// Checksum returns the CRC32 of all bytes written so far.
func (o *Output) Checksum() uint32 {
	return o.crc.Sum32()
}

// Close flushes buffered bytes and closes the underlying file.
func (o *Output) Close() error {
	if err := o.w.Flush(); err != nil {
		o.c.Close() //nolint:errcheck
		return fmt.Errorf("failed to flush %q: %w", o.name, err)
	}
	if err := o.c.Close(); err != nil {
		return fmt.Errorf("failed to close %q: %w", o.name, err)
	}
	return nil
}

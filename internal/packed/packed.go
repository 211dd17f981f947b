// Package packed implements the bit-packing primitives the term vector
// codec builds its metadata streams from: fixed-width packed integer
// sequences and block-packed streams of deltas.
//
// Packed sequences carry no header. Values are written MSB-first at a
// fixed bit width and the stream is padded to a byte boundary on
// Finish, so a reader that knows the width and the value count can
// skip a run of values by advancing whole bytes instead of decoding.
package packed

import (
	"fmt"
	"io"
	"math/bits"
)

// BitsRequired returns the number of bits needed to store values in
// [0, maxValue]. The result is never below 1, so a sequence of zeros
// still occupies one bit per value and stays addressable.
func BitsRequired(maxValue uint64) uint32 {
	if maxValue == 0 {
		return 1
	}
	return uint32(bits.Len64(maxValue))
}

func mask(bits uint32) uint64 {
	if bits >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << bits) - 1
}

// ByteCount returns the size in bytes of count values packed at
// bitsPerValue, including the final padding to a byte boundary.
func ByteCount(count int, bitsPerValue uint32) int64 {
	return (int64(count)*int64(bitsPerValue) + 7) / 8
}

// Writer packs fixed-width values into a byte stream.
type Writer struct {
	dst          io.ByteWriter
	bitsPerValue uint32
	acc          uint64
	nbits        uint32
}

// NewWriter returns a Writer that packs values at bitsPerValue bits
// each, 1 <= bitsPerValue <= 64.
func NewWriter(dst io.ByteWriter, bitsPerValue uint32) (*Writer, error) {
	if bitsPerValue < 1 || bitsPerValue > 64 {
		return nil, fmt.Errorf("packed: bits per value out of range: %d", bitsPerValue)
	}
	return &Writer{dst: dst, bitsPerValue: bitsPerValue}, nil
}

// Add appends v to the stream. v must fit in bitsPerValue bits.
func (w *Writer) Add(v uint64) error {
	if w.bitsPerValue < 64 && v > mask(w.bitsPerValue) {
		return fmt.Errorf("packed: value %d exceeds %d bits", v, w.bitsPerValue)
	}
	remaining := w.bitsPerValue
	for remaining > 0 {
		n := remaining
		if free := 64 - w.nbits; n > free {
			n = free
		}
		shift := remaining - n
		w.acc = (w.acc << n) | ((v >> shift) & mask(n))
		w.nbits += n
		remaining = shift
		if w.nbits == 64 {
			if err := w.flushAcc(); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *Writer) flushAcc() error {
	for w.nbits >= 8 {
		w.nbits -= 8
		if err := w.dst.WriteByte(byte(w.acc >> w.nbits)); err != nil {
			return err
		}
	}
	w.acc &= mask(w.nbits)
	return nil
}

// Finish pads the stream to a byte boundary. The Writer must not be
// used afterwards.
func (w *Writer) Finish() error {
	if w.nbits%8 != 0 {
		pad := 8 - w.nbits%8
		w.acc <<= pad
		w.nbits += pad
	}
	return w.flushAcc()
}

// Reader decodes fixed-width values from a byte stream written by
// Writer. It consumes exactly ByteCount(count, bitsPerValue) bytes
// when count values are read or skipped.
type Reader struct {
	src          io.ByteReader
	bitsPerValue uint32
	acc          uint64 // low nbits bits are unread bits of the current byte
	nbits        uint32
	ord          int
}

// NewReader returns a Reader decoding values at bitsPerValue bits each.
func NewReader(src io.ByteReader, bitsPerValue uint32) (*Reader, error) {
	if bitsPerValue < 1 || bitsPerValue > 64 {
		return nil, fmt.Errorf("packed: bits per value out of range: %d", bitsPerValue)
	}
	return &Reader{src: src, bitsPerValue: bitsPerValue}, nil
}

// Next decodes and returns the next value.
func (r *Reader) Next() (uint64, error) {
	remaining := r.bitsPerValue
	var v uint64
	for remaining > 0 {
		if r.nbits == 0 {
			b, err := r.src.ReadByte()
			if err != nil {
				return 0, err
			}
			r.acc = uint64(b)
			r.nbits = 8
		}
		n := remaining
		if n > r.nbits {
			n = r.nbits
		}
		r.nbits -= n
		v = (v << n) | ((r.acc >> r.nbits) & mask(n))
		remaining -= n
	}
	r.ord++
	return v, nil
}

// Skip discards the next n values without decoding them. Whole bytes
// are skipped in one step when the source supports it.
func (r *Reader) Skip(n int) error {
	if n <= 0 {
		return nil
	}
	bits := uint64(n) * uint64(r.bitsPerValue)

	// Drain bits buffered from the current byte first.
	if take := uint64(r.nbits); take > 0 {
		if take > bits {
			take = bits
		}
		r.nbits -= uint32(take)
		bits -= take
	}
	if err := skipBytes(r.src, int64(bits/8)); err != nil {
		return err
	}
	if rem := uint32(bits % 8); rem > 0 {
		b, err := r.src.ReadByte()
		if err != nil {
			return err
		}
		r.acc = uint64(b)
		r.nbits = 8 - rem
	}
	r.ord += n
	return nil
}

// Ord returns the number of values consumed so far, counting both
// decoded and skipped values.
func (r *Reader) Ord() int {
	return r.ord
}

// byteSkipper is implemented by sources that can advance their
// position without copying, e.g. buffered or memory-backed inputs.
type byteSkipper interface {
	SkipBytes(n int64) error
}

func skipBytes(src io.ByteReader, n int64) error {
	if n <= 0 {
		return nil
	}
	if s, ok := src.(byteSkipper); ok {
		return s.SkipBytes(n)
	}
	for i := int64(0); i < n; i++ {
		if _, err := src.ReadByte(); err != nil {
			return err
		}
	}
	return nil
}

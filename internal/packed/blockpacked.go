package packed

import (
	"encoding/binary"
	"fmt"
	"io"
)

// BlockSize is the number of values grouped into one block of a
// block-packed stream.
const BlockSize = 64

// Block token layout: bitsPerValue<<1 | minEquals0. When the low bit
// is clear, a zig-zag varint minimum follows the token; the packed
// payload then stores value-minimum at bitsPerValue bits. A width of
// zero means every value in the block equals the minimum.

// BlockWriter encodes a stream of signed values as blocks of BlockSize
// deltas from a per-block minimum. A stream with no values writes no
// bytes at all.
type BlockWriter struct {
	dst  io.ByteWriter
	vals [BlockSize]int64
	n    int
}

// NewBlockWriter returns a BlockWriter that writes to dst.
func NewBlockWriter(dst io.ByteWriter) *BlockWriter {
	return &BlockWriter{dst: dst}
}

// Add appends v to the stream, flushing a block when BlockSize values
// are pending.
func (w *BlockWriter) Add(v int64) error {
	w.vals[w.n] = v
	w.n++
	if w.n == BlockSize {
		return w.flush()
	}
	return nil
}

// Finish flushes the trailing partial block, if any. The BlockWriter
// must not be used afterwards.
func (w *BlockWriter) Finish() error {
	if w.n > 0 {
		return w.flush()
	}
	return nil
}

func (w *BlockWriter) flush() error {
	minValue := w.vals[0]
	for _, v := range w.vals[1:w.n] {
		if v < minValue {
			minValue = v
		}
	}
	var maxDelta uint64
	for _, v := range w.vals[:w.n] {
		if d := uint64(v - minValue); d > maxDelta {
			maxDelta = d
		}
	}
	var bitsPerValue uint32
	if maxDelta > 0 {
		bitsPerValue = BitsRequired(maxDelta)
	}

	token := byte(bitsPerValue << 1)
	if minValue == 0 {
		token |= 1
	}
	if err := w.dst.WriteByte(token); err != nil {
		return err
	}
	if minValue != 0 {
		if err := writeUvarint(w.dst, zigzagEncode(minValue)); err != nil {
			return err
		}
	}
	if bitsPerValue > 0 {
		pw, err := NewWriter(w.dst, bitsPerValue)
		if err != nil {
			return err
		}
		for _, v := range w.vals[:w.n] {
			if err := pw.Add(uint64(v - minValue)); err != nil {
				return err
			}
		}
		if err := pw.Finish(); err != nil {
			return err
		}
	}
	w.n = 0
	return nil
}

// BlockReader decodes a stream written by BlockWriter. The total value
// count must be known up front; it determines the length of the final
// partial block.
type BlockReader struct {
	src      io.ByteReader
	count    int
	ord      int
	vals     [BlockSize]int64
	off      int // consumed values of the decoded block
	blockLen int // decoded values in vals
}

// NewBlockReader returns a BlockReader decoding count values from src.
func NewBlockReader(src io.ByteReader, count int) *BlockReader {
	return &BlockReader{src: src, count: count}
}

// Next returns the next value, or io.EOF past the end of the stream.
func (r *BlockReader) Next() (int64, error) {
	if r.off == r.blockLen {
		if err := r.refill(); err != nil {
			return 0, err
		}
	}
	v := r.vals[r.off]
	r.off++
	r.ord++
	return v, nil
}

// Skip discards the next n values. Blocks that are skipped in full are
// never decoded; only their token and minimum are read.
func (r *BlockReader) Skip(n int) error {
	for n > 0 {
		if r.off < r.blockLen {
			take := r.blockLen - r.off
			if take > n {
				take = n
			}
			r.off += take
			r.ord += take
			n -= take
			continue
		}
		remaining := r.count - r.ord
		if remaining <= 0 {
			return io.EOF
		}
		blockLen := BlockSize
		if remaining < blockLen {
			blockLen = remaining
		}
		if n < blockLen {
			if err := r.refill(); err != nil {
				return err
			}
			continue
		}
		if err := r.skipBlock(blockLen); err != nil {
			return err
		}
		n -= blockLen
	}
	return nil
}

// Ord returns the number of values consumed so far, counting both
// decoded and skipped values.
func (r *BlockReader) Ord() int {
	return r.ord
}

func (r *BlockReader) readHeader() (bitsPerValue uint32, minValue int64, err error) {
	token, err := r.src.ReadByte()
	if err != nil {
		return 0, 0, err
	}
	bitsPerValue = uint32(token >> 1)
	if bitsPerValue > 64 {
		return 0, 0, fmt.Errorf("packed: invalid block token %#x", token)
	}
	if token&1 == 0 {
		u, err := binary.ReadUvarint(r.src)
		if err != nil {
			return 0, 0, err
		}
		minValue = zigzagDecode(u)
	}
	return bitsPerValue, minValue, nil
}

func (r *BlockReader) refill() error {
	remaining := r.count - r.ord
	if remaining <= 0 {
		return io.EOF
	}
	blockLen := BlockSize
	if remaining < blockLen {
		blockLen = remaining
	}
	bitsPerValue, minValue, err := r.readHeader()
	if err != nil {
		return err
	}
	if bitsPerValue == 0 {
		for i := 0; i < blockLen; i++ {
			r.vals[i] = minValue
		}
	} else {
		pr, err := NewReader(r.src, bitsPerValue)
		if err != nil {
			return err
		}
		for i := 0; i < blockLen; i++ {
			d, err := pr.Next()
			if err != nil {
				return err
			}
			r.vals[i] = minValue + int64(d)
		}
	}
	r.off = 0
	r.blockLen = blockLen
	return nil
}

func (r *BlockReader) skipBlock(blockLen int) error {
	bitsPerValue, _, err := r.readHeader()
	if err != nil {
		return err
	}
	if bitsPerValue > 0 {
		if err := skipBytes(r.src, ByteCount(blockLen, bitsPerValue)); err != nil {
			return err
		}
	}
	r.ord += blockLen
	return nil
}

func writeUvarint(w io.ByteWriter, v uint64) error {
	for v >= 0x80 {
		if err := w.WriteByte(byte(v) | 0x80); err != nil {
			return err
		}
		v >>= 7
	}
	return w.WriteByte(byte(v))
}

func zigzagEncode(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func zigzagDecode(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

// Package compress provides the interchangeable block codecs the term
// vector format compresses its payload blobs with.
//
// Two real modes are offered: ModeFast (LZ4 block compression, good for
// hot data) and ModeHighRatio (zstd, better ratio for cold data).
// ModeNone stores bytes verbatim and exists for debugging and for
// payload-free segments where compression buys nothing.
package compress

import (
	"fmt"
)

// Mode selects a compression algorithm. The selected mode is recorded
// in the segment metadata, so a segment is always decompressed with
// the mode it was written with.
type Mode uint8

const (
	// ModeNone stores bytes uncompressed.
	ModeNone Mode = 0
	// ModeFast uses LZ4 block compression.
	ModeFast Mode = 1
	// ModeHighRatio uses zstd.
	ModeHighRatio Mode = 2
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModeFast:
		return "fast"
	case ModeHighRatio:
		return "high-ratio"
	default:
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
}

// Valid reports whether m names a known mode.
func (m Mode) Valid() bool {
	return m <= ModeHighRatio
}

// Compressor compresses one block of bytes.
type Compressor interface {
	// Compress appends the compressed form of src to dst and returns
	// the extended slice. An empty result means src is incompressible
	// and should be stored raw.
	Compress(dst, src []byte) ([]byte, error)
}

// Decompressor reverses a Compressor.
type Decompressor interface {
	// Decompress appends the decompressed form of src to dst and
	// returns the extended slice. rawLen is the exact decompressed
	// size; a mismatch is reported as an error.
	Decompress(dst, src []byte, rawLen int) ([]byte, error)
}

// NewCompressor returns a Compressor for the mode.
func (m Mode) NewCompressor() (Compressor, error) {
	switch m {
	case ModeNone:
		return noneCodec{}, nil
	case ModeFast:
		return lz4Codec{}, nil
	case ModeHighRatio:
		return zstdCodec{}, nil
	default:
		return nil, fmt.Errorf("compress: unknown mode %d", uint8(m))
	}
}

// NewDecompressor returns a Decompressor for the mode.
func (m Mode) NewDecompressor() (Decompressor, error) {
	switch m {
	case ModeNone:
		return noneCodec{}, nil
	case ModeFast:
		return lz4Codec{}, nil
	case ModeHighRatio:
		return zstdCodec{}, nil
	default:
		return nil, fmt.Errorf("compress: unknown mode %d", uint8(m))
	}
}

type noneCodec struct{}

func (noneCodec) Compress(dst, src []byte) ([]byte, error) {
	// Always "incompressible"; the caller stores raw.
	return dst[:0], nil
}

func (noneCodec) Decompress(dst, src []byte, rawLen int) ([]byte, error) {
	if len(src) != rawLen {
		return nil, fmt.Errorf("compress: raw block is %d bytes, want %d", len(src), rawLen)
	}
	return append(dst, src...), nil
}

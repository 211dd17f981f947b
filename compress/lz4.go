package compress

import (
	"fmt"

	"github.com/pierrec/lz4/v4"
)

type lz4Codec struct{}

func (lz4Codec) Compress(dst, src []byte) ([]byte, error) {
	if len(src) == 0 {
		return dst[:0], nil
	}
	bound := lz4.CompressBlockBound(len(src))
	off := len(dst)
	if cap(dst)-off < bound {
		grown := make([]byte, off, off+bound)
		copy(grown, dst)
		dst = grown
	}
	var c lz4.Compressor
	n, err := c.CompressBlock(src, dst[off:off+bound])
	if err != nil {
		return nil, fmt.Errorf("failed to compress lz4 block: %w", err)
	}
	if n == 0 {
		// Incompressible.
		return dst[:off], nil
	}
	return dst[:off+n], nil
}

func (lz4Codec) Decompress(dst, src []byte, rawLen int) ([]byte, error) {
	off := len(dst)
	if cap(dst)-off < rawLen {
		grown := make([]byte, off, off+rawLen)
		copy(grown, dst)
		dst = grown
	}
	n, err := lz4.UncompressBlock(src, dst[off:off+rawLen])
	if err != nil {
		return nil, fmt.Errorf("failed to decompress lz4 block: %w", err)
	}
	if n != rawLen {
		return nil, fmt.Errorf("lz4 block decompressed to %d bytes, want %d", n, rawLen)
	}
	return dst[:off+n], nil
}

package termvec

import (
	"github.com/hupe1980/termvec/compress"
	"github.com/hupe1980/termvec/resource"
)

// Options configures a Writer or Reader.
type Options struct {
	// ChunkSize is the payload byte threshold that closes a chunk.
	// Smaller chunks decode faster per document; larger chunks
	// compress better.
	ChunkSize int

	// MaxChunkDocs caps the number of documents per chunk regardless
	// of payload size.
	MaxChunkDocs int

	// Compression selects the payload blob codec.
	Compression compress.Mode

	// FormatVersion is the on-disk format written. Defaults to the
	// current version; FormatVersionLegacy remains writable so the
	// legacy read path stays testable.
	FormatVersion uint32

	// Logger receives structured diagnostics. Defaults to NoopLogger.
	Logger *Logger

	// Metrics receives operational counters. Defaults to
	// NoopMetricsCollector.
	Metrics MetricsCollector

	// Resources throttles segment IO. Nil means unlimited.
	Resources *resource.Controller
}

// DefaultOptions contains the default configuration options.
var DefaultOptions = Options{
	ChunkSize:     1 << 14, // 16 KiB of pending payload
	MaxChunkDocs:  128,
	Compression:   compress.ModeFast,
	FormatVersion: FormatVersion,
}

func applyOptions(optFns []func(o *Options)) Options {
	opts := DefaultOptions
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Logger == nil {
		opts.Logger = NoopLogger()
	}
	if opts.Metrics == nil {
		opts.Metrics = NoopMetricsCollector{}
	}
	return opts
}

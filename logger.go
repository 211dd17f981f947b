package termvec

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with termvec-specific context.
// This provides structured logging with consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a new Logger with the given handler.
// If handler is nil, uses default text handler to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewJSONLogger creates a Logger that outputs JSON-formatted logs.
// level sets the minimum log level (e.g., slog.LevelDebug, slog.LevelInfo).
func NewJSONLogger(level slog.Level) *Logger {
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NewTextLogger creates a Logger that outputs human-readable text logs.
func NewTextLogger(level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// NoopLogger creates a Logger that discards all log output.
// Use this to disable logging entirely.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithSegment adds a segment id field to the logger.
func (l *Logger) WithSegment(id string) *Logger {
	return &Logger{
		Logger: l.Logger.With("segment", id),
	}
}

// WithDoc adds a document id field to the logger.
func (l *Logger) WithDoc(docID int) *Logger {
	return &Logger{
		Logger: l.Logger.With("doc", docID),
	}
}

// LogChunkFlush logs a flushed chunk.
func (l *Logger) LogChunkFlush(docBase, chunkDocs int, rawBytes, storedBytes int64, dirty bool) {
	l.Debug("chunk flushed",
		"doc_base", docBase,
		"chunk_docs", chunkDocs,
		"raw_bytes", rawBytes,
		"stored_bytes", storedBytes,
		"dirty", dirty,
	)
}

// LogFinish logs segment completion.
func (l *Logger) LogFinish(numDocs, numChunks, numDirtyChunks int) {
	l.Info("segment finished",
		"docs", numDocs,
		"chunks", numChunks,
		"dirty_chunks", numDirtyChunks,
	)
}

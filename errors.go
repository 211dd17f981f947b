package termvec

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when a Reader or Writer is used after Close.
	ErrClosed = errors.New("already closed")

	// ErrFinished is returned when documents are added to a Writer
	// after Finish.
	ErrFinished = errors.New("writer already finished")

	// ErrUnsupported is returned when an operation is not available,
	// e.g. dirty-chunk statistics on a legacy-format segment.
	ErrUnsupported = errors.New("unsupported operation")

	// ErrInvalidDocument is returned when AddDocument is given field or
	// term entries that violate the write contract (unsorted fields,
	// non-increasing ordinals, inconsistent per-flag array lengths).
	ErrInvalidDocument = errors.New("invalid document vectors")
)

// CorruptionError indicates that a segment file violates a structural
// invariant of the format. It is fatal and non-retryable; the segment
// must be rebuilt from its source.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type CorruptionError struct {
	File   string // file the corruption was detected in
	Pos    int64  // byte position, -1 if unknown
	Detail string
	cause  error
}

func (e *CorruptionError) Error() string {
	if e.Pos >= 0 {
		return fmt.Sprintf("corrupted %s at %d: %s", e.File, e.Pos, e.Detail)
	}
	return fmt.Sprintf("corrupted %s: %s", e.File, e.Detail)
}

func (e *CorruptionError) Unwrap() error { return e.cause }

func corruption(file string, pos int64, format string, args ...any) error {
	return &CorruptionError{File: file, Pos: pos, Detail: fmt.Sprintf(format, args...)}
}

func corruptionErr(file string, pos int64, cause error) error {
	return &CorruptionError{File: file, Pos: pos, Detail: cause.Error(), cause: cause}
}

// IntegrityError indicates a checksum footer mismatch. Same failure
// class as CorruptionError, detected by CheckIntegrity rather than by
// structural decoding.
type IntegrityError struct {
	File     string
	Expected uint32
	Actual   uint32
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch in %s: expected %#x, got %#x", e.File, e.Expected, e.Actual)
}

// DocOutOfRangeError indicates a request for a document id outside the
// segment.
type DocOutOfRangeError struct {
	DocID   int
	NumDocs int
}

func (e *DocOutOfRangeError) Error() string {
	return fmt.Sprintf("doc %d out of range: segment has %d docs", e.DocID, e.NumDocs)
}

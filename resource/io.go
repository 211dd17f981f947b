package resource

import (
	"context"
	"io"
)

// LimitedWriter wraps an io.Writer with Controller rate limiting.
type LimitedWriter struct {
	ctx context.Context
	w   io.Writer
	rc  *Controller
}

// NewLimitedWriter creates a LimitedWriter charging writes against rc.
func NewLimitedWriter(ctx context.Context, w io.Writer, rc *Controller) *LimitedWriter {
	return &LimitedWriter{ctx: ctx, w: w, rc: rc}
}

// Write implements io.Writer.
func (w *LimitedWriter) Write(p []byte) (int, error) {
	if err := w.rc.AcquireIO(w.ctx, len(p)); err != nil {
		return 0, err
	}
	return w.w.Write(p)
}

// LimitedReader wraps an io.Reader with Controller rate limiting.
type LimitedReader struct {
	ctx context.Context
	r   io.Reader
	rc  *Controller
}

// NewLimitedReader creates a LimitedReader charging reads against rc.
func NewLimitedReader(ctx context.Context, r io.Reader, rc *Controller) *LimitedReader {
	return &LimitedReader{ctx: ctx, r: r, rc: rc}
}

// Read implements io.Reader. The charge is the buffer size, the upper
// bound of what the read can move.
func (r *LimitedReader) Read(p []byte) (int, error) {
	if err := r.rc.AcquireIO(r.ctx, len(p)); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}

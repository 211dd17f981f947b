// Package resource throttles segment IO. A Controller caps the byte
// rate and the number of in-flight IO operations, so bulk vector
// writes or integrity scans do not starve foreground work sharing the
// same disk or object store.
package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MaxConcurrentIO is the maximum number of concurrent IO
	// operations. If 0, defaults to 1.
	MaxConcurrentIO int64

	// IOLimitBytesPerSec is the maximum IO throughput.
	// If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller enforces a Config. A nil *Controller is valid and
// enforces nothing, so callers can thread one through unconditionally.
type Controller struct {
	cfg Config

	ioSem     *semaphore.Weighted
	ioLimiter *rate.Limiter

	ioBytes atomic.Int64
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	if cfg.MaxConcurrentIO <= 0 {
		cfg.MaxConcurrentIO = 1
	}

	c := &Controller{
		cfg:   cfg,
		ioSem: semaphore.NewWeighted(cfg.MaxConcurrentIO),
	}

	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// BeginIO reserves an IO slot, blocking while all slots are busy.
func (c *Controller) BeginIO(ctx context.Context) error {
	if c == nil {
		return nil
	}
	return c.ioSem.Acquire(ctx, 1)
}

// EndIO releases an IO slot taken by BeginIO.
func (c *Controller) EndIO() {
	if c == nil {
		return
	}
	c.ioSem.Release(1)
}

// AcquireIO waits until the byte-rate limit allows n more bytes.
func (c *Controller) AcquireIO(ctx context.Context, n int) error {
	if c == nil {
		return nil
	}
	c.ioBytes.Add(int64(n))
	if c.ioLimiter == nil {
		return nil
	}
	// WaitN caps n at the limiter burst; split oversized requests.
	for n > 0 {
		step := n
		if burst := c.ioLimiter.Burst(); step > burst {
			step = burst
		}
		if err := c.ioLimiter.WaitN(ctx, step); err != nil {
			return err
		}
		n -= step
	}
	return nil
}

// IOBytes returns the total bytes accounted so far.
func (c *Controller) IOBytes() int64 {
	if c == nil {
		return 0
	}
	return c.ioBytes.Load()
}

package resource

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNilControllerIsUnlimited(t *testing.T) {
	var c *Controller

	require.NoError(t, c.BeginIO(context.Background()))
	c.EndIO()
	require.NoError(t, c.AcquireIO(context.Background(), 1<<30))
	assert.Equal(t, int64(0), c.IOBytes())
}

func TestConcurrencyGate(t *testing.T) {
	c := NewController(Config{MaxConcurrentIO: 1})
	ctx := context.Background()

	require.NoError(t, c.BeginIO(ctx))

	blocked, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	assert.Error(t, c.BeginIO(blocked))

	c.EndIO()
	require.NoError(t, c.BeginIO(ctx))
	c.EndIO()
}

func TestAcquireIOAccounting(t *testing.T) {
	c := NewController(Config{})

	require.NoError(t, c.AcquireIO(context.Background(), 100))
	require.NoError(t, c.AcquireIO(context.Background(), 23))
	assert.Equal(t, int64(123), c.IOBytes())
}

func TestAcquireIOOversizedRequest(t *testing.T) {
	// A request larger than the burst must be split, not rejected.
	c := NewController(Config{IOLimitBytesPerSec: 1 << 20})

	require.NoError(t, c.AcquireIO(context.Background(), 1<<20+1))
}

func TestLimitedWriter(t *testing.T) {
	c := NewController(Config{})
	var buf bytes.Buffer

	w := NewLimitedWriter(context.Background(), &buf, c)
	n, err := w.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", buf.String())
	assert.Equal(t, int64(5), c.IOBytes())
}

func TestLimitedReader(t *testing.T) {
	c := NewController(Config{})

	r := NewLimitedReader(context.Background(), bytes.NewReader([]byte("hello")), c)
	p := make([]byte, 5)
	n, err := r.Read(p)
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, "hello", string(p))
}

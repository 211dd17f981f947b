package termdict

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDictionarySortsAndDedupes(t *testing.T) {
	d := NewMemoryDictionary([][]byte{
		[]byte("cherry"), []byte("apple"), []byte("banana"), []byte("apple"),
	})
	require.Equal(t, int64(3), d.Count())

	for i, want := range []string{"apple", "banana", "cherry"} {
		term, err := d.Lookup(int64(i))
		require.NoError(t, err)
		assert.Equal(t, want, string(term))
	}
}

func TestMemoryDictionaryLookupOutOfRange(t *testing.T) {
	d := NewMemoryDictionary([][]byte{[]byte("a")})

	_, err := d.Lookup(-1)
	assert.Error(t, err)
	_, err = d.Lookup(1)
	assert.Error(t, err)
}

func TestMemoryDictionaryOrd(t *testing.T) {
	d := NewMemoryDictionary([][]byte{[]byte("a"), []byte("c")})

	assert.Equal(t, int64(0), d.Ord([]byte("a")))
	assert.Equal(t, int64(1), d.Ord([]byte("c")))
	assert.Equal(t, int64(-1), d.Ord([]byte("b")))
}

func TestEnumeratorNext(t *testing.T) {
	d := NewMemoryDictionary([][]byte{[]byte("a"), []byte("b")})
	e := d.Enumerator()

	require.True(t, e.Next())
	assert.Equal(t, int64(0), e.Ord())
	assert.Equal(t, "a", string(e.Term()))

	require.True(t, e.Next())
	assert.Equal(t, "b", string(e.Term()))

	assert.False(t, e.Next())
}

func TestEnumeratorSeekCeil(t *testing.T) {
	d := NewMemoryDictionary([][]byte{[]byte("apple"), []byte("cherry")})
	e := d.Enumerator()

	status, err := e.SeekCeil([]byte("apple"))
	require.NoError(t, err)
	assert.Equal(t, SeekFound, status)
	assert.Equal(t, int64(0), e.Ord())

	status, err = e.SeekCeil([]byte("banana"))
	require.NoError(t, err)
	assert.Equal(t, SeekNotFound, status)
	assert.Equal(t, "cherry", string(e.Term()))

	status, err = e.SeekCeil([]byte("zebra"))
	require.NoError(t, err)
	assert.Equal(t, SeekEnd, status)
}

func TestEnumeratorSeekExactOrd(t *testing.T) {
	d := NewMemoryDictionary([][]byte{[]byte("a"), []byte("b"), []byte("c")})
	e := d.Enumerator()

	require.NoError(t, e.SeekExactOrd(2))
	assert.Equal(t, "c", string(e.Term()))

	assert.Error(t, e.SeekExactOrd(3))
	assert.Error(t, e.SeekExactOrd(-1))
}

func TestMapProvider(t *testing.T) {
	p := MapProvider{"body": NewMemoryDictionary([][]byte{[]byte("x")})}

	d, err := p.Dictionary("body")
	require.NoError(t, err)
	assert.Equal(t, int64(1), d.Count())

	_, err = p.Dictionary("missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	b.Add("body", []byte("rust"), 0)
	b.Add("body", []byte("go"), 0)
	b.Add("body", []byte("go"), 1)
	b.Add("title", []byte("intro"), 1)

	provider, stats := b.Build()

	body, err := provider.Dictionary("body")
	require.NoError(t, err)
	require.Equal(t, int64(2), body.Count())

	// Ordinals follow sorted term order.
	term, err := body.Lookup(0)
	require.NoError(t, err)
	assert.Equal(t, "go", string(term))

	require.Len(t, stats, 2)
	assert.Equal(t, "body", stats[0].Field)
	assert.Equal(t, uint64(2), stats[0].Terms[0].DocFreq) // "go" in docs 0 and 1
	assert.Equal(t, uint64(1), stats[0].Terms[1].DocFreq)

	assert.Equal(t, int64(0), b.Ord("body", []byte("go")))
	assert.Equal(t, int64(1), b.Ord("body", []byte("rust")))
	assert.Equal(t, int64(-1), b.Ord("body", []byte("zig")))
	assert.Equal(t, int64(-1), b.Ord("missing", []byte("go")))
}

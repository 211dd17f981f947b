package termvec_test

import (
	"testing"

	"github.com/hupe1980/termvec"
	"github.com/hupe1980/termvec/store"
	"github.com/hupe1980/termvec/termdict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cursorFixture writes one document with a known term set and returns
// its decoded vectors.
func cursorFixture(t *testing.T) *termvec.DocumentVectors {
	t.Helper()

	infos, err := termvec.NewFieldInfos([]termvec.FieldInfo{{Number: 0, Name: "body"}})
	require.NoError(t, err)
	dicts := termdict.MapProvider{
		"body": termdict.NewMemoryDictionary([][]byte{
			[]byte("apple"), []byte("banana"), []byte("cherry"), []byte("durian"), []byte("elderberry"),
		}),
	}

	doc := []termvec.FieldEntry{
		{
			FieldNum: 0,
			Flags:    termvec.FlagPositions | termvec.FlagPayloads,
			Terms: []termvec.TermEntry{
				{Ord: 0, Freq: 2, Positions: []int{1, 4}, Payloads: [][]byte{[]byte("p0"), nil}},
				{Ord: 2, Freq: 1, Positions: []int{9}, Payloads: [][]byte{[]byte("p1")}},
				{Ord: 4, Freq: 1, Positions: []int{12}, Payloads: [][]byte{nil}},
			},
		},
	}

	dir := store.NewMemDirectory()
	w, err := termvec.NewWriter(dir, "seg0", infos)
	require.NoError(t, err)
	require.NoError(t, w.AddDocument(doc))
	require.NoError(t, w.Finish(1))
	require.NoError(t, w.Close())

	r, err := termvec.OpenReader(dir, "seg0", infos, dicts)
	require.NoError(t, err)
	t.Cleanup(func() { r.Close() }) //nolint:errcheck

	dv, err := r.Get(0)
	require.NoError(t, err)
	require.NotNil(t, dv)
	return dv
}

func TestTermCursorIteration(t *testing.T) {
	dv := cursorFixture(t)
	fv := dv.Field("body")
	require.NotNil(t, fv)
	assert.Equal(t, 3, fv.NumTerms())
	assert.Nil(t, dv.Field("nope"))

	tc := fv.Cursor()
	assert.Equal(t, int64(-1), tc.Ord())
	_, err := tc.Term()
	assert.Error(t, err)

	wantTerms := []string{"apple", "cherry", "elderberry"}
	wantOrds := []int64{0, 2, 4}
	for i := range wantTerms {
		term, ok := tc.Next()
		require.True(t, ok)
		assert.Equal(t, wantTerms[i], string(term))
		assert.Equal(t, wantOrds[i], tc.Ord())
	}
	_, ok := tc.Next()
	assert.False(t, ok)
	assert.Equal(t, int64(-1), tc.Ord())
}

func TestTermCursorSeekCeil(t *testing.T) {
	dv := cursorFixture(t)
	tc := dv.Field("body").Cursor()

	// Exact hit.
	status, err := tc.SeekCeil([]byte("cherry"))
	require.NoError(t, err)
	assert.Equal(t, termdict.SeekFound, status)
	assert.Equal(t, int64(2), tc.Ord())

	// Seeking to the current term stays put.
	status, err = tc.SeekCeil([]byte("cherry"))
	require.NoError(t, err)
	assert.Equal(t, termdict.SeekFound, status)
	assert.Equal(t, int64(2), tc.Ord())

	// Absent term lands on the next larger one.
	status, err = tc.SeekCeil([]byte("coconut"))
	require.NoError(t, err)
	assert.Equal(t, termdict.SeekNotFound, status)
	assert.Equal(t, int64(4), tc.Ord())

	// Backward seek rescans from the start.
	status, err = tc.SeekCeil([]byte("apple"))
	require.NoError(t, err)
	assert.Equal(t, termdict.SeekFound, status)
	assert.Equal(t, int64(0), tc.Ord())

	// Past the end.
	status, err = tc.SeekCeil([]byte("zucchini"))
	require.NoError(t, err)
	assert.Equal(t, termdict.SeekEnd, status)
}

func TestTermCursorSeekExactOrdUnsupported(t *testing.T) {
	dv := cursorFixture(t)
	tc := dv.Field("body").Cursor()
	assert.ErrorIs(t, tc.SeekExactOrd(2), termvec.ErrUnsupported)
}

func TestPostingsCursor(t *testing.T) {
	dv := cursorFixture(t)
	tc := dv.Field("body").Cursor()

	_, err := tc.Postings()
	assert.Error(t, err) // unpositioned

	_, ok := tc.Next()
	require.True(t, ok)

	pc, err := tc.Postings()
	require.NoError(t, err)
	assert.Equal(t, int64(1), pc.Cost())

	// No position before the first NextDoc.
	_, _, _, _, err = pc.NextPosition()
	assert.Error(t, err)

	assert.Equal(t, 0, pc.NextDoc())
	assert.Equal(t, 2, pc.Freq())

	pos, startOff, endOff, payload, err := pc.NextPosition()
	require.NoError(t, err)
	assert.Equal(t, 1, pos)
	assert.Equal(t, -1, startOff)
	assert.Equal(t, -1, endOff)
	assert.Equal(t, []byte("p0"), payload)

	pos, _, _, payload, err = pc.NextPosition()
	require.NoError(t, err)
	assert.Equal(t, 4, pos)
	assert.Nil(t, payload)

	_, _, _, _, err = pc.NextPosition()
	assert.Error(t, err)

	assert.Equal(t, -1, pc.NextDoc())
	assert.Equal(t, -1, pc.NextDoc())
}

// Each cursor carries its own state; two cursors over the same field
// do not interfere.
func TestCursorsAreIndependent(t *testing.T) {
	dv := cursorFixture(t)
	fv := dv.Field("body")

	a := fv.Cursor()
	b := fv.Cursor()

	_, ok := a.Next()
	require.True(t, ok)
	_, ok = a.Next()
	require.True(t, ok)

	term, ok := b.Next()
	require.True(t, ok)
	assert.Equal(t, "apple", string(term))
	assert.Equal(t, int64(2), a.Ord())
}

package termvec

import (
	"testing"

	"github.com/hupe1980/termvec/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonotonicRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		values []int64
	}{
		{"single", []int64{42}},
		{"pure line", []int64{0, 10, 20, 30, 40}},
		{"jittered", []int64{0, 7, 30, 31, 90, 95, 200}},
		{"flat", []int64{5, 5, 5, 5}},
		{"large pointers", []int64{1 << 40, 1<<40 + 12345, 1<<41 + 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := store.NewMemDirectory()
			out, err := dir.CreateOutput("f")
			require.NoError(t, err)
			require.NoError(t, writeMonotonic(out, tt.values))
			require.NoError(t, out.Close())

			in, err := dir.OpenInput("f")
			require.NoError(t, err)
			defer in.Close() //nolint:errcheck

			got, err := readMonotonic(in, len(tt.values))
			require.NoError(t, err)
			assert.Equal(t, tt.values, got)
		})
	}
}

func writeChunkEntries(t *testing.T, chunks []chunkEntry) (*store.Input, []locatorBlockMeta) {
	t.Helper()
	dir := store.NewMemDirectory()
	out, err := dir.CreateOutput("seg0" + LocatorExtension)
	require.NoError(t, err)
	blockDir, err := writeLocatorBlocks(out, chunks)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("seg0" + LocatorExtension)
	require.NoError(t, err)
	t.Cleanup(func() { in.Close() }) //nolint:errcheck
	return in, blockDir
}

func TestBlockLocatorLookups(t *testing.T) {
	// Enough chunks to span three locator blocks.
	numChunks := 2*locatorBlockSize + 100
	chunks := make([]chunkEntry, numChunks)
	docBase := 0
	pointer := int64(32)
	for i := range chunks {
		chunks[i] = chunkEntry{docBase: docBase, pointer: pointer}
		docBase += 3 // three docs per chunk
		pointer += 17
	}
	numDocs := docBase

	in, blockDir := writeChunkEntries(t, chunks)
	require.Len(t, blockDir, 3)

	l := newBlockLocator(in, blockDir, NoopMetricsCollector{})
	for docID := 0; docID < numDocs; docID++ {
		ptr, err := l.startPointer(docID)
		require.NoError(t, err)
		assert.Equal(t, chunks[docID/3].pointer, ptr, "doc %d", docID)
	}
}

func TestBlockLocatorCaching(t *testing.T) {
	chunks := []chunkEntry{{0, 32}, {10, 100}, {20, 250}}
	in, blockDir := writeChunkEntries(t, chunks)

	metrics := &BasicMetricsCollector{}
	l := newBlockLocator(in, blockDir, metrics)

	for i := 0; i < 5; i++ {
		_, err := l.startPointer(15)
		require.NoError(t, err)
	}
	stats := metrics.GetStats()
	assert.Equal(t, int64(1), stats.LocatorMisses)
	assert.Equal(t, int64(4), stats.LocatorHits)
}

func TestLegacyLocatorRoundTrip(t *testing.T) {
	chunks := []chunkEntry{{0, 32}, {5, 90}, {6, 120}, {50, 4000}}

	dir := store.NewMemDirectory()
	out, err := dir.CreateOutput("f")
	require.NoError(t, err)
	require.NoError(t, writeLocatorLegacy(out, chunks))
	require.NoError(t, writeFooter(out))
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	l, err := readLocatorLegacy(in)
	require.NoError(t, err)

	wantPointer := func(docID int) int64 {
		for i := len(chunks) - 1; i >= 0; i-- {
			if chunks[i].docBase <= docID {
				return chunks[i].pointer
			}
		}
		return -1
	}
	for _, docID := range []int{0, 4, 5, 6, 49, 50, 99} {
		ptr, err := l.startPointer(docID)
		require.NoError(t, err)
		assert.Equal(t, wantPointer(docID), ptr, "doc %d", docID)
	}
}

func TestLocatorDirectoryRoundTrip(t *testing.T) {
	dirMeta := []locatorBlockMeta{{0, 32}, {1024 * 3, 9000}, {1024 * 6, 22000}}

	dir := store.NewMemDirectory()
	out, err := dir.CreateOutput("f")
	require.NoError(t, err)
	require.NoError(t, writeLocatorDirectory(out, dirMeta))
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	got, err := readLocatorDirectory(in)
	require.NoError(t, err)
	assert.Equal(t, dirMeta, got)
}

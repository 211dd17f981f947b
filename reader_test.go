package termvec_test

import (
	"context"
	"testing"

	"github.com/hupe1980/termvec"
	"github.com/hupe1980/termvec/blobstore"
	"github.com/hupe1980/termvec/resource"
	"github.com/hupe1980/termvec/store"
	"github.com/hupe1980/termvec/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReaderDocOutOfRange(t *testing.T) {
	rng := testutil.NewRNG(1)
	corpus := rng.Corpus(10, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()
	writeCorpus(t, dir, "seg0", corpus)
	r := openCorpus(t, dir, "seg0", corpus)

	for _, docID := range []int{-1, 10, 1000} {
		_, err := r.Get(docID)
		var oor *termvec.DocOutOfRangeError
		require.ErrorAs(t, err, &oor, "doc %d", docID)
		assert.Equal(t, docID, oor.DocID)
		assert.Equal(t, 10, oor.NumDocs)
	}
}

func TestReaderClosed(t *testing.T) {
	rng := testutil.NewRNG(2)
	corpus := rng.Corpus(5, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()
	writeCorpus(t, dir, "seg0", corpus)
	r, err := termvec.OpenReader(dir, "seg0", corpus.FieldInfos, corpus.Provider)
	require.NoError(t, err)
	require.NoError(t, r.Close())

	_, err = r.Get(0)
	assert.ErrorIs(t, err, termvec.ErrClosed)
	assert.ErrorIs(t, r.CheckIntegrity(context.Background(), dir), termvec.ErrClosed)
	assert.NoError(t, r.Close())
}

func TestReaderMissingFiles(t *testing.T) {
	rng := testutil.NewRNG(3)
	corpus := rng.Corpus(5, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()
	_, err := termvec.OpenReader(dir, "seg0", corpus.FieldInfos, corpus.Provider)
	require.Error(t, err)
}

func TestReaderCorruptMeta(t *testing.T) {
	rng := testutil.NewRNG(4)
	corpus := rng.Corpus(20, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()
	writeCorpus(t, dir, "seg0", corpus)

	name := "seg0" + termvec.MetaExtension
	length, err := dir.FileLength(name)
	require.NoError(t, err)
	require.NoError(t, dir.Corrupt(name, length/2))

	_, err = termvec.OpenReader(dir, "seg0", corpus.FieldInfos, corpus.Provider)
	require.Error(t, err)
	var ierr *termvec.IntegrityError
	assert.ErrorAs(t, err, &ierr)
}

func TestReaderTruncatedData(t *testing.T) {
	rng := testutil.NewRNG(5)
	corpus := rng.Corpus(20, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()
	writeCorpus(t, dir, "seg0", corpus)

	name := "seg0" + termvec.DataExtension
	length, err := dir.FileLength(name)
	require.NoError(t, err)
	require.NoError(t, dir.Truncate(name, length/2))

	_, err = termvec.OpenReader(dir, "seg0", corpus.FieldInfos, corpus.Provider)
	require.Error(t, err)
	var cerr *termvec.CorruptionError
	assert.ErrorAs(t, err, &cerr)
}

// Corrupting the chunk body must surface as a decode error, not a
// panic or silent garbage, even though Get does not hash the file.
func TestReaderCorruptChunkBody(t *testing.T) {
	rng := testutil.NewRNG(6)
	cfg := testutil.DefaultCorpusConfig()
	cfg.SparseFields = false
	corpus := rng.Corpus(50, cfg)

	dir := store.NewMemDirectory()
	writeCorpus(t, dir, "seg0", corpus, func(o *termvec.Options) {
		o.MaxChunkDocs = 5
	})

	// Open first, then truncate the data file under the reader's view:
	// MemDirectory inputs snapshot the bytes, so instead corrupt before
	// opening.
	name := "seg0" + termvec.DataExtension
	length, err := dir.FileLength(name)
	require.NoError(t, err)
	require.NoError(t, dir.Truncate(name, length-100))

	r, err := termvec.OpenReader(dir, "seg0", corpus.FieldInfos, corpus.Provider)
	if err != nil {
		var cerr *termvec.CorruptionError
		assert.ErrorAs(t, err, &cerr)
		return
	}
	defer r.Close() //nolint:errcheck

	sawErr := false
	for docID := range corpus.Docs {
		if _, err := r.Get(docID); err != nil {
			sawErr = true
		}
	}
	assert.True(t, sawErr)
}

func TestReaderWrongSegmentID(t *testing.T) {
	rng := testutil.NewRNG(7)
	corpus := rng.Corpus(10, testutil.DefaultCorpusConfig())

	dirA := store.NewMemDirectory()
	dirB := store.NewMemDirectory()
	writeCorpus(t, dirA, "seg0", corpus)
	writeCorpus(t, dirB, "seg0", corpus)

	// Splice the locator file of another segment in. The UUID
	// cross-check must reject the mix.
	mixed := store.NewMemDirectory()
	copyFile := func(from store.Directory, name string) {
		in, err := from.OpenInput(name)
		require.NoError(t, err)
		defer in.Close() //nolint:errcheck
		out, err := mixed.CreateOutput(name)
		require.NoError(t, err)
		data := make([]byte, in.Length())
		require.NoError(t, in.ReadFull(data))
		_, err = out.Write(data)
		require.NoError(t, err)
		require.NoError(t, out.Close())
	}
	copyFile(dirA, "seg0"+termvec.DataExtension)
	copyFile(dirB, "seg0"+termvec.LocatorExtension)
	copyFile(dirA, "seg0"+termvec.MetaExtension)

	_, err := termvec.OpenReader(mixed, "seg0", corpus.FieldInfos, corpus.Provider)
	require.Error(t, err)
	var cerr *termvec.CorruptionError
	assert.ErrorAs(t, err, &cerr)
}

func TestReaderChunkStats(t *testing.T) {
	rng := testutil.NewRNG(8)
	corpus := rng.Corpus(40, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()

	w, err := termvec.NewWriter(dir, "seg0", corpus.FieldInfos, func(o *termvec.Options) {
		o.MaxChunkDocs = 16
		o.ChunkSize = 1 << 30 // doc count is the only flush trigger here
	})
	require.NoError(t, err)
	for _, doc := range corpus.Docs {
		require.NoError(t, w.AddDocument(doc))
	}
	require.NoError(t, w.Finish(len(corpus.Docs)))
	require.NoError(t, w.Close())

	// 40 docs at 16 per chunk: two full chunks plus a dirty tail.
	assert.Equal(t, int64(3), w.NumChunks())
	assert.Equal(t, int64(1), w.NumDirtyChunks())
	assert.Equal(t, int64(8), w.NumDirtyDocs())

	r := openCorpus(t, dir, "seg0", corpus)
	numChunks, err := r.NumChunks()
	require.NoError(t, err)
	assert.Equal(t, int64(3), numChunks)
	dirtyChunks, err := r.NumDirtyChunks()
	require.NoError(t, err)
	assert.Equal(t, int64(1), dirtyChunks)
	dirtyDocs, err := r.NumDirtyDocs()
	require.NoError(t, err)
	assert.Equal(t, int64(8), dirtyDocs)
}

func TestReaderMetrics(t *testing.T) {
	rng := testutil.NewRNG(9)
	corpus := rng.Corpus(30, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()
	writeCorpus(t, dir, "seg0", corpus)

	metrics := &termvec.BasicMetricsCollector{}
	r := openCorpus(t, dir, "seg0", corpus, func(o *termvec.Options) {
		o.Metrics = metrics
	})

	for docID := range corpus.Docs {
		_, err := r.Get(docID)
		require.NoError(t, err)
	}
	require.NoError(t, r.CheckIntegrity(context.Background(), dir))

	stats := metrics.GetStats()
	assert.Equal(t, int64(len(corpus.Docs)), stats.GetCount)
	assert.Zero(t, stats.GetErrors)
	assert.Equal(t, int64(1), stats.IntegrityChecks)
	assert.Positive(t, stats.LocatorHits+stats.LocatorMisses)
}

func TestReaderWithResourceController(t *testing.T) {
	rng := testutil.NewRNG(10)
	corpus := rng.Corpus(25, testutil.DefaultCorpusConfig())

	dir := store.NewMemDirectory()
	writeCorpus(t, dir, "seg0", corpus)

	rc := resource.NewController(resource.Config{MaxConcurrentIO: 2})
	r := openCorpus(t, dir, "seg0", corpus, func(o *termvec.Options) {
		o.Resources = rc
	})

	require.NoError(t, r.CheckIntegrity(context.Background(), dir))
	for docID := range corpus.Docs {
		_, err := r.Get(docID)
		require.NoError(t, err)
	}
}

// The codec must run unchanged over a blob-store backed directory.
func TestRoundTripBlobDirectory(t *testing.T) {
	rng := testutil.NewRNG(12)
	corpus := rng.Corpus(60, testutil.DefaultCorpusConfig())

	dir := store.NewBlobDirectory(context.Background(), blobstore.NewMemoryStore())
	writeCorpus(t, dir, "seg0", corpus, func(o *termvec.Options) {
		o.MaxChunkDocs = 8
	})
	r := openCorpus(t, dir, "seg0", corpus)

	for docID, fields := range corpus.Docs {
		dv, err := r.Get(docID)
		require.NoError(t, err)
		verifyDoc(t, corpus, dv, fields)
	}
	require.NoError(t, r.CheckIntegrity(context.Background(), dir))
}

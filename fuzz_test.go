package termvec_test

import (
	"testing"

	"github.com/hupe1980/termvec"
	"github.com/hupe1980/termvec/store"
	"github.com/hupe1980/termvec/testutil"
	"github.com/stretchr/testify/require"
)

// FuzzReaderCorruption flips one byte somewhere in a valid segment and
// checks that opening and fully reading it never panics: every fault
// must surface as an error (or be caught by CheckIntegrity), never as
// a crash or an out-of-range access.
func FuzzReaderCorruption(f *testing.F) {
	f.Add(uint8(0), uint64(0), int64(1))
	f.Add(uint8(0), uint64(40), int64(2))
	f.Add(uint8(1), uint64(17), int64(3))
	f.Add(uint8(2), uint64(60), int64(4))

	f.Fuzz(func(t *testing.T, file uint8, off uint64, seed int64) {
		rng := testutil.NewRNG(seed)
		cfg := testutil.DefaultCorpusConfig()
		cfg.MaxDocTerms = 5
		corpus := rng.Corpus(8, cfg)

		dir := store.NewMemDirectory()
		writeCorpus(t, dir, "seg0", corpus, func(o *termvec.Options) {
			o.MaxChunkDocs = 3
		})

		ext := []string{
			termvec.DataExtension,
			termvec.LocatorExtension,
			termvec.MetaExtension,
		}[file%3]
		length, err := dir.FileLength("seg0" + ext)
		require.NoError(t, err)
		require.NoError(t, dir.Corrupt("seg0"+ext, int64(off%uint64(length))))

		r, err := termvec.OpenReader(dir, "seg0", corpus.FieldInfos, corpus.Provider)
		if err != nil {
			return
		}
		defer r.Close() //nolint:errcheck

		for docID := range corpus.Docs {
			dv, err := r.Get(docID)
			if err != nil || dv == nil {
				continue
			}
			for _, name := range dv.Fields() {
				fv := dv.Field(name)
				tc := fv.Cursor()
				for {
					if _, ok := tc.Next(); !ok {
						break
					}
					pc, err := tc.Postings()
					if err != nil {
						continue
					}
					if pc.NextDoc() != 0 {
						continue
					}
					for i := 0; i < tc.Freq(); i++ {
						if _, _, _, _, err := pc.NextPosition(); err != nil {
							break
						}
					}
				}
			}
		}
	})
}

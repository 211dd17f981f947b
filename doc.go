// Package termvec implements a chunked, compressed on-disk codec for
// per-document term vectors whose terms are ordinals into external
// sorted per-field dictionaries.
//
// A segment consists of three files: a data file (.tvd) holding
// compressed chunks of documents, a locator file (.tvx) mapping doc
// ids to chunk start pointers, and a metadata file (.tvm) describing
// the segment. Term bytes are never stored; readers resolve ordinals
// through a termdict.Provider supplied at open time.
//
// # Writing
//
//	infos, _ := termvec.NewFieldInfos([]termvec.FieldInfo{
//		{Number: 0, Name: "title"},
//		{Number: 1, Name: "body"},
//	})
//	w, _ := termvec.NewWriter(dir, "seg0", infos)
//	for _, doc := range docs {
//		_ = w.AddDocument(doc)
//	}
//	_ = w.Finish(len(docs))
//	_ = w.Close()
//
// # Reading
//
//	r, _ := termvec.OpenReader(dir, "seg0", infos, dicts)
//	dv, _ := r.Get(42)
//	if dv != nil {
//		tc := dv.Field("body").Cursor()
//		for term, ok := tc.Next(); ok; term, ok = tc.Next() {
//			fmt.Println(string(term), tc.Freq())
//		}
//	}
//	_ = r.Close()
//
// Readers are single-goroutine cursors; use Clone to fan out across
// goroutines. Decoding one document costs one chunk visit: metadata
// streams of sibling documents are skipped block-wise, and only the
// payload blob is decompressed in full.
//
// # Key Features
//
//   - Ordinal-coded terms against external sorted dictionaries
//   - Chunked storage with LZ4 or Zstandard payload compression
//   - Block-packed metadata streams with cheap sibling skips
//   - Position-predicted offset deltas
//   - Checksummed files with full integrity verification
//   - Pluggable directories (filesystem mmap, memory, blob store)
package termvec

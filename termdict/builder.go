package termdict

import (
	"sort"

	"github.com/RoaringBitmap/roaring/v2"
)

// Builder accumulates (field, term, doc) observations from a corpus
// and assigns ordinals when Build is called. Document membership per
// term is tracked in compressed bitmaps, so the builder doubles as a
// cheap document-frequency index for tooling and tests.
//
// A Builder is single-writer, matching the codec's write path.
type Builder struct {
	fields map[string]map[string]*roaring.Bitmap
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{fields: make(map[string]map[string]*roaring.Bitmap)}
}

// Add records one occurrence of term in field for docID. Duplicate
// observations are cheap; the bitmap absorbs them.
func (b *Builder) Add(field string, term Term, docID uint32) {
	terms, ok := b.fields[field]
	if !ok {
		terms = make(map[string]*roaring.Bitmap)
		b.fields[field] = terms
	}
	bm, ok := terms[string(term)]
	if !ok {
		bm = roaring.New()
		terms[string(term)] = bm
	}
	bm.Add(docID)
}

// TermStats describes one term after Build.
type TermStats struct {
	Ord     int64
	Term    Term
	DocFreq uint64
}

// FieldStats describes one field's dictionary after Build.
type FieldStats struct {
	Field string
	Terms []TermStats
}

// Build freezes the accumulated corpus into per-field dictionaries.
// Ordinals are assigned in sorted term order, the order the codec
// requires.
func (b *Builder) Build() (MapProvider, []FieldStats) {
	provider := make(MapProvider, len(b.fields))
	stats := make([]FieldStats, 0, len(b.fields))

	fieldNames := make([]string, 0, len(b.fields))
	for name := range b.fields {
		fieldNames = append(fieldNames, name)
	}
	sort.Strings(fieldNames)

	for _, name := range fieldNames {
		terms := b.fields[name]
		raw := make([][]byte, 0, len(terms))
		for t := range terms {
			raw = append(raw, []byte(t))
		}
		dict := NewMemoryDictionary(raw)
		provider[name] = dict

		fs := FieldStats{Field: name, Terms: make([]TermStats, 0, dict.Count())}
		for ord := int64(0); ord < dict.Count(); ord++ {
			term, _ := dict.Lookup(ord)
			fs.Terms = append(fs.Terms, TermStats{
				Ord:     ord,
				Term:    term,
				DocFreq: b.fields[name][string(term)].GetCardinality(),
			})
		}
		stats = append(stats, fs)
	}
	return provider, stats
}

// Ord returns the ordinal term would receive in field if Build were
// called now, or -1 when unseen. Useful while preparing documents for
// the writer, which needs ordinals up front.
func (b *Builder) Ord(field string, term Term) int64 {
	terms, ok := b.fields[field]
	if !ok {
		return -1
	}
	if _, ok := terms[string(term)]; !ok {
		return -1
	}
	ord := int64(0)
	for t := range terms {
		if t < string(term) {
			ord++
		}
	}
	return ord
}

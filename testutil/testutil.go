package testutil

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/hupe1980/termvec"
	"github.com/hupe1980/termvec/termdict"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Float64 returns a pseudo-random number in [0.0,1.0).
func (r *RNG) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float64()
}

// Bytes returns n pseudo-random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	b := make([]byte, n)
	r.rand.Read(b) //nolint:errcheck // never fails
	return b
}

// Corpus bundles everything a round-trip test needs: the field schema,
// per-field dictionaries and a deterministic set of documents.
type Corpus struct {
	FieldInfos *termvec.FieldInfos
	Provider   termdict.MapProvider
	Docs       [][]termvec.FieldEntry
}

// CorpusConfig controls corpus generation. The zero value is not
// usable; start from DefaultCorpusConfig.
type CorpusConfig struct {
	NumFields    int
	DictSize     int // terms per field dictionary
	MaxDocTerms  int // distinct terms per field occurrence
	MaxFreq      int
	MaxPayload   int // payload bytes per occurrence, 0 disables variation
	SparseFields bool // when set, documents carry a random subset of fields
	FixedFlags   *uint8
}

// DefaultCorpusConfig returns a config exercising every stream type.
func DefaultCorpusConfig() CorpusConfig {
	return CorpusConfig{
		NumFields:    3,
		DictSize:     200,
		MaxDocTerms:  12,
		MaxFreq:      4,
		MaxPayload:   8,
		SparseFields: true,
	}
}

// Corpus generates a deterministic random corpus of numDocs documents.
func (r *RNG) Corpus(numDocs int, cfg CorpusConfig) *Corpus {
	infos := make([]termvec.FieldInfo, cfg.NumFields)
	dicts := make(termdict.MapProvider, cfg.NumFields)
	for i := range infos {
		name := fmt.Sprintf("field%d", i)
		infos[i] = termvec.FieldInfo{Number: int32(i), Name: name}
		dicts[name] = r.Dictionary(cfg.DictSize)
	}
	fieldInfos, err := termvec.NewFieldInfos(infos)
	if err != nil {
		panic(err)
	}

	docs := make([][]termvec.FieldEntry, numDocs)
	for d := range docs {
		docs[d] = r.Document(fieldInfos, dicts, cfg)
	}

	return &Corpus{FieldInfos: fieldInfos, Provider: dicts, Docs: docs}
}

// Dictionary generates a sorted dictionary of at most size distinct
// random terms.
func (r *RNG) Dictionary(size int) *termdict.MemoryDictionary {
	terms := make([]termdict.Term, size)
	for i := range terms {
		terms[i] = r.Bytes(1 + r.Intn(10))
	}
	return termdict.NewMemoryDictionary(terms)
}

// Document generates one valid random document: sorted field numbers,
// strictly increasing ordinals, and per-flag runs sized to the
// frequencies. Some documents come out empty, and some fields carry
// zero terms, both on purpose.
func (r *RNG) Document(infos *termvec.FieldInfos, dicts termdict.MapProvider, cfg CorpusConfig) []termvec.FieldEntry {
	var entries []termvec.FieldEntry
	for _, info := range infos.All() {
		if cfg.SparseFields && r.Float64() < 0.3 {
			continue
		}
		flags := uint8(r.Intn(8))
		if cfg.FixedFlags != nil {
			flags = *cfg.FixedFlags
		}
		dict, err := dicts.Dictionary(info.Name)
		if err != nil {
			panic(err)
		}
		entries = append(entries, termvec.FieldEntry{
			FieldNum: info.Number,
			Flags:    flags,
			Terms:    r.terms(dict, flags, cfg),
		})
	}
	return entries
}

func (r *RNG) terms(dict termdict.Dictionary, flags uint8, cfg CorpusConfig) []termvec.TermEntry {
	numTerms := r.Intn(cfg.MaxDocTerms + 1)
	if int64(numTerms) > dict.Count() {
		numTerms = int(dict.Count())
	}
	ords := r.sampleOrds(numTerms, dict.Count())

	terms := make([]termvec.TermEntry, len(ords))
	pos := 0
	off := 0
	for i, ord := range ords {
		freq := 1 + r.Intn(cfg.MaxFreq)
		t := termvec.TermEntry{Ord: ord, Freq: freq}
		termBytes, err := dict.Lookup(ord)
		if err != nil {
			panic(err)
		}
		for k := 0; k < freq; k++ {
			pos += 1 + r.Intn(4)
			off += 1 + r.Intn(20)
			if flags&termvec.FlagPositions != 0 {
				t.Positions = append(t.Positions, pos)
			}
			if flags&termvec.FlagOffsets != 0 {
				t.StartOffsets = append(t.StartOffsets, off)
				t.EndOffsets = append(t.EndOffsets, off+len(termBytes))
			}
			if flags&termvec.FlagPayloads != 0 {
				t.Payloads = append(t.Payloads, r.Bytes(r.Intn(cfg.MaxPayload+1)))
			}
		}
		terms[i] = t
	}
	return terms
}

// sampleOrds draws n distinct ordinals from [0, count) in increasing
// order.
func (r *RNG) sampleOrds(n int, count int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[int64]struct{}, n)
	for len(seen) < n {
		seen[r.rand.Int63n(count)] = struct{}{}
	}
	ords := make([]int64, 0, n)
	for ord := range seen {
		ords = append(ords, ord)
	}
	for i := 1; i < len(ords); i++ {
		for j := i; j > 0 && ords[j] < ords[j-1]; j-- {
			ords[j], ords[j-1] = ords[j-1], ords[j]
		}
	}
	return ords
}

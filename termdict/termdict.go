// Package termdict defines the sorted per-field term dictionaries the
// term vector codec resolves ordinals against.
//
// A vector record never stores term bytes. It stores each term's
// ordinal, its 0-based rank in the field's sorted dictionary, and the
// bytes are looked up here on demand. The dictionary is maintained
// outside the codec (typically by the postings format); this package
// provides the consuming interfaces plus an in-memory implementation
// and a corpus Builder for tests and tooling.
package termdict

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

// Term is the byte representation of a single term.
type Term = []byte

// ErrNotFound is returned when a field has no dictionary.
var ErrNotFound = errors.New("termdict: dictionary not found")

// SeekStatus is the outcome of a text seek on an Enumerator.
type SeekStatus int

const (
	// SeekEnd means the target sorts past every term.
	SeekEnd SeekStatus = iota
	// SeekFound means the enumerator is positioned on the exact term.
	SeekFound
	// SeekNotFound means the enumerator is positioned on the smallest
	// term greater than the target.
	SeekNotFound
)

// Dictionary is a sorted, ordinal-addressable term list for one field.
// Implementations must be immutable and safe for concurrent use.
type Dictionary interface {
	// Count returns the number of terms.
	Count() int64
	// Lookup returns the term at ord. The returned bytes must not be
	// mutated by the caller.
	Lookup(ord int64) (Term, error)
	// Enumerator returns a fresh forward enumerator positioned before
	// the first term.
	Enumerator() Enumerator
}

// Enumerator walks a Dictionary in sorted order. An Enumerator is not
// safe for concurrent use; obtain one per goroutine.
type Enumerator interface {
	// Next advances to the next term and reports whether one exists.
	Next() bool
	// SeekCeil positions the enumerator on the smallest term >= text.
	SeekCeil(text Term) (SeekStatus, error)
	// SeekExactOrd positions the enumerator on the term at ord.
	SeekExactOrd(ord int64) error
	// Ord returns the ordinal of the current term.
	Ord() int64
	// Term returns the current term's bytes.
	Term() Term
}

// Provider hands out dictionaries by field name. The codec captures a
// Provider's dictionaries once at reader construction; a Provider must
// therefore return stable handles.
type Provider interface {
	// Dictionary returns the dictionary for field, or an error that
	// satisfies errors.Is(err, ErrNotFound) when the field has none.
	Dictionary(field string) (Dictionary, error)
}

// MapProvider is a Provider backed by a plain map.
type MapProvider map[string]Dictionary

// Dictionary implements Provider.
func (p MapProvider) Dictionary(field string) (Dictionary, error) {
	d, ok := p[field]
	if !ok {
		return nil, fmt.Errorf("failed to resolve dictionary for field %q: %w", field, ErrNotFound)
	}
	return d, nil
}

// MemoryDictionary is an immutable in-memory Dictionary.
type MemoryDictionary struct {
	terms [][]byte
}

// NewMemoryDictionary builds a MemoryDictionary from terms. The input
// is copied, sorted and de-duplicated.
func NewMemoryDictionary(terms [][]byte) *MemoryDictionary {
	sorted := make([][]byte, 0, len(terms))
	for _, t := range terms {
		sorted = append(sorted, append([]byte{}, t...))
	}
	sort.Slice(sorted, func(i, j int) bool {
		return bytes.Compare(sorted[i], sorted[j]) < 0
	})
	deduped := sorted[:0]
	for i, t := range sorted {
		if i == 0 || !bytes.Equal(t, sorted[i-1]) {
			deduped = append(deduped, t)
		}
	}
	return &MemoryDictionary{terms: deduped}
}

// Count implements Dictionary.
func (d *MemoryDictionary) Count() int64 {
	return int64(len(d.terms))
}

// Lookup implements Dictionary.
func (d *MemoryDictionary) Lookup(ord int64) (Term, error) {
	if ord < 0 || ord >= int64(len(d.terms)) {
		return nil, fmt.Errorf("failed to look up ordinal %d: dictionary has %d terms", ord, len(d.terms))
	}
	return d.terms[ord], nil
}

// Ord returns the ordinal of term, or -1 when absent.
func (d *MemoryDictionary) Ord(term Term) int64 {
	i := sort.Search(len(d.terms), func(i int) bool {
		return bytes.Compare(d.terms[i], term) >= 0
	})
	if i < len(d.terms) && bytes.Equal(d.terms[i], term) {
		return int64(i)
	}
	return -1
}

// Enumerator implements Dictionary.
func (d *MemoryDictionary) Enumerator() Enumerator {
	return &memoryEnumerator{dict: d, ord: -1}
}

type memoryEnumerator struct {
	dict *MemoryDictionary
	ord  int64
}

func (e *memoryEnumerator) Next() bool {
	if e.ord+1 >= e.dict.Count() {
		return false
	}
	e.ord++
	return true
}

func (e *memoryEnumerator) SeekCeil(text Term) (SeekStatus, error) {
	i := sort.Search(len(e.dict.terms), func(i int) bool {
		return bytes.Compare(e.dict.terms[i], text) >= 0
	})
	if i == len(e.dict.terms) {
		e.ord = int64(len(e.dict.terms))
		return SeekEnd, nil
	}
	e.ord = int64(i)
	if bytes.Equal(e.dict.terms[i], text) {
		return SeekFound, nil
	}
	return SeekNotFound, nil
}

func (e *memoryEnumerator) SeekExactOrd(ord int64) error {
	if ord < 0 || ord >= e.dict.Count() {
		return fmt.Errorf("failed to seek to ordinal %d: dictionary has %d terms", ord, e.dict.Count())
	}
	e.ord = ord
	return nil
}

func (e *memoryEnumerator) Ord() int64 {
	return e.ord
}

func (e *memoryEnumerator) Term() Term {
	if e.ord < 0 || e.ord >= e.dict.Count() {
		return nil
	}
	return e.dict.terms[e.ord]
}

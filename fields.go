package termvec

import (
	"bytes"
	"fmt"

	"github.com/hupe1980/termvec/termdict"
)

// fieldData is the decoded state of one field of one document. All
// slices are immutable after decode; cursors index into them without
// copying.
type fieldData struct {
	info  FieldInfo
	flags uint8

	ords  []int64 // term ordinals, strictly increasing
	freqs []int   // per-term frequencies

	positionIndex []int // term j owns slots [positionIndex[j], positionIndex[j+1])
	positions     []int // nil when FlagPositions is off
	startOffsets  []int // nil when FlagOffsets is off
	lengths       []int // nil when FlagOffsets is off

	payloadIndex []int // nil when FlagPayloads is off; slot -> byte range
	payloadBytes []byte

	dict termdict.Dictionary // may be nil
}

// DocumentVectors holds the term vectors of a single document,
// fully decoded. It is immutable; every accessor and cursor carries
// its own iteration state, so one DocumentVectors can serve several
// goroutines at once.
type DocumentVectors struct {
	fields []fieldData
}

// Fields returns the field names, in the order they were added to the
// document.
func (dv *DocumentVectors) Fields() []string {
	names := make([]string, len(dv.fields))
	for i := range dv.fields {
		names[i] = dv.fields[i].info.Name
	}
	return names
}

// Field returns the vectors of the named field, or nil when the
// document has none for it.
func (dv *DocumentVectors) Field(name string) *FieldVectors {
	for i := range dv.fields {
		if dv.fields[i].info.Name == name {
			return &FieldVectors{data: &dv.fields[i]}
		}
	}
	return nil
}

// FieldVectors exposes the term vectors of one field.
type FieldVectors struct {
	data *fieldData
}

// Name returns the field name.
func (fv *FieldVectors) Name() string {
	return fv.data.info.Name
}

// NumTerms returns the number of distinct terms.
func (fv *FieldVectors) NumTerms() int {
	return len(fv.data.ords)
}

// HasPositions reports whether positions were indexed.
func (fv *FieldVectors) HasPositions() bool {
	return fv.data.flags&FlagPositions != 0
}

// HasOffsets reports whether character offsets were indexed.
func (fv *FieldVectors) HasOffsets() bool {
	return fv.data.flags&FlagOffsets != 0
}

// HasPayloads reports whether payloads were indexed.
func (fv *FieldVectors) HasPayloads() bool {
	return fv.data.flags&FlagPayloads != 0
}

// Cursor returns a fresh term cursor positioned before the first term.
func (fv *FieldVectors) Cursor() *TermCursor {
	return &TermCursor{data: fv.data, idx: -1}
}

// TermCursor iterates a field's terms in ordinal order. Term bytes are
// resolved lazily through the field's dictionary and cached for the
// current position.
type TermCursor struct {
	data *fieldData
	idx  int

	term    termdict.Term // resolved bytes of the current term, lazy
	termErr error
}

// Next advances to the next term and returns its bytes. It returns
// (nil, false) once the terms are exhausted, and also when the field
// has no dictionary to resolve against; check Ord after a nil term to
// tell the two apart.
func (tc *TermCursor) Next() (termdict.Term, bool) {
	if tc.idx+1 >= len(tc.data.ords) {
		tc.idx = len(tc.data.ords)
		tc.term, tc.termErr = nil, nil
		return nil, false
	}
	tc.idx++
	tc.resolve()
	return tc.term, true
}

func (tc *TermCursor) resolve() {
	tc.term, tc.termErr = nil, nil
	if tc.data.dict == nil {
		return
	}
	tc.term, tc.termErr = tc.data.dict.Lookup(tc.data.ords[tc.idx])
}

// Ord returns the dictionary ordinal of the current term, or -1 before
// the first Next.
func (tc *TermCursor) Ord() int64 {
	if tc.idx < 0 || tc.idx >= len(tc.data.ords) {
		return -1
	}
	return tc.data.ords[tc.idx]
}

// Term returns the bytes of the current term, resolving through the
// dictionary if Next has not already done so.
func (tc *TermCursor) Term() (termdict.Term, error) {
	if tc.idx < 0 || tc.idx >= len(tc.data.ords) {
		return nil, fmt.Errorf("failed to read term: cursor is unpositioned")
	}
	return tc.term, tc.termErr
}

// Freq returns the frequency of the current term within the document.
func (tc *TermCursor) Freq() int {
	if tc.idx < 0 || tc.idx >= len(tc.data.ords) {
		return 0
	}
	return tc.data.freqs[tc.idx]
}

// SeekCeil positions the cursor on the smallest term >= text. Moving
// backward resets to the start first; the scan itself is linear over
// the document's terms.
func (tc *TermCursor) SeekCeil(text termdict.Term) (termdict.SeekStatus, error) {
	if tc.data.dict == nil {
		return termdict.SeekEnd, fmt.Errorf("failed to seek: field %q has no dictionary", tc.data.info.Name)
	}
	if tc.idx >= 0 && tc.idx < len(tc.data.ords) {
		cur, err := tc.Term()
		if err != nil {
			return termdict.SeekEnd, err
		}
		switch bytes.Compare(cur, text) {
		case 0:
			return termdict.SeekFound, nil
		case 1:
			tc.idx = -1 // moving backward restarts the scan
		}
	}
	for {
		if _, ok := tc.Next(); !ok {
			return termdict.SeekEnd, tc.termErr
		}
		if tc.termErr != nil {
			return termdict.SeekEnd, tc.termErr
		}
		switch bytes.Compare(tc.term, text) {
		case 0:
			return termdict.SeekFound, nil
		case 1:
			return termdict.SeekNotFound, nil
		}
	}
}

// SeekExactOrd is not supported: ordinals here index the external
// dictionary, not the document's term list, so most ordinals have no
// cursor position. Use termdict.Enumerator for exact-ord addressing.
func (tc *TermCursor) SeekExactOrd(ord int64) error {
	return fmt.Errorf("%w: term cursors cannot seek by ordinal", ErrUnsupported)
}

// Postings returns a cursor over the current term's single-document
// postings.
func (tc *TermCursor) Postings() (*PostingsCursor, error) {
	if tc.idx < 0 || tc.idx >= len(tc.data.ords) {
		return nil, fmt.Errorf("failed to read postings: cursor is unpositioned")
	}
	return &PostingsCursor{
		data:  tc.data,
		freq:  tc.data.freqs[tc.idx],
		base:  tc.data.positionIndex[tc.idx],
		slot:  -1,
		docID: -1,
	}, nil
}

// PostingsCursor enumerates the positions of one term in one document.
// The doc iteration is degenerate: exactly one document, id 0.
type PostingsCursor struct {
	data  *fieldData
	freq  int
	base  int // first slot of this term's run
	slot  int // position index within the term, -1 before the first
	docID int
}

// NextDoc advances the single-document enumeration: -1 to 0, then
// exhausted (-1 forever).
func (pc *PostingsCursor) NextDoc() int {
	if pc.docID == -1 {
		pc.docID = 0
		return 0
	}
	pc.docID = 1 // exhausted
	return -1
}

// Freq returns the term frequency within the document.
func (pc *PostingsCursor) Freq() int {
	return pc.freq
}

// Cost returns the enumeration cost, always 1.
func (pc *PostingsCursor) Cost() int64 {
	return 1
}

// NextPosition returns the next occurrence. pos is -1 when positions
// were not indexed, startOff and endOff are -1 without offsets, and
// payload is nil without payloads.
func (pc *PostingsCursor) NextPosition() (pos, startOff, endOff int, payload []byte, err error) {
	if pc.docID != 0 {
		return 0, 0, 0, nil, fmt.Errorf("failed to read position: no current document")
	}
	if pc.slot+1 >= pc.freq {
		return 0, 0, 0, nil, fmt.Errorf("failed to read position: term has %d occurrences", pc.freq)
	}
	pc.slot++
	i := pc.base + pc.slot

	pos, startOff, endOff = -1, -1, -1
	if pc.data.positions != nil {
		pos = pc.data.positions[i]
	}
	if pc.data.startOffsets != nil {
		startOff = pc.data.startOffsets[i]
		endOff = startOff + pc.data.lengths[i]
	}
	if pc.data.payloadIndex != nil {
		from, to := pc.data.payloadIndex[i], pc.data.payloadIndex[i+1]
		if to > from {
			payload = pc.data.payloadBytes[from:to]
		}
	}
	return pos, startOff, endOff, payload, nil
}

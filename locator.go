package termvec

import (
	"sort"
	"sync"

	"github.com/hupe1980/termvec/internal/packed"
	"github.com/hupe1980/termvec/store"
)

// The locator maps a document id to the file pointer of its containing
// chunk in the data file. Two on-disk shapes share one contract:
//
//   - legacy (v1): the locator file body is a flat stream of uvarint
//     (docBaseDelta, pointerDelta) pairs, fully decoded at open.
//   - current (v2): fixed-size blocks of up to locatorBlockSize chunk
//     entries. Each sequence in a block is stored as a base, an
//     integer slope, and packed zigzag deviations from the resulting
//     line; a block directory in the metadata file locates blocks, so
//     only the block covering a lookup is ever decoded.
const locatorBlockSize = 1024

type chunkEntry struct {
	docBase int
	pointer int64
}

type locatorBlockMeta struct {
	firstDocBase int
	offset       int64 // block position in the locator file
}

// locator is the shared lookup contract.
type locator interface {
	// startPointer returns the data-file pointer of the chunk holding
	// docID. The caller guarantees 0 <= docID < numDocs.
	startPointer(docID int) (int64, error)
	close() error
}

// --- v2: block locator ---

type blockLocator struct {
	in      *store.Input // locator file, cursor guarded by mu
	dir     []locatorBlockMeta
	metrics MetricsCollector

	mu             sync.Mutex
	cachedIdx      int
	cachedDocBases []int64
	cachedPointers []int64
}

func newBlockLocator(in *store.Input, dir []locatorBlockMeta, metrics MetricsCollector) *blockLocator {
	return &blockLocator{in: in, dir: dir, metrics: metrics, cachedIdx: -1}
}

func (l *blockLocator) startPointer(docID int) (int64, error) {
	if len(l.dir) == 0 {
		return 0, corruption(l.in.Name(), -1, "lookup of doc %d in a segment with no chunks", docID)
	}
	idx := sort.Search(len(l.dir), func(i int) bool {
		return l.dir[i].firstDocBase > docID
	}) - 1
	if idx < 0 {
		return 0, corruption(l.in.Name(), -1, "doc %d precedes first chunk base %d", docID, l.dir[0].firstDocBase)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cachedIdx != idx {
		l.metrics.RecordLocatorLookup(false)
		if err := l.loadBlockLocked(idx); err != nil {
			return 0, err
		}
	} else {
		l.metrics.RecordLocatorLookup(true)
	}

	j := sort.Search(len(l.cachedDocBases), func(i int) bool {
		return l.cachedDocBases[i] > int64(docID)
	}) - 1
	if j < 0 {
		return 0, corruption(l.in.Name(), -1, "doc %d not covered by locator block %d", docID, idx)
	}
	return l.cachedPointers[j], nil
}

func (l *blockLocator) loadBlockLocked(idx int) error {
	if err := l.in.Seek(l.dir[idx].offset); err != nil {
		return corruptionErr(l.in.Name(), l.dir[idx].offset, err)
	}
	count, err := l.in.ReadUvarint()
	if err != nil {
		return corruptionErr(l.in.Name(), l.in.FilePointer(), err)
	}
	if count == 0 || count > locatorBlockSize {
		return corruption(l.in.Name(), l.dir[idx].offset, "locator block has %d entries", count)
	}
	docBases, err := readMonotonic(l.in, int(count))
	if err != nil {
		return err
	}
	pointers, err := readMonotonic(l.in, int(count))
	if err != nil {
		return err
	}
	l.cachedIdx = idx
	l.cachedDocBases = docBases
	l.cachedPointers = pointers
	return nil
}

func (l *blockLocator) close() error {
	return l.in.Close()
}

// --- v1: in-memory table ---

type arrayLocator struct {
	file     string
	docBases []int64
	pointers []int64
}

func (l *arrayLocator) startPointer(docID int) (int64, error) {
	if len(l.docBases) == 0 {
		return 0, corruption(l.file, -1, "lookup of doc %d in a segment with no chunks", docID)
	}
	j := sort.Search(len(l.docBases), func(i int) bool {
		return l.docBases[i] > int64(docID)
	}) - 1
	if j < 0 {
		return 0, corruption(l.file, -1, "doc %d precedes first chunk base %d", docID, l.docBases[0])
	}
	return l.pointers[j], nil
}

func (l *arrayLocator) close() error {
	return nil
}

// --- writing ---

// writeLocatorBlocks writes the v2 block layout and returns the block
// directory for the metadata file.
func writeLocatorBlocks(out *store.Output, chunks []chunkEntry) ([]locatorBlockMeta, error) {
	var dir []locatorBlockMeta
	for start := 0; start < len(chunks); start += locatorBlockSize {
		end := start + locatorBlockSize
		if end > len(chunks) {
			end = len(chunks)
		}
		block := chunks[start:end]

		dir = append(dir, locatorBlockMeta{
			firstDocBase: block[0].docBase,
			offset:       out.FilePointer(),
		})
		if err := out.WriteUvarint(uint64(len(block))); err != nil {
			return nil, err
		}

		docBases := make([]int64, len(block))
		pointers := make([]int64, len(block))
		for i, c := range block {
			docBases[i] = int64(c.docBase)
			pointers[i] = c.pointer
		}
		if err := writeMonotonic(out, docBases); err != nil {
			return nil, err
		}
		if err := writeMonotonic(out, pointers); err != nil {
			return nil, err
		}
	}
	return dir, nil
}

// writeLocatorLegacy writes the v1 flat delta stream.
func writeLocatorLegacy(out *store.Output, chunks []chunkEntry) error {
	prevBase := int64(0)
	prevPointer := int64(0)
	for _, c := range chunks {
		if err := out.WriteUvarint(uint64(int64(c.docBase) - prevBase)); err != nil {
			return err
		}
		if err := out.WriteUvarint(uint64(c.pointer - prevPointer)); err != nil {
			return err
		}
		prevBase = int64(c.docBase)
		prevPointer = c.pointer
	}
	return nil
}

// writeLocatorDirectory appends the v2 block directory to the metadata
// file.
func writeLocatorDirectory(out *store.Output, dir []locatorBlockMeta) error {
	if err := out.WriteUvarint(uint64(len(dir))); err != nil {
		return err
	}
	prevBase := int64(0)
	prevOffset := int64(0)
	for _, m := range dir {
		if err := out.WriteUvarint(uint64(int64(m.firstDocBase) - prevBase)); err != nil {
			return err
		}
		if err := out.WriteUvarint(uint64(m.offset - prevOffset)); err != nil {
			return err
		}
		prevBase = int64(m.firstDocBase)
		prevOffset = m.offset
	}
	return nil
}

// readLocatorDirectory reads what writeLocatorDirectory wrote.
func readLocatorDirectory(in *store.Input) ([]locatorBlockMeta, error) {
	count, err := in.ReadUvarint()
	if err != nil {
		return nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	dir := make([]locatorBlockMeta, count)
	base := int64(0)
	offset := int64(0)
	for i := range dir {
		d, err := in.ReadUvarint()
		if err != nil {
			return nil, corruptionErr(in.Name(), in.FilePointer(), err)
		}
		base += int64(d)
		d, err = in.ReadUvarint()
		if err != nil {
			return nil, corruptionErr(in.Name(), in.FilePointer(), err)
		}
		offset += int64(d)
		dir[i] = locatorBlockMeta{firstDocBase: int(base), offset: offset}
	}
	return dir, nil
}

// readLocatorLegacy decodes the whole v1 stream into memory. The body
// runs from the current position to the footer.
func readLocatorLegacy(in *store.Input) (*arrayLocator, error) {
	l := &arrayLocator{file: in.Name()}
	base := int64(0)
	pointer := int64(0)
	end := in.Length() - footerLen
	for in.FilePointer() < end {
		d, err := in.ReadUvarint()
		if err != nil {
			return nil, corruptionErr(in.Name(), in.FilePointer(), err)
		}
		base += int64(d)
		d, err = in.ReadUvarint()
		if err != nil {
			return nil, corruptionErr(in.Name(), in.FilePointer(), err)
		}
		pointer += int64(d)
		l.docBases = append(l.docBases, base)
		l.pointers = append(l.pointers, pointer)
	}
	if in.FilePointer() != end {
		return nil, corruption(in.Name(), in.FilePointer(), "locator stream overruns footer")
	}
	return l, nil
}

// --- monotonic sequence codec ---

// writeMonotonic stores values as base + slope*i + deviation(i), with
// the deviations zigzag encoded and bit packed. Values must be
// non-negative and non-decreasing.
func writeMonotonic(out *store.Output, values []int64) error {
	base := values[0]
	var slope int64
	if len(values) > 1 {
		slope = (values[len(values)-1] - base) / int64(len(values)-1)
	}

	var maxZig uint64
	for i, v := range values {
		zig := zigzag(v - (base + slope*int64(i)))
		if zig > maxZig {
			maxZig = zig
		}
	}
	var bits uint32
	if maxZig > 0 {
		bits = packed.BitsRequired(maxZig)
	}

	if err := out.WriteUvarint(uint64(base)); err != nil {
		return err
	}
	if err := out.WriteUvarint(uint64(slope)); err != nil {
		return err
	}
	if err := out.WriteUvarint(uint64(bits)); err != nil {
		return err
	}
	if bits == 0 {
		return nil
	}
	pw, err := packed.NewWriter(out, bits)
	if err != nil {
		return err
	}
	for i, v := range values {
		if err := pw.Add(zigzag(v - (base + slope*int64(i)))); err != nil {
			return err
		}
	}
	return pw.Finish()
}

func readMonotonic(in *store.Input, count int) ([]int64, error) {
	base, err := in.ReadUvarint()
	if err != nil {
		return nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	slope, err := in.ReadUvarint()
	if err != nil {
		return nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	bits, err := in.ReadUvarint()
	if err != nil {
		return nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	if bits > 64 {
		return nil, corruption(in.Name(), in.FilePointer(), "monotonic sequence with %d bits per deviation", bits)
	}

	values := make([]int64, count)
	if bits == 0 {
		for i := range values {
			values[i] = int64(base) + int64(slope)*int64(i)
		}
		return values, nil
	}
	pr, err := packed.NewReader(in, uint32(bits))
	if err != nil {
		return nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	for i := range values {
		zig, err := pr.Next()
		if err != nil {
			return nil, corruptionErr(in.Name(), in.FilePointer(), err)
		}
		values[i] = int64(base) + int64(slope)*int64(i) + unzigzag(zig)
	}
	return values, nil
}

func zigzag(v int64) uint64 {
	return uint64((v << 1) ^ (v >> 63))
}

func unzigzag(u uint64) int64 {
	return int64(u>>1) ^ -int64(u&1)
}

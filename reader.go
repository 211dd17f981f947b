package termvec

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/termvec/compress"
	"github.com/hupe1980/termvec/internal/packed"
	"github.com/hupe1980/termvec/store"
	"github.com/hupe1980/termvec/termdict"
	"golang.org/x/sync/errgroup"
)

// segmentMeta is the decoded metadata file.
type segmentMeta struct {
	version        uint32
	segmentID      uuid.UUID
	chunkSize      int
	compression    compress.Mode
	packedVersion  int
	numDocs        int
	numChunks      int64
	numDirtyChunks int64
	numDirtyDocs   int64
	maxPointer     int64
}

// Reader re-materializes per-document term vectors from a finished
// segment. A Reader is not safe for concurrent use; call Clone to hand
// an independent cursor to another goroutine. Clones share the locator,
// metadata and dictionaries, all immutable after open.
type Reader struct {
	name       string
	fieldInfos *FieldInfos
	opts       Options

	meta         segmentMeta
	decompressor compress.Decompressor
	dicts        map[int32]termdict.Dictionary

	tvd      *store.Input // owned cursor over the data file
	tvx      *store.Input // nil for legacy segments (fully decoded at open)
	locator  locator
	blockDir []locatorBlockMeta

	isClone bool
	closed  bool
}

// OpenReader opens the segment called name in dir. dictProvider
// supplies the per-field term dictionaries ordinals resolve against;
// the mapping is captured here once and never mutated afterwards.
// Fields without a dictionary stay readable, but their term bytes
// cannot be resolved.
func OpenReader(dir store.Directory, name string, fieldInfos *FieldInfos, dictProvider termdict.Provider, optFns ...func(o *Options)) (*Reader, error) {
	opts := applyOptions(optFns)
	r := &Reader{name: name, fieldInfos: fieldInfos, opts: opts}

	dataName, locatorName, metaName := SegmentFiles(name)

	ok := false
	defer func() {
		if !ok {
			r.Close() //nolint:errcheck
		}
	}()

	// Metadata first: it declares the format knobs everything else
	// depends on.
	tvm, err := dir.OpenInput(metaName)
	if err != nil {
		return nil, fmt.Errorf("failed to open reader: %w", err)
	}
	err = r.readMeta(tvm)
	if cerr := tvm.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, err
	}

	r.decompressor, err = r.meta.compression.NewDecompressor()
	if err != nil {
		return nil, corruption(metaName, -1, "%v", err)
	}

	r.tvd, err = dir.OpenInput(dataName)
	if err != nil {
		return nil, fmt.Errorf("failed to open reader: %w", err)
	}
	if err := r.checkSibling(r.tvd); err != nil {
		return nil, err
	}

	tvx, err := dir.OpenInput(locatorName)
	if err != nil {
		return nil, fmt.Errorf("failed to open reader: %w", err)
	}
	if err := r.checkSibling(tvx); err != nil {
		tvx.Close() //nolint:errcheck
		return nil, err
	}
	if r.meta.version >= FormatVersion {
		r.tvx = tvx
		r.locator = newBlockLocator(tvx, r.blockDir, opts.Metrics)
	} else {
		r.locator, err = readLocatorLegacy(tvx)
		if cerr := tvx.Close(); err == nil && cerr != nil {
			err = cerr
		}
		if err != nil {
			return nil, err
		}
	}

	// Constructor-time immutable dictionary mapping.
	r.dicts = make(map[int32]termdict.Dictionary)
	if dictProvider != nil {
		for _, info := range fieldInfos.All() {
			dict, err := dictProvider.Dictionary(info.Name)
			if err != nil {
				continue // fields without dictionaries resolve no term bytes
			}
			r.dicts[info.Number] = dict
		}
	}

	ok = true
	return r, nil
}

// blockDir is populated by readMeta for current-format segments.
func (r *Reader) readMeta(in *store.Input) error {
	if err := checkFooterShape(in); err != nil {
		return err
	}
	if err := verifyFooter(in); err != nil {
		return err
	}
	version, segmentID, err := readHeader(in)
	if err != nil {
		return err
	}
	r.meta.version = version
	r.meta.segmentID = segmentID

	v, err := in.ReadUvarint()
	if err != nil {
		return corruptionErr(in.Name(), in.FilePointer(), err)
	}
	r.meta.chunkSize = int(v)

	mode, err := in.ReadByte()
	if err != nil {
		return corruptionErr(in.Name(), in.FilePointer(), err)
	}
	r.meta.compression = compress.Mode(mode)
	if !r.meta.compression.Valid() {
		return corruption(in.Name(), in.FilePointer()-1, "unknown compression mode %d", mode)
	}

	if v, err = in.ReadUvarint(); err != nil {
		return corruptionErr(in.Name(), in.FilePointer(), err)
	}
	r.meta.packedVersion = int(v)
	if r.meta.packedVersion != packedVersion {
		return corruption(in.Name(), in.FilePointer(), "unsupported packed ints version %d", r.meta.packedVersion)
	}

	if v, err = in.ReadUvarint(); err != nil {
		return corruptionErr(in.Name(), in.FilePointer(), err)
	}
	r.meta.numDocs = int(v)

	if version >= FormatVersion {
		if v, err = in.ReadUvarint(); err != nil {
			return corruptionErr(in.Name(), in.FilePointer(), err)
		}
		r.meta.numChunks = int64(v)
		if v, err = in.ReadUvarint(); err != nil {
			return corruptionErr(in.Name(), in.FilePointer(), err)
		}
		r.meta.numDirtyChunks = int64(v)
		if v, err = in.ReadUvarint(); err != nil {
			return corruptionErr(in.Name(), in.FilePointer(), err)
		}
		r.meta.numDirtyDocs = int64(v)
	}

	if v, err = in.ReadUvarint(); err != nil {
		return corruptionErr(in.Name(), in.FilePointer(), err)
	}
	r.meta.maxPointer = int64(v)

	if version >= FormatVersion {
		r.blockDir, err = readLocatorDirectory(in)
		if err != nil {
			return err
		}
	}
	return nil
}

// checkSibling verifies that a data or locator file belongs to the
// same segment the metadata described.
func (r *Reader) checkSibling(in *store.Input) error {
	if err := checkFooterShape(in); err != nil {
		return err
	}
	version, segmentID, err := readHeader(in)
	if err != nil {
		return err
	}
	if version != r.meta.version {
		return corruption(in.Name(), -1, "version %d does not match metadata version %d", version, r.meta.version)
	}
	if segmentID != r.meta.segmentID {
		return corruption(in.Name(), -1, "segment id %s does not match metadata id %s", segmentID, r.meta.segmentID)
	}
	return nil
}

// NumDocs returns the number of documents in the segment.
func (r *Reader) NumDocs() int {
	return r.meta.numDocs
}

// NumChunks returns the chunk count recorded at write time.
// Only current-format segments carry it.
func (r *Reader) NumChunks() (int64, error) {
	if r.meta.version != FormatVersion {
		return 0, fmt.Errorf("%w: chunk statistics need format version %d, segment has %d", ErrUnsupported, FormatVersion, r.meta.version)
	}
	return r.meta.numChunks, nil
}

// NumDirtyChunks returns the count of chunks flushed below a size
// threshold. Only current-format segments carry it.
func (r *Reader) NumDirtyChunks() (int64, error) {
	if r.meta.version != FormatVersion {
		return 0, fmt.Errorf("%w: dirty statistics need format version %d, segment has %d", ErrUnsupported, FormatVersion, r.meta.version)
	}
	return r.meta.numDirtyChunks, nil
}

// NumDirtyDocs returns the number of documents in dirty chunks.
// Only current-format segments carry it.
func (r *Reader) NumDirtyDocs() (int64, error) {
	if r.meta.version != FormatVersion {
		return 0, fmt.Errorf("%w: dirty statistics need format version %d, segment has %d", ErrUnsupported, FormatVersion, r.meta.version)
	}
	return r.meta.numDirtyDocs, nil
}

// Clone returns an independent Reader over the same segment. The clone
// has its own data-file cursor and shares the immutable locator,
// metadata and dictionaries. Close the origin only after its clones
// are done.
func (r *Reader) Clone() *Reader {
	clone := *r
	clone.tvd = r.tvd.Clone()
	clone.tvx = nil
	clone.isClone = true
	return &clone
}

// Close releases the Reader. Closing a clone releases only its own
// cursor.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	var firstErr error
	if r.tvd != nil {
		firstErr = r.tvd.Close()
	}
	if !r.isClone && r.locator != nil {
		if err := r.locator.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// CheckIntegrity verifies the checksum footers of all three segment
// files, concurrently. It reads every byte of the segment and is
// therefore expensive; decoding-level validation still happens on
// every Get regardless.
func (r *Reader) CheckIntegrity(ctx context.Context, dir store.Directory) error {
	start := time.Now()
	err := r.checkIntegrity(ctx, dir)
	r.opts.Metrics.RecordIntegrityCheck(time.Since(start), err)
	return err
}

func (r *Reader) checkIntegrity(ctx context.Context, dir store.Directory) error {
	if r.closed {
		return ErrClosed
	}
	dataName, locatorName, metaName := SegmentFiles(r.name)

	g, ctx := errgroup.WithContext(ctx)
	for _, name := range []string{dataName, locatorName, metaName} {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := r.opts.Resources.BeginIO(ctx); err != nil {
				return err
			}
			defer r.opts.Resources.EndIO()

			in, err := dir.OpenInput(name)
			if err != nil {
				return err
			}
			defer in.Close() //nolint:errcheck

			if err := r.opts.Resources.AcquireIO(ctx, int(in.Length())); err != nil {
				return err
			}
			return verifyFooter(in)
		})
	}
	return g.Wait()
}

// Get returns the term vectors of docID, or (nil, nil) when the
// document has none. The returned DocumentVectors is self-contained
// and stays valid after further Gets.
func (r *Reader) Get(docID int) (*DocumentVectors, error) {
	start := time.Now()
	dv, err := r.get(docID)
	r.opts.Metrics.RecordGet(time.Since(start), err)
	return dv, err
}

func (r *Reader) get(docID int) (*DocumentVectors, error) {
	if r.closed {
		return nil, ErrClosed
	}
	if docID < 0 || docID >= r.meta.numDocs {
		return nil, &DocOutOfRangeError{DocID: docID, NumDocs: r.meta.numDocs}
	}

	pointer, err := r.locator.startPointer(docID)
	if err != nil {
		return nil, err
	}
	in := r.tvd
	if err := in.Seek(pointer); err != nil {
		return nil, corruptionErr(in.Name(), pointer, err)
	}

	d := &chunkDecoder{r: r, in: in, docID: docID}
	return d.decode()
}

// chunkDecoder holds the per-call scratch of one Get. Nothing here is
// shared across calls or clones.
type chunkDecoder struct {
	r     *Reader
	in    *store.Input
	docID int

	docBase   int
	chunkDocs int

	skip        int // field occurrences before the target document
	numFields   int // field occurrences of the target document
	totalFields int // field occurrences in the whole chunk

	fieldNums []int32 // distinct field numbers of the chunk
	allOffs   []int   // per-occurrence index into fieldNums
	flags     []uint8 // per-occurrence flags
	numTerms  []int   // per-occurrence term counts
	freqs     []int   // all term frequencies of the chunk

	totalTerms  int
	termsBefore int // terms of occurrences before the target window

	positionIndex [][]int // per target field: term -> first position slot
}

func (d *chunkDecoder) corrupt(format string, args ...any) error {
	return corruption(d.in.Name(), d.in.FilePointer(), format, args...)
}

func (d *chunkDecoder) fail(err error) error {
	return corruptionErr(d.in.Name(), d.in.FilePointer(), err)
}

func (d *chunkDecoder) decode() (*DocumentVectors, error) {
	if err := d.readChunkHeader(); err != nil {
		return nil, err
	}
	if err := d.readFieldCounts(); err != nil {
		return nil, err
	}
	if d.numFields == 0 {
		// No vectors for this document; a valid, empty outcome.
		return nil, nil
	}
	if err := d.readFieldNums(); err != nil {
		return nil, err
	}
	if err := d.readFieldNumOffsAndFlags(); err != nil {
		return nil, err
	}
	if err := d.readNumTerms(); err != nil {
		return nil, err
	}

	ords, err := d.readTermOrds()
	if err != nil {
		return nil, err
	}
	if err := d.readTermFreqs(); err != nil {
		return nil, err
	}

	totalPositions, totalOffsets, totalPayloads := d.streamTotals()
	d.buildPositionIndex()

	var positions [][]int
	if totalPositions > 0 {
		positions, err = d.readRuns(FlagPositions, totalPositions)
		if err != nil {
			return nil, err
		}
	} else {
		positions = make([][]int, d.numFields)
	}

	var startOffsets, lengths [][]int
	if totalOffsets > 0 {
		startOffsets, lengths, err = d.readOffsets(totalOffsets, positions)
		if err != nil {
			return nil, err
		}
	} else {
		startOffsets = make([][]int, d.numFields)
		lengths = make([][]int, d.numFields)
	}

	// Positions are delta-coded per term run; the offsets pass above
	// needed the raw deltas, so the cumulative sums happen only now.
	deltaDecodeRuns(positions, d.positionIndex)

	payloadIndex, payloadBytes, err := d.readPayloads(totalPayloads)
	if err != nil {
		return nil, err
	}

	return d.assemble(ords, positions, startOffsets, lengths, payloadIndex, payloadBytes)
}

func (d *chunkDecoder) readChunkHeader() error {
	v, err := d.in.ReadUvarint()
	if err != nil {
		return d.fail(err)
	}
	d.docBase = int(v)
	if v, err = d.in.ReadUvarint(); err != nil {
		return d.fail(err)
	}
	d.chunkDocs = int(v)

	if d.docID < d.docBase || d.docID >= d.docBase+d.chunkDocs || d.docBase+d.chunkDocs > d.r.meta.numDocs {
		return d.corrupt("docBase=%d chunkDocs=%d doc=%d numDocs=%d", d.docBase, d.chunkDocs, d.docID, d.r.meta.numDocs)
	}
	return nil
}

func (d *chunkDecoder) readFieldCounts() error {
	if d.chunkDocs == 1 {
		v, err := d.in.ReadUvarint()
		if err != nil {
			return d.fail(err)
		}
		d.numFields = int(v)
		d.totalFields = int(v)
		return nil
	}

	br := packed.NewBlockReader(d.in, d.chunkDocs)
	sum := 0
	for i := d.docBase; i < d.docBase+d.chunkDocs; i++ {
		v, err := br.Next()
		if err != nil {
			return d.fail(err)
		}
		if v < 0 {
			return d.corrupt("negative field count %d for doc %d", v, i)
		}
		if i < d.docID {
			d.skip += int(v)
		} else if i == d.docID {
			d.numFields = int(v)
		}
		sum += int(v)
	}
	d.totalFields = sum
	return nil
}

func (d *chunkDecoder) readFieldNums() error {
	token, err := d.in.ReadByte()
	if err != nil {
		return d.fail(err)
	}
	bitsPerFieldNum := uint32(token & 0x1F)
	numDistinct := int(token >> 5)
	if numDistinct == 7 {
		v, err := d.in.ReadUvarint()
		if err != nil {
			return d.fail(err)
		}
		numDistinct += int(v)
	}
	numDistinct++

	pr, err := packed.NewReader(d.in, bitsPerFieldNum)
	if err != nil {
		return d.corrupt("bad field number token %#x: %v", token, err)
	}
	d.fieldNums = make([]int32, numDistinct)
	for i := range d.fieldNums {
		v, err := pr.Next()
		if err != nil {
			return d.fail(err)
		}
		d.fieldNums[i] = int32(v)
	}
	return nil
}

func (d *chunkDecoder) readFieldNumOffsAndFlags() error {
	pr, err := packed.NewReader(d.in, packed.BitsRequired(uint64(len(d.fieldNums)-1)))
	if err != nil {
		return d.fail(err)
	}
	d.allOffs = make([]int, d.totalFields)
	for i := range d.allOffs {
		v, err := pr.Next()
		if err != nil {
			return d.fail(err)
		}
		if int(v) >= len(d.fieldNums) {
			return d.corrupt("field number offset %d out of %d distinct fields", v, len(d.fieldNums))
		}
		d.allOffs[i] = int(v)
	}

	mode, err := d.in.ReadUvarint()
	if err != nil {
		return d.fail(err)
	}
	d.flags = make([]uint8, d.totalFields)
	switch mode {
	case 0:
		fr, err := packed.NewReader(d.in, flagsBits)
		if err != nil {
			return d.fail(err)
		}
		distinctFlags := make([]uint8, len(d.fieldNums))
		for i := range distinctFlags {
			v, err := fr.Next()
			if err != nil {
				return d.fail(err)
			}
			distinctFlags[i] = uint8(v)
		}
		for i, off := range d.allOffs {
			d.flags[i] = distinctFlags[off]
		}
	case 1:
		fr, err := packed.NewReader(d.in, flagsBits)
		if err != nil {
			return d.fail(err)
		}
		for i := range d.flags {
			v, err := fr.Next()
			if err != nil {
				return d.fail(err)
			}
			d.flags[i] = uint8(v)
		}
	default:
		return d.corrupt("unknown flags mode %d", mode)
	}
	return nil
}

func (d *chunkDecoder) readNumTerms() error {
	bits, err := d.in.ReadUvarint()
	if err != nil {
		return d.fail(err)
	}
	if bits == 0 || bits > 64 {
		return d.corrupt("term count stream with %d bits per value", bits)
	}
	pr, err := packed.NewReader(d.in, uint32(bits))
	if err != nil {
		return d.fail(err)
	}
	d.numTerms = make([]int, d.totalFields)
	for i := range d.numTerms {
		v, err := pr.Next()
		if err != nil {
			return d.fail(err)
		}
		d.numTerms[i] = int(v)
		d.totalTerms += int(v)
	}
	for _, n := range d.numTerms[:d.skip] {
		d.termsBefore += n
	}
	return nil
}

// readTermOrds decodes the target document's term ordinals,
// reconstructing absolute values from delta+1 runs that reset at each
// field occurrence. Sibling occurrences are skipped without decoding.
func (d *chunkDecoder) readTermOrds() ([][]int64, error) {
	br := packed.NewBlockReader(d.in, d.totalTerms)
	if err := br.Skip(d.termsBefore); err != nil {
		return nil, d.fail(err)
	}

	ords := make([][]int64, d.numFields)
	for i := 0; i < d.numFields; i++ {
		termCount := d.numTerms[d.skip+i]
		ords[i] = make([]int64, termCount)
		cur := int64(-1)
		for j := 0; j < termCount; j++ {
			delta, err := br.Next()
			if err != nil {
				return nil, d.fail(err)
			}
			if delta < 0 {
				return nil, d.corrupt("negative term ordinal delta %d", delta)
			}
			cur += delta + 1
			ords[i][j] = cur
		}
	}
	if err := br.Skip(d.totalTerms - br.Ord()); err != nil {
		return nil, d.fail(err)
	}
	return ords, nil
}

// readTermFreqs decodes every frequency of the chunk; the totals of
// sibling documents are needed to place the positional streams.
func (d *chunkDecoder) readTermFreqs() error {
	br := packed.NewBlockReader(d.in, d.totalTerms)
	d.freqs = make([]int, d.totalTerms)
	for i := range d.freqs {
		v, err := br.Next()
		if err != nil {
			return d.fail(err)
		}
		if v < 0 {
			return d.corrupt("negative stored frequency %d", v)
		}
		d.freqs[i] = int(v) + 1
	}
	return nil
}

// streamTotals scans flags x frequencies for every occurrence in the
// chunk. The position, offset and payload streams are chunk-global, so
// their lengths depend on sibling documents too.
func (d *chunkDecoder) streamTotals() (totalPositions, totalOffsets, totalPayloads int) {
	termIndex := 0
	for i := 0; i < d.totalFields; i++ {
		f := d.flags[i]
		for j := 0; j < d.numTerms[i]; j++ {
			freq := d.freqs[termIndex]
			termIndex++
			if f&FlagPositions != 0 {
				totalPositions += freq
			}
			if f&FlagOffsets != 0 {
				totalOffsets += freq
			}
			if f&FlagPayloads != 0 {
				totalPayloads += freq
			}
		}
	}
	return totalPositions, totalOffsets, totalPayloads
}

// buildPositionIndex computes, per target field, the prefix sums of
// its term frequencies: term j owns slots [index[j], index[j+1]).
func (d *chunkDecoder) buildPositionIndex() {
	d.positionIndex = make([][]int, d.numFields)
	termIndex := d.termsBefore
	for i := 0; i < d.numFields; i++ {
		termCount := d.numTerms[d.skip+i]
		index := make([]int, termCount+1)
		for j := 0; j < termCount; j++ {
			index[j+1] = index[j] + d.freqs[termIndex+j]
		}
		d.positionIndex[i] = index
		termIndex += termCount
	}
}

// readRuns decodes one chunk-global positional stream, returning the
// raw (still delta-coded) values for target fields carrying flag and
// nil for the others. Leading and trailing sibling values are skipped
// through the block reader.
func (d *chunkDecoder) readRuns(flag uint8, total int) ([][]int, error) {
	br := packed.NewBlockReader(d.in, total)

	toSkip := 0
	termIndex := 0
	for i := 0; i < d.skip; i++ {
		if d.flags[i]&flag != 0 {
			for j := 0; j < d.numTerms[i]; j++ {
				toSkip += d.freqs[termIndex+j]
			}
		}
		termIndex += d.numTerms[i]
	}
	if err := br.Skip(toSkip); err != nil {
		return nil, d.fail(err)
	}

	values := make([][]int, d.numFields)
	for i := 0; i < d.numFields; i++ {
		if d.flags[d.skip+i]&flag == 0 {
			continue
		}
		totalFreq := d.positionIndex[i][len(d.positionIndex[i])-1]
		run := make([]int, totalFreq)
		for j := range run {
			v, err := br.Next()
			if err != nil {
				return nil, d.fail(err)
			}
			run[j] = int(v)
		}
		values[i] = run
	}

	if err := br.Skip(total - br.Ord()); err != nil {
		return nil, d.fail(err)
	}
	return values, nil
}

// readOffsets decodes the two offset streams and reconstructs absolute
// start offsets: prediction from the field's avg-chars-per-term times
// the position delta, plus the stored delta, then a cumulative sum per
// term run.
func (d *chunkDecoder) readOffsets(totalOffsets int, positions [][]int) (startOffsets, lengths [][]int, err error) {
	charsPerTerm := make([]float32, len(d.fieldNums))
	for i := range charsPerTerm {
		bits, err := d.in.ReadUint32()
		if err != nil {
			return nil, nil, d.fail(err)
		}
		charsPerTerm[i] = math.Float32frombits(bits)
	}

	startOffsets, err = d.readRuns(FlagOffsets, totalOffsets)
	if err != nil {
		return nil, nil, err
	}
	lengths, err = d.readRuns(FlagOffsets, totalOffsets)
	if err != nil {
		return nil, nil, err
	}

	for i := 0; i < d.numFields; i++ {
		starts := startOffsets[i]
		if starts == nil {
			continue
		}
		if posRun := positions[i]; posRun != nil {
			cpt := charsPerTerm[d.allOffs[d.skip+i]]
			for j := range starts {
				starts[j] += int(cpt * float32(posRun[j]))
			}
		}
	}
	deltaDecodeRuns(startOffsets, d.positionIndex)
	return startOffsets, lengths, nil
}

// deltaDecodeRuns turns per-term-run deltas into absolute values. The
// first slot of each run is already absolute.
func deltaDecodeRuns(values [][]int, positionIndex [][]int) {
	for i, run := range values {
		if run == nil {
			continue
		}
		index := positionIndex[i]
		for j := 0; j+1 < len(index); j++ {
			for k := index[j] + 1; k < index[j+1]; k++ {
				run[k] += run[k-1]
			}
		}
	}
}

// readPayloads decodes the payload length stream by scanning it in
// full: leading lengths position the target's byte range, trailing
// lengths complete the blob total that the stored framing is checked
// against.
func (d *chunkDecoder) readPayloads(totalPayloads int) (payloadIndex [][]int, payloadBytes []byte, err error) {
	payloadIndex = make([][]int, d.numFields)
	payloadOff := 0
	payloadLen := 0
	totalPayloadLength := 0

	if totalPayloads > 0 {
		br := packed.NewBlockReader(d.in, totalPayloads)
		termIndex := 0

		readLen := func() (int, error) {
			v, err := br.Next()
			if err != nil {
				return 0, d.fail(err)
			}
			if v < 0 {
				return 0, d.corrupt("negative payload length %d", v)
			}
			return int(v), nil
		}

		for i := 0; i < d.skip; i++ {
			if d.flags[i]&FlagPayloads != 0 {
				for j := 0; j < d.numTerms[i]; j++ {
					for k := 0; k < d.freqs[termIndex+j]; k++ {
						n, err := readLen()
						if err != nil {
							return nil, nil, err
						}
						payloadOff += n
					}
				}
			}
			termIndex += d.numTerms[i]
		}

		for i := 0; i < d.numFields; i++ {
			if d.flags[d.skip+i]&FlagPayloads != 0 {
				totalFreq := d.positionIndex[i][len(d.positionIndex[i])-1]
				index := make([]int, totalFreq+1)
				index[0] = payloadLen
				slot := 0
				for j := 0; j < d.numTerms[d.skip+i]; j++ {
					for k := 0; k < d.freqs[termIndex+j]; k++ {
						n, err := readLen()
						if err != nil {
							return nil, nil, err
						}
						payloadLen += n
						index[slot+1] = payloadLen
						slot++
					}
				}
				payloadIndex[i] = index
			}
			termIndex += d.numTerms[d.skip+i]
		}

		totalPayloadLength = payloadOff + payloadLen
		for i := d.skip + d.numFields; i < d.totalFields; i++ {
			if d.flags[i]&FlagPayloads != 0 {
				for j := 0; j < d.numTerms[i]; j++ {
					for k := 0; k < d.freqs[termIndex+j]; k++ {
						n, err := readLen()
						if err != nil {
							return nil, nil, err
						}
						totalPayloadLength += n
					}
				}
			}
			termIndex += d.numTerms[i]
		}
	}

	blob, err := d.readPayloadBlob(totalPayloadLength)
	if err != nil {
		return nil, nil, err
	}
	payloadBytes = blob[payloadOff : payloadOff+payloadLen]
	return payloadIndex, payloadBytes, nil
}

// readPayloadBlob reads the stored-block framing, cross-checks the raw
// length against the recomputed payload total, and decompresses.
func (d *chunkDecoder) readPayloadBlob(totalPayloadLength int) ([]byte, error) {
	rawLen, err := d.in.ReadUvarint()
	if err != nil {
		return nil, d.fail(err)
	}
	if int(rawLen) != totalPayloadLength {
		return nil, d.corrupt("payload blob declares %d raw bytes, streams sum to %d", rawLen, totalPayloadLength)
	}
	storedLen, err := d.in.ReadUvarint()
	if err != nil {
		return nil, d.fail(err)
	}

	if storedLen == 0 {
		// Raw fallback.
		raw := make([]byte, rawLen)
		if err := d.in.ReadFull(raw); err != nil {
			return nil, d.fail(err)
		}
		return raw, nil
	}

	stored := make([]byte, storedLen)
	if err := d.in.ReadFull(stored); err != nil {
		return nil, d.fail(err)
	}
	blob, err := d.r.decompressor.Decompress(nil, stored, int(rawLen))
	if err != nil {
		return nil, d.fail(err)
	}
	return blob, nil
}

func (d *chunkDecoder) assemble(ords [][]int64, positions, startOffsets, lengths, payloadIndex [][]int, payloadBytes []byte) (*DocumentVectors, error) {
	dv := &DocumentVectors{fields: make([]fieldData, d.numFields)}

	termIndex := d.termsBefore
	for i := 0; i < d.numFields; i++ {
		fieldNum := d.fieldNums[d.allOffs[d.skip+i]]
		info, ok := d.r.fieldInfos.ByNumber(fieldNum)
		if !ok {
			return nil, d.corrupt("chunk references unknown field number %d", fieldNum)
		}
		termCount := d.numTerms[d.skip+i]

		freqs := make([]int, termCount)
		copy(freqs, d.freqs[termIndex:termIndex+termCount])
		termIndex += termCount

		dv.fields[i] = fieldData{
			info:          info,
			flags:         d.flags[d.skip+i],
			ords:          ords[i],
			freqs:         freqs,
			positionIndex: d.positionIndex[i],
			positions:     positions[i],
			startOffsets:  startOffsets[i],
			lengths:       lengths[i],
			payloadIndex:  payloadIndex[i],
			payloadBytes:  payloadBytes,
			dict:          d.r.dicts[fieldNum],
		}
	}
	return dv, nil
}

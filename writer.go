package termvec

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/hupe1980/termvec/compress"
	"github.com/hupe1980/termvec/internal/packed"
	"github.com/hupe1980/termvec/store"
)

// Per-field capability flags. The flags of a field occurrence tell the
// decoder which per-term streams exist for it.
const (
	// FlagPositions marks a field whose terms carry positions.
	FlagPositions uint8 = 1
	// FlagOffsets marks a field whose terms carry start/end character
	// offsets.
	FlagOffsets uint8 = 2
	// FlagPayloads marks a field whose term occurrences carry payloads.
	FlagPayloads uint8 = 4

	flagsMask uint8 = FlagPositions | FlagOffsets | FlagPayloads

	// Flags are packed at 5 bits, leaving room for future bits without
	// a format bump.
	flagsBits uint32 = 5
)

// TermEntry is one term of a field in one document. Ord is the term's
// rank in the field's sorted dictionary; the term bytes themselves are
// never stored.
//
// Positions, StartOffsets, EndOffsets and Payloads must each be empty
// or have exactly Freq entries, matching the owning field's flags.
type TermEntry struct {
	Ord          int64
	Freq         int
	Positions    []int
	StartOffsets []int
	EndOffsets   []int
	Payloads     [][]byte
}

// FieldEntry is one vectored field of a document. Terms must be sorted
// by strictly increasing Ord.
type FieldEntry struct {
	FieldNum int32
	Flags    uint8
	Terms    []TermEntry
}

// Writer encodes per-document term vectors into the three segment
// files. Documents are buffered and flushed in compressed chunks; the
// write path is strictly single-writer and append-only.
type Writer struct {
	dir        store.Directory
	name       string
	segmentID  uuid.UUID
	fieldInfos *FieldInfos
	opts       Options

	compressor compress.Compressor

	tvd *store.Output

	pending             [][]FieldEntry
	pendingPayloadBytes int

	chunks         []chunkEntry
	docBase        int
	numDirtyChunks int64
	numDirtyDocs   int64

	blobBuf   []byte
	storedBuf []byte

	finished bool
	closed   bool
}

// NewWriter creates the segment called name in dir and returns a
// Writer for it. fieldInfos must cover every field number later passed
// to AddDocument.
func NewWriter(dir store.Directory, name string, fieldInfos *FieldInfos, optFns ...func(o *Options)) (*Writer, error) {
	opts := applyOptions(optFns)
	if opts.FormatVersion < FormatVersionLegacy || opts.FormatVersion > FormatVersion {
		return nil, fmt.Errorf("failed to create writer: unknown format version %d", opts.FormatVersion)
	}
	if opts.ChunkSize <= 0 || opts.MaxChunkDocs <= 0 {
		return nil, fmt.Errorf("failed to create writer: chunk thresholds must be positive")
	}
	compressor, err := opts.Compression.NewCompressor()
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}

	w := &Writer{
		dir:        dir,
		name:       name,
		segmentID:  uuid.New(),
		fieldInfos: fieldInfos,
		opts:       opts,
		compressor: compressor,
	}

	dataName, _, _ := SegmentFiles(name)
	w.tvd, err = dir.CreateOutput(dataName)
	if err != nil {
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}
	if err := writeHeader(w.tvd, opts.FormatVersion, w.segmentID); err != nil {
		w.tvd.Close() //nolint:errcheck
		return nil, fmt.Errorf("failed to create writer: %w", err)
	}
	return w, nil
}

// SegmentID returns the identifier embedded in all three file headers.
func (w *Writer) SegmentID() uuid.UUID {
	return w.segmentID
}

// AddDocument appends the vectors of the next document. Documents must
// be added in docID order, one call per document; a document without
// vectors is an empty fields slice. The Writer keeps a reference to
// fields until the chunk flushes, so the caller must not mutate them.
func (w *Writer) AddDocument(fields []FieldEntry) error {
	err := w.addDocument(fields)
	w.opts.Metrics.RecordAddDocument(len(fields), err)
	return err
}

func (w *Writer) addDocument(fields []FieldEntry) error {
	if w.closed {
		return ErrClosed
	}
	if w.finished {
		return ErrFinished
	}
	if err := w.validateFields(fields); err != nil {
		return err
	}

	w.pending = append(w.pending, fields)
	for _, f := range fields {
		for _, t := range f.Terms {
			for _, p := range t.Payloads {
				w.pendingPayloadBytes += len(p)
			}
		}
	}

	if len(w.pending) >= w.opts.MaxChunkDocs || w.pendingPayloadBytes >= w.opts.ChunkSize {
		return w.flush(false)
	}
	return nil
}

func (w *Writer) validateFields(fields []FieldEntry) error {
	for i, f := range fields {
		if i > 0 && fields[i-1].FieldNum >= f.FieldNum {
			return fmt.Errorf("%w: fields not sorted by number (%d then %d)", ErrInvalidDocument, fields[i-1].FieldNum, f.FieldNum)
		}
		if _, ok := w.fieldInfos.ByNumber(f.FieldNum); !ok {
			return fmt.Errorf("%w: unknown field number %d", ErrInvalidDocument, f.FieldNum)
		}
		if f.Flags&^flagsMask != 0 {
			return fmt.Errorf("%w: field %d has unknown flag bits %#x", ErrInvalidDocument, f.FieldNum, f.Flags)
		}
		prevOrd := int64(-1)
		for _, t := range f.Terms {
			if t.Ord <= prevOrd {
				return fmt.Errorf("%w: field %d term ordinals not strictly increasing (%d then %d)", ErrInvalidDocument, f.FieldNum, prevOrd, t.Ord)
			}
			prevOrd = t.Ord
			if t.Freq < 1 {
				return fmt.Errorf("%w: field %d ordinal %d has frequency %d", ErrInvalidDocument, f.FieldNum, t.Ord, t.Freq)
			}
			if err := checkRun(f.Flags&FlagPositions != 0, len(t.Positions), t.Freq, f.FieldNum, "positions"); err != nil {
				return err
			}
			if err := checkRun(f.Flags&FlagOffsets != 0, len(t.StartOffsets), t.Freq, f.FieldNum, "start offsets"); err != nil {
				return err
			}
			if err := checkRun(f.Flags&FlagOffsets != 0, len(t.EndOffsets), t.Freq, f.FieldNum, "end offsets"); err != nil {
				return err
			}
			if err := checkRun(f.Flags&FlagPayloads != 0, len(t.Payloads), t.Freq, f.FieldNum, "payloads"); err != nil {
				return err
			}
			for k := range t.StartOffsets {
				if t.EndOffsets[k] < t.StartOffsets[k] {
					return fmt.Errorf("%w: field %d has end offset %d before start offset %d", ErrInvalidDocument, f.FieldNum, t.EndOffsets[k], t.StartOffsets[k])
				}
			}
		}
	}
	return nil
}

func checkRun(flagged bool, got, freq int, fieldNum int32, what string) error {
	want := 0
	if flagged {
		want = freq
	}
	if got != want {
		return fmt.Errorf("%w: field %d has %d %s, want %d", ErrInvalidDocument, fieldNum, got, what, want)
	}
	return nil
}

// flush encodes and appends the pending documents as one chunk.
func (w *Writer) flush(dirty bool) error {
	chunkDocs := len(w.pending)
	if chunkDocs == 0 {
		return nil
	}

	startPointer := w.tvd.FilePointer()
	w.chunks = append(w.chunks, chunkEntry{docBase: w.docBase, pointer: startPointer})

	if err := w.encodeChunk(); err != nil {
		return err
	}

	if dirty {
		w.numDirtyChunks++
		w.numDirtyDocs += int64(chunkDocs)
	}
	rawBytes := int64(w.pendingPayloadBytes)
	storedBytes := w.tvd.FilePointer() - startPointer
	w.opts.Metrics.RecordChunkFlush(chunkDocs, rawBytes, storedBytes, dirty)
	w.opts.Logger.LogChunkFlush(w.docBase, chunkDocs, rawBytes, storedBytes, dirty)

	if err := w.opts.Resources.AcquireIO(context.Background(), int(storedBytes)); err != nil {
		return err
	}

	w.docBase += chunkDocs
	w.pending = w.pending[:0]
	w.pendingPayloadBytes = 0
	return nil
}

// occurrence is one (document, field) pair of the pending chunk, in
// chunk order.
type occurrence struct {
	fieldNum int32
	flags    uint8
	terms    []TermEntry
}

func (w *Writer) encodeChunk() error {
	out := w.tvd
	chunkDocs := len(w.pending)

	if err := out.WriteUvarint(uint64(w.docBase)); err != nil {
		return err
	}
	if err := out.WriteUvarint(uint64(chunkDocs)); err != nil {
		return err
	}

	// Per-document field counts.
	if chunkDocs == 1 {
		if err := out.WriteUvarint(uint64(len(w.pending[0]))); err != nil {
			return err
		}
	} else {
		bw := packed.NewBlockWriter(out)
		for _, fields := range w.pending {
			if err := bw.Add(int64(len(fields))); err != nil {
				return err
			}
		}
		if err := bw.Finish(); err != nil {
			return err
		}
	}

	var occurrences []occurrence
	for _, fields := range w.pending {
		for _, f := range fields {
			occurrences = append(occurrences, occurrence{fieldNum: f.FieldNum, flags: f.Flags, terms: f.Terms})
		}
	}
	if len(occurrences) == 0 {
		// A chunk of vector-less documents carries nothing beyond the
		// field counts.
		return nil
	}

	fieldNums := distinctFieldNums(occurrences)
	if err := w.encodeFieldNums(fieldNums); err != nil {
		return err
	}
	if err := w.encodeFieldNumOffsAndFlags(fieldNums, occurrences); err != nil {
		return err
	}
	if err := w.encodeNumTerms(occurrences); err != nil {
		return err
	}
	if err := w.encodeTermOrds(occurrences); err != nil {
		return err
	}
	if err := w.encodeTermFreqs(occurrences); err != nil {
		return err
	}
	if err := w.encodePositions(occurrences); err != nil {
		return err
	}
	if err := w.encodeOffsets(fieldNums, occurrences); err != nil {
		return err
	}
	if err := w.encodePayloadLengths(occurrences); err != nil {
		return err
	}
	return w.encodePayloadBlob(occurrences)
}

func distinctFieldNums(occurrences []occurrence) []int32 {
	seen := make(map[int32]struct{})
	var nums []int32
	for _, occ := range occurrences {
		if _, ok := seen[occ.fieldNum]; !ok {
			seen[occ.fieldNum] = struct{}{}
			nums = append(nums, occ.fieldNum)
		}
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums
}

// encodeFieldNums writes the distinct field-number table behind a
// token byte: low 5 bits carry the packed bit width, high 3 bits carry
// the table size minus one, escaping to a varint when it exceeds 7.
func (w *Writer) encodeFieldNums(fieldNums []int32) error {
	maxFieldNum := fieldNums[len(fieldNums)-1]
	bitsPerFieldNum := packed.BitsRequired(uint64(maxFieldNum))

	sizePart := len(fieldNums) - 1
	if sizePart >= 7 {
		sizePart = 7
	}
	token := byte(sizePart)<<5 | byte(bitsPerFieldNum)
	if err := w.tvd.WriteByte(token); err != nil {
		return err
	}
	if sizePart == 7 {
		if err := w.tvd.WriteUvarint(uint64(len(fieldNums) - 1 - 7)); err != nil {
			return err
		}
	}

	pw, err := packed.NewWriter(w.tvd, bitsPerFieldNum)
	if err != nil {
		return err
	}
	for _, num := range fieldNums {
		if err := pw.Add(uint64(num)); err != nil {
			return err
		}
	}
	return pw.Finish()
}

// encodeFieldNumOffsAndFlags writes one table reference per occurrence
// followed by the flags, stored per distinct field when every
// occurrence of a field shares identical flags (mode 0) and per
// occurrence otherwise (mode 1).
func (w *Writer) encodeFieldNumOffsAndFlags(fieldNums []int32, occurrences []occurrence) error {
	offOf := make(map[int32]int, len(fieldNums))
	for i, num := range fieldNums {
		offOf[num] = i
	}

	pw, err := packed.NewWriter(w.tvd, packed.BitsRequired(uint64(len(fieldNums)-1)))
	if err != nil {
		return err
	}
	for _, occ := range occurrences {
		if err := pw.Add(uint64(offOf[occ.fieldNum])); err != nil {
			return err
		}
	}
	if err := pw.Finish(); err != nil {
		return err
	}

	distinctFlags := make([]uint8, len(fieldNums))
	sharedFlags := make([]bool, len(fieldNums))
	for i := range sharedFlags {
		sharedFlags[i] = true
	}
	seen := make([]bool, len(fieldNums))
	for _, occ := range occurrences {
		off := offOf[occ.fieldNum]
		if !seen[off] {
			seen[off] = true
			distinctFlags[off] = occ.flags
		} else if distinctFlags[off] != occ.flags {
			sharedFlags[off] = false
		}
	}
	mode0 := true
	for _, shared := range sharedFlags {
		mode0 = mode0 && shared
	}

	if mode0 {
		if err := w.tvd.WriteUvarint(0); err != nil {
			return err
		}
		fw, err := packed.NewWriter(w.tvd, flagsBits)
		if err != nil {
			return err
		}
		for _, flags := range distinctFlags {
			if err := fw.Add(uint64(flags)); err != nil {
				return err
			}
		}
		return fw.Finish()
	}

	if err := w.tvd.WriteUvarint(1); err != nil {
		return err
	}
	fw, err := packed.NewWriter(w.tvd, flagsBits)
	if err != nil {
		return err
	}
	for _, occ := range occurrences {
		if err := fw.Add(uint64(occ.flags)); err != nil {
			return err
		}
	}
	return fw.Finish()
}

func (w *Writer) encodeNumTerms(occurrences []occurrence) error {
	var maxTerms uint64
	for _, occ := range occurrences {
		if n := uint64(len(occ.terms)); n > maxTerms {
			maxTerms = n
		}
	}
	bits := packed.BitsRequired(maxTerms)
	if err := w.tvd.WriteUvarint(uint64(bits)); err != nil {
		return err
	}
	pw, err := packed.NewWriter(w.tvd, bits)
	if err != nil {
		return err
	}
	for _, occ := range occurrences {
		if err := pw.Add(uint64(len(occ.terms))); err != nil {
			return err
		}
	}
	return pw.Finish()
}

// encodeTermOrds writes ordinal deltas, delta+1 encoded against a
// running base that resets to -1 at each field occurrence.
func (w *Writer) encodeTermOrds(occurrences []occurrence) error {
	bw := packed.NewBlockWriter(w.tvd)
	for _, occ := range occurrences {
		prev := int64(-1)
		for _, t := range occ.terms {
			if err := bw.Add(t.Ord - prev - 1); err != nil {
				return err
			}
			prev = t.Ord
		}
	}
	return bw.Finish()
}

func (w *Writer) encodeTermFreqs(occurrences []occurrence) error {
	bw := packed.NewBlockWriter(w.tvd)
	for _, occ := range occurrences {
		for _, t := range occ.terms {
			if err := bw.Add(int64(t.Freq - 1)); err != nil {
				return err
			}
		}
	}
	return bw.Finish()
}

func (w *Writer) encodePositions(occurrences []occurrence) error {
	any := false
	for _, occ := range occurrences {
		if occ.flags&FlagPositions != 0 && len(occ.terms) > 0 {
			any = true
			break
		}
	}
	if !any {
		return nil
	}

	bw := packed.NewBlockWriter(w.tvd)
	for _, occ := range occurrences {
		if occ.flags&FlagPositions == 0 {
			continue
		}
		for _, t := range occ.terms {
			prev := 0
			for _, pos := range t.Positions {
				if err := bw.Add(int64(pos - prev)); err != nil {
					return err
				}
				prev = pos
			}
		}
	}
	return bw.Finish()
}

// encodeOffsets writes one avg-chars-per-term float per distinct field
// followed by start-offset deltas layered on a position-scaled
// prediction, then the raw lengths.
func (w *Writer) encodeOffsets(fieldNums []int32, occurrences []occurrence) error {
	any := false
	for _, occ := range occurrences {
		if occ.flags&FlagOffsets != 0 && len(occ.terms) > 0 {
			any = true
			break
		}
	}
	if !any {
		return nil
	}

	offOf := make(map[int32]int, len(fieldNums))
	for i, num := range fieldNums {
		offOf[num] = i
	}

	// Regression slope: sum of last positions vs. sum of last start
	// offsets per term, per distinct field. Any slope round-trips, a
	// good one just shrinks the stored deltas.
	sumPos := make([]int64, len(fieldNums))
	sumOff := make([]int64, len(fieldNums))
	for _, occ := range occurrences {
		if occ.flags&FlagOffsets == 0 {
			continue
		}
		off := offOf[occ.fieldNum]
		for _, t := range occ.terms {
			if occ.flags&FlagPositions != 0 {
				sumPos[off] += int64(t.Positions[t.Freq-1])
			}
			sumOff[off] += int64(t.StartOffsets[t.Freq-1])
		}
	}
	charsPerTerm := make([]float32, len(fieldNums))
	for i := range charsPerTerm {
		if sumPos[i] > 0 {
			charsPerTerm[i] = float32(float64(sumOff[i]) / float64(sumPos[i]))
		}
	}
	for _, cpt := range charsPerTerm {
		if err := w.tvd.WriteUint32(math.Float32bits(cpt)); err != nil {
			return err
		}
	}

	// Start offset deltas.
	bw := packed.NewBlockWriter(w.tvd)
	for _, occ := range occurrences {
		if occ.flags&FlagOffsets == 0 {
			continue
		}
		cpt := charsPerTerm[offOf[occ.fieldNum]]
		hasPositions := occ.flags&FlagPositions != 0
		for _, t := range occ.terms {
			prevStart := 0
			prevPos := 0
			for k := 0; k < t.Freq; k++ {
				posDelta := 0
				if hasPositions {
					posDelta = t.Positions[k] - prevPos
					prevPos = t.Positions[k]
				}
				delta := t.StartOffsets[k] - prevStart - int(cpt*float32(posDelta))
				if err := bw.Add(int64(delta)); err != nil {
					return err
				}
				prevStart = t.StartOffsets[k]
			}
		}
	}
	if err := bw.Finish(); err != nil {
		return err
	}

	// Lengths, stored raw: the ordinal variant keeps no term bytes to
	// prefix-trim against.
	bw = packed.NewBlockWriter(w.tvd)
	for _, occ := range occurrences {
		if occ.flags&FlagOffsets == 0 {
			continue
		}
		for _, t := range occ.terms {
			for k := 0; k < t.Freq; k++ {
				if err := bw.Add(int64(t.EndOffsets[k] - t.StartOffsets[k])); err != nil {
					return err
				}
			}
		}
	}
	return bw.Finish()
}

func (w *Writer) encodePayloadLengths(occurrences []occurrence) error {
	any := false
	for _, occ := range occurrences {
		if occ.flags&FlagPayloads != 0 && len(occ.terms) > 0 {
			any = true
			break
		}
	}
	if !any {
		return nil
	}

	bw := packed.NewBlockWriter(w.tvd)
	for _, occ := range occurrences {
		if occ.flags&FlagPayloads == 0 {
			continue
		}
		for _, t := range occ.terms {
			for _, p := range t.Payloads {
				if err := bw.Add(int64(len(p))); err != nil {
					return err
				}
			}
		}
	}
	return bw.Finish()
}

// encodePayloadBlob concatenates all payload bytes of the chunk and
// stores them with raw fallback when compression does not help.
func (w *Writer) encodePayloadBlob(occurrences []occurrence) error {
	blob := w.blobBuf[:0]
	for _, occ := range occurrences {
		if occ.flags&FlagPayloads == 0 {
			continue
		}
		for _, t := range occ.terms {
			for _, p := range t.Payloads {
				blob = append(blob, p...)
			}
		}
	}
	w.blobBuf = blob

	if err := w.tvd.WriteUvarint(uint64(len(blob))); err != nil {
		return err
	}

	stored, err := w.compressor.Compress(w.storedBuf[:0], blob)
	if err != nil {
		return err
	}
	w.storedBuf = stored

	if len(stored) == 0 || len(stored) >= len(blob) {
		// Raw fallback.
		if err := w.tvd.WriteUvarint(0); err != nil {
			return err
		}
		_, err := w.tvd.Write(blob)
		return err
	}
	if err := w.tvd.WriteUvarint(uint64(len(stored))); err != nil {
		return err
	}
	_, err = w.tvd.Write(stored)
	return err
}

// Finish flushes the tail chunk and writes the locator and metadata
// files. numDocs must equal the number of documents added; the chunk
// tiling of the docID space is sealed here.
func (w *Writer) Finish(numDocs int) error {
	if w.closed {
		return ErrClosed
	}
	if w.finished {
		return ErrFinished
	}
	if numDocs != w.docBase+len(w.pending) {
		return fmt.Errorf("%w: finish called with %d docs, wrote %d", ErrInvalidDocument, numDocs, w.docBase+len(w.pending))
	}

	// The tail chunk rarely reaches a threshold; it counts as dirty.
	if err := w.flush(true); err != nil {
		return err
	}
	if err := writeFooter(w.tvd); err != nil {
		return err
	}
	if err := w.tvd.Close(); err != nil {
		return err
	}
	maxPointer := w.tvd.FilePointer() - footerLen

	dataName, locatorName, metaName := SegmentFiles(w.name)

	tvx, err := w.dir.CreateOutput(locatorName)
	if err != nil {
		return err
	}
	if err := writeHeader(tvx, w.opts.FormatVersion, w.segmentID); err != nil {
		tvx.Close() //nolint:errcheck
		return err
	}
	var blockDir []locatorBlockMeta
	if w.opts.FormatVersion >= FormatVersion {
		blockDir, err = writeLocatorBlocks(tvx, w.chunks)
	} else {
		err = writeLocatorLegacy(tvx, w.chunks)
	}
	if err != nil {
		tvx.Close() //nolint:errcheck
		return err
	}
	if err := writeFooter(tvx); err != nil {
		tvx.Close() //nolint:errcheck
		return err
	}
	if err := tvx.Close(); err != nil {
		return err
	}

	tvm, err := w.dir.CreateOutput(metaName)
	if err != nil {
		return err
	}
	if err := w.writeMeta(tvm, numDocs, maxPointer, blockDir); err != nil {
		tvm.Close() //nolint:errcheck
		return err
	}
	if err := writeFooter(tvm); err != nil {
		tvm.Close() //nolint:errcheck
		return err
	}
	if err := tvm.Close(); err != nil {
		return err
	}

	if err := w.dir.Sync(dataName, locatorName, metaName); err != nil {
		return err
	}

	w.finished = true
	w.opts.Logger.WithSegment(w.name).LogFinish(numDocs, len(w.chunks), int(w.numDirtyChunks))
	return nil
}

func (w *Writer) writeMeta(out *store.Output, numDocs int, maxPointer int64, blockDir []locatorBlockMeta) error {
	if err := writeHeader(out, w.opts.FormatVersion, w.segmentID); err != nil {
		return err
	}
	if err := out.WriteUvarint(uint64(w.opts.ChunkSize)); err != nil {
		return err
	}
	if err := out.WriteByte(byte(w.opts.Compression)); err != nil {
		return err
	}
	if err := out.WriteUvarint(packedVersion); err != nil {
		return err
	}
	if err := out.WriteUvarint(uint64(numDocs)); err != nil {
		return err
	}
	if w.opts.FormatVersion >= FormatVersion {
		if err := out.WriteUvarint(uint64(len(w.chunks))); err != nil {
			return err
		}
		if err := out.WriteUvarint(uint64(w.numDirtyChunks)); err != nil {
			return err
		}
		if err := out.WriteUvarint(uint64(w.numDirtyDocs)); err != nil {
			return err
		}
	}
	if err := out.WriteUvarint(uint64(maxPointer)); err != nil {
		return err
	}
	if w.opts.FormatVersion >= FormatVersion {
		return writeLocatorDirectory(out, blockDir)
	}
	return nil
}

// Abort closes the Writer and deletes any partial files, best effort.
func (w *Writer) Abort() {
	if !w.closed {
		w.tvd.Close() //nolint:errcheck
		w.closed = true
	}
	for _, name := range []string{w.name + DataExtension, w.name + LocatorExtension, w.name + MetaExtension} {
		w.dir.DeleteFile(name) //nolint:errcheck
	}
}

// Close releases the Writer. Closing before Finish leaves partial
// files behind; use Abort to drop them.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if !w.finished {
		return w.tvd.Close()
	}
	return nil
}

// NumChunks returns the number of chunks flushed so far.
func (w *Writer) NumChunks() int64 {
	return int64(len(w.chunks))
}

// NumDirtyChunks returns the number of chunks flushed before reaching
// a size threshold.
func (w *Writer) NumDirtyChunks() int64 {
	return w.numDirtyChunks
}

// NumDirtyDocs returns the number of documents in dirty chunks.
func (w *Writer) NumDirtyDocs() int64 {
	return w.numDirtyDocs
}

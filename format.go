package termvec

import (
	"bytes"
	"encoding/binary"

	"github.com/google/uuid"
	"github.com/hupe1980/termvec/store"
)

// On-disk layout shared by the three segment files.
//
// Header:  magic uint32 LE | codec name (uvarint length + bytes) |
//          version uint32 LE | segment id (16 bytes)
// Footer:  footerMagic uint32 LE | uint32(0) reserved |
//          uint64 LE CRC32-IEEE of every byte before the footer
//
// The three files of one segment must agree on version and segment id;
// a mismatch means the files were mixed across segments or rewrites.
const (
	magic       uint32 = 0x5456_4543 // "TVEC"
	footerMagic uint32 = ^magic

	codecName = "termvec"

	// FormatVersion is the current on-disk format: block locator in
	// the meta file plus dirty-chunk statistics.
	FormatVersion uint32 = 2

	// FormatVersionLegacy is the oldest readable format. It stores the
	// locator as a flat delta stream and carries no dirty-chunk stats.
	FormatVersionLegacy uint32 = 1

	// packedVersion guards the bit-packing layout inside chunks.
	packedVersion = 1

	footerLen = 16
)

// Segment file extensions.
const (
	DataExtension    = ".tvd" // chunked vector data
	LocatorExtension = ".tvx" // docID -> chunk pointer
	MetaExtension    = ".tvm" // format knobs, stats, locator directory
)

// SegmentFiles returns the three file names of the segment called name.
func SegmentFiles(name string) (data, locator, meta string) {
	return name + DataExtension, name + LocatorExtension, name + MetaExtension
}

func writeHeader(out *store.Output, version uint32, segmentID uuid.UUID) error {
	if err := out.WriteUint32(magic); err != nil {
		return err
	}
	if err := out.WriteBytes([]byte(codecName)); err != nil {
		return err
	}
	if err := out.WriteUint32(version); err != nil {
		return err
	}
	_, err := out.Write(segmentID[:])
	return err
}

func readHeader(in *store.Input) (version uint32, segmentID uuid.UUID, err error) {
	m, err := in.ReadUint32()
	if err != nil {
		return 0, uuid.Nil, corruptionErr(in.Name(), 0, err)
	}
	if m != magic {
		return 0, uuid.Nil, corruption(in.Name(), 0, "bad magic %#x, want %#x", m, magic)
	}
	name, err := in.ReadBytes()
	if err != nil {
		return 0, uuid.Nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	if !bytes.Equal(name, []byte(codecName)) {
		return 0, uuid.Nil, corruption(in.Name(), 4, "bad codec name %q, want %q", name, codecName)
	}
	version, err = in.ReadUint32()
	if err != nil {
		return 0, uuid.Nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	if version < FormatVersionLegacy || version > FormatVersion {
		return 0, uuid.Nil, corruption(in.Name(), in.FilePointer()-4, "unsupported format version %d", version)
	}
	if err := in.ReadFull(segmentID[:]); err != nil {
		return 0, uuid.Nil, corruptionErr(in.Name(), in.FilePointer(), err)
	}
	return version, segmentID, nil
}

// writeFooter seals out with the footer covering every byte written so
// far. Nothing may be written after it.
func writeFooter(out *store.Output) error {
	crc := out.Checksum()
	if err := out.WriteUint32(footerMagic); err != nil {
		return err
	}
	if err := out.WriteUint32(0); err != nil {
		return err
	}
	return out.WriteUint64(uint64(crc))
}

// checkFooterShape validates the footer magic and reserved word without
// hashing the file body. Cheap enough for every open.
func checkFooterShape(in *store.Input) error {
	if in.Length() < footerLen {
		return corruption(in.Name(), 0, "file too short for footer: %d bytes", in.Length())
	}
	data := in.Bytes()
	footer := data[len(data)-footerLen:]
	if got := binary.LittleEndian.Uint32(footer); got != footerMagic {
		return corruption(in.Name(), in.Length()-footerLen, "bad footer magic %#x, want %#x", got, footerMagic)
	}
	if got := binary.LittleEndian.Uint32(footer[4:]); got != 0 {
		return corruption(in.Name(), in.Length()-footerLen+4, "bad footer reserved word %#x", got)
	}
	return nil
}

// verifyFooter hashes the full file body and compares it against the
// stored checksum.
func verifyFooter(in *store.Input) error {
	if err := checkFooterShape(in); err != nil {
		return err
	}
	data := in.Bytes()
	body := data[:len(data)-footerLen]
	stored := uint32(binary.LittleEndian.Uint64(data[len(data)-8:]))
	if actual := store.Checksum(body); actual != stored {
		return &IntegrityError{File: in.Name(), Expected: stored, Actual: actual}
	}
	return nil
}

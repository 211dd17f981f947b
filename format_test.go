package termvec

import (
	"testing"

	"github.com/google/uuid"
	"github.com/hupe1980/termvec/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegmentFiles(t *testing.T) {
	data, locator, meta := SegmentFiles("seg7")
	assert.Equal(t, "seg7.tvd", data)
	assert.Equal(t, "seg7.tvx", locator)
	assert.Equal(t, "seg7.tvm", meta)
}

func writeSealedFile(t *testing.T, dir store.Directory, name string, version uint32, id uuid.UUID, body []byte) {
	t.Helper()
	out, err := dir.CreateOutput(name)
	require.NoError(t, err)
	require.NoError(t, writeHeader(out, version, id))
	_, err = out.Write(body)
	require.NoError(t, err)
	require.NoError(t, writeFooter(out))
	require.NoError(t, out.Close())
}

func TestHeaderFooterRoundTrip(t *testing.T) {
	dir := store.NewMemDirectory()
	id := uuid.New()
	writeSealedFile(t, dir, "f", FormatVersion, id, []byte("body bytes"))

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	require.NoError(t, checkFooterShape(in))
	require.NoError(t, verifyFooter(in))

	version, gotID, err := readHeader(in)
	require.NoError(t, err)
	assert.Equal(t, FormatVersion, version)
	assert.Equal(t, id, gotID)

	body := make([]byte, 10)
	require.NoError(t, in.ReadFull(body))
	assert.Equal(t, "body bytes", string(body))
	assert.Equal(t, in.Length()-footerLen, in.FilePointer())
}

func TestReadHeaderRejectsBadMagic(t *testing.T) {
	dir := store.NewMemDirectory()
	writeSealedFile(t, dir, "f", FormatVersion, uuid.New(), nil)
	require.NoError(t, dir.Corrupt("f", 0))

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	_, _, err = readHeader(in)
	var cerr *CorruptionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, "f", cerr.File)
}

func TestReadHeaderRejectsBadVersion(t *testing.T) {
	dir := store.NewMemDirectory()
	writeSealedFile(t, dir, "f", 42, uuid.New(), nil)

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	_, _, err = readHeader(in)
	var cerr *CorruptionError
	assert.ErrorAs(t, err, &cerr)
}

func TestVerifyFooterDetectsBitFlip(t *testing.T) {
	dir := store.NewMemDirectory()
	writeSealedFile(t, dir, "f", FormatVersion, uuid.New(), []byte("sensitive"))

	length, err := dir.FileLength("f")
	require.NoError(t, err)
	require.NoError(t, dir.Corrupt("f", length/2))

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	err = verifyFooter(in)
	var ierr *IntegrityError
	require.ErrorAs(t, err, &ierr)
	assert.Equal(t, "f", ierr.File)
	assert.NotEqual(t, ierr.Expected, ierr.Actual)
}

func TestCheckFooterShapeRejectsTruncation(t *testing.T) {
	dir := store.NewMemDirectory()
	writeSealedFile(t, dir, "f", FormatVersion, uuid.New(), []byte("0123456789"))

	length, err := dir.FileLength("f")
	require.NoError(t, err)
	require.NoError(t, dir.Truncate("f", length-3))

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	var cerr *CorruptionError
	assert.ErrorAs(t, checkFooterShape(in), &cerr)
}

func TestCheckFooterShapeRejectsTinyFile(t *testing.T) {
	dir := store.NewMemDirectory()
	out, err := dir.CreateOutput("f")
	require.NoError(t, err)
	_, err = out.Write([]byte("tiny"))
	require.NoError(t, err)
	require.NoError(t, out.Close())

	in, err := dir.OpenInput("f")
	require.NoError(t, err)
	defer in.Close() //nolint:errcheck

	var cerr *CorruptionError
	assert.ErrorAs(t, checkFooterShape(in), &cerr)
}

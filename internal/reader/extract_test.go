package reader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/mapped"
	"github.com/psxiso/mkpsxiso/internal/sector"
	"github.com/psxiso/mkpsxiso/internal/sectorview"
)

func TestStripVersionSuffix(t *testing.T) {
	require.Equal(t, "DATA.BIN", stripVersionSuffix("DATA.BIN;1"))
	require.Equal(t, "NOVERSION", stripVersionSuffix("NOVERSION"))
}

func TestExtractEntryPlainFile(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image.bin")
	out, err := mapped.Create(imagePath, 20)
	require.NoError(t, err)

	codec := sector.NewCodec()
	pool := sectorview.NewWorkerPool()
	payload := []byte("round trip payload")
	view := sectorview.New(codec, pool, out.View(5, 1), 5, 6, sectorview.Form1)
	view.SetSubheader(sector.SubEOF)
	require.NoError(t, view.WriteMemory(payload))
	require.NoError(t, view.Close())
	require.NoError(t, out.Close())

	img, err := Open(imagePath)
	require.NoError(t, err)
	defer img.Close()

	e := &fsmodel.Entry{Kind: fsmodel.KindFile, LBA: 5, ExtentSize: uint32(len(payload))}
	destPath := filepath.Join(dir, "out", "a.dat")
	require.NoError(t, ExtractEntry(img, e, destPath))

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestExtractEntryCDDAWritesWAVHeader(t *testing.T) {
	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image.bin")
	out, err := mapped.Create(imagePath, 10)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	img, err := Open(imagePath)
	require.NoError(t, err)
	defer img.Close()

	e := &fsmodel.Entry{Kind: fsmodel.KindCDDA, LBA: 0, ExtentSize: 2048}
	destPath := filepath.Join(dir, "track.wav")
	require.NoError(t, ExtractEntry(img, e, destPath))

	got, err := os.ReadFile(destPath)
	require.NoError(t, err)
	require.True(t, len(got) >= 44)
	require.Equal(t, "RIFF", string(got[0:4]))
	require.Equal(t, "WAVE", string(got[8:12]))
}

func TestExtractAllSkipsOnError(t *testing.T) {
	tree := fsmodel.NewTree(fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{})
	_, err := tree.AddFile(0, "BAD.DAT;1", fsmodel.KindFile, "", 2048, fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{}, false)
	require.NoError(t, err)
	tree.Entries[1].LBA = 999999 // beyond the mapped image, forcing a read failure

	dir := t.TempDir()
	imagePath := filepath.Join(dir, "image.bin")
	out, err := mapped.Create(imagePath, 5)
	require.NoError(t, err)
	require.NoError(t, out.Close())

	img, err := Open(imagePath)
	require.NoError(t, err)
	defer img.Close()

	var skippedPaths []string
	count := ExtractAll(img, tree, filepath.Join(dir, "extracted"), func(path string, err error) {
		skippedPaths = append(skippedPaths, path)
	})
	require.Equal(t, 0, count)
	require.Len(t, skippedPaths, 1)
}

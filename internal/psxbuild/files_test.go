package psxbuild

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/mapped"
	"github.com/psxiso/mkpsxiso/internal/sector"
	"github.com/psxiso/mkpsxiso/internal/sectorview"
)

func TestWritePlainFileCopiesBytes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.dat")
	payload := make([]byte, 3000)
	for i := range payload {
		payload[i] = byte(i)
	}
	require.NoError(t, os.WriteFile(src, payload, 0o644))

	imagePath := filepath.Join(dir, "image.bin")
	out, err := mapped.Create(imagePath, 10)
	require.NoError(t, err)
	codec := sector.NewCodec()
	pool := sectorview.NewWorkerPool()

	e := &fsmodel.Entry{Kind: fsmodel.KindFile, FileSource: src, LBA: 1, ExtentSize: uint32(len(payload))}
	require.NoError(t, writePlainFile(out, codec, pool, e))
	require.NoError(t, out.Close())

	buf, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	sector0 := buf[1*2352 : 2*2352]
	require.Equal(t, byte(0x00), sector0[0])
	require.Equal(t, payload[:2048], sector0[24:24+2048])
}

func TestWriteForm2FileCopiesPayloadVerbatim(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "b.xa")
	payload := make([]byte, 2336*2)
	for i := range payload {
		payload[i] = byte(i % 256)
	}
	require.NoError(t, os.WriteFile(src, payload, 0o644))

	imagePath := filepath.Join(dir, "image.bin")
	out, err := mapped.Create(imagePath, 10)
	require.NoError(t, err)

	e := &fsmodel.Entry{Kind: fsmodel.KindForm2Interleaved, FileSource: src, LBA: 2, ExtentSize: uint32(len(payload))}
	require.NoError(t, writeForm2File(out, e))
	require.NoError(t, out.Close())

	buf, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	sector2 := buf[2*2352 : 3*2352]
	require.Equal(t, payload[:2336], sector2[16:16+2336])
	sector3 := buf[3*2352 : 4*2352]
	require.Equal(t, payload[2336:], sector3[16:16+2336])
}

func TestWriteDummyEntryZeroFills(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "image.bin")
	out, err := mapped.Create(imagePath, 10)
	require.NoError(t, err)
	codec := sector.NewCodec()
	pool := sectorview.NewWorkerPool()

	e := &fsmodel.Entry{Kind: fsmodel.KindDummy, LBA: 3, DummySectors: 2, DummyForm: sector.FormMode2Form1}
	require.NoError(t, writeDummyEntry(out, codec, pool, e))
	require.NoError(t, out.Close())

	buf, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	sector3 := buf[3*2352 : 4*2352]
	require.Equal(t, byte(0x00), sector3[0])
	for _, b := range sector3[24 : 24+2048] {
		require.Equal(t, byte(0), b)
	}
}

func TestWriteBlankSystemAreaAllHeaderedSectors(t *testing.T) {
	imagePath := filepath.Join(t.TempDir(), "image.bin")
	out, err := mapped.Create(imagePath, 16)
	require.NoError(t, err)
	codec := sector.NewCodec()
	pool := sectorview.NewWorkerPool()

	require.NoError(t, writeBlankSystemArea(out, codec, pool))
	require.NoError(t, out.Close())

	buf, err := os.ReadFile(imagePath)
	require.NoError(t, err)
	for lba := 0; lba < 16; lba++ {
		s := buf[lba*2352 : (lba+1)*2352]
		require.Equal(t, byte(0x00), s[0], "lba %d sync byte", lba)
		require.Equal(t, byte(0xFF), s[1], "lba %d sync byte", lba)
	}
}

func TestWriteFilePayloadsSkipsDirsAndCDDA(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "a.dat")
	require.NoError(t, os.WriteFile(src, []byte("x"), 0o644))

	tree := fsmodel.NewTree(fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{})
	_, err := tree.AddFile(0, "AAAA.DAT;1", fsmodel.KindFile, src, 1, fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{}, false)
	require.NoError(t, err)
	_, err = tree.AddCDDA(0, "TRACK02.CDA;1", "02", fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{})
	require.NoError(t, err)
	tree.Entries[1].LBA = 1

	imagePath := filepath.Join(dir, "image.bin")
	out, err := mapped.Create(imagePath, 10)
	require.NoError(t, err)
	codec := sector.NewCodec()
	pool := sectorview.NewWorkerPool()

	require.NoError(t, writeFilePayloads(out, codec, pool, tree, zerolog.Nop()))
	require.NoError(t, out.Close())
}

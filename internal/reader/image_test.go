package reader

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psxiso/mkpsxiso/internal/mapped"
	"github.com/psxiso/mkpsxiso/internal/sector"
)

func TestImageOpenAndReadRawSector(t *testing.T) {
	path := filepath.Join(t.TempDir(), "image.bin")
	out, err := mapped.Create(path, 20)
	require.NoError(t, err)

	codec := sector.NewCodec()
	buf := out.View(5, 1)
	copy(buf[24:24+2048], []byte("hello world"))
	codec.FinalizeForm1(buf, 5, sector.SubData)
	require.NoError(t, out.Close())

	img, err := Open(path)
	require.NoError(t, err)
	defer img.Close()

	require.Equal(t, uint32(20), img.TotalLBA())

	raw, err := img.ReadRawSector(5)
	require.NoError(t, err)
	require.Len(t, raw, int(sector.Size))
	require.Equal(t, byte(0x00), raw[0])
	require.Equal(t, byte(0xFF), raw[1])

	data, err := img.ReadForm1UserData(5)
	require.NoError(t, err)
	require.Equal(t, "hello world", string(data[:11]))
}

func TestImageOpenMissingFile(t *testing.T) {
	_, err := Open(filepath.Join(t.TempDir(), "nope.bin"))
	require.Error(t, err)
}

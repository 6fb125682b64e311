package project

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEmitRoundTripsThroughParse(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "a.dat")
	require.NoError(t, os.WriteFile(dataFile, []byte("hello"), 0o644))

	tr := &Track{
		Identifiers: Identifiers{System: "PLAYSTATION", Volume: "GAME"},
		DirectoryTree: &DirectoryTree{
			Children: []Node{
				{File: &File{Name: "a.dat", Source: dataFile, Type: "data"}},
				{Dir: &Dir{Name: "sub"}},
			},
		},
	}
	tree, err := BuildTree(tr, fixedClock)
	require.NoError(t, err)

	meta := EmitMeta{
		ImageName:   "out.bin",
		Identifiers: tr.Identifiers,
		AudioTracks: []Track{{TrackID: "02", Source: "bgm.wav"}},
	}

	var buf strings.Builder
	require.NoError(t, Emit(&buf, meta, tree))

	out := buf.String()
	require.Contains(t, out, `image_name="out.bin"`)
	require.Contains(t, out, `system="PLAYSTATION"`)
	require.Contains(t, out, `volume="GAME"`)
	require.Contains(t, out, `name="A.DAT"`)
	require.Contains(t, out, `name="SUB"`)
	require.Contains(t, out, `type="audio" trackid="02" source="bgm.wav"`)

	doc, err := Parse(strings.NewReader(out))
	require.NoError(t, err)
	require.Equal(t, "out.bin", doc.ImageName)
	require.Equal(t, "PLAYSTATION", doc.Tracks[0].Identifiers.System)
}

func TestEscapeAttrEscapesSpecialChars(t *testing.T) {
	require.Equal(t, `a &amp; b &quot;c&quot; &lt;d&gt;`, escapeAttr(`a & b "c" <d>`))
}

func TestStripVersion(t *testing.T) {
	require.Equal(t, "DATA.BIN", stripVersion("DATA.BIN;1"))
	require.Equal(t, "NOVERSION", stripVersion("NOVERSION"))
}

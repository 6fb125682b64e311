package project

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sampleProject = `<?xml version="1.0" encoding="UTF-8"?>
<iso_project image_name="game.bin" cue_sheet="game.cue">
  <track type="data">
    <identifiers system="PLAYSTATION" volume="MYGAME" application="APP"/>
    <license file="license.dat"/>
    <default_attributes xa_perm="0x555"/>
    <directory_tree>
      <file name="SYSTEM.CNF" source="src/system.cnf" type="data"/>
      <dir name="MUSIC">
        <file name="track.xa" source="src/track.xa" type="xa"/>
      </dir>
      <dummy sectors="16" type="0"/>
      <file name="movie.str" source="src/movie.str" type="str"/>
      <file name="bgm.da" type="da" trackid="02"/>
    </directory_tree>
  </track>
  <track type="audio" trackid="02" source="src/bgm.wav"/>
</iso_project>
`

func TestParseSampleProject(t *testing.T) {
	doc, err := Parse(strings.NewReader(sampleProject))
	require.NoError(t, err)

	require.Equal(t, "game.bin", doc.ImageName)
	require.Equal(t, "game.cue", doc.CueSheet)
	require.False(t, doc.NoXA)
	require.Len(t, doc.Tracks, 2)

	data := doc.Tracks[0]
	require.Equal(t, "data", data.Type)
	require.Equal(t, "PLAYSTATION", data.Identifiers.System)
	require.Equal(t, "MYGAME", data.Identifiers.Volume)
	require.NotNil(t, data.License)
	require.Equal(t, "license.dat", data.License.File)
	require.NotNil(t, data.DefaultAttributes.XAPerm)
	require.Equal(t, uint16(0x555), *data.DefaultAttributes.XAPerm)

	require.NotNil(t, data.DirectoryTree)
	children := data.DirectoryTree.Children
	require.Len(t, children, 5)

	require.NotNil(t, children[0].File)
	require.Equal(t, "SYSTEM.CNF", children[0].File.Name)

	require.NotNil(t, children[1].Dir)
	require.Equal(t, "MUSIC", children[1].Dir.Name)
	require.Len(t, children[1].Dir.Children, 1)
	require.Equal(t, "xa", children[1].Dir.Children[0].File.Type)

	require.NotNil(t, children[2].DummyVal)
	require.Equal(t, uint32(16), children[2].DummyVal.Sectors)
	require.Equal(t, 0, children[2].DummyVal.Type)

	require.NotNil(t, children[3].File)
	require.Equal(t, "str", children[3].File.Type)

	require.NotNil(t, children[4].File)
	require.Equal(t, "da", children[4].File.Type)
	require.Equal(t, "02", children[4].File.TrackID)

	audio := doc.Tracks[1]
	require.Equal(t, "audio", audio.Type)
	require.Equal(t, "02", audio.TrackID)
	require.Equal(t, "src/bgm.wav", audio.Source)
}

func TestParseNoXAFlag(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<iso_project image_name="x" no_xa="true"><track type="data"><directory_tree></directory_tree></track></iso_project>`))
	require.NoError(t, err)
	require.True(t, doc.NoXA)
}

func TestParsePreservesDocumentOrderOfMixedChildren(t *testing.T) {
	doc, err := Parse(strings.NewReader(`<iso_project image_name="x">
  <track type="data">
    <directory_tree>
      <dummy sectors="1" type="0"/>
      <file name="a" source="a" type="data"/>
      <dir name="d"></dir>
      <file name="b" source="b" type="data"/>
    </directory_tree>
  </track>
</iso_project>`))
	require.NoError(t, err)
	children := doc.Tracks[0].DirectoryTree.Children
	require.Len(t, children, 4)
	require.NotNil(t, children[0].DummyVal)
	require.NotNil(t, children[1].File)
	require.NotNil(t, children[2].Dir)
	require.NotNil(t, children[3].File)
}

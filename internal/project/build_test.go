package project

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/psxiso/mkpsxiso/internal/config"
	"github.com/psxiso/mkpsxiso/internal/fsmodel"
)

var fixedClock = config.FixedClock{At: time.Date(2024, 3, 15, 12, 30, 0, 0, time.UTC)}

func TestDateStampFromClock(t *testing.T) {
	ds := DateStampFromClock(fixedClock)
	require.Equal(t, byte(2024-1900), ds.Year)
	require.Equal(t, byte(3), ds.Month)
	require.Equal(t, byte(15), ds.Day)
	require.Equal(t, byte(12), ds.Hour)
	require.Equal(t, byte(30), ds.Minute)
}

func TestKindForFileType(t *testing.T) {
	cases := map[string]fsmodel.Kind{
		"":      fsmodel.KindFile,
		"data":  fsmodel.KindFile,
		"mixed": fsmodel.KindFile,
		"xa":    fsmodel.KindForm2Interleaved,
		"str":   fsmodel.KindForm1OnlyVideo,
	}
	for in, want := range cases {
		got, err := kindForFileType(in)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}

	_, err := kindForFileType("bogus")
	require.Error(t, err)
}

func TestBuildTreeSimpleLayout(t *testing.T) {
	dir := t.TempDir()
	dataFile := filepath.Join(dir, "a.dat")
	require.NoError(t, os.WriteFile(dataFile, []byte("hello world"), 0o644))
	xaFile := filepath.Join(dir, "b.xa")
	require.NoError(t, os.WriteFile(xaFile, make([]byte, 2336*2), 0o644))

	tr := &Track{
		DirectoryTree: &DirectoryTree{
			Children: []Node{
				{File: &File{Name: "a.dat", Source: dataFile, Type: "data"}},
				{Dir: &Dir{Name: "sub", Children: []Node{
					{File: &File{Name: "b.xa", Source: xaFile, Type: "xa"}},
				}}},
				{DummyVal: &Dummy{Sectors: 4, Type: 0}},
			},
		},
	}

	tree, err := BuildTree(tr, fixedClock)
	require.NoError(t, err)
	require.Len(t, tree.Entries, 5) // root, a.dat, sub, b.xa, dummy

	var names []string
	for _, e := range tree.Entries {
		names = append(names, e.ID)
	}
	require.Contains(t, names, "A.DAT;1")
}

func TestBuildTreeMissingDirectoryTree(t *testing.T) {
	_, err := BuildTree(&Track{}, fixedClock)
	require.Error(t, err)
}

func TestAddFileRejectsBadXASize(t *testing.T) {
	dir := t.TempDir()
	xaFile := filepath.Join(dir, "odd.xa")
	require.NoError(t, os.WriteFile(xaFile, make([]byte, 100), 0o644))

	tr := &Track{
		DirectoryTree: &DirectoryTree{
			Children: []Node{
				{File: &File{Name: "odd.xa", Source: xaFile, Type: "xa"}},
			},
		},
	}
	_, err := BuildTree(tr, fixedClock)
	require.Error(t, err)
}

func TestAddFileDACDDARequiresTrackID(t *testing.T) {
	tr := &Track{
		DirectoryTree: &DirectoryTree{
			Children: []Node{
				{File: &File{Name: "bgm.da", Type: "da"}},
			},
		},
	}
	_, err := BuildTree(tr, fixedClock)
	require.Error(t, err)
}

func TestAddFileSourceNotFound(t *testing.T) {
	tr := &Track{
		DirectoryTree: &DirectoryTree{
			Children: []Node{
				{File: &File{Name: "missing.dat", Source: "/no/such/file", Type: "data"}},
			},
		},
	}
	_, err := BuildTree(tr, fixedClock)
	require.Error(t, err)
}

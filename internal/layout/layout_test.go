package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/sector"
)

func buildSampleTree(t *testing.T) *fsmodel.Tree {
	t.Helper()
	tree := fsmodel.NewTree(fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{})

	sub, err := tree.AddDir(0, "SUBDIR", fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{}, false)
	require.NoError(t, err)

	_, err = tree.AddFile(0, "AAAA.TXT;1", fsmodel.KindFile, "/src/a.txt", 4096, fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{}, false)
	require.NoError(t, err)
	_, err = tree.AddFile(sub, "BBBB.TXT;1", fsmodel.KindFile, "/src/b.txt", 10, fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{}, false)
	require.NoError(t, err)
	_, err = tree.AddCDDA(0, "TRACK02.CDA;1", "02", fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{})
	require.NoError(t, err)
	_, err = tree.AddDummy(0, 4, sector.FormMode2Form1)
	require.NoError(t, err)

	return tree
}

func TestDirectoryRecordLenFixedEntriesOnly(t *testing.T) {
	tree := fsmodel.NewTree(fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{})
	require.Equal(t, uint32(68), DirectoryRecordLen(tree, 0, false))
	require.Equal(t, uint32(96), DirectoryRecordLen(tree, 0, true))
}

func TestCalculateTreeLBASkipsCDDA(t *testing.T) {
	tree := buildSampleTree(t)

	total, err := CalculateTreeLBA(tree, 20, true)
	require.NoError(t, err)
	require.Greater(t, total, uint32(20))

	root := tree.Root()
	require.Equal(t, uint32(20), root.LBA)
	require.NotZero(t, root.ExtentSize)

	for i := range tree.Entries {
		e := &tree.Entries[i]
		if e.Kind == fsmodel.KindCDDA {
			require.Equal(t, fsmodel.UnresolvedLBA, e.LBA)
		} else {
			require.NotEqual(t, fsmodel.UnresolvedLBA, e.LBA)
		}
	}
}

func TestResolveAudioLBAsAndCheckResolved(t *testing.T) {
	tree := buildSampleTree(t)
	_, err := CalculateTreeLBA(tree, 20, true)
	require.NoError(t, err)

	require.Error(t, CheckResolved(tree))

	_, err = ResolveAudioLBAs(tree, 1000, map[string]uint32{"02": 300})
	require.NoError(t, err)
	require.NoError(t, CheckResolved(tree))
}

func TestResolveAudioLBAsMissingTrack(t *testing.T) {
	tree := buildSampleTree(t)
	_, err := CalculateTreeLBA(tree, 20, true)
	require.NoError(t, err)

	_, err = ResolveAudioLBAs(tree, 1000, map[string]uint32{})
	require.Error(t, err)
}

func TestSortedChildrenDummiesLast(t *testing.T) {
	tree := fsmodel.NewTree(fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{})
	_, _ = tree.AddFile(0, "ZZZ.TXT;1", fsmodel.KindFile, "", 1, fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{}, false)
	_, _ = tree.AddDummy(0, 1, sector.FormMode2Form1)
	_, _ = tree.AddFile(0, "AAA.TXT;1", fsmodel.KindFile, "", 1, fsmodel.ResolvedAttrs{}, fsmodel.DateStamp{}, false)

	sorted := SortedChildren(tree, 0)
	require.Len(t, sorted, 3)
	require.Equal(t, "AAA.TXT;1", tree.Entries[sorted[0]].ID)
	require.Equal(t, "ZZZ.TXT;1", tree.Entries[sorted[1]].ID)
	require.Equal(t, "", tree.Entries[sorted[2]].ID)
}

func TestTimecodeFormatting(t *testing.T) {
	require.Equal(t, "00:02:00", Timecode(0))
	require.Equal(t, "00:02:01", Timecode(1))
	require.Equal(t, "00:03:00", Timecode(75))
}

func TestWriteLBAListAndHeader(t *testing.T) {
	tree := buildSampleTree(t)
	_, err := CalculateTreeLBA(tree, 20, true)
	require.NoError(t, err)
	_, err = ResolveAudioLBAs(tree, 1000, map[string]uint32{"02": 300})
	require.NoError(t, err)

	var listBuf, headerBuf strings.Builder
	require.NoError(t, WriteLBAList(&listBuf, tree))
	require.NoError(t, WriteLBAHeader(&headerBuf, tree))

	require.Contains(t, listBuf.String(), "AAAA.TXT;1")
	require.Contains(t, headerBuf.String(), "#define LBA_AAAA_TXT")
	require.Contains(t, headerBuf.String(), "#ifndef _ISO_FILES")
}

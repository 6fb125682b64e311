package fsmodel

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/sector"
)

func newTestTree() *Tree {
	return NewTree(ResolvedAttrs{}, DateStamp{})
}

func TestAddFileRejectsDuplicateIdentifier(t *testing.T) {
	tr := newTestTree()
	_, err := tr.AddFile(0, "SYSTEM.CNF;1", KindFile, "/a", 10, ResolvedAttrs{}, DateStamp{}, false)
	require.NoError(t, err)

	_, err = tr.AddFile(0, "system.cnf;1", KindFile, "/b", 10, ResolvedAttrs{}, DateStamp{}, false)
	require.Error(t, err)
	kind, ok := pkgerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pkgerr.DuplicateIdentifier, kind)
}

func TestAddFileRejectsIdentifierOver31Chars(t *testing.T) {
	tr := newTestTree()
	long := strings.Repeat("A", 32)
	_, err := tr.AddFile(0, long, KindFile, "/a", 1, ResolvedAttrs{}, DateStamp{}, false)
	require.Error(t, err)
	kind, ok := pkgerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pkgerr.IdentifierTooLong, kind)
}

func TestAddDirRejectsNestingOver8Levels(t *testing.T) {
	tr := newTestTree()
	parent := 0
	for i := 0; i < maxPathDepth; i++ {
		idx, err := tr.AddDir(parent, "D", ResolvedAttrs{}, DateStamp{}, false)
		require.NoError(t, err)
		parent = idx
	}
	_, err := tr.AddDir(parent, "TOODEEP", ResolvedAttrs{}, DateStamp{}, false)
	require.Error(t, err)
	kind, ok := pkgerr.KindOf(err)
	require.True(t, ok)
	require.Equal(t, pkgerr.PathTooDeep, kind)
}

func TestAddDirMergesOnDuplicateName(t *testing.T) {
	tr := newTestTree()
	first, err := tr.AddDir(0, "DATA", ResolvedAttrs{}, DateStamp{}, false)
	require.NoError(t, err)

	second, err := tr.AddDir(0, "data", ResolvedAttrs{}, DateStamp{}, false)
	require.NoError(t, err)
	require.Equal(t, first, second)
	require.Len(t, tr.Entries[0].Children, 1)
}

func TestFindChildDirCaseInsensitive(t *testing.T) {
	tr := newTestTree()
	idx, err := tr.AddDir(0, "DATA", ResolvedAttrs{}, DateStamp{}, false)
	require.NoError(t, err)

	require.Equal(t, idx, tr.FindChildDir(0, "data"))
	require.Equal(t, -1, tr.FindChildDir(0, "missing"))
}

func TestAddDummyEntriesNeverCollide(t *testing.T) {
	tr := newTestTree()
	a, err := tr.AddDummy(0, 4, sector.FormMode2Form1)
	require.NoError(t, err)
	b, err := tr.AddDummy(0, 8, sector.FormMode2Form2)
	require.NoError(t, err)
	require.NotEqual(t, a, b)
	require.Equal(t, "", tr.Entries[a].ID)
	require.Equal(t, "", tr.Entries[b].ID)
}

func TestAddCDDASetsUnresolvedLBA(t *testing.T) {
	tr := newTestTree()
	idx, err := tr.AddCDDA(0, "TRACK02.DA", "track02", ResolvedAttrs{}, DateStamp{})
	require.NoError(t, err)
	require.Equal(t, UnresolvedLBA, tr.Entries[idx].LBA)
	require.Equal(t, "track02", tr.Entries[idx].TrackID)
}

func TestAddDirRejectsPathOver255Bytes(t *testing.T) {
	// Each 31-char directory level adds 32 bytes ("/" + 31 chars) to the full
	// path, so the 8th level (256 bytes) overflows maxPathLenBytes without
	// exceeding maxPathDepth.
	tr := newTestTree()
	parent := 0
	var lastErr error
	for i := 0; i < maxPathDepth; i++ {
		idx, err := tr.AddDir(parent, strings.Repeat("D", maxIdentifierLen), ResolvedAttrs{}, DateStamp{}, false)
		if err != nil {
			lastErr = err
			break
		}
		parent = idx
	}
	require.Error(t, lastErr)
	kind, ok := pkgerr.KindOf(lastErr)
	require.True(t, ok)
	require.Equal(t, pkgerr.PathTooLong, kind)
}

func TestNewTreeRootIsOwnParent(t *testing.T) {
	tr := newTestTree()
	root := tr.Root()
	require.Equal(t, KindDir, root.Kind)
	require.Equal(t, 0, root.Parent)
	require.Empty(t, root.Children)
}

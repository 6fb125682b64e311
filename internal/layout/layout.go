// Package layout computes directory-record sizes, path-table sizes, and LBA
// assignment for a fsmodel.Tree.
package layout

import (
	"sort"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/pkgerr"
)

const sectorSize = 2048

// dirFixedEntrySize is the base size of the "." or ".." directory record:
// 33-byte fixed base + 1-byte identifier, which is already even.
const dirFixedEntrySize = 34

// xaBlockSize is the 14-byte CD-XA attribute suffix appended to every record
// when XA extensions are enabled.
const xaBlockSize = 14

// identEntrySize returns the directory-record size contributed by a named
// child: 33-byte base (length byte included) + identifier, padded to an
// even length, + XA block.
func identEntrySize(idLen int, xaEnabled bool) uint32 {
	size := uint32(roundUpEven(33 + idLen))
	if xaEnabled {
		size += xaBlockSize
	}
	return size
}

func roundUpEven(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

func roundUpSectors(bytes uint32) uint32 {
	return (bytes + sectorSize - 1) / sectorSize
}

// DirectoryRecordLen computes the total directory-record bytes for dir's
// listing (the entries for "." and ".." plus each child), honoring the rule
// that a record never spans a 2048-byte sector: when adding a child would
// cross a boundary, the running total is rounded up to the next sector
// first. Children are taken in sorted-view order (SortedChildren) since that
// is the order they are physically written.
func DirectoryRecordLen(t *fsmodel.Tree, dirIdx int, xaEnabled bool) uint32 {
	dotSize := uint32(dirFixedEntrySize)
	if xaEnabled {
		dotSize += xaBlockSize
	}
	total := dotSize + dotSize // "." and ".." are both single-byte identifiers

	for _, childIdx := range SortedChildren(t, dirIdx) {
		child := &t.Entries[childIdx]
		entrySize := identEntrySize(len(child.ID), xaEnabled)
		if child.Kind == fsmodel.KindDummy {
			continue // Dummies are padding blocks, not directory members
		}
		sectorOff := total % sectorSize
		if sectorOff+entrySize > sectorSize {
			total = roundUpSectors(total) * sectorSize
		}
		total += entrySize
	}
	return total
}

// DirectoryExtentSectors rounds DirectoryRecordLen up to a whole number of
// sectors, the size an Entry's ExtentSize carries for a directory.
func DirectoryExtentSectors(t *fsmodel.Tree, dirIdx int, xaEnabled bool) uint32 {
	return roundUpSectors(DirectoryRecordLen(t, dirIdx, xaEnabled))
}

// PathTableEntryLen returns a single path-table record's byte length: 8-byte
// fixed header + identifier padded to even length, minimum 1 byte (the root
// uses a single 0x00 byte).
func PathTableEntryLen(idLen int) uint32 {
	if idLen == 0 {
		idLen = 1
	}
	return 8 + uint32(roundUpEven(idLen))
}

// PathTableLen sums PathTableEntryLen over every directory in the tree
// (root included).
func PathTableLen(t *fsmodel.Tree) uint32 {
	var total uint32
	for i := range t.Entries {
		if t.Entries[i].Kind == fsmodel.KindDir {
			total += PathTableEntryLen(len(t.Entries[i].ID))
		}
	}
	return total
}

// SortedChildren returns dir's children in rendering order: ascending
// lexicographic order of identifier, with nameless Dummy entries sorted to
// the end. The underlying Tree.Entries order (insertion order, used by
// CalculateTreeLBA for content placement) is left untouched.
func SortedChildren(t *fsmodel.Tree, dirIdx int) []int {
	children := append([]int(nil), t.Entries[dirIdx].Children...)
	sort.SliceStable(children, func(i, j int) bool {
		a, b := &t.Entries[children[i]], &t.Entries[children[j]]
		if a.Kind == fsmodel.KindDummy || b.Kind == fsmodel.KindDummy {
			return a.Kind != fsmodel.KindDummy && b.Kind == fsmodel.KindDummy
		}
		return a.ID < b.ID
	})
	return children
}

// CalculateTreeLBA assigns LBA and ExtentSize to every directory, and LBA to
// every non-CDDA leaf, by a pre-order depth-first walk starting at startLBA.
// Children are visited in entry-list (insertion) order, not the sorted view
// SortedChildren produces; the two are independent orderings. CDDA entries
// are left at fsmodel.UnresolvedLBA and never advance the cursor;
// ResolveAudioLBAs assigns them later. Returns the LBA one past the last
// sector consumed (the total sector count when startLBA is 0).
func CalculateTreeLBA(t *fsmodel.Tree, startLBA uint32, xaEnabled bool) (uint32, error) {
	lba := startLBA
	var walk func(idx int) error
	walk = func(idx int) error {
		e := &t.Entries[idx]
		switch e.Kind {
		case fsmodel.KindDir:
			size := DirectoryRecordLen(t, idx, xaEnabled)
			if size == 0 {
				return pkgerr.New(pkgerr.MalformedProject, e.ID, "directory extent computed as zero")
			}
			extentSectors := roundUpSectors(size)
			e.LBA = lba
			e.ExtentSize = extentSectors * sectorSize
			lba += extentSectors
			for _, childIdx := range e.Children {
				if err := walk(childIdx); err != nil {
					return err
				}
			}
		case fsmodel.KindCDDA:
			e.LBA = fsmodel.UnresolvedLBA
		case fsmodel.KindDummy:
			e.LBA = lba
			lba += e.DummySectors
		default: // File, Form2Interleaved, Form1OnlyVideo
			e.LBA = lba
			lba += sectorsForFile(e.Kind, e.ExtentSize)
		}
		return nil
	}
	if err := walk(0); err != nil {
		return 0, err
	}
	return lba, nil
}

// sectorsForFile returns the sector count a leaf entry's payload occupies:
// ceil(size/2048) for M2F1-encoded kinds, ceil(size/2336) for interleaved
// Form 2.
func sectorsForFile(kind fsmodel.Kind, size uint32) uint32 {
	if kind == fsmodel.KindForm2Interleaved {
		return (size + 2335) / 2336
	}
	return roundUpSectors(size)
}

// ResolveAudioLBAs assigns real LBAs to every CDDA entry, in tree-entry
// order, starting at firstAudioLBA; no pregap sectors are inserted before
// the first track. Each track consumes ceil(durationSectors) contiguous
// sectors; trackSectors supplies that count per entry's TrackID. ExtentSize
// is recorded as 2048 bytes per sector, the unit the reader and the LBA
// listing count sectors in.
func ResolveAudioLBAs(t *fsmodel.Tree, firstAudioLBA uint32, trackSectors map[string]uint32) (uint32, error) {
	lba := firstAudioLBA
	for i := range t.Entries {
		e := &t.Entries[i]
		if e.Kind != fsmodel.KindCDDA {
			continue
		}
		n, ok := trackSectors[e.TrackID]
		if !ok {
			return 0, pkgerr.New(pkgerr.NoCueForAudioTrack, e.TrackID, "no CUE track matches audio placeholder")
		}
		e.LBA = lba
		e.ExtentSize = n * sectorSize
		lba += n
	}
	return lba, nil
}

// CheckResolved returns pkgerr.UnresolvedTrack if any CDDA entry in t still
// carries the sentinel LBA, naming the first such entry's TrackID.
func CheckResolved(t *fsmodel.Tree) error {
	for i := range t.Entries {
		e := &t.Entries[i]
		if e.Kind == fsmodel.KindCDDA && e.LBA == fsmodel.UnresolvedLBA {
			return pkgerr.New(pkgerr.UnresolvedTrack, e.TrackID, "audio placeholder never resolved to an LBA")
		}
	}
	return nil
}

package direntry

import (
	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/layout"
	"github.com/psxiso/mkpsxiso/internal/sectorview"
)

// WriteDirectory streams one directory's listing into view: the "." record
// first (identifier byte 0x01), then ".." (identifier byte 0x00), then each
// child in sorted order, respecting the rule that a record never spans a
// 2048-byte sector boundary.
func WriteDirectory(view *sectorview.View, t *fsmodel.Tree, dirIdx int, xaEnabled bool) error {
	dir := &t.Entries[dirIdx]
	parent := &t.Entries[dir.Parent]

	if err := writeRecord(view, dir, []byte{0x01}, dir.LBA, dir.ExtentSize, xaEnabled); err != nil {
		return err
	}
	if err := writeRecord(view, parent, []byte{0x00}, parent.LBA, parent.ExtentSize, xaEnabled); err != nil {
		return err
	}

	for _, childIdx := range layout.SortedChildren(t, dirIdx) {
		child := &t.Entries[childIdx]
		if child.Kind == fsmodel.KindDummy {
			continue // dummies occupy sectors but are never listed
		}
		size := child.ExtentSize
		if child.Kind == fsmodel.KindForm2Interleaved {
			// Form 2 extents are recorded as 2048 bytes per 2336-byte sector.
			size = (size + 2335) / 2336 * 2048
		}
		if err := writeRecord(view, child, []byte(child.ID), child.LBA, size, xaEnabled); err != nil {
			return err
		}
	}
	return nil
}

// writeRecord advances to the next sector first if the record would
// otherwise straddle a sector boundary.
func writeRecord(view *sectorview.View, e *fsmodel.Entry, identifier []byte, lba, size uint32, xaEnabled bool) error {
	recordBytes := Marshal(e, identifier, lba, size, xaEnabled)
	if view.SpaceInCurrentSector() < len(recordBytes) {
		if err := view.NextSector(); err != nil {
			return err
		}
	}
	return view.WriteMemory(recordBytes)
}

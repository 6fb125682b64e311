package descriptor

import (
	"encoding/binary"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/layout"
)

// PathTableLayout holds the four path-table LBAs embedded in the PVD: L
// primary, L secondary (duplicate), M primary, M secondary (duplicate),
// placed back-to-back.
type PathTableLayout struct {
	LPrimary, LSecondary, MPrimary, MSecondary uint32
	SectorsPerTable                            uint32
}

// PlanPathTables computes the four path-table LBAs starting at startLBA
// (conventionally 18) and returns the LBA immediately after the last table.
func PlanPathTables(t *fsmodel.Tree, startLBA uint32) (PathTableLayout, uint32) {
	bytesLen := layout.PathTableLen(t)
	sectors := (bytesLen + 2047) / 2048
	if sectors == 0 {
		sectors = 1
	}
	pt := PathTableLayout{
		LPrimary:        startLBA,
		LSecondary:      startLBA + sectors,
		MPrimary:        startLBA + 2*sectors,
		MSecondary:      startLBA + 3*sectors,
		SectorsPerTable: sectors,
	}
	return pt, startLBA + 4*sectors
}

func roundUpEvenPT(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// marshalPathTableRecord writes one 8-byte-header + identifier record,
// big-endian for the M-type table, little-endian for L-type.
func marshalPathTableRecord(extentLBA uint32, parentDirNum uint16, identifier []byte, bigEndian bool) []byte {
	idLen := len(identifier)
	recLen := 8 + roundUpEvenPT(idLen)
	buf := make([]byte, recLen)
	buf[0] = byte(idLen)
	buf[1] = 0
	if bigEndian {
		binary.BigEndian.PutUint32(buf[2:6], extentLBA)
		binary.BigEndian.PutUint16(buf[6:8], parentDirNum)
	} else {
		binary.LittleEndian.PutUint32(buf[2:6], extentLBA)
		binary.LittleEndian.PutUint16(buf[6:8], parentDirNum)
	}
	copy(buf[8:], identifier)
	return buf
}

// MarshalPathTable builds the complete byte stream for one L- or M-type
// table, in ECMA-119 9.4.3/9.4.4 order: directories ordered by distance
// from the root, ties broken by parent's position then identifier.
func MarshalPathTable(t *fsmodel.Tree, bigEndian bool) []byte {
	dirIdx := collectDirsBreadthFirst(t)
	// dirNum maps an arena index to its 1-based path-table position.
	dirNum := make(map[int]uint16, len(dirIdx))
	for i, idx := range dirIdx {
		dirNum[idx] = uint16(i + 1)
	}

	var out []byte
	for _, idx := range dirIdx {
		e := &t.Entries[idx]
		var identifier []byte
		var parentNum uint16
		if idx == 0 {
			identifier = []byte{0x00}
			parentNum = 1
		} else {
			identifier = []byte(e.ID)
			parentNum = dirNum[e.Parent]
		}
		out = append(out, marshalPathTableRecord(e.LBA, parentNum, identifier, bigEndian)...)
	}
	return out
}

// collectDirsBreadthFirst returns directory arena indices in breadth-first
// (by-depth) order with same-depth siblings in identifier order, the order
// ECMA-119 path tables require (a directory's record always precedes its
// children's).
func collectDirsBreadthFirst(t *fsmodel.Tree) []int {
	order := []int{0}
	queue := []int{0}
	for len(queue) > 0 {
		dirIdx := queue[0]
		queue = queue[1:]
		for _, childIdx := range layout.SortedChildren(t, dirIdx) {
			if t.Entries[childIdx].Kind == fsmodel.KindDir {
				order = append(order, childIdx)
				queue = append(queue, childIdx)
			}
		}
	}
	return order
}

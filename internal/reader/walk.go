package reader

import (
	"encoding/binary"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
)

// record is one parsed directory-record entry, before kind inference.
type record struct {
	identifier string
	lba        uint32
	size       uint32
	flags      byte
	date       fsmodel.DateStamp
	xaGroup    uint16
	xaUser     uint16
	xaWord     uint16
}

// parseDirectoryRecords reads sizeBytes worth of 2048-byte sectors starting
// at lba and returns every directory record found, skipping the leading "."
// and ".." entries every directory carries.
func parseDirectoryRecords(img *Image, lba uint32, sizeBytes uint32, xaEnabled bool) ([]record, error) {
	numSectors := (sizeBytes + 2047) / 2048
	var recs []record
	for s := uint32(0); s < numSectors; s++ {
		buf, err := img.ReadForm1UserData(lba + s)
		if err != nil {
			return nil, err
		}
		off := 0
		for off < len(buf) {
			length := int(buf[off])
			if length == 0 {
				break // padding to sector end
			}
			recs = append(recs, parseOneRecord(buf[off:off+length], xaEnabled))
			off += length
		}
	}
	if len(recs) >= 2 {
		recs = recs[2:] // skip "." and ".."
	}
	return recs, nil
}

func parseOneRecord(buf []byte, xaEnabled bool) record {
	var r record
	r.lba = binary.LittleEndian.Uint32(buf[2:6])
	r.size = binary.LittleEndian.Uint32(buf[10:14])
	r.date = fsmodel.DateStamp{
		Year: buf[18], Month: buf[19], Day: buf[20],
		Hour: buf[21], Minute: buf[22], Second: buf[23],
		GMTOffset: int8(buf[24]),
	}
	r.flags = buf[25]

	idLen := int(buf[32])
	id := string(buf[33 : 33+idLen])
	if len(id) == 1 && id[0] == 0x01 {
		id = "\x01"
	} else if len(id) == 1 && id[0] == 0x00 {
		id = "\x00"
	}
	r.identifier = id

	if xaEnabled {
		off := 33 + idLen
		if off%2 != 0 {
			off++
		}
		if off+14 <= len(buf) {
			xa := buf[off : off+14]
			r.xaGroup = binary.BigEndian.Uint16(xa[0:2])
			r.xaUser = binary.BigEndian.Uint16(xa[2:4])
			r.xaWord = binary.BigEndian.Uint16(xa[4:6])
		}
	}
	return r
}

// kindFromXAWord infers the fsmodel.Kind from the XA attribute word's top
// byte (bits 15-8), mirroring direntry.xaAttributeWord's encoding in
// reverse.
func kindFromXAWord(word uint16) fsmodel.Kind {
	top := byte(word >> 8)
	switch {
	case top&0x40 != 0:
		return fsmodel.KindCDDA
	case top&0x80 != 0:
		return fsmodel.KindDir
	case top&0x08 != 0 && top&0x10 == 0:
		return fsmodel.KindFile
	case top&0x10 != 0 && top&0x08 == 0:
		return fsmodel.KindForm2Interleaved
	default:
		return fsmodel.KindForm2Interleaved // both bits equal: the safe default
	}
}

// appendEntry appends e as a child of parentIdx without running
// internal/fsmodel's project-time validation: an already-mastered image is
// assumed internally consistent, and the extractor never mutates a tree
// once it has built it.
func appendEntry(t *fsmodel.Tree, parentIdx int, e fsmodel.Entry) int {
	e.Parent = parentIdx
	idx := len(t.Entries)
	t.Entries = append(t.Entries, e)
	t.Entries[parentIdx].Children = append(t.Entries[parentIdx].Children, idx)
	return idx
}

// WalkTree reads the complete directory tree starting from the PVD's root
// record, returning an fsmodel.Tree mirroring the on-disc layout. Without XA
// attributes (xaEnabled false) the XA-bit kind inference is skipped: entries
// with the ISO 9660 directory flag read as directories, all others as plain
// regular files.
func WalkTree(img *Image, pvd PVDInfo) (*fsmodel.Tree, error) {
	tree := &fsmodel.Tree{Entries: []fsmodel.Entry{{Kind: fsmodel.KindDir, LBA: pvd.RootLBA, ExtentSize: pvd.RootSize}}}
	if err := walkDir(img, tree, 0, pvd.RootLBA, pvd.RootSize, pvd.XAEnabled); err != nil {
		return nil, err
	}
	return tree, nil
}

func walkDir(img *Image, tree *fsmodel.Tree, dirIdx int, lba, size uint32, xaEnabled bool) error {
	recs, err := parseDirectoryRecords(img, lba, size, xaEnabled)
	if err != nil {
		return err
	}
	for _, r := range recs {
		kind := fsmodel.KindFile
		if xaEnabled {
			kind = kindFromXAWord(r.xaWord)
		} else if r.flags&0x02 != 0 {
			kind = fsmodel.KindDir
		}

		e := fsmodel.Entry{
			ID:         r.identifier,
			Kind:       kind,
			LBA:        r.lba,
			ExtentSize: r.size,
			Date:       r.date,
			Hidden:     r.flags&0x01 != 0,
			Attrs: fsmodel.ResolvedAttrs{
				XAGroup: r.xaGroup,
				XAUser:  r.xaUser,
				XAAttrib: func() uint8 {
					if xaEnabled {
						return byte(r.xaWord >> 8)
					}
					return 0
				}(),
			},
		}
		childIdx := appendEntry(tree, dirIdx, e)

		if kind == fsmodel.KindDir {
			if err := walkDir(img, tree, childIdx, r.lba, r.size, xaEnabled); err != nil {
				return err
			}
		}
	}
	return nil
}

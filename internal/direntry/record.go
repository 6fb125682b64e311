// Package direntry marshals ISO 9660 directory records with the CD-XA
// attribute suffix and streams a directory's listing through a
// sectorview.View.
package direntry

import (
	"encoding/binary"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
)

// XA kind-bit values, big-endian bits 15-8 of the XA attribute word.
const (
	xaFlagFile  = 0x0800
	xaFlagDir   = 0x8800
	xaFlagForm2 = 0x3800
	xaFlagCDDA  = 0x4000
)

// recordFixedSize is the 33-byte fixed portion of a directory record
// (length byte included) before the identifier.
const recordFixedSize = 33

// xaBlockSize is the CD-XA attribute suffix appended after the identifier
// (and its pad byte), 14 bytes.
const xaBlockSize = 14

func roundUpEven(n int) int {
	if n%2 != 0 {
		return n + 1
	}
	return n
}

// RecordSize returns the marshaled byte length of a directory record with
// the given identifier length, honoring XA.
func RecordSize(idLen int, xaEnabled bool) int {
	size := roundUpEven(recordFixedSize + idLen)
	if xaEnabled {
		size += xaBlockSize
	}
	return size
}

// xaAttributeWord computes the big-endian attribute word for an entry: kind
// flags in bits 15-8, permissions in bits 10-0. An explicitly set
// ResolvedAttrs.XAAttrib overrides the kind default.
func xaAttributeWord(e *fsmodel.Entry) (word uint16, fileNum byte) {
	perm := e.Attrs.XAPerm & 0x7FF
	if e.Attrs.XAAttrib != 0 {
		return uint16(e.Attrs.XAAttrib)<<8 | perm, fileNumFor(e)
	}
	switch e.Kind {
	case fsmodel.KindDir:
		return xaFlagDir | perm, 0
	case fsmodel.KindForm2Interleaved:
		return xaFlagForm2 | perm, 1
	case fsmodel.KindCDDA:
		return xaFlagCDDA | perm, 0
	default: // File, Form1OnlyVideo, Dummy
		return xaFlagFile | perm, 0
	}
}

func fileNumFor(e *fsmodel.Entry) byte {
	if e.Kind == fsmodel.KindForm2Interleaved {
		return 1
	}
	return 0
}

// Marshal builds the full byte slice for one directory record. identifier
// is the raw identifier bytes to embed (callers pass "\x01" for "." and
// "\x00" for ".."). lba/size describe the extent the record points to, which
// the caller resolves from the entry being described (self, parent, or the
// child's own fields).
func Marshal(e *fsmodel.Entry, identifier []byte, lba, size uint32, xaEnabled bool) []byte {
	idLen := len(identifier)
	total := RecordSize(idLen, xaEnabled)
	buf := make([]byte, total)

	buf[0] = byte(total)
	buf[1] = 0 // extended attribute record length

	binary.LittleEndian.PutUint32(buf[2:6], lba)
	binary.BigEndian.PutUint32(buf[6:10], lba)
	binary.LittleEndian.PutUint32(buf[10:14], size)
	binary.BigEndian.PutUint32(buf[14:18], size)

	buf[18] = e.Date.Year
	buf[19] = e.Date.Month
	buf[20] = e.Date.Day
	buf[21] = e.Date.Hour
	buf[22] = e.Date.Minute
	buf[23] = e.Date.Second
	buf[24] = byte(e.Date.GMTOffset)

	var flags byte
	if e.Kind == fsmodel.KindDir {
		flags |= 0x02
	}
	if e.Hidden {
		flags |= 0x01
	}
	buf[25] = flags

	buf[26] = 0 // file unit size
	buf[27] = 0 // interleave gap size
	binary.LittleEndian.PutUint16(buf[28:30], 1)
	binary.BigEndian.PutUint16(buf[30:32], 1)

	buf[32] = byte(idLen)
	copy(buf[33:33+idLen], identifier)

	off := 33 + idLen
	if xaEnabled {
		off = roundUpEven(33 + idLen)
		xa := buf[off : off+xaBlockSize]
		word, fileNum := xaAttributeWord(e)
		binary.BigEndian.PutUint16(xa[0:2], e.Attrs.XAGroup)
		binary.BigEndian.PutUint16(xa[2:4], e.Attrs.XAUser)
		binary.BigEndian.PutUint16(xa[4:6], word)
		xa[6] = 'X'
		xa[7] = 'A'
		xa[8] = fileNum
	}

	return buf
}

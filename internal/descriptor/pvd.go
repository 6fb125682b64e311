package descriptor

import (
	"encoding/binary"

	"github.com/psxiso/mkpsxiso/internal/direntry"
	"github.com/psxiso/mkpsxiso/internal/fsmodel"
)

const (
	vdTypePrimary    byte = 1
	vdTypeTerminator byte = 255
)

func padString(s string, length int) []byte {
	b := make([]byte, length)
	for i := range b {
		b[i] = ' '
	}
	n := len(s)
	if n > length {
		n = length
	}
	copy(b, s[:n])
	return b
}

func formatLongDatestamp(d fsmodel.DateStamp, set bool) []byte {
	out := make([]byte, 17)
	if !set {
		for i := 0; i < 16; i++ {
			out[i] = '0'
		}
		return out
	}
	year := 1900 + int(d.Year)
	s := []byte{
		byte('0' + (year/1000)%10), byte('0' + (year/100)%10), byte('0' + (year/10)%10), byte('0' + year%10),
		byte('0' + (d.Month/10)%10), byte('0' + d.Month%10),
		byte('0' + (d.Day/10)%10), byte('0' + d.Day%10),
		byte('0' + (d.Hour/10)%10), byte('0' + d.Hour%10),
		byte('0' + (d.Minute/10)%10), byte('0' + d.Minute%10),
		byte('0' + (d.Second/10)%10), byte('0' + d.Second%10),
		'0', '0',
	}
	copy(out, s)
	out[16] = byte(d.GMTOffset)
	return out
}

// BuildPVD returns the 2048-byte Primary Volume Descriptor sector:
// little/big-endian pairs for volume metadata, path table positions, the
// embedded 34-byte root directory record, and (when XA is enabled) the
// literal "CD-XA001" application-data marker at offset 141.
func BuildPVD(info VolumeInfo, tree *fsmodel.Tree, totalLBA uint32, pathTableBytes uint32, pt PathTableLayout) []byte {
	buf := make([]byte, 2048)
	buf[0] = vdTypePrimary
	copy(buf[1:6], "CD001")
	buf[6] = 1

	off := 8
	copy(buf[off:off+32], padString(info.SystemIdentifier, 32))
	off += 32
	copy(buf[off:off+32], padString(info.VolumeIdentifier, 32))
	off += 32 + 8 // unused

	binary.LittleEndian.PutUint32(buf[80:84], totalLBA)
	binary.BigEndian.PutUint32(buf[84:88], totalLBA)

	off = 120
	binary.LittleEndian.PutUint16(buf[off:off+2], 1)
	binary.BigEndian.PutUint16(buf[off+2:off+4], 1)
	binary.LittleEndian.PutUint16(buf[off+4:off+6], 1)
	binary.BigEndian.PutUint16(buf[off+6:off+8], 1)
	binary.LittleEndian.PutUint16(buf[off+8:off+10], 2048)
	binary.BigEndian.PutUint16(buf[off+10:off+12], 2048)

	off = 132
	binary.LittleEndian.PutUint32(buf[off:off+4], pathTableBytes)
	binary.BigEndian.PutUint32(buf[off+4:off+8], pathTableBytes)

	off = 140
	binary.LittleEndian.PutUint32(buf[off:off+4], pt.LPrimary)
	binary.LittleEndian.PutUint32(buf[off+4:off+8], pt.LSecondary)
	binary.BigEndian.PutUint32(buf[off+8:off+12], pt.MPrimary)
	binary.BigEndian.PutUint32(buf[off+12:off+16], pt.MSecondary)

	root := tree.Root()
	rootDR := direntry.Marshal(root, []byte{0x00}, root.LBA, root.ExtentSize, false)
	off = 156
	copy(buf[off:off+34], rootDR)
	buf[off+25] = 0x02 // flags: directory

	off = 190
	copy(buf[off:off+128], padString(info.VolumeSetIdentifier, 128))
	off += 128
	copy(buf[off:off+128], padString(info.PublisherIdentifier, 128))
	off += 128
	copy(buf[off:off+128], padString(info.DataPreparerID, 128))
	off += 128
	copy(buf[off:off+128], padString(info.ApplicationID, 128))
	off += 128
	// Copyright/Abstract/Bibliographic file identifiers: 37 bytes each, left blank.
	off += 37 * 3

	copy(buf[off:off+17], formatLongDatestamp(info.CreationDate, true))
	off += 17
	copy(buf[off:off+17], formatLongDatestamp(info.ModificationDate, info.HasModificationDate))
	off += 17
	copy(buf[off:off+17], formatLongDatestamp(fsmodel.DateStamp{}, false)) // expiration: unspecified
	off += 17
	copy(buf[off:off+17], formatLongDatestamp(info.CreationDate, true)) // effective
	off += 17

	buf[off] = 1 // file structure version
	off++

	if info.XAEnabled {
		// "CD-XA001" sits at offset 141 within the 512-byte Application Use
		// area (itself at absolute offset 883), i.e. absolute offset 1024.
		copy(buf[883+141:883+141+8], "CD-XA001")
	}

	return buf
}

// BuildTerminator returns the 2048-byte Volume Descriptor Set Terminator.
func BuildTerminator() []byte {
	buf := make([]byte, 2048)
	buf[0] = vdTypeTerminator
	copy(buf[1:6], "CD001")
	buf[6] = 1
	return buf
}

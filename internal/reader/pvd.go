package reader

import (
	"encoding/binary"
	"strings"

	"github.com/psxiso/mkpsxiso/internal/pkgerr"
)

const (
	pvdLBA = 16
)

// PVDInfo holds the fields the reader needs out of the Primary Volume
// Descriptor to walk the rest of the image.
type PVDInfo struct {
	SystemIdentifier    string
	VolumeIdentifier    string
	VolumeSetIdentifier string
	PublisherIdentifier string
	DataPreparerID      string
	ApplicationID       string
	XAEnabled           bool

	TotalLBA       uint32
	PathTableBytes uint32
	LPrimaryLBA    uint32
	RootLBA        uint32
	RootSize       uint32
}

func trimPadded(b []byte) string {
	return strings.TrimRight(string(b), " ")
}

// ReadPVD reads and parses the Primary Volume Descriptor at LBA 16.
func (img *Image) ReadPVD() (PVDInfo, error) {
	buf, err := img.ReadForm1UserData(pvdLBA)
	if err != nil {
		return PVDInfo{}, err
	}
	if buf[0] != 1 || string(buf[1:6]) != "CD001" {
		return PVDInfo{}, pkgerr.New(pkgerr.ImageTruncated, "", "LBA 16 is not a Primary Volume Descriptor")
	}

	var info PVDInfo
	info.SystemIdentifier = trimPadded(buf[8:40])
	info.VolumeIdentifier = trimPadded(buf[40:72])
	info.TotalLBA = binary.LittleEndian.Uint32(buf[80:84])
	info.PathTableBytes = binary.LittleEndian.Uint32(buf[132:136])
	info.LPrimaryLBA = binary.LittleEndian.Uint32(buf[140:144])

	rootDR := buf[156:190]
	info.RootLBA = binary.LittleEndian.Uint32(rootDR[2:6])
	info.RootSize = binary.LittleEndian.Uint32(rootDR[10:14])

	off := 190
	info.VolumeSetIdentifier = trimPadded(buf[off : off+128])
	off += 128
	info.PublisherIdentifier = trimPadded(buf[off : off+128])
	off += 128
	info.DataPreparerID = trimPadded(buf[off : off+128])
	off += 128
	info.ApplicationID = trimPadded(buf[off : off+128])

	if string(buf[883+141:883+141+8]) == "CD-XA001" {
		info.XAEnabled = true
	}

	return info, nil
}

// Package reader implements the extractor side of the core: reading a disc
// image's PVD, path table and directory tree back into an in-memory model,
// and extracting entry payloads to loose files. Mirrors internal/descriptor
// and internal/direntry in reverse.
package reader

import (
	"os"

	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/sector"
)

// Image is an open disc image file, read sequentially or by LBA seek.
type Image struct {
	f    *os.File
	size int64
}

// Open opens path for reading. It does not memory-map the file: the
// extractor side only ever reads, and the access pattern (whole-sector
// reads at scattered LBAs) has no concurrent-write discipline to protect,
// so a plain os.File plus ReadAt is the simpler, equally correct choice.
func Open(path string) (*Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.ImageTruncated, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, pkgerr.Wrap(pkgerr.ImageTruncated, path, err)
	}
	return &Image{f: f, size: info.Size()}, nil
}

// Close closes the underlying file.
func (img *Image) Close() error { return img.f.Close() }

// TotalLBA returns how many whole 2352-byte sectors the image contains.
func (img *Image) TotalLBA() uint32 { return uint32(img.size / sector.Size) }

// ReadRawSector returns the full 2352-byte raw sector at lba.
func (img *Image) ReadRawSector(lba uint32) ([]byte, error) {
	buf := make([]byte, sector.Size)
	n, err := img.f.ReadAt(buf, int64(lba)*sector.Size)
	if err != nil && n < len(buf) {
		return buf[:n], pkgerr.Wrap(pkgerr.ImageTruncated, "", err)
	}
	return buf, nil
}

// ReadForm1UserData returns the 2048-byte user-data region of the Mode 2
// Form 1 sector at lba, ignoring header/subheader/EDC/ECC.
func (img *Image) ReadForm1UserData(lba uint32) ([]byte, error) {
	buf, err := img.ReadRawSector(lba)
	if err != nil {
		return nil, err
	}
	return buf[24 : 24+2048], nil
}

// ReadForm2Payload returns the 2336-byte subheader+data+EDC payload of the
// Mode 2 Form 2 sector at lba (everything after the 16-byte sync/address/
// mode header), used to extract interleaved-XA/STR file data verbatim.
func (img *Image) ReadForm2Payload(lba uint32) ([]byte, error) {
	buf, err := img.ReadRawSector(lba)
	if err != nil {
		return nil, err
	}
	return buf[16:], nil
}

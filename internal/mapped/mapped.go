// Package mapped implements the memory-mapped output file and its
// page-aligned sub-views. The backing file is sized precisely once layout
// is known, then mapped read/write; sub-views let independent writers
// (PVD, path tables, directory records, file data) fill disjoint byte
// ranges without locking.
package mapped

import (
	"os"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"

	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/sector"
)

// Output is a memory-mapped disc image file sized to totalLBA sectors.
type Output struct {
	file      *os.File
	data      []byte // the full mmap, length sector.Size*totalLBA rounded up to a page
	totalSize int64
}

// Create creates path, truncating any existing file (the caller decides
// beforehand whether overwriting is allowed), sizes it to 2352*totalLBA
// bytes and maps it read/write.
func Create(path string, totalLBA uint32) (*Output, error) {
	size := int64(totalLBA) * sector.Size

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.OutputIoError, path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, pkgerr.Wrap(pkgerr.OutputIoError, path, errors.Wrap(err, "truncating output file"))
	}

	pageSize := int64(unix.Getpagesize())
	mapSize := size
	if size == 0 {
		mapSize = pageSize
	} else if rem := size % pageSize; rem != 0 {
		// mmap itself only requires the offset to be page-aligned, not the
		// length, but we round up defensively for platforms that do.
		mapSize = size + (pageSize - rem)
		if err := f.Truncate(mapSize); err != nil {
			f.Close()
			return nil, pkgerr.Wrap(pkgerr.OutputIoError, path, err)
		}
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(mapSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, pkgerr.Wrap(pkgerr.OutputIoError, path, errors.Wrap(err, "mmap"))
	}

	return &Output{file: f, data: data, totalSize: size}, nil
}

// Size returns the logical (unrounded) size of the mapped image in bytes.
func (o *Output) Size() int64 { return o.totalSize }

// View returns a slice over [offsetLBA, offsetLBA+countLBA) sectors. Views
// may overlap in LBA range; callers are responsible for writing only to
// disjoint byte ranges when operating concurrently.
func (o *Output) View(offsetLBA, countLBA uint32) []byte {
	start := int64(offsetLBA) * sector.Size
	end := start + int64(countLBA)*sector.Size
	if end > int64(len(o.data)) {
		panic("mapped: view range exceeds mapped file size")
	}
	return o.data[start:end]
}

// Close flushes and unmaps the output, then truncates it back to its
// logical (unrounded) size and closes the file. Callers must ensure every
// View-derived writer (every sectorview.View) has finished before Close is
// called.
func (o *Output) Close() error {
	if err := unix.Msync(o.data, unix.MS_SYNC); err != nil {
		return pkgerr.Wrap(pkgerr.OutputIoError, o.file.Name(), err)
	}
	if err := unix.Munmap(o.data); err != nil {
		return pkgerr.Wrap(pkgerr.OutputIoError, o.file.Name(), err)
	}
	if err := o.file.Truncate(o.totalSize); err != nil {
		o.file.Close()
		return pkgerr.Wrap(pkgerr.OutputIoError, o.file.Name(), err)
	}
	if err := o.file.Close(); err != nil {
		return pkgerr.Wrap(pkgerr.OutputIoError, o.file.Name(), err)
	}
	return nil
}

package sectorview

import (
	"io"

	"golang.org/x/sync/errgroup"

	"github.com/psxiso/mkpsxiso/internal/sector"
)

// Form selects which sector layout a View writes; an alias of sector.Form so
// fsmodel/layout/direntry can share the same enum without importing this
// package.
type Form = sector.Form

const (
	Form1 = sector.FormMode2Form1 // Mode 2 Form 1: 2048 B user data/sector, EDC+ECC
	Form2 = sector.FormMode2Form2 // Mode 2 Form 2: 2324 B user data/sector, optional EDC
	Raw   = sector.FormCDDA       // CD-DA: 2352 B verbatim PCM/sector, no header/EDC
)

func userDataSize(f Form) int {
	switch f {
	case Form1:
		return 2048
	case Form2:
		return 2324
	default:
		return sector.Size
	}
}

// View is a stateful writer over a contiguous LBA range of a mapped.Output.
// It streams payload bytes into sectors of its configured form, finalizing
// (header + EDC/ECC) and dispatching each completed sector to the shared
// WorkerPool as it fills.
type View struct {
	codec *sector.Codec
	pool  *WorkerPool
	group errgroup.Group

	region   []byte // the backing mapped.Output.View slice for [startLBA, endLBA)
	startLBA uint32
	endLBA   uint32

	form       Form
	subheader  uint32
	edcEnabled bool // Form2 only

	curLBA uint32
	curOff int
}

// New returns a View writing into region, which must be exactly
// (endLBA-startLBA)*sector.Size bytes (a mapped.Output.View(startLBA,
// endLBA-startLBA) slice).
func New(codec *sector.Codec, pool *WorkerPool, region []byte, startLBA, endLBA uint32, form Form) *View {
	return &View{
		codec:    codec,
		pool:     pool,
		region:   region,
		startLBA: startLBA,
		endLBA:   endLBA,
		form:     form,
		curLBA:   startLBA,
	}
}

// SetSubheader sets the 4-byte logical subheader stamped on subsequently
// finalized sectors.
func (v *View) SetSubheader(subheader uint32) { v.subheader = subheader }

// SetEDCEnabled controls whether Form 2 sectors get an EDC (disabled by
// default; the EDC field is zero-filled when disabled).
func (v *View) SetEDCEnabled(enabled bool) { v.edcEnabled = enabled }

// CurrentLBA returns the LBA of the sector currently being filled.
func (v *View) CurrentLBA() uint32 { return v.curLBA }

// SpaceInCurrentSector returns how many more user-data bytes fit in the
// sector currently being filled.
func (v *View) SpaceInCurrentSector() int {
	return userDataSize(v.form) - v.curOff
}

func (v *View) sectorBuf(lba uint32) []byte {
	if lba < v.startLBA || lba >= v.endLBA {
		panic("sectorview: write past view's end_lba")
	}
	off := int64(lba-v.startLBA) * sector.Size
	return v.region[off : off+sector.Size]
}

func (v *View) dataRegion(buf []byte) []byte {
	switch v.form {
	case Form1:
		return buf[24 : 24+2048]
	case Form2:
		return buf[24 : 24+2324]
	default:
		return buf
	}
}

// WriteMemory copies data into the user-data region of the current sector,
// finalizing and advancing as each sector fills. Writing zero bytes is a
// no-op.
func (v *View) WriteMemory(data []byte) error {
	for len(data) > 0 {
		buf := v.sectorBuf(v.curLBA)
		region := v.dataRegion(buf)
		n := copy(region[v.curOff:], data)
		v.curOff += n
		data = data[n:]
		if v.curOff >= userDataSize(v.form) {
			if err := v.finalizeCurrent(); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile streams r into the view in chunks sized to the view's user-data
// region (2048 bytes for Form 1, 2324 for Form 2). If r ends mid-sector, the
// remainder is zero-padded.
func (v *View) WriteFile(r io.Reader) (int64, error) {
	chunk := make([]byte, userDataSize(v.form))
	var total int64
	for {
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			if werr := v.WriteMemory(chunk[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// WriteBlankSectors zero-fills and finalizes n whole sectors.
func (v *View) WriteBlankSectors(n uint32) error {
	if v.curOff != 0 {
		panic("sectorview: WriteBlankSectors requires a sector boundary")
	}
	zero := make([]byte, userDataSize(v.form))
	for i := uint32(0); i < n; i++ {
		if err := v.WriteMemory(zero); err != nil {
			return err
		}
	}
	return nil
}

// NextSector pads any remaining bytes in the current sector with zero,
// finalizes it, and advances. A no-op if already at a sector boundary.
func (v *View) NextSector() error {
	if v.curOff == 0 {
		return nil
	}
	remaining := userDataSize(v.form) - v.curOff
	return v.WriteMemory(make([]byte, remaining))
}

// finalizeCurrent writes the sector header in place and submits a codec job
// for EDC/ECC, then advances curLBA/curOff. Must only be called once the
// sector's user-data region (padded with zero as needed) is fully written.
func (v *View) finalizeCurrent() error {
	lba := v.curLBA
	buf := v.sectorBuf(lba)
	form := v.form
	subheader := v.subheader
	edcEnabled := v.edcEnabled
	codec := v.codec

	v.pool.Submit(&v.group, func() error {
		switch form {
		case Form1:
			codec.FinalizeForm1(buf, lba, subheader)
		case Form2:
			codec.FinalizeForm2(buf, lba, subheader, edcEnabled)
		case Raw:
			// CD-DA sectors are written verbatim; no header or checksum.
		}
		return nil
	})

	v.curLBA++
	v.curOff = 0
	return nil
}

// Close finalizes any in-progress partial sector (padding it with zero),
// then blocks until every codec job this View submitted has completed.
func (v *View) Close() error {
	if err := v.NextSector(); err != nil {
		return err
	}
	return v.group.Wait()
}

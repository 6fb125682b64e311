package psxbuild

import (
	"bytes"
	"os"

	"github.com/rs/zerolog"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/mapped"
	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/sector"
	"github.com/psxiso/mkpsxiso/internal/sectorview"
)

// writeFilePayloads streams every non-directory, non-CDDA leaf's source
// bytes into its already-assigned LBA range, one writer per entry kind.
// CDDA placeholders are handled separately by writeAudioTracks once the
// image file itself is mapped.
func writeFilePayloads(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, tree *fsmodel.Tree, log zerolog.Logger) error {
	for i := range tree.Entries {
		e := &tree.Entries[i]
		var err error
		switch e.Kind {
		case fsmodel.KindFile:
			err = writePlainFile(out, codec, pool, e)
		case fsmodel.KindForm2Interleaved:
			err = writeForm2File(out, e)
		case fsmodel.KindForm1OnlyVideo:
			err = writeSTRFile(out, codec, pool, e)
		case fsmodel.KindDummy:
			err = writeDummyEntry(out, codec, pool, e)
		default:
			continue
		}
		if err != nil {
			return err
		}
		log.Debug().Str("id", e.ID).Uint32("lba", e.LBA).Str("kind", e.Kind.String()).Msg("wrote payload")
	}
	return nil
}

// writePlainFile copies a regular file's bytes in 2048-byte Form 1 units.
// The final sector carries subheader SubEOF, the rest SubData. A short
// final chunk is zero-padded by View.Close.
func writePlainFile(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, e *fsmodel.Entry) error {
	data, err := os.ReadFile(e.FileSource)
	if err != nil {
		return pkgerr.Wrap(pkgerr.SourceNotFound, e.FileSource, err)
	}
	numSectors := (e.ExtentSize + 2047) / 2048
	region := out.View(e.LBA, numSectors)
	view := sectorview.New(codec, pool, region, e.LBA, e.LBA+numSectors, sectorview.Form1)

	for i := uint32(0); i < numSectors; i++ {
		start := i * 2048
		end := start + 2048
		if end > uint32(len(data)) {
			end = uint32(len(data))
		}
		subheader := sector.SubData
		if i == numSectors-1 {
			subheader = sector.SubEOF
		}
		view.SetSubheader(subheader)
		if err := view.WriteMemory(data[start:end]); err != nil {
			return err
		}
	}
	return view.Close()
}

// writeSTRFile copies a Form-1-only video source in 2048-byte units, every
// sector stamped with subheader SubSTR.
func writeSTRFile(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, e *fsmodel.Entry) error {
	data, err := os.ReadFile(e.FileSource)
	if err != nil {
		return pkgerr.Wrap(pkgerr.SourceNotFound, e.FileSource, err)
	}
	numSectors := (e.ExtentSize + 2047) / 2048
	region := out.View(e.LBA, numSectors)
	view := sectorview.New(codec, pool, region, e.LBA, e.LBA+numSectors, sectorview.Form1)
	view.SetSubheader(sector.SubSTR)
	if _, err := view.WriteFile(bytes.NewReader(data)); err != nil {
		return err
	}
	return view.Close()
}

// writeForm2File copies an interleaved XA source verbatim. Its bytes are
// already complete 2336-byte subheader+data[+EDC] payloads, one per sector,
// so only the sync/address/mode header is (re)computed per sector, the same
// approach internal/descriptor.WriteLicense takes with its own pre-mastered
// payload.
func writeForm2File(out *mapped.Output, e *fsmodel.Entry) error {
	data, err := os.ReadFile(e.FileSource)
	if err != nil {
		return pkgerr.Wrap(pkgerr.SourceNotFound, e.FileSource, err)
	}
	const payloadLen = 2336
	numSectors := e.ExtentSize / payloadLen
	for i := uint32(0); i < numSectors; i++ {
		lba := e.LBA + i
		buf := out.View(lba, 1)
		chunk := data[i*payloadLen : (i+1)*payloadLen]
		copy(buf[16:16+payloadLen], chunk)
		sector.FinalizeVerbatim(buf, lba)
	}
	return nil
}

// writeBlankSystemArea zero-fills the 16-sector LBA 0-15 area with properly
// headered Mode 2 Form 1 sectors when a project carries no license file,
// rather than leaving bare zero bytes there.
func writeBlankSystemArea(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool) error {
	const systemAreaSectors = 16
	region := out.View(0, systemAreaSectors)
	view := sectorview.New(codec, pool, region, 0, systemAreaSectors, sectorview.Form1)
	view.SetSubheader(sector.SubData)
	if err := view.WriteBlankSectors(systemAreaSectors); err != nil {
		return err
	}
	return view.Close()
}

// writeDummyEntry zero-fills a padding block's declared sector count in its
// declared form.
func writeDummyEntry(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, e *fsmodel.Entry) error {
	form := sectorview.Form1
	if e.DummyForm == sector.FormMode2Form2 {
		form = sectorview.Form2
	}
	region := out.View(e.LBA, e.DummySectors)
	view := sectorview.New(codec, pool, region, e.LBA, e.LBA+e.DummySectors, form)
	view.SetSubheader(sector.SubData)
	if err := view.WriteBlankSectors(e.DummySectors); err != nil {
		return err
	}
	return view.Close()
}

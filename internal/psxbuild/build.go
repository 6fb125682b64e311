// Package psxbuild orchestrates the full builder pipeline: the project
// frontend populates the filesystem model, the layout planner assigns LBAs
// and sizes, a memory-mapped output file is created sized to the total LBA
// count, then the descriptor, directory-record, and file-copy writers each
// stream their bytes through a sector view. The orchestration follows the
// classic mastering order: scan/parse, calculate layout, create output,
// write system area, write descriptors, write path tables, write directory
// contents, write file data.
package psxbuild

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/psxiso/mkpsxiso/internal/config"
	"github.com/psxiso/mkpsxiso/internal/cuesheet"
	"github.com/psxiso/mkpsxiso/internal/descriptor"
	"github.com/psxiso/mkpsxiso/internal/direntry"
	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/layout"
	"github.com/psxiso/mkpsxiso/internal/mapped"
	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/project"
	"github.com/psxiso/mkpsxiso/internal/sector"
	"github.com/psxiso/mkpsxiso/internal/sectorview"
)

// Options bundles everything Build needs beyond the project file itself.
type Options struct {
	ProjectPath string
	Cfg         config.Config
	Clock       config.Clock
	Log         zerolog.Logger
}

// audioTrack pairs a parsed <track type="audio"> with its loaded PCM bytes.
type audioTrack struct {
	trackID string
	pcm     []byte
}

// Build runs the complete builder pipeline and writes the output image,
// CUE sheet, and (if requested) LBA listing/header files.
func Build(opts Options) (err error) {
	cfg := opts.Cfg
	log := opts.Log

	if !cfg.Overwrite {
		if _, statErr := os.Stat(cfg.OutputPath); statErr == nil {
			return pkgerr.New(pkgerr.ImageExists, cfg.OutputPath, "output image already exists (use --overwrite)")
		}
	}

	f, err := os.Open(opts.ProjectPath)
	if err != nil {
		return pkgerr.Wrap(pkgerr.MalformedProject, opts.ProjectPath, err)
	}
	doc, err := project.Parse(f)
	f.Close()
	if err != nil {
		return pkgerr.Wrap(pkgerr.MalformedProject, opts.ProjectPath, err)
	}
	project.ResolveSourcePaths(doc, filepath.Dir(opts.ProjectPath))

	var dataTrack *project.Track
	var audioDocTracks []project.Track
	for i := range doc.Tracks {
		switch doc.Tracks[i].Type {
		case "data":
			if dataTrack == nil {
				dataTrack = &doc.Tracks[i]
			}
		case "audio":
			audioDocTracks = append(audioDocTracks, doc.Tracks[i])
		}
	}
	if dataTrack == nil {
		return pkgerr.New(pkgerr.MalformedProject, opts.ProjectPath, "project has no data track")
	}

	tree, err := project.BuildTree(dataTrack, opts.Clock)
	if err != nil {
		return err
	}

	xaEnabled := !cfg.NoXA && !doc.NoXA

	pathTableBytes := layout.PathTableLen(tree)
	pt, afterPathTables := descriptor.PlanPathTables(tree, 18)

	dataTotalLBA, err := layout.CalculateTreeLBA(tree, afterPathTables, xaEnabled)
	if err != nil {
		return err
	}

	audioTracks, trackSectors, err := loadAudioTracks(audioDocTracks)
	if err != nil {
		return err
	}
	// No virtual pregap sectors are reserved in the .bin itself. The CUE
	// sheet's PREGAP command tells the player to insert 2 seconds of
	// silence ahead of the first audio track without the image carrying
	// that silence as data.
	afterAudioLBA, err := layout.ResolveAudioLBAs(tree, dataTotalLBA, trackSectors)
	if err != nil {
		return err
	}
	if err := layout.CheckResolved(tree); err != nil {
		return err
	}
	totalLBA := afterAudioLBA

	var licenseData []byte
	if dataTrack.License != nil {
		licenseData, err = os.ReadFile(dataTrack.License.File)
		if err != nil {
			return pkgerr.Wrap(pkgerr.SourceNotFound, dataTrack.License.File, err)
		}
		if len(licenseData) != descriptor.LicenseDataLen {
			return pkgerr.New(pkgerr.SourceSizeInvalid, dataTrack.License.File, "license data must be exactly 28032 bytes")
		}
	}

	out, err := mapped.Create(cfg.OutputPath, totalLBA)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			os.Remove(cfg.OutputPath) // partial output is deleted on failure
			if cfg.CueFile != "" {
				os.Remove(cfg.CueFile)
			}
		}
	}()

	codec := sector.NewCodec()
	pool := sectorview.NewWorkerPool()

	if licenseData != nil {
		if err = descriptor.WriteLicense(out, codec, licenseData); err != nil {
			return err
		}
		log.Info().Msg("wrote license region")
	} else {
		if err = writeBlankSystemArea(out, codec, pool); err != nil {
			return err
		}
	}

	info := descriptor.VolumeInfo{
		SystemIdentifier:    dataTrack.Identifiers.System,
		VolumeIdentifier:    firstNonEmpty(cfg.Label, dataTrack.Identifiers.Volume),
		VolumeSetIdentifier: dataTrack.Identifiers.VolumeSet,
		PublisherIdentifier: dataTrack.Identifiers.Publisher,
		DataPreparerID:      dataTrack.Identifiers.DataPreparer,
		ApplicationID:       dataTrack.Identifiers.Application,
		XAEnabled:           xaEnabled,
		CreationDate:        project.DateStampFromClock(opts.Clock),
		HasModificationDate: false,
	}
	if cfg.NoISOGen {
		// --noisogen: the filesystem model still drives LBA assignment, but
		// no ISO 9660 metadata (PVD, path tables, directory records) is
		// written. Only raw file payloads land in the image, for callers
		// building a data track a PS1 BIOS never mounts as a filesystem
		// (e.g. a licensed single-file boot image).
		log.Info().Msg("--noisogen: skipping volume descriptors, path tables, and directory records")
	} else {
		if err = descriptor.WriteVolumeDescriptors(out, codec, pool, info, tree, totalLBA, pathTableBytes, pt); err != nil {
			return err
		}
		if err = descriptor.WriteAllPathTables(out, codec, pool, tree, pt); err != nil {
			return err
		}
		log.Info().Uint32("total_lba", totalLBA).Msg("wrote volume descriptors and path tables")

		if err = writeDirectoryTree(out, codec, pool, tree, xaEnabled); err != nil {
			return err
		}
	}
	if err = writeFilePayloads(out, codec, pool, tree, log); err != nil {
		return err
	}
	if err = writeAudioTracks(out, tree, audioTracks); err != nil {
		return err
	}

	if cfg.CueFile != "" {
		if err = writeCueSheet(cfg, tree, audioDocTracks); err != nil {
			return err
		}
	}
	if cfg.LBAListFile != "" {
		if err = writeAuxFile(cfg.LBAListFile, func(wr *os.File) error { return layout.WriteLBAList(wr, tree) }); err != nil {
			return err
		}
	}
	if cfg.LBAHeaderFile != "" {
		if err = writeAuxFile(cfg.LBAHeaderFile, func(wr *os.File) error { return layout.WriteLBAHeader(wr, tree) }); err != nil {
			return err
		}
	}

	return nil
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func writeAuxFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return pkgerr.Wrap(pkgerr.OutputIoError, path, err)
	}
	defer f.Close()
	return fn(f)
}

// writeDirectoryTree opens one SectorView per directory and streams its
// listing through internal/direntry.
func writeDirectoryTree(out *mapped.Output, codec *sector.Codec, pool *sectorview.WorkerPool, tree *fsmodel.Tree, xaEnabled bool) error {
	var walk func(dirIdx int) error
	walk = func(dirIdx int) error {
		dir := &tree.Entries[dirIdx]
		sectors := dir.ExtentSize / 2048
		region := out.View(dir.LBA, sectors)
		view := sectorview.New(codec, pool, region, dir.LBA, dir.LBA+sectors, sectorview.Form1)
		if err := direntry.WriteDirectory(view, tree, dirIdx, xaEnabled); err != nil {
			return err
		}
		if err := view.Close(); err != nil {
			return err
		}
		for _, childIdx := range dir.Children {
			if tree.Entries[childIdx].Kind == fsmodel.KindDir {
				if err := walk(childIdx); err != nil {
					return err
				}
			}
		}
		return nil
	}
	return walk(0)
}

func loadAudioTracks(tracks []project.Track) ([]audioTrack, map[string]uint32, error) {
	sectors := make(map[string]uint32, len(tracks))
	loaded := make([]audioTrack, 0, len(tracks))
	for _, tr := range tracks {
		pcm, err := loadPCM(tr.Source)
		if err != nil {
			return nil, nil, err
		}
		n := (uint32(len(pcm)) + sector.Size - 1) / sector.Size
		sectors[tr.TrackID] = n
		loaded = append(loaded, audioTrack{trackID: tr.TrackID, pcm: pcm})
	}
	return loaded, sectors, nil
}

func writeAudioTracks(out *mapped.Output, tree *fsmodel.Tree, tracks []audioTrack) error {
	byID := make(map[string][2]uint32, len(tree.Entries)) // trackID -> [lba, sectors]
	for i := range tree.Entries {
		e := &tree.Entries[i]
		if e.Kind == fsmodel.KindCDDA {
			byID[e.TrackID] = [2]uint32{e.LBA, e.ExtentSize / 2048}
		}
	}
	for _, tr := range tracks {
		loc, ok := byID[tr.trackID]
		if !ok {
			continue // an audio track with no referencing <file type="da"> simply isn't placed
		}
		lba, sectors := loc[0], loc[1]
		region := out.View(lba, sectors)
		copy(region, tr.pcm)
		// any tail shorter than a whole sector is left zero (region is a
		// fresh mmap slice over a zero-filled file).
	}
	return nil
}

func writeCueSheet(cfg config.Config, tree *fsmodel.Tree, audioDocTracks []project.Track) error {
	sheet := cuesheet.Sheet{ImageFile: cfg.OutputPath}
	sheet.Tracks = append(sheet.Tracks, cuesheet.Track{Number: 1, Type: cuesheet.TrackData})

	lbaByTrack := make(map[string]uint32, len(tree.Entries))
	for i := range tree.Entries {
		e := &tree.Entries[i]
		if e.Kind == fsmodel.KindCDDA {
			lbaByTrack[e.TrackID] = e.LBA
		}
	}

	for i, tr := range audioDocTracks {
		lba, ok := lbaByTrack[tr.TrackID]
		if !ok {
			return pkgerr.New(pkgerr.NoCueForAudioTrack, tr.TrackID, "audio track has no matching file reference")
		}
		t := cuesheet.Track{
			Number:     i + 2,
			Type:       cuesheet.TrackAudio,
			Index01LBA: lba,
			FirstAudio: i == 0,
		}
		if !t.FirstAudio {
			t.Index00LBA = lba
		}
		sheet.Tracks = append(sheet.Tracks, t)
	}

	return writeAuxFile(cfg.CueFile, func(f *os.File) error {
		_, err := sheet.WriteTo(f)
		return err
	})
}

// Command psxdump reads a PlayStation Mode 2/CD-XA disc image back into
// loose files, optionally emitting a project description sufficient to
// rebuild a byte-identical image.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/project"
	"github.com/psxiso/mkpsxiso/internal/reader"
	"github.com/psxiso/mkpsxiso/pkg/xlog"
)

func main() {
	var outDir, scriptPath string
	var quiet bool

	cmd := &cobra.Command{
		Use:                   "psxdump IMAGE.BIN",
		Short:                 "Extract a PlayStation CD-XA disc image to loose files",
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xlog.New(quiet)
			imagePath := args[0]

			img, err := reader.Open(imagePath)
			if err != nil {
				return err
			}
			defer img.Close()

			pvd, err := img.ReadPVD()
			if err != nil {
				return err
			}
			tree, err := reader.WalkTree(img, pvd)
			if err != nil {
				return err
			}

			if outDir == "" {
				outDir = "."
			}
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return err
			}

			skipped := 0
			count := reader.ExtractAll(img, tree, outDir, func(path string, err error) {
				skipped++
				log.Warn().Str("path", path).Err(err).Msg("entry skipped")
			})
			log.Info().Int("extracted", count).Int("skipped", skipped).Msg("extraction complete")

			if scriptPath != "" {
				if err := emitScript(scriptPath, pvd, tree); err != nil {
					return err
				}
				log.Info().Str("script", scriptPath).Msg("wrote project description")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out", "", "directory to extract into (default: current directory)")
	cmd.Flags().StringVar(&scriptPath, "script", "", "write a rebuildable project description to this path")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress warnings")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// emitScript builds the EmitMeta a rebuildable project document needs out of
// the PVD's identification fields and the CDDA placeholders already
// resolved (with their FileSource set by ExtractAll) during the walk.
func emitScript(path string, pvd reader.PVDInfo, tree *fsmodel.Tree) error {
	meta := project.EmitMeta{
		ImageName: "output.bin",
		Identifiers: project.Identifiers{
			System:       pvd.SystemIdentifier,
			Volume:       pvd.VolumeIdentifier,
			VolumeSet:    pvd.VolumeSetIdentifier,
			Publisher:    pvd.PublisherIdentifier,
			DataPreparer: pvd.DataPreparerID,
			Application:  pvd.ApplicationID,
		},
	}

	seen := make(map[string]bool)
	for i := range tree.Entries {
		e := &tree.Entries[i]
		if e.Kind != fsmodel.KindCDDA || seen[e.TrackID] {
			continue
		}
		seen[e.TrackID] = true
		meta.AudioTracks = append(meta.AudioTracks, project.Track{
			TrackID: e.TrackID,
			Source:  e.FileSource,
		})
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return project.Emit(f, meta, tree)
}

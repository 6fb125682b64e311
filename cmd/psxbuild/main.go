// Command psxbuild assembles a PlayStation Mode 2/CD-XA disc image and CUE
// sheet from an XML project description.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/psxiso/mkpsxiso/internal/config"
	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/psxbuild"
	"github.com/psxiso/mkpsxiso/pkg/xlog"
)

func main() {
	cfg := config.Default()

	cmd := &cobra.Command{
		Use:                   "psxbuild PROJECT.XML",
		Short:                 "Build a PlayStation CD-XA disc image from a project description",
		Args:                  cobra.ExactArgs(1),
		DisableFlagsInUseLine: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := xlog.New(cfg.Quiet)
			err := psxbuild.Build(psxbuild.Options{
				ProjectPath: args[0],
				Cfg:         cfg,
				Clock:       config.SystemClock{},
				Log:         log,
			})
			if err != nil {
				if kind, ok := pkgerr.KindOf(err); ok {
					log.Error().Str("kind", kind.String()).Err(err).Msg("build failed")
				} else {
					log.Error().Err(err).Msg("build failed")
				}
				return err
			}
			log.Info().Str("output", cfg.OutputPath).Msg("image built")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&cfg.Quiet, "quiet", "q", false, "suppress warnings")
	cmd.Flags().BoolVar(&cfg.Overwrite, "overwrite", false, "overwrite an existing output image")
	cmd.Flags().StringVar(&cfg.Label, "label", cfg.Label, "volume label override")
	cmd.Flags().StringVarP(&cfg.OutputPath, "output", "o", cfg.OutputPath, "output image path")
	cmd.Flags().StringVar(&cfg.CueFile, "cuefile", cfg.CueFile, "CUE sheet output path")
	cmd.Flags().StringVar(&cfg.LBAListFile, "lba", "", "write an LBA listing to this path")
	cmd.Flags().StringVar(&cfg.LBAHeaderFile, "lbahead", "", "write a C header of LBA #defines to this path")
	cmd.Flags().BoolVar(&cfg.NoISOGen, "noisogen", false, "skip ISO 9660 filesystem metadata; write raw payloads only")
	cmd.Flags().BoolVar(&cfg.NoXA, "noxa", false, "disable CD-XA attribute extensions")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

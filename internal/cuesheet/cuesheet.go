// Package cuesheet emits the CUE sheet describing a built disc image: one
// data track, then each audio track with PREGAP or INDEX 00, MM:SS:FF
// timecodes at 75 FPS.
package cuesheet

import (
	"fmt"
	"io"
)

// TrackType discriminates a CUE track's mode line.
type TrackType int

const (
	// TrackData is the single MODE2/2352 data track every image carries.
	TrackData TrackType = iota
	// TrackAudio is a CD-DA track referencing an external audio source.
	TrackAudio
)

// Track is one CUE sheet TRACK block.
type Track struct {
	Number int
	Type   TrackType

	// DataMode is the data-track's MODE line, always "MODE2/2352" for this
	// spec's Mode-2-only images; unused for TrackAudio.
	DataMode string

	// Index01LBA is the LBA the track's INDEX 01 points to.
	Index01LBA uint32

	// FirstAudio marks the first audio track, which gets a PREGAP line
	// instead of an explicit INDEX 00.
	FirstAudio bool
	// Index00LBA is the INDEX 00 position for non-first audio tracks
	// (conventionally Index01LBA - 150, the 2-second pregap).
	Index00LBA uint32
}

// Sheet is the complete CUE sheet: one BINARY file reference plus its
// tracks, in ascending track-number order.
type Sheet struct {
	ImageFile string
	Tracks    []Track
}

// Timecode renders a zero-based image-wide LBA as MM:SS:FF at 75
// frames/second, offset by the standard 150-sector (2-second) lead-in, the
// same convention internal/sector.Address and internal/layout.Timecode use
// for the sector-header and LBA-listing addresses, so a CUE INDEX for a
// given LBA matches that LBA's directory-record/listfile timecode exactly.
func Timecode(lba uint32) string {
	addr := lba + 150
	mm := addr / 75 / 60
	ss := (addr / 75) % 60
	ff := addr % 75
	return fmt.Sprintf("%02d:%02d:%02d", mm, ss, ff)
}

// WriteTo emits the CUE sheet text to w: one `FILE "<image>" BINARY` line,
// one `TRACK NN MODE2/2352` with `INDEX 01 00:00:00` for the data track,
// then for each audio track a `TRACK NN AUDIO`, a `PREGAP 00:02:00` (first
// audio track) or `INDEX 00 <timecode>` (subsequent tracks), and
// `INDEX 01 <timecode>`.
func (s Sheet) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	fmt.Fprintf(cw, "FILE \"%s\" BINARY\n", s.ImageFile)
	for _, tr := range s.Tracks {
		switch tr.Type {
		case TrackData:
			mode := tr.DataMode
			if mode == "" {
				mode = "MODE2/2352"
			}
			fmt.Fprintf(cw, "  TRACK %02d %s\n", tr.Number, mode)
			fmt.Fprintf(cw, "    INDEX 01 00:00:00\n")
		case TrackAudio:
			fmt.Fprintf(cw, "  TRACK %02d AUDIO\n", tr.Number)
			if tr.FirstAudio {
				fmt.Fprintf(cw, "    PREGAP 00:02:00\n")
			} else {
				fmt.Fprintf(cw, "    INDEX 00 %s\n", Timecode(tr.Index00LBA))
			}
			fmt.Fprintf(cw, "    INDEX 01 %s\n", Timecode(tr.Index01LBA))
		}
	}
	return cw.n, cw.err
}

// countingWriter tracks total bytes written and the first error
// encountered, so WriteTo can report an (n, err) pair from repeated
// fmt.Fprintf calls without checking each one individually.
type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

package layout

import (
	"fmt"
	"io"
	"strings"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
)

// WriteLBAList writes a columnar listing of every entry's kind, identifier,
// size and LBA, depth-first, mirroring the `--lba` output of the original
// mkpsxiso tool.
func WriteLBAList(w io.Writer, t *fsmodel.Tree) error {
	return writeLBAListDir(w, t, 0, 0)
}

func writeLBAListDir(w io.Writer, t *fsmodel.Tree, dirIdx int, level int) error {
	for _, childIdx := range SortedChildren(t, dirIdx) {
		e := &t.Entries[childIdx]
		kindLabel := "Dummy "
		switch e.Kind {
		case fsmodel.KindFile:
			kindLabel = "File  "
		case fsmodel.KindDir:
			kindLabel = "Dir   "
		case fsmodel.KindForm2Interleaved, fsmodel.KindForm1OnlyVideo:
			kindLabel = "XA    "
		case fsmodel.KindCDDA:
			kindLabel = "CDDA  "
		}

		var name string
		if e.ID != "" {
			name = fmt.Sprintf("%-17s", e.ID)
		} else {
			name = "<DUMMY>          "
		}

		sizeSectors := ""
		sizeBytes := ""
		if e.Kind != fsmodel.KindDir {
			sizeSectors = fmt.Sprintf("%-10d", sectorsForEntry(e))
			sizeBytes = fmt.Sprintf("%-10d", e.ExtentSize)
		} else {
			sizeSectors = fmt.Sprintf("%-10s", "")
			sizeBytes = fmt.Sprintf("%-10s", "")
		}

		if _, err := fmt.Fprintf(w, "    %s%s%s%-10d%-12s%s%s\n",
			kindLabel, name, sizeSectors, e.LBA, Timecode(e.LBA), sizeBytes, e.FileSource); err != nil {
			return err
		}

		if e.Kind == fsmodel.KindDir {
			if err := writeLBAListDir(w, t, childIdx, level+1); err != nil {
				return err
			}
		}
	}
	return nil
}

func sectorsForEntry(e *fsmodel.Entry) uint32 {
	if e.Kind == fsmodel.KindDummy {
		return e.DummySectors
	}
	return sectorsForFile(e.Kind, e.ExtentSize)
}

// Timecode renders an LBA as an MM:SS:FF timecode at 75 frames/second,
// offset by the standard 150-sector (2-second) lead-in, matching CUE sheet
// and listfile conventions.
func Timecode(lba uint32) string {
	addr := lba + 150
	mm := addr / 75 / 60
	ss := (addr / 75) % 60
	ff := addr % 75
	return fmt.Sprintf("%02d:%02d:%02d", mm, ss, ff)
}

// WriteLBAHeader writes a C header of `#define LBA_<NAME> <value>` constants
// for every non-directory, non-dummy entry with an identifier, grouped by
// directory with a comment naming it, mirroring the original tool's
// `--lbahead` output.
func WriteLBAHeader(w io.Writer, t *fsmodel.Tree) error {
	if _, err := fmt.Fprint(w, "#ifndef _ISO_FILES\n#define _ISO_FILES\n\n"); err != nil {
		return err
	}
	if err := writeLBAHeaderDir(w, t, 0, "ROOT"); err != nil {
		return err
	}
	_, err := fmt.Fprint(w, "\n#endif\n")
	return err
}

func writeLBAHeaderDir(w io.Writer, t *fsmodel.Tree, dirIdx int, name string) error {
	if _, err := fmt.Fprintf(w, "/* %s */\n", name); err != nil {
		return err
	}
	children := SortedChildren(t, dirIdx)
	for _, childIdx := range children {
		e := &t.Entries[childIdx]
		if e.ID == "" || e.Kind == fsmodel.KindDir {
			continue
		}
		if _, err := fmt.Fprintf(w, "#define %-17s %d\n", defineName(e.ID), e.LBA); err != nil {
			return err
		}
	}
	for _, childIdx := range children {
		e := &t.Entries[childIdx]
		if e.Kind != fsmodel.KindDir {
			continue
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
		if err := writeLBAHeaderDir(w, t, childIdx, e.ID); err != nil {
			return err
		}
	}
	return nil
}

// defineName turns an identifier like "DATA.DAT;1" into the macro name
// "LBA_DATA_DAT", matching the original tool's upcase-and-replace-dot rule
// and truncation at the version separator.
func defineName(id string) string {
	if i := strings.IndexByte(id, ';'); i >= 0 {
		id = id[:i]
	}
	id = strings.ToUpper(id)
	id = strings.ReplaceAll(id, ".", "_")
	return "LBA_" + id
}

package project

import (
	"fmt"
	"io"
	"strings"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
)

// EmitMeta carries the project-level fields an emitted document needs that
// aren't recoverable from the directory tree itself.
type EmitMeta struct {
	ImageName   string
	CueSheet    string
	NoXA        bool
	Identifiers Identifiers
	AudioTracks []Track // pre-built <track type="audio"> entries, passed through verbatim
}

// escapeAttr escapes the characters that would break a double-quoted XML
// attribute value; encoding/xml's EscapeText doesn't cover quotes, so this
// project writer (which hand-rolls XML rather than using xml.Marshal, since
// Doc/DirectoryTree/Dir/Node have no xml struct tags) does it directly.
func escapeAttr(s string) string {
	r := strings.NewReplacer(`&`, "&amp;", `"`, "&quot;", `<`, "&lt;", `>`, "&gt;")
	return r.Replace(s)
}

// Emit writes a complete project document sufficient to rebuild a
// byte-identical image. The directory tree is walked in the fsmodel's own
// entry-list (insertion) order, not the sorted rendering order, so
// re-parsing reproduces the same LBA layout.
func Emit(w io.Writer, meta EmitMeta, tree *fsmodel.Tree) error {
	fmt.Fprint(w, "<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	fmt.Fprintf(w, "<iso_project image_name=\"%s\"%s%s>\n",
		escapeAttr(meta.ImageName), attrString("cue_sheet", meta.CueSheet), boolAttr("no_xa", meta.NoXA))

	fmt.Fprint(w, "  <track type=\"data\">\n")
	emitIdentifiers(w, meta.Identifiers)
	fmt.Fprint(w, "    <directory_tree>\n")
	if err := emitChildren(w, tree, 0, 3); err != nil {
		return err
	}
	fmt.Fprint(w, "    </directory_tree>\n")
	fmt.Fprint(w, "  </track>\n")

	for _, tr := range meta.AudioTracks {
		fmt.Fprintf(w, "  <track type=\"audio\" trackid=\"%s\" source=\"%s\"/>\n",
			escapeAttr(tr.TrackID), escapeAttr(tr.Source))
	}

	fmt.Fprint(w, "</iso_project>\n")
	return nil
}

func attrString(name, value string) string {
	if value == "" {
		return ""
	}
	return fmt.Sprintf(` %s="%s"`, name, escapeAttr(value))
}

func boolAttr(name string, v bool) string {
	if !v {
		return ""
	}
	return fmt.Sprintf(` %s="true"`, name)
}

func emitIdentifiers(w io.Writer, id Identifiers) {
	fmt.Fprintf(w, "    <identifiers%s%s%s%s%s%s/>\n",
		attrString("system", id.System), attrString("volume", id.Volume),
		attrString("volume_set", id.VolumeSet), attrString("publisher", id.Publisher),
		attrString("data_preparer", id.DataPreparer), attrString("application", id.Application))
}

func emitChildren(w io.Writer, t *fsmodel.Tree, dirIdx int, indent int) error {
	pad := strings.Repeat("  ", indent)
	// Entry-list order (not the sorted rendering view) is what the planner's
	// LBA walk depends on, so emission follows Children, not SortedChildren.
	for _, childIdx := range t.Entries[dirIdx].Children {
		e := &t.Entries[childIdx]
		switch e.Kind {
		case fsmodel.KindDir:
			fmt.Fprintf(w, "%s<dir name=\"%s\"%s>\n", pad, escapeAttr(e.ID), attrsXMLString(e))
			if err := emitChildren(w, t, childIdx, indent+1); err != nil {
				return err
			}
			fmt.Fprintf(w, "%s</dir>\n", pad)
		case fsmodel.KindDummy:
			typ := 0
			if e.DummyForm != 0 {
				typ = 1
			}
			fmt.Fprintf(w, "%s<dummy sectors=\"%d\" type=\"%d\"/>\n", pad, e.DummySectors, typ)
		case fsmodel.KindCDDA:
			fmt.Fprintf(w, "%s<file name=\"%s\" type=\"da\" trackid=\"%s\"%s/>\n",
				pad, escapeAttr(stripVersion(e.ID)), escapeAttr(e.TrackID), attrsXMLString(e))
		default:
			fmt.Fprintf(w, "%s<file name=\"%s\" source=\"%s\" type=\"%s\"%s/>\n",
				pad, escapeAttr(stripVersion(e.ID)), escapeAttr(e.FileSource), fileTypeFor(e.Kind), attrsXMLString(e))
		}
	}
	return nil
}

func stripVersion(id string) string {
	if i := strings.IndexByte(id, ';'); i >= 0 {
		return id[:i]
	}
	return id
}

func fileTypeFor(k fsmodel.Kind) string {
	switch k {
	case fsmodel.KindForm2Interleaved:
		return "xa"
	case fsmodel.KindForm1OnlyVideo:
		return "str"
	default:
		return "data"
	}
}

func attrsXMLString(e *fsmodel.Entry) string {
	var sb strings.Builder
	if e.Attrs.GMTOffs != 0 {
		fmt.Fprintf(&sb, " gmt_offs=\"%d\"", e.Attrs.GMTOffs)
	}
	if e.Attrs.XAAttrib != 0 {
		fmt.Fprintf(&sb, " xa_attrib=\"0x%02x\"", e.Attrs.XAAttrib)
	}
	if e.Attrs.XAPerm != 0 {
		fmt.Fprintf(&sb, " xa_perm=\"0x%03x\"", e.Attrs.XAPerm)
	}
	if e.Attrs.XAGroup != 0 {
		fmt.Fprintf(&sb, " xa_gid=\"%d\"", e.Attrs.XAGroup)
	}
	if e.Attrs.XAUser != 0 {
		fmt.Fprintf(&sb, " xa_uid=\"%d\"", e.Attrs.XAUser)
	}
	if e.Hidden {
		sb.WriteString(" hidden=\"true\"")
	}
	return sb.String()
}

package project

import (
	"os"

	"github.com/psxiso/mkpsxiso/internal/config"
	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/sector"
)

// kindForFileType maps a <file type="..."> value to the fsmodel.Kind it
// produces: "data"/"mixed" -> plain Form 1, "xa" -> interleaved Form 2,
// "str" -> Form-1-only video, "da" -> CDDA placeholder handled separately by
// BuildTree.
func kindForFileType(t string) (fsmodel.Kind, error) {
	switch t {
	case "", "data", "mixed":
		return fsmodel.KindFile, nil
	case "xa":
		return fsmodel.KindForm2Interleaved, nil
	case "str":
		return fsmodel.KindForm1OnlyVideo, nil
	default:
		return 0, pkgerr.New(pkgerr.MalformedProject, t, "unknown file type")
	}
}

func fromAttrsXML(a AttrsXML) fsmodel.Attrs {
	return fsmodel.Attrs{
		GMTOffset: a.GMTOffset,
		XAAttrib:  a.XAAttrib,
		XAPerm:    a.XAPerm,
		XAGroupID: a.XAGroupID,
		XAUserID:  a.XAUserID,
	}
}

// DateStampFromClock converts the build clock's instant into the 7-byte
// directory-record timestamp shape every entry created in one BuildTree
// call shares. The project schema carries no per-entry timestamp, so a
// single build-time clock stamps everything instead. Exported so
// internal/psxbuild can stamp the PVD's creation date with the same
// instant.
func DateStampFromClock(c config.Clock) fsmodel.DateStamp {
	t := c.Now()
	return fsmodel.DateStamp{
		Year:   byte(t.Year() - 1900),
		Month:  byte(t.Month()),
		Day:    byte(t.Day()),
		Hour:   byte(t.Hour()),
		Minute: byte(t.Minute()),
		Second: byte(t.Second()),
	}
}

// BuildTree walks a parsed data Track's <directory_tree> into a fresh
// fsmodel.Tree, resolving the Default -> directory_tree -> dir -> file
// attribute-inheritance chain at each node and stat-ing every referenced
// source file to size its extent.
func BuildTree(tr *Track, clock config.Clock) (*fsmodel.Tree, error) {
	if tr.DirectoryTree == nil {
		return nil, pkgerr.New(pkgerr.MalformedProject, "", "data track missing directory_tree")
	}
	date := DateStampFromClock(clock)

	base := fsmodel.DefaultAttrs().Overlay(fromAttrsXML(tr.DefaultAttributes)).Overlay(fromAttrsXML(tr.DirectoryTree.Attrs))
	tree := fsmodel.NewTree(base.Resolve(), date)

	if err := addChildren(tree, 0, tr.DirectoryTree.Children, base, date); err != nil {
		return nil, err
	}
	return tree, nil
}

func addChildren(tree *fsmodel.Tree, parentIdx int, nodes []Node, parentAttrs fsmodel.Attrs, date fsmodel.DateStamp) error {
	for _, n := range nodes {
		switch {
		case n.Dir != nil:
			childAttrs := parentAttrs.Overlay(fromAttrsXML(n.Dir.Attrs))
			id := DirIdentifier(n.Dir.Name)
			idx, err := tree.AddDir(parentIdx, id, childAttrs.Resolve(), date, n.Dir.Attrs.Hidden)
			if err != nil {
				return err
			}
			if err := addChildren(tree, idx, n.Dir.Children, childAttrs, date); err != nil {
				return err
			}

		case n.File != nil:
			if err := addFile(tree, parentIdx, n.File, parentAttrs, date); err != nil {
				return err
			}

		case n.DummyVal != nil:
			form := sector.FormMode2Form1
			if n.DummyVal.Type == 1 {
				form = sector.FormMode2Form2
			}
			if _, err := tree.AddDummy(parentIdx, n.DummyVal.Sectors, form); err != nil {
				return err
			}
		}
	}
	return nil
}

func addFile(tree *fsmodel.Tree, parentIdx int, f *File, parentAttrs fsmodel.Attrs, date fsmodel.DateStamp) error {
	childAttrs := parentAttrs.Overlay(fromAttrsXML(f.Attrs)).Resolve()

	if f.Type == "da" {
		if f.TrackID == "" {
			return pkgerr.New(pkgerr.MalformedProject, f.Name, "type=\"da\" file requires trackid")
		}
		id := FileIdentifier(f.Name)
		_, err := tree.AddCDDA(parentIdx, id, f.TrackID, childAttrs, date)
		return err
	}

	kind, err := kindForFileType(f.Type)
	if err != nil {
		return err
	}

	info, statErr := os.Stat(f.Source)
	if statErr != nil {
		return pkgerr.Wrap(pkgerr.SourceNotFound, f.Source, statErr)
	}
	size := uint32(info.Size())
	if kind == fsmodel.KindForm2Interleaved && size%2336 != 0 {
		return pkgerr.New(pkgerr.SourceSizeInvalid, f.Source, "xa source size must be a multiple of 2336 bytes")
	}

	id := FileIdentifier(f.Name)
	_, err = tree.AddFile(parentIdx, id, kind, f.Source, size, childAttrs, date, f.Attrs.Hidden)
	return err
}

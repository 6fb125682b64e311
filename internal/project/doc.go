// Package project parses the declarative XML project description into
// fsmodel.Tree inputs. Its source of truth is an XML document rather than
// an actual directory tree on disk, so parsing walks the document the way
// a filesystem scanner would walk a real tree.
package project

import (
	"encoding/xml"
	"io"
	"strconv"
)

// Doc is the root <iso_project> element.
type Doc struct {
	ImageName string
	CueSheet  string
	NoXA      bool
	Tracks    []Track
}

// Track is one <track> element: a data track (carrying the directory tree)
// or an audio track (a CDDA source bound to a trackid).
type Track struct {
	Type    string // "data" or "audio"
	Source  string // audio: path to a decoded PCM/WAV source
	TrackID string // audio: the CDDA track identifier <file type="da"> entries reference

	// Data-track fields.
	Identifiers       Identifiers
	License           *License
	DefaultAttributes AttrsXML
	DirectoryTree     *DirectoryTree
}

// Identifiers carries the PVD identification strings.
type Identifiers struct {
	System       string
	Volume       string
	VolumeSet    string
	Publisher    string
	DataPreparer string
	Application  string
}

// License is the optional <license file="..."/> pointing at a pre-mastered
// 16-sector license region payload.
type License struct {
	File string
}

// AttrsXML is the inheritable-attribute layer carried by default_attributes,
// directory_tree, dir, and file elements. Fields are nil/false when not
// explicitly set at this layer.
type AttrsXML struct {
	GMTOffset *int8
	XAAttrib  *uint8
	XAPerm    *uint16
	XAGroupID *uint16
	XAUserID  *uint16
	Hidden    bool
}

// DirectoryTree is the <directory_tree> root node: itself one inheritable-
// attribute layer, plus an ordered list of dir/file/dummy children. Children
// are kept in a single ordered slice (Node), not split by element type, so
// document order (which the insertion-order LBA walk depends on) survives
// the parse.
type DirectoryTree struct {
	Name     string
	Source   string
	Attrs    AttrsXML
	Children []Node
}

// Dir is a <dir> element: another inheritable-attribute layer, nested.
type Dir struct {
	Name     string
	Source   string
	Attrs    AttrsXML
	Children []Node
}

// File is a <file> element: a leaf entry bound to a source file.
// Type selects the sector kind: "data" (plain Mode 2 Form 1 file), "mixed"
// (Mode-1-style data, stored here as plain Form 1 too since this spec has
// no raw Mode 1 sectors), "xa" (interleaved CD-XA Form 2), "str" (Form-1-
// only STR data), "da" (CDDA placeholder referencing trackid).
type File struct {
	Name    string
	Source  string
	Type    string
	TrackID string
	Attrs   AttrsXML
}

// Dummy is a <dummy> padding block: Type 0 = Form 1, Type 1 = Form 2.
type Dummy struct {
	Sectors uint32
	Type    int
}

// Node is one ordered child of a DirectoryTree or Dir: exactly one of Dir,
// File, or DummyVal is non-nil.
type Node struct {
	Dir      *Dir
	File     *File
	DummyVal *Dummy
}

// Parse reads a complete project document from r.
func Parse(r io.Reader) (*Doc, error) {
	dec := xml.NewDecoder(r)
	doc := &Doc{}
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "iso_project" {
			continue
		}
		if err := doc.unmarshal(dec, start); err != nil {
			return nil, err
		}
		break
	}
	return doc, nil
}

func attrVal(attrs []xml.Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (doc *Doc) unmarshal(dec *xml.Decoder, start xml.StartElement) error {
	doc.ImageName, _ = attrVal(start.Attr, "image_name")
	doc.CueSheet, _ = attrVal(start.Attr, "cue_sheet")
	if v, ok := attrVal(start.Attr, "no_xa"); ok {
		doc.NoXA = v == "true" || v == "1"
	}
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			if t.Name.Local == "track" {
				var tr Track
				if err := tr.unmarshal(dec, t); err != nil {
					return err
				}
				doc.Tracks = append(doc.Tracks, tr)
			} else if err := dec.Skip(); err != nil {
				return err
			}
		case xml.EndElement:
			if t.Name.Local == "iso_project" {
				return nil
			}
		}
	}
}

func (tr *Track) unmarshal(dec *xml.Decoder, start xml.StartElement) error {
	tr.Type, _ = attrVal(start.Attr, "type")
	tr.Source, _ = attrVal(start.Attr, "source")
	tr.TrackID, _ = attrVal(start.Attr, "trackid")
	for {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "identifiers":
				tr.Identifiers.unmarshal(t.Attr)
				if err := dec.Skip(); err != nil {
					return err
				}
			case "license":
				file, _ := attrVal(t.Attr, "file")
				tr.License = &License{File: file}
				if err := dec.Skip(); err != nil {
					return err
				}
			case "default_attributes":
				tr.DefaultAttributes = parseAttrs(t.Attr)
				if err := dec.Skip(); err != nil {
					return err
				}
			case "directory_tree":
				dtree := &DirectoryTree{}
				if err := dtree.unmarshal(dec, t); err != nil {
					return err
				}
				tr.DirectoryTree = dtree
			default:
				if err := dec.Skip(); err != nil {
					return err
				}
			}
		case xml.EndElement:
			if t.Name.Local == "track" {
				return nil
			}
		}
	}
}

func (id *Identifiers) unmarshal(attrs []xml.Attr) {
	id.System, _ = attrVal(attrs, "system")
	id.Volume, _ = attrVal(attrs, "volume")
	id.VolumeSet, _ = attrVal(attrs, "volume_set")
	id.Publisher, _ = attrVal(attrs, "publisher")
	id.DataPreparer, _ = attrVal(attrs, "data_preparer")
	id.Application, _ = attrVal(attrs, "application")
}

func parseAttrs(attrs []xml.Attr) AttrsXML {
	var a AttrsXML
	if v, ok := attrVal(attrs, "gmt_offs"); ok {
		if n, err := strconv.ParseInt(v, 10, 8); err == nil {
			x := int8(n)
			a.GMTOffset = &x
		}
	}
	if v, ok := attrVal(attrs, "xa_attrib"); ok {
		if n, err := strconv.ParseUint(v, 0, 8); err == nil {
			x := uint8(n)
			a.XAAttrib = &x
		}
	}
	if v, ok := attrVal(attrs, "xa_perm"); ok {
		if n, err := strconv.ParseUint(v, 0, 16); err == nil {
			x := uint16(n)
			a.XAPerm = &x
		}
	}
	if v, ok := attrVal(attrs, "xa_gid"); ok {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			x := uint16(n)
			a.XAGroupID = &x
		}
	}
	if v, ok := attrVal(attrs, "xa_uid"); ok {
		if n, err := strconv.ParseUint(v, 10, 16); err == nil {
			x := uint16(n)
			a.XAUserID = &x
		}
	}
	if v, ok := attrVal(attrs, "hidden"); ok {
		a.Hidden = v == "true" || v == "1"
	}
	return a
}

func (dt *DirectoryTree) unmarshal(dec *xml.Decoder, start xml.StartElement) error {
	dt.Name, _ = attrVal(start.Attr, "name")
	dt.Source, _ = attrVal(start.Attr, "source")
	dt.Attrs = parseAttrs(start.Attr)
	children, err := parseChildren(dec, "directory_tree")
	if err != nil {
		return err
	}
	dt.Children = children
	return nil
}

func (d *Dir) unmarshal(dec *xml.Decoder, start xml.StartElement) error {
	d.Name, _ = attrVal(start.Attr, "name")
	d.Source, _ = attrVal(start.Attr, "source")
	d.Attrs = parseAttrs(start.Attr)
	children, err := parseChildren(dec, "dir")
	if err != nil {
		return err
	}
	d.Children = children
	return nil
}

// parseChildren decodes the ordered dir/file/dummy children of a directory-
// like element until its matching end tag.
func parseChildren(dec *xml.Decoder, endName string) ([]Node, error) {
	var nodes []Node
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "dir":
				sub := &Dir{}
				if err := sub.unmarshal(dec, t); err != nil {
					return nil, err
				}
				nodes = append(nodes, Node{Dir: sub})
			case "file":
				f := &File{}
				f.Name, _ = attrVal(t.Attr, "name")
				f.Source, _ = attrVal(t.Attr, "source")
				f.Type, _ = attrVal(t.Attr, "type")
				f.TrackID, _ = attrVal(t.Attr, "trackid")
				f.Attrs = parseAttrs(t.Attr)
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				nodes = append(nodes, Node{File: f})
			case "dummy":
				du := &Dummy{}
				if v, ok := attrVal(t.Attr, "sectors"); ok {
					if n, err := strconv.ParseUint(v, 10, 32); err == nil {
						du.Sectors = uint32(n)
					}
				}
				if v, ok := attrVal(t.Attr, "type"); ok {
					if n, err := strconv.Atoi(v); err == nil {
						du.Type = n
					}
				}
				if err := dec.Skip(); err != nil {
					return nil, err
				}
				nodes = append(nodes, Node{DummyVal: du})
			default:
				if err := dec.Skip(); err != nil {
					return nil, err
				}
			}
		case xml.EndElement:
			if t.Name.Local == endName {
				return nodes, nil
			}
		}
	}
}

// Package fsmodel holds the in-memory directory tree built by
// internal/project and consumed by internal/layout, internal/descriptor and
// internal/direntry. Entries live in one flat arena with parent-index
// back-references, so there are no pointer cycles to reason about at
// teardown.
package fsmodel

import "github.com/psxiso/mkpsxiso/internal/sector"

// Kind discriminates the tagged variant an Entry carries. Shared metadata
// (ID, LBA, date, attrs) is factored onto Entry itself; only the
// kind-specific payload fields vary by Kind.
type Kind int

const (
	KindDir Kind = iota
	KindFile
	KindForm2Interleaved
	KindForm1OnlyVideo
	KindCDDA
	KindDummy
)

func (k Kind) String() string {
	switch k {
	case KindDir:
		return "dir"
	case KindFile:
		return "file"
	case KindForm2Interleaved:
		return "xa"
	case KindForm1OnlyVideo:
		return "str"
	case KindCDDA:
		return "da"
	case KindDummy:
		return "dummy"
	default:
		return "unknown"
	}
}

// DateStamp is the 7-byte ECMA-119 directory-record timestamp, unpacked.
type DateStamp struct {
	Year, Month, Day, Hour, Minute, Second byte // Year is years-since-1900
	GMTOffset                              int8 // 15-minute units from GMT
}

// ResolvedAttrs is the fully-resolved (no optionals left) XA attribute set
// for one entry, after the inheritance overlay pass collapses defaults,
// directory-level overrides, and per-entry overrides down to concrete
// values.
type ResolvedAttrs struct {
	XAAttrib uint8  // kind-flag byte; 0 (set explicitly or not) means "derive from Kind"
	XAPerm   uint16 // 11-bit permission field
	XAGroup  uint16
	XAUser   uint16
	GMTOffs  int8
}

// Entry is one node in the flat arena (Tree.Entries). The root is always
// index 0 and is its own parent.
type Entry struct {
	ID   string // printable identifier; files already carry ";1"
	Kind Kind

	LBA        uint32 // assigned by internal/layout; CDDA entries start at UnresolvedLBA
	ExtentSize uint32 // bytes

	Date  DateStamp
	Attrs ResolvedAttrs

	Parent   int // arena index; root's Parent == 0
	Children []int

	Hidden bool

	// File / Form2Interleaved / Form1OnlyVideo only.
	FileSource string // absolute path on disk

	// CDDA only.
	TrackID string

	// Dummy only.
	DummySectors uint32
	DummyForm    sector.Form
}

// UnresolvedLBA marks a CDDA entry whose LBA has not yet been assigned by
// layout.ResolveAudioLBAs: CDDA placement depends on the data track's final
// size and the CUE pregap, both only known after the filesystem pass
// completes. A Dummy/File/Dir never carries this value once CalculateTreeLBA
// has run.
const UnresolvedLBA uint32 = ^uint32(0)

// Tree is the flat entry arena. Index 0 is always the root directory.
type Tree struct {
	Entries []Entry
}

// Root returns the root directory entry.
func (t *Tree) Root() *Entry { return &t.Entries[0] }

// NewTree returns a Tree containing only the root directory, with the given
// resolved root attributes.
func NewTree(rootAttrs ResolvedAttrs, rootDate DateStamp) *Tree {
	return &Tree{
		Entries: []Entry{{
			ID:     "",
			Kind:   KindDir,
			Parent: 0,
			Date:   rootDate,
			Attrs:  rootAttrs,
		}},
	}
}

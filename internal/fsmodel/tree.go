package fsmodel

import (
	"strings"

	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/sector"
)

// maxIdentifierLen and WarnIdentifierLen are the two identifier-length
// thresholds: an identifier over 31 d-characters cannot be encoded at all,
// while one over 12 is legal and is kept as given rather than silently
// truncated the way some older mastering tools do.
const (
	maxIdentifierLen = 31
	// WarnIdentifierLen is the legacy-compatibility length threshold. No
	// package reads it: identifiers longer than this are accepted without
	// any warning being logged.
	WarnIdentifierLen = 12
	maxPathDepth      = 8
	maxPathLenBytes   = 255
)

// addChild appends a new Entry under parent and returns its arena index,
// after running the duplicate-identifier and depth/length checks. id == ""
// (Dummy entries) always sorts to the end and is exempt from duplicate
// checking.
func (t *Tree) addChild(parent int, e Entry) (int, error) {
	e.Parent = parent

	if e.ID != "" {
		for _, siblingIdx := range t.Entries[parent].Children {
			if strings.EqualFold(t.Entries[siblingIdx].ID, e.ID) {
				return 0, pkgerr.New(pkgerr.DuplicateIdentifier, e.ID,
					"duplicate identifier in directory "+t.path(parent))
			}
		}
		if len(e.ID) > maxIdentifierLen {
			return 0, pkgerr.New(pkgerr.IdentifierTooLong, e.ID, "identifier exceeds 31 characters")
		}
		depth := t.depth(parent) + 1
		if depth > maxPathDepth {
			return 0, pkgerr.New(pkgerr.PathTooDeep, e.ID, "directory nesting exceeds 8 levels")
		}
		full := t.path(parent) + "/" + e.ID
		if len(full) > maxPathLenBytes {
			return 0, pkgerr.New(pkgerr.PathTooLong, full, "full path exceeds 255 bytes")
		}
	}

	idx := len(t.Entries)
	t.Entries = append(t.Entries, e)
	t.Entries[parent].Children = append(t.Entries[parent].Children, idx)
	return idx, nil
}

// depth returns how many directory levels separate idx from the root (root
// itself is depth 0).
func (t *Tree) depth(idx int) int {
	d := 0
	for idx != 0 {
		idx = t.Entries[idx].Parent
		d++
	}
	return d
}

// path returns the slash-joined identifier chain from root to idx, used only
// for diagnostics and addChild's full-path-length check.
func (t *Tree) path(idx int) string {
	if idx == 0 {
		return ""
	}
	return t.path(t.Entries[idx].Parent) + "/" + t.Entries[idx].ID
}

// FindChildDir returns the arena index of a child directory of parent named
// id (case-insensitive), or -1 if none exists. Used to implement the rule
// that duplicate directory identifiers merge rather than error: callers
// check this before creating a new directory node.
func (t *Tree) FindChildDir(parent int, id string) int {
	for _, idx := range t.Entries[parent].Children {
		c := &t.Entries[idx]
		if c.Kind == KindDir && strings.EqualFold(c.ID, id) {
			return idx
		}
	}
	return -1
}

// AddDir adds a directory entry under parent, merging into an existing
// same-named child directory instead of erroring.
func (t *Tree) AddDir(parent int, id string, attrs ResolvedAttrs, date DateStamp, hidden bool) (int, error) {
	if existing := t.FindChildDir(parent, id); existing >= 0 {
		return existing, nil
	}
	return t.addChild(parent, Entry{
		ID: id, Kind: KindDir, Attrs: attrs, Date: date, Hidden: hidden,
	})
}

// AddFile adds a leaf entry (File, Form2Interleaved, or Form1OnlyVideo) whose
// bytes come from an on-disk source.
func (t *Tree) AddFile(parent int, id string, kind Kind, source string, size uint32, attrs ResolvedAttrs, date DateStamp, hidden bool) (int, error) {
	return t.addChild(parent, Entry{
		ID: id, Kind: kind, FileSource: source, ExtentSize: size,
		Attrs: attrs, Date: date, Hidden: hidden,
	})
}

// AddCDDA adds a placeholder entry for an audio track referenced by trackID;
// its LBA is resolved later by internal/layout.ResolveAudioLBAs.
func (t *Tree) AddCDDA(parent int, id string, trackID string, attrs ResolvedAttrs, date DateStamp) (int, error) {
	return t.addChild(parent, Entry{
		ID: id, Kind: KindCDDA, TrackID: trackID, LBA: UnresolvedLBA,
		Attrs: attrs, Date: date,
	})
}

// AddDummy adds a nameless padding block of the given sector count and form.
// Dummies carry no identifier, so they never collide and always sort last
// within their parent.
func (t *Tree) AddDummy(parent int, sectors uint32, form sector.Form) (int, error) {
	return t.addChild(parent, Entry{
		Kind: KindDummy, DummySectors: sectors, DummyForm: form,
	})
}

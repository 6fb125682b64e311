package project

import "path/filepath"

// ResolveSourcePaths rewrites every relative file-source path in doc (file
// sources, the license file, and audio track sources) to be relative to
// baseDir, the project XML's own directory, not the process's current
// directory. An already-absolute path is left untouched.
func ResolveSourcePaths(doc *Doc, baseDir string) {
	resolve := func(p string) string {
		if p == "" || filepath.IsAbs(p) {
			return p
		}
		return filepath.Join(baseDir, p)
	}

	for i := range doc.Tracks {
		tr := &doc.Tracks[i]
		tr.Source = resolve(tr.Source)
		if tr.License != nil {
			tr.License.File = resolve(tr.License.File)
		}
		if tr.DirectoryTree != nil {
			resolveChildren(tr.DirectoryTree.Children, resolve)
		}
	}
}

func resolveChildren(nodes []Node, resolve func(string) string) {
	for i := range nodes {
		switch {
		case nodes[i].Dir != nil:
			resolveChildren(nodes[i].Dir.Children, resolve)
		case nodes[i].File != nil:
			nodes[i].File.Source = resolve(nodes[i].File.Source)
		}
	}
}

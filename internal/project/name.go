package project

import "strings"

// sanitizeIdentifier does not enforce internal/fsmodel's 31-character
// identifier ceiling; longer identifiers are rejected there, not here. This function only
// uppercases and restricts the character set to d-characters, leaving
// length enforcement to internal/fsmodel. Unlike 8.3-style truncation, names
// are not shortened here, only character-restricted; anything still too
// long after that is rejected downstream.
func sanitizeIdentifier(name string) string {
	var sb strings.Builder
	for _, r := range strings.ToUpper(name) {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '.':
			sb.WriteRune(r)
		default:
			sb.WriteRune('_')
		}
	}
	s := sb.String()
	if s == "" {
		return "_"
	}
	return s
}

// FileIdentifier returns the on-disc identifier for a regular file entry:
// the sanitized, uppercased name with the ";1" version suffix appended.
func FileIdentifier(name string) string {
	return sanitizeIdentifier(name) + ";1"
}

// DirIdentifier returns the on-disc identifier for a directory: sanitized
// and uppercased, no version suffix (directories are never versioned).
func DirIdentifier(name string) string {
	return sanitizeIdentifier(name)
}

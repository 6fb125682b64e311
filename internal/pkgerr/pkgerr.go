// Package pkgerr defines the diagnostic error kinds used across the builder
// and extractor, per the failure taxonomy every component reports against.
package pkgerr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies the category of a diagnostic error.
type Kind int

const (
	SourceNotFound Kind = iota
	SourceSizeInvalid
	DuplicateIdentifier
	IdentifierTooLong
	PathTooDeep
	PathTooLong
	NoCueForAudioTrack
	UnresolvedTrack
	ImageExists
	OutputIoError
	MalformedProject
	DecoderFailure
	ImageTruncated
)

func (k Kind) String() string {
	switch k {
	case SourceNotFound:
		return "SourceNotFound"
	case SourceSizeInvalid:
		return "SourceSizeInvalid"
	case DuplicateIdentifier:
		return "DuplicateIdentifier"
	case IdentifierTooLong:
		return "IdentifierTooLong"
	case PathTooDeep:
		return "PathTooDeep"
	case PathTooLong:
		return "PathTooLong"
	case NoCueForAudioTrack:
		return "NoCueForAudioTrack"
	case UnresolvedTrack:
		return "UnresolvedTrack"
	case ImageExists:
		return "ImageExists"
	case OutputIoError:
		return "OutputIoError"
	case MalformedProject:
		return "MalformedProject"
	case DecoderFailure:
		return "DecoderFailure"
	case ImageTruncated:
		return "ImageTruncated"
	default:
		return "Unknown"
	}
}

// Error is a diagnostic carrying the failing element's location alongside
// its kind, wrapped with a stack trace at the point it was first raised.
type Error struct {
	Kind Kind
	Path string // source path or project element, when applicable
	Line int    // 1-based line number in the project file, 0 if not applicable
	Err  error
}

func (e *Error) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s:%d: %v", e.Kind, e.Path, e.Line, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs a Kind-tagged error, stack-traced at the call site.
func New(kind Kind, path string, msg string) *Error {
	return &Error{Kind: kind, Path: path, Err: errors.New(msg)}
}

// Wrap attaches a Kind and path to an existing error, stack-traced here.
func Wrap(kind Kind, path string, err error) *Error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Path: path, Err: errors.WithStack(err)}
}

// WithLine attaches a project-file line number to an *Error for reporting.
func (e *Error) WithLine(line int) *Error {
	e.Line = line
	return e
}

// KindOf extracts the Kind of err, if it (or something it wraps) is *Error.
func KindOf(err error) (Kind, bool) {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}

package fsmodel

// Attrs is the optional-overridable attribute set carried by each layer of
// the project document (default -> directory_tree -> dir -> file). A nil
// field means "not set at this layer"; Overlay takes the deepest
// explicitly-set value on the chain.
type Attrs struct {
	GMTOffset *int8
	XAAttrib  *uint8
	XAPerm    *uint16
	XAGroupID *uint16
	XAUserID  *uint16
}

// Overlay returns a new Attrs with every field of o that is non-nil taking
// precedence over the corresponding field of a, matching
// Default.overlay(directoryTreeAttr).overlay(dirAttr).overlay(fileAttr).
func (a Attrs) Overlay(o Attrs) Attrs {
	result := a
	if o.GMTOffset != nil {
		result.GMTOffset = o.GMTOffset
	}
	if o.XAAttrib != nil {
		result.XAAttrib = o.XAAttrib
	}
	if o.XAPerm != nil {
		result.XAPerm = o.XAPerm
	}
	if o.XAGroupID != nil {
		result.XAGroupID = o.XAGroupID
	}
	if o.XAUserID != nil {
		result.XAUserID = o.XAUserID
	}
	return result
}

// Resolve collapses every still-unset field to its zero default, producing
// the ResolvedAttrs an Entry carries. An entry's effective attributes are
// always the result of Resolve on the fully-overlaid chain from root to
// that entry.
func (a Attrs) Resolve() ResolvedAttrs {
	var r ResolvedAttrs
	if a.GMTOffset != nil {
		r.GMTOffs = *a.GMTOffset
	}
	if a.XAAttrib != nil {
		r.XAAttrib = *a.XAAttrib
	}
	if a.XAPerm != nil {
		r.XAPerm = *a.XAPerm
	}
	if a.XAGroupID != nil {
		r.XAGroup = *a.XAGroupID
	}
	if a.XAUserID != nil {
		r.XAUser = *a.XAUserID
	}
	return r
}

// DefaultAttrs is the attribute set in effect before any project-level
// override: no explicit XA attribute byte (kind decides it), full
// permissions, GID/UID 0, GMT offset 0.
func DefaultAttrs() Attrs {
	zeroPerm := uint16(0x7FF)
	return Attrs{XAPerm: &zeroPerm}
}

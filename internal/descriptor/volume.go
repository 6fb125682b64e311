// Package descriptor writes the Primary Volume Descriptor, volume descriptor
// terminator, L/M path tables, and the license region.
package descriptor

import "github.com/psxiso/mkpsxiso/internal/fsmodel"

// VolumeInfo carries the project-level identification fields a PVD embeds.
// A CD-XA image is single-volume, so there are no Joliet/SVD fields here.
type VolumeInfo struct {
	SystemIdentifier    string
	VolumeIdentifier    string
	VolumeSetIdentifier string
	PublisherIdentifier string
	DataPreparerID      string
	ApplicationID       string
	XAEnabled           bool
	CreationDate        fsmodel.DateStamp
	ModificationDate    fsmodel.DateStamp
	HasModificationDate bool
}

package descriptor

import (
	"github.com/psxiso/mkpsxiso/internal/mapped"
	"github.com/psxiso/mkpsxiso/internal/pkgerr"
	"github.com/psxiso/mkpsxiso/internal/sector"
	"github.com/psxiso/mkpsxiso/internal/sectorview"
)

// licenseDataSectors/licensePayloadLen/LicenseDataLen describe the 16-sector
// license region occupying LBA 0-15: 12 Mode-2-Form-2 sectors carrying a
// pre-mastered payload verbatim, followed by 4 blank Mode-2-Form-1 sectors.
const (
	licenseDataSectors = 12
	licensePayloadLen  = 2336 // subheader(8) + data(2324) + EDC(4)
	LicenseDataLen     = licenseDataSectors * licensePayloadLen
	licenseBlankForm1  = 4
)

// WriteLicense writes the license region at LBA 0-15. licenseData must be
// exactly LicenseDataLen (28032) bytes: the 12 Form-2 sector payloads
// (subheader+data+EDC) copied verbatim from a pre-mastered license image, as
// the original mastering tool never recomputes their checksums.
func WriteLicense(out *mapped.Output, codec *sector.Codec, licenseData []byte) error {
	if len(licenseData) != LicenseDataLen {
		return pkgerr.New(pkgerr.MalformedProject, "license", "license data must be exactly 28032 bytes")
	}

	for lba := uint32(0); lba < licenseDataSectors; lba++ {
		buf := out.View(lba, 1)
		chunk := licenseData[int(lba)*licensePayloadLen : int(lba+1)*licensePayloadLen]
		copy(buf[16:16+licensePayloadLen], chunk)
		sector.FinalizeVerbatim(buf, lba)
	}

	blank := out.View(licenseDataSectors, licenseBlankForm1)
	view := sectorview.New(codec, sectorview.NewWorkerPool(), blank, licenseDataSectors, licenseDataSectors+licenseBlankForm1, sectorview.Form1)
	view.SetSubheader(sector.SubData)
	if err := view.WriteBlankSectors(licenseBlankForm1); err != nil {
		return err
	}
	return view.Close()
}

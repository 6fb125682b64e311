package sector

const (
	// Size is the raw size of every CD sector written to the image, in bytes.
	Size = 2352

	// syncLen is the length of the 12-byte sync pattern: 00 FF×10 00.
	syncLen = 12

	// Mode 2 Form 1: 8-byte subheader (x2) + 2048 data + 4 EDC + 276 ECC.
	form1UserDataSize = 2048
	form1SubheaderOff = 16
	form1DataOff      = 24
	form1EdcOff       = 2072
	form1EccPOff      = 2076
	form1EccQOff      = 2248
	form1PayloadSize  = 2336 // subheader(8) + data(2048) + edc(4) + ecc(276)

	// Mode 2 Form 2: 8-byte subheader + 2324 data + 4 EDC (optional).
	form2UserDataSize = 2324
	form2DataOff      = 24
	form2EdcOff       = 2348
	form2PayloadSize  = 2336

	// modeOffset is the byte offset of the mode byte (always 2 for CD-XA).
	modeOffset = 15
	modeValue  = 0x02

	// eccPBytes/eccQBytes are the output sizes of the P and Q Reed-Solomon blocks.
	eccPBytes = 172
	eccQBytes = 104
)

// Logical 4-byte subheader values (file, channel, submode, coding as the
// little-endian byte sequence), duplicated into both halves of the 8-byte
// on-disk subheader region. Named and valued as in the original mkpsxiso
// IsoWriter::SubData/SubSTR/SubEOL/SubEOF constants.
const (
	SubData uint32 = 0x00080000 // plain data sector (submode DATA)
	SubEOF  uint32 = 0x00890000 // final sector of a file (submode EOF|DATA|EOR)
	SubEOL  uint32 = 0x00090000 // end-of-logical-block marker, used on the PVD sector
	SubSTR  uint32 = 0x00480100 // Form-1-only STR data sector (submode REALTIME|DATA, channel 1)
)

// SubModeForm2 is the submode bit (byte index 2 of the logical subheader)
// that marks a Form 2 (audio/video) sector in CD-XA's auto-detect policy.
const SubModeForm2 = 0x20

// Form selects which of the three on-disc sector layouts a writer or a
// fsmodel.Entry targets. Defined here, alongside the codec that finalizes
// each layout, and re-exported by internal/sectorview as the type its View
// API is expressed in.
type Form int

const (
	FormMode2Form1 Form = iota // 2048 B user data/sector, EDC+ECC
	FormMode2Form2             // 2324 B user data/sector, optional EDC, no ECC
	FormCDDA                   // 2352 B verbatim PCM/sector, no header/EDC
)

func (f Form) String() string {
	switch f {
	case FormMode2Form1:
		return "Form1"
	case FormMode2Form2:
		return "Form2"
	case FormCDDA:
		return "CDDA"
	default:
		return "Unknown"
	}
}

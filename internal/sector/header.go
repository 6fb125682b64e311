package sector

// toBCD encodes a 0-99 value as a packed BCD byte: (v/10)<<4 | v%10.
func toBCD(v int) byte {
	return byte((v/10)<<4 | v%10)
}

// Address returns the BCD-encoded minute, second, frame triple for the
// absolute address of LBA (zero-based), which is LBA+150 per the Red Book
// convention of starting CD addressing 2 seconds before user data.
func Address(lba uint32) (minute, second, frame byte) {
	addr := int(lba) + 150
	f := addr % 75
	s := (addr / 75) % 60
	m := (addr / 75) / 60
	return toBCD(m), toBCD(s), toBCD(f)
}

// writeSyncAndAddress fills the first 16 bytes of a raw sector buffer: the
// 12-byte sync pattern, the 3-byte BCD address, and the mode byte.
func writeSyncAndAddress(buf []byte, lba uint32) {
	buf[0] = 0x00
	for i := 1; i < 11; i++ {
		buf[i] = 0xFF
	}
	buf[11] = 0x00
	m, s, f := Address(lba)
	buf[12], buf[13], buf[14] = m, s, f
	buf[modeOffset] = modeValue
}

// writeSubheader duplicates the 4-byte logical subheader into both 4-byte
// halves at offset 16.
func writeSubheader(buf []byte, subheader uint32) {
	sh := [4]byte{byte(subheader), byte(subheader >> 8), byte(subheader >> 16), byte(subheader >> 24)}
	copy(buf[form1SubheaderOff:form1SubheaderOff+4], sh[:])
	copy(buf[form1SubheaderOff+4:form1SubheaderOff+8], sh[:])
}

// FinalizeForm1 writes the sync/address/mode header, duplicated subheader,
// EDC, and ECC P/Q into a 2352-byte raw sector buffer whose user-data region
// [24:2072) has already been filled (zero-padded as needed) by the caller.
//
// EDC covers subheader+data ([16,2072) -> stored at 2072). ECC P and Q are
// computed over a window starting at the (temporarily zeroed) address+mode
// bytes at offset 12, per the original mkpsxiso PrepSector routine.
func (c *Codec) FinalizeForm1(buf []byte, lba uint32, subheader uint32) {
	if len(buf) != Size {
		panic("sector: FinalizeForm1 requires a full 2352-byte buffer")
	}
	writeSyncAndAddress(buf, lba)
	writeSubheader(buf, subheader)

	c.EDCBlock(buf[form1SubheaderOff:form1EdcOff], buf[form1EdcOff:form1EdcOff+4])

	var savedAddr [4]byte
	copy(savedAddr[:], buf[12:16])
	buf[12], buf[13], buf[14], buf[15] = 0, 0, 0, 0

	c.ECCBlock(buf[12:form1EccPOff], 86, 24, 2, 86, buf[form1EccPOff:form1EccQOff])
	c.ECCBlock(buf[12:form1EccQOff], 52, 43, 86, 88, buf[form1EccQOff:Size])

	copy(buf[12:16], savedAddr[:])
}

// FinalizeForm2 writes the sync/address/mode header and duplicated subheader
// for a Mode 2 Form 2 sector whose user-data region [24:2348) has already
// been filled by the caller. When edcEnabled, the EDC is computed over
// subheader+data and stored at offset 2348; otherwise that region is left as
// the caller set it (conventionally zero).
func (c *Codec) FinalizeForm2(buf []byte, lba uint32, subheader uint32, edcEnabled bool) {
	if len(buf) != Size {
		panic("sector: FinalizeForm2 requires a full 2352-byte buffer")
	}
	writeSyncAndAddress(buf, lba)
	writeSubheader(buf, subheader)

	if edcEnabled {
		c.EDCBlock(buf[form1SubheaderOff:form2EdcOff], buf[form2EdcOff:form2EdcOff+4])
	}
}

// FinalizeVerbatim writes only the sync/address/mode header into buf; the
// 2336 bytes from offset 16 on (subheader, data, and EDC) are left exactly as
// the caller set them. Used for license-region sectors, whose payload is
// copied byte-for-byte from a pre-mastered source rather than recomputed.
func FinalizeVerbatim(buf []byte, lba uint32) {
	if len(buf) != Size {
		panic("sector: FinalizeVerbatim requires a full 2352-byte buffer")
	}
	writeSyncAndAddress(buf, lba)
}

// DetectForm2 inspects the submode byte (byte index 2 of the 4-byte logical
// subheader) for the Form 2 flag. Per spec (and a documented mkpsxiso
// quirk), this checks bit 0x20, not bit 0x80 some other mastering tools use
// for the same purpose; we intentionally preserve that bit check for
// byte-identical output against the reference tool.
func DetectForm2(subheader uint32) bool {
	submode := byte(subheader >> 16) // byte index 2 of the little-endian 4-byte value
	return submode&SubModeForm2 != 0
}

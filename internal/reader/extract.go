package reader

import (
	"encoding/binary"
	"os"
	"path/filepath"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
	"github.com/psxiso/mkpsxiso/internal/pkgerr"
)

// ExtractEntry writes one non-directory entry's payload to destPath,
// creating parent directories as needed. Regular files and interleaved
// Form 2 payloads are copied verbatim; CDDA entries are wrapped in a WAV
// header. Mid-sector truncation on read is zero-padded silently, matching
// a pressed disc's behavior.
func ExtractEntry(img *Image, e *fsmodel.Entry, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0o755); err != nil {
		return pkgerr.Wrap(pkgerr.OutputIoError, destPath, err)
	}
	f, err := os.Create(destPath)
	if err != nil {
		return pkgerr.Wrap(pkgerr.OutputIoError, destPath, err)
	}
	defer f.Close()

	switch e.Kind {
	case fsmodel.KindForm2Interleaved, fsmodel.KindForm1OnlyVideo:
		return extractForm2(img, e, f)
	case fsmodel.KindCDDA:
		return extractCDDA(img, e, f)
	default:
		return extractPlain(img, e, f)
	}
}

// extractPlain reads e.ExtentSize bytes in 2048-byte Form 1 units.
func extractPlain(img *Image, e *fsmodel.Entry, w *os.File) error {
	remaining := int64(e.ExtentSize)
	lba := e.LBA
	for remaining > 0 {
		chunk, err := img.ReadForm1UserData(lba)
		if err != nil {
			return err
		}
		n := int64(len(chunk))
		if n > remaining {
			n = remaining
		}
		if _, err := w.Write(chunk[:n]); err != nil {
			return pkgerr.Wrap(pkgerr.OutputIoError, w.Name(), err)
		}
		remaining -= n
		lba++
	}
	return nil
}

// extractForm2 reads ceil(size/2048) sectors' worth of 2336-byte payloads
// (subheader+data+EDC) verbatim, matching the format internal/project's
// BuildTree expects an "xa"-type source file to already be in.
func extractForm2(img *Image, e *fsmodel.Entry, w *os.File) error {
	numSectors := (e.ExtentSize + 2047) / 2048
	lba := e.LBA
	for i := uint32(0); i < numSectors; i++ {
		payload, err := img.ReadForm2Payload(lba)
		if err != nil {
			return err
		}
		if _, err := w.Write(payload); err != nil {
			return pkgerr.Wrap(pkgerr.OutputIoError, w.Name(), err)
		}
		lba++
	}
	return nil
}

// extractCDDA reads ceil(size/2048) sectors as raw 2352-byte PCM and
// prepends a RIFF/WAVE header sized for the resulting payload.
func extractCDDA(img *Image, e *fsmodel.Entry, w *os.File) error {
	numSectors := (e.ExtentSize + 2047) / 2048
	dataLen := numSectors * 2352

	if err := writeWAVHeader(w, dataLen); err != nil {
		return err
	}

	lba := e.LBA
	for i := uint32(0); i < numSectors; i++ {
		buf, err := img.ReadRawSector(lba)
		if err != nil {
			return err
		}
		if _, err := w.Write(buf); err != nil {
			return pkgerr.Wrap(pkgerr.OutputIoError, w.Name(), err)
		}
		lba++
	}
	return nil
}

// writeWAVHeader writes a canonical 44-byte RIFF/WAVE header for 16-bit
// stereo PCM at 44100 Hz, the CD-DA sample format, with dataLen bytes of
// PCM to follow.
func writeWAVHeader(w *os.File, dataLen uint32) error {
	const (
		numChannels   = 2
		sampleRate    = 44100
		bitsPerSample = 16
	)
	byteRate := uint32(sampleRate * numChannels * bitsPerSample / 8)
	blockAlign := uint16(numChannels * bitsPerSample / 8)

	hdr := make([]byte, 44)
	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], 36+dataLen)
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], numChannels)
	binary.LittleEndian.PutUint32(hdr[24:28], sampleRate)
	binary.LittleEndian.PutUint32(hdr[28:32], byteRate)
	binary.LittleEndian.PutUint16(hdr[32:34], blockAlign)
	binary.LittleEndian.PutUint16(hdr[34:36], bitsPerSample)
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], dataLen)

	_, err := w.Write(hdr)
	if err != nil {
		return pkgerr.Wrap(pkgerr.OutputIoError, w.Name(), err)
	}
	return nil
}

// ExtractAll walks tree depth-first, extracting every non-directory entry
// under outDir (identifiers keep their on-disc case, since ISO 9660 stores
// names uppercased already, with any ";1" version suffix removed) and setting each entry's FileSource to the path it was
// written to, so internal/project.Emit can reference it. Returns the
// extracted-file count; it writes what it could rather than aborting on an
// individual entry's failure, collecting skipped entries via the skipped
// callback.
func ExtractAll(img *Image, tree *fsmodel.Tree, outDir string, skipped func(path string, err error)) int {
	return extractDir(img, tree, 0, outDir, skipped)
}

func extractDir(img *Image, tree *fsmodel.Tree, dirIdx int, outDir string, skipped func(string, error)) int {
	count := 0
	for _, childIdx := range tree.Entries[dirIdx].Children {
		e := &tree.Entries[childIdx]
		name := stripVersionSuffix(e.ID)
		destPath := filepath.Join(outDir, name)

		if e.Kind == fsmodel.KindDir {
			count += extractDir(img, tree, childIdx, destPath, skipped)
			continue
		}
		if e.Kind == fsmodel.KindCDDA {
			destPath += ".wav"
		}
		if err := ExtractEntry(img, e, destPath); err != nil {
			if skipped != nil {
				skipped(destPath, err)
			}
			continue
		}
		e.FileSource = destPath
		count++
	}
	return count
}

func stripVersionSuffix(id string) string {
	for i := len(id) - 1; i >= 0; i-- {
		if id[i] == ';' {
			return id[:i]
		}
	}
	return id
}

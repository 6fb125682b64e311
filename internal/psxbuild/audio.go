package psxbuild

import (
	"bytes"
	"encoding/binary"
	"os"

	"github.com/psxiso/mkpsxiso/internal/pkgerr"
)

// loadPCM returns the raw 16-bit stereo 44.1kHz PCM payload for an audio
// track source. Decoding arbitrary audio codecs is out of scope: a WAV
// file's RIFF/fmt/data chunk structure is unwrapped to the bare PCM bytes,
// and any other file is treated as already-bare PCM.
func loadPCM(path string) ([]byte, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, pkgerr.Wrap(pkgerr.SourceNotFound, path, err)
	}
	if len(raw) >= 12 && bytes.Equal(raw[0:4], []byte("RIFF")) && bytes.Equal(raw[8:12], []byte("WAVE")) {
		return unwrapWAV(path, raw)
	}
	return raw, nil
}

func unwrapWAV(path string, raw []byte) ([]byte, error) {
	off := 12
	for off+8 <= len(raw) {
		chunkID := raw[off : off+4]
		chunkLen := binary.LittleEndian.Uint32(raw[off+4 : off+8])
		dataStart := off + 8
		if bytes.Equal(chunkID, []byte("data")) {
			end := dataStart + int(chunkLen)
			if end > len(raw) {
				end = len(raw)
			}
			return raw[dataStart:end], nil
		}
		off = dataStart + int(chunkLen)
		if chunkLen%2 != 0 {
			off++ // chunks are padded to even length
		}
	}
	return nil, pkgerr.New(pkgerr.DecoderFailure, path, "WAV file has no data chunk")
}

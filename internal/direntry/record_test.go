package direntry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/psxiso/mkpsxiso/internal/fsmodel"
)

func TestRecordSizeEvenPadding(t *testing.T) {
	require.Equal(t, 34, RecordSize(1, false))
	require.Equal(t, 48, RecordSize(1, true))
	require.Equal(t, 36, RecordSize(2, false)) // even-length identifier: one pad byte
	require.Equal(t, 50, RecordSize(2, true))
}

func TestMarshalDotEntry(t *testing.T) {
	e := &fsmodel.Entry{Kind: fsmodel.KindDir, Attrs: fsmodel.ResolvedAttrs{XAPerm: 0x7FF}}
	buf := Marshal(e, []byte{0x01}, 100, 2048, true)
	require.Equal(t, byte(len(buf)), buf[0])
	require.Equal(t, byte(0x02), buf[25]&0x02) // directory flag set
	require.Equal(t, byte(1), buf[32])
	require.Equal(t, byte(0x01), buf[33])
	require.Equal(t, byte('X'), buf[len(buf)-8])
	require.Equal(t, byte('A'), buf[len(buf)-7])
}

func TestXAAttributeWordByKind(t *testing.T) {
	fileEntry := &fsmodel.Entry{Kind: fsmodel.KindFile}
	word, _ := xaAttributeWord(fileEntry)
	require.Equal(t, uint16(xaFlagFile), word)

	dirEntry := &fsmodel.Entry{Kind: fsmodel.KindDir}
	word, _ = xaAttributeWord(dirEntry)
	require.Equal(t, uint16(xaFlagDir), word)

	form2Entry := &fsmodel.Entry{Kind: fsmodel.KindForm2Interleaved}
	word, fileNum := xaAttributeWord(form2Entry)
	require.Equal(t, uint16(xaFlagForm2), word)
	require.Equal(t, byte(1), fileNum)

	cddaEntry := &fsmodel.Entry{Kind: fsmodel.KindCDDA}
	word, _ = xaAttributeWord(cddaEntry)
	require.Equal(t, uint16(xaFlagCDDA), word)

	overridden := &fsmodel.Entry{Kind: fsmodel.KindFile, Attrs: fsmodel.ResolvedAttrs{XAAttrib: 0x42}}
	word, _ = xaAttributeWord(overridden)
	require.Equal(t, uint16(0x42)<<8, word)
}

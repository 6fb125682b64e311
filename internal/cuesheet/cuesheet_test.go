package cuesheet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTimecodeOffsetBy150(t *testing.T) {
	require.Equal(t, "00:02:00", Timecode(0))
	require.Equal(t, "00:02:01", Timecode(1))
	require.Equal(t, "00:03:00", Timecode(75))
	require.Equal(t, "01:00:00", Timecode(4350))
}

func TestWriteToDataTrackOnly(t *testing.T) {
	sheet := Sheet{
		ImageFile: "output.bin",
		Tracks:    []Track{{Number: 1, Type: TrackData}},
	}
	var buf strings.Builder
	n, err := sheet.WriteTo(&buf)
	require.NoError(t, err)
	require.Equal(t, int64(buf.Len()), n)

	out := buf.String()
	require.Contains(t, out, `FILE "output.bin" BINARY`)
	require.Contains(t, out, "TRACK 01 MODE2/2352")
	require.Contains(t, out, "INDEX 01 00:00:00")
	require.NotContains(t, out, "AUDIO")
}

func TestWriteToFirstAudioTrackGetsPregap(t *testing.T) {
	sheet := Sheet{
		ImageFile: "output.bin",
		Tracks: []Track{
			{Number: 1, Type: TrackData},
			{Number: 2, Type: TrackAudio, FirstAudio: true, Index01LBA: 1000},
		},
	}
	var buf strings.Builder
	_, err := sheet.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "TRACK 02 AUDIO")
	require.Contains(t, out, "PREGAP 00:02:00")
	require.NotContains(t, out, "INDEX 00")
	require.Contains(t, out, "INDEX 01 "+Timecode(1000))
}

func TestWriteToSubsequentAudioTrackGetsIndex00(t *testing.T) {
	sheet := Sheet{
		ImageFile: "output.bin",
		Tracks: []Track{
			{Number: 1, Type: TrackData},
			{Number: 2, Type: TrackAudio, FirstAudio: true, Index01LBA: 1000},
			{Number: 3, Type: TrackAudio, Index00LBA: 2000, Index01LBA: 2000},
		},
	}
	var buf strings.Builder
	_, err := sheet.WriteTo(&buf)
	require.NoError(t, err)

	out := buf.String()
	require.Contains(t, out, "TRACK 03 AUDIO")
	require.Contains(t, out, "INDEX 00 "+Timecode(2000))
	require.Contains(t, out, "INDEX 01 "+Timecode(2000))
}

func TestWriteToDefaultDataMode(t *testing.T) {
	sheet := Sheet{ImageFile: "x.bin", Tracks: []Track{{Number: 1, Type: TrackData, DataMode: ""}}}
	var buf strings.Builder
	_, err := sheet.WriteTo(&buf)
	require.NoError(t, err)
	require.Contains(t, buf.String(), "MODE2/2352")
}

type errWriter struct{}

func (errWriter) Write(p []byte) (int, error) { return 0, assertErr }

var assertErr = &writeErr{}

type writeErr struct{}

func (*writeErr) Error() string { return "boom" }

func TestWriteToPropagatesFirstError(t *testing.T) {
	sheet := Sheet{ImageFile: "x.bin", Tracks: []Track{{Number: 1, Type: TrackData}}}
	_, err := sheet.WriteTo(errWriter{})
	require.Error(t, err)
}

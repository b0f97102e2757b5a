package compress

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fluomix/format"
)

var allTypes = []format.CompressionType{
	format.CompressionNone,
	format.CompressionZstd,
	format.CompressionS2,
	format.CompressionLZ4,
}

// diagonalPayload imitates a serialized diagonal: a slowly varying series
// of little-endian float64 values.
func diagonalPayload(n int) []byte {
	out := make([]byte, 0, 8*n)
	for i := range n {
		v := 0.5 + 0.25*math.Sin(float64(i)/20)
		out = binary.LittleEndian.AppendUint64(out, math.Float64bits(v))
	}

	return out
}

func TestCodecs_RoundTrip(t *testing.T) {
	payloads := map[string][]byte{
		"diagonal": diagonalPayload(400),
		"repeated": bytes.Repeat([]byte("gmm\n"), 1000),
		"one byte": {0x7f},
	}

	for _, ct := range allTypes {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		for name, payload := range payloads {
			t.Run(ct.String()+"/"+name, func(t *testing.T) {
				packed, err := codec.Compress(payload)
				require.NoError(t, err)

				got, err := codec.Decompress(packed)
				require.NoError(t, err)
				require.Equal(t, payload, got)
			})
		}
	}
}

func TestCodecs_Empty(t *testing.T) {
	for _, ct := range allTypes {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		packed, err := codec.Compress(nil)
		require.NoError(t, err)
		require.Empty(t, packed)

		got, err := codec.Decompress(nil)
		require.NoError(t, err)
		require.Empty(t, got)
	}
}

func TestCodecs_CorruptInput(t *testing.T) {
	garbage := []byte{0xff, 0xfe, 0xfd, 0xfc, 0xfb, 0xfa, 0xf9, 0xf8, 0xf7}

	for _, ct := range []format.CompressionType{format.CompressionZstd, format.CompressionS2} {
		codec, err := GetCodec(ct)
		require.NoError(t, err)

		_, err = codec.Decompress(garbage)
		require.Error(t, err, ct.String())
	}
}

func TestLZ4_LargeExpansion(t *testing.T) {
	payload := make([]byte, 256*1024)
	codec := NewLZ4Compressor()

	packed, err := codec.Compress(payload)
	require.NoError(t, err)
	require.Less(t, len(packed)*4, len(payload))

	got, err := codec.Decompress(packed)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestGetCodec_Unknown(t *testing.T) {
	_, err := GetCodec(format.CompressionType(0x7f))
	require.Error(t, err)
}

func TestMeasure(t *testing.T) {
	payload := bytes.Repeat([]byte{1, 2, 3, 4}, 512)

	stats, err := Measure(format.CompressionNone, payload)
	require.NoError(t, err)
	require.Equal(t, 1.0, stats.Ratio())
	require.Zero(t, stats.SpaceSavings())

	stats, err = Measure(format.CompressionZstd, payload)
	require.NoError(t, err)
	require.Equal(t, len(payload), stats.OriginalSize)
	require.Less(t, stats.Ratio(), 0.5)
	require.Greater(t, stats.SpaceSavings(), 50.0)

	require.Zero(t, Stats{}.Ratio())
}

func BenchmarkCompress(b *testing.B) {
	payload := diagonalPayload(1000)

	for _, ct := range allTypes {
		codec, _ := GetCodec(ct)
		b.Run(ct.String(), func(b *testing.B) {
			b.SetBytes(int64(len(payload)))
			for b.Loop() {
				if _, err := codec.Compress(payload); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

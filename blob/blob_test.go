package blob

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fluomix/encoding"
	"github.com/arloliu/fluomix/endian"
	"github.com/arloliu/fluomix/format"
	"github.com/arloliu/fluomix/gmm"
	"github.com/arloliu/fluomix/internal/hash"
	"github.com/arloliu/fluomix/section"
)

func sampleGMM() *gmm.FittedGMM {
	diag := make([]float64, 81)
	for i := range diag {
		diag[i] = 0.5 + float64(i%7)*0.125
	}

	return &gmm.FittedGMM{
		Components: []gmm.Component{
			{Mean: [2]float64{400, 450}, Covariance: [2][2]float64{{225, 10}, {10, 196}}, Weight: 0.7},
			{Mean: [2]float64{520, 600}, Covariance: [2][2]float64{{100, 0}, {0, 144}}, Weight: 0.3},
		},
		ScaleAttenuation: 2048.5,
		Diagonal:         gmm.Diagonal{Start: 300, Step: 5, Values: diag},
	}
}

// === Encoder/Decoder round trips ===

func TestEncodeDecode_RoundTrip(t *testing.T) {
	compressions := []format.CompressionType{
		format.CompressionNone,
		format.CompressionZstd,
		format.CompressionS2,
		format.CompressionLZ4,
	}

	for _, comp := range compressions {
		for _, big := range []bool{false, true} {
			for _, text := range []bool{false, true} {
				opts := []EncoderOption{WithCompression(comp)}
				if big {
					opts = append(opts, WithBigEndian())
				}
				if text {
					opts = append(opts, WithTextLayout())
				}

				enc, err := NewEncoder(opts...)
				require.NoError(t, err)

				data, err := enc.Encode(sampleGMM())
				require.NoError(t, err)
				require.True(t, IsContainer(data))

				header, err := Inspect(data)
				require.NoError(t, err)
				require.Equal(t, comp, header.Flag.Compression())
				require.Equal(t, big, header.Flag.IsBigEndian())
				require.Equal(t, uint32(2), header.Components)
				require.Equal(t, uint32(81), header.DiagonalLength)
				require.Equal(t, int(header.StoredLength), len(data)-section.HeaderSize)

				got, err := Decode(data)
				require.NoError(t, err, "%s big=%v text=%v", comp, big, text)
				require.Equal(t, sampleGMM(), got)
			}
		}
	}
}

func TestEncode_UncompressedPayloadIsBinaryLayout(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)

	data, err := enc.Encode(sampleGMM())
	require.NoError(t, err)

	raw, err := encoding.EncodeGMM(sampleGMM(), endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Equal(t, raw, data[section.HeaderSize:])

	header, err := Inspect(data)
	require.NoError(t, err)
	require.Equal(t, hash.Checksum(raw), header.Checksum)
	require.Equal(t, uint32(len(raw)), header.RawLength)
}

func TestEncoder_Reusable(t *testing.T) {
	enc, err := NewEncoder(WithCompression(format.CompressionZstd))
	require.NoError(t, err)

	first, err := enc.Encode(sampleGMM())
	require.NoError(t, err)
	second, err := enc.Encode(sampleGMM())
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestNewEncoder_InvalidCompression(t *testing.T) {
	_, err := NewEncoder(WithCompression(format.CompressionType(0x0f)))
	require.Error(t, err)
}

// === Decoder validation ===

func TestDecode_ChecksumMismatch(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	data, err := enc.Encode(sampleGMM())
	require.NoError(t, err)

	data[len(data)-1] ^= 0x01
	_, err = Decode(data)
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestDecode_InvalidPayloadLength(t *testing.T) {
	enc, err := NewEncoder(WithCompression(format.CompressionS2))
	require.NoError(t, err)
	data, err := enc.Encode(sampleGMM())
	require.NoError(t, err)

	_, err = Decode(data[:len(data)-1])
	require.ErrorIs(t, err, ErrInvalidPayloadLength)

	_, err = Decode(append(data, 0))
	require.ErrorIs(t, err, ErrInvalidPayloadLength)
}

func TestDecode_HeaderMismatch(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	data, err := enc.Encode(sampleGMM())
	require.NoError(t, err)

	header, err := Inspect(data)
	require.NoError(t, err)
	header.Components = 3
	copy(data, header.Bytes())

	_, err = Decode(data)
	require.ErrorIs(t, err, ErrHeaderMismatch)
}

func TestDecode_ShortHeader(t *testing.T) {
	enc, err := NewEncoder()
	require.NoError(t, err)
	data, err := enc.Encode(sampleGMM())
	require.NoError(t, err)

	_, err = Decode(data[:section.HeaderSize-1])
	require.ErrorIs(t, err, section.ErrInvalidHeaderSize)
}

// === Legacy files ===

func TestDecode_LegacyBinary(t *testing.T) {
	raw, err := encoding.EncodeGMM(sampleGMM(), endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.False(t, IsContainer(raw))

	got, err := Decode(raw)
	require.NoError(t, err)
	require.Equal(t, sampleGMM(), got)
}

func TestDecode_LegacyText(t *testing.T) {
	text := encoding.AppendText(nil, sampleGMM())
	require.False(t, IsContainer(text))

	got, err := Decode(text)
	require.NoError(t, err)
	require.Equal(t, sampleGMM(), got)
}

func TestDecode_LegacyTruncated(t *testing.T) {
	_, err := Decode([]byte{2, 0})
	require.ErrorIs(t, err, encoding.ErrTruncated)
}

func BenchmarkEncode(b *testing.B) {
	enc, err := NewEncoder(WithCompression(format.CompressionZstd))
	require.NoError(b, err)
	g := sampleGMM()

	for b.Loop() {
		if _, err := enc.Encode(g); err != nil {
			b.Fatal(err)
		}
	}
}

package section

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fluomix/endian"
	"github.com/arloliu/fluomix/format"
)

func sampleHeader() *Header {
	h := NewHeader()
	h.Components = 5
	h.DiagonalLength = 41
	h.RawLength = 572
	h.StoredLength = 301
	h.Checksum = 0x0123456789abcdef
	h.Flag.SetCompression(format.CompressionZstd)

	return h
}

func TestNewHeader(t *testing.T) {
	h := NewHeader()

	require.True(t, h.Flag.IsValidMagicNumber())
	require.False(t, h.Flag.IsBigEndian())
	require.Equal(t, format.LayoutBinary, h.Flag.Layout())
	require.Equal(t, format.CompressionNone, h.Flag.Compression())
	require.NoError(t, h.Flag.Validate())
}

func TestHeader_RoundTrip(t *testing.T) {
	for _, big := range []bool{false, true} {
		h := sampleHeader()
		if big {
			h.Flag.WithBigEndian()
		}
		h.Flag.SetLayout(format.LayoutText)

		data := h.Bytes()
		require.Len(t, data, HeaderSize)
		require.True(t, HasMagic(data))

		parsed, err := ParseHeader(data)
		require.NoError(t, err)
		require.Equal(t, *h, parsed)
		require.Equal(t, big, parsed.Flag.IsBigEndian())
		require.Equal(t, format.LayoutText, parsed.Flag.Layout())
	}
}

func TestHeader_ByteLayout(t *testing.T) {
	h := sampleHeader()
	h.Flag.WithBigEndian()
	data := h.Bytes()

	require.Equal(t, []byte{0xA1, 0xF1}, data[0:2])
	require.Equal(t, byte(format.CompressionZstd), data[2])
	require.Zero(t, data[3])

	engine := endian.GetBigEndianEngine()
	require.Equal(t, uint32(5), engine.Uint32(data[4:]))
	require.Equal(t, uint32(41), engine.Uint32(data[8:]))
	require.Equal(t, uint32(572), engine.Uint32(data[12:]))
	require.Equal(t, uint32(301), engine.Uint32(data[16:]))
	require.Equal(t, uint64(0x0123456789abcdef), engine.Uint64(data[20:]))
	require.Equal(t, []byte{0, 0, 0, 0}, data[28:])
}

func TestHeader_AppendTo(t *testing.T) {
	h := sampleHeader()
	out := h.AppendTo([]byte{0xee})

	require.Len(t, out, HeaderSize+1)
	require.Equal(t, byte(0xee), out[0])
	require.Equal(t, h.Bytes(), out[1:])
}

func TestParseHeader_Errors(t *testing.T) {
	t.Run("Short input", func(t *testing.T) {
		_, err := ParseHeader(make([]byte, HeaderSize-1))
		require.ErrorIs(t, err, ErrInvalidHeaderSize)

		err = (&Header{}).Parse(make([]byte, HeaderSize+1))
		require.ErrorIs(t, err, ErrInvalidHeaderSize)
	})

	t.Run("Missing magic", func(t *testing.T) {
		data := make([]byte, HeaderSize)
		data[0] = 0x08
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, ErrInvalidMagic)
		require.False(t, HasMagic(data))
	})

	t.Run("Reserved bits", func(t *testing.T) {
		data := sampleHeader().Bytes()
		data[0] |= 0x04
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, ErrInvalidHeaderFlags)
	})

	t.Run("Unknown compression", func(t *testing.T) {
		data := sampleHeader().Bytes()
		data[2] = 0x09
		_, err := ParseHeader(data)
		require.ErrorIs(t, err, ErrInvalidHeaderFlags)
	})
}

func TestFlag_Toggles(t *testing.T) {
	f := NewFlag()

	f.WithBigEndian()
	require.True(t, f.IsBigEndian())
	require.Equal(t, endian.GetBigEndianEngine(), f.GetEndianEngine())
	f.WithLittleEndian()
	require.False(t, f.IsBigEndian())
	require.Equal(t, endian.GetLittleEndianEngine(), f.GetEndianEngine())

	f.SetLayout(format.LayoutText)
	require.Equal(t, format.LayoutText, f.Layout())
	f.SetLayout(format.LayoutBinary)
	require.Equal(t, format.LayoutBinary, f.Layout())
	require.Equal(t, uint16(MagicGMMV1), f.GetMagicNumber())
}

func TestHasMagic(t *testing.T) {
	require.False(t, HasMagic(nil))
	require.False(t, HasMagic([]byte{0xA0}))
	require.True(t, HasMagic([]byte{0xA3, 0xF1}))
	require.False(t, HasMagic([]byte("gmm\n")))
}

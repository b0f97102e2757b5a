package section

import (
	"github.com/arloliu/fluomix/endian"
	"github.com/arloliu/fluomix/format"
)

// Flag is the packed options and compression field of the header.
type Flag struct {
	// Options packs the flags and the magic number.
	// Bit 0 is the byte order of the payload and header: 0 little-endian, 1 big-endian.
	// Bit 1 is the payload layout: 0 binary, 1 ASCII text.
	// Bits 2-3 are reserved and must be zero.
	// Bits 4-15 hold the magic number, 0xF1A0 for version 1.
	Options uint16

	// CompressionType is the codec applied to the payload.
	CompressionType uint8
}

var validCompressions = map[format.CompressionType]struct{}{
	format.CompressionNone: {},
	format.CompressionZstd: {},
	format.CompressionS2:   {},
	format.CompressionLZ4:  {},
}

// NewFlag returns a little-endian, binary, uncompressed flag.
func NewFlag() Flag {
	return Flag{
		Options:         MagicGMMV1,
		CompressionType: uint8(format.CompressionNone),
	}
}

// IsBigEndian returns whether the header and payload are big-endian.
func (f Flag) IsBigEndian() bool {
	return (f.Options & EndiannessMask) != 0
}

// WithBigEndian selects big-endian byte order.
func (f *Flag) WithBigEndian() {
	f.Options |= EndiannessMask
}

// WithLittleEndian selects little-endian byte order.
func (f *Flag) WithLittleEndian() {
	f.Options &^= EndiannessMask
}

// Layout returns the payload layout.
func (f Flag) Layout() format.Layout {
	if f.Options&TextLayoutMask != 0 {
		return format.LayoutText
	}

	return format.LayoutBinary
}

// SetLayout sets the payload layout.
func (f *Flag) SetLayout(l format.Layout) {
	if l == format.LayoutText {
		f.Options |= TextLayoutMask
	} else {
		f.Options &^= TextLayoutMask
	}
}

// Compression returns the payload codec.
func (f Flag) Compression() format.CompressionType {
	return format.CompressionType(f.CompressionType)
}

// SetCompression sets the payload codec.
func (f *Flag) SetCompression(c format.CompressionType) {
	f.CompressionType = uint8(c)
}

// GetMagicNumber returns the magic number bits.
func (f Flag) GetMagicNumber() uint16 {
	return f.Options & MagicNumberMask
}

// IsValidMagicNumber reports whether the options carry the container magic.
func (f Flag) IsValidMagicNumber() bool {
	return f.GetMagicNumber() == MagicGMMV1
}

// Validate checks the magic number, the reserved bits and the compression type.
func (f Flag) Validate() error {
	if !f.IsValidMagicNumber() {
		return ErrInvalidMagic
	}
	if f.Options&ReservedBitsMask != 0 {
		return ErrInvalidHeaderFlags
	}
	if _, ok := validCompressions[f.Compression()]; !ok {
		return ErrInvalidHeaderFlags
	}

	return nil
}

// GetEndianEngine returns the byte order selected by the flag.
func (f Flag) GetEndianEngine() endian.EndianEngine {
	if f.IsBigEndian() {
		return endian.GetBigEndianEngine()
	}

	return endian.GetLittleEndianEngine()
}

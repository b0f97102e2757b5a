package section

import "encoding/binary"

// Header is the fixed 32-byte header in front of a container payload.
type Header struct {
	// Flag holds the magic number, byte order, layout and codec.
	Flag Flag // byte offset 0-3
	// Components is the number of mixture components in the payload.
	Components uint32 // byte offset 4-7
	// DiagonalLength is the number of diagonal samples in the payload.
	DiagonalLength uint32 // byte offset 8-11
	// RawLength is the payload size before compression.
	RawLength uint32 // byte offset 12-15
	// StoredLength is the payload size after compression.
	StoredLength uint32 // byte offset 16-19
	// Checksum is the xxHash64 of the uncompressed payload.
	Checksum uint64 // byte offset 20-27
	// bytes 28-31 are reserved
}

// NewHeader returns a header with the default flag.
func NewHeader() *Header {
	return &Header{Flag: NewFlag()}
}

// Parse parses the header from exactly HeaderSize bytes.
//
// The options field is always little-endian; its endianness bit selects the
// byte order of the remaining fields.
func (h *Header) Parse(data []byte) error {
	if len(data) != HeaderSize {
		return ErrInvalidHeaderSize
	}

	h.Flag.Options = binary.LittleEndian.Uint16(data[optionsOffset:])
	h.Flag.CompressionType = data[compressionOffset]
	if err := h.Flag.Validate(); err != nil {
		return err
	}

	engine := h.Flag.GetEndianEngine()
	h.Components = engine.Uint32(data[componentsOffset:])
	h.DiagonalLength = engine.Uint32(data[diagonalOffset:])
	h.RawLength = engine.Uint32(data[rawLengthOffset:])
	h.StoredLength = engine.Uint32(data[storedLenOffset:])
	h.Checksum = engine.Uint64(data[checksumOffset:])

	return nil
}

// Bytes serializes the header.
func (h *Header) Bytes() []byte {
	return h.AppendTo(make([]byte, 0, HeaderSize))
}

// AppendTo appends the serialized header to dst.
func (h *Header) AppendTo(dst []byte) []byte {
	engine := h.Flag.GetEndianEngine()

	dst = binary.LittleEndian.AppendUint16(dst, h.Flag.Options)
	dst = append(dst, h.Flag.CompressionType, 0)
	dst = engine.AppendUint32(dst, h.Components)
	dst = engine.AppendUint32(dst, h.DiagonalLength)
	dst = engine.AppendUint32(dst, h.RawLength)
	dst = engine.AppendUint32(dst, h.StoredLength)
	dst = engine.AppendUint64(dst, h.Checksum)

	return append(dst, 0, 0, 0, 0)
}

// ParseHeader parses the header at the start of data.
func ParseHeader(data []byte) (Header, error) {
	if len(data) < HeaderSize {
		return Header{}, ErrInvalidHeaderSize
	}

	h := Header{}
	if err := h.Parse(data[:HeaderSize]); err != nil {
		return Header{}, err
	}

	return h, nil
}

// HasMagic reports whether data starts with the container magic number.
func HasMagic(data []byte) bool {
	if len(data) < 2 {
		return false
	}

	return binary.LittleEndian.Uint16(data)&MagicNumberMask == MagicGMMV1
}

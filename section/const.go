package section

const (
	// Bit masks of the options field
	EndiannessMask   = 0x0001 // Mask for endianness bit (bit 0)
	TextLayoutMask   = 0x0002 // Mask for text layout bit (bit 1)
	ReservedBitsMask = 0x000C // Mask for reserved bits (bits 2-3)
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicGMMV1 is the version 1 magic number of the fitted-spectrum container.
	MagicGMMV1 = 0xF1A0
)

// Byte offsets of the 32-byte header.
const (
	HeaderSize = 32

	optionsOffset     = 0  // uint16, always little-endian
	compressionOffset = 2  // uint8
	componentsOffset  = 4  // uint32
	diagonalOffset    = 8  // uint32
	rawLengthOffset   = 12 // uint32
	storedLenOffset   = 16 // uint32
	checksumOffset    = 20 // uint64
)

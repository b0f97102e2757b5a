package blob

import "errors"

var (
	// ErrChecksumMismatch reports a payload whose xxHash64 differs from the header.
	ErrChecksumMismatch = errors.New("blob: payload checksum mismatch")
	// ErrInvalidPayloadLength reports a payload whose size differs from the header.
	ErrInvalidPayloadLength = errors.New("blob: invalid payload length")
	// ErrHeaderMismatch reports a payload whose counts differ from the header.
	ErrHeaderMismatch = errors.New("blob: payload does not match header")
	// ErrPayloadTooLarge reports a payload longer than a uint32 length field.
	ErrPayloadTooLarge = errors.New("blob: payload too large")
)

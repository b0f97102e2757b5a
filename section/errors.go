package section

import "errors"

var (
	// ErrInvalidHeaderSize reports input shorter than HeaderSize.
	ErrInvalidHeaderSize = errors.New("section: invalid header size")
	// ErrInvalidMagic reports a header without the container magic number.
	ErrInvalidMagic = errors.New("section: invalid magic number")
	// ErrInvalidHeaderFlags reports reserved bits or an unknown compression type.
	ErrInvalidHeaderFlags = errors.New("section: invalid header flags")
)

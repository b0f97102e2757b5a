package encoding

import "errors"

var (
	// ErrTruncated reports input that ends before the layout is complete.
	ErrTruncated = errors.New("encoding: truncated input")
	// ErrTrailingBytes reports bytes left over after a complete binary layout.
	ErrTrailingBytes = errors.New("encoding: trailing bytes after layout")
	// ErrInvalidText reports a malformed ASCII layout.
	ErrInvalidText = errors.New("encoding: invalid text layout")
	// ErrTooLarge reports a count that does not fit the 4-byte field.
	ErrTooLarge = errors.New("encoding: count exceeds uint32")
)

package spectrum

import "errors"

var (
	// ErrInvalidFormat reports a reradiation file that cannot be parsed.
	ErrInvalidFormat = errors.New("spectrum: invalid format")
	// ErrSamplingMismatch reports incident and outgoing axes with different steps.
	ErrSamplingMismatch = errors.New("spectrum: reradiation spectrum with varying incident/outgoing sampling is not supported")
	// ErrShape reports a value count that does not match the axes.
	ErrShape = errors.New("spectrum: data does not match axis sizes")
)

package spectrum

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format identifies a reradiation file format.
type Format uint8

const (
	FormatART Format = iota + 1
	FormatBFC
)

func (f Format) String() string {
	switch f {
	case FormatART:
		return "art"
	case FormatBFC:
		return "bfc"
	default:
		return "unknown"
	}
}

// DetectFormat returns FormatBFC when any suffix of the file name contains
// ".bfc" (case-insensitive), FormatART otherwise.
func DetectFormat(path string) Format {
	name := strings.TrimLeft(filepath.Base(path), ".")
	parts := strings.Split(name, ".")
	for _, suffix := range parts[1:] {
		if strings.Contains(strings.ToLower("."+suffix), ".bfc") {
			return FormatBFC
		}
	}

	return FormatART
}

// Load reads a reradiation file, choosing the reader with DetectFormat.
func Load(path string) (*Spectrum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open reradiation file")
	}
	defer f.Close()

	var s *Spectrum
	switch DetectFormat(path) {
	case FormatBFC:
		s, err = ReadBFC(f)
	default:
		s, err = ReadART(f)
	}
	if err != nil {
		return nil, errors.WithMessage(err, path)
	}

	return s, nil
}

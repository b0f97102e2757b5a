// Package format declares the identifiers stored in container headers.
package format

import (
	"fmt"
	"strings"
)

type (
	// Layout identifies how a mixture payload is serialized.
	Layout uint8
	// CompressionType identifies the codec applied to a payload.
	CompressionType uint8
)

const (
	LayoutBinary Layout = 0x0 // LayoutBinary is the packed uint32/float64 layout.
	LayoutText   Layout = 0x1 // LayoutText is the line-oriented ASCII layout.

	CompressionNone CompressionType = 0x1 // CompressionNone stores the payload as is.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (l Layout) String() string {
	switch l {
	case LayoutBinary:
		return "Binary"
	case LayoutText:
		return "Text"
	default:
		return "Unknown"
	}
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// ParseCompression maps a case-insensitive codec name to its type.
// The empty string selects CompressionNone.
func ParseCompression(name string) (CompressionType, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "s2":
		return CompressionS2, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("unknown compression %q", name)
	}
}

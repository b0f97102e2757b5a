package blob

import (
	"bytes"
	"fmt"

	"github.com/arloliu/fluomix/compress"
	"github.com/arloliu/fluomix/encoding"
	"github.com/arloliu/fluomix/endian"
	"github.com/arloliu/fluomix/format"
	"github.com/arloliu/fluomix/gmm"
	"github.com/arloliu/fluomix/internal/hash"
	"github.com/arloliu/fluomix/section"
)

var textPrefix = []byte("gmm")

// IsContainer reports whether data starts with a container header magic.
func IsContainer(data []byte) bool {
	return section.HasMagic(data)
}

// Inspect parses and returns the header of a container without touching
// the payload.
func Inspect(data []byte) (section.Header, error) {
	return section.ParseHeader(data)
}

// Decode reads a fitted spectrum from data.
//
// Containers are verified against their header: the stored length, the
// decompressed length, the checksum and the component and diagonal counts.
// Input without the container magic is read as a legacy file, ASCII when it
// starts with "gmm" and little-endian binary otherwise.
func Decode(data []byte) (*gmm.FittedGMM, error) {
	if !section.HasMagic(data) {
		return decodeLegacy(data)
	}

	header, err := section.ParseHeader(data)
	if err != nil {
		return nil, err
	}

	stored := data[section.HeaderSize:]
	if len(stored) != int(header.StoredLength) {
		return nil, fmt.Errorf("%w: header declares %d stored bytes, found %d",
			ErrInvalidPayloadLength, header.StoredLength, len(stored))
	}

	codec, err := compress.GetCodec(header.Flag.Compression())
	if err != nil {
		return nil, err
	}
	payload, err := codec.Decompress(stored)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress %s payload: %w", header.Flag.Compression(), err)
	}
	if len(payload) != int(header.RawLength) {
		return nil, fmt.Errorf("%w: header declares %d raw bytes, found %d",
			ErrInvalidPayloadLength, header.RawLength, len(payload))
	}
	if !hash.Verify(payload, header.Checksum) {
		return nil, ErrChecksumMismatch
	}

	var g *gmm.FittedGMM
	if header.Flag.Layout() == format.LayoutText {
		g, err = encoding.ReadText(bytes.NewReader(payload))
	} else {
		g, err = encoding.DecodeGMM(payload, header.Flag.GetEndianEngine())
	}
	if err != nil {
		return nil, err
	}

	if len(g.Components) != int(header.Components) || len(g.Diagonal.Values) != int(header.DiagonalLength) {
		return nil, fmt.Errorf("%w: header declares %d components and %d diagonal values, payload has %d and %d",
			ErrHeaderMismatch, header.Components, header.DiagonalLength, len(g.Components), len(g.Diagonal.Values))
	}

	return g, nil
}

func decodeLegacy(data []byte) (*gmm.FittedGMM, error) {
	if bytes.HasPrefix(data, textPrefix) {
		return encoding.ReadText(bytes.NewReader(data))
	}

	return encoding.DecodeGMM(data, endian.GetLittleEndianEngine())
}

package blob

import (
	"fmt"
	"math"

	"github.com/arloliu/fluomix/encoding"
	"github.com/arloliu/fluomix/format"
	"github.com/arloliu/fluomix/gmm"
	"github.com/arloliu/fluomix/internal/hash"
	"github.com/arloliu/fluomix/internal/options"
	"github.com/arloliu/fluomix/internal/pool"
	"github.com/arloliu/fluomix/section"
)

// Encoder writes fitted spectra into containers.
//
// An Encoder holds only its configuration and may be reused and shared
// between goroutines.
type Encoder struct {
	cfg *EncoderConfig
}

// NewEncoder creates an Encoder from the default configuration and opts.
func NewEncoder(opts ...EncoderOption) (*Encoder, error) {
	cfg := NewEncoderConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return &Encoder{cfg: cfg}, nil
}

// Encode serializes g, compresses the payload and prepends the header.
func (e *Encoder) Encode(g *gmm.FittedGMM) ([]byte, error) {
	header := e.cfg.Header()
	if uint64(len(g.Components)) > math.MaxUint32 || uint64(len(g.Diagonal.Values)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d components, %d diagonal values", ErrPayloadTooLarge,
			len(g.Components), len(g.Diagonal.Values))
	}

	payload := pool.GetPayloadBuffer()
	defer pool.PutPayloadBuffer(payload)

	var err error
	if header.Flag.Layout() == format.LayoutText {
		payload.B = encoding.AppendText(payload.B, g)
	} else {
		payload.B, err = encoding.AppendGMM(payload.B, g, header.Flag.GetEndianEngine())
		if err != nil {
			return nil, err
		}
	}

	stored, err := e.cfg.codec.Compress(payload.Bytes())
	if err != nil {
		return nil, fmt.Errorf("failed to compress payload with %s: %w", header.Flag.Compression(), err)
	}
	if uint64(payload.Len()) > math.MaxUint32 || uint64(len(stored)) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, payload.Len())
	}

	header.Components = uint32(len(g.Components))
	header.DiagonalLength = uint32(len(g.Diagonal.Values))
	header.RawLength = uint32(payload.Len())
	header.StoredLength = uint32(len(stored))
	header.Checksum = hash.Checksum(payload.Bytes())

	buf := pool.GetContainerBuffer()
	defer pool.PutContainerBuffer(buf)

	buf.Grow(section.HeaderSize + len(stored))
	buf.B = header.AppendTo(buf.B)
	buf.B = append(buf.B, stored...)

	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())

	return out, nil
}

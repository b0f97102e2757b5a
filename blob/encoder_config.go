package blob

import (
	"fmt"

	"github.com/arloliu/fluomix/compress"
	"github.com/arloliu/fluomix/format"
	"github.com/arloliu/fluomix/internal/options"
	"github.com/arloliu/fluomix/section"
)

// EncoderConfig holds the header template and codec of an Encoder.
type EncoderConfig struct {
	header *section.Header
	codec  compress.Codec
}

// NewEncoderConfig returns the default configuration: little-endian binary
// layout without compression.
func NewEncoderConfig() *EncoderConfig {
	return &EncoderConfig{
		header: section.NewHeader(),
		codec:  compress.NewNoOpCompressor(),
	}
}

func (c *EncoderConfig) setCompression(comp format.CompressionType) error {
	codec, err := compress.GetCodec(comp)
	if err != nil {
		return fmt.Errorf("invalid payload compression: %w", err)
	}
	c.header.Flag.SetCompression(comp)
	c.codec = codec

	return nil
}

// Header returns a copy of the header template.
func (c *EncoderConfig) Header() section.Header {
	return *c.header
}

// EncoderOption configures an EncoderConfig.
type EncoderOption = options.Option[*EncoderConfig]

// WithCompression selects the payload codec. The default is no compression.
func WithCompression(comp format.CompressionType) EncoderOption {
	return options.New(func(c *EncoderConfig) error {
		return c.setCompression(comp)
	})
}

// WithLittleEndian selects little-endian byte order. It is the default.
func WithLittleEndian() EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.header.Flag.WithLittleEndian()
	})
}

// WithBigEndian selects big-endian byte order for the header and a binary payload.
func WithBigEndian() EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.header.Flag.WithBigEndian()
	})
}

// WithTextLayout stores the payload in the ASCII layout instead of the binary one.
func WithTextLayout() EncoderOption {
	return options.NoError(func(c *EncoderConfig) {
		c.header.Flag.SetLayout(format.LayoutText)
	})
}

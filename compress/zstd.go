package compress

// ZstdCompressor uses Zstandard frames.
//
// The default build uses the pure Go klauspost/compress encoder. Building
// with the gozstd tag switches to the cgo bindings of valyala/gozstd, which
// produce compatible frames.
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a Zstandard codec.
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}

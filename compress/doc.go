// Package compress provides the payload codecs of the fitted-spectrum
// container.
//
// A serialized mixture is mostly float64 values: the diagonal of the
// spectrum dominates its size and neighbouring samples tend to share
// exponent bytes. The codecs trade speed against ratio:
//
//   - None (format.CompressionNone): payload stored as is
//   - Zstd (format.CompressionZstd): best ratio
//   - S2 (format.CompressionS2): fast, moderate ratio
//   - LZ4 (format.CompressionLZ4): fastest decoding
//
// GetCodec returns the shared, concurrency-safe instance for a type:
//
//	codec, err := compress.GetCodec(format.CompressionZstd)
//	if err != nil {
//		return err
//	}
//	packed, err := codec.Compress(payload)
//
// Measure reports the sizes reached by one codec, which the command line
// tool prints when asked to compare codecs.
package compress

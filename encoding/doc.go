// Package encoding serializes fitted mixtures.
//
// Two layouts are supported. The binary layout packs uint32 counts and
// float64 values without padding in a caller-selected byte order:
//
//	data, err := encoding.EncodeGMM(fitted, endian.GetLittleEndianEngine())
//	fitted, err = encoding.DecodeGMM(data, endian.GetLittleEndianEngine())
//
// The ASCII layout is line oriented and starts with the "gmm" marker:
//
//	err := encoding.WriteText(w, fitted)
//	fitted, err := encoding.ReadText(r)
//
// Both layouts carry the same fields: component means, covariances and
// weights, the scale attenuation and the sampled diagonal. The binary layout
// stores only the upper triangle of each covariance and decodes it as a
// symmetric matrix.
//
// RawEncoder and RawDecoder are the fixed-width primitives used by the binary
// layout. RawEncoder borrows its buffer from an internal pool, so call Finish
// when done with it.
package encoding

// Package blob wraps a serialized fitted spectrum in a self-describing
// container.
//
// A container is a 32-byte section.Header followed by the payload, which is
// either the binary or the ASCII layout of package encoding, optionally
// compressed. The header records the payload checksum, so corruption is
// reported instead of producing a wrong spectrum.
//
//	enc, err := blob.NewEncoder(blob.WithCompression(format.CompressionZstd))
//	if err != nil {
//		return err
//	}
//	data, err := enc.Encode(fitted)
//
//	fitted, err = blob.Decode(data)
//
// Decode also accepts the bare layouts written by older tools, so a reader
// can consume every file in a directory without knowing how it was written.
package blob

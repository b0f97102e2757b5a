// Package section defines the fixed header of the fitted-spectrum container.
//
// # Header Layout
//
// All fields are packed without padding. The options field is always
// little-endian. The remaining fields use the byte order selected by its
// endianness bit, which also applies to a binary payload.
//
//	offset  size  field
//	0       2     options: bits 4-15 magic 0xF1A0, bit 1 text layout, bit 0 big-endian
//	2       1     compression type (format.CompressionType)
//	3       1     reserved
//	4       4     component count
//	8       4     diagonal length
//	12      4     raw payload length
//	16      4     stored payload length
//	20      8     xxHash64 of the raw payload
//	28      4     reserved
//
// The payload follows the header immediately. A legacy binary file starts
// with its component count, so its first two bytes never carry the magic
// number for any realistic number of components.
package section

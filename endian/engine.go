// Package endian selects the byte order of serialized mixtures.
//
// EndianEngine joins binary.ByteOrder and binary.AppendByteOrder, so one
// value both reads fields in place and appends them to a growing buffer:
//
//	engine := endian.GetLittleEndianEngine()
//	data, err := encoding.EncodeGMM(fitted, engine)
//
// Little-endian is the default of every writer. GetNativeEngine returns the
// host order for files that are read back on the producing machine only.
package endian

import (
	"encoding/binary"
	"strings"
	"unsafe"
)

// EndianEngine is satisfied by binary.LittleEndian and binary.BigEndian.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness returns the byte order of the host.
func CheckEndianness() binary.ByteOrder {
	var i uint16 = 0x0100
	b := (*[2]byte)(unsafe.Pointer(&i))
	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

// IsNativeLittleEndian reports whether the host is little-endian.
func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

// CompareNativeEndian reports whether engine matches the host order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the little-endian engine.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}

// GetNativeEngine returns the engine of the host byte order.
func GetNativeEngine() EndianEngine {
	if IsNativeLittleEndian() {
		return binary.LittleEndian
	}

	return binary.BigEndian
}

// ParseEngine maps "little", "big" or "native" to an engine. The empty string
// selects little-endian.
func ParseEngine(name string) (EndianEngine, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "little", "le":
		return GetLittleEndianEngine(), true
	case "big", "be":
		return GetBigEndianEngine(), true
	case "native":
		return GetNativeEngine(), true
	default:
		return nil, false
	}
}

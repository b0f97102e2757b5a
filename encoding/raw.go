package encoding

import (
	"math"

	"github.com/arloliu/fluomix/endian"
	"github.com/arloliu/fluomix/internal/pool"
)

// RawEncoder writes fixed-width fields in a selectable byte order.
//
// Values are stored in their native binary representation: uint32 fields
// take 4 bytes and float64 fields take their 8-byte IEEE 754 bits. The
// encoder borrows its buffer from a pool; call Finish when done.
type RawEncoder struct {
	buf    *pool.ByteBuffer
	engine endian.EndianEngine
	count  int
}

// NewRawEncoder creates an encoder using the given byte order.
func NewRawEncoder(engine endian.EndianEngine) *RawEncoder {
	return &RawEncoder{
		engine: engine,
		buf:    pool.GetPayloadBuffer(),
	}
}

// WriteUint32 appends a 4-byte unsigned integer.
//
// Panics if Finish() has been called.
func (e *RawEncoder) WriteUint32(val uint32) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}

	e.count++
	e.buf.B = e.engine.AppendUint32(e.buf.B, val)
}

// Write appends a single float64.
//
// Panics if Finish() has been called.
func (e *RawEncoder) Write(val float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}

	e.count++
	e.buf.Grow(8)
	e.writeFloat64(val)
}

// WriteSlice appends every value of the slice, growing the buffer once.
//
// Panics if Finish() has been called.
func (e *RawEncoder) WriteSlice(values []float64) {
	if e.buf == nil {
		panic("encoder already finished - cannot write after Finish()")
	}

	if len(values) == 0 {
		return
	}
	e.count += len(values)

	start := e.buf.Len()
	e.buf.ExtendOrGrow(len(values) * 8)
	for i, v := range values {
		offset := start + i*8
		e.engine.PutUint64(e.buf.Slice(offset, offset+8), math.Float64bits(v))
	}
}

// Bytes returns the encoded bytes. The slice is only valid until the next
// write or Finish.
func (e *RawEncoder) Bytes() []byte {
	if e.buf == nil {
		panic("encoder already finished - cannot access bytes after Finish()")
	}

	return e.buf.Bytes()
}

// Len returns the number of fields written.
func (e *RawEncoder) Len() int {
	return e.count
}

// Size returns the number of bytes written.
func (e *RawEncoder) Size() int {
	if e.buf == nil {
		panic("encoder already finished - cannot access size after Finish()")
	}

	return e.buf.Len()
}

// Finish returns the buffer to the pool. The encoder is unusable afterwards.
func (e *RawEncoder) Finish() {
	if e.buf != nil {
		pool.PutPayloadBuffer(e.buf)
		e.buf = nil
	}
	e.count = 0
}

func (e *RawEncoder) writeFloat64(value float64) {
	bufLen := e.buf.Len()
	bs := e.buf.Slice(bufLen, bufLen+8)
	e.engine.PutUint64(bs, math.Float64bits(value))
	e.buf.SetLength(bufLen + 8)
}

// RawDecoder reads the fields written by RawEncoder in order.
type RawDecoder struct {
	data   []byte
	offset int
	engine endian.EndianEngine
}

// NewRawDecoder creates a decoder over data using the given byte order.
func NewRawDecoder(data []byte, engine endian.EndianEngine) *RawDecoder {
	return &RawDecoder{data: data, engine: engine}
}

// Uint32 reads a 4-byte unsigned integer.
func (d *RawDecoder) Uint32() (uint32, bool) {
	if d.Remaining() < 4 {
		return 0, false
	}

	v := d.engine.Uint32(d.data[d.offset:])
	d.offset += 4

	return v, true
}

// Float64 reads a single float64.
func (d *RawDecoder) Float64() (float64, bool) {
	if d.Remaining() < 8 {
		return 0, false
	}

	v := math.Float64frombits(d.engine.Uint64(d.data[d.offset:]))
	d.offset += 8

	return v, true
}

// Float64s fills dst with consecutive float64 values.
func (d *RawDecoder) Float64s(dst []float64) bool {
	if d.Remaining() < 8*len(dst) {
		return false
	}

	for i := range dst {
		dst[i] = math.Float64frombits(d.engine.Uint64(d.data[d.offset:]))
		d.offset += 8
	}

	return true
}

// Offset returns the number of bytes consumed.
func (d *RawDecoder) Offset() int {
	return d.offset
}

// Remaining returns the number of bytes left.
func (d *RawDecoder) Remaining() int {
	return len(d.data) - d.offset
}

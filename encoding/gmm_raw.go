package encoding

import (
	"fmt"
	"math"

	"github.com/arloliu/fluomix/endian"
	"github.com/arloliu/fluomix/gmm"
)

// Field counts of the binary layout.
const (
	floatsPerComponent = 2 + 3 + 1 // mean, upper triangle of covariance, weight
	fixedHeadSize      = 4
	fixedTailSize      = 8 + 4 + 8 + 8 // scale, diagonal length, start, step
)

// GMMRawSize returns the size of g in the binary layout.
func GMMRawSize(g *gmm.FittedGMM) int {
	return fixedHeadSize + 8*floatsPerComponent*len(g.Components) + fixedTailSize + 8*len(g.Diagonal.Values)
}

// EncodeGMM serializes g in the binary layout:
//
//	uint32  K
//	float64 means       [K][2]
//	float64 covariances [K][3]  (c00, c01, c11)
//	float64 weights     [K]
//	float64 scale
//	uint32  diagonal length D
//	float64 diagonal start, diagonal step
//	float64 diagonal    [D]
//
// Fields are packed without padding in the byte order of engine.
func EncodeGMM(g *gmm.FittedGMM, engine endian.EndianEngine) ([]byte, error) {
	return AppendGMM(nil, g, engine)
}

// AppendGMM appends the binary layout of g to dst.
func AppendGMM(dst []byte, g *gmm.FittedGMM, engine endian.EndianEngine) ([]byte, error) {
	k, d := len(g.Components), len(g.Diagonal.Values)
	if uint64(k) > math.MaxUint32 || uint64(d) > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d components, %d diagonal values", ErrTooLarge, k, d)
	}

	enc := NewRawEncoder(engine)
	defer enc.Finish()

	enc.WriteUint32(uint32(k))

	values := make([]float64, 0, 3*k)
	for _, c := range g.Components {
		values = append(values, c.Mean[0], c.Mean[1])
	}
	enc.WriteSlice(values)

	values = values[:0]
	for _, c := range g.Components {
		values = append(values, c.Covariance[0][0], c.Covariance[0][1], c.Covariance[1][1])
	}
	enc.WriteSlice(values)

	values = values[:0]
	for _, c := range g.Components {
		values = append(values, c.Weight)
	}
	enc.WriteSlice(values)

	enc.Write(g.ScaleAttenuation)
	enc.WriteUint32(uint32(d))
	enc.Write(g.Diagonal.Start)
	enc.Write(g.Diagonal.Step)
	enc.WriteSlice(g.Diagonal.Values)

	return append(dst, enc.Bytes()...), nil
}

// DecodeGMM parses the binary layout written by EncodeGMM.
//
// Returns ErrTruncated when data ends early and ErrTrailingBytes when bytes
// remain after the diagonal.
func DecodeGMM(data []byte, engine endian.EndianEngine) (*gmm.FittedGMM, error) {
	dec := NewRawDecoder(data, engine)

	k32, ok := dec.Uint32()
	if !ok {
		return nil, truncated(dec, "component count")
	}
	k := int(k32)
	if dec.Remaining() < 8*floatsPerComponent*k+fixedTailSize {
		return nil, truncated(dec, fmt.Sprintf("%d components", k))
	}

	means := make([]float64, 2*k)
	covs := make([]float64, 3*k)
	weights := make([]float64, k)
	dec.Float64s(means)
	dec.Float64s(covs)
	dec.Float64s(weights)

	g := &gmm.FittedGMM{Components: make([]gmm.Component, k)}
	for c := range k {
		c00, c01, c11 := covs[3*c], covs[3*c+1], covs[3*c+2]
		g.Components[c] = gmm.Component{
			Mean:       [2]float64{means[2*c], means[2*c+1]},
			Covariance: [2][2]float64{{c00, c01}, {c01, c11}},
			Weight:     weights[c],
		}
	}

	g.ScaleAttenuation, _ = dec.Float64()
	d32, _ := dec.Uint32()
	g.Diagonal.Start, _ = dec.Float64()
	g.Diagonal.Step, _ = dec.Float64()

	d := int(d32)
	if dec.Remaining() < 8*d {
		return nil, truncated(dec, fmt.Sprintf("%d diagonal values", d))
	}
	g.Diagonal.Values = make([]float64, d)
	dec.Float64s(g.Diagonal.Values)

	if dec.Remaining() != 0 {
		return nil, fmt.Errorf("%w: %d bytes at offset %d", ErrTrailingBytes, dec.Remaining(), dec.Offset())
	}

	return g, nil
}

func truncated(dec *RawDecoder, field string) error {
	return fmt.Errorf("%w: reading %s at offset %d, %d bytes left", ErrTruncated, field, dec.Offset(), dec.Remaining())
}

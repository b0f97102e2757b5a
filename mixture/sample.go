package mixture

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// Sample is an immutable set of two-dimensional points with per-point weights.
//
// Weights are non-negative and rescaled so that they sum to the number of points.
type Sample struct {
	points  *mat.Dense
	weights []float64
}

// NewSample creates a Sample from an N×2 matrix of points.
//
// Parameters:
//   - points: N×2 matrix, one point per row
//   - weights: N non-negative weights, or nil for unit weights
//
// Returns:
//   - *Sample: the normalized sample
//   - error: ErrInvalidSample for empty input, wrong shapes, non-finite values,
//     negative weights or an all-zero weight vector
func NewSample(points mat.Matrix, weights []float64) (*Sample, error) {
	n, d := points.Dims()
	if n == 0 {
		return nil, fmt.Errorf("%w: no points", ErrInvalidSample)
	}

	if d != Features {
		return nil, fmt.Errorf("%w: points must have %d columns, got %d", ErrInvalidSample, Features, d)
	}

	x := mat.DenseCopyOf(points)
	for i := range n {
		for j := range d {
			if v := x.At(i, j); math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: point %d is not finite", ErrInvalidSample, i)
			}
		}
	}

	w, err := normalizeWeights(weights, n)
	if err != nil {
		return nil, err
	}

	return &Sample{points: x, weights: w}, nil
}

// NewSampleFromPoints creates a Sample from a slice of (x, y) pairs.
func NewSampleFromPoints(points [][2]float64, weights []float64) (*Sample, error) {
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: no points", ErrInvalidSample)
	}

	data := make([]float64, 0, len(points)*Features)
	for _, p := range points {
		data = append(data, p[0], p[1])
	}

	return NewSample(mat.NewDense(len(points), Features, data), weights)
}

// normalizeWeights rescales weights so they sum to n.
func normalizeWeights(weights []float64, n int) ([]float64, error) {
	w := make([]float64, n)
	if weights == nil {
		for i := range w {
			w[i] = 1
		}

		return w, nil
	}

	if len(weights) != n {
		return nil, fmt.Errorf("%w: expected %d weights, got %d", ErrInvalidSample, n, len(weights))
	}

	for i, v := range weights {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: weight %d must be finite and non-negative, got %v", ErrInvalidSample, i, v)
		}
	}

	sum := floats.Sum(weights)
	if sum <= 0 {
		return nil, fmt.Errorf("%w: weights sum to zero", ErrInvalidSample)
	}

	floats.ScaleTo(w, float64(n)/sum, weights)

	return w, nil
}

// Len returns the number of points.
func (s *Sample) Len() int {
	n, _ := s.points.Dims()
	return n
}

// Point returns the i-th point.
func (s *Sample) Point(i int) [2]float64 {
	return [2]float64{s.points.At(i, 0), s.points.At(i, 1)}
}

// Points returns a copy of the N×2 point matrix.
func (s *Sample) Points() *mat.Dense {
	return mat.DenseCopyOf(s.points)
}

// Weight returns the normalized weight of the i-th point.
func (s *Sample) Weight(i int) float64 {
	return s.weights[i]
}

// Weights returns a copy of the normalized weights.
func (s *Sample) Weights() []float64 {
	return append([]float64(nil), s.weights...)
}

// TotalWeight returns the sum of the normalized weights.
func (s *Sample) TotalWeight() float64 {
	return floats.Sum(s.weights)
}
